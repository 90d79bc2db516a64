package body

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Kind tags the shape of a parameter value.
type Kind int

const (
	KindScalar Kind = iota
	KindVec3
)

func (k Kind) String() string {
	if k == KindVec3 {
		return "vec3"
	}
	return "scalar"
}

// Schema maps parameter keys to their declared shape. Force modules
// declare one; the store validates writes against the union of all
// declared schemas.
type Schema map[string]Kind

type value struct {
	kind   Kind
	scalar float64
	vec    mgl64.Vec3
}

type table map[string]value

// DeclareSchema registers the typed keys a force module owns. Declaring
// the same key twice with a different kind is a conflict.
func (s *Store) DeclareSchema(schema Schema) error {
	for key, kind := range schema {
		if prev, ok := s.schema[key]; ok && prev != kind {
			return fmt.Errorf("body: %w: key %q declared as %s and %s",
				dynamo.ErrTypeMismatch, key, prev, kind)
		}
		s.schema[key] = kind
	}
	return nil
}

func (s *Store) checkKey(i int, key string, kind Kind) error {
	if i < 0 || i >= len(s.particles) {
		return fmt.Errorf("body: %w: %d of %d", dynamo.ErrInvalidIndex, i, len(s.particles))
	}
	if declared, ok := s.schema[key]; ok && declared != kind {
		return fmt.Errorf("body: %w: key %q is %s, not %s",
			dynamo.ErrTypeMismatch, key, declared, kind)
	}
	return nil
}

// SetScalar attaches a named scalar to particle i. Keys claimed by an
// attached force schema must match the declared kind; unclaimed keys
// are stored as-is.
func (s *Store) SetScalar(i int, key string, v float64) error {
	if err := s.checkKey(i, key, KindScalar); err != nil {
		return err
	}
	if s.params[i] == nil {
		s.params[i] = table{}
	}
	s.params[i][key] = value{kind: KindScalar, scalar: v}
	return nil
}

func (s *Store) SetVec3(i int, key string, v mgl64.Vec3) error {
	if err := s.checkKey(i, key, KindVec3); err != nil {
		return err
	}
	if s.params[i] == nil {
		s.params[i] = table{}
	}
	s.params[i][key] = value{kind: KindVec3, vec: v}
	return nil
}

// Scalar reads a named scalar from particle i. A missing key reports
// ErrNotFound, not a default value.
func (s *Store) Scalar(i int, key string) (float64, error) {
	if i < 0 || i >= len(s.particles) {
		return 0, fmt.Errorf("body: %w: %d of %d", dynamo.ErrInvalidIndex, i, len(s.particles))
	}
	v, ok := s.params[i][key]
	if !ok {
		return 0, fmt.Errorf("body: %w: particle %d key %q", dynamo.ErrNotFound, i, key)
	}
	if v.kind != KindScalar {
		return 0, fmt.Errorf("body: %w: key %q holds %s", dynamo.ErrTypeMismatch, key, v.kind)
	}
	return v.scalar, nil
}

func (s *Store) Vec3(i int, key string) (mgl64.Vec3, error) {
	if i < 0 || i >= len(s.particles) {
		return mgl64.Vec3{}, fmt.Errorf("body: %w: %d of %d", dynamo.ErrInvalidIndex, i, len(s.particles))
	}
	v, ok := s.params[i][key]
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("body: %w: particle %d key %q", dynamo.ErrNotFound, i, key)
	}
	if v.kind != KindVec3 {
		return mgl64.Vec3{}, fmt.Errorf("body: %w: key %q holds %s", dynamo.ErrTypeMismatch, key, v.kind)
	}
	return v.vec, nil
}

// HasParam reports whether particle i carries the key, regardless of kind.
func (s *Store) HasParam(i int, key string) bool {
	if i < 0 || i >= len(s.params) {
		return false
	}
	_, ok := s.params[i][key]
	return ok
}
