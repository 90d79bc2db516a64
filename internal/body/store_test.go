package body

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func TestAddRejectsInvalidParticles(t *testing.T) {
	s := NewStore()

	if _, err := s.Add(Particle{Mass: -1}); err == nil {
		t.Error("expected error for negative mass")
	}
	if _, err := s.Add(Particle{Mass: math.NaN()}); err == nil {
		t.Error("expected error for NaN mass")
	}
	if _, err := s.Add(Particle{Mass: 1, Radius: math.Inf(1)}); err == nil {
		t.Error("expected error for infinite radius")
	}
	if s.Len() != 0 {
		t.Errorf("failed adds must not grow the store, len=%d", s.Len())
	}
}

func TestIndicesAreStable(t *testing.T) {
	s := NewStore()

	i0, err := s.Add(Particle{Mass: 1})
	if err != nil {
		t.Fatal(err)
	}
	i1, err := s.Add(Particle{Mass: 2, Pos: mgl64.Vec3{1, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}

	if i0 != 0 || i1 != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", i0, i1)
	}

	p, err := s.Particle(1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Mass != 2 {
		t.Errorf("expected mass 2 at index 1, got %f", p.Mass)
	}

	if _, err := s.Particle(2); !errors.Is(err, dynamo.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if _, err := s.Particle(-1); !errors.Is(err, dynamo.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestCOM(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1, Pos: mgl64.Vec3{-1, 0, 0}})
	s.Add(Particle{Mass: 1, Pos: mgl64.Vec3{1, 0, 0}, Vel: mgl64.Vec3{0, 2, 0}})

	pos, vel, mass := s.COM()
	if mass != 2 {
		t.Errorf("expected total mass 2, got %f", mass)
	}
	if pos.Len() > 1e-15 {
		t.Errorf("expected COM at origin, got %v", pos)
	}
	if math.Abs(vel.Y()-1) > 1e-15 {
		t.Errorf("expected COM velocity (0,1,0), got %v", vel)
	}

	// Subset COM.
	pos, _, mass = s.COM(1)
	if mass != 1 || math.Abs(pos.X()-1) > 1e-15 {
		t.Errorf("subset COM wrong: pos=%v mass=%f", pos, mass)
	}
}

func TestMoveToCOM(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 3, Pos: mgl64.Vec3{1, 2, 3}, Vel: mgl64.Vec3{0.1, 0, 0}})
	s.Add(Particle{Mass: 1, Pos: mgl64.Vec3{5, 2, 3}, Vel: mgl64.Vec3{-0.3, 0, 0}})

	s.MoveToCOM()

	pos, vel, _ := s.COM()
	if pos.Len() > 1e-14 {
		t.Errorf("COM position not zeroed: %v", pos)
	}
	if vel.Len() > 1e-14 {
		t.Errorf("COM velocity not zeroed: %v", vel)
	}
}

func TestParamScalarAndVec3(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1})

	if err := s.SetScalar(0, "k2", 0.3); err != nil {
		t.Fatal(err)
	}
	v, err := s.Scalar(0, "k2")
	if err != nil || v != 0.3 {
		t.Errorf("expected 0.3, got %v err=%v", v, err)
	}

	spin := mgl64.Vec3{0, 0, 1.5}
	if err := s.SetVec3(0, "spin", spin); err != nil {
		t.Fatal(err)
	}
	got, err := s.Vec3(0, "spin")
	if err != nil || got != spin {
		t.Errorf("expected %v, got %v err=%v", spin, got, err)
	}
}

func TestParamMissingKeyIsNotFound(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1})

	if _, err := s.Scalar(0, "tau"); !errors.Is(err, dynamo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Vec3(0, "spin"); !errors.Is(err, dynamo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParamKindMismatch(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1})
	s.SetScalar(0, "k2", 0.3)

	if _, err := s.Vec3(0, "k2"); !errors.Is(err, dynamo.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch reading scalar as vec3, got %v", err)
	}
}

func TestSchemaEnforcement(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1})

	if err := s.DeclareSchema(Schema{"moi": KindScalar, "spin": KindVec3}); err != nil {
		t.Fatal(err)
	}

	if err := s.SetVec3(0, "moi", mgl64.Vec3{}); !errors.Is(err, dynamo.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch writing vec3 to scalar key, got %v", err)
	}
	if err := s.SetScalar(0, "spin", 1); !errors.Is(err, dynamo.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch writing scalar to vec3 key, got %v", err)
	}

	// Redeclaring with the same kinds is fine; conflicting kinds are not.
	if err := s.DeclareSchema(Schema{"moi": KindScalar}); err != nil {
		t.Errorf("identical redeclaration should pass: %v", err)
	}
	if err := s.DeclareSchema(Schema{"moi": KindVec3}); !errors.Is(err, dynamo.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch on conflicting redeclaration, got %v", err)
	}
}

func TestUnclaimedKeysAreFreeForm(t *testing.T) {
	s := NewStore()
	s.Add(Particle{Mass: 1})

	if err := s.SetScalar(0, "albedo", 0.5); err != nil {
		t.Errorf("unclaimed key should be storable: %v", err)
	}
	if !s.HasParam(0, "albedo") {
		t.Error("HasParam should see the unclaimed key")
	}
	if s.HasParam(0, "missing") || s.HasParam(5, "albedo") {
		t.Error("HasParam false positives")
	}
}
