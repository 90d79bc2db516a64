// Package config loads and saves simulation scenarios: gravitational
// constant, integrator settings, bodies (by Cartesian state or orbital
// elements, angles in radians), attached forces and per-body physical
// parameters.
package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/sim"

	"github.com/san-kum/orbitsim/internal/body"
)

const (
	DefaultG         = 1.0
	DefaultDt0       = 0.314159265358979
	DefaultTolerance = 1e-9
)

type Config struct {
	Name           string       `yaml:"name"`
	G              float64      `yaml:"g"`
	Integrator     string       `yaml:"integrator"`
	Dt0            float64      `yaml:"dt0"`
	Tolerance      float64      `yaml:"tolerance"`
	Duration       float64      `yaml:"duration"`
	SampleInterval float64      `yaml:"sample_interval"`
	MoveToCOM      bool         `yaml:"move_to_com"`
	Forces         []string     `yaml:"forces"`
	Bodies         []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Mass   float64               `yaml:"mass"`
	Radius float64               `yaml:"radius"`
	Pos    *[3]float64           `yaml:"pos,omitempty"`
	Vel    *[3]float64           `yaml:"vel,omitempty"`
	Orbit  *OrbitConfig          `yaml:"orbit,omitempty"`
	Params map[string]ParamValue `yaml:"params,omitempty"`
}

// OrbitConfig holds orbital elements relative to the center of mass of
// the bodies listed before this one. Angles are radians.
type OrbitConfig struct {
	A        float64 `yaml:"a"`
	E        float64 `yaml:"e"`
	Inc      float64 `yaml:"inc"`
	Node     float64 `yaml:"node"`
	ArgPeri  float64 `yaml:"argperi"`
	TrueAnom float64 `yaml:"f"`
	MeanAnom *float64 `yaml:"m,omitempty"` // overrides f when set
}

// ParamValue is a scalar or a 3-vector, matching the typed parameter
// table.
type ParamValue struct {
	Kind   body.Kind
	Scalar float64
	Vec    [3]float64
}

func (p *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	var scalar float64
	if err := node.Decode(&scalar); err == nil {
		p.Kind = body.KindScalar
		p.Scalar = scalar
		return nil
	}
	var vec [3]float64
	if err := node.Decode(&vec); err == nil {
		p.Kind = body.KindVec3
		p.Vec = vec
		return nil
	}
	return fmt.Errorf("config: parameter must be a number or a 3-element list")
}

func (p ParamValue) MarshalYAML() (interface{}, error) {
	if p.Kind == body.KindVec3 {
		return p.Vec, nil
	}
	return p.Scalar, nil
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "scenario",
		G:          DefaultG,
		Integrator: "bs",
		Dt0:        DefaultDt0,
		Tolerance:  DefaultTolerance,
		MoveToCOM:  true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build assembles a ready-to-run simulation: bodies in listed order,
// then forces, then per-body parameters (validated against the declared
// force schemas).
func (c *Config) Build() (*sim.Simulation, error) {
	integ, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, err
	}

	s, err := sim.New(sim.Config{
		G:          c.G,
		Dt0:        c.Dt0,
		Tolerance:  c.Tolerance,
		Integrator: integ,
	})
	if err != nil {
		return nil, err
	}

	for bi, bc := range c.Bodies {
		switch {
		case bc.Orbit != nil:
			el := orbit.Elements{
				A:        bc.Orbit.A,
				E:        bc.Orbit.E,
				Inc:      bc.Orbit.Inc,
				Node:     bc.Orbit.Node,
				ArgPeri:  bc.Orbit.ArgPeri,
				TrueAnom: bc.Orbit.TrueAnom,
			}
			if bc.Orbit.MeanAnom != nil {
				f, err := orbit.MeanToTrue(*bc.Orbit.MeanAnom, el.E)
				if err != nil {
					return nil, fmt.Errorf("config: body %d: %w", bi, err)
				}
				el.TrueAnom = f
			}
			if _, err := s.AddParticleFromOrbit(bc.Mass, bc.Radius, el); err != nil {
				return nil, fmt.Errorf("config: body %d: %w", bi, err)
			}
		default:
			p := body.Particle{Mass: bc.Mass, Radius: bc.Radius}
			if bc.Pos != nil {
				p.Pos = mgl64.Vec3{bc.Pos[0], bc.Pos[1], bc.Pos[2]}
			}
			if bc.Vel != nil {
				p.Vel = mgl64.Vec3{bc.Vel[0], bc.Vel[1], bc.Vel[2]}
			}
			if _, err := s.AddParticle(p); err != nil {
				return nil, fmt.Errorf("config: body %d: %w", bi, err)
			}
		}
	}

	for _, name := range c.Forces {
		if err := s.AttachForce(name); err != nil {
			return nil, err
		}
	}

	for bi, bc := range c.Bodies {
		for key, val := range bc.Params {
			var err error
			if val.Kind == body.KindVec3 {
				err = s.SetVec3(bi, key, mgl64.Vec3{val.Vec[0], val.Vec[1], val.Vec[2]})
			} else {
				err = s.SetScalar(bi, key, val.Scalar)
			}
			if err != nil {
				return nil, fmt.Errorf("config: body %d param %q: %w", bi, key, err)
			}
		}
	}

	if c.MoveToCOM {
		s.MoveToCOM()
	}
	return s, nil
}
