package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var adaptive = map[string]func() dynamo.AdaptiveIntegrator{
	"rk45": func() dynamo.AdaptiveIntegrator { return NewRK45() },
	"bs":   func() dynamo.AdaptiveIntegrator { return NewBS() },
}

// New returns a fresh adaptive integrator by name.
func New(name string) (dynamo.AdaptiveIntegrator, error) {
	fn, ok := adaptive[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(adaptive))
	for name := range adaptive {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
