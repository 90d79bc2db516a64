package force

import (
	"fmt"
	"sort"
)

// The catalog holds the available force kinds, not instances; a fresh
// instance is built per simulation.
var catalog = map[string]func() Force{
	"tidal_spin": func() Force { return NewTidalSpin() },
}

// New builds a fresh force module of the named kind.
func New(name string) (Force, error) {
	fn, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown force: %s", name)
	}
	return fn(), nil
}

func Kinds() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
