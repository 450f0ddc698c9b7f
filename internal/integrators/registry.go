package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/dpsim/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk2":   func() dynamo.Integrator { return NewRK2() },
	"heun":  func() dynamo.Integrator { return NewRK2() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
}

// Lookup returns the integrator registered under name (case-insensitive).
func Lookup(name string) (dynamo.Integrator, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// Names lists the canonical integrator names, lowest order first.
func Names() []string {
	return []string{"euler", "rk2", "rk4"}
}

// All returns one instance of every canonical integrator, lowest order first.
func All() []dynamo.Integrator {
	names := Names()
	out := make([]dynamo.Integrator, 0, len(names))
	for _, n := range names {
		out = append(out, registry[n]())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}
