package network

import (
	"fmt"
	"strings"
)

type speciesView struct {
	names []string
	set   map[string]bool
}

func newSpeciesView(names []string) *speciesView {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &speciesView{names: names, set: set}
}

func (v *speciesView) Species() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v *speciesView) Contains(name string) bool { return v.set[name] }

func parseSelector(expr string, known []string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "all" {
		out := make([]string, len(known))
		copy(out, known)
		return out, nil
	}

	knownSet := make(map[string]bool, len(known))
	for _, n := range known {
		knownSet[n] = true
	}

	var names []string
	for _, field := range strings.Split(expr, ",") {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		if !knownSet[name] {
			return nil, fmt.Errorf("network: unknown species %q in selector", name)
		}
		names = append(names, name)
	}
	return names, nil
}
