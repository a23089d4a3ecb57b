package entity

import (
	"fmt"
	"strings"
)

// registry holds every known entity type in run order.
var registry = []Spec{FXTrade, FXOptionTrade, CashTransaction}

// All returns every registered spec in run order.
func All() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a spec by tag.
func Lookup(tag string) (Spec, bool) {
	for _, s := range registry {
		if s.Tag == tag {
			return s, true
		}
	}
	return Spec{}, false
}

// Select returns the specs to sync, in run order.
// With no tags every mandatory spec is selected, plus optional ones when includeOptional is set.
// Explicitly requested tags are always selected.
func Select(tags []string, includeOptional bool) ([]Spec, error) {
	if len(tags) == 0 {
		var out []Spec
		for _, s := range registry {
			if !s.Optional || includeOptional {
				out = append(out, s)
			}
		}
		return out, nil
	}

	req := make(map[string]bool)
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if _, ok := Lookup(t); !ok {
			return nil, fmt.Errorf("unknown entity type %q (known: %s)", t, strings.Join(Tags(), ", "))
		}
		req[t] = true
	}

	var out []Spec
	for _, s := range registry {
		if req[s.Tag] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Tags lists the registered tags in run order.
func Tags() []string {
	tags := make([]string, len(registry))
	for i, s := range registry {
		tags[i] = s.Tag
	}
	return tags
}
