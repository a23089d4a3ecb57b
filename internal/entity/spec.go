// Package entity defines the static description of every table pairing the sync reconciles.
package entity

import (
	"fmt"
	"strings"
)

// Field maps one source column to its target column.
type Field struct {
	Source string
	Target string
}

// Spec describes one entity type: source table, target table, the full ordered
// field mapping and the primary-key column on each side.
type Spec struct {
	Tag         string
	SourceTable string
	TargetTable string
	SourceKey   string
	TargetKey   string
	Fields      []Field
	Optional    bool // Only synced when optional entities are enabled
}

// SourceColumns returns the source column names in mapping order.
func (s Spec) SourceColumns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Source
	}
	return cols
}

// TargetColumns returns the target column names in mapping order.
func (s Spec) TargetColumns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Target
	}
	return cols
}

// Validate checks that the mapping is usable: non-empty names, no duplicate
// columns, and the key pair mapped exactly onto each other.
func (s Spec) Validate() error {
	if s.Tag == "" || s.SourceTable == "" || s.TargetTable == "" {
		return fmt.Errorf("entity spec %q: tag and table names are required", s.Tag)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("entity spec %q: no fields", s.Tag)
	}

	seenSrc := make(map[string]bool)
	seenTgt := make(map[string]bool)
	keyMapped := false
	for _, f := range s.Fields {
		if f.Source == "" || f.Target == "" {
			return fmt.Errorf("entity spec %q: empty field name", s.Tag)
		}
		src, tgt := strings.ToLower(f.Source), strings.ToLower(f.Target)
		if seenSrc[src] {
			return fmt.Errorf("entity spec %q: duplicate source field %s", s.Tag, f.Source)
		}
		if seenTgt[tgt] {
			return fmt.Errorf("entity spec %q: duplicate target field %s", s.Tag, f.Target)
		}
		seenSrc[src], seenTgt[tgt] = true, true

		if f.Source == s.SourceKey {
			if f.Target != s.TargetKey {
				return fmt.Errorf("entity spec %q: key %s maps to %s, want %s", s.Tag, f.Source, f.Target, s.TargetKey)
			}
			keyMapped = true
		}
	}
	if !keyMapped {
		return fmt.Errorf("entity spec %q: key %s is not in the field list", s.Tag, s.SourceKey)
	}
	return nil
}
