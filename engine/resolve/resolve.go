// Package resolve maps widget names typed by the user to widget ids.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/widgetcore/engine/state"
)

// AmbiguityError indicates multiple widgets matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no widget matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no widget called %q", e.Name)
}

// Resolve maps name to one of ids. Matching is tried in order, and the first
// step with any match wins:
//
//  1. exact id
//  2. id, ignoring case and treating spaces as underscores
//  3. display name from defs, whole name or any word of it
//  4. unique id prefix
func Resolve(defs *state.Defs, ids []string, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &NotFoundError{Name: name}
	}

	for _, id := range ids {
		if id == name {
			return id, nil
		}
	}

	nameLower := strings.ToLower(name)
	normalized := strings.ReplaceAll(nameLower, " ", "_")

	steps := []func(id string) bool{
		func(id string) bool {
			return strings.ToLower(id) == normalized
		},
		func(id string) bool {
			return matchesDisplayName(defs, id, nameLower)
		},
		func(id string) bool {
			return strings.HasPrefix(strings.ToLower(id), normalized)
		},
	}
	for _, match := range steps {
		var matches []string
		for _, id := range ids {
			if match(id) {
				matches = append(matches, id)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			sort.Strings(matches)
			return "", &AmbiguityError{Name: name, Candidates: matches}
		}
	}
	return "", &NotFoundError{Name: name}
}

// matchesDisplayName checks the widget's display name (case-insensitive).
// "menu" matches "Pause Menu".
func matchesDisplayName(defs *state.Defs, id, nameLower string) bool {
	if defs == nil {
		return false
	}
	def, ok := defs.Widgets[id]
	if !ok || def.Name == "" {
		return false
	}
	display := strings.ToLower(def.Name)
	if display == nameLower {
		return true
	}
	for _, word := range strings.Fields(display) {
		if word == nameLower {
			return true
		}
	}
	return false
}
