// Package label implements hierarchical dot-separated labels such as
// "UI.Layer.Modal". A label matches any filter that is equal to it or is one
// of its ancestors.
package label

import (
	"fmt"
	"strings"
)

// Label is an opaque hierarchical identifier. The zero value is the empty
// label, which matches nothing.
type Label string

// Separator splits a label into segments.
const Separator = "."

// New validates s and returns it as a Label.
func New(s string) (Label, error) {
	l := Label(strings.TrimSpace(s))
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// Validate reports whether the label is well formed: non-empty, no empty
// segments, no whitespace.
func (l Label) Validate() error {
	if l == "" {
		return fmt.Errorf("label is empty")
	}
	for i, seg := range strings.Split(string(l), Separator) {
		if seg == "" {
			return fmt.Errorf("label %q has an empty segment at position %d", string(l), i)
		}
		if strings.ContainsAny(seg, " \t\r\n") {
			return fmt.Errorf("label %q contains whitespace", string(l))
		}
	}
	return nil
}

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// IsUnderOrEqual reports whether l equals other or is a descendant of it.
// "UI.Widget.State.Visible" is under "UI.Widget.State" but not under
// "UI.Widget.Sta". Empty labels never match.
func (l Label) IsUnderOrEqual(other Label) bool {
	if l == "" || other == "" {
		return false
	}
	if l == other {
		return true
	}
	return strings.HasPrefix(string(l), string(other)+Separator)
}
