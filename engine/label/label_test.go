package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"UI", false},
		{"UI.Layer.Modal", false},
		{"  UI.Layer  ", false},
		{"", true},
		{"UI..Modal", true},
		{".UI", true},
		{"UI.", true},
		{"UI.Lay er", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := New(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsUnderOrEqual(t *testing.T) {
	tests := []struct {
		l, filter Label
		want      bool
	}{
		{"UI.Widget.State.Visible", "UI.Widget.State", true},
		{"UI.Widget.State", "UI.Widget.State", true},
		{"UI.Widget.State", "UI.Widget.State.Visible", false},
		{"UI.Widget.Stateful", "UI.Widget.State", false},
		{"UI.Widget.State", "UI.Widget.Sta", false},
		{"UI.Widget", "", false},
		{"", "UI", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.l.IsUnderOrEqual(tt.filter), "%q under %q", tt.l, tt.filter)
	}
}
