package transition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/widgetcore/types"
)

func entry(in, out, autoClose float64) *types.Entry {
	return &types.Entry{
		ID: "w",
		Config: types.StateConfig{
			TransitionIn:  in,
			TransitionOut: out,
			AutoClose:     autoClose,
			Category:      "UI.Test",
		},
	}
}

func states(events []types.Event) []types.WidgetState {
	var out []types.WidgetState
	for _, ev := range events {
		if ev.Kind == types.EventStateChanged {
			out = append(out, ev.To)
		}
	}
	return out
}

func TestShowWithDuration(t *testing.T) {
	e := entry(0.5, 0.5, 0)
	out := Show(e)

	assert.True(t, out.Changed)
	assert.False(t, out.Shown)
	assert.Equal(t, types.AnimatingIn, e.State)
	assert.Equal(t, []types.WidgetState{types.AnimatingIn}, states(out.Events))
}

func TestShowZeroDurationLandsVisible(t *testing.T) {
	e := entry(0, 0, 0)
	out := Show(e)

	assert.Equal(t, types.Visible, e.State)
	assert.True(t, out.Shown)
	require.Len(t, out.Events, 3)
	assert.Equal(t, types.EventTransitionComplete, out.Events[2].Kind)
	assert.Equal(t, types.PhaseIn, out.Events[2].Phase)
}

func TestShowIsNoOpWhenOccupying(t *testing.T) {
	for _, s := range []types.WidgetState{types.AnimatingIn, types.Visible} {
		e := entry(1, 1, 0)
		e.State = s
		out := Show(e)
		assert.False(t, out.Changed, s.String())
		assert.Equal(t, s, e.State)
	}
}

func TestHideOnClosedIsNoOp(t *testing.T) {
	e := entry(1, 1, 0)
	out := Hide(e)
	assert.False(t, out.Changed)
	assert.Empty(t, out.Events)
	assert.Equal(t, types.Closed, e.State)
}

func TestHideZeroDurationCloses(t *testing.T) {
	e := entry(0, 0, 0)
	Show(e)
	out := Hide(e)

	assert.True(t, out.Closed)
	assert.Equal(t, types.Closed, e.State)
	assert.Equal(t, []types.WidgetState{types.AnimatingOut, types.Closed}, states(out.Events))
}

func TestAdvanceCompletesAnimatingIn(t *testing.T) {
	e := entry(0.5, 0.5, 0)
	Show(e)

	out := Advance(e, 0.25)
	assert.False(t, out.Changed)
	assert.Equal(t, 0.25, e.StateElapsed)

	out = Advance(e, 0.25)
	assert.True(t, out.Shown)
	assert.Equal(t, types.Visible, e.State)
	assert.Zero(t, e.VisibleElapsed)
}

func TestAdvanceZeroDeltaCompletesZeroDuration(t *testing.T) {
	e := entry(0, 0, 0)
	e.State = types.AnimatingIn
	out := Advance(e, 0)
	assert.True(t, out.Shown)
	assert.Equal(t, types.Visible, e.State)
}

func TestAdvanceAutoClose(t *testing.T) {
	e := entry(0, 0.5, 2)
	Show(e)

	Advance(e, 1.0)
	assert.Equal(t, types.Visible, e.State)
	assert.Equal(t, 1.0, e.VisibleElapsed)

	out := Advance(e, 1.5)
	assert.Equal(t, types.AnimatingOut, e.State)
	assert.Equal(t, []types.WidgetState{types.AnimatingOut}, states(out.Events))
}

func TestAdvanceIgnoresNonFiniteDelta(t *testing.T) {
	e := entry(0.5, 0.5, 0)
	Show(e)

	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		out := Advance(e, dt)
		assert.False(t, out.Changed, "dt=%v", dt)
		assert.Zero(t, e.StateElapsed, "dt=%v", dt)
	}

	Advance(e, 0.5)
	assert.Equal(t, types.Visible, e.State)
}

func TestAdvanceOneTransitionPerCall(t *testing.T) {
	e := entry(0.1, 0.1, 0)
	Show(e)

	// A huge delta completes AnimatingIn but must not also start anything else.
	out := Advance(e, 100)
	assert.Equal(t, types.Visible, e.State)
	assert.Equal(t, []types.WidgetState{types.Visible}, states(out.Events))
}

func TestPausedDoesNotAdvance(t *testing.T) {
	e := entry(0, 0, 1)
	Show(e)
	Advance(e, 0.5)
	Pause(e)
	require.Equal(t, types.Paused, e.State)

	out := Advance(e, 10)
	assert.False(t, out.Changed)
	assert.Zero(t, e.StateElapsed)
	assert.Equal(t, 0.5, e.VisibleElapsed)
}

func TestForce(t *testing.T) {
	e := entry(1, 1, 0)
	out := Force(e, types.Visible)
	assert.True(t, out.Changed)
	assert.True(t, out.Shown)
	assert.Equal(t, types.Visible, e.State)

	e.StateElapsed = 3
	out = Force(e, types.Visible)
	assert.False(t, out.Changed)
	assert.Zero(t, e.StateElapsed)
}

func TestRoundTripRestoresInitialFields(t *testing.T) {
	configs := []struct{ in, out float64 }{{0, 0}, {0.3, 0}, {0, 0.7}, {0.25, 0.25}}
	for _, c := range configs {
		e := entry(c.in, c.out, 0)
		initial := *e

		Show(e)
		Advance(e, c.in)
		require.Equal(t, types.Visible, e.State)
		Advance(e, 1.25)
		Hide(e)
		Advance(e, c.out)

		assert.Equal(t, initial, *e, "in=%v out=%v", c.in, c.out)
	}
}
