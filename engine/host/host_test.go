package host

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndDestroy(t *testing.T) {
	h := New(zerolog.Nop())

	hd := h.Spawn("hud", "HUD")
	require.True(t, hd.Alive())
	assert.Equal(t, "hud", hd.ID())

	w, ok := hd.Resolve()
	require.True(t, ok)
	assert.Equal(t, "HUD", w.Name)
	assert.NotEqual(t, uuid.Nil, w.Instance)
	got, ok := h.Get("hud")
	require.True(t, ok)
	assert.Same(t, w, got)

	assert.True(t, h.Destroy("hud"))
	assert.False(t, hd.Alive(), "destroyed widgets resolve as dead")
	_, ok = h.Get("hud")
	assert.False(t, ok)
	assert.False(t, h.Destroy("hud"))
	assert.Empty(t, h.Live())
}

func TestSpawnExistingReturnsSameWidget(t *testing.T) {
	h := New(zerolog.Nop())
	a := h.Spawn("menu", "Menu")
	b := h.Spawn("menu", "Other")

	wa, _ := a.Resolve()
	wb, _ := b.Resolve()
	assert.Same(t, wa, wb)
}

func TestRespawnGetsNewInstance(t *testing.T) {
	h := New(zerolog.Nop())
	old := h.Spawn("toast", "")
	w1, _ := old.Resolve()
	id1 := w1.Instance

	h.Destroy("toast")
	fresh := h.Spawn("toast", "")
	w2, ok := fresh.Resolve()
	require.True(t, ok)
	assert.NotEqual(t, id1, w2.Instance)
	assert.False(t, old.Alive())
}

func TestDestroyAll(t *testing.T) {
	h := New(zerolog.Nop())
	h.Spawn("a", "")
	h.Spawn("b", "")
	h.Spawn("c", "")

	assert.Equal(t, 2, h.DestroyAll([]string{"a", "c", "missing"}))
	assert.Equal(t, []string{"b"}, h.Live())
}
