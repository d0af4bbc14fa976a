package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/widgetcore/engine/label"
)

const (
	modal = label.Label("UI.Modal")
	hud   = label.Label("UI.Hud")
)

func TestFIFO(t *testing.T) {
	q := New()
	q.Enqueue(modal, "a")
	q.Enqueue(modal, "b")
	q.Enqueue(modal, "c")

	require.Equal(t, []string{"a", "b", "c"}, q.List(modal))
	for _, want := range []string{"a", "b", "c"} {
		require.Equal(t, want, q.List(modal)[0])
		require.True(t, q.Remove(want))
	}
	assert.Nil(t, q.List(modal))
	assert.Empty(t, q.Categories())
}

func TestEnqueueDeduplicates(t *testing.T) {
	q := New()
	assert.True(t, q.Enqueue(modal, "a"))
	assert.True(t, q.Enqueue(modal, "b"))
	assert.False(t, q.Enqueue(modal, "a"))
	assert.Equal(t, []string{"a", "b"}, q.List(modal))
}

func TestEnqueueMovesBetweenCategories(t *testing.T) {
	q := New()
	q.Enqueue(modal, "a")
	q.Enqueue(hud, "a")

	assert.Nil(t, q.List(modal))
	assert.Equal(t, []string{"a"}, q.List(hud))
	cat, ok := q.Contains("a")
	assert.True(t, ok)
	assert.Equal(t, hud, cat)
}

func TestRemove(t *testing.T) {
	q := New()
	q.Enqueue(modal, "a")
	q.Enqueue(modal, "b")
	q.Enqueue(modal, "c")

	assert.True(t, q.Remove("b"))
	assert.False(t, q.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, q.List(modal))
	_, ok := q.Contains("b")
	assert.False(t, ok)
}

func TestListIsCopy(t *testing.T) {
	q := New()
	q.Enqueue(modal, "a")
	l := q.List(modal)
	l[0] = "mutated"
	assert.Equal(t, []string{"a"}, q.List(modal))
}

func TestCategoriesSorted(t *testing.T) {
	q := New()
	q.Enqueue(modal, "a")
	q.Enqueue(hud, "b")
	assert.Equal(t, []label.Label{hud, modal}, q.Categories())
}
