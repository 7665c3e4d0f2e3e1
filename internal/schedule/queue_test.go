package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(q *Queue[string], turn int) []string {
	var out []string
	for {
		e, ok := q.PopDue(turn)
		if !ok {
			return out
		}
		out = append(out, e.Item)
	}
}

func TestQueue_OrdersByTurn(t *testing.T) {
	var q Queue[string]
	q.Push(3, "three")
	q.Push(1, "one")
	q.Push(2, "two")

	assert.Empty(t, drain(&q, 0))
	assert.Equal(t, []string{"one", "two", "three"}, drain(&q, 3))
	assert.Zero(t, q.Len())
}

func TestQueue_FIFOWithinTurn(t *testing.T) {
	var q Queue[string]
	q.Push(2, "first")
	q.Push(1, "early")
	q.Push(2, "second")
	q.Push(2, "third")

	assert.Equal(t, []string{"early", "first", "second", "third"}, drain(&q, 2))
}

func TestQueue_PopDueStopsAtFuture(t *testing.T) {
	var q Queue[int]
	q.Push(0, 10)
	q.Push(5, 50)

	e, ok := q.PopDue(1)
	require.True(t, ok)
	assert.Equal(t, 10, e.Item)

	_, ok = q.PopDue(1)
	assert.False(t, ok)

	next, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 5, next.Turn)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ItemsDoesNotConsume(t *testing.T) {
	var q Queue[string]
	q.Push(2, "b")
	q.Push(1, "a")

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Item)
	assert.Equal(t, 2, q.Len())
}
