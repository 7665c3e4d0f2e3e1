// Package schedule holds effects until the turn they resolve on.
package schedule

import "container/heap"

// Entry is a queued item with the turn it becomes due.
type Entry[T any] struct {
	Turn int
	Item T
	seq  uint64
}

type entries[T any] []Entry[T]

func (e entries[T]) Len() int { return len(e) }

func (e entries[T]) Less(i, j int) bool {
	if e[i].Turn != e[j].Turn {
		return e[i].Turn < e[j].Turn
	}
	return e[i].seq < e[j].seq
}

func (e entries[T]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *entries[T]) Push(x any) { *e = append(*e, x.(Entry[T])) }

func (e *entries[T]) Pop() any {
	old := *e
	n := len(old)
	it := old[n-1]
	*e = old[:n-1]
	return it
}

// Queue is a min-priority queue ordered by turn, FIFO within a turn.
// The zero value is ready to use. Not safe for concurrent use.
type Queue[T any] struct {
	items entries[T]
	next  uint64
}

func (q *Queue[T]) Push(turn int, item T) {
	heap.Push(&q.items, Entry[T]{Turn: turn, Item: item, seq: q.next})
	q.next++
}

func (q *Queue[T]) Len() int { return q.items.Len() }

// Peek returns the next entry without removing it.
func (q *Queue[T]) Peek() (Entry[T], bool) {
	if len(q.items) == 0 {
		return Entry[T]{}, false
	}
	return q.items[0], true
}

func (q *Queue[T]) Pop() (Entry[T], bool) {
	if len(q.items) == 0 {
		return Entry[T]{}, false
	}
	return heap.Pop(&q.items).(Entry[T]), true
}

// PopDue pops the next entry if it is due at or before turn.
func (q *Queue[T]) PopDue(turn int) (Entry[T], bool) {
	if e, ok := q.Peek(); !ok || e.Turn > turn {
		return Entry[T]{}, false
	}
	return q.Pop()
}

// Items lists pending entries in resolution order without consuming them.
func (q *Queue[T]) Items() []Entry[T] {
	cp := make(entries[T], len(q.items))
	copy(cp, q.items)
	out := make([]Entry[T], 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(Entry[T]))
	}
	return out
}
