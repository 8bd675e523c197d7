// Package table provides an insertion-ordered keyed collection with its own
// monotonic id sequence.
package table

import "iter"

// Table holds rows keyed by id and remembers insertion order.
// It is not safe for concurrent use; callers serialize access.
type Table[T any] struct {
	seq   int64
	order []int64
	rows  map[int64]*T
	dead  int
}

// New creates an empty Table whose sequence starts at 1.
func New[T any]() *Table[T] {
	return &Table[T]{rows: make(map[int64]*T)}
}

// Next advances the sequence and returns the new id. Ids are never reissued,
// even after the row holding them is deleted.
func (t *Table[T]) Next() int64 {
	t.seq++
	return t.seq
}

// Seq returns the last id issued.
func (t *Table[T]) Seq() int64 {
	return t.seq
}

// Advance raises the sequence to at least n. It never lowers it.
func (t *Table[T]) Advance(n int64) {
	if n > t.seq {
		t.seq = n
	}
}

// Put stores row under id. A new id is appended to the iteration order;
// an existing id keeps its position.
func (t *Table[T]) Put(id int64, row T) {
	if existing, ok := t.rows[id]; ok {
		*existing = row
		return
	}
	r := row
	t.rows[id] = &r
	t.order = append(t.order, id)
	t.Advance(id)
}

// Get returns the live row for id. The pointer must not escape the caller's
// critical section.
func (t *Table[T]) Get(id int64) (*T, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// Delete removes the row for id and reports whether it existed.
func (t *Table[T]) Delete(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.dead++
	if t.dead*2 > len(t.order) {
		t.compact()
	}
	return true
}

// Len returns the number of live rows.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

// All yields live rows in insertion order.
func (t *Table[T]) All() iter.Seq2[int64, *T] {
	return func(yield func(int64, *T) bool) {
		for _, id := range t.order {
			r, ok := t.rows[id]
			if !ok {
				continue
			}
			if !yield(id, r) {
				return
			}
		}
	}
}

// Reset drops every row and rewinds the sequence to zero.
func (t *Table[T]) Reset() {
	t.seq = 0
	t.order = nil
	t.rows = make(map[int64]*T)
	t.dead = 0
}

func (t *Table[T]) compact() {
	live := make([]int64, 0, len(t.rows))
	for _, id := range t.order {
		if _, ok := t.rows[id]; ok {
			live = append(live, id)
		}
	}
	t.order = live
	t.dead = 0
}
