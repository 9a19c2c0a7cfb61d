// Package handle provides a handle table for Go values that an external
// engine refers to from its callbacks.
//
// The engine never holds a Go pointer. It holds an opaque integer handle,
// and every callback resolves the handle through the table. Once the value
// is unregistered, a late callback resolves to nothing instead of reaching
// a torn-down object.
package handle

import "sync"

// Handle is an opaque reference to a registered value. The zero Handle is
// never issued.
type Handle uint64

// Table maps handles to values of type T.
//
// Table is safe for concurrent use.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[Handle]T
	next   Handle
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		values: make(map[Handle]T),
		next:   1,
	}
}

// Register stores v and returns a fresh handle for it.
// Handles are never reused within a table.
func (t *Table[T]) Register(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.values[h] = v
	return h
}

// Lookup returns the value registered under h.
func (t *Table[T]) Lookup(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[h]
	return v, ok
}

// Unregister removes h. It reports whether h was registered.
func (t *Table[T]) Unregister(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.values[h]; !ok {
		return false
	}
	delete(t.values, h)
	return true
}

// Len returns the number of registered values.
// Useful for leak checks in tests.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
