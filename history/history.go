// Package history implements linear undo/redo over immutable snapshots.
//
// A Manager holds a base state and the states produced by each committed
// operation. The cursor marks the current state; committing while the
// cursor is behind the tip discards every state after it.
package history

// Option configures a Manager.
type Option func(*config)

type config struct {
	limit int
}

// WithLimit caps the number of undoable steps. When a commit exceeds the
// cap, the oldest step is folded into the base state. Zero means no limit.
func WithLimit(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.limit = n
		}
	}
}

// Manager is a linear history of states of type T. States are stored as
// given; callers commit immutable values such as snapshots.
//
// Manager is not safe for concurrent use.
type Manager[T any] struct {
	base    T
	entries []T
	cursor  int // number of entries applied
	limit   int
}

// New creates a history whose initial state is base.
func New[T any](base T, opts ...Option) *Manager[T] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Manager[T]{base: base, limit: c.limit}
}

// Commit records the state produced by one finished operation. Redo
// entries beyond the cursor are discarded.
func (m *Manager[T]) Commit(state T) {
	clear(m.entries[m.cursor:])
	m.entries = append(m.entries[:m.cursor], state)
	m.cursor++
	if m.limit > 0 && len(m.entries) > m.limit {
		m.base = m.entries[0]
		var zero T
		m.entries[0] = zero
		m.entries = m.entries[1:]
		m.cursor--
	}
}

// Current returns the state at the cursor.
func (m *Manager[T]) Current() T {
	if m.cursor == 0 {
		return m.base
	}
	return m.entries[m.cursor-1]
}

// Undo moves the cursor back one step and returns the state to restore.
// ok is false when there is nothing to undo.
func (m *Manager[T]) Undo() (state T, ok bool) {
	if !m.CanUndo() {
		return state, false
	}
	m.cursor--
	return m.Current(), true
}

// Redo moves the cursor forward one step and returns the state to restore.
// ok is false when there is nothing to redo.
func (m *Manager[T]) Redo() (state T, ok bool) {
	if !m.CanRedo() {
		return state, false
	}
	m.cursor++
	return m.Current(), true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager[T]) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (m *Manager[T]) CanRedo() bool { return m.cursor < len(m.entries) }

// Len returns the number of committed entries, including redoable ones.
func (m *Manager[T]) Len() int { return len(m.entries) }

// Cursor returns how many entries are currently applied.
func (m *Manager[T]) Cursor() int { return m.cursor }

// Reset drops all entries and starts over from base.
func (m *Manager[T]) Reset(base T) {
	m.base = base
	clear(m.entries)
	m.entries = m.entries[:0]
	m.cursor = 0
}
