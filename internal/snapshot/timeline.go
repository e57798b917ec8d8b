package snapshot

// Timeline is a bounded undo history. The newest entry is the head; the
// oldest entries are dropped once Limit is exceeded. Limit 0 keeps
// everything.
type Timeline[T any] struct {
	entries []T
	Limit   int
}

// NewTimeline starts a history at initial.
func NewTimeline[T any](initial T, limit int) *Timeline[T] {
	return &Timeline[T]{entries: []T{initial}, Limit: limit}
}

// Push records v as the new head.
func (t *Timeline[T]) Push(v T) {
	t.entries = append(t.entries, v)
	if t.Limit > 0 && len(t.entries) > t.Limit {
		t.entries = append(t.entries[:0:0], t.entries[len(t.entries)-t.Limit:]...)
	}
}

// Head returns the newest entry.
func (t *Timeline[T]) Head() T {
	return t.entries[len(t.entries)-1]
}

// Undo drops the head and returns the entry before it. The first entry
// is never dropped; false means there was nothing to undo.
func (t *Timeline[T]) Undo() (T, bool) {
	if len(t.entries) < 2 {
		return t.Head(), false
	}
	t.entries = t.entries[:len(t.entries)-1]
	return t.Head(), true
}

// Reset replaces the whole history with v.
func (t *Timeline[T]) Reset(v T) {
	t.entries = []T{v}
}

func (t *Timeline[T]) Len() int { return len(t.entries) }
