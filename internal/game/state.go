// Package game is a persistent hierarchical object store with a pausable
// action engine layered on top. Every operation returns a new State value;
// the receiver and every older value stay valid and unchanged.
package game

import (
	"fmt"
	"io"
	"log"

	"github.com/benbjohnson/immutable"
)

// State is an immutable snapshot of a game. Copying a State is cheap: the
// maps and lists behind it are persistent and share structure between
// versions. Use NewState; the zero value is not ready for use.
type State struct {
	nextID   int
	objects  *immutable.SortedMap[int, Object]
	children *immutable.Map[int, *immutable.List[int]]
	parents  *immutable.Map[int, int]
	actions  *immutable.List[Action]
	events   *immutable.List[Event]
	logger   *log.Logger
}

var discardLogger = log.New(io.Discard, "", 0)

// NewState returns an empty state whose first object will get id 1.
func NewState() State {
	return State{
		nextID:   1,
		objects:  immutable.NewSortedMap[int, Object](nil),
		children: immutable.NewMap[int, *immutable.List[int]](nil),
		parents:  immutable.NewMap[int, int](nil),
		actions:  immutable.NewList[Action](),
		events:   immutable.NewList[Event](),
	}
}

// WithLogger returns a copy that reports action processing to l. The logger
// travels with every state derived from the result.
func (s State) WithLogger(l *log.Logger) State {
	s.logger = l
	return s
}

func (s State) logf(format string, args ...any) {
	l := s.logger
	if l == nil {
		l = discardLogger
	}
	l.Printf(format, args...)
}

// NextID is the id the next added object will receive.
func (s State) NextID() int { return s.nextID }

// Len is the number of stored objects.
func (s State) Len() int { return s.objects.Len() }

func (s State) HasObject(id int) bool {
	_, ok := s.objects.Get(id)
	return ok
}

// Object returns the stored object with the given id.
func (s State) Object(id int) (Object, error) {
	obj, ok := s.objects.Get(id)
	if !ok {
		return nil, newError(CodeNotFound, id, "object %d does not exist", id)
	}
	return obj, nil
}

// ObjectAs returns the object with the given id as a T.
func ObjectAs[T Object](s State, id int) (T, error) {
	var zero T
	obj, err := s.Object(id)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, newError(CodeNotFound, id, "object %d is a %T, not a %T", id, obj, zero)
	}
	return t, nil
}

// FirstOfType returns the lowest-id object of type T.
func FirstOfType[T Object](s State) (T, bool) {
	itr := s.objects.Iterator()
	for !itr.Done() {
		_, obj, _ := itr.Next()
		if t, ok := obj.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// IDs returns every stored id in ascending order.
func (s State) IDs() []int {
	ids := make([]int, 0, s.objects.Len())
	itr := s.objects.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		ids = append(ids, id)
	}
	return ids
}

// Roots returns the ids of objects without a parent, ascending.
func (s State) Roots() []int {
	var roots []int
	itr := s.objects.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		if _, ok := s.parents.Get(id); !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

// ChildIDs returns the direct children of parentID in insertion order.
func (s State) ChildIDs(parentID int) []int {
	list, ok := s.children.Get(parentID)
	if !ok {
		return nil
	}
	ids := make([]int, 0, list.Len())
	itr := list.Iterator()
	for !itr.Done() {
		_, id := itr.Next()
		ids = append(ids, id)
	}
	return ids
}

// Children returns the direct child objects of parentID in insertion order.
func (s State) Children(parentID int) []Object {
	ids := s.ChildIDs(parentID)
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		if obj, ok := s.objects.Get(id); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Parent returns the parent of id; false means id is a root (or absent).
func (s State) Parent(id int) (int, bool) {
	return s.parents.Get(id)
}

// UpdateObject replaces the object stored under id. The replacement's own id
// is ignored so identity survives the swap.
func (s State) UpdateObject(id int, obj Object) (State, error) {
	if !s.HasObject(id) {
		return s, newError(CodeNotFound, id, "object %d does not exist", id)
	}
	s.objects = s.objects.Set(id, obj.WithID(id).WithChildren(nil))
	return s, nil
}

// Validate checks the store invariants: every referenced id exists, the two
// parent indexes are inverses, no list is empty, the graph is acyclic and
// nextID is above every stored id.
func (s State) Validate() error {
	var maxID int
	itr := s.objects.Iterator()
	for !itr.Done() {
		id, obj, _ := itr.Next()
		if obj.Meta().ID != id {
			return fmt.Errorf("object %d carries id %d", id, obj.Meta().ID)
		}
		maxID = max(maxID, id)
	}
	if s.nextID <= maxID {
		return fmt.Errorf("next id %d not above max id %d", s.nextID, maxID)
	}

	pitr := s.parents.Iterator()
	for !pitr.Done() {
		child, parent, _ := pitr.Next()
		if !s.HasObject(child) {
			return fmt.Errorf("parent index references missing child %d", child)
		}
		if !s.HasObject(parent) {
			return fmt.Errorf("child %d references missing parent %d", child, parent)
		}
		if !containsID(s.ChildIDs(parent), child) {
			return fmt.Errorf("child %d not listed under parent %d", child, parent)
		}
	}

	citr := s.children.Iterator()
	for !citr.Done() {
		parent, list, _ := citr.Next()
		if list.Len() == 0 {
			return fmt.Errorf("empty child list kept for %d", parent)
		}
		seen := make(map[int]bool, list.Len())
		litr := list.Iterator()
		for !litr.Done() {
			_, child := litr.Next()
			if seen[child] {
				return fmt.Errorf("child %d listed twice under %d", child, parent)
			}
			seen[child] = true
			if p, ok := s.parents.Get(child); !ok || p != parent {
				return fmt.Errorf("child %d listed under %d but parented to %d", child, parent, p)
			}
		}
	}

	for _, id := range s.IDs() {
		steps := 0
		for cur, ok := s.parents.Get(id); ok; cur, ok = s.parents.Get(cur) {
			if cur == id || steps > s.objects.Len() {
				return fmt.Errorf("object %d is its own ancestor", id)
			}
			steps++
		}
	}
	return nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
