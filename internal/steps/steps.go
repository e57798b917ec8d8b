// Package steps holds ready-made actions for pipelines: a context counter,
// moves and removals driven by a choice selection, attaching new objects
// and plain announcements. Each one records what it did in the event log.
package steps

import (
	"fmt"
	"time"

	"gamestate/internal/game"
)

var now = time.Now

func stamp() game.EventBase {
	return game.EventBase{Timestamp: float64(now().UnixNano()) / 1e9}
}

// Increment adds By to the int bound to Key and outputs the new total under
// the same key.
type Increment struct {
	Key string
	By  int
}

func (a Increment) Execute(s game.State, in game.Context) (game.Result, error) {
	total := game.Input(in, a.Key, 0) + a.By
	s = s.AddEvent(Counted{EventBase: stamp(), Key: a.Key, Total: total})
	return game.NewResult(s).WithOutput(a.Key, total), nil
}

// MoveFrom moves every object selected under Key to parent To (0 for the
// root level).
type MoveFrom struct {
	Key string
	To  int
}

func (a MoveFrom) Execute(s game.State, in game.Context) (game.Result, error) {
	ids, err := Selected(in, a.Key)
	if err != nil {
		return game.Result{}, err
	}
	for _, id := range ids {
		from, _ := s.Parent(id)
		s, err = s.MoveObject(id, a.To)
		if err != nil {
			return game.Result{}, fmt.Errorf("move %d: %w", id, err)
		}
		s = s.AddEvent(Moved{EventBase: stamp(), ID: id, From: from, To: a.To})
	}
	return game.NewResult(s), nil
}

// RemoveFrom deletes every object selected under Key. Without Cascade the
// children of a removed object move up to its parent.
type RemoveFrom struct {
	Key     string
	Cascade bool
}

func (a RemoveFrom) Execute(s game.State, in game.Context) (game.Result, error) {
	ids, err := Selected(in, a.Key)
	if err != nil {
		return game.Result{}, err
	}
	for _, id := range ids {
		obj, err := s.Object(id)
		if err != nil {
			return game.Result{}, fmt.Errorf("remove %d: %w", id, err)
		}
		s = s.RemoveObject(id, a.Cascade).
			AddEvent(Removed{EventBase: stamp(), ID: id, Name: obj.Meta().Name, Cascade: a.Cascade})
	}
	return game.NewResult(s), nil
}

// AttachedKey is the output key carrying the id of the last attached object.
const AttachedKey = "attached"

// Attach adds Object, with its Children, under Parent.
type Attach struct {
	Object game.Object
	Parent int
}

func (a Attach) Execute(s game.State, _ game.Context) (game.Result, error) {
	if a.Object == nil {
		return game.Result{}, fmt.Errorf("attach: no object")
	}
	id := s.NextID()
	s, err := s.AddObjectRecursive(a.Object, a.Parent)
	if err != nil {
		return game.Result{}, fmt.Errorf("attach %q: %w", a.Object.Meta().Name, err)
	}
	s = s.AddEvent(Attached{EventBase: stamp(), ID: id, Parent: a.Parent, Name: a.Object.Meta().Name})
	return game.NewResult(s).WithOutput(AttachedKey, id), nil
}

// Announce logs Message.
type Announce struct {
	Message string
}

func (a Announce) Execute(s game.State, _ game.Context) (game.Result, error) {
	return game.NewResult(s.AddEvent(Announced{EventBase: stamp(), Message: a.Message})), nil
}

// Selected reads the ids stored under key by a resolved choice. Both a
// single int and an []int are accepted.
func Selected(in game.Context, key string) ([]int, error) {
	v, ok := in.Get(key)
	if !ok {
		return nil, fmt.Errorf("no selection under %q: %w", key, game.ErrValidation)
	}
	switch sel := v.(type) {
	case int:
		return []int{sel}, nil
	case []int:
		return append([]int(nil), sel...), nil
	default:
		return nil, fmt.Errorf("selection %q holds %T: %w", key, v, game.ErrValidation)
	}
}
