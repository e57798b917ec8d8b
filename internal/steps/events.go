package steps

import (
	"fmt"

	"gamestate/internal/game"
)

type Counted struct {
	game.EventBase
	Key   string
	Total int
}

type Moved struct {
	game.EventBase
	ID   int
	From int
	To   int
}

type Removed struct {
	game.EventBase
	ID      int
	Name    string
	Cascade bool
}

type Attached struct {
	game.EventBase
	ID     int
	Parent int
	Name   string
}

type Announced struct {
	game.EventBase
	Message string
}

// Describe renders an event as one log line. Unknown events fall back to
// their Go representation.
func Describe(e game.Event) string {
	switch e := e.(type) {
	case Counted:
		return fmt.Sprintf("%s is now %d", e.Key, e.Total)
	case Moved:
		return fmt.Sprintf("moved #%d from #%d to #%d", e.ID, e.From, e.To)
	case Removed:
		if e.Cascade {
			return fmt.Sprintf("removed %s (#%d) and its contents", e.Name, e.ID)
		}
		return fmt.Sprintf("removed %s (#%d)", e.Name, e.ID)
	case Attached:
		return fmt.Sprintf("added %s as #%d", e.Name, e.ID)
	case Announced:
		return e.Message
	default:
		return fmt.Sprintf("%+v", e)
	}
}
