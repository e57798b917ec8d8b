package scenario

import (
	"fmt"

	"gamestate/internal/game"
)

// Picker decides a selection for a pending choice. Returning nil stops
// Autoplay at that choice.
type Picker func(ch game.Choice) []int

// FirstEnabled picks the first enabled options, as few as the choice
// allows. It declines, stopping Autoplay, when too few options are enabled
// to meet the minimum, including a required choice offering none.
func FirstEnabled(ch game.Choice) []int {
	lo, _ := ch.Bounds()
	ids := []int{}
	for _, o := range ch.EnabledOptions() {
		if len(ids) == lo {
			break
		}
		ids = append(ids, o.ID)
	}
	if len(ids) < lo {
		return nil
	}
	return ids
}

// Autoplay processes s, resolving each choice with pick, until the stack is
// empty or pick declines. It returns the last state reached.
func Autoplay(s game.State, pick Picker) (game.State, error) {
	s, err := s.ProcessAllActions()
	if err != nil {
		return s, err
	}
	for s.IsWaitingForChoice() {
		ch, _ := s.PendingChoice()
		if pick == nil {
			return s, nil
		}
		ids := pick(ch)
		if ids == nil {
			return s, nil
		}
		next, err := s.ResolveChoice(ids...)
		if err != nil {
			return s, fmt.Errorf("choice %q: %w", ch.Prompt, err)
		}
		s = next
	}
	return s, nil
}
