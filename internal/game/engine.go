package game

import "fmt"

// Phase is where the action stack stands.
type Phase int

const (
	// PhaseIdle: nothing pending.
	PhaseIdle Phase = iota
	// PhaseReady: the top action can run.
	PhaseReady
	// PhaseAwaitingChoice: the top action is a choice, or a pipeline parked
	// on one.
	PhaseAwaitingChoice
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReady:
		return "ready"
	case PhaseAwaitingChoice:
		return "awaiting-choice"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (s State) Phase() Phase {
	top, ok := s.Peek()
	switch {
	case !ok:
		return PhaseIdle
	case blocked(top):
		return PhaseAwaitingChoice
	default:
		return PhaseReady
	}
}

func (s State) HasPendingActions() bool { return s.actions.Len() > 0 }

func (s State) IsWaitingForChoice() bool { return s.Phase() == PhaseAwaitingChoice }

// PendingActions is the stack depth.
func (s State) PendingActions() int { return s.actions.Len() }

// Peek returns the action that would run next.
func (s State) Peek() (Action, bool) {
	n := s.actions.Len()
	if n == 0 {
		return nil, false
	}
	return s.actions.Get(n - 1), true
}

// AddAction pushes a onto the stack.
func (s State) AddAction(a Action) State {
	s.actions = s.actions.Append(a)
	return s
}

// AddActions pushes actions so that actions[0] runs first.
func (s State) AddActions(actions ...Action) State {
	for i := len(actions) - 1; i >= 0; i-- {
		s.actions = s.actions.Append(actions[i])
	}
	return s
}

func (s State) pop() (Action, State) {
	n := s.actions.Len()
	top := s.actions.Get(n - 1)
	s.actions = s.actions.Slice(0, n-1)
	return top, s
}

// ProcessNextAction runs the top action once. It does nothing unless the
// phase is PhaseReady. The action sees the state without itself on the
// stack; its result state is adopted and its spawned actions are pushed so
// the first one runs next. A pipeline that completes hands its output to the
// remainder of an enclosing pipeline sitting right below it. If the action
// fails, s is returned unchanged.
func (s State) ProcessNextAction() (State, error) {
	if s.Phase() != PhaseReady {
		return s, nil
	}

	top, rest := s.pop()
	s.logf("processing %T (stack %d)", top, s.actions.Len())

	res, err := top.Execute(rest, Context{})
	if err != nil {
		s.logf("action %T failed: %v", top, err)
		return s, err
	}

	next := res.State
	if next.objects == nil {
		return s, newError(CodeInvalidState, 0, "action %T returned an uninitialized state", top)
	}
	if next.logger == nil {
		next.logger = s.logger
	}
	if _, ok := pipelineOf(top); ok && len(res.Spawned) == 0 {
		next = next.handOff(rest.actions.Len()-1, res.Output)
	}
	return next.AddActions(res.Spawned...), nil
}

// ProcessAllActions runs actions until the stack is empty or a choice is
// pending. A pipeline that never reaches either loops forever. On error the
// receiver is returned.
func (s State) ProcessAllActions() (State, error) {
	cur := s
	for cur.Phase() == PhaseReady {
		next, err := cur.ProcessNextAction()
		if err != nil {
			return s, err
		}
		cur = next
	}
	return cur, nil
}
