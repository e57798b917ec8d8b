package game

// Action is a unit of work run against a State. in is the context handed
// over by the previous pipeline step (empty for top-level actions).
type Action interface {
	Execute(s State, in Context) (Result, error)
}

// ActionFunc adapts a plain function to an Action.
type ActionFunc func(s State, in Context) (Result, error)

func (f ActionFunc) Execute(s State, in Context) (Result, error) {
	return f(s, in)
}

// Result is what executing an action produces: the new state, follow-up
// actions to push (first one runs first) and output for the next step.
type Result struct {
	State   State
	Spawned []Action
	Output  Context
}

// NewResult wraps s with no spawned actions and no output.
func NewResult(s State) Result {
	return Result{State: s}
}

// WithOutput returns r with key bound in its output.
func (r Result) WithOutput(key string, v any) Result {
	r.Output = r.Output.Set(key, v)
	return r
}

// Spawn returns r with actions appended to its spawned list.
func (r Result) Spawn(actions ...Action) Result {
	spawned := make([]Action, 0, len(r.Spawned)+len(actions))
	spawned = append(spawned, r.Spawned...)
	r.Spawned = append(spawned, actions...)
	return r
}
