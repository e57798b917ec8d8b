package game

import "fmt"

// Pipeline runs its steps in order, merging each step's output into the
// context seen by the next one. When it reaches a choice step it parks
// itself on the stack, positioned at that step, until ResolveChoice moves
// it past the choice.
type Pipeline struct {
	steps   []Action
	current int
	context Context
	// inherit marks a remainder left behind a nested pipeline parked on a
	// choice. It takes that pipeline's final output once it finishes.
	inherit bool
}

// NewPipeline builds a pipeline starting at its first step with an empty
// context.
func NewPipeline(steps ...Action) Pipeline {
	return Pipeline{steps: append([]Action(nil), steps...)}
}

// WithContext returns p with c as its starting context.
func (p Pipeline) WithContext(c Context) Pipeline {
	p.context = c
	return p
}

// Steps returns a copy of the step list.
func (p Pipeline) Steps() []Action { return append([]Action(nil), p.steps...) }

func (p Pipeline) Len() int { return len(p.steps) }

// Current is the index of the next step to run.
func (p Pipeline) Current() int { return p.current }

// Context is the running context carried between steps.
func (p Pipeline) Context() Context { return p.context }

// CurrentStep returns the step at the cursor.
func (p Pipeline) CurrentStep() (Action, bool) {
	if p.current < 0 || p.current >= len(p.steps) {
		return nil, false
	}
	return p.steps[p.current], true
}

// Done reports whether every step has run.
func (p Pipeline) Done() bool { return p.current >= len(p.steps) }

// Execute runs steps from the cursor until the pipeline is exhausted or a
// choice step is next. Steps' spawned actions go onto the state's stack
// right away, except when one of them is itself waiting on a choice: then
// the pipeline stops and hands them back together with its own remainder so
// the nested choice is settled first. The remainder then picks up the
// nested pipeline's output when it completes.
func (p Pipeline) Execute(s State, in Context) (Result, error) {
	ctx := p.context.Merge(in)
	for i := p.current; i < len(p.steps); i++ {
		step := p.steps[i]
		if _, ok := choiceOf(step); ok {
			s.logf("pipeline waiting for choice at step %d of %d", i+1, len(p.steps))
			return Result{State: s, Spawned: []Action{p.at(i, ctx)}, Output: ctx}, nil
		}

		res, err := step.Execute(s, ctx)
		if err != nil {
			return Result{}, fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		s = res.State
		ctx = ctx.Merge(res.Output)

		if len(res.Spawned) == 0 {
			continue
		}
		if awaitsChoice(res.Spawned) {
			spawned := append([]Action(nil), res.Spawned...)
			if i+1 < len(p.steps) {
				rest := p.at(i+1, ctx)
				rest.inherit = true
				spawned = append(spawned, rest)
			}
			return Result{State: s, Spawned: spawned, Output: ctx}, nil
		}
		s = s.AddActions(res.Spawned...)
	}
	return Result{State: s, Output: ctx}, nil
}

func (p Pipeline) at(index int, ctx Context) Pipeline {
	p.current = index
	p.context = ctx
	p.inherit = false
	return p
}

// handOff merges out into the pipeline at stack index i if that pipeline is
// a remainder waiting on a nested one.
func (s State) handOff(i int, out Context) State {
	if i < 0 || i >= s.actions.Len() {
		return s
	}
	p, ok := pipelineOf(s.actions.Get(i))
	if !ok || !p.inherit {
		return s
	}
	p.context = p.context.Merge(out)
	p.inherit = false
	s.actions = s.actions.Set(i, p)
	s.logf("pipeline at stack %d inherits %d context values", i+1, out.Len())
	return s
}

// pendingChoice returns the choice the cursor is on, with the steps after
// it attached as the continuation.
func (p Pipeline) pendingChoice() (Choice, bool) {
	step, ok := p.CurrentStep()
	if !ok {
		return Choice{}, false
	}
	ch, ok := choiceOf(step)
	if !ok {
		return Choice{}, false
	}
	n := len(p.steps)
	cont := Pipeline{steps: p.steps[p.current+1 : n : n], context: p.context}
	ch.Continuation = &cont
	return ch, true
}

func pipelineOf(a Action) (Pipeline, bool) {
	switch p := a.(type) {
	case Pipeline:
		return p, true
	case *Pipeline:
		if p != nil {
			return *p, true
		}
	}
	return Pipeline{}, false
}

// blocked reports whether a, sitting on top of the stack, stops processing.
func blocked(a Action) bool {
	if _, ok := choiceOf(a); ok {
		return true
	}
	if p, ok := pipelineOf(a); ok {
		_, waiting := p.pendingChoice()
		return waiting
	}
	return false
}

func awaitsChoice(actions []Action) bool {
	for _, a := range actions {
		if blocked(a) {
			return true
		}
	}
	return false
}
