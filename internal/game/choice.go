package game

// DefaultOutputKey is where a choice stores its selection when OutputKey is
// empty.
const DefaultOutputKey = "choice"

// Option is one selectable entry of a choice. ID usually names the object
// being picked. The zero value is enabled.
type Option struct {
	ID       int
	Text     string
	Disabled bool
}

// Choice is a pipeline step that cannot run on its own: it freezes
// processing until ResolveChoice supplies a selection.
type Choice struct {
	Prompt  string
	Options []Option
	// Min and Max bound how many options must be picked. Both zero means
	// exactly one; Max zero alone means exactly Min. A positive Max below
	// Min is rejected by Check.
	Min int
	Max int
	// OutputKey is the context key receiving the selection: a single int
	// when one option is picked, otherwise a []int.
	OutputKey string
	// Continuation holds the pipeline steps after this choice. It is filled
	// in on the value returned by PendingChoice.
	Continuation *Pipeline
}

// Chooser is implemented by choice steps. Types embedding Choice satisfy it
// and are treated as choices by the engine.
type Chooser interface {
	Action
	ChoiceStep() Choice
}

// NewChoice returns a single-pick choice.
func NewChoice(prompt, outputKey string, options ...Option) Choice {
	return Choice{
		Prompt:    prompt,
		Options:   options,
		Min:       1,
		Max:       1,
		OutputKey: outputKey,
	}
}

func (c Choice) ChoiceStep() Choice { return c }

// Execute does nothing. A choice only makes progress through ResolveChoice.
func (c Choice) Execute(s State, _ Context) (Result, error) {
	return NewResult(s), nil
}

// Bounds returns the effective selection bounds. Bounds that fail Check are
// returned as given.
func (c Choice) Bounds() (lo, hi int) {
	lo, hi = c.Min, c.Max
	if lo == 0 && hi == 0 {
		return 1, 1
	}
	if hi == 0 {
		hi = lo
	}
	return lo, hi
}

// Check reports bounds no selection can satisfy.
func (c Choice) Check() error {
	if c.Min < 0 || c.Max < 0 {
		return newError(CodeValidation, 0, "choice %q: negative bounds %d..%d", c.Prompt, c.Min, c.Max)
	}
	if lo, hi := c.Bounds(); hi < lo {
		return newError(CodeValidation, 0, "choice %q: invalid bounds, min %d above max %d", c.Prompt, lo, hi)
	}
	return nil
}

// Key returns the effective output key.
func (c Choice) Key() string {
	if c.OutputKey == "" {
		return DefaultOutputKey
	}
	return c.OutputKey
}

// EnabledOptions returns the options that can be picked.
func (c Choice) EnabledOptions() []Option {
	var out []Option
	for _, o := range c.Options {
		if !o.Disabled {
			out = append(out, o)
		}
	}
	return out
}

func (c Choice) validate(selected []int) error {
	if err := c.Check(); err != nil {
		return err
	}
	lo, hi := c.Bounds()
	if len(selected) < lo || len(selected) > hi {
		return newError(CodeValidation, 0, "must select between %d and %d options, got %d", lo, hi, len(selected))
	}
	if len(c.Options) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			return newError(CodeValidation, id, "option %d selected twice", id)
		}
		seen[id] = true
		opt, ok := c.option(id)
		if !ok {
			return newError(CodeValidation, id, "option %d is not offered", id)
		}
		if opt.Disabled {
			return newError(CodeValidation, id, "option %d is disabled", id)
		}
	}
	return nil
}

func (c Choice) option(id int) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func selection(selected []int) any {
	if len(selected) == 1 {
		return selected[0]
	}
	return append([]int(nil), selected...)
}

func choiceOf(a Action) (Choice, bool) {
	ch, ok := a.(Chooser)
	if !ok {
		return Choice{}, false
	}
	return ch.ChoiceStep(), true
}

// PendingChoice returns the choice processing is frozen on, whether it sits
// directly on top of the stack or is the current step of the top pipeline.
func (s State) PendingChoice() (Choice, bool) {
	top, ok := s.Peek()
	if !ok {
		return Choice{}, false
	}
	if ch, ok := choiceOf(top); ok {
		return ch, true
	}
	if p, ok := pipelineOf(top); ok {
		return p.pendingChoice()
	}
	return Choice{}, false
}

// ResolveChoice records selected under the pending choice's output key,
// moves the frozen pipeline past the choice and processes actions until the
// next choice or an empty stack. On error the receiver is returned as is.
func (s State) ResolveChoice(selected ...int) (State, error) {
	top, ok := s.Peek()
	if !ok || !blocked(top) {
		return s, newError(CodeInvalidState, 0, "no pending choice to resolve")
	}
	if _, ok := choiceOf(top); ok {
		return s, newError(CodeInvalidState, 0, "standalone choice on stack: choices must run inside a pipeline")
	}

	p, _ := pipelineOf(top)
	ch, _ := p.pendingChoice()
	if err := ch.validate(selected); err != nil {
		return s, err
	}

	_, rest := s.pop()
	resumed := p.at(p.current+1, p.context.Set(ch.Key(), selection(selected)))
	s.logf("choice %q resolved with %v", ch.Prompt, selected)

	next, err := rest.AddAction(resumed).ProcessAllActions()
	if err != nil {
		return s, err
	}
	return next, nil
}
