package game

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"
)

type counted struct {
	EventBase
	Value int
}

type marked struct {
	EventBase
	Name   string
	Choice any
}

// increment adds by to the "counter" context value and logs the total.
func increment(by int) Action {
	return ActionFunc(func(s State, in Context) (Result, error) {
		total := Input(in, "counter", 0) + by
		s = s.AddEvent(counted{Value: total})
		return NewResult(s).WithOutput("counter", total), nil
	})
}

// mark logs its name along with whatever the "choice" key holds.
func mark(name string) Action {
	return ActionFunc(func(s State, in Context) (Result, error) {
		v, _ := in.Get(DefaultOutputKey)
		return NewResult(s.AddEvent(marked{Name: name, Choice: v})), nil
	})
}

type pickTarget struct {
	Choice
}

func names(s State) []string {
	var out []string
	for _, m := range EventsOf[marked](s) {
		out = append(out, m.Name)
	}
	return out
}

func lastCount(t *testing.T, s State) int {
	t.Helper()
	cs := EventsOf[counted](s)
	if len(cs) == 0 {
		t.Fatal("Expected a counted event")
	}
	return cs[len(cs)-1].Value
}

func TestPhase_String(t *testing.T) {
	if PhaseAwaitingChoice.String() != "awaiting-choice" || Phase(9).String() != "phase(9)" {
		t.Error("Unexpected phase names")
	}
}

func TestAddActions_RunsInOrder(t *testing.T) {
	s := NewState().AddActions(mark("a"), mark("b"), mark("c"))
	if s.PendingActions() != 3 {
		t.Fatalf("Expected 3 pending, got %d", s.PendingActions())
	}

	s, err := s.ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if got := names(s); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Expected a b c, got %v", got)
	}
	if s.HasPendingActions() || s.Phase() != PhaseIdle {
		t.Error("Expected empty stack")
	}
}

func TestAddAction_IsLIFO(t *testing.T) {
	s := NewState().AddAction(mark("first")).AddAction(mark("second"))
	s, err := s.ProcessNextAction()
	if err != nil {
		t.Fatalf("ProcessNextAction: %v", err)
	}
	if got := names(s); len(got) != 1 || got[0] != "second" {
		t.Errorf("Expected second to run first, got %v", got)
	}
	if s.PendingActions() != 1 {
		t.Errorf("Expected 1 pending, got %d", s.PendingActions())
	}
}

func TestProcessNextAction_Idle(t *testing.T) {
	s := NewState()
	next, err := s.ProcessNextAction()
	if err != nil || next.HasPendingActions() {
		t.Errorf("Expected no-op on idle state, got %v", err)
	}
}

func TestSpawnedActionsRunFirstInOrder(t *testing.T) {
	parent := ActionFunc(func(s State, _ Context) (Result, error) {
		return NewResult(s.AddEvent(marked{Name: "parent"})).Spawn(mark("x"), mark("y")), nil
	})
	s := NewState().AddAction(mark("later")).AddAction(parent)

	s, err := s.ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	want := []string{"parent", "x", "y", "later"}
	if got := names(s); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestActionError_LeavesStateUnchanged(t *testing.T) {
	boom := errors.New("boom")
	failing := ActionFunc(func(s State, _ Context) (Result, error) {
		return Result{}, boom
	})
	s := NewState().AddAction(failing).AddAction(mark("ok"))

	next, err := s.ProcessAllActions()
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if next.PendingActions() != 2 || len(next.Events()) != 0 {
		t.Error("Expected the input state back on error")
	}
}

func TestActionReturningZeroState(t *testing.T) {
	bad := ActionFunc(func(State, Context) (Result, error) { return Result{}, nil })
	_, err := NewState().AddAction(bad).ProcessNextAction()
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestPipeline_PauseAndResume(t *testing.T) {
	p := NewPipeline(increment(5), NewChoice("Pick one", ""), increment(3))
	s := NewState().AddAction(p)

	s, err := s.ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if s.Phase() != PhaseAwaitingChoice || !s.IsWaitingForChoice() {
		t.Fatalf("Expected awaiting choice, got %s", s.Phase())
	}
	if s.PendingActions() != 1 {
		t.Fatalf("Expected the pipeline to stay on the stack, got %d actions", s.PendingActions())
	}
	top, _ := s.Peek()
	parked, ok := top.(Pipeline)
	if !ok {
		t.Fatalf("Expected a Pipeline on top, got %T", top)
	}
	if parked.Current() != 1 || Input(parked.Context(), "counter", 0) != 5 {
		t.Errorf("Expected cursor 1 and counter 5, got %d and %v", parked.Current(), parked.Context().Map())
	}

	ch, ok := s.PendingChoice()
	if !ok || ch.Prompt != "Pick one" {
		t.Fatalf("Expected pending choice, got %+v", ch)
	}
	if ch.Continuation == nil || ch.Continuation.Len() != 1 {
		t.Errorf("Expected one step after the choice, got %+v", ch.Continuation)
	}

	// processing while waiting does nothing
	same, err := s.ProcessAllActions()
	if err != nil || same.PendingActions() != 1 {
		t.Errorf("Expected no progress while waiting, got %v", err)
	}

	done, err := s.ResolveChoice(1)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	if done.HasPendingActions() {
		t.Errorf("Expected empty stack, got %d", done.PendingActions())
	}
	if got := lastCount(t, done); got != 8 {
		t.Errorf("Expected counter 8, got %d", got)
	}

	if !s.IsWaitingForChoice() {
		t.Error("Resolving must not affect the paused state")
	}
}

func TestPipeline_ContextThroughChoice(t *testing.T) {
	p := NewPipeline(NewChoice("Target", "", Option{ID: 7, Text: "Goblin"}), mark("after"))
	s, err := NewState().AddAction(p).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	s, err = s.ResolveChoice(7)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	ms := EventsOf[marked](s)
	if len(ms) != 1 || ms[0].Choice != 7 {
		t.Fatalf("Expected step after the choice to see 7, got %+v", ms)
	}
}

func TestPipeline_CustomOutputKey(t *testing.T) {
	read := ActionFunc(func(s State, in Context) (Result, error) {
		return NewResult(s.AddEvent(counted{Value: Input(in, "target", -1)})), nil
	})
	p := NewPipeline(NewChoice("Target", "target"), read)
	s, _ := NewState().AddAction(p).ProcessAllActions()
	s, err := s.ResolveChoice(4)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	if got := lastCount(t, s); got != 4 {
		t.Errorf("Expected 4 under target, got %d", got)
	}
}

func TestPipeline_MultiSelect(t *testing.T) {
	ch := Choice{
		Prompt:  "Loot",
		Options: []Option{{ID: 1}, {ID: 2}, {ID: 3}},
		Min:     1,
		Max:     2,
	}
	s, _ := NewState().AddAction(NewPipeline(ch, mark("after"))).ProcessAllActions()

	s, err := s.ResolveChoice(1, 3)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	ms := EventsOf[marked](s)
	if len(ms) != 1 || !reflect.DeepEqual(ms[0].Choice, []int{1, 3}) {
		t.Errorf("Expected []int{1, 3}, got %+v", ms)
	}
}

func TestPipeline_EmbeddedChoice(t *testing.T) {
	ch := pickTarget{NewChoice("Who?", "")}
	s, _ := NewState().AddAction(NewPipeline(ch, mark("after"))).ProcessAllActions()
	if !s.IsWaitingForChoice() {
		t.Fatal("Types embedding Choice should pause the pipeline")
	}
	pc, _ := s.PendingChoice()
	if pc.Prompt != "Who?" {
		t.Errorf("Expected prompt Who?, got %q", pc.Prompt)
	}
	s, err := s.ResolveChoice(2)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	if got := names(s); len(got) != 1 {
		t.Errorf("Expected one mark, got %v", got)
	}
}

func TestPipeline_TwoChoices(t *testing.T) {
	p := NewPipeline(
		NewChoice("first", "a"),
		NewChoice("second", "b"),
		ActionFunc(func(s State, in Context) (Result, error) {
			return NewResult(s.AddEvent(counted{Value: Input(in, "a", 0)*10 + Input(in, "b", 0)})), nil
		}),
	)
	s, _ := NewState().AddAction(p).ProcessAllActions()
	s, err := s.ResolveChoice(4)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	if ch, _ := s.PendingChoice(); ch.Prompt != "second" {
		t.Fatalf("Expected second choice, got %q", ch.Prompt)
	}
	s, err = s.ResolveChoice(2)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	if got := lastCount(t, s); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
}

func TestPipeline_Empty(t *testing.T) {
	s, err := NewState().AddAction(NewPipeline()).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if s.HasPendingActions() {
		t.Error("Empty pipeline should complete immediately")
	}
}

func TestPipeline_StartingContext(t *testing.T) {
	p := NewPipeline(increment(1)).WithContext(NewContext(map[string]any{"counter": 10}))
	s, _ := NewState().AddAction(p).ProcessAllActions()
	if got := lastCount(t, s); got != 11 {
		t.Errorf("Expected 11, got %d", got)
	}
}

func TestPipeline_StepError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline(increment(1), ActionFunc(func(State, Context) (Result, error) {
		return Result{}, boom
	}))
	s := NewState().AddAction(p)
	next, err := s.ProcessAllActions()
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped boom, got %v", err)
	}
	if !strings.Contains(err.Error(), "step 2") {
		t.Errorf("Expected step index in %q", err)
	}
	if next.PendingActions() != 1 || len(next.Events()) != 0 {
		t.Error("Expected the input state back")
	}
}

func TestPipeline_StepSpawnsPlainActions(t *testing.T) {
	spawner := ActionFunc(func(s State, _ Context) (Result, error) {
		return NewResult(s).Spawn(mark("spawned")), nil
	})
	s, err := NewState().AddAction(NewPipeline(spawner, mark("step"))).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	want := []string{"step", "spawned"}
	if got := names(s); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPipeline_NestedChoiceRunsFirst(t *testing.T) {
	inner := NewPipeline(NewChoice("inner", ""), mark("inner-after"))
	spawner := ActionFunc(func(s State, _ Context) (Result, error) {
		return NewResult(s).Spawn(inner), nil
	})
	outer := NewPipeline(spawner, mark("outer-after"))

	s, err := NewState().AddAction(outer).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if s.PendingActions() != 2 {
		t.Fatalf("Expected inner and outer remainder on the stack, got %d", s.PendingActions())
	}
	if ch, _ := s.PendingChoice(); ch.Prompt != "inner" {
		t.Fatalf("Expected inner choice pending, got %q", ch.Prompt)
	}
	if len(names(s)) != 0 {
		t.Error("Outer steps after the spawner must wait for the inner choice")
	}

	s, err = s.ResolveChoice(1)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	want := []string{"inner-after", "outer-after"}
	if got := names(s); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if s.HasPendingActions() {
		t.Error("Expected empty stack")
	}
}

// readKey logs whatever key holds under name.
func readKey(name, key string) Action {
	return ActionFunc(func(s State, in Context) (Result, error) {
		v, _ := in.Get(key)
		return NewResult(s.AddEvent(marked{Name: name, Choice: v})), nil
	})
}

func TestPipeline_NestedPipelineStepPassesSelectionOn(t *testing.T) {
	outer := NewPipeline(NewPipeline(NewChoice("inner", "pick")), readKey("outer", "pick"))

	s, err := NewState().AddAction(outer).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if ch, _ := s.PendingChoice(); ch.Prompt != "inner" {
		t.Fatalf("Expected inner choice pending, got %q", ch.Prompt)
	}

	s, err = s.ResolveChoice(7)
	if err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	ms := EventsOf[marked](s)
	if len(ms) != 1 || ms[0].Choice != 7 {
		t.Fatalf("Expected the outer step to read pick=7, got %+v", ms)
	}
	if s.HasPendingActions() {
		t.Error("Expected empty stack")
	}
}

func TestPipeline_SpawnedPipelinePassesSelectionOn(t *testing.T) {
	inner := NewPipeline(NewChoice("first", ""), mark("inner-after"), NewChoice("second", "other"))
	spawner := ActionFunc(func(s State, _ Context) (Result, error) {
		return NewResult(s).Spawn(inner), nil
	})
	outer := NewPipeline(increment(1), spawner, increment(1), readKey("outer", "other"), mark("outer-after"))

	s, err := NewState().AddAction(outer).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if s, err = s.ResolveChoice(3); err != nil {
		t.Fatalf("ResolveChoice(first): %v", err)
	}
	if ch, _ := s.PendingChoice(); ch.Prompt != "second" {
		t.Fatalf("Expected the inner pipeline's second choice, got %q", ch.Prompt)
	}
	if s, err = s.ResolveChoice(4); err != nil {
		t.Fatalf("ResolveChoice(second): %v", err)
	}

	want := []string{"inner-after", "outer", "outer-after"}
	if got := names(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	ms := EventsOf[marked](s)
	if ms[1].Choice != 4 || ms[2].Choice != 3 {
		t.Errorf("Expected outer steps to see both selections, got %+v", ms)
	}
	if lastCount(t, s) != 2 {
		t.Errorf("Expected the outer counter to keep running, got %d", lastCount(t, s))
	}
}

func TestPipeline_UnrelatedPipelineDoesNotHandOff(t *testing.T) {
	outer := NewPipeline(NewPipeline(NewChoice("inner", "pick")), readKey("outer", "leak"))
	s, err := NewState().AddAction(outer).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	leaky := NewPipeline(ActionFunc(func(s State, _ Context) (Result, error) {
		return NewResult(s).WithOutput("leak", true), nil
	}))
	// A finished pipeline two frames above the remainder keeps its output.
	s = s.AddAction(leaky).AddAction(mark("between"))
	if s, err = s.ProcessAllActions(); err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if s, err = s.ResolveChoice(1); err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	for _, m := range EventsOf[marked](s) {
		if m.Name == "outer" && m.Choice != nil {
			t.Errorf("Expected no leak into the outer remainder, got %v", m.Choice)
		}
	}
}

func TestResolveChoice_NothingPending(t *testing.T) {
	_, err := NewState().ResolveChoice(1)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
	_, err = NewState().AddAction(mark("x")).ResolveChoice(1)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState with a ready action, got %v", err)
	}
}

func TestResolveChoice_StandaloneChoice(t *testing.T) {
	s := NewState().AddAction(NewChoice("alone", ""))
	if !s.IsWaitingForChoice() {
		t.Fatal("A bare choice on top blocks processing")
	}
	if _, ok := s.PendingChoice(); !ok {
		t.Error("Expected the bare choice to be reported")
	}
	if _, err := s.ResolveChoice(1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestResolveChoice_Validation(t *testing.T) {
	ch := Choice{
		Prompt:  "Loot",
		Options: []Option{{ID: 1}, {ID: 2}, {ID: 3, Disabled: true}},
		Min:     1,
		Max:     2,
	}
	s, _ := NewState().AddAction(NewPipeline(ch, mark("after"))).ProcessAllActions()

	tests := []struct {
		name     string
		selected []int
	}{
		{"none", nil},
		{"too many", []int{1, 2, 3}},
		{"disabled", []int{3}},
		{"unknown", []int{9}},
		{"duplicate", []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := s.ResolveChoice(tt.selected...)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected ErrValidation, got %v", err)
			}
			if !next.IsWaitingForChoice() || len(next.Events()) != 0 {
				t.Error("Failed resolution must leave the state unchanged")
			}
		})
	}
}

func TestChoice_Bounds(t *testing.T) {
	cases := []struct {
		min, max, lo, hi int
	}{
		{0, 0, 1, 1},
		{2, 0, 2, 2},
		{0, 3, 0, 3},
		{1, 2, 1, 2},
		{3, 1, 3, 1},
	}
	for _, c := range cases {
		lo, hi := Choice{Min: c.min, Max: c.max}.Bounds()
		if lo != c.lo || hi != c.hi {
			t.Errorf("Bounds(%d, %d) = %d, %d; want %d, %d", c.min, c.max, lo, hi, c.lo, c.hi)
		}
	}
}

func TestChoice_Check(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		ok       bool
	}{
		{"unset", 0, 0, true},
		{"exact", 2, 0, true},
		{"range", 1, 3, true},
		{"max below min", 3, 1, false},
		{"negative", -1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Choice{Prompt: "p", Min: tt.min, Max: tt.max}.Check()
			if tt.ok && err != nil {
				t.Fatalf("Expected valid bounds, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestResolveChoice_InvalidBounds(t *testing.T) {
	ch := Choice{Prompt: "Broken", Options: []Option{{ID: 1}, {ID: 2}, {ID: 3}}, Min: 3, Max: 1}
	s, err := NewState().AddAction(NewPipeline(ch, mark("after"))).ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	for _, sel := range [][]int{{1}, {1, 2, 3}} {
		next, err := s.ResolveChoice(sel...)
		if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "invalid bounds") {
			t.Fatalf("ResolveChoice(%v): expected invalid bounds error, got %v", sel, err)
		}
		if !next.IsWaitingForChoice() {
			t.Error("Failed resolution must leave the choice pending")
		}
	}
}

func TestChoice_EnabledOptions(t *testing.T) {
	ch := NewChoice("p", "", Option{ID: 1}, Option{ID: 2, Disabled: true}, Option{ID: 3})
	opts := ch.EnabledOptions()
	if len(opts) != 2 || opts[0].ID != 1 || opts[1].ID != 3 {
		t.Errorf("Unexpected enabled options %+v", opts)
	}
	if ch.Key() != DefaultOutputKey {
		t.Errorf("Expected default key, got %q", ch.Key())
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := NewState().WithLogger(log.New(&buf, "", 0))
	s = s.AddAction(NewPipeline(mark("before"), NewChoice("Pick", ""), mark("after")))

	s, err := s.ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if _, err := s.ResolveChoice(1); err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"processing game.Pipeline", "waiting for choice at step 2 of 3", `choice "Pick" resolved with [1]`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in log output:\n%s", want, out)
		}
	}
}

func TestLogger_ChoiceFirst(t *testing.T) {
	var buf bytes.Buffer
	s := NewState().WithLogger(log.New(&buf, "", 0))
	s = s.AddAction(NewPipeline(NewChoice("Pick", ""), mark("after")))

	s, err := s.ProcessAllActions()
	if err != nil {
		t.Fatalf("ProcessAllActions: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("A pipeline parked from the start runs nothing, got log:\n%s", buf.String())
	}
	if _, err := s.ResolveChoice(1); err != nil {
		t.Fatalf("ResolveChoice: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `choice "Pick" resolved`) || !strings.Contains(out, "processing game.Pipeline") {
		t.Errorf("Unexpected log output:\n%s", out)
	}
}
