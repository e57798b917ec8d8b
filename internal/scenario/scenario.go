// Package scenario loads YAML scenarios: starting object trees plus named
// pipelines compiled into game actions.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gamestate/internal/game"
	"gamestate/internal/steps"
)

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a scenario from YAML.
func Parse(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// World is a built scenario: the starting state and the ids its keys map to.
type World struct {
	Scenario *Scenario
	State    game.State
	Keys     map[string]int
}

// Build adds every object tree to a fresh state. Ids follow file order,
// depth first.
func (sc *Scenario) Build() (*World, error) {
	w := &World{Scenario: sc, State: game.NewState(), Keys: make(map[string]int)}
	for i, spec := range sc.Objects {
		obj, err := toObject(spec)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i+1, err)
		}
		base := w.State.NextID()
		w.State, err = w.State.AddObjectRecursive(obj, 0)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i+1, err)
		}
		if _, err := w.assignKeys(spec, base); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// assignKeys mirrors the pre-order numbering of AddObjectRecursive and
// returns the next unused id.
func (w *World) assignKeys(spec ObjectSpec, id int) (int, error) {
	if spec.Key != "" {
		if _, dup := w.Keys[spec.Key]; dup {
			return 0, fmt.Errorf("duplicate key %q", spec.Key)
		}
		w.Keys[spec.Key] = id
	}
	next := id + 1
	for _, child := range spec.Children {
		var err error
		next, err = w.assignKeys(child, next)
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

// Lookup returns the id bound to key.
func (w *World) Lookup(key string) (int, error) {
	id, ok := w.Keys[key]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", key)
	}
	return id, nil
}

// Start returns the built state with every pipeline queued, first pipeline
// on top.
func (w *World) Start() (game.State, error) {
	var ps []game.Action
	for _, spec := range w.Scenario.Pipelines {
		p, err := w.compile(spec)
		if err != nil {
			return game.State{}, err
		}
		ps = append(ps, p)
	}
	return w.State.AddActions(ps...), nil
}

// Pipeline compiles the named pipeline against the world's keys.
func (w *World) Pipeline(name string) (game.Pipeline, error) {
	for _, spec := range w.Scenario.Pipelines {
		if spec.Name == name {
			return w.compile(spec)
		}
	}
	return game.Pipeline{}, fmt.Errorf("no pipeline named %q", name)
}

func (w *World) compile(spec PipelineSpec) (game.Pipeline, error) {
	actions := make([]game.Action, 0, len(spec.Steps))
	for i, st := range spec.Steps {
		a, err := w.step(st)
		if err != nil {
			return game.Pipeline{}, fmt.Errorf("pipeline %q step %d: %w", spec.Name, i+1, err)
		}
		actions = append(actions, a)
	}
	return game.NewPipeline(actions...).WithContext(game.NewContext(spec.Context)), nil
}

func (w *World) step(st StepSpec) (game.Action, error) {
	switch st.Op {
	case "increment":
		return steps.Increment{Key: orDefault(st.Key, "counter"), By: st.By}, nil
	case "choose":
		return w.choice(st)
	case "move":
		to, err := w.optionalRef(st.To)
		if err != nil {
			return nil, err
		}
		return steps.MoveFrom{Key: orDefault(st.FromKey, game.DefaultOutputKey), To: to}, nil
	case "remove":
		return steps.RemoveFrom{Key: orDefault(st.FromKey, game.DefaultOutputKey), Cascade: st.Cascade}, nil
	case "add":
		if st.Object == nil {
			return nil, errors.New("add needs an object")
		}
		obj, err := toObject(*st.Object)
		if err != nil {
			return nil, err
		}
		parent, err := w.optionalRef(st.Parent)
		if err != nil {
			return nil, err
		}
		return steps.Attach{Object: obj, Parent: parent}, nil
	case "announce":
		return steps.Announce{Message: st.Message}, nil
	case "":
		return nil, errors.New("missing op")
	default:
		return nil, fmt.Errorf("unknown op %q", st.Op)
	}
}

func (w *World) choice(st StepSpec) (game.Action, error) {
	var opts []game.Option
	for _, o := range st.Options {
		id := o.ID
		if o.Ref != "" {
			var err error
			if id, err = w.Lookup(o.Ref); err != nil {
				return nil, err
			}
		}
		opts = append(opts, game.Option{ID: id, Text: o.Text, Disabled: o.Disabled})
	}
	if st.ChildrenOf != "" {
		parent, err := w.Lookup(st.ChildrenOf)
		if err != nil {
			return nil, err
		}
		for _, child := range w.State.Children(parent) {
			opts = append(opts, game.Option{ID: child.Meta().ID, Text: child.Meta().Name})
		}
	}
	for i, o := range opts {
		if o.Text != "" {
			continue
		}
		if obj, err := w.State.Object(o.ID); err == nil {
			opts[i].Text = obj.Meta().Name
		}
	}

	ch := game.NewChoice(st.Prompt, st.Output, opts...)
	if st.Min != 0 || st.Max != 0 {
		ch.Min, ch.Max = st.Min, st.Max
	}
	if err := ch.Check(); err != nil {
		return nil, err
	}
	return ch, nil
}

// optionalRef resolves key, treating "" as the root level.
func (w *World) optionalRef(key string) (int, error) {
	if key == "" {
		return 0, nil
	}
	return w.Lookup(key)
}

func toObject(spec ObjectSpec) (game.Object, error) {
	children := make([]game.Object, 0, len(spec.Children))
	for _, c := range spec.Children {
		child, err := toObject(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	e := game.Entity{Name: spec.Name, Description: spec.Description, Children: children}

	switch spec.Kind {
	case "player":
		p := game.NewPlayer(spec.Name)
		p.Entity = e
		if spec.Health != nil {
			p.Health = *spec.Health
		}
		if spec.Level != nil {
			p.Level = *spec.Level
		}
		return p, nil
	case "item", "":
		return game.Item{Entity: e, Weight: spec.Weight, Value: spec.Value}, nil
	default:
		return nil, fmt.Errorf("%q: unknown kind %q", spec.Name, spec.Kind)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
