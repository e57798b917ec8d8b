package scenario

import (
	"gopkg.in/yaml.v3"

	"gamestate/internal/game"
)

// Dump renders every root tree of s in the scenario object format, with ids.
func Dump(s game.State) ([]byte, error) {
	var out struct {
		NextID  int          `yaml:"next_id"`
		Objects []ObjectSpec `yaml:"objects"`
		Pending int          `yaml:"pending_actions"`
	}
	out.NextID = s.NextID()
	out.Pending = s.PendingActions()
	for _, id := range s.Roots() {
		root, err := s.LoadHierarchy(id)
		if err != nil {
			return nil, err
		}
		out.Objects = append(out.Objects, fromObject(root))
	}
	return yaml.Marshal(out)
}

func fromObject(obj game.Object) ObjectSpec {
	m := obj.Meta()
	spec := ObjectSpec{ID: m.ID, Name: m.Name, Description: m.Description}
	switch o := obj.(type) {
	case game.Player:
		spec.Kind = "player"
		health, level := o.Health, o.Level
		spec.Health, spec.Level = &health, &level
	case game.Item:
		spec.Kind = "item"
		spec.Weight, spec.Value = o.Weight, o.Value
	}
	for _, c := range m.Children {
		spec.Children = append(spec.Children, fromObject(c))
	}
	return spec
}
