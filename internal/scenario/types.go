package scenario

// Scenario is a YAML file describing starting objects and the pipelines to
// run against them.
type Scenario struct {
	Title     string         `yaml:"title"`
	Objects   []ObjectSpec   `yaml:"objects"`
	Pipelines []PipelineSpec `yaml:"pipelines"`
}

// ObjectSpec describes one object and its contents.
type ObjectSpec struct {
	ID          int          `yaml:"id,omitempty"` // only written by Dump
	Kind        string       `yaml:"kind"`         // "player" | "item"
	Key         string       `yaml:"key,omitempty"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Health      *int         `yaml:"health,omitempty"` // nil keeps the player default
	Level       *int         `yaml:"level,omitempty"`
	Weight      int          `yaml:"weight,omitempty"`
	Value       int          `yaml:"value,omitempty"`
	Children    []ObjectSpec `yaml:"children,omitempty"`
}

// PipelineSpec is a named list of steps with a starting context.
type PipelineSpec struct {
	Name    string         `yaml:"name"`
	Context map[string]any `yaml:"context"`
	Steps   []StepSpec     `yaml:"steps"`
}

// StepSpec is one pipeline step. Op selects which fields apply.
type StepSpec struct {
	Op string `yaml:"op"` // increment | choose | move | remove | add | announce

	// increment
	Key string `yaml:"key"`
	By  int    `yaml:"by"`

	// choose
	Prompt     string       `yaml:"prompt"`
	Output     string       `yaml:"output"`
	Min        int          `yaml:"min"`
	Max        int          `yaml:"max"`
	Options    []OptionSpec `yaml:"options"`
	ChildrenOf string       `yaml:"children_of"`

	// move, remove
	FromKey string `yaml:"from_key"`
	To      string `yaml:"to"`
	Cascade bool   `yaml:"cascade"`

	// add
	Parent string      `yaml:"parent"`
	Object *ObjectSpec `yaml:"object"`

	// announce
	Message string `yaml:"message"`
}

// OptionSpec offers either an object by key (Ref) or a bare numeric ID.
type OptionSpec struct {
	Ref      string `yaml:"ref"`
	ID       int    `yaml:"id"`
	Text     string `yaml:"text"`
	Disabled bool   `yaml:"disabled"`
}
