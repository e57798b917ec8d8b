package game

import "fmt"

// Entity holds the fields every stored object shares. Children is only
// used when building a tree to insert or when reading a materialized view;
// once an object is inside a State the parent/child indexes are the truth.
type Entity struct {
	ID          int
	Name        string
	Description string
	Children    []Object
}

// Meta returns the shared entity fields.
func (e Entity) Meta() Entity { return e }

// Object is anything that can be placed in a State. Variants embed Entity
// and implement the two copy constructors so the store can force ids and
// attach children without knowing the concrete type.
type Object interface {
	Meta() Entity
	WithID(id int) Object
	WithChildren(children []Object) Object
}

// Player is a placeable character.
type Player struct {
	Entity
	Health int
	Level  int
}

// NewPlayer returns a player with default stats.
func NewPlayer(name string) Player {
	return Player{
		Entity: Entity{Name: name},
		Health: 100,
		Level:  1,
	}
}

func (p Player) WithID(id int) Object {
	p.ID = id
	return p
}

func (p Player) WithChildren(children []Object) Object {
	p.Children = children
	return p
}

// Summary is a one-line description used by views.
func (p Player) Summary() string {
	return fmt.Sprintf("HP %d, level %d", p.Health, p.Level)
}

// Item is a carryable thing.
type Item struct {
	Entity
	Weight int
	Value  int
}

func (i Item) WithID(id int) Object {
	i.ID = id
	return i
}

func (i Item) WithChildren(children []Object) Object {
	i.Children = children
	return i
}

func (i Item) Summary() string {
	return fmt.Sprintf("weight %d, value %d", i.Weight, i.Value)
}
