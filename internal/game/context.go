package game

import (
	"sort"

	"github.com/benbjohnson/immutable"
)

// Context is the persistent key/value bag threaded between pipeline steps.
// The zero value is an empty context.
type Context struct {
	m *immutable.Map[string, any]
}

// NewContext builds a context from a plain map.
func NewContext(values map[string]any) Context {
	var c Context
	for k, v := range values {
		c = c.Set(k, v)
	}
	return c
}

func (c Context) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

func (c Context) Get(key string) (any, bool) {
	if c.m == nil {
		return nil, false
	}
	return c.m.Get(key)
}

// Set returns a copy of c with key bound to v.
func (c Context) Set(key string, v any) Context {
	m := c.m
	if m == nil {
		m = immutable.NewMap[string, any](nil)
	}
	return Context{m: m.Set(key, v)}
}

// Merge returns c with every entry of other applied on top.
func (c Context) Merge(other Context) Context {
	if other.Len() == 0 {
		return c
	}
	if c.Len() == 0 {
		return other
	}
	itr := other.m.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		c = c.Set(k, v)
	}
	return c
}

// Keys returns the bound keys in sorted order.
func (c Context) Keys() []string {
	if c.m == nil {
		return nil
	}
	keys := make([]string, 0, c.m.Len())
	itr := c.m.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map copies c into a plain map.
func (c Context) Map() map[string]any {
	out := make(map[string]any, c.Len())
	for _, k := range c.Keys() {
		out[k], _ = c.Get(k)
	}
	return out
}

// Input reads key from c as a T, returning def when the key is missing or
// holds another type.
func Input[T any](c Context, key string, def T) T {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	t, ok := v.(T)
	if !ok {
		return def
	}
	return t
}
