package eval

import "sort"

// Scope resolves the names an expression can see
type Scope interface {
	Lookup(name string) (any, bool)
	Keys() []string
}

// Map is a Scope over a plain map
type Map map[string]any

func (m Map) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Context is the root scope of a render. Names resolve against the data
// first and then against the behavior instance, if any.
type Context struct {
	Data     any
	Instance any
}

// NewContext returns the root scope for data and an optional behavior instance
func NewContext(data, instance any) *Context {
	return &Context{Data: data, Instance: instance}
}

func (c *Context) Lookup(name string) (any, bool) {
	if v, ok := Member(c.Data, name); ok {
		return v, true
	}
	if c.Instance != nil {
		return Member(c.Instance, name)
	}
	return nil, false
}

func (c *Context) Keys() []string {
	return mergeKeys(keysOf(c.Data), keysOf(c.Instance))
}

// Layer binds a few names over a parent scope. Loop iterations bind the loop
// variables and index; component calls bind the call-site attributes. Every
// other lookup falls through to the parent, which is held by reference and
// never copied, so later changes to the parent stay visible.
type Layer struct {
	parent Scope
	names  []string
	values []any
}

// NewLayer returns an empty layer over parent
func NewLayer(parent Scope) *Layer {
	return &Layer{parent: parent}
}

// Bind sets name to v in this layer
func (l *Layer) Bind(name string, v any) *Layer {
	for i, n := range l.names {
		if n == name {
			l.values[i] = v
			return l
		}
	}
	l.names = append(l.names, name)
	l.values = append(l.values, v)
	return l
}

func (l *Layer) Lookup(name string) (any, bool) {
	for i, n := range l.names {
		if n == name {
			return l.values[i], true
		}
	}
	if l.parent == nil {
		return nil, false
	}
	return l.parent.Lookup(name)
}

func (l *Layer) Keys() []string {
	var parent []string
	if l.parent != nil {
		parent = l.parent.Keys()
	}
	return mergeKeys(l.names, parent)
}

func mergeKeys(lists ...[]string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, list := range lists {
		for _, k := range list {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}
