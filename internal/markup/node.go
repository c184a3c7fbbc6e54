package markup

import "strings"

// NodeType identifies the variant of a Node
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	DoctypeNode
)

// Attr is a single attribute in source order
type Attr struct {
	Key string
	Val string
}

// Attrs is an ordered attribute map. Keys are unique and keep their insertion order.
type Attrs struct {
	list []Attr
}

// Get returns the value of key and whether it exists
func (a *Attrs) Get(key string) (string, bool) {
	for _, attr := range a.list {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Value returns the value of key or "" when absent
func (a *Attrs) Value(key string) string {
	v, _ := a.Get(key)
	return v
}

// Has reports whether key exists
func (a *Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set replaces the value of an existing key in place or appends a new one
func (a *Attrs) Set(key, val string) {
	for i := range a.list {
		if a.list[i].Key == key {
			a.list[i].Val = val
			return
		}
	}
	a.list = append(a.list, Attr{Key: key, Val: val})
}

// Rename swaps the key at oldKey's position for newKey with the given value.
// A separate attribute already named newKey is dropped.
func (a *Attrs) Rename(oldKey, newKey, val string) {
	if oldKey != newKey {
		a.Delete(newKey)
	}
	for i := range a.list {
		if a.list[i].Key == oldKey {
			a.list[i] = Attr{Key: newKey, Val: val}
			return
		}
	}
	a.list = append(a.list, Attr{Key: newKey, Val: val})
}

// Delete removes key and reports whether it was present
func (a *Attrs) Delete(key string) bool {
	for i, attr := range a.list {
		if attr.Key == key {
			a.list = append(a.list[:i], a.list[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the attribute names in order
func (a *Attrs) Keys() []string {
	keys := make([]string, len(a.list))
	for i, attr := range a.list {
		keys[i] = attr.Key
	}
	return keys
}

// List returns a copy of the attributes in order
func (a *Attrs) List() []Attr {
	return append([]Attr(nil), a.list...)
}

// Len returns the number of attributes
func (a *Attrs) Len() int {
	return len(a.list)
}

// Clone returns an independent copy
func (a *Attrs) Clone() Attrs {
	return Attrs{list: a.List()}
}

// Node is an element, text, doctype or document node. A parent owns its children;
// Parent is kept for navigation only.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    Attrs
	Data     string
	Children []*Node
	Parent   *Node

	// Removed marks a node for excision at serialization time
	Removed bool
	// Resolved is set once a text node has been interpolated
	Resolved bool
}

// NewElement creates a detached element
func NewElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: tag}
}

// NewText creates a detached text node
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// AppendChild adds c as the last child of n
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// SetChildren replaces all children of n
func (n *Node) SetChildren(children []*Node) {
	for _, c := range children {
		c.Parent = n
	}
	n.Children = children
}

// Index returns the position of n among its parent's children, or -1
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// InsertBefore inserts nodes as siblings directly before n
func (n *Node) InsertBefore(nodes ...*Node) {
	i := n.Index()
	if i < 0 || len(nodes) == 0 {
		return
	}
	p := n.Parent
	for _, c := range nodes {
		c.Parent = p
	}
	children := make([]*Node, 0, len(p.Children)+len(nodes))
	children = append(children, p.Children[:i]...)
	children = append(children, nodes...)
	children = append(children, p.Children[i:]...)
	p.Children = children
}

// ReplaceWith puts nodes in place of n and detaches n
func (n *Node) ReplaceWith(nodes ...*Node) {
	i := n.Index()
	if i < 0 {
		return
	}
	p := n.Parent
	for _, c := range nodes {
		c.Parent = p
	}
	children := make([]*Node, 0, len(p.Children)-1+len(nodes))
	children = append(children, p.Children[:i]...)
	children = append(children, nodes...)
	children = append(children, p.Children[i+1:]...)
	p.Children = children
	n.Parent = nil
}

// FirstElement returns the first element child of n
func (n *Node) FirstElement() *Node {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// Elements returns the element children of n
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsBlank reports whether n is a whitespace-only text node
func (n *Node) IsBlank() bool {
	return n.Type == TextNode && strings.TrimSpace(n.Data) == ""
}

// Excise drops removed nodes from the subtree rooted at n
func (n *Node) Excise() {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.Removed {
			c.Parent = nil
			continue
		}
		c.Excise()
		kept = append(kept, c)
	}
	n.Children = kept
}
