package islet

import (
	"fmt"
	"time"

	"github.com/livefir/islet/internal/eval"
	"github.com/livefir/islet/internal/markup"
)

// maxDepth bounds component nesting so a component that renders itself
// fails instead of recursing forever
const maxDepth = 64

// Render renders c against data on the server. data may be a map, a struct,
// a pointer to one, or a Scope. Custom tags resolve against deps in order;
// unmatched ones become hydration islands. Each call parses c.Source afresh,
// so concurrent renders of one component are independent.
func Render(c *Component, data any, deps []*Component, opts ...Option) (string, error) {
	config := newConfig(opts)
	r := &renderer{comp: c, deps: deps, config: config}
	start := time.Now()
	doc, err := r.component(rootScope(data))
	return r.finish(start, doc, err)
}

// RenderSource renders every top-level node of a template string. Top-level
// custom tags are resolved like any other.
func RenderSource(src string, data any, deps []*Component, opts ...Option) (string, error) {
	config := newConfig(opts)
	c := &Component{Source: src, origin: src}
	r := &renderer{comp: c, deps: deps, config: config, fragment: true}
	start := time.Now()
	doc, err := r.component(rootScope(data))
	return r.finish(start, doc, err)
}

func rootScope(data any) eval.Scope {
	if s, ok := data.(eval.Scope); ok {
		return s
	}
	return eval.NewContext(data, nil)
}

func (r *renderer) finish(start time.Time, doc *markup.Node, err error) (string, error) {
	m := r.config.Metrics
	if err != nil {
		if m != nil {
			m.IncrementRenderError()
		}
		r.config.logf("render %s failed: %v", r.comp.DisplayName(), err)
		return "", err
	}

	out := markup.Render(doc)
	if r.config.Minify {
		out = minifyHTML(out)
	}
	if m != nil {
		m.RecordRender(time.Since(start))
	}
	r.config.logf("rendered %s: %d bytes in %v", r.comp.DisplayName(), len(out), time.Since(start))
	return out, nil
}

// renderer holds the state of one component render. Nested components get
// their own renderer.
type renderer struct {
	comp   *Component
	deps   []*Component
	config *Config

	// root is the component's root element, which is never resolved as a
	// custom tag; nil when rendering a fragment
	root     *markup.Node
	fragment bool

	// slot is the caller's child markup for <slot/>
	slot  string
	depth int
}

// component parses and processes the component source against scope. The
// behavior, when present, is constructed once and layered after the data.
func (r *renderer) component(scope eval.Scope) (*markup.Node, error) {
	if r.depth > maxDepth {
		return nil, fmt.Errorf("component %s: nesting deeper than %d", r.comp.DisplayName(), maxDepth)
	}

	doc := markup.Parse(r.comp.Source)
	if !r.fragment {
		r.root = doc.FirstElement()
		if r.root != nil {
			r.root.Attrs.Delete(NameAttr)
		}
	}

	if r.comp.Behavior != nil {
		instance := r.comp.Behavior()
		if b, ok := instance.(Binder); ok {
			b.Bind(scope)
		}
		scope = eval.NewContext(scope, instance)
	}

	if err := r.children(doc, scope); err != nil {
		return nil, err
	}
	doc.Excise()
	return doc, nil
}

// children processes the children of parent. The list is snapshotted first:
// loop expansion inserts processed clones and must not revisit them, and
// nodes detached or removed along the way are skipped.
func (r *renderer) children(parent *markup.Node, scope eval.Scope) error {
	for _, n := range append([]*markup.Node(nil), parent.Children...) {
		if n.Removed || n.Parent != parent {
			continue
		}
		if err := r.node(n, scope); err != nil {
			return err
		}
	}
	return nil
}

// nodes processes freshly inserted nodes
func (r *renderer) nodes(list []*markup.Node, scope eval.Scope) error {
	for _, n := range list {
		if n.Removed {
			continue
		}
		if err := r.node(n, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) node(n *markup.Node, scope eval.Scope) error {
	switch n.Type {
	case markup.TextNode:
		return r.text(n, scope)
	case markup.ElementNode:
		return r.element(n, scope)
	}
	return nil
}

// element runs the directive state machine for one element
func (r *renderer) element(n *markup.Node, scope eval.Scope) error {
	if n.Attrs.Has(":if") {
		kept, err := r.chain(n, scope)
		if err != nil || kept != n {
			return err
		}
	} else {
		// an :else or :else-if with no :if before it renders unconditionally
		n.Attrs.Delete(":else-if")
		n.Attrs.Delete(":else")
	}

	if n.Attrs.Has(":for") {
		return r.loop(n, scope)
	}

	if err := r.html(n, scope); err != nil {
		return err
	}
	if err := r.spread(n, scope); err != nil {
		return err
	}

	if n.Tag == "slot" {
		return r.fillSlot(n, scope)
	}

	if n != r.root && !markup.IsStandardTag(n.Tag) {
		if c := Resolve(n.Tag, r.deps); c != nil {
			return r.inline(n, c, scope)
		}
		return r.island(n, scope)
	}

	if err := r.attributes(n, scope); err != nil {
		return err
	}
	if markup.IsRawText(n.Tag) {
		return nil
	}
	return r.children(n, scope)
}
