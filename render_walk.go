package islet

import (
	"errors"
	"strings"

	"github.com/livefir/islet/internal/eval"
	"github.com/livefir/islet/internal/markup"
	"github.com/livefir/islet/internal/rewrite"
)

// chain resolves an :if / :else-if / :else chain starting at n. Only element
// siblings directly following n take part; whitespace text between them is
// ignored. The first branch whose guard holds is returned with its directive
// attributes stripped, every other branch is removed. nil means no branch
// matched.
func (r *renderer) chain(n *markup.Node, scope eval.Scope) (*markup.Node, error) {
	branches := []*markup.Node{n}
	for _, s := range n.Parent.Children[n.Index()+1:] {
		if s.Removed || s.IsBlank() {
			continue
		}
		if s.Type != markup.ElementNode {
			break
		}
		if s.Attrs.Has(":else-if") {
			branches = append(branches, s)
			continue
		}
		if s.Attrs.Has(":else") {
			branches = append(branches, s)
		}
		break
	}

	var kept *markup.Node
	for _, b := range branches {
		if kept != nil {
			b.Removed = true
			continue
		}
		ok := true
		for _, key := range []string{":if", ":else-if"} {
			raw, has := b.Attrs.Get(key)
			if !has {
				continue
			}
			v, err := r.evaluate(rewrite.AttrExpression(raw), raw, scope)
			if err != nil {
				return nil, err
			}
			ok = eval.Truthy(v)
			break
		}
		if ok {
			kept = b
		} else {
			b.Removed = true
		}
	}

	if kept != nil {
		kept.Attrs.Delete(":if")
		kept.Attrs.Delete(":else-if")
		kept.Attrs.Delete(":else")
	}
	return kept, nil
}

// loop expands a :for element. Every iteration parses the element's markup
// again and processes the copy on its own under a layer binding the loop
// names, so no state carries over between iterations. The processed copies
// are inserted before n, which is then removed.
func (r *renderer) loop(n *markup.Node, scope eval.Scope) error {
	clause := n.Attrs.Value(":for")
	loop, err := rewrite.ParseFor(clause)
	if err != nil {
		return syntaxError(r.comp.text(), err)
	}
	n.Attrs.Delete(":for")

	src, err := r.evaluate(loop.Source, clause, scope)
	if err != nil {
		return err
	}
	items, err := loopItems(loop, src)
	if err != nil {
		return r.evalError(clause, err)
	}

	tmpl := markup.Render(n)
	var clones []*markup.Node
	for i, item := range items {
		layer := eval.NewLayer(scope)
		switch {
		case loop.Entries:
			k, _ := eval.Member(item, 0.0)
			v, _ := eval.Member(item, 1.0)
			layer.Bind(loop.Keys[0], k).Bind(loop.Keys[1], v)
		case loop.Destructure:
			for _, key := range loop.Keys {
				v, _ := eval.Member(item, key)
				layer.Bind(key, v)
			}
		default:
			layer.Bind(loop.Keys[0], item)
		}
		layer.Bind(loop.Index, float64(i))

		doc := markup.Parse(tmpl)
		if err := r.children(doc, layer); err != nil {
			return err
		}
		for _, c := range doc.Children {
			if !c.Removed {
				clones = append(clones, c)
			}
		}
	}

	n.InsertBefore(clones...)
	n.Removed = true
	if m := r.config.Metrics; m != nil {
		m.AddLoopIterations(len(items))
	}
	return nil
}

// loopItems lists what a loop iterates. The bracket form over an object
// iterates its sorted [key, value] entries.
func loopItems(loop *rewrite.ForLoop, src any) ([]any, error) {
	if loop.Entries {
		if keys, values := eval.Entries(src); len(keys) > 0 {
			items := make([]any, len(keys))
			for i, k := range keys {
				items[i] = []any{k, values[i]}
			}
			return items, nil
		}
	}
	return eval.Items(src)
}

// html replaces the children of n with the markup its :html value produces.
// Text in that markup is never interpolated; its elements are still processed.
func (r *renderer) html(n *markup.Node, scope eval.Scope) error {
	raw, ok := n.Attrs.Get(":html")
	if !ok {
		return nil
	}
	n.Attrs.Delete(":html")
	r.count("raw_html")
	v, err := r.evaluate(rewrite.ScopeIdentifiers(raw), raw, scope)
	if err != nil {
		return err
	}
	nodes := markup.ParseFragment(eval.ToString(v))
	resolve(nodes)
	n.SetChildren(nodes)
	return nil
}

// spread sets one attribute per key of the :bind or :attr value. The literal
// value $attrs spreads the whole scope.
func (r *renderer) spread(n *markup.Node, scope eval.Scope) error {
	for _, key := range []string{":bind", ":attr"} {
		raw, ok := n.Attrs.Get(key)
		if !ok {
			continue
		}
		n.Attrs.Delete(key)

		var v any = scope
		if strings.TrimSpace(raw) != "$attrs" {
			var err error
			if v, err = r.evaluate(rewrite.ScopeIdentifiers(raw), raw, scope); err != nil {
				return err
			}
		}

		keys, values := eval.Entries(v)
		for i, name := range keys {
			switch {
			case !eval.Visible(values[i]):
			case markup.IsBooleanAttr(name):
				n.Attrs.Set(name, "")
			default:
				n.Attrs.Set(name, eval.ToString(values[i]))
			}
		}
	}
	return nil
}

// fillSlot replaces a <slot> with its content: the named value for
// <slot for="name">, otherwise the markup the caller placed inside the
// component tag. An unfilled default slot renders its own children.
func (r *renderer) fillSlot(n *markup.Node, scope eval.Scope) error {
	r.count("slots")
	if name, ok := n.Attrs.Get("for"); ok {
		v, _ := scope.Lookup(name)
		if v == nil {
			n.Removed = true
			return nil
		}
		nodes := markup.ParseFragment(eval.ToString(v))
		resolve(nodes)
		n.ReplaceWith(nodes...)
		return nil
	}

	if strings.TrimSpace(r.slot) == "" {
		if err := r.children(n, scope); err != nil {
			return err
		}
		n.ReplaceWith(n.Children...)
		return nil
	}

	// caller content was rendered in the caller's scope already
	nodes := markup.ParseFragment(r.slot)
	resolve(nodes)
	n.ReplaceWith(nodes...)
	return nil
}

// count bumps a named counter on the configured collector
func (r *renderer) count(name string) {
	if m := r.config.Metrics; m != nil {
		m.IncrementCustomCounter(name)
	}
}

// resolve marks the text of already rendered markup so it is never
// interpolated again
func resolve(nodes []*markup.Node) {
	for _, n := range nodes {
		if n.Type == markup.TextNode {
			n.Resolved = true
		}
		resolve(n.Children)
	}
}

// inline renders component c in place of n. Call-site attributes are bound
// over the caller's scope; the caller's children are rendered in that scope
// and become the default slot.
func (r *renderer) inline(n *markup.Node, c *Component, scope eval.Scope) error {
	props := eval.NewLayer(scope)
	for _, a := range n.Attrs.List() {
		if strings.HasPrefix(a.Key, "@") {
			continue
		}
		name, v, err := r.attrValue(a, scope)
		if err != nil {
			return err
		}
		props.Bind(name, v)
		if camel := camelCase(name); camel != name {
			props.Bind(camel, v)
		}
	}

	if err := r.children(n, scope); err != nil {
		return err
	}
	n.Excise()

	child := &renderer{
		comp:   c,
		deps:   r.deps,
		config: r.config,
		slot:   markup.RenderChildren(n),
		depth:  r.depth + 1,
	}
	doc, err := child.component(props)
	if err != nil {
		return err
	}
	n.ReplaceWith(doc.Children...)

	if m := r.config.Metrics; m != nil {
		m.IncrementComponentInlined()
	}
	r.config.logf("inlined %s into %s", c.DisplayName(), r.comp.DisplayName())
	return nil
}

// attrValue evaluates a call-site attribute. Directives are evaluated,
// interpolated values are rendered to text and anything else is literal.
func (r *renderer) attrValue(a markup.Attr, scope eval.Scope) (string, any, error) {
	switch {
	case strings.HasPrefix(a.Key, ":"):
		v, err := r.evaluate(rewrite.AttrExpression(a.Val), a.Val, scope)
		return a.Key[1:], v, err
	case strings.HasPrefix(a.Key, "$"):
		v, err := r.evaluate(rewrite.ScopeIdentifiers(a.Val), a.Val, scope)
		return a.Key[1:], v, err
	case rewrite.HasExpr(a.Val):
		s, err := r.interpolate(a.Val, scope)
		return a.Key, s, err
	}
	return a.Key, a.Val, nil
}

func camelCase(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if p := parts[i]; p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// attributes settles the remaining attributes of a standard element.
// Handlers are dropped; boolean attributes are present or absent by
// truthiness; other dynamic values are set as trimmed text or dropped when
// they produce nothing.
func (r *renderer) attributes(n *markup.Node, scope eval.Scope) error {
	for _, a := range n.Attrs.List() {
		key, val := a.Key, a.Val
		switch {
		case strings.HasPrefix(key, "@"):
			n.Attrs.Delete(key)

		case strings.HasPrefix(key, "$"), strings.HasPrefix(key, ":"):
			name := key[1:]
			var v any
			if strings.TrimSpace(val) != "" {
				source := rewrite.ScopeIdentifiers(val)
				if key[0] == ':' {
					source = rewrite.AttrExpression(val)
				}
				var err error
				if v, err = r.evaluate(source, val, scope); err != nil {
					return err
				}
			}

			if key[0] == '$' || markup.IsBooleanAttr(name) {
				if eval.Truthy(v) && v != "false" {
					n.Attrs.Rename(key, name, "")
				} else {
					n.Attrs.Delete(key)
				}
				continue
			}

			var s string
			_, shorthand := rewrite.ShorthandBody(val)
			if shorthand {
				s = strings.TrimSpace(eval.JoinParts(v))
			} else {
				s = strings.TrimSpace(eval.ToString(v))
			}
			if !eval.Visible(v) || (shorthand && s == "") {
				n.Attrs.Delete(key)
				continue
			}
			if prev := n.Attrs.Value(name); name == "class" && prev != "" {
				s = prev + " " + s
			}
			n.Attrs.Rename(key, name, s)

		case rewrite.HasExpr(val):
			s, err := r.interpolate(val, scope)
			if err != nil {
				return err
			}
			n.Attrs.Set(key, strings.TrimSpace(s))
		}
	}
	return nil
}

// text interpolates a text node. { expr } values are inserted as text and
// {{ expr }} values as parsed markup, whose elements are then processed.
func (r *renderer) text(t *markup.Node, scope eval.Scope) error {
	if t.Resolved {
		return nil
	}
	t.Resolved = true
	if !rewrite.HasExpr(t.Data) {
		return nil
	}
	if !rewrite.HasRaw(t.Data) {
		s, err := r.interpolate(t.Data, scope)
		if err != nil {
			return err
		}
		t.Data = s
		return nil
	}

	var nodes []*markup.Node
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			text := markup.NewText(b.String())
			text.Resolved = true
			nodes = append(nodes, text)
			b.Reset()
		}
	}
	for _, s := range rewrite.Split(t.Data) {
		switch {
		case !s.Expr:
			b.WriteString(s.Text)
		case s.Raw:
			v, err := r.evaluate(rewrite.ScopeIdentifiers(s.Text), s.Text, scope)
			if err != nil {
				return err
			}
			flush()
			frag := markup.ParseFragment(eval.ToString(v))
			resolve(frag)
			nodes = append(nodes, frag...)
		default:
			out, err := r.expr(s.Text, scope)
			if err != nil {
				return err
			}
			b.WriteString(out)
		}
	}
	flush()

	t.ReplaceWith(nodes...)
	return r.nodes(nodes, scope)
}

// interpolate renders text with { } and {{ }} segments to a string
func (r *renderer) interpolate(text string, scope eval.Scope) (string, error) {
	var b strings.Builder
	for _, s := range rewrite.Split(text) {
		if !s.Expr {
			b.WriteString(s.Text)
			continue
		}
		out, err := r.expr(s.Text, scope)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// expr renders one interpolation body. Shorthand objects contribute each
// label whose guard holds; values that are falsy, other than 0, render as
// nothing.
func (r *renderer) expr(body string, scope eval.Scope) (string, error) {
	var b strings.Builder
	for _, source := range rewrite.ParseExpr(body) {
		v, err := r.evaluate(source, body, scope)
		if err != nil {
			return "", err
		}
		if eval.Visible(v) {
			b.WriteString(eval.ToString(v))
		}
	}
	return b.String(), nil
}

// evaluate runs a scoped expression. raw is the author's text, used to
// locate a failure in the component source.
func (r *renderer) evaluate(source, raw string, scope eval.Scope) (any, error) {
	v, err := eval.Eval(source, scope)
	if err != nil {
		return nil, r.evalError(raw, err)
	}
	return v, nil
}

// evalError wraps err as an EvaluationError unless it already is one
func (r *renderer) evalError(raw string, err error) error {
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return err
	}
	var e *eval.Error
	if errors.As(err, &e) {
		err = e.Err
	}
	line, col := locate(r.comp.text(), raw)
	return &EvaluationError{
		Expr:      raw,
		Line:      line,
		Column:    col,
		Component: r.comp.DisplayName(),
		Err:       err,
	}
}
