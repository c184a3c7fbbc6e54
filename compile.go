package islet

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/livefir/islet/internal/markup"
	"github.com/livefir/islet/internal/rewrite"
)

// Expression is an entry in a compiled expression table. Its index is the
// placeholder that refers to it from the template.
type Expression struct {
	Source    string `json:"source"`
	IsHandler bool   `json:"isHandler,omitempty"`
}

// Compiled is the build artifact for one component. Template carries
// numeric placeholders: attribute values are the bare index, interpolated
// text is ":index:".
type Compiled struct {
	Name        string       `json:"name,omitempty"`
	TagName     string       `json:"tagName"`
	Template    string       `json:"template"`
	Expressions []Expression `json:"expressions"`
	Behavior    string       `json:"behavior,omitempty"`
}

// Compile extracts the expressions of c into an ordered table. The walk is
// depth first with attributes before children, so the same source always
// yields the same table.
func Compile(c *Component, opts ...Option) (*Compiled, error) {
	config := newConfig(opts)

	doc := markup.Parse(c.Source)
	root := doc.FirstElement()
	if root == nil {
		return nil, &SyntaxError{Expr: c.Source, Reason: "component has no root element"}
	}

	cp := &compiler{origin: c.text()}
	name := c.Name
	if v, ok := root.Attrs.Get(NameAttr); ok {
		if name == "" {
			name = v
		}
		root.Attrs.Delete(NameAttr)
	}

	if err := cp.element(root); err != nil {
		if config.Metrics != nil {
			config.Metrics.IncrementCompileError()
		}
		return nil, err
	}

	out := &Compiled{
		Name:        name,
		TagName:     root.Tag,
		Template:    markup.Render(root),
		Expressions: cp.exprs,
	}
	if out.Expressions == nil {
		out.Expressions = []Expression{}
	}
	if c.Script != "" {
		out.Behavior = "class {\n" + c.Script + "\n}"
	}

	if config.Metrics != nil {
		config.Metrics.IncrementCompiled(len(out.Expressions))
	}
	config.logf("compiled %s: %d expressions", c.DisplayName(), len(out.Expressions))
	return out, nil
}

// CompileSource parses src and compiles every component in it
func CompileSource(src string, opts ...Option) ([]*Compiled, error) {
	components, err := Parse(src)
	if err != nil {
		return nil, err
	}
	out := make([]*Compiled, 0, len(components))
	for _, c := range components {
		compiled, err := Compile(c, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

// CompileLibrary compiles src into a JavaScript module exporting the
// component descriptors as lib, preceded by the file's global script.
// WithMinify minifies the module.
func CompileLibrary(src string, opts ...Option) (string, error) {
	components, err := Parse(src)
	if err != nil {
		return "", err
	}
	var compiled []*Compiled
	for _, c := range components {
		out, err := Compile(c, opts...)
		if err != nil {
			return "", err
		}
		compiled = append(compiled, out)
	}

	var global string
	if len(components) > 0 {
		global = components[0].GlobalScript
	}
	module := Module(global, compiled)
	if newConfig(opts).Minify {
		module = minifyJS(module)
	}
	return module, nil
}

// Module renders descriptors as a JavaScript module
func Module(global string, compiled []*Compiled) string {
	var b strings.Builder
	if global != "" {
		b.WriteString(global)
		b.WriteString("\n\n")
	}
	b.WriteString("export const lib = [\n")
	for i, c := range compiled {
		b.WriteString("  ")
		b.WriteString(c.JS())
		if i < len(compiled)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]\n")
	return b.String()
}

// JS returns the component descriptor as a JavaScript object literal.
// Value expressions become (_) => expr; handlers become named functions so a
// .once handler can detach itself by name.
func (c *Compiled) JS() string {
	var b strings.Builder
	b.WriteString("{ ")
	if c.Name != "" {
		b.WriteString("name: " + jsString(c.Name) + ", ")
	}
	b.WriteString("tagName: " + jsString(c.TagName) + ", ")
	b.WriteString("tmpl: " + jsString(c.Template))
	if c.Behavior != "" {
		b.WriteString(", Impl: " + c.Behavior)
	}
	b.WriteString(", fns: [")
	for i, e := range c.Expressions {
		if i > 0 {
			b.WriteString(", ")
		}
		if e.IsHandler {
			b.WriteString("function " + rewrite.HandlerRef + "(" + rewrite.Context + ", " + rewrite.EventParam + ") { " + e.Source + " }")
		} else {
			b.WriteString("(" + rewrite.Context + ") => " + e.Source)
		}
	}
	b.WriteString("] }")
	return b.String()
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

type compiler struct {
	origin string
	exprs  []Expression
}

// add appends an expression and returns its placeholder
func (cp *compiler) add(source string, handler bool) string {
	cp.exprs = append(cp.exprs, Expression{Source: source, IsHandler: handler})
	return strconv.Itoa(len(cp.exprs) - 1)
}

func (cp *compiler) element(n *markup.Node) error {
	for _, a := range n.Attrs.List() {
		key, val := a.Key, a.Val
		switch {
		case key == ":for":
			loop, err := rewrite.ParseFor(val)
			if err != nil {
				return syntaxError(cp.origin, err)
			}
			n.Attrs.Set(key, cp.add(loop.Literal(), false))
		case key == ":else":
		case key == ":bind" || key == ":attr":
			n.Attrs.Set(key, cp.add(rewrite.ScopeIdentifiers(val), false))
		case strings.HasPrefix(key, ":"):
			n.Attrs.Set(key, cp.add(rewrite.AttrExpression(val), false))
		case strings.HasPrefix(key, "$"):
			n.Attrs.Set(key, cp.add(rewrite.ScopeIdentifiers(val), false))
		case strings.HasPrefix(key, "@"):
			target := rewrite.EventKey(key)
			if target != key && n.Attrs.Has(target) {
				target = key
			}
			n.Attrs.Rename(key, target, cp.add(rewrite.ParseHandler(key, val), true))
		case rewrite.HasExpr(val):
			n.Attrs.Rename(key, ":"+key, cp.add(rewrite.TextExpression(val), false))
		}
	}

	if markup.IsRawText(n.Tag) {
		return nil
	}

	if expr, ok := soleRaw(n); ok {
		n.Attrs.Set(":html", cp.add(rewrite.ScopeIdentifiers(expr), false))
		n.SetChildren(nil)
		return nil
	}

	for _, c := range append([]*markup.Node(nil), n.Children...) {
		switch c.Type {
		case markup.TextNode:
			cp.text(c)
		case markup.ElementNode:
			if err := cp.element(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// soleRaw reports whether the only content of n is one {{ expr }}
func soleRaw(n *markup.Node) (string, bool) {
	if len(n.Children) != 1 || n.Children[0].Type != markup.TextNode {
		return "", false
	}
	var expr string
	found := false
	for _, s := range rewrite.Split(n.Children[0].Data) {
		switch {
		case s.Raw && !found:
			expr, found = s.Text, true
		case s.Expr:
			return "", false
		case strings.TrimSpace(s.Text) != "":
			return "", false
		}
	}
	return expr, found
}

// text replaces interpolations in t with placeholders. Runs of escaped
// interpolation and literal text become one ":N:" text node; each raw
// interpolation becomes <span :html="N"></span>.
func (cp *compiler) text(t *markup.Node) {
	segs := rewrite.Split(t.Data)
	if !rewrite.HasExpr(t.Data) {
		return
	}

	var nodes []*markup.Node
	var run []rewrite.Segment
	flush := func() {
		if len(run) == 0 {
			return
		}
		var text string
		for _, s := range run {
			if s.Expr {
				text = ":" + cp.add(rewrite.SegmentsExpression(run), false) + ":"
				break
			}
			text += s.Text
		}
		run = nil
		nodes = append(nodes, markup.NewText(text))
	}

	for _, s := range segs {
		if s.Raw {
			flush()
			span := markup.NewElement("span")
			span.Attrs.Set(":html", cp.add(rewrite.ScopeIdentifiers(s.Text), false))
			nodes = append(nodes, span)
			continue
		}
		run = append(run, s)
	}
	flush()
	t.ReplaceWith(nodes...)
}
