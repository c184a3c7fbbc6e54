package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ServerAttr marks an element that only exists on the authoring side and is
// stripped before any directive processing.
const ServerAttr = "server"

// parser builds a Node tree from the tokens of the golang.org/x/net/html
// Tokenizer. Unlike html.Parse it applies no insertion modes, so custom tags,
// directive attribute names and attribute order are kept as written.
type parser struct {
	z   *html.Tokenizer
	doc *Node
	// oe is the stack of open elements
	oe []*Node

	skipTag   string
	skipDepth int
}

// Parse turns template source into a Document node. It never fails: unmatched
// end tags are ignored and elements left open at the end are closed.
func Parse(source string) *Node {
	p := &parser{
		z:   html.NewTokenizer(strings.NewReader(source)),
		doc: &Node{Type: DocumentNode},
	}
	p.run()
	return p.doc
}

// ParseFragment parses source and returns the detached top-level nodes
func ParseFragment(source string) []*Node {
	doc := Parse(source)
	children := doc.Children
	doc.Children = nil
	for _, c := range children {
		c.Parent = nil
	}
	return children
}

func (p *parser) top() *Node {
	if len(p.oe) > 0 {
		return p.oe[len(p.oe)-1]
	}
	return p.doc
}

func (p *parser) run() {
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer error; keep whatever was built
			return
		}
		tok := p.z.Token()

		if p.skipTag != "" {
			p.skip(tt, tok)
			continue
		}

		switch tt {
		case html.TextToken:
			p.addText(tok.Data)
		case html.StartTagToken:
			if isServerOnly(tok) {
				if !isVoid(tok.DataAtom) {
					p.skipTag, p.skipDepth = tok.Data, 1
				}
				continue
			}
			n := p.element(tok)
			p.top().AppendChild(n)
			if !isVoid(tok.DataAtom) {
				p.oe = append(p.oe, n)
			}
		case html.SelfClosingTagToken:
			if isServerOnly(tok) {
				continue
			}
			p.top().AppendChild(p.element(tok))
		case html.EndTagToken:
			p.closeElement(tok.Data)
		case html.DoctypeToken:
			p.top().AppendChild(&Node{Type: DoctypeNode, Data: tok.Data})
		case html.CommentToken:
			// comments never reach the tree
		}
	}
}

// skip discards tokens until the server-only element that started skipping is closed
func (p *parser) skip(tt html.TokenType, tok html.Token) {
	if tok.Data != p.skipTag {
		return
	}
	switch tt {
	case html.StartTagToken:
		p.skipDepth++
	case html.EndTagToken:
		p.skipDepth--
		if p.skipDepth == 0 {
			p.skipTag = ""
		}
	}
}

func (p *parser) element(tok html.Token) *Node {
	n := NewElement(tok.Data)
	for _, a := range tok.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		n.Attrs.Set(key, a.Val)
	}
	return n
}

// addText merges text into a preceding text node, which happens when a comment
// or a stripped element separated two runs of text.
func (p *parser) addText(text string) {
	if text == "" {
		return
	}
	t := p.top()
	if k := len(t.Children); k > 0 && t.Children[k-1].Type == TextNode {
		t.Children[k-1].Data += text
		return
	}
	t.AppendChild(NewText(text))
}

// closeElement pops the stack up to the nearest open element named tag
func (p *parser) closeElement(tag string) {
	for i := len(p.oe) - 1; i >= 0; i-- {
		if p.oe[i].Tag == tag {
			p.oe = p.oe[:i]
			return
		}
	}
}

func isServerOnly(tok html.Token) bool {
	for _, a := range tok.Attr {
		if a.Key == ServerAttr {
			return true
		}
		if tok.DataAtom == atom.Script && a.Key == "type" && a.Val == "server" {
			return true
		}
	}
	return false
}
