package markup

import (
	"strings"
)

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")
	textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

// EscapeText escapes s for use as element text content
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// Render serializes n and its subtree. Removed nodes are skipped.
// Parse(Render(n)) reproduces the tree, which is what clone-by-reparse relies on.
func Render(n *Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

// RenderChildren serializes the children of n without n itself
func RenderChildren(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		write(&b, c)
	}
	return b.String()
}

// RenderNodes serializes a list of sibling nodes
func RenderNodes(nodes []*Node) string {
	var b strings.Builder
	for _, c := range nodes {
		write(&b, c)
	}
	return b.String()
}

func write(b *strings.Builder, n *Node) {
	if n.Removed {
		return
	}
	switch n.Type {
	case DocumentNode:
		for _, c := range n.Children {
			write(b, c)
		}
	case DoctypeNode:
		b.WriteString("<!DOCTYPE ")
		b.WriteString(n.Data)
		b.WriteString(">")
	case TextNode:
		if n.Parent != nil && IsRawText(n.Parent.Tag) {
			b.WriteString(n.Data)
		} else {
			b.WriteString(EscapeText(n.Data))
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.Attrs.list {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			if a.Val != "" {
				b.WriteString(`="`)
				b.WriteString(attrEscaper.Replace(a.Val))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if IsVoid(n.Tag) {
			return
		}
		for _, c := range n.Children {
			write(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}
