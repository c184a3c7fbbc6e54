package markup

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// htmlElements is the standard HTML element vocabulary. The atom table also
// holds attribute names, so membership is checked against this set rather than
// atom.Lookup alone.
var htmlElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.Address: true, atom.Area: true, atom.Article: true,
	atom.Aside: true, atom.Audio: true, atom.B: true, atom.Base: true, atom.Bdi: true,
	atom.Bdo: true, atom.Blockquote: true, atom.Body: true, atom.Br: true, atom.Button: true,
	atom.Canvas: true, atom.Caption: true, atom.Cite: true, atom.Code: true, atom.Col: true,
	atom.Colgroup: true, atom.Data: true, atom.Datalist: true, atom.Dd: true, atom.Del: true,
	atom.Details: true, atom.Dfn: true, atom.Dialog: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Em: true, atom.Embed: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Head: true,
	atom.Header: true, atom.Hgroup: true, atom.Hr: true, atom.Html: true, atom.I: true,
	atom.Iframe: true, atom.Img: true, atom.Input: true, atom.Ins: true, atom.Kbd: true,
	atom.Label: true, atom.Legend: true, atom.Li: true, atom.Link: true, atom.Main: true,
	atom.Map: true, atom.Mark: true, atom.Math: true, atom.Menu: true, atom.Meta: true,
	atom.Meter: true, atom.Nav: true, atom.Noscript: true, atom.Object: true, atom.Ol: true,
	atom.Optgroup: true, atom.Option: true, atom.Output: true, atom.P: true, atom.Param: true,
	atom.Picture: true, atom.Pre: true, atom.Progress: true, atom.Q: true, atom.Rp: true,
	atom.Rt: true, atom.Ruby: true, atom.S: true, atom.Samp: true, atom.Script: true,
	atom.Section: true, atom.Select: true, atom.Slot: true, atom.Small: true, atom.Source: true,
	atom.Span: true, atom.Strong: true, atom.Style: true, atom.Sub: true, atom.Summary: true,
	atom.Sup: true, atom.Svg: true, atom.Table: true, atom.Tbody: true, atom.Td: true,
	atom.Template: true, atom.Textarea: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true,
	atom.Time: true, atom.Title: true, atom.Tr: true, atom.Track: true, atom.U: true,
	atom.Ul: true, atom.Var: true, atom.Video: true, atom.Wbr: true,
}

// svgElements holds the lower-cased SVG names the tokenizer produces
var svgElements = map[string]bool{
	"circle": true, "clippath": true, "defs": true, "ellipse": true, "feblend": true,
	"filter": true, "foreignobject": true, "g": true, "image": true, "line": true,
	"lineargradient": true, "marker": true, "mask": true, "path": true, "pattern": true,
	"polygon": true, "polyline": true, "radialgradient": true, "rect": true, "stop": true,
	"symbol": true, "text": true, "textpath": true, "tspan": true, "use": true,
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true, atom.Embed: true,
	atom.Hr: true, atom.Img: true, atom.Input: true, atom.Link: true, atom.Meta: true,
	atom.Param: true, atom.Source: true, atom.Track: true, atom.Wbr: true,
}

var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true, "disabled": true,
	"formnovalidate": true, "hidden": true, "inert": true, "ismap": true, "itemscope": true,
	"loop": true, "multiple": true, "muted": true, "nomodule": true, "novalidate": true,
	"open": true, "playsinline": true, "readonly": true, "required": true, "reversed": true,
	"selected": true,
}

func lookup(tag string) atom.Atom {
	return atom.Lookup([]byte(strings.ToLower(tag)))
}

// IsStandardTag reports whether tag belongs to the HTML or SVG vocabulary
func IsStandardTag(tag string) bool {
	if htmlElements[lookup(tag)] {
		return true
	}
	return svgElements[strings.ToLower(tag)]
}

// IsVoid reports whether tag is an HTML void element
func IsVoid(tag string) bool {
	return voidElements[lookup(tag)]
}

func isVoid(a atom.Atom) bool {
	return voidElements[a]
}

// IsRawText reports whether the content of tag is serialized without escaping
func IsRawText(tag string) bool {
	switch lookup(tag) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

// IsBooleanAttr reports whether name is an HTML boolean attribute
func IsBooleanAttr(name string) bool {
	return booleanAttrs[strings.ToLower(name)]
}
