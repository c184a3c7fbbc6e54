package rewrite

import (
	"regexp"
	"strings"
)

// Segment is a piece of interpolated text
type Segment struct {
	// Text is the literal text, or the trimmed expression source
	Text string
	Expr bool
	// Raw marks a {{ expr }} segment whose value is inserted as markup
	Raw bool
}

// Split breaks text into literal and expression segments. "{ expr }" is an
// escaped interpolation, "{{ expr }}" a raw one. An unmatched brace is literal.
func Split(text string) []Segment {
	var segs []Segment
	literal := func(s string) {
		if s == "" {
			return
		}
		if n := len(segs); n > 0 && !segs[n-1].Expr {
			segs[n-1].Text += s
			return
		}
		segs = append(segs, Segment{Text: s})
	}

	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			literal(text[i:])
			break
		}
		open += i
		literal(text[i:open])

		if strings.HasPrefix(text[open:], "{{") {
			end := strings.Index(text[open+2:], "}}")
			if end < 0 {
				literal(text[open:])
				break
			}
			end += open + 2
			segs = append(segs, Segment{Text: strings.TrimSpace(text[open+2 : end]), Expr: true, Raw: true})
			i = end + 2
			continue
		}

		end := matchBrace(text, open)
		if end < 0 {
			literal(text[open:])
			break
		}
		segs = append(segs, Segment{Text: strings.TrimSpace(text[open+1 : end]), Expr: true})
		i = end + 1
	}
	return segs
}

// matchBrace returns the index of the } closing the { at open, or -1
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'', '"', '`':
			i = skipString(s, i) - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// HasExpr reports whether text contains an interpolation
func HasExpr(text string) bool {
	for _, s := range Split(text) {
		if s.Expr {
			return true
		}
	}
	return false
}

// HasRaw reports whether text contains a {{ }} interpolation
func HasRaw(text string) bool {
	for _, s := range Split(text) {
		if s.Raw {
			return true
		}
	}
	return false
}

var shorthandHead = regexp.MustCompile(`^\s*(?:[\w-]+|'[^']*'|"[^"]*")\s*$`)

// IsObjectShorthand reports whether expr is a class/style shorthand object
// such as "active: isActive, 'is-big': size > 2". The text up to the first
// top-level colon must be a bare label with no "?".
func IsObjectShorthand(expr string) bool {
	i := indexTopLevel(expr, ':')
	if i <= 0 {
		return false
	}
	head := expr[:i]
	return !strings.Contains(head, "?") && shorthandHead.MatchString(head)
}

// ParseClass compiles a shorthand object into one entry per pair. Each entry
// evaluates to the label followed by a space, or to a falsy value that the
// runtime drops.
func ParseClass(expr string) []string {
	var out []string
	for _, pair := range splitTopLevel(expr, ',') {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		i := indexTopLevel(pair, ':')
		if i < 0 {
			out = append(out, ScopeIdentifiers(strings.TrimSpace(pair)))
			continue
		}
		label := strings.Trim(strings.TrimSpace(pair[:i]), `'"`)
		value := strings.TrimSpace(pair[i+1:])
		out = append(out, ScopeIdentifiers(value)+" && "+quote(label+" "))
	}
	return out
}

// ParseExpr compiles a single interpolation body
func ParseExpr(expr string) []string {
	if IsObjectShorthand(expr) {
		return ParseClass(expr)
	}
	return []string{ScopeIdentifiers(expr)}
}

// ParseText compiles mixed text into ordered entries: quoted literals and
// scoped expressions. Shorthand objects expand into several entries.
func ParseText(text string) []string {
	return parseSegments(Split(text))
}

func parseSegments(segs []Segment) []string {
	var out []string
	for _, s := range segs {
		if !s.Expr {
			out = append(out, quote(s.Text))
			continue
		}
		out = append(out, ParseExpr(s.Text)...)
	}
	return out
}

// TextExpression compiles text into one expression: a bare expression when the
// text is a single plain interpolation, otherwise an array literal the runtime
// joins after dropping falsy entries.
func TextExpression(text string) string {
	return SegmentsExpression(Split(text))
}

// SegmentsExpression is TextExpression over already split segments
func SegmentsExpression(segs []Segment) string {
	if len(segs) == 1 && segs[0].Expr && !IsObjectShorthand(segs[0].Text) {
		return ScopeIdentifiers(segs[0].Text)
	}
	return "[" + strings.Join(parseSegments(segs), ", ") + "]"
}

// ShorthandBody reports whether expr is a shorthand object, optionally wrapped
// in braces, and returns it without the braces
func ShorthandBody(expr string) (string, bool) {
	if t := strings.TrimSpace(expr); strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") && IsObjectShorthand(t[1:len(t)-1]) {
		return t[1 : len(t)-1], true
	}
	return expr, IsObjectShorthand(expr)
}

// AttrExpression compiles the value of a :name directive. A shorthand object
// may be wrapped in braces.
func AttrExpression(expr string) string {
	if body, ok := ShorthandBody(expr); ok {
		return "[" + strings.Join(ParseClass(body), ", ") + "]"
	}
	return ScopeIdentifiers(expr)
}
