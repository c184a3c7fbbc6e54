// Package rewrite turns author-written template expressions into expressions
// scoped to the data context. Its output is shared verbatim by the compiler,
// which ships it to the browser runtime, and by the server-side evaluator.
package rewrite

import (
	"strings"
)

const (
	// Context is the identifier every scoped expression resolves against
	Context = "_"

	// EventParam is the local name of the event inside handler statements
	EventParam = "e"

	// EventAlias is the author-facing spelling of the event parameter
	EventAlias = "$event"
)

// reserved identifiers are never prefixed with the context
var reserved = map[string]bool{
	Context: true,

	// literals and operators spelled as words
	"true": true, "false": true, "null": true, "undefined": true, "NaN": true,
	"Infinity": true, "new": true, "this": true, "typeof": true, "instanceof": true,
	"in": true, "of": true, "void": true, "delete": true,

	// statement keywords that appear in handlers
	"if": true, "else": true, "return": true, "let": true, "const": true, "var": true,
	"function": true, EventParam: true,
}

// globalNames are the runtime globals expressions use without the context
var globalNames = []string{
	"alert", "confirm", "prompt", "console", "document", "window", "location",
	"Error", "JSON", "Math", "Date", "Number", "String", "Boolean", "Object", "Array",
	"parseInt", "parseFloat", "isNaN",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval",
	"encodeURIComponent", "decodeURIComponent",
}

func init() {
	for _, name := range globalNames {
		reserved[name] = true
	}
}

// Globals lists the global names left unscoped
func Globals() []string {
	return append([]string(nil), globalNames...)
}

// IsReserved reports whether name is exempt from context scoping
func IsReserved(name string) bool {
	return reserved[name]
}

// ScopeIdentifiers prefixes every bare identifier in expr with the context.
// String literals, member names after a dot, object literal keys and reserved
// words are left alone; $event becomes the local event parameter.
//
//	count + 1          -> _.count + 1
//	user.name          -> _.user.name
//	fmt('x', $event)   -> _.fmt('x', e)
func ScopeIdentifiers(expr string) string {
	var b strings.Builder
	b.Grow(len(expr) + 8)

	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '\'' || c == '"':
			end := skipString(expr, i)
			b.WriteString(expr[i:end])
			i = end

		case c == '`':
			i = scopeTemplate(&b, expr, i)

		case isDigit(c):
			j := i + 1
			for j < len(expr) && (isIdentPart(expr[j]) || expr[j] == '.') {
				j++
			}
			b.WriteString(expr[i:j])
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}
			b.WriteString(scopeWord(expr, i, j))
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func scopeWord(expr string, start, end int) string {
	word := expr[start:end]
	if word == EventAlias {
		return EventParam
	}
	if reserved[word] {
		return word
	}
	prev := prevSignificant(expr, start)
	if prev == '.' && !isSpread(expr, start) {
		return word
	}
	if next := nextSignificant(expr, end); next == ':' && (prev == '{' || prev == ',') {
		return word
	}
	return Context + "." + word
}

// isSpread reports whether the dot before start belongs to a "..." spread
func isSpread(expr string, start int) bool {
	i := start - 1
	for i >= 0 && isSpace(expr[i]) {
		i--
	}
	return i >= 2 && expr[i-2:i+1] == "..."
}

func prevSignificant(s string, i int) byte {
	for i--; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func nextSignificant(s string, i int) byte {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			if s[i] == ':' && i+1 < len(s) && s[i+1] == ':' {
				return 0
			}
			return s[i]
		}
	}
	return 0
}

// skipString returns the index just past the string literal starting at i.
// An unterminated literal runs to the end of s.
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch {
		case s[j] == '\\':
			j++
		case s[j] == quote:
			return j + 1
		case quote == '`' && strings.HasPrefix(s[j:], "${"):
			j = skipInterpolation(s, j+2) - 1
		}
	}
	return len(s)
}

// skipInterpolation returns the index just past the } that closes a ${
// ending right before i
func skipInterpolation(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch c := s[j]; c {
		case '\'', '"', '`':
			j = skipString(s, j) - 1
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return j + 1
			}
			depth--
		}
	}
	return len(s)
}

// scopeTemplate copies the template literal starting at i, scoping the
// expressions inside its ${} placeholders, and returns the index just past it
func scopeTemplate(b *strings.Builder, s string, i int) int {
	b.WriteByte('`')
	j := i + 1
	for j < len(s) {
		switch {
		case s[j] == '\\':
			end := min(j+2, len(s))
			b.WriteString(s[j:end])
			j = end
		case s[j] == '`':
			b.WriteByte('`')
			return j + 1
		case strings.HasPrefix(s[j:], "${"):
			end := skipInterpolation(s, j+2)
			inner, closed := strings.CutSuffix(s[j+2:end], "}")
			b.WriteString("${" + ScopeIdentifiers(inner))
			if closed {
				b.WriteByte('}')
			}
			j = end
		default:
			b.WriteByte(s[j])
			j++
		}
	}
	return j
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// IsIdentifier reports whether s is a single bare identifier
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// splitTopLevel splits s on sep outside of strings, parentheses, brackets and braces
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(s, i) - 1
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// indexTopLevel returns the index of the first sep outside nested groups and strings
func indexTopLevel(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(s, i) - 1
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			return i
		}
	}
	return -1
}

// quote renders s as a single-quoted expression string literal
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}
