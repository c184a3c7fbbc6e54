package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIndex is the loop index name when a clause does not name one
const DefaultIndex = "$index"

// SyntaxError reports a directive clause that cannot be parsed
type SyntaxError struct {
	Expr   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q: %s", e.Expr, e.Reason)
}

// ForLoop is a parsed :for clause
type ForLoop struct {
	// Keys holds the bound name, or several names when destructuring
	Keys []string
	// Source is the scoped collection expression
	Source string
	// Index is the name the iteration index is bound to
	Index string
	// Destructure is set for {a, b} clauses: names bind to fields of each item
	Destructure bool
	// Entries is set for [k, v] clauses: names bind to item[0] and item[1]
	Entries bool
}

var forSplit = regexp.MustCompile(`\s+(in|of)\s+`)

// ParseFor parses a loop clause in one of the forms
//
//	item[, index] in|of items
//	{a, b}[, index] in items
//	[key, value[, index]] in object
func ParseFor(clause string) (*ForLoop, error) {
	src := strings.TrimSpace(clause)
	loc := forSplit.FindStringIndex(src)
	if loc == nil {
		return nil, &SyntaxError{Expr: clause, Reason: `expected "<name> in <expression>"`}
	}
	prefix := strings.TrimSpace(src[:loc[0]])
	expr := strings.TrimSpace(src[loc[1]:])
	if expr == "" {
		return nil, &SyntaxError{Expr: clause, Reason: "missing collection expression"}
	}
	if strings.HasPrefix(prefix, "(") && strings.HasSuffix(prefix, ")") {
		prefix = strings.TrimSpace(prefix[1 : len(prefix)-1])
	}
	if prefix == "" {
		return nil, &SyntaxError{Expr: clause, Reason: "missing loop variable"}
	}

	loop := &ForLoop{Source: ScopeIdentifiers(expr), Index: DefaultIndex}

	switch prefix[0] {
	case '[':
		if !strings.HasSuffix(prefix, "]") {
			return nil, &SyntaxError{Expr: clause, Reason: "unterminated [ ] destructuring"}
		}
		names := splitNames(prefix[1 : len(prefix)-1])
		if len(names) < 2 || len(names) > 3 {
			return nil, &SyntaxError{Expr: clause, Reason: "[ ] destructuring takes a key, a value and an optional index"}
		}
		loop.Keys = names[:2]
		if len(names) == 3 {
			loop.Index = names[2]
		}
		loop.Entries = true

	case '{':
		end := strings.IndexByte(prefix, '}')
		if end < 0 {
			return nil, &SyntaxError{Expr: clause, Reason: "unterminated { } destructuring"}
		}
		loop.Keys = splitNames(prefix[1:end])
		if len(loop.Keys) == 0 {
			return nil, &SyntaxError{Expr: clause, Reason: "empty { } destructuring"}
		}
		rest := strings.TrimSpace(prefix[end+1:])
		if rest != "" {
			if !strings.HasPrefix(rest, ",") {
				return nil, &SyntaxError{Expr: clause, Reason: "unexpected " + rest}
			}
			loop.Index = strings.TrimSpace(rest[1:])
		}
		loop.Destructure = true

	default:
		names := splitNames(prefix)
		if len(names) == 0 {
			return nil, &SyntaxError{Expr: clause, Reason: "missing loop variable"}
		}
		if len(names) > 2 {
			return nil, &SyntaxError{Expr: clause, Reason: "too many loop variables"}
		}
		loop.Keys = names[:1]
		if len(names) == 2 {
			loop.Index = names[1]
		}
	}

	for _, name := range append(append([]string{}, loop.Keys...), loop.Index) {
		if !IsIdentifier(name) {
			return nil, &SyntaxError{Expr: clause, Reason: fmt.Sprintf("invalid loop variable %q", name)}
		}
	}
	return loop, nil
}

// Literal renders the loop as the array the browser runtime iterates with:
//
//	['item', _.items, '$index']
//	[['a', 'b'], _.items, '$index']
//	[['k', 'v'], _.obj, 'i', true]
func (l *ForLoop) Literal() string {
	var keys string
	if l.Destructure || l.Entries {
		quoted := make([]string, len(l.Keys))
		for i, k := range l.Keys {
			quoted[i] = quote(k)
		}
		keys = "[" + strings.Join(quoted, ", ") + "]"
	} else {
		keys = quote(l.Keys[0])
	}
	parts := []string{keys, l.Source, quote(l.Index)}
	if l.Entries {
		parts = append(parts, "true")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
