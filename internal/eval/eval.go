// Package eval evaluates scoped template expressions on the server. The
// grammar is parsed with github.com/expr-lang/expr and walked here with
// JavaScript semantics, so an expression renders the same way it would in
// the browser runtime.
package eval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Error reports an expression that failed to parse or evaluate
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errShortCircuit ends an optional chain that reached null
var errShortCircuit = errors.New("optional chain short circuit")

// Eval evaluates source against scope. Bare identifiers resolve through
// globals and then scope; "_" is the scope itself.
func Eval(source string, scope Scope) (any, error) {
	tree, err := parser.Parse(Normalize(source))
	if err != nil {
		return nil, &Error{Expr: source, Err: err}
	}
	e := &evaluator{scope: scope}
	v, err := e.eval(tree.Node)
	if errors.Is(err, errShortCircuit) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Expr: source, Err: err}
	}
	return v, nil
}

// Strict equality has no operator of its own in the expression grammar, so
// Normalize spells it with a word operator of the same precedence that
// JavaScript source never contains.
const (
	strictEq    = " contains "
	strictNotEq = " not contains "
)

// Normalize rewrites JavaScript-only syntax into the expression grammar:
// === and !== become the strict equality operator and template literals
// become string concatenation. String literals are left alone.
//
//	a === b          -> a contains b
//	`hi ${name}!`    -> ("hi " + (name) + "!")
func Normalize(source string) string {
	if !strings.ContainsAny(source, "=`") {
		return source
	}
	var b strings.Builder
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case c == '`':
			lit, end := templateLiteral(source, i)
			b.WriteString(lit)
			i = end - 1
		case c == '\'' || c == '"':
			end := skipQuoted(source, i)
			b.WriteString(source[i:end])
			i = end - 1
		case strings.HasPrefix(source[i:], "!=="):
			b.WriteString(strictNotEq)
			i += 2
		case strings.HasPrefix(source[i:], "==="):
			b.WriteString(strictEq)
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the quoted string starting at i
func skipQuoted(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case s[i]:
			return j + 1
		}
	}
	return len(s)
}

// skipInterpolation returns the index just past the } closing the ${ that
// ends right before i
func skipInterpolation(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch c := s[j]; c {
		case '\'', '"':
			j = skipQuoted(s, j) - 1
		case '`':
			_, end := templateLiteral(s, j)
			j = end - 1
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

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// templateLiteral converts the template literal starting at i into a
// parenthesised concatenation that always starts with a string, so every
// interpolated value is converted to text. It returns the index just past
// the closing backtick.
func templateLiteral(s string, i int) (string, int) {
	var parts []string
	var lit strings.Builder
	flush := func() {
		parts = append(parts, `"`+literalEscaper.Replace(lit.String())+`"`)
		lit.Reset()
	}

	j := i + 1
	for j < len(s) {
		switch {
		case s[j] == '\\' && j+1 < len(s):
			switch s[j+1] {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			default:
				lit.WriteByte(s[j+1])
			}
			j += 2
		case s[j] == '`':
			flush()
			return "(" + strings.Join(parts, " + ") + ")", j + 1
		case s[j] == '$' && j+1 < len(s) && s[j+1] == '{':
			flush()
			end := skipInterpolation(s, j+2)
			inner := strings.TrimSuffix(s[j+2:end], "}")
			parts = append(parts, "("+Normalize(inner)+")")
			j = end
		default:
			lit.WriteByte(s[j])
			j++
		}
	}
	flush()
	return "(" + strings.Join(parts, " + ") + ")", len(s)
}

type evaluator struct {
	scope Scope
}

func (e *evaluator) eval(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.NilNode:
		return nil, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.IntegerNode:
		return float64(n.Value), nil
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.ConstantNode:
		return n.Value, nil
	case *ast.IdentifierNode:
		return e.identifier(n.Value)
	case *ast.UnaryNode:
		return e.unary(n)
	case *ast.BinaryNode:
		return e.binary(n)
	case *ast.ConditionalNode:
		cond, err := e.eval(n.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return e.eval(n.Exp1)
		}
		return e.eval(n.Exp2)
	case *ast.ChainNode:
		v, err := e.eval(n.Node)
		if errors.Is(err, errShortCircuit) {
			return nil, nil
		}
		return v, err
	case *ast.MemberNode:
		obj, key, err := e.member(n)
		if err != nil {
			return nil, err
		}
		v, _ := Member(obj, key)
		return v, nil
	case *ast.SliceNode:
		return e.slice(n)
	case *ast.CallNode:
		return e.call(n)
	case *ast.ArrayNode:
		items := make([]any, len(n.Nodes))
		for i, item := range n.Nodes {
			v, err := e.eval(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *ast.MapNode:
		obj := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			pair, ok := p.(*ast.PairNode)
			if !ok {
				return nil, fmt.Errorf("unexpected %T in object literal", p)
			}
			k, err := e.eval(pair.Key)
			if err != nil {
				return nil, err
			}
			v, err := e.eval(pair.Value)
			if err != nil {
				return nil, err
			}
			obj[ToString(k)] = v
		}
		return obj, nil
	case *ast.BuiltinNode:
		return nil, fmt.Errorf("%s is not defined", n.Name)
	}
	return nil, fmt.Errorf("unsupported expression %T", node)
}

func (e *evaluator) identifier(name string) (any, error) {
	if name == "_" {
		return e.scope, nil
	}
	if v, ok := globals[name]; ok {
		return v, nil
	}
	if browserOnly[name] {
		return nil, fmt.Errorf("%s is only available in the browser", name)
	}
	if e.scope != nil {
		if v, ok := e.scope.Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s is not defined", name)
}

// member evaluates the object and property of n. Reading a property of null
// is an error unless the access is optional, which ends the chain.
func (e *evaluator) member(n *ast.MemberNode) (obj, key any, err error) {
	obj, err = e.eval(n.Node)
	if err != nil {
		return nil, nil, err
	}
	key, err = e.eval(n.Property)
	if err != nil {
		return nil, nil, err
	}
	if obj == nil || isNilPointer(obj) {
		if n.Optional {
			return nil, nil, errShortCircuit
		}
		return nil, nil, fmt.Errorf("cannot read properties of undefined (reading '%s')", ToString(key))
	}
	return obj, key, nil
}

func (e *evaluator) unary(n *ast.UnaryNode) (any, error) {
	v, err := e.eval(n.Node)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "!", "not":
		return !Truthy(v), nil
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", n.Operator)
}

func (e *evaluator) binary(n *ast.BinaryNode) (any, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}

	// operators that may skip their right operand
	switch n.Operator {
	case "&&", "and":
		if !Truthy(left) {
			return left, nil
		}
		return e.eval(n.Right)
	case "||", "or":
		if Truthy(left) {
			return left, nil
		}
		return e.eval(n.Right)
	case "??":
		if left != nil {
			return left, nil
		}
		return e.eval(n.Right)
	}

	right, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "contains":
		return strictEqual(left, right), nil
	case "+":
		if isText(left) || isText(right) {
			return ToString(left) + ToString(right), nil
		}
		return toNumber(left) + toNumber(right), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		return toNumber(left) / toNumber(right), nil
	case "%":
		return math.Mod(toNumber(left), toNumber(right)), nil
	case "**", "^":
		return math.Pow(toNumber(left), toNumber(right)), nil
	case "<", ">", "<=", ">=":
		return compare(n.Operator, left, right), nil
	case "in":
		_, ok := Member(right, left)
		return ok, nil
	}
	return nil, fmt.Errorf("unsupported operator %s", n.Operator)
}

// isText reports whether + should concatenate rather than add
func isText(v any) bool {
	switch v.(type) {
	case nil, bool:
		return false
	case string:
		return true
	}
	_, ok := number(v)
	return !ok
}

func compare(op string, left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		c := strings.Compare(ls, rs)
		switch op {
		case "<":
			return c < 0
		case ">":
			return c > 0
		case "<=":
			return c <= 0
		default:
			return c >= 0
		}
	}
	l, r := toNumber(left), toNumber(right)
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	default:
		return l >= r
	}
}

func (e *evaluator) slice(n *ast.SliceNode) (any, error) {
	v, err := e.eval(n.Node)
	if err != nil {
		return nil, err
	}
	args := []any{}
	for _, bound := range []ast.Node{n.From, n.To} {
		if bound == nil {
			if len(args) == 0 {
				args = append(args, 0.0)
			}
			continue
		}
		b, err := e.eval(bound)
		if err != nil {
			return nil, err
		}
		args = append(args, b)
	}
	if s, ok := v.(string); ok {
		return stringMethods["slice"](s, args)
	}
	items, ok := toSlice(v)
	if !ok {
		return nil, fmt.Errorf("cannot slice %s", ToString(v))
	}
	return arrayMethods["slice"](items, args)
}

func (e *evaluator) call(n *ast.CallNode) (any, error) {
	args := make([]any, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	m, ok := n.Callee.(*ast.MemberNode)
	if !ok {
		fn, err := e.eval(n.Callee)
		if err != nil {
			return nil, err
		}
		return call(fn, args)
	}

	obj, key, err := e.member(m)
	if err != nil {
		return nil, err
	}
	name := ToString(key)
	if fn, ok := Member(obj, key); ok {
		if fn == nil {
			return nil, fmt.Errorf("%s is not a function", name)
		}
		return call(fn, args)
	}
	return callBuiltin(obj, name, args)
}
