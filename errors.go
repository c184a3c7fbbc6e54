package islet

import (
	"errors"
	"fmt"

	"github.com/livefir/islet/internal/markup"
	"github.com/livefir/islet/internal/rewrite"
)

// SyntaxError reports a directive clause that cannot be parsed, such as a
// malformed :for. Line and Column locate the clause in the component source
// and are 0 when it could not be found.
type SyntaxError struct {
	Expr   string
	Reason string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at %d:%d in %q: %s", e.Line, e.Column, e.Expr, e.Reason)
	}
	return fmt.Sprintf("syntax error in %q: %s", e.Expr, e.Reason)
}

// EvaluationError reports an expression that failed at render time
type EvaluationError struct {
	Expr      string
	Line      int
	Column    int
	Component string
	Err       error
}

func (e *EvaluationError) Error() string {
	where := e.Component
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.Component, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: error evaluating %q: %v", where, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// NameCollisionError reports a component named after a standard HTML or SVG tag
type NameCollisionError struct {
	Name   string
	Line   int
	Column int
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("component name %q at %d:%d collides with a standard tag", e.Name, e.Line, e.Column)
}

// locate finds text in source, returning 0, 0 when it is absent
func locate(source, text string) (int, int) {
	return markup.FindLine(source, text)
}

// syntaxError locates a clause error in origin
func syntaxError(origin string, err error) error {
	var se *rewrite.SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	line, col := locate(origin, se.Expr)
	return &SyntaxError{Expr: se.Expr, Reason: se.Reason, Line: line, Column: col}
}
