// Package report formats engine errors for the terminal, with the offending
// source line and a caret under the located column.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/livefir/islet"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	gutter     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Location is where an error points in a source file
type Location struct {
	Kind   string
	Line   int
	Column int
	Expr   string
}

// Locate extracts the position carried by an engine error. ok is false for
// errors without one.
func Locate(err error) (Location, bool) {
	var se *islet.SyntaxError
	if errors.As(err, &se) {
		return Location{Kind: "syntax error", Line: se.Line, Column: se.Column, Expr: se.Expr}, se.Line > 0
	}
	var ee *islet.EvaluationError
	if errors.As(err, &ee) {
		return Location{Kind: "evaluation error", Line: ee.Line, Column: ee.Column, Expr: ee.Expr}, ee.Line > 0
	}
	var nc *islet.NameCollisionError
	if errors.As(err, &nc) {
		return Location{Kind: "name collision", Line: nc.Line, Column: nc.Column, Expr: nc.Name}, nc.Line > 0
	}
	return Location{Kind: "error"}, false
}

// Error renders err for file, quoting the source line it points at
func Error(file, source string, err error) string {
	loc, ok := Locate(err)
	title := cases.Title(language.English).String(loc.Kind)

	var b strings.Builder
	where := file
	if ok {
		where = fmt.Sprintf("%s:%d:%d", file, loc.Line, loc.Column)
	}
	fmt.Fprintf(&b, "%s %s\n", fileStyle.Render(where), errorStyle.Render(title))
	fmt.Fprintf(&b, "  %s\n", err.Error())

	if !ok {
		return b.String()
	}
	lines := strings.Split(source, "\n")
	if loc.Line > len(lines) {
		return b.String()
	}

	num := fmt.Sprintf("%d", loc.Line)
	line := strings.ReplaceAll(lines[loc.Line-1], "\t", " ")
	fmt.Fprintf(&b, "  %s %s\n", gutter.Render(num+" |"), line)

	expr, _, _ := strings.Cut(loc.Expr, "\n")
	width := max(len(expr), 1)
	pad := strings.Repeat(" ", len(num)+1)
	fmt.Fprintf(&b, "  %s %s%s\n", gutter.Render(pad+"|"), strings.Repeat(" ", max(loc.Column-1, 0)), caretStyle.Render(strings.Repeat("^", width)))
	return b.String()
}

// Summary renders the outcome of checking files
func Summary(files, failed int) string {
	if failed == 0 {
		return okStyle.Render(fmt.Sprintf("%d file(s) ok", files))
	}
	return errorStyle.Render(fmt.Sprintf("%d of %d file(s) failed", failed, files))
}
