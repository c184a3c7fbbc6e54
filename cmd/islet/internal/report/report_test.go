package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/livefir/islet"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
		line int
		ok   bool
	}{
		{"syntax", &islet.SyntaxError{Expr: "bad", Line: 2, Column: 5}, "syntax error", 2, true},
		{"evaluation", &islet.EvaluationError{Expr: "a.b", Line: 3, Column: 1, Err: errors.New("x")}, "evaluation error", 3, true},
		{"collision", &islet.NameCollisionError{Name: "div", Line: 1, Column: 6}, "name collision", 1, true},
		{"unlocated syntax", &islet.SyntaxError{Expr: "bad"}, "syntax error", 0, false},
		{"plain", errors.New("boom"), "error", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := Locate(tt.err)
			if ok != tt.ok || loc.Kind != tt.kind || loc.Line != tt.line {
				t.Errorf("Locate() = %+v, %v; want kind %q line %d ok %v", loc, ok, tt.kind, tt.line, tt.ok)
			}
		})
	}
}

func TestError(t *testing.T) {
	source := "<ul>\n  <li :for=\"bad\">x</li>\n</ul>"
	_, err := islet.CompileSource(source)
	if err == nil {
		t.Fatal("expected a syntax error")
	}

	out := Error("list.html", source, err)
	for _, want := range []string{
		"list.html:2:13",
		"Syntax Error",
		`<li :for="bad">x</li>`,
		"^^^",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestError_Unlocated(t *testing.T) {
	out := Error("x.html", "<p></p>", errors.New("read failed"))
	if !strings.Contains(out, "x.html") || !strings.Contains(out, "read failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "^") {
		t.Errorf("unlocated errors have no caret:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(3, 0); !strings.Contains(got, "3 file(s) ok") {
		t.Errorf("Summary(3, 0) = %q", got)
	}
	if got := Summary(3, 1); !strings.Contains(got, "1 of 3 file(s) failed") {
		t.Errorf("Summary(3, 1) = %q", got)
	}
}
