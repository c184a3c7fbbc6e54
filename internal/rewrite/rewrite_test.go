package rewrite

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScopeIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"bare identifier", "count", "_.count"},
		{"update expression", "count++", "_.count++"},
		{"member access", "user.name.first", "_.user.name.first"},
		{"optional chaining", "user?.name", "_.user?.name"},
		{"call with arguments", "format(price, 'EUR')", "_.format(_.price, 'EUR')"},
		{"string literal untouched", `'hello world' + name`, `'hello world' + _.name`},
		{"escaped quote in string", `'it\'s ' + who`, `'it\'s ' + _.who`},
		{"reserved words", "Math.round(total) || null", "Math.round(_.total) || null"},
		{"booleans", "done == true", "_.done == true"},
		{"event alias", "select($event)", "_.select(e)"},
		{"ternary", "open ? 'yes' : 'no'", "_.open ? 'yes' : 'no'"},
		{"object literal keys", "{ id: key, label: text }", "{ id: _.key, label: _.text }"},
		{"numbers", "x * 1.5e3", "_.x * 1.5e3"},
		{"index variable", "$index + 1", "_.$index + 1"},
		{"already scoped", "_.count", "_.count"},
		{"array index", "items[i].name", "_.items[_.i].name"},
		{"spread", "[...items]", "[..._.items]"},
		{"template literal", "`${count} of ${total}`", "`${_.count} of ${_.total}`"},
		{"nested template", "`a ${ok ? `b ${x}` : '}'}`", "`a ${_.ok ? `b ${_.x}` : '}'}`"},
		{"escaped placeholder", "`\\${raw} ${v}`", "`\\${raw} ${_.v}`"},
		{"template text untouched", "`count: ${n}`", "`count: ${_.n}`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScopeIdentifiers(tt.expr); got != tt.want {
				t.Errorf("ScopeIdentifiers(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseFor(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		want    *ForLoop
		literal string
	}{
		{
			name:    "plain key",
			clause:  "n in nums",
			want:    &ForLoop{Keys: []string{"n"}, Source: "_.nums", Index: "$index"},
			literal: "['n', _.nums, '$index']",
		},
		{
			name:    "key and index with of",
			clause:  "(item, i) of list.items",
			want:    &ForLoop{Keys: []string{"item"}, Source: "_.list.items", Index: "i"},
			literal: "['item', _.list.items, 'i']",
		},
		{
			name:    "object destructuring",
			clause:  "{ name, age } in people",
			want:    &ForLoop{Keys: []string{"name", "age"}, Source: "_.people", Index: "$index", Destructure: true},
			literal: "[['name', 'age'], _.people, '$index']",
		},
		{
			name:    "object destructuring with index",
			clause:  "{ name }, idx in people",
			want:    &ForLoop{Keys: []string{"name"}, Source: "_.people", Index: "idx", Destructure: true},
			literal: "[['name'], _.people, 'idx']",
		},
		{
			name:    "entries",
			clause:  "[key, value] in settings",
			want:    &ForLoop{Keys: []string{"key", "value"}, Source: "_.settings", Index: "$index", Entries: true},
			literal: "[['key', 'value'], _.settings, '$index', true]",
		},
		{
			name:    "entries with index",
			clause:  "[k, v, i] in settings",
			want:    &ForLoop{Keys: []string{"k", "v"}, Source: "_.settings", Index: "i", Entries: true},
			literal: "[['k', 'v'], _.settings, 'i', true]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFor(tt.clause)
			if err != nil {
				t.Fatalf("ParseFor(%q) error: %v", tt.clause, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFor(%q) mismatch (-want +got):\n%s", tt.clause, diff)
			}
			if lit := got.Literal(); lit != tt.literal {
				t.Errorf("Literal() = %q, want %q", lit, tt.literal)
			}
		})
	}
}

func TestParseFor_Errors(t *testing.T) {
	clauses := []string{
		"items",
		"in items",
		"x in ",
		"[k] in obj",
		"[k, v in obj",
		"{a, b in obj",
		"a, b, c in items",
		"a-b in items",
	}
	for _, clause := range clauses {
		_, err := ParseFor(clause)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("ParseFor(%q) expected *SyntaxError, got %v", clause, err)
			continue
		}
		if syntaxErr.Expr != clause {
			t.Errorf("SyntaxError.Expr = %q, want %q", syntaxErr.Expr, clause)
		}
	}
}

func TestObjectShorthand(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"active: isActive", true},
		{"'is-big': size > 2, red: error", true},
		{"is-big: size > 2", true},
		{"open ? 'a' : 'b'", false},
		{"user.name", false},
		{"'a:b'", false},
	}
	for _, tt := range tests {
		if got := IsObjectShorthand(tt.expr); got != tt.want {
			t.Errorf("IsObjectShorthand(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}

	got := ParseClass("active: isActive, 'is-big': size > 2")
	want := []string{"_.isActive && 'active '", "_.size > 2 && 'is-big '"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseClass mismatch (-want +got):\n%s", diff)
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
		expr string
	}{
		{
			name: "single expression",
			text: "{ title }",
			want: []string{"_.title"},
			expr: "_.title",
		},
		{
			name: "mixed",
			text: "Hello { user.name }!",
			want: []string{"'Hello '", "_.user.name", "'!'"},
			expr: "['Hello ', _.user.name, '!']",
		},
		{
			name: "shorthand expands",
			text: "btn { primary: main, big: large }",
			want: []string{"'btn '", "_.main && 'primary '", "_.large && 'big '"},
			expr: "['btn ', _.main && 'primary ', _.large && 'big ']",
		},
		{
			name: "literal quote is escaped",
			text: "it's { n }",
			want: []string{`'it\'s '`, "_.n"},
			expr: `['it\'s ', _.n]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseText(tt.text)); diff != "" {
				t.Errorf("ParseText mismatch (-want +got):\n%s", diff)
			}
			if got := TextExpression(tt.text); got != tt.expr {
				t.Errorf("TextExpression() = %q, want %q", got, tt.expr)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	got := Split("a {{ html }} b { x } { unclosed")
	want := []Segment{
		{Text: "a "},
		{Text: "html", Expr: true, Raw: true},
		{Text: " b "},
		{Text: "x", Expr: true},
		{Text: " { unclosed"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
	if HasExpr("plain text") {
		t.Error("plain text has no expression")
	}
	if !HasRaw("<p>{{ body }}</p>") {
		t.Error("expected raw interpolation")
	}
}

func TestParseHandler(t *testing.T) {
	tests := []struct {
		name string
		attr string
		expr string
		want string
	}{
		{
			name: "method shorthand",
			attr: "@click",
			expr: "increment",
			want: "_.increment.call(_, e)",
		},
		{
			name: "expression",
			attr: "@click",
			expr: "count++",
			want: "_.count++",
		},
		{
			name: "event alias",
			attr: "@input",
			expr: "update($event.target.value)",
			want: "_.update(e.target.value)",
		},
		{
			name: "modifiers in fixed order",
			attr: "@submit.prevent.stop.self",
			expr: "save",
			want: "e.stopPropagation(); e.preventDefault(); if (e.target !== e.currentTarget) return; _.save.call(_, e)",
		},
		{
			name: "key alias",
			attr: "@keyup.enter",
			expr: "send",
			want: "if (!['enter', 'return'].includes(e.key.toLowerCase())) return; _.send.call(_, e)",
		},
		{
			name: "space alias",
			attr: "@keydown.space.prevent",
			expr: "toggle",
			want: "e.preventDefault(); if (![' ', 'spacebar', 'space bar'].includes(e.key.toLowerCase())) return; _.toggle.call(_, e)",
		},
		{
			name: "once detaches last",
			attr: "@click.once",
			expr: "count++",
			want: "_.count++; e.currentTarget.removeEventListener(e.type, $h)",
		},
		{
			name: "non key event ignores bare modifiers",
			attr: "@click.enter",
			expr: "go",
			want: "_.go.call(_, e)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHandler(tt.attr, tt.expr); got != tt.want {
				t.Errorf("ParseHandler(%q, %q) =\n %q\nwant\n %q", tt.attr, tt.expr, got, tt.want)
			}
		})
	}
}

func TestEventKey(t *testing.T) {
	tests := map[string]string{
		"@click":                   "@click",
		"@click.once":              "@click",
		"@submit.prevent.stop":     "@submit",
		"@keyup.enter":             "@keyup",
		"@scroll.passive":          "@scroll.passive",
		"@click.capture.once":      "@click.capture",
		"@touchstart.self.passive": "@touchstart.passive",
	}
	for attr, want := range tests {
		if got := EventKey(attr); got != want {
			t.Errorf("EventKey(%q) = %q, want %q", attr, got, want)
		}
	}
}

func TestAttrExpression(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		want      string
		shorthand bool
	}{
		{"plain expression", "url", "_.url", false},
		{"shorthand", "active: on", "[_.on && 'active ']", true},
		{"braced shorthand", "{ active: on, 'is-big': size > 2 }", "[_.on && 'active ', _.size > 2 && 'is-big ']", true},
		{"ternary is not shorthand", "on ? 'a' : 'b'", "_.on ? 'a' : 'b'", false},
		{"object literal left alone", "{ a: 1 } ? x : y", "{ a: 1 } ? _.x : _.y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttrExpression(tt.expr); got != tt.want {
				t.Errorf("AttrExpression(%q) = %q, want %q", tt.expr, got, tt.want)
			}
			if _, ok := ShorthandBody(tt.expr); ok != tt.shorthand {
				t.Errorf("ShorthandBody(%q) shorthand = %v, want %v", tt.expr, ok, tt.shorthand)
			}
		})
	}
}
