package islet

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data map[string]any
		want string
	}{
		{
			name: "escaped text with unclosed tag",
			src:  `<b>{ type } <i>`,
			data: map[string]any{"type": "bold"},
			want: `<b>bold <i></i></b>`,
		},
		{
			name: "loop over numbers",
			src:  `<p :for="n in nums">{ n }</p>`,
			data: map[string]any{"nums": []int{-1, 0, 1}},
			want: `<p>-1</p><p>0</p><p>1</p>`,
		},
		{
			name: "else-if branch",
			src:  `<div><b :if="am > 100">No</b><b :else-if="am == 100">Yes</b><b :else>No</b></div>`,
			data: map[string]any{"am": 100},
			want: `<div><b>Yes</b></div>`,
		},
		{
			name: "text is escaped",
			src:  `<p>{ s }</p>`,
			data: map[string]any{"s": "<b>&"},
			want: `<p>&lt;b&gt;&amp;</p>`,
		},
		{
			name: "template literal",
			src:  "<div>{ `hi ${name}` }</div>",
			data: map[string]any{"name": "N"},
			want: `<div>hi N</div>`,
		},
		{
			name: "template literal in attribute",
			src:  "<a :href=\"`/users/${user.id}?tab=${tab}`\">go</a>",
			data: map[string]any{"user": map[string]any{"id": 7}, "tab": "posts"},
			want: `<a href="/users/7?tab=posts">go</a>`,
		},
		{
			name: "strict equality matches the browser",
			src:  "<p>{ 1 === '1' ? 'y' : 'n' }{ 0 === false ? 'y' : 'n' }{ a !== '2' ? 'y' : 'n' }{ a === 2 ? 'y' : 'n' }</p>",
			data: map[string]any{"a": 2},
			want: `<p>nnyy</p>`,
		},
		{
			name: "entries loop",
			src:  `<p :for="[k, v, i] in Object.entries(o)">{ i }:{ k }={ v }</p>`,
			data: map[string]any{"o": map[string]any{"b": 2, "a": 1}},
			want: `<p>0:a=1</p><p>1:b=2</p>`,
		},
		{
			name: "object keys and array check",
			src:  `<p>{ Object.keys(o).join(',') } { String(Array.isArray(o)) } { Array.isArray(list) }</p>`,
			data: map[string]any{"o": map[string]any{"y": 1, "x": 2}, "list": []int{1}},
			want: `<p>x,y false true</p>`,
		},
		{
			name: "raw interpolation",
			src:  `<div>{{ s }}</div>`,
			data: map[string]any{"s": "<i>x</i>"},
			want: `<div><i>x</i></div>`,
		},
		{
			name: "raw among text",
			src:  `<p>a {{ s }} b</p>`,
			data: map[string]any{"s": "<i>x</i>"},
			want: `<p>a <i>x</i> b</p>`,
		},
		{
			name: "raw markup is not interpolated again",
			src:  `<div>{{ s }}</div>`,
			data: map[string]any{"s": "<i>{ secret }</i>"},
			want: `<div><i>{ secret }</i></div>`,
		},
		{
			name: "falsy values render nothing but zero",
			src:  `<p>{ a }{ b }{ c }</p>`,
			data: map[string]any{"a": false, "b": 0, "c": nil},
			want: `<p>0</p>`,
		},
		{
			name: "ternary",
			src:  `<p>{ n > 1 ? 'many' : 'one' }</p>`,
			data: map[string]any{"n": 2},
			want: `<p>many</p>`,
		},
		{
			name: "dynamic attribute",
			src:  `<a :href="url">x</a>`,
			data: map[string]any{"url": "/home"},
			want: `<a href="/home">x</a>`,
		},
		{
			name: "empty attribute dropped",
			src:  `<a :title="t">x</a>`,
			data: map[string]any{"t": ""},
			want: `<a>x</a>`,
		},
		{
			name: "zero attribute kept",
			src:  `<input :value="n">`,
			data: map[string]any{"n": 0},
			want: `<input value="0">`,
		},
		{
			name: "boolean shorthand true",
			src:  `<button $disabled="busy">Go</button>`,
			data: map[string]any{"busy": true},
			want: `<button disabled>Go</button>`,
		},
		{
			name: "boolean shorthand false",
			src:  `<button $disabled="busy">Go</button>`,
			data: map[string]any{"busy": false},
			want: `<button>Go</button>`,
		},
		{
			name: "boolean attribute by name",
			src:  `<input :checked="on">`,
			data: map[string]any{"on": "yes"},
			want: `<input checked>`,
		},
		{
			name: "class shorthand",
			src:  `<p :class="{ active: on, big: size > 2 }">x</p>`,
			data: map[string]any{"on": true, "size": 1},
			want: `<p class="active">x</p>`,
		},
		{
			name: "class shorthand merges with static class",
			src:  `<p class="btn" :class="{ on: yes }">x</p>`,
			data: map[string]any{"yes": true},
			want: `<p class="btn on">x</p>`,
		},
		{
			name: "class shorthand with nothing on",
			src:  `<p :class="{ on: yes }">x</p>`,
			data: map[string]any{"yes": false},
			want: `<p>x</p>`,
		},
		{
			name: "interpolated plain attribute",
			src:  `<p title="Hi { name }!">x</p>`,
			data: map[string]any{"name": "Ann"},
			want: `<p title="Hi Ann!">x</p>`,
		},
		{
			name: "handlers dropped",
			src:  `<button @click.prevent="save">Go</button>`,
			want: `<button>Go</button>`,
		},
		{
			name: "html directive",
			src:  `<div :html="body"></div>`,
			data: map[string]any{"body": "<b>x</b>"},
			want: `<div><b>x</b></div>`,
		},
		{
			name: "bind spreads keys in order",
			src:  `<input :bind="attrs">`,
			data: map[string]any{"attrs": map[string]any{"type": "text", "name": "q", "off": false}},
			want: `<input name="q" type="text">`,
		},
		{
			name: "loop with index",
			src:  `<li :for="item, i in items">{ i }:{ item }</li>`,
			data: map[string]any{"items": []string{"a", "b"}},
			want: `<li>0:a</li><li>1:b</li>`,
		},
		{
			name: "default index name",
			src:  `<li :for="item in items">{ $index }</li>`,
			data: map[string]any{"items": []string{"a", "b"}},
			want: `<li>0</li><li>1</li>`,
		},
		{
			name: "object destructuring",
			src:  `<li :for="{ name, age } in people">{ name } { age }</li>`,
			data: map[string]any{"people": []map[string]any{{"name": "Ann", "age": 30}, {"name": "Bo", "age": 4}}},
			want: `<li>Ann 30</li><li>Bo 4</li>`,
		},
		{
			name: "entries of an object",
			src:  `<p :for="[k, v] in obj">{ k }={ v };</p>`,
			data: map[string]any{"obj": map[string]any{"b": 2, "a": 1}},
			want: `<p>a=1;</p><p>b=2;</p>`,
		},
		{
			name: "keys of an object",
			src:  `<p :for="k in obj">{ k }</p>`,
			data: map[string]any{"obj": map[string]any{"b": 2, "a": 1}},
			want: `<p>a</p><p>b</p>`,
		},
		{
			name: "number range",
			src:  `<i :for="n in 3">{ n }</i>`,
			want: `<i>0</i><i>1</i><i>2</i>`,
		},
		{
			name: "nil iterates zero times",
			src:  `<ul><li :for="x in missing">{ x }</li></ul>`,
			data: map[string]any{"missing": nil},
			want: `<ul></ul>`,
		},
		{
			name: "loop falls through to outer data",
			src:  `<p :for="x in xs">{ prefix }{ x }</p>`,
			data: map[string]any{"prefix": "#", "xs": []int{1, 2}},
			want: `<p>#1</p><p>#2</p>`,
		},
		{
			name: "conditional inside loop",
			src:  `<p :for="n in nums"><b :if="n > 0">+</b><b :else>-</b></p>`,
			data: map[string]any{"nums": []int{1, -1}},
			want: `<p><b>+</b></p><p><b>-</b></p>`,
		},
		{
			name: "nested loops",
			src:  `<div :for="row in rows"><i :for="c in row">{ c }</i></div>`,
			data: map[string]any{"rows": [][]string{{"a", "b"}, {"c"}}},
			want: `<div><i>a</i><i>b</i></div><div><i>c</i></div>`,
		},
		{
			name: "conditional and loop on one element",
			src:  `<ul><li :if="show" :for="x in xs">{ x }</li></ul>`,
			data: map[string]any{"show": false, "xs": []int{1, 2}},
			want: `<ul></ul>`,
		},
		{
			name: "whitespace between branches",
			src:  `<div><b :if="x">A</b> <b :else>B</b></div>`,
			data: map[string]any{"x": false},
			want: `<div> <b>B</b></div>`,
		},
		{
			name: "no branch matches",
			src:  `<div><b :if="x">A</b><b :else-if="y">B</b></div>`,
			data: map[string]any{"x": false, "y": 0},
			want: `<div></div>`,
		},
		{
			name: "orphan else renders",
			src:  `<div><b :else>B</b></div>`,
			want: `<div><b>B</b></div>`,
		},
		{
			name: "chain is adjacency only",
			src:  `<div><b :if="x">A</b><i>i</i><b :else>B</b></div>`,
			data: map[string]any{"x": false},
			want: `<div><i>i</i><b>B</b></div>`,
		},
		{
			name: "named slot",
			src:  `<div><slot for="footer"/></div>`,
			data: map[string]any{"footer": "<em>f</em>"},
			want: `<div><em>f</em></div>`,
		},
		{
			name: "empty named slot removed",
			src:  `<div><slot for="footer"/>x</div>`,
			want: `<div>x</div>`,
		},
		{
			name: "server only markup stripped",
			src:  `<div><p server>secret</p>ok</div>`,
			want: `<div>ok</div>`,
		},
		{
			name: "script content untouched",
			src:  `<script>if (a < b) { run() }</script>`,
			want: `<script>if (a < b) { run() }</script>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderSource(tt.src, tt.data, nil)
			if err != nil {
				t.Fatalf("RenderSource() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderSource() =\n %s\nwant\n %s", got, tt.want)
			}
		})
	}
}

func parseOne(t *testing.T, src string) *Component {
	t.Helper()
	components, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	if len(components) != 1 {
		t.Fatalf("Parse(%q) returned %d components, want 1", src, len(components))
	}
	return components[0]
}

func TestRender_Components(t *testing.T) {
	deps := []*Component{
		parseOne(t, `<span @name="badge" class="badge">{ label }</span>`),
		parseOne(t, `<section @name="panel"><h2>{ title }</h2><slot/></section>`),
		parseOne(t, `<section @name="fallback"><slot><i>none</i></slot></section>`),
		parseOne(t, `<em @name="user-card">{ userName }</em>`),
	}

	tests := []struct {
		name string
		src  string
		data map[string]any
		want string
	}{
		{
			name: "evaluated prop",
			src:  `<div @name="card"><badge :label="title"></badge></div>`,
			data: map[string]any{"title": "New"},
			want: `<div><span class="badge">New</span></div>`,
		},
		{
			name: "literal prop",
			src:  `<div @name="card"><badge label="Hot"></badge></div>`,
			want: `<div><span class="badge">Hot</span></div>`,
		},
		{
			name: "parent scope visible",
			src:  `<div @name="card"><badge></badge></div>`,
			data: map[string]any{"label": "inherited"},
			want: `<div><span class="badge">inherited</span></div>`,
		},
		{
			name: "default slot rendered in caller scope",
			src:  `<div @name="page"><panel title="T"><p>{ body }</p></panel></div>`,
			data: map[string]any{"body": "B"},
			want: `<div><section><h2>T</h2><p>B</p></section></div>`,
		},
		{
			name: "slot fallback",
			src:  `<div @name="page"><fallback></fallback></div>`,
			want: `<div><section><i>none</i></section></div>`,
		},
		{
			name: "hyphenated prop is camel cased",
			src:  `<div @name="page"><user-card user-name="Ann"></user-card></div>`,
			want: `<div><em>Ann</em></div>`,
		},
		{
			name: "component in a loop",
			src:  `<ul @name="list"><li :for="t in tags"><badge :label="t"></badge></li></ul>`,
			data: map[string]any{"tags": []string{"a", "b"}},
			want: `<ul><li><span class="badge">a</span></li><li><span class="badge">b</span></li></ul>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseOne(t, tt.src)
			got, err := Render(c, tt.data, deps)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() =\n %s\nwant\n %s", got, tt.want)
			}
		})
	}
}

func TestRender_Island(t *testing.T) {
	src := `<chart-view id="c1" class="big" data-x="1" :points="pts" label="L" @click="go"><p>{ ignored }</p></chart-view>`
	got, err := RenderSource(src, map[string]any{"pts": []int{1, 2}}, nil)
	if err != nil {
		t.Fatalf("RenderSource() error = %v", err)
	}

	want := `<chart-view id="c1" class="big" data-x="1"><script type="application/json">{"label":"L","points":[1,2]}</script></chart-view>`
	if got != want {
		t.Errorf("island =\n %s\nwant\n %s", got, want)
	}
}

func TestRender_IslandEvaluatedStandardAttrs(t *testing.T) {
	src := `<x-map :id="key" :class="{ wide: big }" :data-zoom="z" :center="c"></x-map>`
	data := map[string]any{"key": "m1", "big": true, "z": 3, "c": "NYC"}
	got, err := RenderSource(src, data, nil)
	if err != nil {
		t.Fatalf("RenderSource() error = %v", err)
	}

	want := `<x-map id="m1" class="wide" data-zoom="3"><script type="application/json">{"center":"NYC"}</script></x-map>`
	if got != want {
		t.Errorf("island =\n %s\nwant\n %s", got, want)
	}
}

func TestRender_RootIsNotResolved(t *testing.T) {
	c := parseOne(t, `<my-widget @name="widget"><p>{ n }</p></my-widget>`)
	got, err := Render(c, map[string]any{"n": 1}, []*Component{c})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := `<my-widget><p>1</p></my-widget>`; got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

type greeter struct {
	Greeting string
	Seen     any
}

func (g *greeter) Bind(s Scope) {
	g.Seen, _ = s.Lookup("count")
}

func (g *greeter) Double(n int) int {
	return n * 2
}

func TestRender_Behavior(t *testing.T) {
	c := parseOne(t, `<p @name="greet">{ Greeting }, { name }: { Double(count) } { Seen }</p>`)
	c.Behavior = func() any {
		return &greeter{Greeting: "Hello"}
	}

	got, err := Render(c, map[string]any{"name": "Ann", "count": 3}, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := `<p>Hello, Ann: 6 3</p>`; got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestRender_DataShadowsBehavior(t *testing.T) {
	c := parseOne(t, `<p>{ Greeting }</p>`)
	c.Behavior = func() any {
		return &greeter{Greeting: "from behavior"}
	}

	got, err := Render(c, map[string]any{"Greeting": "from data"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != `<p>from data</p>` {
		t.Errorf("Render() = %s", got)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Run("evaluation error is located", func(t *testing.T) {
		src := "<div>\n  <p>{ missing.name }</p>\n</div>"
		_, err := RenderSource(src, map[string]any{}, nil)

		var ee *EvaluationError
		if !errors.As(err, &ee) {
			t.Fatalf("error = %v, want *EvaluationError", err)
		}
		if ee.Expr != "missing.name" || ee.Line != 2 || ee.Column != 8 {
			t.Errorf("got %q at %d:%d, want missing.name at 2:8", ee.Expr, ee.Line, ee.Column)
		}
	})

	t.Run("error inside a dependency names it", func(t *testing.T) {
		dep := parseOne(t, `<b @name="broken">{ nope.x }</b>`)
		c := parseOne(t, `<div @name="outer"><broken></broken></div>`)
		_, err := Render(c, nil, []*Component{dep})

		var ee *EvaluationError
		if !errors.As(err, &ee) {
			t.Fatalf("error = %v, want *EvaluationError", err)
		}
		if ee.Component != "broken" {
			t.Errorf("Component = %q, want broken", ee.Component)
		}
	})

	t.Run("malformed loop", func(t *testing.T) {
		src := "<ul>\n<li :for=\"item items\">x</li></ul>"
		_, err := RenderSource(src, nil, nil)

		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *SyntaxError", err)
		}
		if se.Line != 2 {
			t.Errorf("Line = %d, want 2", se.Line)
		}
	})

	t.Run("not iterable", func(t *testing.T) {
		_, err := RenderSource(`<p :for="x in flag">x</p>`, map[string]any{"flag": true}, nil)

		var ee *EvaluationError
		if !errors.As(err, &ee) {
			t.Fatalf("error = %v, want *EvaluationError", err)
		}
		if !strings.Contains(ee.Error(), "not iterable") {
			t.Errorf("error = %v", ee)
		}
	})

	t.Run("oversized numeric range", func(t *testing.T) {
		_, err := RenderSource(`<p :for="i in n">{ i }</p>`, map[string]any{"n": 1e18}, nil)

		var ee *EvaluationError
		if !errors.As(err, &ee) {
			t.Fatalf("error = %v, want *EvaluationError", err)
		}
		if ee.Expr != "i in n" {
			t.Errorf("Expr = %q, want the loop clause", ee.Expr)
		}
	})

	t.Run("browser-only global", func(t *testing.T) {
		_, err := RenderSource(`<p>{ window.innerWidth }</p>`, nil, nil)
		if err == nil || !strings.Contains(err.Error(), "only available in the browser") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("self recursion", func(t *testing.T) {
		c := parseOne(t, `<div @name="loop-el"><loop-el></loop-el></div>`)
		if _, err := Render(c, nil, []*Component{c}); err == nil {
			t.Fatal("expected a nesting error")
		}
	})
}

func TestRender_Minify(t *testing.T) {
	src := "<div>\n    <p>  { a }  </p>\n    <p>b</p>\n</div>"
	plain, err := RenderSource(src, map[string]any{"a": "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	small, err := RenderSource(src, map[string]any{"a": "x"}, nil, WithMinify())
	if err != nil {
		t.Fatal(err)
	}
	if len(small) >= len(plain) {
		t.Errorf("minified output %q is not smaller than %q", small, plain)
	}
	if !strings.Contains(small, "<p>b</p>") {
		t.Errorf("minified output lost content: %q", small)
	}
}

func TestRender_Metrics(t *testing.T) {
	m := NewMetrics()
	dep := parseOne(t, `<b @name="chip">{ t }</b>`)
	src := `<div><chip :for="t in ts" :t="t"></chip><x-unknown></x-unknown></div>`

	if _, err := RenderSource(src, map[string]any{"ts": []string{"a", "b", "c"}}, []*Component{dep}, WithMetrics(m)); err != nil {
		t.Fatal(err)
	}
	if _, err := RenderSource(`<p>{ a.b }</p>`, nil, nil, WithMetrics(m)); err == nil {
		t.Fatal("expected an evaluation error")
	}

	got := m.GetMetrics()
	if got.RendersCompleted != 1 || got.RenderErrors != 1 {
		t.Errorf("renders = %d, errors = %d", got.RendersCompleted, got.RenderErrors)
	}
	if got.LoopIterations != 3 || got.ComponentsInlined != 3 || got.IslandsEmitted != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestRender_SlotAndRawCounters(t *testing.T) {
	m := NewMetrics()
	dep := parseOne(t, `<div @name="box"><slot></slot></div>`)
	src := `<section><box><p :html="h"></p></box></section>`

	if _, err := RenderSource(src, map[string]any{"h": "<b>x</b>"}, []*Component{dep}, WithMetrics(m)); err != nil {
		t.Fatal(err)
	}
	got := m.GetCustomCounters()
	if got["slots"] != 1 || got["raw_html"] != 1 {
		t.Errorf("custom counters = %v", got)
	}
}
