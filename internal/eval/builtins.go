package eval

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// globals are the names every expression can use without a scope prefix
var globals = map[string]any{
	"true":      true,
	"false":     false,
	"null":      nil,
	"undefined": nil,
	"NaN":       math.NaN(),
	"Infinity":  math.Inf(1),

	"Number": Func(func(args ...any) (any, error) {
		if len(args) == 0 {
			return 0.0, nil
		}
		return toNumber(args[0]), nil
	}),
	"String": Func(func(args ...any) (any, error) {
		return ToString(arg(args, 0)), nil
	}),
	"Boolean": Func(func(args ...any) (any, error) {
		return Truthy(arg(args, 0)), nil
	}),
	"isNaN": Func(func(args ...any) (any, error) {
		return math.IsNaN(toNumber(arg(args, 0))), nil
	}),
	"parseInt":   Func(parseInt),
	"parseFloat": Func(parseFloat),

	"Math": map[string]any{
		"PI":    math.Pi,
		"round": mathFunc(func(f float64) float64 { return math.Floor(f + 0.5) }),
		"floor": mathFunc(math.Floor),
		"ceil":  mathFunc(math.Ceil),
		"abs":   mathFunc(math.Abs),
		"sqrt":  mathFunc(math.Sqrt),
		"trunc": mathFunc(math.Trunc),
		"pow": Func(func(args ...any) (any, error) {
			return math.Pow(toNumber(arg(args, 0)), toNumber(arg(args, 1))), nil
		}),
		"min": Func(func(args ...any) (any, error) {
			out := math.Inf(1)
			for _, a := range args {
				out = math.Min(out, toNumber(a))
			}
			return out, nil
		}),
		"max": Func(func(args ...any) (any, error) {
			out := math.Inf(-1)
			for _, a := range args {
				out = math.Max(out, toNumber(a))
			}
			return out, nil
		}),
	},

	"JSON": map[string]any{
		"stringify": Func(func(args ...any) (any, error) {
			b, err := json.Marshal(arg(args, 0))
			if err != nil {
				return nil, err
			}
			return string(b), nil
		}),
	},

	"console": map[string]any{
		"log": Func(func(args ...any) (any, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = ToString(a)
			}
			log.Printf("console: %s", strings.Join(parts, " "))
			return nil, nil
		}),
	},
}

// browserOnly names exist in the browser runtime but have no server meaning
var browserOnly = map[string]bool{
	"alert": true, "confirm": true, "prompt": true, "document": true, "window": true,
	"location": true, "setTimeout": true, "setInterval": true, "clearTimeout": true,
	"clearInterval": true,
}

func init() {
	globals["Object"] = map[string]any{
		"keys": Func(func(args ...any) (any, error) {
			keys := keysOf(arg(args, 0))
			out := make([]any, len(keys))
			for i, k := range keys {
				out[i] = k
			}
			return out, nil
		}),
		"values": Func(func(args ...any) (any, error) {
			_, values := Entries(arg(args, 0))
			return values, nil
		}),
		"entries": Func(func(args ...any) (any, error) {
			keys, values := Entries(arg(args, 0))
			out := make([]any, len(keys))
			for i, k := range keys {
				out[i] = []any{k, values[i]}
			}
			return out, nil
		}),
		"assign": Func(func(args ...any) (any, error) {
			out := map[string]any{}
			for _, src := range args {
				keys, values := Entries(src)
				for i, k := range keys {
					out[k] = values[i]
				}
			}
			return out, nil
		}),
	}
	globals["Array"] = map[string]any{
		"isArray": Func(func(args ...any) (any, error) {
			_, ok := toSlice(arg(args, 0))
			return ok, nil
		}),
		"from": Func(func(args ...any) (any, error) {
			items, err := Items(arg(args, 0))
			if items == nil && err == nil {
				items = []any{}
			}
			return items, err
		}),
	}
	globals["Date"] = map[string]any{
		"now": Func(func(args ...any) (any, error) {
			return float64(time.Now().UnixMilli()), nil
		}),
	}
	globals["Error"] = Func(func(args ...any) (any, error) {
		return map[string]any{"name": "Error", "message": ToString(arg(args, 0))}, nil
	})
	globals["encodeURIComponent"] = Func(func(args ...any) (any, error) {
		return encodeURIComponent(ToString(arg(args, 0))), nil
	})
	globals["decodeURIComponent"] = Func(func(args ...any) (any, error) {
		return url.PathUnescape(ToString(arg(args, 0)))
	})
}

// encodeURIComponent escapes everything but the characters JavaScript's
// encodeURIComponent leaves alone
func encodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte("-_.!~*'()", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func mathFunc(f func(float64) float64) Func {
	return func(args ...any) (any, error) {
		return f(toNumber(arg(args, 0))), nil
	}
}

// parseInt reads the leading integer of its argument, in the given radix
func parseInt(args ...any) (any, error) {
	s := strings.TrimSpace(ToString(arg(args, 0)))
	base := 10
	if r := arg(args, 1); r != nil {
		base = toInt(r)
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	if base == 16 || base == 10 && len(s) > 1 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		base = 16
	}
	end := 0
	for end < len(s) && digitValue(rune(s[end])) < base {
		end++
	}
	if end == 0 || base < 2 || base > 36 {
		return math.NaN(), nil
	}
	i, err := strconv.ParseInt(sign+s[:end], base, 64)
	if err != nil {
		return math.NaN(), nil
	}
	return float64(i), nil
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return 99
}

// parseFloat reads the longest numeric prefix of its argument
func parseFloat(args ...any) (any, error) {
	s := strings.TrimSpace(ToString(arg(args, 0)))
	for end := len(s); end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, nil
		}
	}
	return math.NaN(), nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// callBuiltin dispatches name to the built-in methods of strings, arrays and numbers
func callBuiltin(obj any, name string, args []any) (any, error) {
	if s, ok := obj.(string); ok {
		if m, ok := stringMethods[name]; ok {
			return m(s, args)
		}
	} else if items, ok := toSlice(obj); ok {
		if m, ok := arrayMethods[name]; ok {
			return m(items, args)
		}
	} else if f, ok := number(obj); ok {
		if m, ok := numberMethods[name]; ok {
			return m(f, args)
		}
	}
	if name == "toString" {
		return ToString(obj), nil
	}
	return nil, fmt.Errorf("%s is not a function", name)
}

// bounds resolves slice(start, end) arguments against length n; negative
// positions count from the end.
func bounds(args []any, n int) (int, int) {
	pos := func(v any, def int) int {
		if v == nil {
			return def
		}
		i := toInt(v)
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	start := pos(arg(args, 0), 0)
	end := pos(arg(args, 1), n)
	if end < start {
		end = start
	}
	return start, end
}

var stringMethods = map[string]func(s string, args []any) (any, error){
	"toUpperCase": func(s string, _ []any) (any, error) { return cases.Upper(language.Und).String(s), nil },
	"toLowerCase": func(s string, _ []any) (any, error) { return cases.Lower(language.Und).String(s), nil },
	"trim":        func(s string, _ []any) (any, error) { return strings.TrimSpace(s), nil },
	"trimStart": func(s string, _ []any) (any, error) {
		return strings.TrimLeftFunc(s, unicode.IsSpace), nil
	},
	"trimEnd": func(s string, _ []any) (any, error) {
		return strings.TrimRightFunc(s, unicode.IsSpace), nil
	},
	"includes": func(s string, args []any) (any, error) {
		return strings.Contains(s, ToString(arg(args, 0))), nil
	},
	"startsWith": func(s string, args []any) (any, error) {
		return strings.HasPrefix(s, ToString(arg(args, 0))), nil
	},
	"endsWith": func(s string, args []any) (any, error) {
		return strings.HasSuffix(s, ToString(arg(args, 0))), nil
	},
	"indexOf": func(s string, args []any) (any, error) {
		i := strings.Index(s, ToString(arg(args, 0)))
		if i > 0 {
			i = len([]rune(s[:i]))
		}
		return float64(i), nil
	},
	"slice": func(s string, args []any) (any, error) {
		r := []rune(s)
		start, end := bounds(args, len(r))
		return string(r[start:end]), nil
	},
	"split": func(s string, args []any) (any, error) {
		var parts []string
		if sep := arg(args, 0); sep == nil {
			parts = []string{s}
		} else {
			parts = strings.Split(s, ToString(sep))
		}
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	},
	"replace": func(s string, args []any) (any, error) {
		return strings.Replace(s, ToString(arg(args, 0)), ToString(arg(args, 1)), 1), nil
	},
	"replaceAll": func(s string, args []any) (any, error) {
		return strings.ReplaceAll(s, ToString(arg(args, 0)), ToString(arg(args, 1))), nil
	},
	"repeat": func(s string, args []any) (any, error) {
		n := toInt(arg(args, 0))
		if n < 0 {
			return nil, fmt.Errorf("invalid count value: %d", n)
		}
		return strings.Repeat(s, n), nil
	},
	"padStart": func(s string, args []any) (any, error) {
		return pad(s, args, true), nil
	},
	"padEnd": func(s string, args []any) (any, error) {
		return pad(s, args, false), nil
	},
	"charAt": func(s string, args []any) (any, error) {
		r := []rune(s)
		i := toInt(arg(args, 0))
		if i < 0 || i >= len(r) {
			return "", nil
		}
		return string(r[i]), nil
	},
}

func pad(s string, args []any, start bool) string {
	width := toInt(arg(args, 0))
	fill := " "
	if f := arg(args, 1); f != nil {
		fill = ToString(f)
	}
	n := width - len([]rune(s))
	if n <= 0 || fill == "" {
		return s
	}
	padding := []rune(strings.Repeat(fill, n/len([]rune(fill))+1))[:n]
	if start {
		return string(padding) + s
	}
	return s + string(padding)
}

var arrayMethods = map[string]func(items []any, args []any) (any, error){
	"join": func(items []any, args []any) (any, error) {
		sep := ","
		if s := arg(args, 0); s != nil {
			sep = ToString(s)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = ToString(item)
		}
		return strings.Join(parts, sep), nil
	},
	"includes": func(items []any, args []any) (any, error) {
		for _, item := range items {
			if strictEqual(item, arg(args, 0)) {
				return true, nil
			}
		}
		return false, nil
	},
	"indexOf": func(items []any, args []any) (any, error) {
		for i, item := range items {
			if strictEqual(item, arg(args, 0)) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	},
	"slice": func(items []any, args []any) (any, error) {
		start, end := bounds(args, len(items))
		return append([]any(nil), items[start:end]...), nil
	},
	"concat": func(items []any, args []any) (any, error) {
		out := append([]any(nil), items...)
		for _, a := range args {
			if more, ok := toSlice(a); ok {
				out = append(out, more...)
			} else {
				out = append(out, a)
			}
		}
		return out, nil
	},
	"reverse": func(items []any, _ []any) (any, error) {
		out := make([]any, len(items))
		for i, item := range items {
			out[len(items)-1-i] = item
		}
		return out, nil
	},
}

var numberMethods = map[string]func(f float64, args []any) (any, error){
	"toFixed": func(f float64, args []any) (any, error) {
		digits := toInt(arg(args, 0))
		return strconv.FormatFloat(f, 'f', digits, 64), nil
	},
	"toString": func(f float64, _ []any) (any, error) {
		return formatNumber(f), nil
	},
}
