package eval

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Func is a function value callable from expressions
type Func func(args ...any) (any, error)

// Truthy reports whether v counts as true in a condition. nil, false, 0, NaN,
// "" and nil pointers, maps, slices and funcs are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := number(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// ToString converts v to text the way it is interpolated into markup. nil is
// empty, integral numbers print without a fraction.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	if f, ok := number(v); ok {
		return formatNumber(f)
	}
	if items, ok := toSlice(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = ToString(item)
		}
		return strings.Join(parts, ",")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return "function"
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
	}
	return "[object Object]"
}

// JoinParts flattens the value of a mixed text or class expression. Arrays
// drop entries that are not Visible and join the rest with no separator.
func JoinParts(v any) string {
	items, ok := toSlice(v)
	if !ok {
		return ToString(v)
	}
	var b strings.Builder
	for _, item := range items {
		if Visible(item) {
			b.WriteString(ToString(item))
		}
	}
	return b.String()
}

// Visible reports whether v produces output when interpolated: truthy
// values and the number 0.
func Visible(v any) bool {
	if Truthy(v) {
		return true
	}
	f, ok := number(v)
	return ok && f == 0
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// number returns v as float64 when v has a Go numeric type
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	}
	return 0, false
}

// toNumber applies numeric conversion: booleans are 0 or 1, strings are
// parsed, nil and anything unparsable is NaN.
func toNumber(v any) float64 {
	if f, ok := number(v); ok {
		return f
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return float64(i)
		}
	}
	return math.NaN()
}

// toInt converts v to an integer, treating NaN and infinities as 0
func toInt(v any) int {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// looseEqual compares like ==: numbers, strings and booleans compare by value
// after numeric conversion across kinds, null equals only null.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return sa == sb
	}
	if isScalar(a) && isScalar(b) {
		return toNumber(a) == toNumber(b)
	}
	return sameRef(a, b)
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	_, ok := number(v)
	return ok
}

// strictEqual compares without conversion across kinds. Numbers of different
// Go types are still equal when their values are.
func strictEqual(a, b any) bool {
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return sameRef(a, b)
}

func sameRef(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ra.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

// toSlice returns the items of a slice or array value
func toSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Member reads property key of obj. Scopes and string-keyed maps are looked up
// by key; structs by field name, json tag or capitalised name; methods are
// returned bound to obj. Strings, slices and arrays answer length and numeric
// indexes. The boolean is false when the property does not exist.
func Member(obj any, key any) (any, bool) {
	name := ToString(key)
	switch o := obj.(type) {
	case nil:
		return nil, false
	case Scope:
		return o.Lookup(name)
	case map[string]any:
		v, ok := o[name]
		return v, ok
	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(o)), true
		}
		if i, ok := index(key); ok {
			r := []rune(o)
			if i >= 0 && i < len(r) {
				return string(r[i]), true
			}
		}
		return nil, false
	}

	if items, ok := toSlice(obj); ok {
		if name == "length" {
			return float64(len(items)), true
		}
		if i, ok := index(key); ok && i >= 0 && i < len(items) {
			return items[i], true
		}
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	if m, ok := method(rv, name); ok {
		return m, true
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		if f, ok := field(rv, name); ok {
			return f.Interface(), true
		}
	}
	return nil, false
}

func index(key any) (int, bool) {
	switch k := key.(type) {
	case string:
		i, err := strconv.Atoi(k)
		return i, err == nil
	}
	f, ok := number(key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func field(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag == name {
			return rv.Field(i), true
		}
	}
	if sf, ok := t.FieldByName(capitalize(name)); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	return reflect.Value{}, false
}

func method(rv reflect.Value, name string) (any, bool) {
	if !rv.IsValid() || name == "" {
		return nil, false
	}
	for _, n := range []string{name, capitalize(name)} {
		if m := rv.MethodByName(n); m.IsValid() {
			return m.Interface(), true
		}
	}
	return nil, false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// keysOf lists the property names of v in a stable order
func keysOf(v any) []string {
	switch o := v.(type) {
	case nil:
		return nil
	case Scope:
		return o.Keys()
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	var keys []string
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := strings.Split(sf.Tag.Get("json"), ",")[0]
			if name == "-" {
				continue
			}
			if name == "" {
				name = sf.Name
			}
			keys = append(keys, name)
		}
	}
	return keys
}

// Entries returns the sorted keys of a map or struct with their values
func Entries(v any) (keys []string, values []any) {
	keys = keysOf(v)
	values = make([]any, len(keys))
	for i, k := range keys {
		values[i], _ = Member(v, k)
	}
	return keys, values
}

// MaxRange bounds how many iterations a numeric loop source may produce
const MaxRange = 1_000_000

// Items returns the elements of a collection a loop can iterate: slices and
// arrays as is, numbers as 0..n-1, maps and structs as their sorted keys.
// nil yields no items.
func Items(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if items, ok := toSlice(v); ok {
		return items, nil
	}
	if f, ok := number(v); ok {
		if f > MaxRange {
			return nil, fmt.Errorf("range of %s exceeds the limit of %d iterations", ToString(v), MaxRange)
		}
		n := toInt(v)
		items := make([]any, 0, max(n, 0))
		for i := 0; i < n; i++ {
			items = append(items, float64(i))
		}
		return items, nil
	}
	if s, ok := v.(string); ok {
		items := make([]any, 0, len(s))
		for _, r := range s {
			items = append(items, string(r))
		}
		return items, nil
	}
	if keys := keysOf(v); keys != nil || isObject(v) {
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	}
	return nil, fmt.Errorf("%s is not iterable", ToString(v))
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// call invokes fn with args. Func values and plain Go functions are accepted;
// arguments are converted to the parameter types where possible.
func call(fn any, args []any) (any, error) {
	switch f := fn.(type) {
	case Func:
		return f(args...)
	case func(...any) (any, error):
		return f(args...)
	case nil:
		return nil, fmt.Errorf("undefined is not a function")
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", ToString(fn))
	}
	t := rv.Type()
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < t.NumIn(); i++ {
		pt := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			et := pt.Elem()
			for _, a := range args[min(i, len(args)):] {
				v, err := convertArg(a, et)
				if err != nil {
					return nil, err
				}
				in = append(in, v)
			}
			break
		}
		var a any
		if i < len(args) {
			a = args[i]
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	out := rv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := out[0].Interface().(error); ok && t.Out(0) == errorType {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		if err, ok := out[len(out)-1].Interface().(error); ok && err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumericKind(v.Kind()) && isNumericKind(t.Kind()) {
		return v.Convert(t), nil
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(ToString(a)).Convert(t), nil
	}
	if t.Kind() == reflect.Bool {
		return reflect.ValueOf(Truthy(a)).Convert(t), nil
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s argument", v.Type(), t)
}

func isNumericKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}
