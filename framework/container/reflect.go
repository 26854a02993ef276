package container

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// parameter is the reflected form of one constructor parameter or struct field.
type parameter struct {
	name       string
	typ        reflect.Type
	key        string // container id of typ, "" for built-in types
	def        reflect.Value
	hasDefault bool
	optional   bool
	field      []int // struct declarations only
}

// typeMeta is the memoized reflection of a declaration.
type typeMeta struct {
	id     string
	owner  string
	params []parameter
	build  func(in []reflect.Value) (any, error)
}

// inspect reflects a declaration into its parameter list and builder.
func inspect(d *declaration) (*typeMeta, error) {
	if d.structType != nil {
		return inspectStruct(d)
	}
	return inspectFunc(d)
}

func inspectFunc(d *declaration) (*typeMeta, error) {
	t := d.ctor.Type()
	params := make([]parameter, t.NumIn())
	for i := range params {
		arg := Arg{name: "arg" + strconv.Itoa(i)}
		if i < len(d.args) {
			arg = d.args[i]
		}
		p := parameter{
			name:     arg.name,
			typ:      t.In(i),
			key:      resolvableKey(t.In(i)),
			optional: arg.optional,
		}
		if arg.hasDefault {
			v, err := defaultValue(arg.def, p.typ)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %s of %s: %v", ErrInvalidDefault, p.name, d.owner, err)
			}
			p.def, p.hasDefault = v, true
		}
		params[i] = p
	}

	fn := d.ctor
	return &typeMeta{
		id:     d.id,
		owner:  d.owner,
		params: params,
		build: func(in []reflect.Value) (any, error) {
			out := fn.Call(in)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		},
	}, nil
}

func inspectStruct(d *declaration) (*typeMeta, error) {
	st := d.structType
	var params []parameter
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("inject")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		p := parameter{
			name:     name,
			typ:      f.Type,
			key:      resolvableKey(f.Type),
			optional: opts == "optional",
			field:    f.Index,
		}
		if raw, ok := f.Tag.Lookup("default"); ok {
			v, err := parseDefault(raw, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s of %s: %v", ErrInvalidDefault, f.Name, d.owner, err)
			}
			p.def, p.hasDefault = v, true
		}
		params = append(params, p)
	}

	pointer := d.pointer
	return &typeMeta{
		id:     d.id,
		owner:  d.owner,
		params: params,
		build: func(in []reflect.Value) (any, error) {
			v := reflect.New(st).Elem()
			for i, p := range params {
				v.FieldByIndex(p.field).Set(in[i])
			}
			if pointer {
				return v.Addr().Interface(), nil
			}
			return v.Interface(), nil
		},
	}, nil
}

// ── Type keys ─────────────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, the id under which
// declared types are registered and looked up during auto-wiring.
//
//	key := container.TypeKey((*Logger)(nil))  // "example.com/app.Logger"
//	c.Singleton(key, factory)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return typeKey(t)
}

// KeyOf is TypeKey for a type parameter: KeyOf[Logger]() works for interfaces
// without the nil-pointer trick.
func KeyOf[T any]() string {
	return typeKey(reflect.TypeFor[T]())
}

func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// resolvableKey returns the id a parameter of type t is auto-wired from, or
// "" when t is built-in (predeclared, unnamed or a named scalar).
func resolvableKey(t reflect.Type) string {
	d := t
	if d.Kind() == reflect.Ptr {
		d = d.Elem()
	}
	if d.Name() == "" || d.PkgPath() == "" {
		return ""
	}
	if d.Kind() != reflect.Struct && d.Kind() != reflect.Interface {
		return ""
	}
	return typeKey(t)
}

// ── Values ────────────────────────────────────────────────────────────────────

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Float64) && k != reflect.Uintptr
}

// valueOf converts v to a reflect.Value usable as an argument of type t.
func valueOf(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if nillable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), t)
}

// defaultValue is valueOf plus numeric conversion, so Param("n").WithDefault(5)
// fits an int64 parameter.
func defaultValue(v any, t reflect.Type) (reflect.Value, error) {
	if v != nil {
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(t) && numeric(rv.Kind()) && numeric(t.Kind()) {
			return convertNumber(rv, t)
		}
	}
	return valueOf(v, t)
}

// convertNumber converts rv to the numeric type t. Integer targets must hold
// the value exactly; float targets may round but not overflow.
func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := rv.Convert(t)
	if floating(t.Kind()) {
		if out.OverflowFloat(rv.Convert(float64Type).Float()) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", rv.Interface(), t)
		}
		return out, nil
	}
	if negative(rv) != negative(out) || !out.Convert(rv.Type()).Equal(rv) {
		return reflect.Value{}, fmt.Errorf("%v does not fit %s", rv.Interface(), t)
	}
	return out, nil
}

var float64Type = reflect.TypeOf(float64(0))

func floating(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func negative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	}
	return false
}

var durationType = reflect.TypeOf(time.Duration(0))

// parseDefault parses a `default:"..."` struct tag into a value of type t.
func parseDefault(raw string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(int64(d))
		return v, nil
	}
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("no tag default for %s", t)
	}
	return v, nil
}
