package feed

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/instancio/instancio-sub017/internal/match"
	"github.com/instancio/instancio-sub017/primitive"
)

// TagName is the struct tag naming the feed column of a field.
const TagName = "feed"

// Binding maps exported fields of a struct type to feed columns.
type Binding struct {
	Type     reflect.Type
	Columns  map[string]string // field name -> column
	Unused   []string          // columns matched to no field
	Unfilled []string          // exported fields without a column
}

// Bind matches columns to the exported fields of the struct type t. A
// column is used for at most one field.
func Bind(t reflect.Type, columns []string) *Binding {
	b := &Binding{Type: t, Columns: map[string]string{}}

	taken := map[string]bool{}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		col, ok := matchColumn(columns, f, taken)
		if !ok {
			b.Unfilled = append(b.Unfilled, f.Name)
			continue
		}

		b.Columns[f.Name] = col
		taken[col] = true
	}

	for _, col := range columns {
		if !taken[col] {
			b.Unused = append(b.Unused, col)
		}
	}

	return b
}

// matchColumn tries: `feed:"col"`, json tag, exact name, case-insensitive
// name, normalized identifier.
func matchColumn(columns []string, f reflect.StructField, taken map[string]bool) (string, bool) {
	free := func(pred func(col string) bool) (string, bool) {
		for _, col := range columns {
			if !taken[col] && pred(col) {
				return col, true
			}
		}
		return "", false
	}

	// 1) feed tag
	if tag := f.Tag.Get(TagName); tag != "" {
		if tag == "-" {
			return "", false
		}
		return free(func(col string) bool { return col == tag })
	}

	// 2) json tag
	if name := jsonTagName(f); name != "" {
		if col, ok := free(func(col string) bool { return col == name }); ok {
			return col, true
		}
	}

	// 3) exact name
	if col, ok := free(func(col string) bool { return col == f.Name }); ok {
		return col, true
	}

	// 4) case-insensitive
	if col, ok := free(func(col string) bool { return strings.EqualFold(col, f.Name) }); ok {
		return col, true
	}

	// 5) normalized
	norm := match.NormalizeIdent(f.Name)

	return free(func(col string) bool { return match.NormalizeIdent(col) == norm })
}

func jsonTagName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")

	return name
}

// Value converts the raw column value for field into a value of the field
// type. A nil raw value, or an empty string for a non-string field, yields
// the zero value.
func (b *Binding) Value(field string, row Row) (reflect.Value, bool, error) {
	col, ok := b.Columns[field]
	if !ok {
		return reflect.Value{}, false, nil
	}

	raw, ok := row[col]
	if !ok {
		return reflect.Value{}, false, nil
	}

	f, _ := b.Type.FieldByName(field)

	v, err := Convert(raw, f.Type)
	if err != nil {
		return reflect.Value{}, false, fmt.Errorf("column %q: %w", col, err)
	}

	return v, true, nil
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// Convert turns a raw feed value into a value of type t.
func Convert(raw any, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	if raw == nil {
		return out, nil
	}

	if s, ok := raw.(string); ok {
		if err := parseString(s, out); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: cannot convert %q to %s: %w", ErrFormat, s, t, err)
		}
		return out, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		out.Set(rv)
		return out, nil
	}

	// decoded JSON or YAML values are re-encoded and decoded into t
	data, err := yaml.Marshal(raw)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if err := yaml.Unmarshal(data, out.Addr().Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: cannot convert %v to %s: %w", ErrFormat, raw, t, err)
	}

	return out, nil
}

func parseString(s string, out reflect.Value) error {
	t := out.Type()

	if t.Kind() == reflect.Pointer {
		if s == "" {
			return nil
		}

		elem := reflect.New(t.Elem())
		if err := parseString(s, elem.Elem()); err != nil {
			return err
		}
		out.Set(elem)

		return nil
	}

	switch {
	case t == timeType:
		if s == "" {
			return nil
		}
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		out.Set(reflect.ValueOf(v))
		return nil

	case t == durationType:
		if s == "" {
			return nil
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		out.SetInt(int64(v))
		return nil
	}

	kind := primitive.Underlying(t)
	if kind == primitive.KindString {
		out.SetString(s)
		return nil
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	switch {
	case kind.IsSigned():
		v, err := strconv.ParseInt(s, 10, kind.Bits())
		if err != nil {
			return err
		}
		out.SetInt(v)
	case kind.IsUnsigned():
		v, err := strconv.ParseUint(s, 10, kind.Bits())
		if err != nil {
			return err
		}
		out.SetUint(v)
	case kind.IsFloat():
		v, err := strconv.ParseFloat(s, kind.Bits())
		if err != nil {
			return err
		}
		out.SetFloat(v)
	case kind.IsComplex():
		v, err := strconv.ParseComplex(s, kind.Bits())
		if err != nil {
			return err
		}
		out.SetComplex(v)
	case kind == primitive.KindBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		out.SetBool(v)
	default:
		// structured values embedded in a cell, e.g. a JSON list
		return yaml.Unmarshal([]byte(s), out.Addr().Interface())
	}

	return nil
}
