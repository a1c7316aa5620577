// Package constraint derives generators from validation struct tags.
//
// TagBridge reads the validate tag of a field node, in the comma separated
// rule format used by common Go validators:
//
//	Name  string   `validate:"min=2,max=20"`
//	Code  string   `validate:"len=6"`
//	Level int      `validate:"min=1,max=5"`
//	Tier  string   `validate:"oneof=gold silver bronze"`
//	Email string   `validate:"email"`
//	Tags  []string `validate:"min=1,max=3"`
//
// Rules the bridge does not know are ignored, so tags written for a real
// validator can be shared with the generator.
package constraint

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/primitive"
)

// TagName is the struct tag read by TagBridge.
const TagName = "validate"

var ErrInvalidRule = errors.New("invalid validation rule")

// Rules is the parsed form of a validate tag.
type Rules struct {
	Min, Max *float64
	Len      *int
	OneOf    []string
	Email    bool
	Required bool
}

// IsZero reports whether no supported rule was found.
func (r Rules) IsZero() bool {
	return r.Min == nil && r.Max == nil && r.Len == nil && r.OneOf == nil && !r.Email && !r.Required
}

// ParseRules parses a validate tag value. Unknown rules are skipped.
func ParseRules(tag string) (Rules, error) {
	var r Rules

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, arg, _ := strings.Cut(part, "=")

		switch name {
		case "min", "gte":
			v, err := parseNumber(name, arg)
			if err != nil {
				return Rules{}, err
			}
			r.Min = &v
		case "max", "lte":
			v, err := parseNumber(name, arg)
			if err != nil {
				return Rules{}, err
			}
			r.Max = &v
		case "len":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return Rules{}, fmt.Errorf("%w: len=%q", ErrInvalidRule, arg)
			}
			r.Len = &n
		case "oneof":
			r.OneOf = strings.Fields(arg)
			if len(r.OneOf) == 0 {
				return Rules{}, fmt.Errorf("%w: oneof without values", ErrInvalidRule)
			}
		case "email":
			r.Email = true
		case "required":
			r.Required = true
		}
	}

	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return Rules{}, fmt.Errorf("%w: min %v greater than max %v", ErrInvalidRule, *r.Min, *r.Max)
	}

	return r, nil
}

func parseNumber(name, arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidRule, name, arg)
	}

	return v, nil
}

// TagBridge implements generator.ConstraintBridge over validate tags.
type TagBridge struct{}

var _ generator.ConstraintBridge = TagBridge{}

// ConstrainedGenerator returns a generator honoring the validate tag of n,
// or nil when n has no usable rules. A malformed tag yields a generator
// that fails with ErrInvalidRule, so the error surfaces with the node path.
func (TagBridge) ConstrainedGenerator(n *node.Node) generator.Generator {
	if n.Field == nil {
		return nil
	}

	tag, ok := n.Field.Tag.Lookup(TagName)
	if !ok {
		return nil
	}

	rules, err := ParseRules(tag)
	if err != nil {
		return fail(fmt.Errorf("field %s: %w", n.Field.Name, err))
	}

	if rules.IsZero() {
		return nil
	}

	return forNode(n, rules)
}

func forNode(n *node.Node, r Rules) generator.Generator {
	if r.OneOf != nil {
		return oneOf(n.Target, r.OneOf)
	}

	switch n.Kind {
	case node.KindSlice:
		if lo, hi, ok := sizeRange(r); ok {
			return generator.Slice().Range(lo, hi)
		}
		return nil
	case node.KindMap:
		if lo, hi, ok := sizeRange(r); ok {
			return generator.Map().Range(lo, hi)
		}
		return nil
	case node.KindLeaf:
	default:
		return nil
	}

	kind := primitive.Underlying(n.Target)

	switch {
	case kind == primitive.KindString && r.Email:
		return email{}
	case kind == primitive.KindString:
		if lo, hi, ok := sizeRange(r); ok {
			return generator.String().Length(lo, hi)
		}
	case kind.IsInteger():
		if r.Min != nil || r.Max != nil {
			return integerRange{kind: kind, min: r.Min, max: r.Max}
		}
	case kind.IsFloat():
		if r.Min != nil || r.Max != nil {
			return floatRange{min: r.Min, max: r.Max}
		}
	}

	return nil
}

// sizeRange turns len/min/max into an inclusive length range. A missing max
// is min plus the default spread of the engine settings.
func sizeRange(r Rules) (int, int, bool) {
	if r.Len != nil {
		return *r.Len, *r.Len, true
	}

	if r.Min == nil && r.Max == nil {
		return 0, 0, false
	}

	lo, hi := 0, 0
	if r.Min != nil {
		lo = int(*r.Min)
	}

	switch {
	case r.Max != nil:
		hi = int(*r.Max)
	default:
		hi = lo + defaultSpread
	}

	return lo, hi, true
}

const defaultSpread = 8

func fail(err error) generator.Generator {
	return generator.GeneratorFunc(func(*generator.Context) (any, error) {
		return nil, err
	})
}

// oneOf picks one of the tag values, converted to t.
func oneOf(t reflect.Type, raw []string) generator.Generator {
	values := make([]any, 0, len(raw))

	for _, s := range raw {
		v, err := parseValue(t, s)
		if err != nil {
			return fail(err)
		}
		values = append(values, v)
	}

	return generator.OneOf(values...)
}

func parseValue(t reflect.Type, s string) (any, error) {
	out := reflect.New(t).Elem()
	kind := primitive.Underlying(t)

	var err error

	switch {
	case kind == primitive.KindString:
		out.SetString(s)
	case kind.IsSigned():
		var v int64
		if v, err = strconv.ParseInt(s, 10, kind.Bits()); err == nil {
			out.SetInt(v)
		}
	case kind.IsUnsigned():
		var v uint64
		if v, err = strconv.ParseUint(s, 10, kind.Bits()); err == nil {
			out.SetUint(v)
		}
	case kind.IsFloat():
		var v float64
		if v, err = strconv.ParseFloat(s, kind.Bits()); err == nil {
			out.SetFloat(v)
		}
	default:
		return nil, fmt.Errorf("%w: oneof is not supported for %s", ErrInvalidRule, t)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: oneof value %q for %s: %w", ErrInvalidRule, s, t, err)
	}

	return out.Interface(), nil
}
