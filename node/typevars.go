package node

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// TagName is the struct tag key holding type variable declarations.
const TagName = "instancio"

var (
	ErrUnboundTypeVariable = errors.New("unbound type variable")
	ErrTypeArgumentCount   = errors.New("too many type arguments")
	ErrInvalidTag          = errors.New("invalid instancio tag")
	ErrNotAssignable       = errors.New("type is not assignable")
)

// UnboundTypeVariableError reports type parameters of Type that have no
// type argument bound to them.
type UnboundTypeVariableError struct {
	Type    reflect.Type
	Params  []string
	Missing []string
}

func (e *UnboundTypeVariableError) Error() string {
	return fmt.Sprintf("%s: type %s declares type parameters [%s], %d type argument(s) missing for [%s]",
		ErrUnboundTypeVariable, typeName(e.Type),
		strings.Join(e.Params, ", "), len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *UnboundTypeVariableError) Unwrap() error {
	return ErrUnboundTypeVariable
}

// TypeParameterizer lets a type declare its type parameter order explicitly.
type TypeParameterizer interface {
	TypeParameters() []string
}

var typeParameterizer = reflect.TypeFor[TypeParameterizer]()

// fieldTag is the parsed form of an `instancio:"..."` tag.
//
//	instancio:"-"        field is not part of the model
//	instancio:"T"        interface positions of the field bind to T
//	instancio:"K,V"      ... to K and V, in depth-first order
//	instancio:"A=T,B=U"  nested type parameters A and B bind to outer T and U
type fieldTag struct {
	skip   bool
	vars   []string
	rebind map[string]string
	order  []string // rebind keys in declaration order
}

func parseTag(f reflect.StructField) (fieldTag, error) {
	var tag fieldTag

	raw, ok := f.Tag.Lookup(TagName)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return tag, nil
	}

	if raw == "-" {
		tag.skip = true
		return tag, nil
	}

	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)

		inner, outer, isRebind := strings.Cut(item, "=")
		inner, outer = strings.TrimSpace(inner), strings.TrimSpace(outer)

		switch {
		case !isIdent(inner) || (isRebind && !isIdent(outer)):
			return fieldTag{}, fmt.Errorf("%w: field %s: %q", ErrInvalidTag, f.Name, raw)
		case isRebind:
			if tag.rebind == nil {
				tag.rebind = map[string]string{}
			}
			tag.rebind[inner] = outer
			tag.order = append(tag.order, inner)
		default:
			tag.vars = append(tag.vars, inner)
		}
	}

	if len(tag.vars) > 0 && len(tag.rebind) > 0 {
		return fieldTag{}, fmt.Errorf("%w: field %s mixes variables and rebindings: %q", ErrInvalidTag, f.Name, raw)
	}

	return tag, nil
}

// referenced returns the outer variable names the tag refers to.
func (t fieldTag) referenced() []string {
	if len(t.vars) > 0 {
		return t.vars
	}

	out := make([]string, 0, len(t.order))
	for _, inner := range t.order {
		out = append(out, t.rebind[inner])
	}

	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// TypeParams returns the type parameters declared by t in order.
//
// Pointers and containers are looked through until a struct type is found.
// A struct that implements TypeParameterizer declares its own order, otherwise
// the distinct variable names referenced by the tags of its direct fields are
// returned in order of first appearance.
func TypeParams(t reflect.Type) []string {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
			continue
		case reflect.Map:
			if params := TypeParams(t.Key()); len(params) > 0 {
				return params
			}
			t = t.Elem()
			continue
		case reflect.Struct:
			return structParams(t)
		}

		return nil
	}

	return nil
}

func structParams(t reflect.Type) []string {
	switch {
	case t.Implements(typeParameterizer):
		return reflect.Zero(t).Interface().(TypeParameterizer).TypeParameters()
	case reflect.PointerTo(t).Implements(typeParameterizer):
		return reflect.New(t).Interface().(TypeParameterizer).TypeParameters()
	}

	var params []string

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag, err := parseTag(f)
		if err != nil {
			continue
		}

		for _, name := range tag.referenced() {
			if !slices.Contains(params, name) {
				params = append(params, name)
			}
		}
	}

	return params
}

// interfacePositions counts the positions in t a type variable can bind to:
// interface types reached through slices, arrays, maps and pointers to
// non-interface types. Map keys are counted before values.
func interfacePositions(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Interface:
		return 1
	case reflect.Slice, reflect.Array:
		return interfacePositions(t.Elem())
	case reflect.Map:
		return interfacePositions(t.Key()) + interfacePositions(t.Elem())
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Interface {
			return 0
		}
		return interfacePositions(t.Elem())
	default:
		return 0
	}
}

// bindParams restricts vars to the parameters of t and reports any that are
// not bound.
func bindParams(t reflect.Type, vars Vars) (Vars, error) {
	params := structParams(t)
	if len(params) == 0 {
		return nil, nil
	}

	bound := make(Vars, len(params))

	var missing []string
	for _, p := range params {
		v, ok := vars[p]
		if !ok {
			missing = append(missing, p)
			continue
		}
		bound[p] = v
	}

	if len(missing) > 0 {
		return nil, &UnboundTypeVariableError{Type: t, Params: params, Missing: missing}
	}

	return bound, nil
}

// rebind returns the variables visible through a field carrying A=T style
// rebindings. Names that are not rebound keep their outer binding.
func rebind(declaring reflect.Type, outer Vars, tag fieldTag) (Vars, error) {
	if len(tag.rebind) == 0 {
		return outer, nil
	}

	out := make(Vars, len(outer)+len(tag.rebind))
	for k, v := range outer {
		out[k] = v
	}

	var missing []string
	for _, inner := range tag.order {
		v, ok := outer[tag.rebind[inner]]
		if !ok {
			missing = append(missing, tag.rebind[inner])
			continue
		}
		out[inner] = v
	}

	if len(missing) > 0 {
		return nil, &UnboundTypeVariableError{Type: declaring, Params: structParams(declaring), Missing: missing}
	}

	return out, nil
}
