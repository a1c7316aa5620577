package engine

import (
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/primitive"
	"github.com/instancio/instancio-sub017/settings"
)

// toNodeValue converts v to the declared type of n: a value assignable to
// n.Type is used as is, anything else is converted to n.Target and wrapped
// in n.PtrDepth pointers.
func toNodeValue(n *node.Node, v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(n.Type), nil
	}

	if v.Type().AssignableTo(n.Type) {
		out := reflect.New(n.Type).Elem()
		out.Set(v)
		return out, nil
	}

	for v.Kind() == reflect.Pointer && v.Type() != n.Target {
		if v.IsNil() {
			return reflect.Zero(n.Type), nil
		}
		v = v.Elem()
	}

	base, err := convertTo(v, n.Target)
	if err != nil {
		return reflect.Value{}, err
	}

	for range n.PtrDepth {
		p := reflect.New(base.Type())
		p.Elem().Set(base)
		base = p
	}

	if !base.Type().AssignableTo(n.Type) {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", node.ErrNotAssignable, base.Type(), n.Type)
	}

	out := reflect.New(n.Type).Elem()
	out.Set(base)

	return out, nil
}

// convertTo converts between basic types of the same family only, so an
// int never turns into a one-rune string.
func convertTo(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	}

	from, to := primitive.Underlying(v.Type()), primitive.Underlying(t)

	switch {
	case from != 0 && to != 0:
		if from == to || (from.IsNumber() && to.IsNumber() && from.IsComplex() == to.IsComplex()) {
			return v.Convert(t), nil
		}
	case v.Type().ConvertibleTo(t):
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s to %s", node.ErrNotAssignable, v.Type(), t)
}

// rollNull decides whether a nillable node is left nil. The node is
// nullable when a directive or its parent says so, when the family setting
// is on, or when its generator is nullable.
func (e *Engine) rollNull(n *node.Node, g generator.Generator, flagged bool) bool {
	if !n.IsNillable() {
		return false
	}

	nullable := flagged || e.familyNullable(n)
	if gn, ok := g.(generator.Nullability); ok && gn.IsNullable() {
		nullable = true
	}

	if !nullable {
		return false
	}

	return e.req.Random.TrueOrFalse(e.req.Settings.Float64(settings.NullableProbability))
}

func (e *Engine) familyNullable(n *node.Node) bool {
	s := e.req.Settings

	switch {
	case n.Type.Kind() == reflect.Slice:
		return s.Bool(settings.CollectionNullable)
	case n.Type.Kind() == reflect.Map:
		return s.Bool(settings.MapNullable)
	case n.Type.Kind() != reflect.Pointer:
		return false
	case n.Kind == node.KindArray:
		return s.Bool(settings.ArrayNullable) || s.Bool(settings.PointerNullable)
	case primitive.Underlying(n.Target) == primitive.KindString:
		return s.Bool(settings.StringNullable) || s.Bool(settings.PointerNullable)
	default:
		return s.Bool(settings.PointerNullable)
	}
}

// complete runs the on-complete callbacks of a node on its finished value.
// Callbacks get a pointer to the target value; nil values are skipped.
func (e *Engine) complete(n *node.Node, v reflect.Value, callbacks []*directive.Directive) (reflect.Value, error) {
	if len(callbacks) == 0 || !v.IsValid() {
		return v, nil
	}

	ptr, shared := targetPointer(n, v)
	if !ptr.IsValid() {
		return v, nil
	}

	for _, cb := range callbacks {
		if err := cb.Callback(ptr.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("on-complete callback %s: %w", cb, err)
		}
	}

	if shared {
		return v, nil
	}

	return toNodeValue(n, ptr.Elem())
}

// targetPointer returns a *Target for v. shared is true when the pointer
// aliases v, so callback changes are already visible through v.
func targetPointer(n *node.Node, v reflect.Value) (reflect.Value, bool) {
	want := reflect.PointerTo(n.Target)

	for {
		switch {
		case v.Type() == want:
			if v.IsNil() {
				return reflect.Value{}, false
			}
			return v, true
		case v.Type() == n.Target:
			p := reflect.New(n.Target)
			p.Elem().Set(v)
			return p, false
		case v.Kind() == reflect.Interface, v.Kind() == reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		default:
			return reflect.Value{}, false
		}
	}
}
