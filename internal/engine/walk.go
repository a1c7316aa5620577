package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/feed"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/diagnostic"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/settings"
	"github.com/instancio/instancio-sub017/utils"
)

// generate returns the value of n with the declared node type. An invalid
// value means the node is left out: ignored, cyclic, depth-limited or
// unresolved. inherited is the nullability granted by the parent container.
func (e *Engine) generate(ctx context.Context, n *node.Node, inherited bool) (reflect.Value, error) {
	return e.generateWith(ctx, n, inherited, nil)
}

// generateWith is generate with an optional preset value taken from a feed
// row. Directives on n still take precedence over the preset.
func (e *Engine) generateWith(ctx context.Context, n *node.Node, inherited bool, preset *reflect.Value) (reflect.Value, error) {
	res := e.req.Directives.Resolve(n)

	if res.Tie {
		e.diags.AddInfo(diagnostic.CodeSelectorTie,
			"ignore and value directives have the same specificity, ignore wins", "", n.Path())
	}

	if res.Ignored {
		e.trace(ctx, n, "ignored")
		return reflect.Value{}, nil
	}

	var (
		v   reflect.Value
		err error
	)

	switch {
	case res.Value != nil && res.Value.Action == directive.ActionSet:
		v, err = toNodeValue(n, reflect.ValueOf(res.Value.Value))

	case res.Value != nil && res.Value.Action == directive.ActionSupply:
		v, err = toNodeValue(n, reflect.ValueOf(res.Value.Supplier()))

	case preset != nil && (res.Value == nil || res.Value.Action == directive.ActionFeed):
		v = *preset

	case n.IsShortCircuit() && !generatesWhole(res.Value):
		if res.Value != nil && res.Value.Action == directive.ActionGenerate {
			e.diags.AddWarning(diagnostic.CodeSkippedDirective,
				"generator needs the children of a cyclic or depth-limited node",
				res.Value.String(), n.Path(), ErrSkippedDirective)
		}
		e.trace(ctx, n, "short-circuit")
		return reflect.Value{}, nil

	default:
		var g generator.Generator
		if res.Value != nil && res.Value.Action == directive.ActionGenerate {
			g = res.Value.Generator
		} else {
			g = e.req.Registry.Resolve(n, e.req.Settings)
		}

		if g == nil {
			e.unresolved(ctx, n)
			return reflect.Value{}, nil
		}

		if e.rollNull(n, g, res.Nullable || inherited) {
			e.trace(ctx, n, "null")
			return reflect.Zero(n.Type), nil
		}

		var row feed.Row
		if res.Value != nil && res.Value.Action == directive.ActionFeed {
			if row, err = e.nextRow(res.Value); err != nil {
				return reflect.Value{}, &NodeError{Path: n.Path(), Err: err}
			}
		}

		v, err = e.produce(ctx, n, g, res.Value, row)
	}

	if err != nil {
		return reflect.Value{}, wrap(n, err)
	}

	v, err = e.complete(n, v, res.Callbacks)
	if err != nil {
		return reflect.Value{}, wrap(n, err)
	}

	e.trace(ctx, n, "done")

	return v, nil
}

// generatesWhole reports a generate directive whose generator builds the
// value without the children of the node.
func generatesWhole(d *directive.Directive) bool {
	if d == nil || d.Action != directive.ActionGenerate {
		return false
	}
	_, ok := d.Generator.(generator.Populator)

	return !ok
}

// produce runs g for n. Populators are assembled from the children of n.
func (e *Engine) produce(
	ctx context.Context, n *node.Node, g generator.Generator, fd *directive.Directive, row feed.Row,
) (reflect.Value, error) {
	gc := &generator.Context{Random: e.req.Random, Settings: e.req.Settings, Node: n}

	p, ok := g.(generator.Populator)
	if !ok {
		raw, err := g.Generate(gc)
		if err != nil {
			return reflect.Value{}, err
		}
		return toNodeValue(n, reflect.ValueOf(raw))
	}

	hints, err := p.Hints(gc)
	if err != nil {
		return reflect.Value{}, err
	}

	var base reflect.Value

	switch {
	case generator.IsConstructor(g):
		base, err = e.construct(ctx, n)
	case n.Kind == node.KindStruct:
		base, err = e.populateStruct(ctx, n, fd, row)
	case n.Kind == node.KindSlice:
		base, err = e.populateSlice(ctx, n, hints)
	case n.Kind == node.KindArray:
		base, err = e.populateArray(ctx, n, hints)
	case n.Kind == node.KindMap:
		base, err = e.populateMap(ctx, n, hints)
	default:
		return reflect.Value{}, fmt.Errorf("%T cannot populate %s node", g, n.Kind)
	}

	if err != nil || !base.IsValid() {
		return reflect.Value{}, err
	}

	return toNodeValue(n, base)
}

func (e *Engine) populateStruct(ctx context.Context, n *node.Node, fd *directive.Directive, row feed.Row) (reflect.Value, error) {
	out := reflect.New(n.Target).Elem()

	var binding *feed.Binding
	if fd != nil {
		binding = e.binding(fd, n)
	}

	for _, child := range n.Children {
		var preset *reflect.Value

		if binding != nil {
			fv, ok, err := binding.Value(child.Field.Name, row)
			if err != nil {
				return reflect.Value{}, &NodeError{Path: child.Path(), Err: err}
			}
			if ok {
				preset = &fv
			}
		}

		v, err := e.generateWith(ctx, child, false, preset)
		if err != nil {
			return reflect.Value{}, err
		}

		if v.IsValid() {
			out.FieldByIndex(child.Field.Index).Set(v)
		}
	}

	return out, nil
}

// construct generates the constructor parameters and calls the constructor.
func (e *Engine) construct(ctx context.Context, n *node.Node) (reflect.Value, error) {
	args := make([]reflect.Value, len(n.Children))

	for i, child := range n.Children {
		v, err := e.generate(ctx, child, false)
		if err != nil {
			return reflect.Value{}, err
		}

		if !v.IsValid() {
			v = reflect.Zero(child.Type)
		}
		args[i] = v
	}

	out, err := n.Constructor.Call(args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("constructor %s: %w", n.Constructor.Name, err)
	}

	return out, nil
}

func (e *Engine) populateSlice(ctx context.Context, n *node.Node, hints generator.Hints) (reflect.Value, error) {
	elem := n.Children[0]
	out := reflect.MakeSlice(n.Target, 0, hints.Size)

	for range hints.Size {
		v, err := e.generate(ctx, elem, hints.NullableElements)
		if err != nil {
			return reflect.Value{}, err
		}

		if v.IsValid() {
			out = reflect.Append(out, v)
		}
	}

	if out.Len() == 0 && elem.IsShortCircuit() {
		return reflect.Zero(n.Target), nil
	}

	return out, nil
}

func (e *Engine) populateArray(ctx context.Context, n *node.Node, hints generator.Hints) (reflect.Value, error) {
	elem := n.Children[0]
	out := reflect.New(n.Target).Elem()

	for i := range n.Target.Len() {
		v, err := e.generate(ctx, elem, hints.NullableElements)
		if err != nil {
			return reflect.Value{}, err
		}

		if v.IsValid() {
			out.Index(i).Set(v)
		}
	}

	return out, nil
}

// populateMap generates keys first. A key already present is regenerated
// up to map.key.retries times before the entry is dropped.
func (e *Engine) populateMap(ctx context.Context, n *node.Node, hints generator.Hints) (reflect.Value, error) {
	keyNode, valueNode := utils.Unpack2(n.Children)
	out := reflect.MakeMapWithSize(n.Target, hints.Size)
	retries := e.req.Settings.Int(settings.MapKeyRetries)

	for range hints.Size {
		key, err := e.uniqueKey(ctx, keyNode, out, hints.NullableKeys, retries)
		if err != nil {
			return reflect.Value{}, err
		}

		if !key.IsValid() {
			continue
		}

		value, err := e.generate(ctx, valueNode, hints.NullableValues)
		if err != nil {
			return reflect.Value{}, err
		}

		if !value.IsValid() {
			if valueNode.IsShortCircuit() {
				continue
			}
			value = reflect.Zero(valueNode.Type)
		}

		out.SetMapIndex(key, value)
	}

	if out.Len() == 0 && (keyNode.IsShortCircuit() || valueNode.IsShortCircuit()) {
		return reflect.Zero(n.Target), nil
	}

	return out, nil
}

func (e *Engine) uniqueKey(
	ctx context.Context, keyNode *node.Node, m reflect.Value, nullable bool, retries int,
) (reflect.Value, error) {
	for range retries + 1 {
		key, err := e.generate(ctx, keyNode, nullable)
		if err != nil || !key.IsValid() {
			return reflect.Value{}, err
		}

		if !m.MapIndex(key).IsValid() {
			return key, nil
		}
	}

	e.diags.AddInfo(diagnostic.CodeMapKeyRetries,
		fmt.Sprintf("no unique key after %d retries, entry dropped", retries), "", keyNode.Path())

	return reflect.Value{}, nil
}

func (e *Engine) unresolved(ctx context.Context, n *node.Node) {
	switch n.Kind {
	case node.KindInterface:
		e.diags.AddWarning(diagnostic.CodeUnresolvedType,
			fmt.Sprintf("interface %s has no implementation, use a subtype directive or register one", n.Type),
			n.Type.String(), n.Path(), ErrUnresolvedType)
		e.trace(ctx, n, "unresolved")
	default:
		e.trace(ctx, n, "unsupported")
	}
}

func (e *Engine) nextRow(d *directive.Directive) (feed.Row, error) {
	c, ok := e.cursors[d]
	if !ok {
		c = feed.NewCursor(d.Feed, d.Access, e.req.FeedStart)
		e.cursors[d] = c
	}

	return c.Next(e.req.Random)
}

// binding matches the feed columns of d to the fields of n once per type and
// records columns no field takes.
func (e *Engine) binding(d *directive.Directive, n *node.Node) *feed.Binding {
	key := bindingKey{directive: d, typ: n.Target}
	if b, ok := e.bindings[key]; ok {
		return b
	}

	b := feed.Bind(n.Target, d.Feed.Columns())
	for _, col := range b.Unused {
		e.diags.AddInfo(diagnostic.CodeFeedColumn,
			fmt.Sprintf("column %q matches no field of %s", col, n.Target), d.String(), n.Path())
	}

	e.bindings[key] = b

	return b
}

func (e *Engine) trace(ctx context.Context, n *node.Node, state string) {
	if e.debug {
		e.log.DebugContext(ctx, "node "+state, "path", n.Path(), "kind", n.Kind.String())
	}
}

// wrap attaches the path of n unless err already carries a deeper one.
func wrap(n *node.Node, err error) error {
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}

	return &NodeError{Path: n.Path(), Err: err}
}
