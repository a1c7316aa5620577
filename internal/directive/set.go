package directive

import (
	"reflect"

	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/selector"
)

// Set holds the directives of one creation request in registration order.
type Set struct {
	directives []*Directive
}

func NewSet(directives ...*Directive) *Set {
	s := &Set{}
	for _, d := range directives {
		s.Add(d)
	}

	return s
}

// Add appends d. Later directives win ties over earlier ones.
func (s *Set) Add(d *Directive) {
	d.order = len(s.directives)
	s.directives = append(s.directives, d)
}

// Len returns the number of directives.
func (s *Set) Len() int {
	return len(s.directives)
}

// Resolution is the outcome of matching all directives against one node.
type Resolution struct {
	// Value is the winning set, supply, generate or feed directive, if any.
	Value *Directive
	// Ignored is true when an ignore directive suppresses the node.
	Ignored bool
	// Tie is true when an ignore directive and the winning value directive
	// have the same specificity. The ignore directive wins.
	Tie bool
	// Nullable is true when any nullable directive matches.
	Nullable bool
	// Callbacks are the matching on-complete directives in registration order.
	Callbacks []*Directive
}

// Resolve matches every directive against n and applies precedence.
func (s *Set) Resolve(n *node.Node) Resolution {
	var (
		res       Resolution
		valueSpec selector.Specificity
		ignore    selector.Specificity
	)

	for _, d := range s.directives {
		if d.Action == ActionSubtype {
			continue
		}

		spec, ok := d.Selector.Match(n)
		if !ok {
			continue
		}
		d.used = true

		switch {
		case d.Action.IsValue():
			if spec >= valueSpec {
				res.Value, valueSpec = d, spec
			}
		case d.Action == ActionIgnore:
			ignore = max(ignore, spec)
		case d.Action == ActionNullable:
			res.Nullable = true
		case d.Action == ActionOnComplete:
			res.Callbacks = append(res.Callbacks, d)
		}
	}

	if ignore != selector.SpecNone {
		switch {
		case res.Value == nil || ignore > valueSpec:
			res.Ignored, res.Value = true, nil
		case ignore == valueSpec:
			res.Ignored, res.Tie, res.Value = true, true, nil
		}
	}

	return res
}

// Subtype returns the type of the winning subtype directive for n, or nil.
// It is used as the node.Config Subtype hook.
func (s *Set) Subtype(n *node.Node) reflect.Type {
	var (
		best *Directive
		spec selector.Specificity
	)

	for _, d := range s.directives {
		if d.Action != ActionSubtype {
			continue
		}

		sp, ok := d.Selector.Match(n)
		if !ok {
			continue
		}
		d.used = true

		if sp >= spec {
			best, spec = d, sp
		}
	}

	if best == nil {
		return nil
	}

	return best.Subtype
}

// Unused returns the directives whose selectors matched no node.
func (s *Set) Unused() []*Directive {
	var out []*Directive
	for _, d := range s.directives {
		if !d.used {
			out = append(out, d)
		}
	}

	return out
}

// Directives returns the directives in registration order.
func (s *Set) Directives() []*Directive {
	return s.directives
}

// MarkUsed matches every directive against the whole tree rooted at root,
// so selectors count as used even for nodes the walk never reaches.
func (s *Set) MarkUsed(root *node.Node) {
	node.Walk(root, func(n *node.Node) bool {
		for _, d := range s.directives {
			if d.used || d.Action == ActionSubtype {
				continue
			}
			if _, ok := d.Selector.Match(n); ok {
				d.used = true
			}
		}
		return true
	})
}
