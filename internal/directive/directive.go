// Package directive resolves which caller directives apply to a node.
//
// Directives pair a compiled selector with an action. When several value
// directives match a node, the one with the highest selector specificity
// wins and ties go to the directive registered last. Ignore directives
// suppress a node unless the winning value directive is strictly more
// specific. Nullable and on-complete directives accumulate.
package directive

//go:generate go tool stringer -type=Action -trimprefix=Action -output=action_string.go

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/feed"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/selector"
)

var ErrUnusedSelector = errors.New("selector did not match any node")

// Action is what a directive does to the nodes it selects.
type Action int

const (
	ActionSet        Action = iota // assign a literal value
	ActionSupply                   // call a supplier per node
	ActionGenerate                 // use a generator
	ActionIgnore                   // leave the zero value
	ActionNullable                 // allow nil
	ActionOnComplete               // callback after the node is assembled
	ActionSubtype                  // substitute a concrete type for an interface
	ActionFeed                     // populate struct fields from feed rows
)

// IsValue returns true for actions that determine the value of a node.
func (a Action) IsValue() bool {
	switch a {
	case ActionSet, ActionSupply, ActionGenerate, ActionFeed:
		return true
	default:
		return false
	}
}

// Directive is a selector bound to an action.
type Directive struct {
	Selector *selector.Compiled
	Action   Action

	Value     any                 // ActionSet
	Supplier  func() any          // ActionSupply
	Generator generator.Generator // ActionGenerate
	Callback  func(ptr any) error // ActionOnComplete, receives a pointer to the value
	Subtype   reflect.Type        // ActionSubtype
	Feed      feed.Feed           // ActionFeed
	Access    feed.Access         // ActionFeed

	order int
	used  bool
}

// Order returns the registration index of d within its Set.
func (d *Directive) Order() int {
	return d.order
}

// Used reports whether the selector of d matched at least one node.
func (d *Directive) Used() bool {
	return d.used
}

func (d *Directive) String() string {
	return fmt.Sprintf("%s(%s)", d.Action, d.Selector)
}

// New compiles sel and returns a directive for action.
func New(sel *selector.Selector, action Action) (*Directive, error) {
	c, err := selector.Compile(sel)
	if err != nil {
		return nil, err
	}

	return &Directive{Selector: c, Action: action}, nil
}
