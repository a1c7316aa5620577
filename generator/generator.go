// Package generator produces values for model nodes.
//
// A Generator returns the value for one node. Built-in generators cover
// primitive kinds, time values and UUIDs; container and struct generators
// implement Populator and leave their children to the engine. Specs such as
// String, Int and Slice are configurable generators that can be bound to
// nodes with a generate directive. A Registry picks the default generator
// for a node.
package generator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/random"
	"github.com/instancio/instancio-sub017/settings"
)

var (
	ErrInvalidSpec = errors.New("invalid generator spec")
	ErrEnumValues  = errors.New("invalid enum values")
)

// Context is passed to generators on every call.
type Context struct {
	Random   random.Random
	Settings *settings.Settings
	Node     *node.Node
}

// Generator produces the value of a node.
type Generator interface {
	Generate(c *Context) (any, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(c *Context) (any, error)

func (f GeneratorFunc) Generate(c *Context) (any, error) {
	return f(c)
}

// Populator is implemented by generators whose node children are generated
// and assembled by the engine: containers, structs and constructed types.
// Generate is not called for populators.
type Populator interface {
	Generator
	Hints(c *Context) (Hints, error)
}

// Hints tell the engine how to populate a node.
type Hints struct {
	// Size is the number of elements or entries to generate. It is ignored
	// for structs and arrays.
	Size int

	NullableElements bool
	NullableKeys     bool
	NullableValues   bool
}

// Nullability is implemented by generators that may produce nil.
type Nullability interface {
	IsNullable() bool
}

// ConstraintBridge derives generators from declarative constraints on a
// node, such as validation struct tags. It returns nil for nodes it has
// nothing to say about.
type ConstraintBridge interface {
	ConstrainedGenerator(n *node.Node) Generator
}

// Provider contributes generators for nodes it matches.
type Provider struct {
	Name    string
	Match   func(n *node.Node) bool
	Factory func(n *node.Node) Generator

	// Types are generated whole by the provider. Nodes of these types are
	// leaves: their fields and elements are not expanded.
	Types []reflect.Type
}

func (p Provider) validate() error {
	if p.Match == nil || p.Factory == nil {
		return fmt.Errorf("%w: provider %q must have Match and Factory", ErrInvalidSpec, p.Name)
	}

	return nil
}

// ProviderFor returns a provider that matches every node of type T.
// Unless g is a Populator, nodes of type T are not expanded.
func ProviderFor[T any](name string, g Generator) Provider {
	typ := reflect.TypeFor[T]()

	p := Provider{
		Name:    name,
		Match:   func(n *node.Node) bool { return n.Target == typ },
		Factory: func(*node.Node) Generator { return g },
	}

	// Populators assemble the value from the children of the node.
	if _, ok := g.(Populator); !ok {
		p.Types = []reflect.Type{typ}
	}

	return p
}

// Func returns a generator calling fn with the request random source.
func Func(fn func(r random.Random) any) Generator {
	return GeneratorFunc(func(c *Context) (any, error) {
		return fn(c.Random), nil
	})
}

// Value returns a generator that always produces v.
func Value(v any) Generator {
	return GeneratorFunc(func(*Context) (any, error) {
		return v, nil
	})
}

// zero returns the zero value of the node target.
func zero(c *Context) any {
	return reflect.Zero(c.Node.Target).Interface()
}
