// Package node builds the structural model of a target type.
//
// A model is a tree of Nodes rooted at the requested type. Struct nodes have
// one child per exported field, containers have element (or key and value)
// children and types built through a registered constructor have one child
// per constructor parameter. The tree is built once per creation request and
// is not modified afterwards.
package node

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Vars maps type variable names to the types bound to them.
type Vars map[string]reflect.Type

// Node is one position in the structural graph of a target type.
type Node struct {
	Type     reflect.Type // declared type, may be a pointer or an interface
	Target   reflect.Type // resolved type with pointers removed and substitutions applied
	PtrDepth int
	Role     Role
	Kind     Kind

	Field     *reflect.StructField // declaring member, RoleField only
	Declaring reflect.Type         // struct type declaring Field
	Component int                  // parameter index, RoleComponent only

	// Constructor is set when Target is built by a registered constructor.
	// Children are then the constructor parameters.
	Constructor *Constructor
	// TypeVar is the name of the type variable this position was bound from.
	TypeVar string
	Vars    Vars

	Parent   *Node
	Children []*Node

	Depth        int
	Cyclic       bool
	DepthLimited bool
}

// IsNillable returns true when the zero value of the declared type is nil.
func (n *Node) IsNillable() bool {
	switch n.Type.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// IsShortCircuit returns true for nodes that are not generated because of a
// cycle or the depth limit.
func (n *Node) IsShortCircuit() bool {
	return n.Cyclic || n.DepthLimited
}

// Name returns the local name of the node within its parent.
func (n *Node) Name() string {
	switch n.Role {
	case RoleRoot:
		if n.Target.Name() != "" {
			return n.Target.Name()
		}
		return typeName(n.Target)
	case RoleField:
		return n.Field.Name
	case RoleElement:
		return "[]"
	case RoleMapKey:
		return "[key]"
	case RoleMapValue:
		return "[value]"
	case RoleComponent:
		return "(" + strconv.Itoa(n.Component) + ")"
	default:
		return "?"
	}
}

// Path renders the chain from the root to n, e.g. "Order.Items[].Product.Name".
func (n *Node) Path() string {
	if n.Parent == nil {
		return n.Name()
	}

	if n.Role == RoleField {
		return n.Parent.Path() + "." + n.Name()
	}

	return n.Parent.Path() + n.Name()
}

// RelPath renders the chain below the root, e.g. "Items[].Product.Name".
// It is empty for the root.
func (n *Node) RelPath() string {
	if n.Parent == nil {
		return ""
	}

	parent := n.Parent.RelPath()
	if n.Role == RoleField && parent != "" {
		return parent + "." + n.Name()
	}

	return parent + n.Name()
}

// Ancestors returns the chain from the root down to the parent of n.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// Child returns the field child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Role == RoleField && c.Field.Name == name {
			return c, true
		}
	}

	return nil, false
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%s %s)", n.Path(), n.Kind, typeName(n.Type))
}

// Walk visits n and its descendants depth-first. Returning false from fn skips
// the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Dump writes an indented rendering of the tree rooted at n.
func Dump(w io.Writer, n *Node) error {
	var err error

	Walk(n, func(c *Node) bool {
		if err != nil {
			return false
		}

		var flags []string
		if c.Cyclic {
			flags = append(flags, "cyclic")
		}
		if c.DepthLimited {
			flags = append(flags, "depth-limited")
		}
		if c.TypeVar != "" {
			flags = append(flags, "var="+c.TypeVar)
		}
		if c.Constructor != nil {
			flags = append(flags, "ctor="+c.Constructor.Name)
		}

		line := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", c.Depth), c.Name(), typeName(c.Type), c.Kind)
		if c.Target != c.Type && c.Target != nil {
			line += " -> " + typeName(c.Target)
		}
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ",") + "]"
		}

		_, err = fmt.Fprintln(w, line)

		return true
	})

	return err
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
