package node

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/instancio/instancio-sub017/primitive"
)

var ErrNilType = errors.New("nil type")

// Config controls how a Builder resolves types.
type Config struct {
	// MaxDepth is the deepest level that is expanded. Nodes below it are
	// created but marked DepthLimited.
	MaxDepth int

	// Implementations are concrete types considered for interface nodes.
	// An interface with exactly one implementation among them is resolved
	// to it. Empty interfaces are never resolved this way.
	Implementations []reflect.Type

	// Constructors are keyed by the type they build, pointers removed.
	Constructors map[reflect.Type]*Constructor

	// Subtype returns the concrete type to use for an interface node, or nil.
	// It is called before Implementations are consulted.
	Subtype func(n *Node) reflect.Type

	// LeafTypes reports types that are generated whole and never expanded.
	LeafTypes func(t reflect.Type) bool
}

// DefaultConfig returns the default builder configuration.
func DefaultConfig() Config {
	return Config{MaxDepth: 8}
}

// Builder turns a reflect.Type into a node tree.
type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build creates the model of t. typeArgs bind positionally to the type
// parameters declared by t (see TypeParams).
func (b *Builder) Build(t reflect.Type, typeArgs ...reflect.Type) (*Node, error) {
	if t == nil {
		return nil, ErrNilType
	}

	params := TypeParams(t)
	if len(typeArgs) > len(params) {
		return nil, fmt.Errorf("%w: %s declares %d type parameter(s), got %d",
			ErrTypeArgumentCount, typeName(t), len(params), len(typeArgs))
	}

	vars := make(Vars, len(params))
	for i, arg := range typeArgs {
		if arg == nil {
			return nil, fmt.Errorf("%w: type argument %d of %s", ErrNilType, i, typeName(t))
		}
		vars[params[i]] = arg
	}

	if len(typeArgs) < len(params) {
		return nil, &UnboundTypeVariableError{Type: t, Params: params, Missing: params[len(typeArgs):]}
	}

	root := &Node{
		Type:      t,
		Role:      RoleRoot,
		Component: -1,
		Vars:      vars,
	}

	if err := b.build(root, nil); err != nil {
		return nil, err
	}

	return root, nil
}

// build resolves n and expands its children. queue holds the type variable
// names still to be bound to interface positions of the enclosing field.
func (b *Builder) build(n *Node, queue *[]string) error {
	if err := b.resolve(n, queue); err != nil {
		return err
	}

	if n.Kind == KindStruct && hasAncestorTarget(n) {
		n.Cyclic = true
		return nil
	}

	if n.Depth > b.cfg.MaxDepth {
		n.DepthLimited = true
		return nil
	}

	switch n.Kind {
	case KindStruct:
		vars, err := bindParams(n.Target, n.Vars)
		if err != nil {
			return err
		}
		n.Vars = vars

		if n.Constructor != nil {
			return b.components(n)
		}
		return b.fields(n)

	case KindSlice, KindArray:
		return b.child(n, RoleElement, n.Target.Elem(), queue)

	case KindMap:
		if err := b.child(n, RoleMapKey, n.Target.Key(), queue); err != nil {
			return err
		}
		return b.child(n, RoleMapValue, n.Target.Elem(), queue)
	}

	return nil
}

func (b *Builder) resolve(n *Node, queue *[]string) error {
	t := n.Type

	if t.Kind() == reflect.Interface {
		sub, err := b.substitute(n, queue)
		if err != nil {
			return err
		}
		if sub != nil {
			t = sub
		}
	}

	n.PtrDepth, n.Target = ptrDepthAndBase(t)
	n.Kind = b.classify(n.Target)

	if n.Kind == KindStruct {
		n.Constructor = b.cfg.Constructors[n.Target]
	}

	return nil
}

// substitute picks the concrete type for an interface node: a bound type
// variable, then the Subtype hook, then a single known implementation.
func (b *Builder) substitute(n *Node, queue *[]string) (reflect.Type, error) {
	iface := n.Type

	if queue != nil && len(*queue) > 0 {
		name := (*queue)[0]
		*queue = (*queue)[1:]

		bound, ok := n.Vars[name]
		if !ok {
			return nil, &UnboundTypeVariableError{Type: n.Declaring, Missing: []string{name}}
		}
		n.TypeVar = name

		return assignableTo(bound, iface)
	}

	n.Target = iface
	if b.cfg.Subtype != nil {
		if sub := b.cfg.Subtype(n); sub != nil {
			return assignableTo(sub, iface)
		}
	}

	return b.implementation(iface), nil
}

func (b *Builder) implementation(iface reflect.Type) reflect.Type {
	if iface.NumMethod() == 0 {
		return nil
	}

	var found reflect.Type

	for _, impl := range b.cfg.Implementations {
		cand, err := assignableTo(impl, iface)
		if err != nil {
			continue
		}

		if found != nil && found != cand {
			return nil
		}
		found = cand
	}

	return found
}

// assignableTo returns t, or a pointer to t, whichever can be stored in iface.
func assignableTo(t, iface reflect.Type) (reflect.Type, error) {
	switch {
	case t.AssignableTo(iface):
		return t, nil
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).AssignableTo(iface):
		return reflect.PointerTo(t), nil
	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrNotAssignable, typeName(t), typeName(iface))
	}
}

func (b *Builder) classify(t reflect.Type) Kind {
	if b.cfg.LeafTypes != nil && b.cfg.LeafTypes(t) {
		return KindLeaf
	}

	if primitive.FromReflectType(t) != 0 {
		return KindLeaf
	}

	switch t.Kind() {
	case reflect.Struct:
		return KindStruct
	case reflect.Slice:
		return KindSlice
	case reflect.Array:
		return KindArray
	case reflect.Map:
		return KindMap
	case reflect.Interface:
		return KindInterface
	default:
		return KindUnsupported
	}
}

func (b *Builder) fields(n *Node) error {
	t := n.Target

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag, err := parseTag(f)
		if err != nil {
			return fmt.Errorf("%s: %w", typeName(t), err)
		}
		if tag.skip {
			continue
		}

		vars, err := rebind(t, n.Vars, tag)
		if err != nil {
			return err
		}

		var queue []string
		if len(tag.vars) > 0 {
			if positions := interfacePositions(f.Type); positions < len(tag.vars) {
				return fmt.Errorf("%w: %s.%s lists %d type variable(s) but has %d interface position(s)",
					ErrInvalidTag, typeName(t), f.Name, len(tag.vars), positions)
			}
			queue = slices.Clone(tag.vars)
		}

		child := &Node{
			Type:      f.Type,
			Role:      RoleField,
			Field:     &f,
			Declaring: t,
			Component: -1,
			Vars:      vars,
			Parent:    n,
			Depth:     n.Depth + 1,
		}

		if err := b.build(child, &queue); err != nil {
			return err
		}

		n.Children = append(n.Children, child)
	}

	return nil
}

func (b *Builder) components(n *Node) error {
	for i, param := range n.Constructor.Params {
		child := &Node{
			Type:      param,
			Role:      RoleComponent,
			Component: i,
			Vars:      n.Vars,
			Parent:    n,
			Depth:     n.Depth + 1,
		}

		if err := b.build(child, nil); err != nil {
			return err
		}

		n.Children = append(n.Children, child)
	}

	return nil
}

func (b *Builder) child(n *Node, role Role, t reflect.Type, queue *[]string) error {
	child := &Node{
		Type:      t,
		Role:      role,
		Component: -1,
		Vars:      n.Vars,
		Parent:    n,
		Depth:     n.Depth + 1,
	}

	if err := b.build(child, queue); err != nil {
		return err
	}

	n.Children = append(n.Children, child)

	return nil
}

// hasAncestorTarget reports whether a struct ancestor of n resolves to the
// same type.
func hasAncestorTarget(n *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindStruct && p.Target == n.Target {
			return true
		}
	}

	return false
}
