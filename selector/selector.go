// Package selector defines how creation directives address nodes of a model.
//
// A Selector picks nodes by root, field, type, predicate or path and may be
// narrowed to a subtree with Within and to a level with AtDepth. Selectors
// are compiled into matchers that carry a specificity used to rank
// conflicting directives.
package selector

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var ErrInvalidSelector = errors.New("invalid selector")

type selectorKind int

const (
	kindRoot selectorKind = iota
	kindField
	kindType
	kindTypePredicate
	kindFieldPredicate
	kindPath
	kindGroup
)

// Selector addresses a set of nodes. Selectors are immutable: modifiers return
// a new Selector.
type Selector struct {
	kind      selectorKind
	name      string
	declaring reflect.Type
	typ       reflect.Type
	typePred  func(reflect.Type) bool
	fieldPred func(reflect.StructField) bool
	path      FieldPath
	members   []*Selector
	scopes    []Scope
	depth     int
	err       error
}

func newSelector(kind selectorKind) *Selector {
	return &Selector{kind: kind, depth: -1}
}

// Root selects the root node.
func Root() *Selector {
	return newSelector(kindRoot)
}

// Field selects fields with the given name in any struct.
func Field(name string) *Selector {
	s := newSelector(kindField)
	s.name = name

	if !isIdent(name) {
		s.err = fmt.Errorf("%w: invalid field name %q", ErrInvalidSelector, name)
	}

	return s
}

// FieldOf selects the field name declared by T.
func FieldOf[T any](name string) *Selector {
	return FieldIn(reflect.TypeFor[T](), name)
}

// FieldIn selects the field name declared by t. The field must exist.
func FieldIn(t reflect.Type, name string) *Selector {
	s := Field(name)
	if s.err != nil {
		return s
	}

	if t == nil {
		s.err = fmt.Errorf("%w: nil declaring type for field %q", ErrInvalidSelector, name)
		return s
	}

	s.declaring = base(t)
	s.err = checkField(s.declaring, name)

	return s
}

// All selects every node of type T. Pointer types select their base type.
func All[T any]() *Selector {
	return AllOf(reflect.TypeFor[T]())
}

// AllOf selects every node of type t.
func AllOf(t reflect.Type) *Selector {
	s := newSelector(kindType)

	if t == nil {
		s.err = fmt.Errorf("%w: nil type", ErrInvalidSelector)
		return s
	}

	s.typ = base(t)

	return s
}

// AllStrings selects every string node.
func AllStrings() *Selector {
	return All[string]()
}

// AllInts selects every int node.
func AllInts() *Selector {
	return All[int]()
}

// Types selects nodes whose resolved type satisfies pred.
func Types(pred func(reflect.Type) bool) *Selector {
	s := newSelector(kindTypePredicate)
	s.typePred = pred

	if pred == nil {
		s.err = fmt.Errorf("%w: nil type predicate", ErrInvalidSelector)
	}

	return s
}

// Fields selects struct fields satisfying pred.
func Fields(pred func(reflect.StructField) bool) *Selector {
	s := newSelector(kindFieldPredicate)
	s.fieldPred = pred

	if pred == nil {
		s.err = fmt.Errorf("%w: nil field predicate", ErrInvalidSelector)
	}

	return s
}

// Path selects the node at the given path below the root, e.g.
// "Items[].Product.Name" or "Index[value]".
func Path(path string) *Selector {
	s := newSelector(kindPath)

	p, err := ParsePath(path)
	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrInvalidSelector, err)
	}
	s.path = p

	return s
}

// Group combines selectors. A node matches the group when it matches any
// member.
func Group(selectors ...*Selector) *Selector {
	s := newSelector(kindGroup)

	if len(selectors) == 0 {
		s.err = fmt.Errorf("%w: empty group", ErrInvalidSelector)
	}

	for _, m := range selectors {
		if m == nil {
			s.err = fmt.Errorf("%w: nil group member", ErrInvalidSelector)
			continue
		}

		if m.kind == kindGroup {
			s.members = append(s.members, m.members...)
			continue
		}
		s.members = append(s.members, m)
	}

	return s
}

// Within narrows s to nodes below the given scopes. Scopes are matched
// against the ancestors of a node in order from the root.
func (s *Selector) Within(scopes ...Scope) *Selector {
	out := s.clone()
	out.scopes = append(out.scopes, scopes...)

	if out.kind == kindGroup {
		for i, m := range out.members {
			out.members[i] = m.Within(scopes...)
		}
	}

	return out
}

// AtDepth narrows s to nodes at depth (the root is at depth 0).
func (s *Selector) AtDepth(depth int) *Selector {
	out := s.clone()
	out.depth = depth

	if depth < 0 {
		out.err = fmt.Errorf("%w: negative depth %d", ErrInvalidSelector, depth)
	}

	if out.kind == kindGroup {
		for i, m := range out.members {
			out.members[i] = m.AtDepth(depth)
		}
	}

	return out
}

// ToScope converts s into a scope for Within.
func (s *Selector) ToScope() Scope {
	return Scope{sel: s}
}

// Err returns the construction error of s, if any.
func (s *Selector) Err() error {
	if s.err != nil {
		return s.err
	}

	for _, m := range s.members {
		if err := m.Err(); err != nil {
			return err
		}
	}

	for _, sc := range s.scopes {
		if err := sc.sel.Err(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Selector) clone() *Selector {
	out := *s
	out.members = append([]*Selector(nil), s.members...)
	out.scopes = append([]Scope(nil), s.scopes...)

	return &out
}

func (s *Selector) String() string {
	var sb strings.Builder

	switch s.kind {
	case kindRoot:
		sb.WriteString("root()")
	case kindField:
		if s.declaring != nil {
			fmt.Fprintf(&sb, "field(%s, %s)", s.declaring, s.name)
		} else {
			fmt.Fprintf(&sb, "field(%s)", s.name)
		}
	case kindType:
		fmt.Fprintf(&sb, "all(%s)", s.typ)
	case kindTypePredicate:
		sb.WriteString("types(<predicate>)")
	case kindFieldPredicate:
		sb.WriteString("fields(<predicate>)")
	case kindPath:
		fmt.Fprintf(&sb, "path(%s)", s.path)
	case kindGroup:
		parts := make([]string, len(s.members))
		for i, m := range s.members {
			parts[i] = m.String()
		}
		fmt.Fprintf(&sb, "group(%s)", strings.Join(parts, ", "))
		return sb.String()
	}

	if len(s.scopes) > 0 {
		parts := make([]string, len(s.scopes))
		for i, sc := range s.scopes {
			parts[i] = sc.sel.String()
		}
		fmt.Fprintf(&sb, ".within(%s)", strings.Join(parts, ", "))
	}

	if s.depth >= 0 {
		sb.WriteString(".atDepth(" + strconv.Itoa(s.depth) + ")")
	}

	return sb.String()
}

func base(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// Scope restricts a selector to the subtree of nodes matched by another
// selector.
type Scope struct {
	sel *Selector
}

// ScopeOf returns a scope covering everything below nodes of type T.
func ScopeOf[T any]() Scope {
	return All[T]().ToScope()
}

// ScopeField returns a scope covering everything below the field name of t.
func ScopeField(t reflect.Type, name string) Scope {
	return FieldIn(t, name).ToScope()
}
