package selector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/instancio/instancio-sub017/internal/match"
	"github.com/instancio/instancio-sub017/node"
)

// Specificity ranks matchers. When several directives match a node the one
// with the highest specificity wins.
type Specificity int

const (
	SpecNone      Specificity = iota
	SpecPredicate             // Types, Fields
	SpecType                  // All, AllOf
	SpecField                 // Field, FieldOf, FieldIn
	SpecPath                  // Root, Path, anything with scopes or depth
)

func (s Specificity) String() string {
	switch s {
	case SpecPredicate:
		return "predicate"
	case SpecType:
		return "type"
	case SpecField:
		return "field"
	case SpecPath:
		return "path"
	default:
		return "none"
	}
}

// Matcher is one compiled, non-group selector.
type Matcher struct {
	Spec  Specificity
	match func(*node.Node) bool
}

// Match reports whether n is selected.
func (m Matcher) Match(n *node.Node) bool {
	return m.match(n)
}

// Compiled is a selector ready for matching. Groups are flattened into one
// matcher per member.
type Compiled struct {
	Selector *Selector
	Matchers []Matcher
}

// Compile validates s and builds its matchers.
func Compile(s *Selector) (*Compiled, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil selector", ErrInvalidSelector)
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	c := &Compiled{Selector: s}

	members := []*Selector{s}
	if s.kind == kindGroup {
		members = s.members
	}

	for _, m := range members {
		c.Matchers = append(c.Matchers, compileOne(m))
	}

	return c, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s *Selector) *Compiled {
	c, err := Compile(s)
	if err != nil {
		panic(err)
	}

	return c
}

// Match reports whether n is selected and, if so, the specificity of the most
// specific matching member.
func (c *Compiled) Match(n *node.Node) (Specificity, bool) {
	best := SpecNone

	for _, m := range c.Matchers {
		if m.Spec > best && m.Match(n) {
			best = m.Spec
		}
	}

	return best, best != SpecNone
}

func (c *Compiled) String() string {
	return c.Selector.String()
}

func compileOne(s *Selector) Matcher {
	m := Matcher{Spec: baseSpec(s.kind), match: baseMatch(s)}

	if len(s.scopes) == 0 && s.depth < 0 {
		return m
	}

	inner := m.match

	scopes := make([]Matcher, len(s.scopes))
	for i, sc := range s.scopes {
		scopes[i] = compileOne(sc.sel)
	}

	depth := s.depth

	return Matcher{
		Spec: SpecPath,
		match: func(n *node.Node) bool {
			if depth >= 0 && n.Depth != depth {
				return false
			}

			return inner(n) && withinScopes(n, scopes)
		},
	}
}

// withinScopes reports whether the ancestors of n, taken from the root down,
// match scopes in order.
func withinScopes(n *node.Node, scopes []Matcher) bool {
	if len(scopes) == 0 {
		return true
	}

	next := 0
	for _, a := range n.Ancestors() {
		if scopes[next].Match(a) {
			next++
			if next == len(scopes) {
				return true
			}
		}
	}

	return false
}

func baseSpec(kind selectorKind) Specificity {
	switch kind {
	case kindRoot, kindPath:
		return SpecPath
	case kindField:
		return SpecField
	case kindType:
		return SpecType
	default:
		return SpecPredicate
	}
}

func baseMatch(s *Selector) func(*node.Node) bool {
	switch s.kind {
	case kindRoot:
		return func(n *node.Node) bool { return n.Role == node.RoleRoot }

	case kindField:
		name, declaring := s.name, s.declaring
		return func(n *node.Node) bool {
			return n.Role == node.RoleField && n.Field.Name == name &&
				(declaring == nil || n.Declaring == declaring)
		}

	case kindType:
		typ := s.typ
		return func(n *node.Node) bool {
			return n.Target == typ || base(n.Type) == typ
		}

	case kindTypePredicate:
		pred := s.typePred
		return func(n *node.Node) bool { return pred(n.Target) }

	case kindFieldPredicate:
		pred := s.fieldPred
		return func(n *node.Node) bool { return n.Role == node.RoleField && pred(*n.Field) }

	case kindPath:
		want := s.path.String()
		return func(n *node.Node) bool { return n.Role != node.RoleRoot && n.RelPath() == want }

	default:
		return func(*node.Node) bool { return false }
	}
}

// checkField verifies that t declares an exported field name and suggests
// close matches when it does not.
func checkField(t reflect.Type, name string) error {
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct type", ErrInvalidSelector, t)
	}

	if f, ok := t.FieldByName(name); ok && f.IsExported() && len(f.Index) == 1 {
		return nil
	}

	msg := fmt.Sprintf("%s has no exported field %q", t, name)
	if s := suggestFields(t, name); len(s) > 0 {
		msg += fmt.Sprintf("; did you mean %s?", strings.Join(s, " or "))
	}

	return fmt.Errorf("%w: %s", ErrInvalidSelector, msg)
}

const maxSuggestions = 3

func suggestFields(t reflect.Type, name string) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			names = append(names, f.Name)
		}
	}

	out := match.Closest(name, names, 0.5, maxSuggestions)
	for i, n := range out {
		out[i] = strconv.Quote(n)
	}

	return out
}
