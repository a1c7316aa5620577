package node_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instancio/instancio-sub017/node"
)

type (
	Shape interface{ Area() float64 }

	Circle struct{ R float64 }
	Square struct{ Side float64 }

	Drawing struct {
		Main   Shape
		Extra  []Shape
		Any    any
		Origin *point
	}
)

func (c Circle) Area() float64  { return 3 * c.R * c.R }
func (s *Square) Area() float64 { return s.Side * s.Side }

func TestBuildUnresolvedInterface(t *testing.T) {
	t.Parallel()

	root := build(t, node.DefaultConfig(), reflect.TypeFor[Drawing]())

	main := field(t, root, "Main")
	assert.Equal(t, node.KindInterface, main.Kind)
	assert.Equal(t, reflect.TypeFor[Shape](), main.Target)
	assert.Empty(t, main.Children)
}

func TestBuildSingleImplementation(t *testing.T) {
	t.Parallel()

	cfg := node.DefaultConfig()
	cfg.Implementations = []reflect.Type{reflect.TypeFor[Circle]()}

	root := build(t, cfg, reflect.TypeFor[Drawing]())

	main := field(t, root, "Main")
	assert.Equal(t, node.KindStruct, main.Kind)
	assert.Equal(t, reflect.TypeFor[Circle](), main.Target)
	assert.Equal(t, 0, main.PtrDepth)
	assert.Equal(t, reflect.TypeFor[Circle](), field(t, root, "Extra").Children[0].Target)

	// empty interfaces are never resolved from implementations
	assert.Equal(t, node.KindInterface, field(t, root, "Any").Kind)
}

func TestBuildPointerReceiverImplementation(t *testing.T) {
	t.Parallel()

	cfg := node.DefaultConfig()
	cfg.Implementations = []reflect.Type{reflect.TypeFor[Square]()}

	main := field(t, build(t, cfg, reflect.TypeFor[Drawing]()), "Main")
	assert.Equal(t, reflect.TypeFor[Square](), main.Target)
	assert.Equal(t, 1, main.PtrDepth)
}

func TestBuildAmbiguousImplementations(t *testing.T) {
	t.Parallel()

	cfg := node.DefaultConfig()
	cfg.Implementations = []reflect.Type{reflect.TypeFor[Circle](), reflect.TypeFor[*Square](), reflect.TypeFor[point]()}

	main := field(t, build(t, cfg, reflect.TypeFor[Drawing]()), "Main")
	assert.Equal(t, node.KindInterface, main.Kind)
}

func TestBuildSubtypeHook(t *testing.T) {
	t.Parallel()

	cfg := node.DefaultConfig()
	cfg.Implementations = []reflect.Type{reflect.TypeFor[Circle]()}
	cfg.Subtype = func(n *node.Node) reflect.Type {
		if n.Role == node.RoleField && n.Field.Name == "Main" {
			return reflect.TypeFor[Square]()
		}
		if n.Role == node.RoleField && n.Field.Name == "Any" {
			return reflect.TypeFor[int]()
		}
		return nil
	}

	root := build(t, cfg, reflect.TypeFor[Drawing]())
	assert.Equal(t, reflect.TypeFor[Square](), field(t, root, "Main").Target)
	assert.Equal(t, reflect.TypeFor[Circle](), field(t, root, "Extra").Children[0].Target)
	assert.Equal(t, node.KindLeaf, field(t, root, "Any").Kind)

	cfg.Subtype = func(n *node.Node) reflect.Type { return reflect.TypeFor[point]() }
	_, err := node.NewBuilder(cfg).Build(reflect.TypeFor[Drawing]())
	assert.ErrorIs(t, err, node.ErrNotAssignable)
}

func TestBuildLeafTypesAndConstructors(t *testing.T) {
	t.Parallel()

	ctor, err := node.ParseConstructor(newPoint)
	require.NoError(t, err)

	cfg := node.DefaultConfig()
	cfg.Constructors = map[reflect.Type]*node.Constructor{ctor.Result(): ctor}

	origin := field(t, build(t, cfg, reflect.TypeFor[Drawing]()), "Origin")
	assert.Same(t, ctor, origin.Constructor)
	require.Len(t, origin.Children, 2)
	assert.Equal(t, node.RoleComponent, origin.Children[1].Role)
	assert.Equal(t, 1, origin.Children[1].Component)
	assert.Equal(t, "Drawing.Origin(1)", origin.Children[1].Path())

	cfg.LeafTypes = func(t reflect.Type) bool { return t == reflect.TypeFor[point]() }
	origin = field(t, build(t, cfg, reflect.TypeFor[Drawing]()), "Origin")
	assert.Equal(t, node.KindLeaf, origin.Kind)
	assert.Nil(t, origin.Constructor)
	assert.Empty(t, origin.Children)
}
