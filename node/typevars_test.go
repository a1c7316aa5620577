package node_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instancio/instancio-sub017/node"
)

type (
	Page struct {
		Items []any       `instancio:"T"`
		Index map[any]any `instancio:"K,V"`
		Total int
	}

	Pair struct {
		First  any `instancio:"A"`
		Second any `instancio:"B"`
	}

	Wrapper struct {
		Inner Pair   `instancio:"A=T,B=T"`
		Many  []Pair `instancio:"A=T,B=U"`
	}

	Ordered struct {
		Left  any `instancio:"L"`
		Right any `instancio:"R"`
	}

	BadTag struct {
		Value any `instancio:"A,B=C"`
	}

	TooManyVars struct {
		Value any `instancio:"A,B"`
	}
)

func (Ordered) TypeParameters() []string { return []string{"R", "L"} }

var (
	stringType = reflect.TypeFor[string]()
	intType    = reflect.TypeFor[int]()
	floatType  = reflect.TypeFor[float64]()
)

func TestTypeParams(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"T", "K", "V"}, node.TypeParams(reflect.TypeFor[Page]()))
	assert.Equal(t, []string{"T", "U"}, node.TypeParams(reflect.TypeFor[Wrapper]()))
	assert.Equal(t, []string{"R", "L"}, node.TypeParams(reflect.TypeFor[Ordered]()))
	assert.Equal(t, []string{"A", "B"}, node.TypeParams(reflect.TypeFor[[]*Pair]()))
	assert.Empty(t, node.TypeParams(reflect.TypeFor[Person]()))
	assert.Empty(t, node.TypeParams(reflect.TypeFor[int]()))
}

func TestBuildBindsTypeVariables(t *testing.T) {
	t.Parallel()

	root := build(t, node.DefaultConfig(), reflect.TypeFor[Page](), stringType, intType, floatType)

	item := field(t, root, "Items").Children[0]
	assert.Equal(t, "T", item.TypeVar)
	assert.Equal(t, reflect.TypeFor[any](), item.Type)
	assert.Equal(t, stringType, item.Target)
	assert.Equal(t, node.KindLeaf, item.Kind)

	index := field(t, root, "Index")
	assert.Equal(t, intType, index.Children[0].Target)
	assert.Equal(t, "K", index.Children[0].TypeVar)
	assert.Equal(t, floatType, index.Children[1].Target)
	assert.Equal(t, "V", index.Children[1].TypeVar)
}

func TestBuildRebindsNestedVariables(t *testing.T) {
	t.Parallel()

	root := build(t, node.DefaultConfig(), reflect.TypeFor[Wrapper](), intType, stringType)

	inner := field(t, root, "Inner")
	assert.Equal(t, intType, field(t, inner, "First").Target)
	assert.Equal(t, intType, field(t, inner, "Second").Target)

	elem := field(t, root, "Many").Children[0]
	assert.Equal(t, intType, field(t, elem, "First").Target)
	assert.Equal(t, stringType, field(t, elem, "Second").Target)
}

func TestBuildNestedStructType(t *testing.T) {
	t.Parallel()

	// Page[Pair[int, string]]: T binds to Pair, whose own variables are not
	// visible to the root and therefore unbound.
	_, err := node.NewBuilder(node.DefaultConfig()).
		Build(reflect.TypeFor[Page](), reflect.TypeFor[Pair](), intType, intType)

	var unbound *node.UnboundTypeVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, reflect.TypeFor[Pair](), unbound.Type)
	assert.Equal(t, []string{"A", "B"}, unbound.Missing)
}

func TestBuildExplicitParameterOrder(t *testing.T) {
	t.Parallel()

	root := build(t, node.DefaultConfig(), reflect.TypeFor[Ordered](), intType, stringType)
	assert.Equal(t, stringType, field(t, root, "Left").Target)
	assert.Equal(t, intType, field(t, root, "Right").Target)
}

func TestBuildTypeArgumentErrors(t *testing.T) {
	t.Parallel()

	b := node.NewBuilder(node.DefaultConfig())

	_, err := b.Build(reflect.TypeFor[Page](), stringType)
	require.ErrorIs(t, err, node.ErrUnboundTypeVariable)

	var unbound *node.UnboundTypeVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, []string{"K", "V"}, unbound.Missing)
	assert.Contains(t, err.Error(), "node_test.Page")
	assert.Contains(t, err.Error(), "2 type argument(s) missing")

	_, err = b.Build(reflect.TypeFor[Pair](), intType, intType, intType)
	assert.ErrorIs(t, err, node.ErrTypeArgumentCount)

	_, err = b.Build(reflect.TypeFor[Person](), intType)
	assert.ErrorIs(t, err, node.ErrTypeArgumentCount)

	_, err = b.Build(reflect.TypeFor[BadTag]())
	assert.ErrorIs(t, err, node.ErrInvalidTag)

	_, err = b.Build(reflect.TypeFor[TooManyVars](), intType, intType)
	assert.ErrorIs(t, err, node.ErrInvalidTag)
}
