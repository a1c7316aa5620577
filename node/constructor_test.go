package node_test

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instancio/instancio-sub017/node"
)

type point struct{ X, Y int }

func newPoint(x, y int) point            { return point{X: x, Y: y} }
func newPointPtr(x, y int) *point        { return &point{X: x, Y: y} }
func parsePoint(s string) (point, error) { return point{}, errors.New("bad point: " + s) }
func variadic(xs ...int) point           { return point{} }
func noResult(int)                       {}
func wrongSecond(int) (point, bool)      { return point{}, false }
func onlyError() error                   { return nil }
func tooMany() (point, error, bool)      { return point{}, nil, false }

func ExampleParseConstructor() {
	ctor, err := node.ParseConstructor(newPoint)
	fmt.Println(err, ctor.Name, len(ctor.Params), ctor.Out.Kind(), ctor.HasErr)

	ctor, err = node.ParseConstructor(strconv.Atoi)
	fmt.Println(err, ctor.Name, len(ctor.Params), ctor.Out.Kind(), ctor.HasErr)

	_, err = node.ParseConstructor(variadic)
	fmt.Println(err)

	_, err = node.ParseConstructor(42)
	fmt.Println(err)

	// Output:
	// <nil> node_test.newPoint 2 struct false
	// <nil> strconv.Atoi 1 int true
	// provided function is not a recognizable constructor
	// provided constructor is not a function
}

func TestParseConstructorRejects(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]any{
		"no result":     noResult,
		"wrong second":  wrongSecond,
		"only error":    onlyError,
		"three results": tooMany,
		"variadic":      variadic,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := node.ParseConstructor(fn)
			assert.ErrorIs(t, err, node.ErrNotAConstructor)
		})
	}

	_, err := node.ParseConstructor(nil)
	assert.ErrorIs(t, err, node.ErrConstructorNotAFunction)
}

func TestConstructorCall(t *testing.T) {
	t.Parallel()

	ctor, err := node.ParseConstructor(newPointPtr)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[point](), ctor.Result())

	out, err := ctor.Call([]reflect.Value{reflect.ValueOf(1), reflect.ValueOf(2)})
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, out.Interface())

	_, err = ctor.Call(nil)
	assert.Error(t, err)

	failing, err := node.ParseConstructor(parsePoint)
	require.NoError(t, err)

	_, err = failing.Call([]reflect.Value{reflect.ValueOf("x")})
	assert.ErrorContains(t, err, "bad point: x")
}
