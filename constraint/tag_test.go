package constraint_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instancio/instancio-sub017/constraint"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/random"
	"github.com/instancio/instancio-sub017/settings"
)

type Tier string

type Account struct {
	Name    string         `validate:"required,min=2,max=5"`
	Code    string         `validate:"len=6"`
	Level   int            `validate:"min=3,max=4"`
	Small   uint8          `validate:"min=250"`
	Ratio   float64        `validate:"gte=0.5,lte=0.75"`
	Tier    Tier           `validate:"oneof=gold silver bronze"`
	Prio    int            `validate:"oneof=1 2 3"`
	Email   string         `validate:"email"`
	Tags    []string       `validate:"min=1,max=2"`
	Labels  map[string]int `validate:"len=3"`
	Unknown string         `validate:"uuid4"`
	Broken  int            `validate:"min=abc"`
	BadEnum bool           `validate:"oneof=yes no"`
	Plain   string
}

func accountNode(t *testing.T, name string) *node.Node {
	t.Helper()

	root, err := node.NewBuilder(node.DefaultConfig()).Build(reflect.TypeFor[Account]())
	require.NoError(t, err)

	n, ok := root.Child(name)
	require.True(t, ok, name)

	return n
}

func draw(t *testing.T, name string, times int) []any {
	t.Helper()

	n := accountNode(t, name)
	g := constraint.TagBridge{}.ConstrainedGenerator(n)
	require.NotNil(t, g, name)

	c := &generator.Context{Random: random.New(7), Settings: settings.Defaults(), Node: n}

	out := make([]any, 0, times)
	for range times {
		v, err := g.Generate(c)
		require.NoError(t, err)
		out = append(out, v)
	}

	return out
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	r, err := constraint.ParseRules("required, min=1 ,max=10,oneof=a b,email,uuid4")
	require.NoError(t, err)

	assert.True(t, r.Required)
	assert.True(t, r.Email)
	assert.Equal(t, 1.0, *r.Min)
	assert.Equal(t, 10.0, *r.Max)
	assert.Equal(t, []string{"a", "b"}, r.OneOf)
	assert.Nil(t, r.Len)

	for _, tag := range []string{"min=x", "len=-1", "oneof=", "min=5,max=1"} {
		_, err := constraint.ParseRules(tag)
		require.ErrorIs(t, err, constraint.ErrInvalidRule, tag)
	}

	r, err = constraint.ParseRules("omitempty,dive")
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestStringLength(t *testing.T) {
	t.Parallel()

	for _, v := range draw(t, "Name", 50) {
		s := v.(string)
		assert.GreaterOrEqual(t, len(s), 2)
		assert.LessOrEqual(t, len(s), 5)
	}

	for _, v := range draw(t, "Code", 10) {
		assert.Len(t, v, 6)
	}
}

func TestNumberRanges(t *testing.T) {
	t.Parallel()

	for _, v := range draw(t, "Level", 50) {
		assert.Contains(t, []int{3, 4}, v)
	}

	for _, v := range draw(t, "Small", 50) {
		assert.GreaterOrEqual(t, v.(uint8), uint8(250))
	}

	for _, v := range draw(t, "Ratio", 50) {
		assert.GreaterOrEqual(t, v.(float64), 0.5)
		assert.LessOrEqual(t, v.(float64), 0.75)
	}
}

func TestOneOf(t *testing.T) {
	t.Parallel()

	for _, v := range draw(t, "Tier", 20) {
		assert.Contains(t, []Tier{"gold", "silver", "bronze"}, v)
	}

	for _, v := range draw(t, "Prio", 20) {
		assert.Contains(t, []int{1, 2, 3}, v)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	for _, v := range draw(t, "Email", 20) {
		assert.Regexp(t, `^[a-z]{3,10}@[a-z]{3,8}\.(com|org|net|io)$`, v)
	}
}

func TestContainers(t *testing.T) {
	t.Parallel()

	bridge := constraint.TagBridge{}
	c := &generator.Context{Random: random.New(1), Settings: settings.Defaults()}

	c.Node = accountNode(t, "Tags")
	p, ok := bridge.ConstrainedGenerator(c.Node).(generator.Populator)
	require.True(t, ok)

	for range 20 {
		h, err := p.Hints(c)
		require.NoError(t, err)
		assert.Contains(t, []int{1, 2}, h.Size)
	}

	c.Node = accountNode(t, "Labels")
	p, ok = bridge.ConstrainedGenerator(c.Node).(generator.Populator)
	require.True(t, ok)

	h, err := p.Hints(c)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Size)
}

func TestNoRules(t *testing.T) {
	t.Parallel()

	bridge := constraint.TagBridge{}

	assert.Nil(t, bridge.ConstrainedGenerator(accountNode(t, "Plain")))
	assert.Nil(t, bridge.ConstrainedGenerator(accountNode(t, "Unknown")))

	root, err := node.NewBuilder(node.DefaultConfig()).Build(reflect.TypeFor[Account]())
	require.NoError(t, err)
	assert.Nil(t, bridge.ConstrainedGenerator(root))
}

func TestInvalidRulesFailOnGenerate(t *testing.T) {
	t.Parallel()

	bridge := constraint.TagBridge{}

	for _, name := range []string{"Broken", "BadEnum"} {
		n := accountNode(t, name)
		g := bridge.ConstrainedGenerator(n)
		require.NotNil(t, g)

		_, err := g.Generate(&generator.Context{Random: random.New(1), Settings: settings.Defaults(), Node: n})
		require.ErrorIs(t, err, constraint.ErrInvalidRule)
		assert.True(t, strings.Contains(err.Error(), name) || strings.Contains(err.Error(), "bool"))
	}
}
