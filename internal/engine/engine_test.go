package engine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instancio/instancio-sub017/feed"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/ctxlog"
	"github.com/instancio/instancio-sub017/internal/diagnostic"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/internal/engine"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/random"
	"github.com/instancio/instancio-sub017/selector"
	"github.com/instancio/instancio-sub017/settings"
)

type (
	Order struct {
		ID     int
		Name   string
		Items  []Item
		Index  map[string]int
		Grid   [3]int
		Owner  *Person
		Tags   []string
		Status Status
	}
	Item struct {
		SKU string
		Qty int
	}
	Person struct {
		Name  string
		Email string
	}
	Status string

	A struct {
		Name string
		B    *B
	}
	B struct {
		Label string
		A     *A
	}

	Tree struct {
		Value    int
		Children []Tree
		Left     *Tree
	}

	Shape interface{ Area() float64 }
	Circle struct{ R float64 }
	Holder struct {
		Shape Shape
	}

	Point struct {
		X, Y int
		sum  int
	}
	Canvas struct {
		Origin Point
		Points []*Point
	}
)

func (c Circle) Area() float64 { return 3 * c.R * c.R }

func NewPoint(x, y int) Point { return Point{X: x, Y: y, sum: x + y} }

// env is one creation request under construction.
type env struct {
	t        *testing.T
	typ      reflect.Type
	set      *directive.Set
	registry *generator.Registry
	layer    *settings.Settings
	cfg      node.Config
	seed     int64
}

func newEnv(t *testing.T, typ reflect.Type) *env {
	t.Helper()

	return &env{
		t:        t,
		typ:      typ,
		set:      directive.NewSet(),
		registry: generator.NewRegistry(generator.WithoutGlobalProviders()),
		layer:    settings.New(),
		cfg:      node.DefaultConfig(),
		seed:     42,
	}
}

func (e *env) with(sel *selector.Selector, action directive.Action, fill func(d *directive.Directive)) *env {
	e.t.Helper()

	d, err := directive.New(sel, action)
	require.NoError(e.t, err)

	if fill != nil {
		fill(d)
	}
	e.set.Add(d)

	return e
}

func (e *env) setting(key *settings.Key, v any) *env {
	e.layer.MustSet(key, v)
	return e
}

func (e *env) run(ctx context.Context) (*engine.Result, error) {
	e.t.Helper()

	s, err := settings.Merge(e.layer)
	require.NoError(e.t, err)

	cfg := e.cfg
	cfg.MaxDepth = s.Int(settings.MaxDepth)
	cfg.LeafTypes = e.registry.IsLeaf
	cfg.Subtype = e.set.Subtype

	root, err := node.NewBuilder(cfg).Build(e.typ)
	require.NoError(e.t, err)

	return engine.Create(ctx, engine.Request{
		Root:       root,
		Directives: e.set,
		Registry:   e.registry,
		Settings:   s,
		Random:     random.New(e.seed),
	})
}

func (e *env) value() any {
	e.t.Helper()

	res, err := e.run(context.Background())
	require.NoError(e.t, err)

	return res.Value.Interface()
}

func TestSameSeedSameValue(t *testing.T) {
	t.Parallel()

	a := newEnv(t, reflect.TypeFor[Order]()).value()
	b := newEnv(t, reflect.TypeFor[Order]()).value()

	assert.Empty(t, cmp.Diff(a, b))

	other := newEnv(t, reflect.TypeFor[Order]())
	other.seed = 43
	assert.NotEmpty(t, cmp.Diff(a, other.value()))
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).value().(Order)

	assert.GreaterOrEqual(t, o.ID, 1)
	assert.LessOrEqual(t, o.ID, 10_000)
	assert.Regexp(t, `^[A-Z]{3,10}$`, o.Name)
	assert.Regexp(t, `^[A-Z]{3,10}$`, string(o.Status))
	require.NotNil(t, o.Owner)
	assert.NotEmpty(t, o.Owner.Email)

	for _, n := range []int{len(o.Items), len(o.Tags), len(o.Index)} {
		assert.GreaterOrEqual(t, n, 2)
		assert.LessOrEqual(t, n, 6)
	}

	for _, g := range o.Grid {
		assert.NotZero(t, g)
	}
}

func TestCollectionSizeSettings(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.CollectionMinSize, 4).
		setting(settings.CollectionMaxSize, 4).
		setting(settings.MapMinSize, 0).
		setting(settings.MapMaxSize, 0).
		value().(Order)

	assert.Len(t, o.Items, 4)
	assert.Len(t, o.Tags, 4)
	assert.Empty(t, o.Index)
}

func TestGenerateDirectiveFixesSize(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Items"), directive.ActionGenerate, func(d *directive.Directive) {
			d.Generator = generator.Slice().Size(7)
		}).
		value().(Order)

	assert.Len(t, o.Items, 7)
}

func TestIntsAreVaried(t *testing.T) {
	t.Parallel()

	seen := map[int]bool{}
	for i := range 1000 {
		e := newEnv(t, reflect.TypeFor[int]())
		e.seed = int64(i)
		seen[e.value().(int)] = true
	}

	assert.Greater(t, len(seen), 50)
}

func TestIgnore(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Owner"), directive.ActionIgnore, nil).
		with(selector.Field("Items"), directive.ActionIgnore, nil).
		with(selector.Field("ID"), directive.ActionIgnore, nil).
		value().(Order)

	assert.Nil(t, o.Owner)
	assert.Nil(t, o.Items)
	assert.Zero(t, o.ID)
	assert.NotEmpty(t, o.Name)
}

func TestIgnoreAllStringsThenSetField(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.AllStrings(), directive.ActionIgnore, nil).
		with(selector.FieldOf[Order]("Name"), directive.ActionSet, func(d *directive.Directive) {
			d.Value = "x"
		}).
		value().(Order)

	assert.Equal(t, "x", o.Name)
	require.NotNil(t, o.Owner)
	assert.Empty(t, o.Owner.Name)
	assert.Empty(t, o.Owner.Email)

	for _, it := range o.Items {
		assert.Empty(t, it.SKU)
	}
}

func TestIgnoreWinsTies(t *testing.T) {
	t.Parallel()

	e := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Name"), directive.ActionSet, func(d *directive.Directive) { d.Value = "set" }).
		with(selector.Field("Name"), directive.ActionIgnore, nil)

	res, err := e.run(context.Background())
	require.NoError(t, err)

	o := res.Value.Interface().(Order)
	assert.Empty(t, o.Name)
	assert.Empty(t, o.Owner.Name)

	require.NotEmpty(t, res.Diagnostics.Infos)
	assert.Equal(t, diagnostic.CodeSelectorTie, res.Diagnostics.Infos[0].Code)
}

func TestSetIgnoresNullability(t *testing.T) {
	t.Parallel()

	owner := &Person{Name: "Ada"}

	for seed := range int64(30) {
		e := newEnv(t, reflect.TypeFor[Order]()).
			setting(settings.PointerNullable, true).
			setting(settings.NullableProbability, 1.0).
			with(selector.Path("Owner"), directive.ActionSet, func(d *directive.Directive) { d.Value = owner })
		e.seed = seed

		o := e.value().(Order)
		assert.Same(t, owner, o.Owner)
	}
}

func TestLastValueDirectiveWins(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Name"), directive.ActionSet, func(d *directive.Directive) { d.Value = "first" }).
		with(selector.Field("Name"), directive.ActionSet, func(d *directive.Directive) { d.Value = "second" }).
		with(selector.All[Status](), directive.ActionSet, func(d *directive.Directive) { d.Value = "ACTIVE" }).
		value().(Order)

	assert.Equal(t, "second", o.Name)
	assert.Equal(t, "second", o.Owner.Name)
	assert.Equal(t, Status("ACTIVE"), o.Status)
}

func TestSupplyIsCalledPerNode(t *testing.T) {
	t.Parallel()

	calls := 0
	o := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.CollectionMinSize, 3).
		setting(settings.CollectionMaxSize, 3).
		with(selector.Path("Items[].Qty"), directive.ActionSupply, func(d *directive.Directive) {
			d.Supplier = func() any {
				calls++
				return calls
			}
		}).
		value().(Order)

	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2, 3}, []int{o.Items[0].Qty, o.Items[1].Qty, o.Items[2].Qty})
}

func TestCycleTerminates(t *testing.T) {
	t.Parallel()

	for _, depth := range []int{1, 2, 8} {
		a := newEnv(t, reflect.TypeFor[A]()).setting(settings.MaxDepth, depth).value().(A)

		require.NotNil(t, a.B, "depth %d", depth)
		assert.Nil(t, a.B.A)
	}

	tree := newEnv(t, reflect.TypeFor[Tree]()).value().(Tree)
	assert.Nil(t, tree.Children)
	assert.Nil(t, tree.Left)
}

func TestGenerateOnShortCircuitedNode(t *testing.T) {
	t.Parallel()

	a := newEnv(t, reflect.TypeFor[A]()).
		with(selector.Path("B.A"), directive.ActionGenerate, func(d *directive.Directive) {
			d.Generator = generator.Value(&A{Name: "gen"})
		}).
		value().(A)

	require.NotNil(t, a.B)
	require.NotNil(t, a.B.A)
	assert.Equal(t, "gen", a.B.A.Name)

	items := func() *env {
		return newEnv(t, reflect.TypeFor[Order]()).
			setting(settings.MaxDepth, 0).
			with(selector.Path("Items"), directive.ActionGenerate, func(d *directive.Directive) {
				d.Generator = generator.Slice().Size(2)
			})
	}

	_, err := items().run(context.Background())
	require.ErrorIs(t, err, engine.ErrSkippedDirective)

	res, err := items().setting(settings.ModeKey, settings.ModeLenient).run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Value.Interface().(Order).Items)
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeSkippedDirective, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "Order.Items", res.Diagnostics.Warnings[0].Path)
}

func TestDepthLimit(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).setting(settings.MaxDepth, 1).value().(Order)

	assert.NotZero(t, o.ID)
	require.NotNil(t, o.Owner)
	assert.Empty(t, o.Owner.Name)
	assert.Nil(t, o.Items)
	assert.Nil(t, o.Tags)
}

func TestNullableDirective(t *testing.T) {
	t.Parallel()

	nils := 0
	for seed := range int64(60) {
		e := newEnv(t, reflect.TypeFor[Order]()).
			with(selector.Field("Owner"), directive.ActionNullable, nil)
		e.seed = seed

		if e.value().(Order).Owner == nil {
			nils++
		}
	}

	assert.Greater(t, nils, 0)
	assert.Less(t, nils, 60)
}

func TestNullableElements(t *testing.T) {
	t.Parallel()

	c := newEnv(t, reflect.TypeFor[Canvas]()).
		setting(settings.CollectionElementsNullable, true).
		setting(settings.NullableProbability, 1.0).
		value().(Canvas)

	require.NotEmpty(t, c.Points)
	for _, p := range c.Points {
		assert.Nil(t, p)
	}
}

func TestMapKeyRetries(t *testing.T) {
	t.Parallel()

	e := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.MapMinSize, 5).
		setting(settings.MapMaxSize, 5).
		setting(settings.MapKeyRetries, 2).
		with(selector.Path("Index[key]"), directive.ActionSet, func(d *directive.Directive) { d.Value = "same" })

	res, err := e.run(context.Background())
	require.NoError(t, err)

	o := res.Value.Interface().(Order)
	assert.Len(t, o.Index, 1)

	var codes []string
	for _, d := range res.Diagnostics.Infos {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diagnostic.CodeMapKeyRetries)
}

func TestConstructor(t *testing.T) {
	t.Parallel()

	ctor, err := node.ParseConstructor(NewPoint)
	require.NoError(t, err)

	e := newEnv(t, reflect.TypeFor[Canvas]()).
		with(selector.Path("Origin(0)"), directive.ActionSet, func(d *directive.Directive) { d.Value = 3 })
	e.cfg.Constructors = map[reflect.Type]*node.Constructor{reflect.TypeFor[Point](): ctor}

	c := e.value().(Canvas)

	assert.Equal(t, 3, c.Origin.X)
	assert.Equal(t, c.Origin.X+c.Origin.Y, c.Origin.sum)

	for _, p := range c.Points {
		require.NotNil(t, p)
		assert.Equal(t, p.X+p.Y, p.sum)
	}
}

func TestSubtypeAndImplementations(t *testing.T) {
	t.Parallel()

	h := newEnv(t, reflect.TypeFor[Holder]()).
		with(selector.Field("Shape"), directive.ActionSubtype, func(d *directive.Directive) {
			d.Subtype = reflect.TypeFor[Circle]()
		}).
		value().(Holder)

	require.IsType(t, Circle{}, h.Shape)
	assert.Positive(t, h.Shape.Area())

	e := newEnv(t, reflect.TypeFor[Holder]())
	e.cfg.Implementations = []reflect.Type{reflect.TypeFor[Circle]()}

	assert.IsType(t, Circle{}, e.value().(Holder).Shape)
}

func TestUnresolvedInterface(t *testing.T) {
	t.Parallel()

	_, err := newEnv(t, reflect.TypeFor[Holder]()).run(context.Background())
	require.ErrorIs(t, err, engine.ErrUnresolvedType)
	assert.Contains(t, err.Error(), "Holder.Shape")

	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	res, err := newEnv(t, reflect.TypeFor[Holder]()).
		setting(settings.ModeKey, settings.ModeLenient).
		run(ctx)
	require.NoError(t, err)

	assert.Nil(t, res.Value.Interface().(Holder).Shape)
	assert.Len(t, res.Diagnostics.Warnings, 1)
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestUnusedSelector(t *testing.T) {
	t.Parallel()

	_, err := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Nope"), directive.ActionIgnore, nil).
		run(context.Background())
	require.ErrorIs(t, err, directive.ErrUnusedSelector)
	assert.Contains(t, err.Error(), "field(Nope)")

	res, err := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.ModeKey, settings.ModeLenient).
		with(selector.Field("Nope"), directive.ActionIgnore, nil).
		run(ctxlog.WithLogger(context.Background(), ctxlog.Discard))
	require.NoError(t, err)
	assert.Equal(t, diagnostic.CodeUnusedSelector, res.Diagnostics.Warnings[0].Code)
}

func TestSelectorBelowIgnoredNodeIsUsed(t *testing.T) {
	t.Parallel()

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("Owner"), directive.ActionIgnore, nil).
		with(selector.Field("Email"), directive.ActionSet, func(d *directive.Directive) { d.Value = "a@b.c" }).
		value().(Order)

	assert.Nil(t, o.Owner)
}

func TestOnComplete(t *testing.T) {
	t.Parallel()

	var order []string

	o := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.All[Person](), directive.ActionOnComplete, func(d *directive.Directive) {
			d.Callback = func(ptr any) error {
				p := ptr.(*Person)
				order = append(order, "person:"+p.Name)
				p.Email = strings.ToLower(p.Name) + "@example.com"
				return nil
			}
		}).
		with(selector.Root(), directive.ActionOnComplete, func(d *directive.Directive) {
			d.Callback = func(ptr any) error {
				o := ptr.(*Order)
				order = append(order, "order")
				o.ID = -1
				return nil
			}
		}).
		value().(Order)

	assert.Equal(t, -1, o.ID)
	assert.Equal(t, strings.ToLower(o.Owner.Name)+"@example.com", o.Owner.Email)
	assert.Equal(t, []string{"person:" + o.Owner.Name, "order"}, order)
}

func TestGeneratorErrorCarriesPath(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Path("Items[].SKU"), directive.ActionGenerate, func(d *directive.Directive) {
			d.Generator = generator.GeneratorFunc(func(*generator.Context) (any, error) { return nil, boom })
		}).
		run(context.Background())

	require.ErrorIs(t, err, boom)

	var ne *engine.NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "Order.Items[].SKU", ne.Path)
}

func TestIncompatibleSetValue(t *testing.T) {
	t.Parallel()

	_, err := newEnv(t, reflect.TypeFor[Order]()).
		with(selector.Field("ID"), directive.ActionSet, func(d *directive.Directive) { d.Value = "one" }).
		run(context.Background())

	require.ErrorIs(t, err, node.ErrNotAssignable)
}

func TestFeed(t *testing.T) {
	t.Parallel()

	f, err := feed.FromCSV(strings.NewReader("name,e_mail,extra\nAda,ada@x.io,1\nBob,bob@x.io,2\n"))
	require.NoError(t, err)

	e := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.CollectionMinSize, 2).
		setting(settings.CollectionMaxSize, 2).
		with(selector.All[Person](), directive.ActionFeed, func(d *directive.Directive) {
			d.Feed, d.Access = f, feed.Sequential
		}).
		with(selector.Field("Email"), directive.ActionSet, func(d *directive.Directive) { d.Value = "fixed" })

	res, err := e.run(context.Background())
	require.NoError(t, err)

	o := res.Value.Interface().(Order)
	assert.Equal(t, "Ada", o.Owner.Name)
	assert.Equal(t, "fixed", o.Owner.Email)

	var codes []string
	for _, d := range res.Diagnostics.Infos {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diagnostic.CodeFeedColumn)
}

func TestFeedExhausted(t *testing.T) {
	t.Parallel()

	f := feed.New(feed.Row{"SKU": "A-1"})

	_, err := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.CollectionMinSize, 2).
		setting(settings.CollectionMaxSize, 2).
		with(selector.All[Item](), directive.ActionFeed, func(d *directive.Directive) {
			d.Feed, d.Access = f, feed.Sequential
		}).
		run(context.Background())

	require.ErrorIs(t, err, feed.ErrExhausted)

	o := newEnv(t, reflect.TypeFor[Order]()).
		setting(settings.CollectionMinSize, 3).
		setting(settings.CollectionMaxSize, 3).
		with(selector.All[Item](), directive.ActionFeed, func(d *directive.Directive) {
			d.Feed, d.Access = f, feed.Cyclic
		}).
		value().(Order)

	for _, it := range o.Items {
		assert.Equal(t, "A-1", it.SKU)
		assert.NotZero(t, it.Qty)
	}
}
