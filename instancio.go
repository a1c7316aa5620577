// Package instancio creates fully populated values of arbitrary Go types
// for tests.
//
//	p, err := instancio.Of[Person](
//		instancio.Set(selector.Field("Name"), "Ada"),
//		instancio.Ignore(selector.AllStrings().Within(selector.ScopeOf[Address]())),
//		instancio.WithSeed(42),
//	).Create()
//
// Every exported field is filled with a random value. Selectors narrow
// directives to fields, types or paths; the most specific selector wins.
// Self-referencing types are cut at the first repetition and the model is
// never expanded deeper than max.depth.
//
// A request that fails reports the seed it ran with, so the same value can
// be recreated with WithSeed.
package instancio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/instancio/instancio-sub017/constraint"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/ctxlog"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/internal/engine"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/random"
	"github.com/instancio/instancio-sub017/settings"
)

const defaultConcurrency = 8

// Model describes how values of T are created. A Model is immutable and
// safe for concurrent use; every Create call is an independent request.
type Model[T any] struct {
	typ reflect.Type
	cfg *config
}

// Of returns the model of T.
func Of[T any](opts ...Option) *Model[T] {
	return newModel[T](reflect.TypeFor[T](), opts)
}

// OfType returns the model of t. Values are returned as any holding a t.
func OfType(t reflect.Type, opts ...Option) *Model[any] {
	return newModel[any](t, opts)
}

func newModel[T any](t reflect.Type, opts []Option) *Model[T] {
	cfg := &config{
		call:         settings.New(),
		constructors: make(map[reflect.Type]*node.Constructor),
		bridge:       constraint.TagBridge{},
		concurrency:  defaultConcurrency,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if t == nil {
		cfg.fail(node.ErrNilType)
	}

	return &Model[T]{typ: t, cfg: cfg}
}

// With returns a copy of m with more options applied.
func (m *Model[T]) With(opts ...Option) *Model[T] {
	cfg := *m.cfg
	cfg.pending = slices.Clone(m.cfg.pending)
	cfg.layers = slices.Clone(m.cfg.layers)
	cfg.call = m.cfg.call.Clone()
	cfg.typeArgs = slices.Clone(m.cfg.typeArgs)
	cfg.impls = slices.Clone(m.cfg.impls)
	cfg.constructors = maps.Clone(m.cfg.constructors)
	cfg.providers = slices.Clone(m.cfg.providers)
	cfg.enums = slices.Clone(m.cfg.enums)
	cfg.errs = slices.Clone(m.cfg.errs)

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Model[T]{typ: m.typ, cfg: &cfg}
}

// Create returns a new value.
func (m *Model[T]) Create() (T, error) {
	return m.CreateContext(context.Background())
}

// MustCreate is like Create but panics on error.
func (m *Model[T]) MustCreate() T {
	v, err := m.Create()
	if err != nil {
		panic(err)
	}

	return v
}

// CreateContext returns a new value. The logger is taken from ctx unless
// the model sets one.
func (m *Model[T]) CreateContext(ctx context.Context) (T, error) {
	var zero T

	s, err := m.settings()
	if err != nil {
		return zero, err
	}

	return m.create(ctx, s, seedOf(s), 0)
}

// CreateSlice returns n values.
func (m *Model[T]) CreateSlice(n int) ([]T, error) {
	return m.CreateMany(context.Background(), n)
}

// CreateMany runs n independent requests concurrently. Request i uses seed
// base+i and starts feeds at row i, so a seeded batch is reproducible. The
// first failure cancels the remaining requests.
func (m *Model[T]) CreateMany(ctx context.Context, n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", settings.ErrInvalidValue, n)
	}

	s, err := m.settings()
	if err != nil {
		return nil, err
	}

	base := seedOf(s)
	out := make([]T, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.concurrency)

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := m.create(ctx, s, base+int64(i), i)
			if err != nil {
				return err
			}
			out[i] = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Dump writes the node tree of the model, one node per line.
func (m *Model[T]) Dump(w io.Writer) error {
	s, err := m.settings()
	if err != nil {
		return err
	}

	p, err := m.prepare(s)
	if err != nil {
		return err
	}

	return node.Dump(w, p.root)
}

func (m *Model[T]) settings() (*settings.Settings, error) {
	if err := errors.Join(m.cfg.errs...); err != nil {
		return nil, err
	}

	layers := append(slices.Clone(m.cfg.layers), m.cfg.call)

	return settings.Merge(layers...)
}

// prepared holds the per-request collaborators.
type prepared struct {
	root     *node.Node
	set      *directive.Set
	registry *generator.Registry
}

func (m *Model[T]) prepare(s *settings.Settings) (*prepared, error) {
	opts := []generator.RegistryOption{generator.WithProviders(m.cfg.providers...)}
	if m.cfg.bridge != nil {
		opts = append(opts, generator.WithConstraintBridge(m.cfg.bridge))
	}

	registry := generator.NewRegistry(opts...)
	for _, values := range m.cfg.enums {
		if err := registry.RegisterEnum(values...); err != nil {
			return nil, err
		}
	}

	set := directive.NewSet()
	for _, p := range m.cfg.pending {
		d, err := directive.New(p.sel, p.action)
		if err != nil {
			return nil, err
		}
		if p.fill != nil {
			p.fill(d)
		}
		set.Add(d)
	}

	builder := node.NewBuilder(node.Config{
		MaxDepth:        s.Int(settings.MaxDepth),
		Implementations: m.cfg.impls,
		Constructors:    m.cfg.constructors,
		Subtype:         set.Subtype,
		LeafTypes:       registry.IsLeaf,
	})

	root, err := builder.Build(m.typ, m.cfg.typeArgs...)
	if err != nil {
		return nil, err
	}

	return &prepared{root: root, set: set, registry: registry}, nil
}

func (m *Model[T]) create(ctx context.Context, s *settings.Settings, seed int64, index int) (T, error) {
	var zero T

	p, err := m.prepare(s)
	if err != nil {
		return zero, err
	}

	ctx = ctxlog.WithLogger(ctx, m.cfg.logger)

	res, err := engine.Create(ctx, engine.Request{
		Root:       p.root,
		Directives: p.set,
		Registry:   p.registry,
		Settings:   s,
		Random:     random.New(seed),
		FeedStart:  index,
	})
	if err != nil {
		return zero, &SeedError{Seed: seed, Err: err}
	}

	v, _ := res.Value.Interface().(T)

	return v, nil
}

// seedOf returns the configured seed or a fresh one from the clock.
func seedOf(s *settings.Settings) int64 {
	if seed, ok := s.SeedValue(); ok {
		return seed
	}

	return random.NewTimeSeeded().Seed()
}

// SeedError is returned when generation fails. It names the seed so the
// failing value can be recreated.
type SeedError struct {
	Seed int64
	Err  error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("%v (seed: %d)", e.Err, e.Seed)
}

func (e *SeedError) Unwrap() error {
	return e.Err
}

// RegisterProvider adds a provider consulted by every model. The returned
// function removes it again.
func RegisterProvider(p generator.Provider) (func(), error) {
	return generator.RegisterGlobalProvider(p)
}
