package instancio

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/instancio/instancio-sub017/feed"
	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/internal/directive"
	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/selector"
	"github.com/instancio/instancio-sub017/settings"
)

// Option configures a Model.
type Option func(*config)

// pending is a directive recipe. Directives carry per-request state, so
// every request builds its own from the recipes.
type pending struct {
	sel    *selector.Selector
	action directive.Action
	fill   func(d *directive.Directive)
}

type config struct {
	pending []pending
	layers  []*settings.Settings
	call    *settings.Settings

	typeArgs     []reflect.Type
	impls        []reflect.Type
	constructors map[reflect.Type]*node.Constructor
	providers    []generator.Provider
	enums        [][]any
	bridge       generator.ConstraintBridge
	logger       *slog.Logger
	concurrency  int

	errs []error
}

func (c *config) directive(sel *selector.Selector, action directive.Action, fill func(d *directive.Directive)) {
	c.pending = append(c.pending, pending{sel: sel, action: action, fill: fill})
}

func (c *config) fail(err error) {
	c.errs = append(c.errs, err)
}

// Set assigns value to every selected node. The value is converted to the
// node type when possible and is never replaced by nil.
func Set(sel *selector.Selector, value any) Option {
	return func(c *config) {
		c.directive(sel, directive.ActionSet, func(d *directive.Directive) { d.Value = value })
	}
}

// Supply calls fn for every selected node.
func Supply(sel *selector.Selector, fn func() any) Option {
	return func(c *config) {
		if fn == nil {
			c.fail(fmt.Errorf("%w: nil supplier for %s", generator.ErrInvalidSpec, sel))
			return
		}
		c.directive(sel, directive.ActionSupply, func(d *directive.Directive) { d.Supplier = fn })
	}
}

// Generate uses g for every selected node, e.g.
//
//	instancio.Generate(selector.Field("Tags"), generator.Slice().Size(3))
func Generate(sel *selector.Selector, g generator.Generator) Option {
	return func(c *config) {
		if g == nil {
			c.fail(fmt.Errorf("%w: nil generator for %s", generator.ErrInvalidSpec, sel))
			return
		}
		c.directive(sel, directive.ActionGenerate, func(d *directive.Directive) { d.Generator = g })
	}
}

// Ignore leaves the selected nodes at their zero value.
func Ignore(sel *selector.Selector) Option {
	return func(c *config) {
		c.directive(sel, directive.ActionIgnore, nil)
	}
}

// WithNullable lets the selected nillable nodes be nil.
func WithNullable(sel *selector.Selector) Option {
	return func(c *config) {
		c.directive(sel, directive.ActionNullable, nil)
	}
}

// OnComplete calls fn with a pointer to every selected value once it is
// fully populated. Nodes whose value is not a V are reported as errors.
func OnComplete[V any](sel *selector.Selector, fn func(v *V)) Option {
	return func(c *config) {
		c.directive(sel, directive.ActionOnComplete, func(d *directive.Directive) {
			d.Callback = func(ptr any) error {
				p, ok := ptr.(*V)
				if !ok {
					return fmt.Errorf("%w: callback expects %s, got %T", node.ErrNotAssignable, reflect.TypeFor[*V](), ptr)
				}
				fn(p)
				return nil
			}
		})
	}
}

// Subtype generates the selected interface nodes as t.
func Subtype(sel *selector.Selector, t reflect.Type) Option {
	return func(c *config) {
		if t == nil {
			c.fail(fmt.Errorf("%w: subtype for %s", node.ErrNilType, sel))
			return
		}
		c.directive(sel, directive.ActionSubtype, func(d *directive.Directive) { d.Subtype = t })
	}
}

// ApplyFeed fills the selected struct nodes from the rows of f.
func ApplyFeed(sel *selector.Selector, f feed.Feed, access feed.Access) Option {
	return func(c *config) {
		if f == nil {
			c.fail(fmt.Errorf("%w: nil feed for %s", feed.ErrEmpty, sel))
			return
		}
		c.directive(sel, directive.ActionFeed, func(d *directive.Directive) { d.Feed, d.Access = f, access })
	}
}

// WithSettings adds a settings layer. Later layers and WithSetting take
// precedence.
func WithSettings(s *settings.Settings) Option {
	return func(c *config) {
		c.layers = append(c.layers, s)
	}
}

// WithSettingsFile loads a settings layer from a YAML file.
func WithSettingsFile(path string) Option {
	return func(c *config) {
		s, err := settings.LoadFile(path)
		if err != nil {
			c.fail(err)
			return
		}
		c.layers = append(c.layers, s)
	}
}

// WithSetting overrides one setting for this model.
func WithSetting(key *settings.Key, value any) Option {
	return func(c *config) {
		if err := c.call.Set(key, value); err != nil {
			c.fail(err)
		}
	}
}

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return WithSetting(settings.Seed, seed)
}

// WithMaxDepth limits how deep the model is expanded.
func WithMaxDepth(depth int) Option {
	return WithSetting(settings.MaxDepth, depth)
}

// Lenient reports unused selectors and unresolved types as logged warnings
// instead of errors.
func Lenient() Option {
	return WithSetting(settings.ModeKey, settings.ModeLenient)
}

// WithTypeArgs binds the type variables of the root type in order.
func WithTypeArgs(types ...reflect.Type) Option {
	return func(c *config) {
		c.typeArgs = append(c.typeArgs, types...)
	}
}

// WithImplementations registers concrete types for interface nodes. An
// interface with exactly one registered implementation resolves to it.
func WithImplementations(types ...reflect.Type) Option {
	return func(c *config) {
		c.impls = append(c.impls, types...)
	}
}

// WithConstructors registers functions that build their result type from
// generated arguments. See node.ParseConstructor for accepted signatures.
func WithConstructors(fns ...any) Option {
	return func(c *config) {
		for _, fn := range fns {
			ctor, err := node.ParseConstructor(fn)
			if err != nil {
				c.fail(err)
				continue
			}
			c.constructors[ctor.Result()] = ctor
		}
	}
}

// WithEnum registers the values generated for their type.
func WithEnum(values ...any) Option {
	return func(c *config) {
		c.enums = append(c.enums, values)
	}
}

// WithProvider adds a provider consulted for this model only.
func WithProvider(p generator.Provider) Option {
	return func(c *config) {
		c.providers = append(c.providers, p)
	}
}

// WithConstraintBridge replaces the bridge used when
// bean.validation.enabled is set. The default reads validate tags.
func WithConstraintBridge(b generator.ConstraintBridge) Option {
	return func(c *config) {
		c.bridge = b
	}
}

// WithLogger sets the logger of every request of the model.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithConcurrency bounds the number of requests CreateMany runs at once.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n < 1 {
			c.fail(fmt.Errorf("%w: concurrency %d", settings.ErrInvalidValue, n))
			return
		}
		c.concurrency = n
	}
}
