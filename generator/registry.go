package generator

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/primitive"
	"github.com/instancio/instancio-sub017/settings"
)

// Registry resolves the default generator of a node.
//
// Resolution order:
//  1. constraint bridge, when bean.validation.enabled is set
//  2. providers, registry-local first, then global ones
//  3. built-ins matched by type identity and registered enums
//  4. built-ins matched by kind: named basic types, slices, arrays, maps
//  5. constructors registered for the node type
//  6. field-by-field population of structs
//
// Nodes left over (interfaces without implementation, funcs, chans) resolve
// to nil.
type Registry struct {
	mu        sync.RWMutex
	enums     map[reflect.Type][]any
	providers []Provider
	bridge    ConstraintBridge
	global    bool
}

type RegistryOption func(*Registry)

// WithProviders adds registry-local providers.
func WithProviders(providers ...Provider) RegistryOption {
	return func(r *Registry) {
		r.providers = append(r.providers, providers...)
	}
}

// WithConstraintBridge sets the bridge consulted when bean validation is
// enabled.
func WithConstraintBridge(b ConstraintBridge) RegistryOption {
	return func(r *Registry) {
		r.bridge = b
	}
}

// WithoutGlobalProviders ignores providers registered process-wide.
func WithoutGlobalProviders() RegistryOption {
	return func(r *Registry) {
		r.global = false
	}
}

// NewRegistry creates a registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		enums:  make(map[reflect.Type][]any),
		global: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	maps.Copy(clone.enums, r.enums)
	clone.providers = slices.Clone(r.providers)
	clone.bridge = r.bridge
	clone.global = r.global

	return clone
}

// RegisterEnum registers the set of values generated for their type.
// All values must have the same dynamic type.
func (r *Registry) RegisterEnum(values ...any) error {
	typ, err := enumValues(values)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.enums[typ] = slices.Clone(values)

	return nil
}

// MustRegisterEnum is like RegisterEnum but panics on error.
func (r *Registry) MustRegisterEnum(values ...any) {
	if err := r.RegisterEnum(values...); err != nil {
		panic(err)
	}
}

// RegisterProvider appends a registry-local provider.
func (r *Registry) RegisterProvider(p Provider) error {
	if err := p.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)

	return nil
}

// IsLeaf reports types generated whole rather than expanded field by field:
// exact built-ins, registered enums and types claimed by a provider.
func (r *Registry) IsLeaf(t reflect.Type) bool {
	if _, ok := exact[t]; ok {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.enums[t]; ok {
		return true
	}

	return slices.ContainsFunc(r.allProviders(), func(p Provider) bool {
		return slices.Contains(p.Types, t)
	})
}

// allProviders returns the local providers followed by the global ones.
// The caller holds r.mu.
func (r *Registry) allProviders() []Provider {
	if !r.global {
		return r.providers
	}

	return append(slices.Clip(r.providers), GlobalProviders()...)
}

// Resolve returns the default generator for n, or nil if none applies.
func (r *Registry) Resolve(n *node.Node, s *settings.Settings) Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.bridge != nil && s.Bool(settings.BeanValidationEnabled) {
		if g := r.bridge.ConstrainedGenerator(n); g != nil {
			return g
		}
	}

	for _, p := range r.allProviders() {
		if p.Match(n) {
			if g := p.Factory(n); g != nil {
				return g
			}
		}
	}

	if g := r.builtin(n); g != nil {
		return g
	}

	if n.Constructor != nil {
		return constructorGenerator{ctor: n.Constructor}
	}

	if n.Kind == node.KindStruct {
		return structGenerator{}
	}

	return nil
}

func (r *Registry) builtin(n *node.Node) Generator {
	t := n.Target

	if newGen, ok := exact[t]; ok {
		return newGen()
	}

	if values, ok := r.enums[t]; ok {
		return OneOf(values...)
	}

	switch n.Kind {
	case node.KindLeaf:
		return basic(primitive.Underlying(t))
	case node.KindSlice:
		return Slice()
	case node.KindArray:
		return arrayGenerator{}
	case node.KindMap:
		return Map()
	default:
		return nil
	}
}

type globalEntry struct {
	id       uint64
	provider Provider
}

var global struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []globalEntry
}

// RegisterGlobalProvider adds a provider consulted by every registry that
// has not opted out. The returned function removes it again.
func RegisterGlobalProvider(p Provider) (func(), error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	global.nextID++
	id := global.nextID
	global.entries = append(global.entries, globalEntry{id: id, provider: p})

	return func() {
		global.mu.Lock()
		defer global.mu.Unlock()

		global.entries = slices.DeleteFunc(global.entries, func(e globalEntry) bool { return e.id == id })
	}, nil
}

// GlobalProviders returns a snapshot of the process-wide providers in
// registration order.
func GlobalProviders() []Provider {
	global.mu.RLock()
	defer global.mu.RUnlock()

	out := make([]Provider, len(global.entries))
	for i, e := range global.entries {
		out[i] = e.provider
	}

	return out
}

func (p Provider) String() string {
	return fmt.Sprintf("provider(%s)", p.Name)
}
