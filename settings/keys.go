package settings

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/instancio/instancio-sub017/utils"
)

// Mode controls how resolution warnings are treated.
type Mode string

const (
	// ModeStrict fails a creation request on unmatched selectors and unresolved types.
	ModeStrict Mode = "strict"
	// ModeLenient only logs warnings.
	ModeLenient Mode = "lenient"
)

// IsValid returns true if the mode is a recognized value.
func (m Mode) IsValid() bool {
	return m == ModeStrict || m == ModeLenient
}

// Key is a setting identifier with a fixed value type and default.
type Key struct {
	name     string
	typ      reflect.Type
	def      any
	validate func(any) error
}

// Name returns the property name of the key, e.g. "collection.max.size".
func (k *Key) Name() string {
	return k.name
}

// Default returns the engine default for the key, or nil if it has none.
func (k *Key) Default() any {
	return k.def
}

// Type returns the value type stored under the key.
func (k *Key) Type() reflect.Type {
	return k.typ
}

func (k *Key) String() string {
	return k.name
}

const (
	minSize    = 2
	maxSize    = 6
	numericMax = 10_000
)

var registry = map[string]*Key{}

var (
	ArrayMinLength = register("array.min.length", minSize, nonNegative)
	ArrayMaxLength = register("array.max.length", maxSize, nonNegative)
	ArrayNullable  = register("array.nullable", false, nil)

	CollectionMinSize          = register("collection.min.size", minSize, nonNegative)
	CollectionMaxSize          = register("collection.max.size", maxSize, nonNegative)
	CollectionNullable         = register("collection.nullable", false, nil)
	CollectionElementsNullable = register("collection.elements.nullable", false, nil)

	MapMinSize        = register("map.min.size", minSize, nonNegative)
	MapMaxSize        = register("map.max.size", maxSize, nonNegative)
	MapNullable       = register("map.nullable", false, nil)
	MapKeysNullable   = register("map.keys.nullable", false, nil)
	MapValuesNullable = register("map.values.nullable", false, nil)
	MapKeyRetries     = register("map.key.retries", 10, nonNegative)

	StringMinLength  = register("string.min.length", 3, nonNegative)
	StringMaxLength  = register("string.max.length", 10, nonNegative)
	StringAllowEmpty = register("string.allow.empty", false, nil)
	StringNullable   = register("string.nullable", false, nil)

	IntegerMin = register("integer.min", int64(1), nil)
	IntegerMax = register("integer.max", int64(numericMax), nil)

	FloatMin = register("float.min", float64(1), nil)
	FloatMax = register("float.max", float64(numericMax), nil)

	PointerNullable     = register("pointer.nullable", false, nil)
	NullableProbability = register("nullable.probability", 1.0/6, probability)

	MaxDepth              = register("max.depth", 8, nonNegative)
	ModeKey               = register("mode", ModeStrict, validMode)
	Seed                  = register("seed", int64(0), nil)
	BeanValidationEnabled = register("bean.validation.enabled", false, nil)
)

// ranges lists min/max pairs validated and adjusted when layers are merged.
var ranges = [][2]*Key{
	{ArrayMinLength, ArrayMaxLength},
	{CollectionMinSize, CollectionMaxSize},
	{MapMinSize, MapMaxSize},
	{StringMinLength, StringMaxLength},
	{IntegerMin, IntegerMax},
	{FloatMin, FloatMax},
}

func register[T any](name string, def T, validate func(any) error) *Key {
	k := &Key{
		name:     name,
		typ:      reflect.TypeFor[T](),
		def:      def,
		validate: validate,
	}
	registry[name] = k

	return k
}

// Lookup returns the key registered under name.
func Lookup(name string) (*Key, bool) {
	k, ok := registry[name]
	return k, ok
}

// AllKeys returns every registered key sorted by name.
func AllKeys() []*Key {
	keys := make([]*Key, 0, len(registry))
	for _, k := range registry {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].name < keys[j].name })

	return keys
}

func nonNegative(v any) error {
	if v.(int) < 0 {
		return fmt.Errorf("must not be negative: %d", v)
	}

	return nil
}

func probability(v any) error {
	if p := v.(float64); !utils.IsInRange(0, p, 1) {
		return fmt.Errorf("must be between 0 and 1: %v", p)
	}

	return nil
}

func validMode(v any) error {
	if !v.(Mode).IsValid() {
		return fmt.Errorf("unknown mode %q", v)
	}

	return nil
}
