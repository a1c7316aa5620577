// Package settings provides the layered configuration consulted by the
// engine: engine defaults, caller-wide settings and per-call overrides.
//
// A Settings value is a typed key/value map over a fixed set of keys.
// Layers are combined with Merge, which validates min/max pairs and returns
// a locked snapshot that can be shared read-only between requests.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
)

var (
	ErrUnknownKey   = errors.New("unknown setting key")
	ErrInvalidValue = errors.New("invalid setting value")
	ErrInvalidRange = errors.New("invalid setting range")
	ErrLocked       = errors.New("settings are locked")
)

// Settings holds explicitly set values. Keys that were not set fall back to
// their defaults on read.
type Settings struct {
	values map[*Key]any
	locked bool
}

// New creates an empty, unlocked Settings layer.
func New() *Settings {
	return &Settings{values: make(map[*Key]any)}
}

// Defaults returns a locked snapshot containing only engine defaults.
func Defaults() *Settings {
	return New().Lock()
}

// Set stores value under key. The value is converted to the key type when
// the conversion is lossless (e.g. an int for an int64 key).
func (s *Settings) Set(key *Key, value any) error {
	if s.locked {
		return ErrLocked
	}

	if key == nil {
		return fmt.Errorf("%w: nil key", ErrUnknownKey)
	}

	v, err := coerce(key, value)
	if err != nil {
		return err
	}

	if key.validate != nil {
		if err := key.validate(v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key.name, err)
		}
	}

	s.values[key] = v

	return nil
}

// SetByName stores value under the key registered with the given name.
func (s *Settings) SetByName(name string, value any) error {
	key, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}

	return s.Set(key, value)
}

// MustSet is like Set but panics on error. It returns s for chaining.
func (s *Settings) MustSet(key *Key, value any) *Settings {
	if err := s.Set(key, value); err != nil {
		panic(err)
	}

	return s
}

// IsSet reports whether key was explicitly set on this layer.
func (s *Settings) IsSet(key *Key) bool {
	_, ok := s.values[key]
	return ok
}

// Lock makes s immutable and returns it.
func (s *Settings) Lock() *Settings {
	s.locked = true
	return s
}

// IsLocked reports whether s is immutable.
func (s *Settings) IsLocked() bool {
	return s.locked
}

// Get returns the value of key or its default.
func (s *Settings) Get(key *Key) any {
	if s != nil {
		if v, ok := s.values[key]; ok {
			return v
		}
	}

	return key.def
}

func (s *Settings) Int(key *Key) int         { return s.Get(key).(int) }
func (s *Settings) Int64(key *Key) int64     { return s.Get(key).(int64) }
func (s *Settings) Float64(key *Key) float64 { return s.Get(key).(float64) }
func (s *Settings) Bool(key *Key) bool       { return s.Get(key).(bool) }
func (s *Settings) Mode() Mode               { return s.Get(ModeKey).(Mode) }

// IntRange returns the values of a min/max pair.
func (s *Settings) IntRange(minKey, maxKey *Key) (int, int) {
	return s.Int(minKey), s.Int(maxKey)
}

// SeedValue returns the configured seed, if any.
func (s *Settings) SeedValue() (int64, bool) {
	if s == nil || !s.IsSet(Seed) {
		return 0, false
	}

	return s.Int64(Seed), true
}

// Merge combines layers in order of increasing precedence: values from later
// layers override earlier ones and defaults apply to anything left unset.
// Nil layers are skipped. The result is validated and locked.
//
// For every min/max pair, when min exceeds max and both were set explicitly
// ErrInvalidRange is returned; when only one side was set, the other side is
// adjusted to match.
func Merge(layers ...*Settings) (*Settings, error) {
	out := New()

	for _, layer := range layers {
		if layer == nil {
			continue
		}
		maps.Copy(out.values, layer.values)
	}

	for _, pair := range ranges {
		if err := out.adjustRange(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}

	return out.Lock(), nil
}

func (s *Settings) adjustRange(minKey, maxKey *Key) error {
	lo, hi := toFloat(s.Get(minKey)), toFloat(s.Get(maxKey))
	if lo <= hi {
		return nil
	}

	minSet, maxSet := s.IsSet(minKey), s.IsSet(maxKey)

	switch {
	case minSet && maxSet:
		return fmt.Errorf("%w: %s (%v) must be less than or equal to %s (%v)",
			ErrInvalidRange, minKey.name, s.Get(minKey), maxKey.name, s.Get(maxKey))
	case minSet:
		s.values[maxKey] = s.Get(minKey)
	default:
		s.values[minKey] = s.Get(maxKey)
	}

	return nil
}

// Clone returns an unlocked copy of s.
func (s *Settings) Clone() *Settings {
	out := New()
	if s != nil {
		maps.Copy(out.values, s.values)
	}

	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return math.NaN()
	}
}

// coerce converts value to the key type without losing information.
func coerce(key *Key, value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: %s: nil value", ErrInvalidValue, key.name)
	}

	rv := reflect.ValueOf(value)
	if rv.Type() == key.typ {
		return value, nil
	}

	fail := func() (any, error) {
		return nil, fmt.Errorf("%w: %s expects %s, got %T(%v)", ErrInvalidValue, key.name, key.typ, value, value)
	}

	switch key.typ.Kind() {
	case reflect.Int, reflect.Int64:
		var n int64
		switch {
		case rv.CanInt():
			n = rv.Int()
		case rv.CanUint() && rv.Uint() <= math.MaxInt64:
			n = int64(rv.Uint())
		case rv.CanFloat() && rv.Float() == math.Trunc(rv.Float()) && math.Abs(rv.Float()) < 1<<53:
			n = int64(rv.Float())
		default:
			return fail()
		}
		if key.typ.Kind() == reflect.Int && (n < math.MinInt || n > math.MaxInt) {
			return fail()
		}
		return reflect.ValueOf(n).Convert(key.typ).Interface(), nil
	case reflect.Float64:
		switch {
		case rv.CanFloat():
			return rv.Float(), nil
		case rv.CanInt():
			return float64(rv.Int()), nil
		case rv.CanUint():
			return float64(rv.Uint()), nil
		}
	case reflect.String:
		if rv.Kind() == reflect.String {
			return rv.Convert(key.typ).Interface(), nil
		}
	}

	return fail()
}
