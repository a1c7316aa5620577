package generator

import (
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/settings"
)

// sizing is the size configuration shared by container specs.
type sizing struct {
	min, max int
	set      bool
	err      error
}

func (s *sizing) setRange(min, max int) {
	if min < 0 || min > max {
		s.err = fmt.Errorf("%w: size range [%d, %d]", ErrInvalidSpec, min, max)
	}

	s.min, s.max, s.set = min, max, true
}

func (s *sizing) size(c *Context, minKey, maxKey *settings.Key) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	lo, hi := s.min, s.max
	if !s.set {
		lo, hi = c.Settings.IntRange(minKey, maxKey)
	}

	return c.Random.IntRange(lo, hi), nil
}

// SliceSpec populates slices. Without a size it draws from the
// collection.min.size and collection.max.size settings.
type SliceSpec struct {
	sizing
	nullable         bool
	nullableElements bool
}

func Slice() *SliceSpec {
	return &SliceSpec{}
}

// Size sets an exact number of elements.
func (s *SliceSpec) Size(n int) *SliceSpec {
	s.setRange(n, n)
	return s
}

// Range sets the inclusive size bounds.
func (s *SliceSpec) Range(min, max int) *SliceSpec {
	s.setRange(min, max)
	return s
}

func (s *SliceSpec) Nullable() *SliceSpec {
	s.nullable = true
	return s
}

// NullableElements lets nillable elements be nil.
func (s *SliceSpec) NullableElements() *SliceSpec {
	s.nullableElements = true
	return s
}

func (s *SliceSpec) IsNullable() bool {
	return s.nullable
}

func (s *SliceSpec) Generate(c *Context) (any, error) {
	return reflect.MakeSlice(c.Node.Target, 0, 0).Interface(), nil
}

func (s *SliceSpec) Hints(c *Context) (Hints, error) {
	n, err := s.size(c, settings.CollectionMinSize, settings.CollectionMaxSize)
	if err != nil {
		return Hints{}, err
	}

	return Hints{
		Size:             n,
		NullableElements: s.nullableElements || c.Settings.Bool(settings.CollectionElementsNullable),
	}, nil
}

// arrayGenerator fills every element of an array.
type arrayGenerator struct{}

func (arrayGenerator) Generate(c *Context) (any, error) {
	return zero(c), nil
}

func (arrayGenerator) Hints(c *Context) (Hints, error) {
	return Hints{
		Size:             c.Node.Target.Len(),
		NullableElements: c.Settings.Bool(settings.CollectionElementsNullable),
	}, nil
}

// MapSpec populates maps. Without a size it draws from the map.min.size and
// map.max.size settings. Duplicate keys are retried up to map.key.retries
// times, so the resulting map may hold fewer entries than requested.
type MapSpec struct {
	sizing
	nullable       bool
	nullableKeys   bool
	nullableValues bool
}

func Map() *MapSpec {
	return &MapSpec{}
}

// Size sets an exact number of entries.
func (s *MapSpec) Size(n int) *MapSpec {
	s.setRange(n, n)
	return s
}

// Range sets the inclusive size bounds.
func (s *MapSpec) Range(min, max int) *MapSpec {
	s.setRange(min, max)
	return s
}

func (s *MapSpec) Nullable() *MapSpec {
	s.nullable = true
	return s
}

func (s *MapSpec) NullableKeys() *MapSpec {
	s.nullableKeys = true
	return s
}

func (s *MapSpec) NullableValues() *MapSpec {
	s.nullableValues = true
	return s
}

func (s *MapSpec) IsNullable() bool {
	return s.nullable
}

func (s *MapSpec) Generate(c *Context) (any, error) {
	return reflect.MakeMap(c.Node.Target).Interface(), nil
}

func (s *MapSpec) Hints(c *Context) (Hints, error) {
	n, err := s.size(c, settings.MapMinSize, settings.MapMaxSize)
	if err != nil {
		return Hints{}, err
	}

	return Hints{
		Size:           n,
		NullableKeys:   s.nullableKeys || c.Settings.Bool(settings.MapKeysNullable),
		NullableValues: s.nullableValues || c.Settings.Bool(settings.MapValuesNullable),
	}, nil
}
