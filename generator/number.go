package generator

import (
	"fmt"
	"reflect"

	"github.com/instancio/instancio-sub017/primitive"
	"github.com/instancio/instancio-sub017/settings"
)

type IntegerType interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type FloatType interface {
	~float32 | ~float64
}

// IntSpec generates integers of type T. Without a range it draws from the
// integer.min and integer.max settings, clamped to the limits of T.
type IntSpec[T IntegerType] struct {
	min, max T
	rangeSet bool
	nullable bool
	err      error
}

// Int returns a configurable integer generator.
func Int[T IntegerType]() *IntSpec[T] {
	return &IntSpec[T]{}
}

// Range sets the inclusive bounds.
func (s *IntSpec[T]) Range(min, max T) *IntSpec[T] {
	if min > max {
		s.err = fmt.Errorf("%w: integer range [%v, %v]", ErrInvalidSpec, min, max)
	}

	s.min, s.max, s.rangeSet = min, max, true

	return s
}

func (s *IntSpec[T]) Nullable() *IntSpec[T] {
	s.nullable = true
	return s
}

func (s *IntSpec[T]) IsNullable() bool {
	return s.nullable
}

func (s *IntSpec[T]) Generate(c *Context) (any, error) {
	if s.err != nil {
		return nil, s.err
	}

	kind := primitive.Underlying(reflect.TypeFor[T]())

	if !s.rangeSet {
		lo, hi := clampInt(kind, c.Settings.Int64(settings.IntegerMin), c.Settings.Int64(settings.IntegerMax))
		if kind.IsUnsigned() {
			return T(c.Random.Uint64Range(uint64(lo), uint64(hi))), nil
		}
		return T(c.Random.Int64Range(lo, hi)), nil
	}

	if kind.IsUnsigned() {
		return T(c.Random.Uint64Range(uint64(s.min), uint64(s.max))), nil
	}

	return T(c.Random.Int64Range(int64(s.min), int64(s.max))), nil
}

// FloatSpec generates floating point numbers of type T in [min, max).
type FloatSpec[T FloatType] struct {
	min, max T
	rangeSet bool
	nullable bool
	err      error
}

// Float returns a configurable float generator.
func Float[T FloatType]() *FloatSpec[T] {
	return &FloatSpec[T]{}
}

// Range sets the bounds.
func (s *FloatSpec[T]) Range(min, max T) *FloatSpec[T] {
	if min > max {
		s.err = fmt.Errorf("%w: float range [%v, %v]", ErrInvalidSpec, min, max)
	}

	s.min, s.max, s.rangeSet = min, max, true

	return s
}

func (s *FloatSpec[T]) Nullable() *FloatSpec[T] {
	s.nullable = true
	return s
}

func (s *FloatSpec[T]) IsNullable() bool {
	return s.nullable
}

func (s *FloatSpec[T]) Generate(c *Context) (any, error) {
	if s.err != nil {
		return nil, s.err
	}

	lo, hi := float64(s.min), float64(s.max)
	if !s.rangeSet {
		lo, hi = c.Settings.Float64(settings.FloatMin), c.Settings.Float64(settings.FloatMax)
	}

	return T(c.Random.Float64Range(lo, hi)), nil
}

// BoolSpec generates booleans, true with the given probability.
type BoolSpec struct {
	probability float64
	err         error
}

func Bool() *BoolSpec {
	return &BoolSpec{probability: 0.5}
}

// Probability sets the chance of true.
func (s *BoolSpec) Probability(p float64) *BoolSpec {
	if p < 0 || p > 1 {
		s.err = fmt.Errorf("%w: probability %v", ErrInvalidSpec, p)
	}

	s.probability = p

	return s
}

func (s *BoolSpec) Generate(c *Context) (any, error) {
	if s.err != nil {
		return nil, s.err
	}

	return c.Random.TrueOrFalse(s.probability), nil
}
