package generator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/instancio/instancio-sub017/random"
)

// TimeSpec generates times in [from, to) with second precision, in UTC.
type TimeSpec struct {
	from, to time.Time
	err      error
}

// Time returns a generator over DefaultTimeFrom to DefaultTimeTo.
func Time() *TimeSpec {
	return &TimeSpec{from: DefaultTimeFrom, to: DefaultTimeTo}
}

func (s *TimeSpec) Range(from, to time.Time) *TimeSpec {
	if to.Before(from) {
		s.err = fmt.Errorf("%w: time range [%s, %s]", ErrInvalidSpec, from, to)
	}

	s.from, s.to = from, to

	return s
}

func (s *TimeSpec) Generate(c *Context) (any, error) {
	if s.err != nil {
		return nil, s.err
	}

	lo, hi := s.from.Unix(), s.to.Unix()
	if hi > lo {
		hi--
	}

	return time.Unix(c.Random.Int64Range(lo, hi), 0).UTC(), nil
}

type uuidGenerator struct{}

// UUID returns a generator of version 4 UUIDs drawn from the request
// random source.
func UUID() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) Generate(c *Context) (any, error) {
	return uuid.NewRandomFromReader(c.Random)
}

// OneOfSpec picks one of a fixed set of values.
type OneOfSpec struct {
	values []any
}

// OneOf returns a generator choosing uniformly among values.
func OneOf(values ...any) *OneOfSpec {
	return &OneOfSpec{values: values}
}

func (s *OneOfSpec) Generate(c *Context) (any, error) {
	if len(s.values) == 0 {
		return nil, fmt.Errorf("%w: one-of requires at least one value", ErrInvalidSpec)
	}

	return random.Choice(c.Random, s.values), nil
}

// enumValues validates that values share one type and returns it.
func enumValues(values []any) (reflect.Type, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrEnumValues)
	}

	var typ reflect.Type
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("%w: value %d is nil", ErrEnumValues, i)
		}

		t := reflect.TypeOf(v)
		if typ != nil && t != typ {
			return nil, fmt.Errorf("%w: mixed types %s and %s", ErrEnumValues, typ, t)
		}
		typ = t
	}

	return typ, nil
}
