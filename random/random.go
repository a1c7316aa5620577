// Package random provides the seeded pseudo-random source used by a single
// creation request.
//
// A Source is deterministic for a given seed: the same seed yields the same
// sequence of draws on every platform, which is what makes generated fixtures
// reproducible. A Source is not safe for concurrent use; every creation
// request owns its own instance.
package random

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/instancio/instancio-sub017/utils"
)

// Random is the set of ranged primitives generators draw from.
// All ranges are inclusive on both ends.
type Random interface {
	// Seed returns the seed this source was created with.
	Seed() int64

	Bool() bool
	// TrueOrFalse returns true with the given probability in [0, 1].
	TrueOrFalse(probability float64) bool
	// DiceRoll returns true with a 1/6 chance if precondition holds, false otherwise.
	DiceRoll(precondition bool) bool

	IntRange(min, max int) int
	Int64Range(min, max int64) int64
	Uint64Range(min, max uint64) uint64
	Float64Range(min, max float64) float64
	CharRange(min, max rune) rune

	UpperCaseAlphabetic(length int) string
	LowerCaseAlphabetic(length int) string
	Alphanumeric(length int) string
	Digits(length int) string
	StringOf(length int, chars []rune) string

	// Read fills p with random bytes. It never fails.
	Read(p []byte) (int, error)
}

// Source is the default Random implementation backed by a PCG generator.
type Source struct {
	seed int64
	rnd  *rand.Rand
}

var _ Random = (*Source)(nil)

// New creates a deterministic source for the given seed.
func New(seed int64) *Source {
	return &Source{
		seed: seed,
		rnd:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// NewTimeSeeded creates a source seeded from the wall clock.
// The chosen seed is available through Seed so a failing run can be replayed.
func NewTimeSeeded() *Source {
	return New(time.Now().UnixNano())
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Bool returns true or false with equal probability.
func (s *Source) Bool() bool {
	return s.rnd.IntN(2) == 1
}

// TrueOrFalse returns true with the given probability.
func (s *Source) TrueOrFalse(probability float64) bool {
	if !utils.IsInRange(0, probability, 1) {
		panic(fmt.Sprintf("probability must be between 0 and 1, inclusive: %v", probability))
	}

	return s.rnd.Float64() < probability
}

// DiceRoll returns true with a 1/6 chance when precondition holds.
func (s *Source) DiceRoll(precondition bool) bool {
	return precondition && s.rnd.IntN(6) == 1
}

// IntRange returns a value in [min, max].
func (s *Source) IntRange(min, max int) int {
	return int(s.Int64Range(int64(min), int64(max)))
}

// Int64Range returns a value in [min, max].
func (s *Source) Int64Range(min, max int64) int64 {
	checkRange(min <= max, min, max)

	if min == max {
		return min
	}

	span := uint64(max - min)
	if span == ^uint64(0) {
		return int64(s.rnd.Uint64())
	}

	return min + int64(s.rnd.Uint64N(span+1))
}

// Uint64Range returns a value in [min, max].
func (s *Source) Uint64Range(min, max uint64) uint64 {
	checkRange(min <= max, min, max)

	if min == max {
		return min
	}

	span := max - min
	if span == ^uint64(0) {
		return s.rnd.Uint64()
	}

	return min + s.rnd.Uint64N(span+1)
}

// Float64Range returns a value in [min, max).
// When min == max, min is returned.
func (s *Source) Float64Range(min, max float64) float64 {
	checkRange(min <= max, min, max)

	if min == max {
		return min
	}

	return min + s.rnd.Float64()*(max-min)
}

// CharRange returns a rune in [min, max].
func (s *Source) CharRange(min, max rune) rune {
	return rune(s.Int64Range(int64(min), int64(max)))
}

// UpperCaseAlphabetic returns a string of A-Z characters.
func (s *Source) UpperCaseAlphabetic(length int) string {
	return s.fill(length, func() rune { return s.CharRange('A', 'Z') })
}

// LowerCaseAlphabetic returns a string of a-z characters.
func (s *Source) LowerCaseAlphabetic(length int) string {
	return s.fill(length, func() rune { return s.CharRange('a', 'z') })
}

// Digits returns a string of 0-9 characters.
func (s *Source) Digits(length int) string {
	return s.fill(length, func() rune { return s.CharRange('0', '9') })
}

// Alphanumeric returns a string of mixed-case letters and digits.
func (s *Source) Alphanumeric(length int) string {
	return s.fill(length, func() rune {
		switch s.rnd.IntN(3) {
		case 0:
			return s.CharRange('0', '9')
		case 1:
			return s.CharRange('a', 'z')
		default:
			return s.CharRange('A', 'Z')
		}
	})
}

// StringOf returns a string of the given length drawn from chars.
func (s *Source) StringOf(length int, chars []rune) string {
	if len(chars) == 0 {
		panic("character set must have at least one element")
	}

	return s.fill(length, func() rune { return chars[s.rnd.IntN(len(chars))] })
}

// Read fills p with random bytes.
func (s *Source) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(s.rnd.Uint32())
	}

	return len(p), nil
}

func (s *Source) fill(length int, next func() rune) string {
	if length < 0 {
		panic(fmt.Sprintf("length must not be negative: %d", length))
	}

	out := make([]rune, length)
	for i := range out {
		out[i] = next()
	}

	return string(out)
}

// Choice returns a random element of items. It panics on an empty slice.
func Choice[T any](r Random, items []T) T {
	if len(items) == 0 {
		panic("cannot choose from an empty slice")
	}

	return items[r.IntRange(0, len(items)-1)]
}

// Shuffle permutes items in place.
func Shuffle[T any](r Random, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.IntRange(0, i)
		items[i], items[j] = items[j], items[i]
	}
}

func checkRange[T int64 | uint64 | float64](ok bool, min, max T) {
	if !ok {
		panic(fmt.Sprintf("min must be less than or equal to max: min=%v, max=%v", min, max))
	}
}
