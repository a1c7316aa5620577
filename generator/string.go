package generator

import (
	"fmt"

	"github.com/instancio/instancio-sub017/settings"
)

type stringCase int

const (
	upperCase stringCase = iota
	lowerCase
	mixedCase
	alphanumeric
	digits
)

// StringSpec generates strings. Unset options fall back to the string.*
// settings. The default alphabet is upper case A-Z.
type StringSpec struct {
	minLen, maxLen int
	lengthSet      bool
	prefix, suffix string
	allowEmpty     *bool
	nullable       bool
	chars          stringCase
	err            error
}

// String returns a configurable string generator.
func String() *StringSpec {
	return &StringSpec{}
}

// Length sets the inclusive length range.
func (s *StringSpec) Length(min, max int) *StringSpec {
	if min < 0 || min > max {
		s.err = fmt.Errorf("%w: string length range [%d, %d]", ErrInvalidSpec, min, max)
	}

	s.minLen, s.maxLen, s.lengthSet = min, max, true

	return s
}

// ExactLength sets a fixed length.
func (s *StringSpec) ExactLength(n int) *StringSpec {
	return s.Length(n, n)
}

func (s *StringSpec) Prefix(p string) *StringSpec {
	s.prefix = p
	return s
}

func (s *StringSpec) Suffix(p string) *StringSpec {
	s.suffix = p
	return s
}

// AllowEmpty lets the generator return "" with a 1/6 chance.
func (s *StringSpec) AllowEmpty() *StringSpec {
	allow := true
	s.allowEmpty = &allow

	return s
}

// Nullable lets the engine leave a nillable node nil.
func (s *StringSpec) Nullable() *StringSpec {
	s.nullable = true
	return s
}

func (s *StringSpec) UpperCase() *StringSpec    { s.chars = upperCase; return s }
func (s *StringSpec) LowerCase() *StringSpec    { s.chars = lowerCase; return s }
func (s *StringSpec) MixedCase() *StringSpec    { s.chars = mixedCase; return s }
func (s *StringSpec) Alphanumeric() *StringSpec { s.chars = alphanumeric; return s }
func (s *StringSpec) Digits() *StringSpec       { s.chars = digits; return s }

func (s *StringSpec) IsNullable() bool {
	return s.nullable
}

func (s *StringSpec) Generate(c *Context) (any, error) {
	if s.err != nil {
		return nil, s.err
	}

	allowEmpty := c.Settings.Bool(settings.StringAllowEmpty)
	if s.allowEmpty != nil {
		allowEmpty = *s.allowEmpty
	}

	if c.Random.DiceRoll(allowEmpty) {
		return "", nil
	}

	lo, hi := s.minLen, s.maxLen
	if !s.lengthSet {
		lo, hi = c.Settings.IntRange(settings.StringMinLength, settings.StringMaxLength)
	}

	n := c.Random.IntRange(lo, hi)

	var body string
	switch s.chars {
	case lowerCase:
		body = c.Random.LowerCaseAlphabetic(n)
	case mixedCase:
		body = c.Random.StringOf(n, mixedChars)
	case alphanumeric:
		body = c.Random.Alphanumeric(n)
	case digits:
		body = c.Random.Digits(n)
	default:
		body = c.Random.UpperCaseAlphabetic(n)
	}

	return s.prefix + body + s.suffix, nil
}

var mixedChars = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

