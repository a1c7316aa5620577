package constraint

import (
	"math"
	"reflect"

	"github.com/instancio/instancio-sub017/generator"
	"github.com/instancio/instancio-sub017/primitive"
	"github.com/instancio/instancio-sub017/settings"
)

// integerRange draws integers within min/max, filling an open side from the
// integer.* settings and clamping to the kind.
type integerRange struct {
	kind     primitive.KindEnum
	min, max *float64
}

func (g integerRange) Generate(c *generator.Context) (any, error) {
	lo, hi := c.Settings.Int64(settings.IntegerMin), c.Settings.Int64(settings.IntegerMax)

	if g.min != nil {
		lo = int64(math.Ceil(*g.min))
		hi = max(hi, lo)
	}

	if g.max != nil {
		hi = int64(math.Floor(*g.max))
		lo = min(lo, hi)
	}

	klo, khi := g.kind.Limits()
	lo, hi = max(lo, klo), min(hi, khi)
	if lo > hi {
		lo = hi
	}

	v := reflect.New(c.Node.Target).Elem()
	if g.kind.IsUnsigned() {
		v.SetUint(c.Random.Uint64Range(uint64(lo), uint64(hi)))
	} else {
		v.SetInt(c.Random.Int64Range(lo, hi))
	}

	return v.Interface(), nil
}

type floatRange struct {
	min, max *float64
}

func (g floatRange) Generate(c *generator.Context) (any, error) {
	lo, hi := c.Settings.Float64(settings.FloatMin), c.Settings.Float64(settings.FloatMax)

	if g.min != nil {
		lo = *g.min
		hi = max(hi, lo)
	}

	if g.max != nil {
		hi = *g.max
		lo = min(lo, hi)
	}

	v := reflect.New(c.Node.Target).Elem()
	v.SetFloat(c.Random.Float64Range(lo, hi))

	return v.Interface(), nil
}

// email produces addresses like "kqzt@mxwe.com".
type email struct{}

var domains = []string{"com", "org", "net", "io"}

func (email) Generate(c *generator.Context) (any, error) {
	user := c.Random.LowerCaseAlphabetic(c.Random.IntRange(3, 10))
	host := c.Random.LowerCaseAlphabetic(c.Random.IntRange(3, 8))
	tld := domains[c.Random.IntRange(0, len(domains)-1)]

	v := reflect.New(c.Node.Target).Elem()
	v.SetString(user + "@" + host + "." + tld)

	return v.Interface(), nil
}
