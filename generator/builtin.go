package generator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/instancio/instancio-sub017/node"
	"github.com/instancio/instancio-sub017/primitive"
	"github.com/instancio/instancio-sub017/settings"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
)

// Default bounds for generated times. Fixed so output depends on the seed only.
var (
	DefaultTimeFrom = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultTimeTo   = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// exact holds generators for types matched by identity.
var exact = map[reflect.Type]func() Generator{
	timeType:     func() Generator { return Time() },
	durationType: func() Generator { return durationGenerator{} },
	uuidType:     func() Generator { return UUID() },
}

// basic returns the built-in generator for a node whose type has the given
// underlying basic kind. The generated value has the node target type.
func basic(kind primitive.KindEnum) Generator {
	switch {
	case kind.IsInteger():
		return integerGenerator{kind: kind}
	case kind.IsFloat():
		return floatGenerator{}
	case kind.IsComplex():
		return complexGenerator{}
	case kind == primitive.KindBool:
		return boolGenerator{}
	case kind == primitive.KindString:
		return String()
	default:
		return nil
	}
}

type integerGenerator struct {
	kind primitive.KindEnum
}

func (g integerGenerator) Generate(c *Context) (any, error) {
	lo, hi := clampInt(g.kind, c.Settings.Int64(settings.IntegerMin), c.Settings.Int64(settings.IntegerMax))
	return drawInt(c, g.kind, lo, hi)
}

// clampInt narrows [lo, hi] to the values representable by kind.
func clampInt(kind primitive.KindEnum, lo, hi int64) (int64, int64) {
	klo, khi := kind.Limits()
	lo, hi = max(lo, klo), min(hi, khi)

	if lo > hi {
		lo = hi
	}

	return lo, hi
}

func drawInt(c *Context, kind primitive.KindEnum, lo, hi int64) (any, error) {
	v := reflect.New(c.Node.Target).Elem()

	if kind.IsUnsigned() {
		v.SetUint(c.Random.Uint64Range(uint64(lo), uint64(hi)))
	} else {
		v.SetInt(c.Random.Int64Range(lo, hi))
	}

	return v.Interface(), nil
}

type floatGenerator struct{}

func (floatGenerator) Generate(c *Context) (any, error) {
	lo, hi := c.Settings.Float64(settings.FloatMin), c.Settings.Float64(settings.FloatMax)

	v := reflect.New(c.Node.Target).Elem()
	v.SetFloat(c.Random.Float64Range(lo, hi))

	return v.Interface(), nil
}

type complexGenerator struct{}

func (complexGenerator) Generate(c *Context) (any, error) {
	lo, hi := c.Settings.Float64(settings.FloatMin), c.Settings.Float64(settings.FloatMax)

	v := reflect.New(c.Node.Target).Elem()
	v.SetComplex(complex(c.Random.Float64Range(lo, hi), c.Random.Float64Range(lo, hi)))

	return v.Interface(), nil
}

type boolGenerator struct{}

func (boolGenerator) Generate(c *Context) (any, error) {
	v := reflect.New(c.Node.Target).Elem()
	v.SetBool(c.Random.Bool())

	return v.Interface(), nil
}

// durationGenerator draws whole seconds between integer.min and integer.max.
type durationGenerator struct{}

func (durationGenerator) Generate(c *Context) (any, error) {
	lo, hi := c.Settings.Int64(settings.IntegerMin), c.Settings.Int64(settings.IntegerMax)
	return time.Duration(c.Random.Int64Range(lo, hi)) * time.Second, nil
}

// structGenerator populates exported fields one by one.
type structGenerator struct{}

func (structGenerator) Generate(c *Context) (any, error) { return zero(c), nil }

func (structGenerator) Hints(*Context) (Hints, error) { return Hints{}, nil }

// constructorGenerator generates the constructor parameters and calls it.
type constructorGenerator struct {
	ctor *node.Constructor
}

func (g constructorGenerator) Generate(c *Context) (any, error) {
	return nil, fmt.Errorf("constructor %s needs its arguments populated", g.ctor.Name)
}

func (constructorGenerator) Hints(*Context) (Hints, error) { return Hints{}, nil }

// IsStructPopulator reports whether g fills a struct field by field.
func IsStructPopulator(g Generator) bool {
	_, ok := g.(structGenerator)
	return ok
}

// IsConstructor reports whether g builds its node through a constructor.
func IsConstructor(g Generator) bool {
	_, ok := g.(constructorGenerator)
	return ok
}
