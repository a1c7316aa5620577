package primitive_test

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/instancio/instancio-sub017/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindDerived
	// KindDerived
	// KindDuration
	// KindTime
	// KindEnum(0)
}

func TestUnderlying(t *testing.T) {
	t.Parallel()

	type Level uint16

	assert.Equal(t, primitive.KindUint16, primitive.Underlying(reflect.TypeFor[Level]()))
	assert.Equal(t, primitive.KindInt64, primitive.Underlying(reflect.TypeFor[time.Duration]()))
	assert.Zero(t, primitive.Underlying(reflect.TypeFor[[]int]()))
	assert.Zero(t, primitive.Underlying(nil))
}

func TestLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   primitive.KindEnum
		lo, hi int64
	}{
		{primitive.KindInt8, math.MinInt8, math.MaxInt8},
		{primitive.KindInt16, math.MinInt16, math.MaxInt16},
		{primitive.KindInt64, math.MinInt64, math.MaxInt64},
		{primitive.KindUint8, 0, math.MaxUint8},
		{primitive.KindUint32, 0, math.MaxUint32},
		{primitive.KindUint64, 0, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			lo, hi := tt.kind.Limits()
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}

	assert.Panics(t, func() { primitive.KindString.Limits() })
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, primitive.KindUint.IsInteger())
	assert.True(t, primitive.KindFloat32.IsNumber())
	assert.True(t, primitive.KindComplex128.IsNumber())
	assert.False(t, primitive.KindBool.IsNumber())
	assert.False(t, primitive.KindDerived.IsInteger())
	assert.Equal(t, 128, primitive.KindComplex128.Bits())
}
