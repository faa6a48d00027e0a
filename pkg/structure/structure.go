// Package structure contains type-related operations, such as converting
// numbers, doing arithmetic on values of type any and checking truthiness.
package structure

import (
	"math"
	"math/big"

	"github.com/goccy/go-reflect"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Number is the set of built-in numeric types.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// IsNumber reports whether v holds a built-in number.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// AsNumber converts any built-in number to a [big.Float], so that values of
// different kinds can be compared without precision loss.
func AsNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		if math.IsNaN(float64(n)) {
			return nil, false
		}
		r.SetFloat64(float64(n))
	case float64:
		if math.IsNaN(n) {
			return nil, false
		}
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}

// AsFloat converts any built-in number to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// AsInteger converts any built-in number to int and returns a flag that informs
// if the argument is a valid integer. Integers beyond the range of int are
// clamped to it.
func AsInteger(v any) (int, bool) {
	switch t := v.(type) {
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case uint:
		return int(min(t, math.MaxInt)), true
	case uint64:
		return int(min(t, math.MaxInt)), true
	}
	i, ok := asInt64(v)
	return int(min(max(i, math.MinInt), math.MaxInt)), ok
}

func floatToInt(f float64) (int, bool) {
	if math.Trunc(f) != f || math.IsInf(f, 0) {
		return 0, false
	}
	// float64(math.MaxInt) rounds up to 2^63.
	if f >= float64(math.MaxInt) {
		return math.MaxInt, true
	}
	if f <= float64(math.MinInt) {
		return math.MinInt, true
	}
	return int(f), true
}

// asInt64 reports false for unsigned values above math.MaxInt64.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	default:
		return 0, false
	}
}

type op uint8

const (
	opAdd op = iota
	opMul
)

func apply[T Number](o op, a, b T) T {
	if o == opAdd {
		return a + b
	}
	return a * b
}

// Add returns a+b. If both values have the same type, so does the result.
// Otherwise integers are added as int64 and any other pair of numbers as
// float64. The flag is false if either value is not a number.
func Add(a, b any) (any, bool) {
	return arith(opAdd, a, b)
}

// Mul returns a*b, following the same typing rules as [Add].
func Mul(a, b any) (any, bool) {
	return arith(opMul, a, b)
}

func arith(o op, a, b any) (any, bool) {
	if res, ok := sameType(o, a, b); ok {
		return res, true
	}
	if !IsNumber(a) || !IsNumber(b) {
		return nil, false
	}
	if x, ok := asInt64(a); ok {
		if y, ok := asInt64(b); ok {
			return apply(o, x, y), true
		}
	}
	x, _ := AsFloat(a)
	y, _ := AsFloat(b)
	return apply(o, x, y), true
}

func sameType(o op, a, b any) (any, bool) {
	switch x := a.(type) {
	case int:
		return applySame(o, x, b)
	case int8:
		return applySame(o, x, b)
	case int16:
		return applySame(o, x, b)
	case int32:
		return applySame(o, x, b)
	case int64:
		return applySame(o, x, b)
	case uint:
		return applySame(o, x, b)
	case uint8:
		return applySame(o, x, b)
	case uint16:
		return applySame(o, x, b)
	case uint32:
		return applySame(o, x, b)
	case uint64:
		return applySame(o, x, b)
	case float32:
		return applySame(o, x, b)
	case float64:
		return applySame(o, x, b)
	default:
		return nil, false
	}
}

func applySame[T Number](o op, x T, b any) (any, bool) {
	y, ok := b.(T)
	if !ok {
		return nil, false
	}
	return apply(o, x, y), true
}

// Zero returns the zero value of the numeric type of v, or int 0 if v is not
// a number.
func Zero(v any) any {
	switch v.(type) {
	case int8:
		return int8(0)
	case int16:
		return int16(0)
	case int32:
		return int32(0)
	case int64:
		return int64(0)
	case uint:
		return uint(0)
	case uint8:
		return uint8(0)
	case uint16:
		return uint16(0)
	case uint32:
		return uint32(0)
	case uint64:
		return uint64(0)
	case float32:
		return float32(0)
	case float64:
		return float64(0)
	default:
		return 0
	}
}

// IsNil reports whether v is nil or a nil pointer, map, slice, channel,
// function or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	r := reflect.ValueNoEscapeOf(v)
	switch r.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan,
		reflect.Func, reflect.Interface:
		return r.IsNil()
	default:
		return false
	}
}

// Truthy reports whether v would be considered set in a boolean context:
// nil, false, zero, NaN, the empty string and the BSON null and undefined
// values are not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil, bson.Null, bson.Undefined:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	if n, ok := asInt64(v); ok {
		return n != 0
	}
	return true
}

// Contains checks if the given value is present in the slice.
func Contains[T any, S ~[]T](s S, t T, fn func(a T, b T) (bool, error)) (bool, error) {
	var ok bool
	var err error
	for _, i := range s {
		if ok, err = fn(i, t); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
