package wire

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Helpers that coerce host-supplied values into the codec's canonical
// forms. The schema-driven encoder accepts any Go integer or float
// type for a numeric field as long as the value fits the declared
// width.

func coerceInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, errors.Newf("unsigned value %d overflows signed field", t)
		}
		return int64(t), nil
	default:
		return 0, errors.Newf("expected integer, got %T", v)
	}
}

func coerceUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case uint:
		return uint64(t), nil
	case uint8:
		return uint64(t), nil
	case uint16:
		return uint64(t), nil
	case uint32:
		return uint64(t), nil
	case uint64:
		return t, nil
	case int, int8, int16, int32, int64:
		i, _ := coerceInt64(t)
		if i < 0 {
			return 0, errors.Newf("negative value %d for unsigned field", i)
		}
		return uint64(i), nil
	default:
		return 0, errors.Newf("expected unsigned integer, got %T", v)
	}
}

func coerceFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, errors.Newf("expected float, got %T", v)
	}
}

func coerceBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.Newf("expected bool, got %T", v)
	}
	return b, nil
}

func coerceString(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", errors.Newf("expected string, got %T", v)
	}
}

func coerceBytes(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, errors.Newf("expected bytes, got %T", v)
	}
}

// fitsInt reports whether a signed value fits the declared bit width.
func fitsInt(v int64, bits int) bool {
	switch bits {
	case 8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case 16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case 32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	default:
		return true
	}
}

// fitsUint reports whether an unsigned value fits the declared bit
// width.
func fitsUint(v uint64, bits int) bool {
	switch bits {
	case 8:
		return v <= math.MaxUint8
	case 16:
		return v <= math.MaxUint16
	case 32:
		return v <= math.MaxUint32
	default:
		return true
	}
}
