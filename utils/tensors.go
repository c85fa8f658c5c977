package utils

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/x448/float16"
	"gorgonia.org/tensor"
)

// Float16 describes IEEE 754 half precision output elements.
var Float16 = tensor.Dtype{Type: reflect.TypeOf(float16.Float16(0))}

// DtypeByName maps an output type name to its element type.
func DtypeByName(name string) (tensor.Dtype, error) {
	switch name {
	case "float":
		return tensor.Float32, nil
	case "double":
		return tensor.Float64, nil
	case "half":
		return Float16, nil
	case "int32":
		return tensor.Int32, nil
	}
	return tensor.Dtype{}, fmt.Errorf("unsupported output type %q", name)
}

// ElementSize is the width in bytes of one element of dt.
func ElementSize(dt tensor.Dtype) int {
	return int(dt.Size())
}

// PutElement writes v little-endian as the i-th element of buf.
func PutElement(buf []byte, dt tensor.Dtype, i int, v float64) error {
	off := i * ElementSize(dt)
	if i < 0 || off+ElementSize(dt) > len(buf) {
		return fmt.Errorf("element %d out of range for %d byte buffer of %v", i, len(buf), dt)
	}

	switch dt {
	case tensor.Float32:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
	case tensor.Float64:
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
	case Float16:
		binary.LittleEndian.PutUint16(buf[off:], float16.Fromfloat32(float32(v)).Bits())
	case tensor.Int32:
		binary.LittleEndian.PutUint32(buf[off:], uint32(int32(v)))
	default:
		return fmt.Errorf("unsupported element type %v", dt)
	}
	return nil
}

// Element reads back the i-th element of buf as float64.
func Element(buf []byte, dt tensor.Dtype, i int) (float64, error) {
	off := i * ElementSize(dt)
	if i < 0 || off+ElementSize(dt) > len(buf) {
		return 0, fmt.Errorf("element %d out of range for %d byte buffer of %v", i, len(buf), dt)
	}

	switch dt {
	case tensor.Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))), nil
	case tensor.Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[off:])), nil
	case Float16:
		return float64(float16.Frombits(binary.LittleEndian.Uint16(buf[off:])).Float32()), nil
	case tensor.Int32:
		return float64(int32(binary.LittleEndian.Uint32(buf[off:]))), nil
	}
	return 0, fmt.Errorf("unsupported element type %v", dt)
}
