package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestDtypeByName(t *testing.T) {
	dt, err := DtypeByName("float")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, dt)
	assert.Equal(t, 4, ElementSize(dt))

	dt, err = DtypeByName("double")
	require.NoError(t, err)
	assert.Equal(t, 8, ElementSize(dt))

	dt, err = DtypeByName("half")
	require.NoError(t, err)
	assert.Equal(t, Float16, dt)
	assert.Equal(t, 2, ElementSize(dt))

	_, err = DtypeByName("int128")
	assert.Error(t, err)
}

func TestPutElement_LittleEndianLayout(t *testing.T) {
	buf := make([]byte, 8)
	require.NoError(t, PutElement(buf, tensor.Float32, 1, 1.0))
	assert.Equal(t, []byte{0, 0, 0, 0, 0x00, 0x00, 0x80, 0x3f}, buf)

	buf = make([]byte, 4)
	require.NoError(t, PutElement(buf, tensor.Int32, 0, -1))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf)

	buf = make([]byte, 2)
	require.NoError(t, PutElement(buf, Float16, 0, 1.0))
	assert.Equal(t, []byte{0x00, 0x3c}, buf)
}

func TestPutElement_ReadBack(t *testing.T) {
	for _, dt := range []tensor.Dtype{tensor.Float32, tensor.Float64, Float16, tensor.Int32} {
		buf := make([]byte, 3*ElementSize(dt))
		require.NoError(t, PutElement(buf, dt, 2, -3))
		v, err := Element(buf, dt, 2)
		require.NoError(t, err)
		assert.Equal(t, -3.0, v, "dtype %v", dt)
	}
}

func TestPutElement_OutOfRange(t *testing.T) {
	buf := make([]byte, 4)
	assert.Error(t, PutElement(buf, tensor.Float32, 1, 0))
	assert.Error(t, PutElement(buf, tensor.Float64, 0, 0))
	_, err := Element(buf, tensor.Float32, -1)
	assert.Error(t, err)
	assert.Error(t, PutElement(buf, tensor.Uint8, 0, 0))
}
