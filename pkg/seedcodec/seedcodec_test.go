package seedcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt16RoundTrip(t *testing.T) {
	vals := []int16{0, 1, -1, 32767, -32768, 12345}
	for _, littleEndian := range []bool{true, false} {
		seg := EncodeInt16(vals, littleEndian)
		assert.Equal(t, Int16, seg.Encoding)
		assert.Len(t, seg.Data, 2*len(vals))

		samples, err := seg.Decode()
		require.NoError(t, err)
		assert.Equal(t, vals, samples.Int16s())
	}
}

func TestInt32RoundTrip(t *testing.T) {
	vals := []int32{0, 1, -1, 2147483647, -2147483648, 99}
	for _, littleEndian := range []bool{true, false} {
		seg := EncodeInt32(vals, littleEndian)
		samples, err := seg.Decode()
		require.NoError(t, err)
		assert.Equal(t, vals, samples.Int32s())
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	vals := []float32{0, 1.5, -2.25, 3.4e38, -1e-12}
	for _, littleEndian := range []bool{true, false} {
		seg := EncodeFloat32(vals, littleEndian)
		samples, err := seg.Decode()
		require.NoError(t, err)
		assert.Equal(t, vals, samples.Float32s())
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	vals := []float64{0, 1.5, -2.25, 1.7e308, 5e-324}
	for _, littleEndian := range []bool{true, false} {
		seg := EncodeFloat64(vals, littleEndian)
		samples, err := seg.Decode()
		require.NoError(t, err)
		assert.Equal(t, vals, samples.Float64s())
	}
}

func TestDecodeText(t *testing.T) {
	samples, err := Decode(Text, []byte("hello miniseed"), 14, true)
	require.NoError(t, err)
	assert.Equal(t, "hello miniseed", string(samples.Text()))
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode(Int32, make([]byte, 7), 2, true)
	require.Error(t, err)
	var codecErr *CodecError
	assert.ErrorAs(t, err, &codecErr)
}

func TestDecodeZeroSamples(t *testing.T) {
	// detection records carry no data but often a text encoding id
	samples, err := Decode(Text, nil, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 0, samples.Len())
}

func TestDecodeUnsupported(t *testing.T) {
	for _, encoding := range []uint8{Steim3, 16, 30, 32} {
		_, err := Decode(encoding, make([]byte, 64), 1, true)
		require.Error(t, err)
		var unsup *UnsupportedEncodingError
		assert.ErrorAs(t, err, &unsup, "encoding %d", encoding)
	}
}

func TestByteSwapTwiceIsIdentity(t *testing.T) {
	vals := []int32{1, -2, 300000, -400000}
	seg := EncodeInt32(vals, false)
	swapped := append([]byte(nil), seg.Data...)
	require.NoError(t, ByteSwap(Int32, swapped))

	le := EncodeInt32(vals, true)
	assert.Equal(t, le.Data, swapped)

	require.NoError(t, ByteSwap(Int32, swapped))
	assert.Equal(t, seg.Data, swapped)
}

func TestByteSwapBadLength(t *testing.T) {
	err := ByteSwap(Int32, make([]byte, 6))
	assert.Error(t, err)
}

func TestInt32Values(t *testing.T) {
	samples := NewInt16Samples([]int16{1, -2, 3})
	vals, err := samples.Int32Values()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, vals)

	_, err = NewFloat32Samples([]float32{1}).Int32Values()
	assert.Error(t, err)
}

func TestFloat64Values(t *testing.T) {
	samples := NewInt32Samples([]int32{1, -2})
	vals, err := samples.Float64Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, vals)

	_, err = NewTextSamples([]byte("x")).Float64Values()
	assert.Error(t, err)
}

func TestEncodingName(t *testing.T) {
	assert.Equal(t, "STEIM-2 Integer Compression", EncodingName(Steim2))
	assert.Contains(t, EncodingName(200), "unknown")
}

func TestCanDecode(t *testing.T) {
	assert.True(t, CanDecode(Steim1))
	assert.True(t, CanDecode(Int16))
	assert.False(t, CanDecode(Steim3))
	assert.False(t, CanDecode(Text))
}
