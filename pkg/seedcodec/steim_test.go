package seedcodec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refSamples() []int32 {
	data := []int32{1, 2, -10, 45, -999, 4008}
	for i := 0; i < 1000; i++ {
		data = append(data, 47)
	}
	return data
}

func TestSteim1RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		samples []int32
	}{
		{"single", []int32{42}},
		{"constant", []int32{5, 5, 5, 5, 5}},
		{"small diffs", []int32{0, 1, 2, 3, 4, 5, 6, 7}},
		{"mixed widths", []int32{1, 2, -10, 45, -999, 4008, 47}},
		{"large diffs", []int32{0, 1 << 20, -(1 << 20), 1 << 30, 0}},
		{"reference", refSamples()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeSteim1(tc.samples)
			require.NoError(t, err)
			require.Zero(t, len(encoded)%FrameSize)

			decoded, err := DecodeSteim1(encoded, len(tc.samples))
			require.NoError(t, err)
			assert.Equal(t, tc.samples, decoded)
		})
	}
}

func TestSteim2RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		samples []int32
	}{
		{"single", []int32{42}},
		{"constant", []int32{5, 5, 5, 5, 5}},
		{"four bit runs", []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}},
		{"mixed widths", []int32{1, 2, -10, 45, -999, 4008, 47}},
		{"thirty bit diffs", []int32{0, 1 << 28, -(1 << 28), 0}},
		{"reference", refSamples()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeSteim2(tc.samples)
			require.NoError(t, err)
			require.Zero(t, len(encoded)%FrameSize)

			decoded, err := DecodeSteim2(encoded, len(tc.samples))
			require.NoError(t, err)
			assert.Equal(t, tc.samples, decoded)
		})
	}
}

func TestSteim2IntegrationConstants(t *testing.T) {
	samples := []int32{0, 1, 2, 3, 100, 100, 100, -50, -60, 1_000_000, 1_000_001}
	encoded, err := EncodeSteim2(samples)
	require.NoError(t, err)

	// frame 0 word 1 is X(0), word 2 is X(n)
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(encoded[4:8]))
	assert.Equal(t, uint32(1_000_001), binary.BigEndian.Uint32(encoded[8:12]))

	decoded, err := DecodeSteim2(encoded, len(samples))
	require.NoError(t, err)
	assert.Equal(t, samples, decoded)
}

func TestSteim2FinalSampleMismatch(t *testing.T) {
	samples := []int32{0, 1, 2, 3, 4, 5}
	encoded, err := EncodeSteim2(samples)
	require.NoError(t, err)

	// corrupt X(n)
	binary.BigEndian.PutUint32(encoded[8:12], uint32(999))
	_, err = DecodeSteim2(encoded, len(samples))
	require.Error(t, err)
	var integrity *SteimIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, int32(5), integrity.Decoded)
	assert.Equal(t, int32(999), integrity.XN)
}

func TestSteim1FinalSampleMismatch(t *testing.T) {
	samples := []int32{10, 20, 30}
	encoded, err := EncodeSteim1(samples)
	require.NoError(t, err)

	binary.BigEndian.PutUint32(encoded[8:12], uint32(0))
	_, err = DecodeSteim1(encoded, len(samples))
	var integrity *SteimIntegrityError
	assert.ErrorAs(t, err, &integrity)
}

func TestSteimBadLength(t *testing.T) {
	_, err := DecodeSteim1(make([]byte, 63), 1)
	assert.Error(t, err)
	_, err = DecodeSteim2(make([]byte, 100), 1)
	assert.Error(t, err)
}

func TestSteimCountMismatch(t *testing.T) {
	samples := []int32{1, 2, 3, 4}
	encoded, err := EncodeSteim2(samples)
	require.NoError(t, err)

	_, err = DecodeSteim2(encoded, len(samples)+10)
	require.Error(t, err)
	var codecErr *CodecError
	assert.ErrorAs(t, err, &codecErr)
}

func TestSteim2RangeError(t *testing.T) {
	// difference wider than 30 bits cannot be packed
	samples := []int32{0, 1 << 30}
	_, err := EncodeSteim2(samples)
	require.Error(t, err)
	var rangeErr *SteimRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestSteimEmptyInput(t *testing.T) {
	_, err := EncodeSteim1(nil)
	assert.Error(t, err)
	_, err = EncodeSteim2(nil)
	assert.Error(t, err)
}

func TestSteim2FrameLimit(t *testing.T) {
	samples := refSamples()
	encoded, consumed, err := EncodeSteim2Frames(samples, 1)
	require.NoError(t, err)
	assert.Equal(t, FrameSize, len(encoded))
	require.Greater(t, consumed, 0)
	require.Less(t, consumed, len(samples))

	decoded, err := DecodeSteim2(encoded, consumed)
	require.NoError(t, err)
	assert.Equal(t, samples[:consumed], decoded)
}

func TestSteim1FrameLimit(t *testing.T) {
	samples := refSamples()
	encoded, consumed, err := EncodeSteim1Frames(samples, 2)
	require.NoError(t, err)
	assert.Equal(t, 2*FrameSize, len(encoded))
	require.Greater(t, consumed, 0)
	require.Less(t, consumed, len(samples))

	decoded, err := DecodeSteim1(encoded, consumed)
	require.NoError(t, err)
	assert.Equal(t, samples[:consumed], decoded)
}

func TestSteimViaDecode(t *testing.T) {
	samples := []int32{3, 1, 4, 1, 5, 9, 2, 6}
	encoded, err := EncodeSteim2(samples)
	require.NoError(t, err)

	decoded, err := Decode(Steim2, encoded, len(samples), false)
	require.NoError(t, err)
	assert.Equal(t, samples, decoded.Int32s())
}
