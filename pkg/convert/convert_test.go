package convert

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisgo/mseed/pkg/mseed2"
	"github.com/seisgo/mseed/pkg/mseed3"
	"github.com/seisgo/mseed/pkg/seedcodec"
)

// buildV2 assembles a big-endian 512 byte miniSEED 2 record with blockette
// 1000 and optionally blockette 1001.
func buildV2(t *testing.T, encoding uint8, quality byte, numSamples uint16,
	tenthMilli uint16, withB1001 bool, timingQual uint8, microSec uint8, data []byte) *mseed2.Record {
	t.Helper()
	be := binary.BigEndian
	buf := make([]byte, 512)
	copy(buf[0:6], "000001")
	buf[6] = quality
	buf[7] = ' '
	copy(buf[8:13], "CASEE")
	copy(buf[13:15], "00")
	copy(buf[15:18], "HHZ")
	copy(buf[18:20], "CO")
	be.PutUint16(buf[20:22], 2023)
	be.PutUint16(buf[22:24], 168)
	buf[24] = 4
	buf[25] = 53
	buf[26] = 54
	be.PutUint16(buf[28:30], tenthMilli)
	be.PutUint16(buf[30:32], numSamples)
	be.PutUint16(buf[32:34], uint16(100)) // rate factor
	be.PutUint16(buf[34:36], uint16(1))   // rate multiplier

	offset := 48
	numBlockettes := uint8(1)
	end := uint16(0)
	if withB1001 {
		end = uint16(offset + 8)
	}
	be.PutUint16(buf[offset:], 1000)
	be.PutUint16(buf[offset+2:], end)
	buf[offset+4] = encoding
	buf[offset+5] = 1 // big-endian payload
	buf[offset+6] = 9
	offset += 8
	if withB1001 {
		numBlockettes++
		be.PutUint16(buf[offset:], 1001)
		be.PutUint16(buf[offset+2:], 0)
		buf[offset+4] = timingQual
		buf[offset+5] = microSec
		offset += 8
	}
	buf[39] = numBlockettes
	be.PutUint16(buf[44:46], uint16(offset))
	be.PutUint16(buf[46:48], 48)
	copy(buf[offset:], data)

	rec, err := mseed2.Unpack(buf)
	require.NoError(t, err)
	return rec
}

func TestConvertTimeAndQuality(t *testing.T) {
	samples := []int32{1, 2, 3, 4}
	encoded, err := seedcodec.EncodeSteim2(samples)
	require.NoError(t, err)

	ms2 := buildV2(t, seedcodec.Steim2, 'D', 4, 4680, true, 80, 25, encoded)
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	assert.Equal(t, uint32(468_000_000+25_000), ms3rec.Header.Nanosecond)
	assert.Equal(t, uint16(2023), ms3rec.Header.Year)
	assert.Equal(t, uint16(168), ms3rec.Header.DayOfYear)
	assert.Equal(t, uint8(54), ms3rec.Header.Second)
	assert.Equal(t, uint8(seedcodec.Steim2), ms3rec.Header.Encoding)
	assert.Equal(t, 100.0, ms3rec.Header.SampleRate())
	assert.Equal(t, "FDSN:CO_CASEE_00_H_H_Z", ms3rec.Identifier)

	require.NotNil(t, ms3rec.ExtraHeaders)
	quality, err := ms3rec.ExtraHeaders.Get("/FDSN/Time/Quality")
	require.NoError(t, err)
	assert.Equal(t, int64(80), quality.Int64())
}

func TestConvertSteimPayloadUntouched(t *testing.T) {
	samples := []int32{0, 1, 2, 3, 100, 100, 100, -50, -60, 1_000_000, 1_000_001}
	encoded, err := seedcodec.EncodeSteim2(samples)
	require.NoError(t, err)

	ms2 := buildV2(t, seedcodec.Steim2, 'D', uint16(len(samples)), 0, true, 0, 0, encoded)
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	// steim frames stay big-endian byte for byte
	assert.Equal(t, encoded, ms3rec.Data[:len(encoded)])

	decoded, err := seedcodec.Decode(seedcodec.Steim2, ms3rec.Data[:len(encoded)], len(samples), false)
	require.NoError(t, err)
	assert.Equal(t, samples, decoded.Int32s())
}

func TestConvertPrimitiveByteSwap(t *testing.T) {
	vals := []int32{1, -2, 300000, -400000}
	seg := seedcodec.EncodeInt32(vals, false) // big-endian payload

	ms2 := buildV2(t, seedcodec.Int32, 'D', uint16(len(vals)), 0, false, 0, 0, seg.Data)
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	// the v3 record decodes little-endian
	ms3rec.Data = ms3rec.Data[:4*len(vals)]
	samples, err := ms3rec.Decompress()
	require.NoError(t, err)
	assert.Equal(t, vals, samples.Int32s())
}

func TestConvertDataQuality(t *testing.T) {
	ms2 := buildV2(t, seedcodec.Int16, 'Q', 2, 0, false, 0, 0, []byte{0, 1, 0, 2})
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	quality, err := ms3rec.ExtraHeaders.Get("/FDSN/DataQuality")
	require.NoError(t, err)
	assert.Equal(t, "Q", quality.Str())
}

func TestConvertNoExtrasForPlainRecord(t *testing.T) {
	ms2 := buildV2(t, seedcodec.Int16, 'D', 2, 0, false, 0, 0, []byte{0, 1, 0, 2})
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)
	assert.Nil(t, ms3rec.ExtraHeaders)
}

func TestConvertMicrosecond250(t *testing.T) {
	ms2 := buildV2(t, seedcodec.Int16, 'D', 2, 4680, true, 80, 250, []byte{0, 1, 0, 2})
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	assert.Equal(t, uint32(468_250_000), ms3rec.Header.Nanosecond)

	quality, err := ms3rec.ExtraHeaders.Get("/FDSN/Time/Quality")
	require.NoError(t, err)
	assert.Equal(t, int64(80), quality.Int64())
}

func TestConvertNanosecondCarry(t *testing.T) {
	// 999.9 ms plus 250 us crosses the second boundary
	ms2 := buildV2(t, seedcodec.Int16, 'D', 2, 9999, true, 0, 250, []byte{0, 1, 0, 2})
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	assert.Equal(t, uint32(150_000), ms3rec.Header.Nanosecond)
	assert.Equal(t, uint8(55), ms3rec.Header.Second)
}

func TestConvertRoundTripThroughPack(t *testing.T) {
	samples := []int32{1, 2, 3, 4}
	encoded, err := seedcodec.EncodeSteim1(samples)
	require.NoError(t, err)

	ms2 := buildV2(t, seedcodec.Steim1, 'D', 4, 1234, true, 90, 0, encoded)
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	packed, err := ms3rec.Pack()
	require.NoError(t, err)
	back, err := mseed3.Unpack(packed)
	require.NoError(t, err)
	assert.Equal(t, ms3rec.Identifier, back.Identifier)
	assert.Equal(t, ms3rec.Header.Nanosecond, back.Header.Nanosecond)

	quality, err := back.ExtraHeaders.Get("/FDSN/Time/Quality")
	require.NoError(t, err)
	assert.Equal(t, int64(90), quality.Int64())
}

func TestConvertStartTimeMatchesV2(t *testing.T) {
	ms2 := buildV2(t, seedcodec.Int16, 'D', 2, 4680, true, 0, 25, []byte{0, 1, 0, 2})
	ms3rec, err := V2ToV3(ms2)
	require.NoError(t, err)

	want := time.Date(2023, 6, 17, 4, 53, 54, 468_025_000, time.UTC)
	assert.Equal(t, want, ms3rec.Starttime())
	assert.Equal(t, ms2.StartTime(), ms3rec.Starttime())
}
