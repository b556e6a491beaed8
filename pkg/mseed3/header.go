// Package mseed3 reads and writes miniSEED 3 records.
//
// See the specification at http://docs.fdsn.org/projects/miniseed3/en/latest/
package mseed3

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"

	"github.com/seisgo/mseed/pkg/seedtime"
)

// FixedHeaderSize is the length of the fixed header at the start of every
// record.
const FixedHeaderSize = 40

// CRCOffset is the byte offset of the CRC field within the fixed header.
const CRCOffset = 28

// UnknownDataVersion is the publication version for data of unknown
// provenance.
const UnknownDataVersion = 0

// MimeType is the registered media type for miniSEED 3.
const MimeType = "application/vnd.fdsn.mseed3"

// castagnoli is the CRC-32C table used for record checksums.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header is the fixed header of a miniSEED 3 record. All multi-byte fields
// are little-endian on the wire. The record indicator "MS" and format
// version 3 are implied and not stored.
type Header struct {
	Flags              uint8
	Nanosecond         uint32
	Year               uint16
	DayOfYear          uint16
	Hour               uint8
	Minute             uint8
	Second             uint8
	Encoding           uint8
	SampleRatePeriod   float64
	NumSamples         uint32
	CRC                uint32
	PublicationVersion uint8
	IdentifierLength   uint8
	ExtraHeadersLength uint16
	DataLength         uint32
}

// UnsupportedVersionError reports a record with a format version other
// than 3.
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported miniseed format version %d, expected 3", e.Version)
}

// TruncatedRecordError reports an input that ended inside a record.
type TruncatedRecordError struct {
	Section string
	Need    int
	Have    int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated record: %s needs %d bytes, have %d", e.Section, e.Need, e.Have)
}

// CRCMismatchError reports a record whose stored CRC does not match the
// recomputed one.
type CRCMismatchError struct {
	Computed uint32
	Stored   uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("crc mismatch: computed 0x%08X, header has 0x%08X", e.Computed, e.Stored)
}

// UnpackFixedHeader decodes the 40 byte fixed header.
func UnpackFixedHeader(data []byte) (Header, error) {
	if len(data) < FixedHeaderSize {
		return Header{}, &TruncatedRecordError{"fixed header", FixedHeaderSize, len(data)}
	}
	if data[0] != 'M' || data[1] != 'S' {
		return Header{}, fmt.Errorf("expected record to start with MS, got %q", string(data[0:2]))
	}
	if data[2] != 3 {
		return Header{}, &UnsupportedVersionError{data[2]}
	}
	return Header{
		Flags:              data[3],
		Nanosecond:         binary.LittleEndian.Uint32(data[4:8]),
		Year:               binary.LittleEndian.Uint16(data[8:10]),
		DayOfYear:          binary.LittleEndian.Uint16(data[10:12]),
		Hour:               data[12],
		Minute:             data[13],
		Second:             data[14],
		Encoding:           data[15],
		SampleRatePeriod:   math.Float64frombits(binary.LittleEndian.Uint64(data[16:24])),
		NumSamples:         binary.LittleEndian.Uint32(data[24:28]),
		CRC:                binary.LittleEndian.Uint32(data[28:32]),
		PublicationVersion: data[32],
		IdentifierLength:   data[33],
		ExtraHeadersLength: binary.LittleEndian.Uint16(data[34:36]),
		DataLength:         binary.LittleEndian.Uint32(data[36:40]),
	}, nil
}

// Pack encodes the fixed header into 40 bytes.
func (h Header) Pack() []byte {
	out := make([]byte, FixedHeaderSize)
	out[0] = 'M'
	out[1] = 'S'
	out[2] = 3
	out[3] = h.Flags
	binary.LittleEndian.PutUint32(out[4:8], h.Nanosecond)
	binary.LittleEndian.PutUint16(out[8:10], h.Year)
	binary.LittleEndian.PutUint16(out[10:12], h.DayOfYear)
	out[12] = h.Hour
	out[13] = h.Minute
	out[14] = h.Second
	out[15] = h.Encoding
	binary.LittleEndian.PutUint64(out[16:24], math.Float64bits(h.SampleRatePeriod))
	binary.LittleEndian.PutUint32(out[24:28], h.NumSamples)
	binary.LittleEndian.PutUint32(out[28:32], h.CRC)
	out[32] = h.PublicationVersion
	out[33] = h.IdentifierLength
	binary.LittleEndian.PutUint16(out[34:36], h.ExtraHeadersLength)
	binary.LittleEndian.PutUint32(out[36:40], h.DataLength)
	return out
}

// RecordSize returns the full record length implied by the header.
func (h Header) RecordSize() int {
	return FixedHeaderSize + int(h.IdentifierLength) + int(h.ExtraHeadersLength) + int(h.DataLength)
}

// SampleRate returns the nominal sample rate in samples per second.
func (h Header) SampleRate() float64 {
	return seedtime.SampleRate(h.SampleRatePeriod)
}

// SamplePeriod returns the interval between samples.
func (h Header) SamplePeriod() time.Duration {
	return seedtime.SamplePeriod(h.SampleRatePeriod)
}

// Starttime returns the time of the first sample.
func (h Header) Starttime() time.Time {
	ft := seedtime.FieldTime{
		Year:       h.Year,
		DayOfYear:  h.DayOfYear,
		Hour:       h.Hour,
		Minute:     h.Minute,
		Second:     h.Second,
		Nanosecond: h.Nanosecond,
	}
	return ft.Time()
}

// SetStarttime fills the calendar fields from an instant.
func (h *Header) SetStarttime(t time.Time) {
	ft := seedtime.NewFieldTime(t)
	h.Year = ft.Year
	h.DayOfYear = ft.DayOfYear
	h.Hour = ft.Hour
	h.Minute = ft.Minute
	h.Second = ft.Second
	h.Nanosecond = ft.Nanosecond
}

// Endtime returns the time of the last sample.
func (h Header) Endtime() time.Time {
	if h.NumSamples == 0 {
		return h.Starttime()
	}
	return h.Starttime().Add(seedtime.SampleOffset(h.SampleRatePeriod, int(h.NumSamples)-1))
}

// PredictedNextStart returns the expected start time of a continuous
// following record.
func (h Header) PredictedNextStart() time.Time {
	return h.Starttime().Add(seedtime.SampleOffset(h.SampleRatePeriod, int(h.NumSamples)))
}

// SanityCheck performs a range check of the calendar fields.
func (h Header) SanityCheck() bool {
	ft := seedtime.FieldTime{
		Year:       h.Year,
		DayOfYear:  h.DayOfYear,
		Hour:       h.Hour,
		Minute:     h.Minute,
		Second:     h.Second,
		Nanosecond: h.Nanosecond,
	}
	return ft.Valid()
}

// CRCAsHex formats a checksum the way the reference data does.
func CRCAsHex(crc uint32) string {
	return fmt.Sprintf("0x%08X", crc)
}
