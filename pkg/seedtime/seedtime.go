// Package seedtime converts between the packed time representations used by
// the miniSEED formats and time.Time instants.
//
// miniSEED v2 uses the 10 byte BTIME structure with tenth-millisecond
// precision, v3 stores the same calendar fields with a nanosecond count.
// Both allow a second field of 60 for a leap second; that value is carried
// verbatim and arithmetic uses a 60 second per minute model, no UTC leap
// normalization is applied.
package seedtime

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// BTimeSize is the encoded length of a BTIME structure.
const BTimeSize = 10

// NanosPerSecond is one second in nanoseconds.
const NanosPerSecond = 1_000_000_000

// BTime is the miniSEED v2 packed record start time.
type BTime struct {
	Year       uint16
	DayOfYear  uint16
	Hour       uint8
	Minute     uint8
	Second     uint8
	TenthMilli uint16
}

// DecodeBTime reads a BTIME from the first 10 bytes of data using the given
// byte order for the multi-byte fields.
func DecodeBTime(data []byte, bo binary.ByteOrder) (BTime, error) {
	if len(data) < BTimeSize {
		return BTime{}, fmt.Errorf("btime: need %d bytes, have %d", BTimeSize, len(data))
	}
	return BTime{
		Year:       bo.Uint16(data[0:2]),
		DayOfYear:  bo.Uint16(data[2:4]),
		Hour:       data[4],
		Minute:     data[5],
		Second:     data[6],
		TenthMilli: bo.Uint16(data[8:10]),
	}, nil
}

// Encode packs the BTIME into 10 bytes using the given byte order.
func (b BTime) Encode(bo binary.ByteOrder) []byte {
	out := make([]byte, BTimeSize)
	bo.PutUint16(out[0:2], b.Year)
	bo.PutUint16(out[2:4], b.DayOfYear)
	out[4] = b.Hour
	out[5] = b.Minute
	out[6] = b.Second
	bo.PutUint16(out[8:10], b.TenthMilli)
	return out
}

// NewBTime converts an instant to BTIME, truncating below tenth-millisecond
// precision.
func NewBTime(t time.Time) BTime {
	t = t.UTC()
	return BTime{
		Year:       uint16(t.Year()),
		DayOfYear:  uint16(t.YearDay()),
		Hour:       uint8(t.Hour()),
		Minute:     uint8(t.Minute()),
		Second:     uint8(t.Second()),
		TenthMilli: uint16(t.Nanosecond() / 100_000),
	}
}

// Time returns the instant for the BTIME. A leap second value of 60 rolls
// into the following minute per the 60 second minute model.
func (b BTime) Time() time.Time {
	return fieldTime(int(b.Year), int(b.DayOfYear), int(b.Hour), int(b.Minute), int(b.Second),
		int(b.TenthMilli)*100_000)
}

// Valid performs a range check of the calendar fields, allowing second 60.
func (b BTime) Valid() bool {
	return b.DayOfYear >= 1 && b.DayOfYear <= 366 &&
		b.Hour < 24 && b.Minute < 60 && b.Second <= 60 &&
		b.TenthMilli < 10000
}

// FieldTime is the calendar time held in a miniSEED v3 fixed header.
type FieldTime struct {
	Year       uint16
	DayOfYear  uint16
	Hour       uint8
	Minute     uint8
	Second     uint8
	Nanosecond uint32
}

// NewFieldTime converts an instant to v3 header fields.
func NewFieldTime(t time.Time) FieldTime {
	t = t.UTC()
	return FieldTime{
		Year:       uint16(t.Year()),
		DayOfYear:  uint16(t.YearDay()),
		Hour:       uint8(t.Hour()),
		Minute:     uint8(t.Minute()),
		Second:     uint8(t.Second()),
		Nanosecond: uint32(t.Nanosecond()),
	}
}

// Time returns the instant for the header fields.
func (f FieldTime) Time() time.Time {
	return fieldTime(int(f.Year), int(f.DayOfYear), int(f.Hour), int(f.Minute), int(f.Second),
		int(f.Nanosecond))
}

// Valid performs a range check of the calendar fields, allowing second 60.
func (f FieldTime) Valid() bool {
	return f.Year < 3000 &&
		f.DayOfYear >= 1 && f.DayOfYear <= 366 &&
		f.Hour < 24 && f.Minute < 60 && f.Second <= 60 &&
		f.Nanosecond < NanosPerSecond
}

func fieldTime(year, doy, hour, minute, second, nanos int) time.Time {
	t := time.Date(year, time.January, 1, hour, minute, second, nanos, time.UTC)
	return t.AddDate(0, 0, doy-1)
}

// SamplePeriod converts the sample-rate-or-period header value into the
// period between samples: positive values are samples per second, negative
// values are seconds per sample. Zero rates have no period.
func SamplePeriod(ratePeriod float64) time.Duration {
	switch {
	case ratePeriod > 0:
		return time.Duration(math.Round(float64(NanosPerSecond) / ratePeriod))
	case ratePeriod < 0:
		return time.Duration(math.Round(-ratePeriod * float64(NanosPerSecond)))
	}
	return 0
}

// SampleRate converts the sample-rate-or-period header value into samples
// per second.
func SampleRate(ratePeriod float64) float64 {
	if ratePeriod < 0 {
		return -1.0 / ratePeriod
	}
	return ratePeriod
}

// SampleOffset returns the time offset of sample index i from the first
// sample, rounded to the nearest nanosecond.
func SampleOffset(ratePeriod float64, i int) time.Duration {
	switch {
	case ratePeriod > 0:
		return time.Duration(math.Round(float64(i) * float64(NanosPerSecond) / ratePeriod))
	case ratePeriod < 0:
		return time.Duration(math.Round(float64(i) * -ratePeriod * float64(NanosPerSecond)))
	}
	return 0
}

// V2SampleRate derives samples per second from the fixed header rate factor
// and multiplier.
func V2SampleRate(factor, multiplier int) float64 {
	var rate float64
	switch f := float64(factor); {
	case factor > 0:
		rate = f
	case factor < 0:
		rate = -1.0 / f
	}
	switch m := float64(multiplier); {
	case multiplier > 0:
		rate = rate * m
	case multiplier < 0:
		rate = -1.0 * (rate / m)
	}
	return rate
}
