// Package convert turns miniSEED 2 records into miniSEED 3 records.
//
// The conversion is deliberately simple: blockettes other than 100, 1000
// and 1001 are dropped, so it is not lossless for exotic records. Sample
// payloads are carried over byte for byte, except that big-endian primitive
// arrays are swapped to the little-endian order miniSEED 3 requires. Steim
// payloads stay big-endian inside their frames per the SEED convention.
package convert

import (
	"fmt"

	"github.com/seisgo/mseed/pkg/mseed2"
	"github.com/seisgo/mseed/pkg/mseed3"
	"github.com/seisgo/mseed/pkg/seedcodec"
)

// nanosPerSecond in a normalized header nanosecond field.
const nanosPerSecond = 1_000_000_000

// V2ToV3 converts a single record.
func V2ToV3(rec *mseed2.Record) (*mseed3.Record, error) {
	if rec.B1000 == nil {
		return nil, fmt.Errorf("convert: missing blockette 1000")
	}
	h2 := rec.Header

	var header mseed3.Header
	header.Flags = (h2.ActivityFlags&1)*2 + (h2.IOClockFlags&64)*4 + (h2.DataQualityFlags&16)*8
	header.PublicationVersion = mseed3.UnknownDataVersion
	header.Encoding = rec.B1000.Encoding

	rate := rec.SampleRate()
	if rate >= 1 {
		header.SampleRatePeriod = rate
	} else {
		header.SampleRatePeriod = -1.0 / rate
	}
	header.NumSamples = uint32(h2.NumSamples)

	setStartTime(&header, rec)

	sid, err := rec.SourceID()
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	data := rec.Data
	if rec.BigEndianPayload() && seedcodec.IsPrimitive(header.Encoding) {
		data = append([]byte(nil), data...)
		if err := seedcodec.ByteSwap(header.Encoding, data); err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
	}
	header.DataLength = uint32(len(data))

	return &mseed3.Record{
		Header:       header,
		Identifier:   sid.String(),
		ExtraHeaders: extraHeaders(rec),
		Data:         data,
	}, nil
}

// setStartTime fills the v3 calendar fields from BTIME plus the blockette
// 1001 microsecond refinement, carrying into later fields when the sum
// crosses a second boundary. A leap second field of 60 is carried verbatim.
func setStartTime(header *mseed3.Header, rec *mseed2.Record) {
	bt := rec.Header.Start
	header.Year = bt.Year
	header.DayOfYear = bt.DayOfYear
	header.Hour = bt.Hour
	header.Minute = bt.Minute
	header.Second = bt.Second

	nanos := int64(bt.TenthMilli) * 100_000
	if rec.B1001 != nil {
		nanos += int64(rec.B1001.MicroSec) * 1000
	}
	if nanos < nanosPerSecond {
		header.Nanosecond = uint32(nanos)
		return
	}

	header.Nanosecond = uint32(nanos - nanosPerSecond)
	switch {
	case header.Second < 59:
		header.Second++
	case header.Minute < 59:
		header.Second = 0
		header.Minute++
	case header.Hour < 23:
		header.Second = 0
		header.Minute = 0
		header.Hour++
	default:
		header.Second = 0
		header.Minute = 0
		header.Hour = 0
		last := uint16(365)
		if isLeapYear(int(header.Year)) {
			last = 366
		}
		if header.DayOfYear < last {
			header.DayOfYear++
		} else {
			header.DayOfYear = 1
			header.Year++
		}
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// extraHeaders synthesizes the FDSN extra headers that preserve v2 facts
// with no v3 header field: data quality, timing quality and a leap second
// marker.
func extraHeaders(rec *mseed2.Record) *mseed3.Value {
	fdsn := mseed3.NewObject()
	if q := rec.Header.DataQuality; q != 0 && q != 'D' {
		fdsn.SetMember("DataQuality", mseed3.NewString(string(q)))
	}
	if rec.B1001 != nil && rec.B1001.TimingQuality != 0 {
		timeObj := mseed3.NewObject()
		timeObj.SetMember("Quality", mseed3.NewInt(int64(rec.B1001.TimingQuality)))
		fdsn.SetMember("Time", timeObj)
	}
	if rec.Header.Start.Second == 60 {
		timeObj := fdsn.Member("Time")
		if timeObj == nil {
			timeObj = mseed3.NewObject()
			fdsn.SetMember("Time", timeObj)
		}
		timeObj.SetMember("LeapSecond", mseed3.NewInt(1))
	}
	if fdsn.IsEmpty() {
		return nil
	}
	eh := mseed3.NewObject()
	eh.SetMember("FDSN", fdsn)
	return eh
}
