// Package mseed2 reads miniSEED 2 records: the 48 byte fixed header, the
// blockette chain and the encoded data payload. Writing v2 is not
// supported; the format is legacy and conversion to v3 is one way.
package mseed2

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/seisgo/mseed/pkg/seedtime"
)

// FixedHeaderSize is the length of the v2 fixed header.
const FixedHeaderSize = 48

// DefaultRecordSize is assumed when no blockette 1000 declares a record
// length.
const DefaultRecordSize = 512

// Header is the decoded v2 fixed header. String fields are stripped of
// their space padding.
type Header struct {
	SequenceNumber       string
	DataQuality          byte // 'D', 'R', 'Q' or 'M'
	Station              string
	Location             string
	Channel              string
	Network              string
	Start                seedtime.BTime
	NumSamples           uint16
	SampleRateFactor     int16
	SampleRateMultiplier int16
	ActivityFlags        byte
	IOClockFlags         byte
	DataQualityFlags     byte
	NumBlockettes        uint8
	TimeCorrection       int32 // 0.1 millisecond units
	DataOffset           uint16
	BlocketteOffset      uint16

	// LittleEndian records how the header was stored; blockettes and
	// primitive payloads share the same order unless B1000 says otherwise.
	LittleEndian bool
}

// GuessByteOrder inspects the BTIME year bytes of a fixed header to decide
// the record byte order, the trick being that any plausible year has 0x07
// or 0x08 as its high byte.
func GuessByteOrder(data []byte) (binary.ByteOrder, bool, error) {
	if len(data) < FixedHeaderSize {
		return nil, false, &TruncatedRecordError{"fixed header", FixedHeaderSize, len(data)}
	}
	hi, lo := data[20], data[21]
	plausible := func(b byte) bool { return b == 7 || b == 8 }
	switch {
	case plausible(hi) && !plausible(lo):
		return binary.BigEndian, false, nil
	case plausible(lo) && !plausible(hi):
		return binary.LittleEndian, true, nil
	}
	return nil, false, fmt.Errorf("unable to determine byte order from year bytes %d %d", hi, lo)
}

// DecodeHeader decodes a fixed header with a known byte order.
func DecodeHeader(data []byte, bo binary.ByteOrder) (Header, error) {
	if len(data) < FixedHeaderSize {
		return Header{}, &TruncatedRecordError{"fixed header", FixedHeaderSize, len(data)}
	}
	start, err := seedtime.DecodeBTime(data[20:30], bo)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		SequenceNumber:       strings.TrimSpace(string(data[0:6])),
		DataQuality:          data[6],
		Station:              strings.TrimSpace(string(data[8:13])),
		Location:             strings.TrimSpace(string(data[13:15])),
		Channel:              strings.TrimSpace(string(data[15:18])),
		Network:              strings.TrimSpace(string(data[18:20])),
		Start:                start,
		NumSamples:           bo.Uint16(data[30:32]),
		SampleRateFactor:     int16(bo.Uint16(data[32:34])),
		SampleRateMultiplier: int16(bo.Uint16(data[34:36])),
		ActivityFlags:        data[36],
		IOClockFlags:         data[37],
		DataQualityFlags:     data[38],
		NumBlockettes:        data[39],
		TimeCorrection:       int32(bo.Uint32(data[40:44])),
		DataOffset:           bo.Uint16(data[44:46]),
		BlocketteOffset:      bo.Uint16(data[46:48]),
		LittleEndian:         bo == binary.LittleEndian,
	}
	return h, nil
}

// IsValid performs a consistency check of the header contents.
func (h Header) IsValid() bool {
	switch h.DataQuality {
	case 'D', 'R', 'Q', 'M':
	default:
		return false
	}
	return h.Start.Valid()
}

// NominalSampleRate derives samples per second from the rate factor and
// multiplier. Blockette 100, when present, supersedes this value.
func (h Header) NominalSampleRate() float64 {
	return seedtime.V2SampleRate(int(h.SampleRateFactor), int(h.SampleRateMultiplier))
}

// StartTime returns the BTIME instant without blockette refinements.
func (h Header) StartTime() time.Time {
	return h.Start.Time()
}
