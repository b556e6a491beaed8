package mseed2

import (
	"encoding/binary"
	"fmt"
	"math"
)

// blocketteHeaderSize is the type + next-offset prefix on every blockette.
const blocketteHeaderSize = 4

// BadBlocketteError reports a blockette chain that cannot be walked.
type BadBlocketteError struct {
	Offset int
	Reason string
}

func (e *BadBlocketteError) Error() string {
	return fmt.Sprintf("bad blockette at offset %d: %s", e.Offset, e.Reason)
}

// Blockette100 overrides the fixed header sample rate with the actual rate.
type Blockette100 struct {
	SampleRate float32
}

// Blockette1000 is the Data Only SEED blockette carrying encoding, word
// order and record length.
type Blockette1000 struct {
	Encoding        uint8
	WordOrder       uint8 // 1 is big-endian
	RecordLengthExp uint8 // record length is 1 << exp bytes
}

// RecordSize returns the declared record length in bytes.
func (b Blockette1000) RecordSize() int {
	return 1 << b.RecordLengthExp
}

// BigEndianPayload reports whether the data payload is big-endian.
func (b Blockette1000) BigEndianPayload() bool {
	return b.WordOrder != 0
}

// Blockette1001 is the data extension blockette with timing quality and a
// microsecond refinement added to the start time.
type Blockette1001 struct {
	TimingQuality uint8
	MicroSec      uint8
	FrameCount    uint8
}

// BlocketteUnknown retains a blockette this package does not interpret.
type BlocketteUnknown struct {
	Num    uint16
	Offset int
	Raw    []byte
}

// blocketteChain walks the chain starting at the fixed header's first
// blockette offset and applies the known blockettes to the record. Offsets
// are absolute within recordBytes. Repeated blockettes of the same type
// overwrite earlier ones; the last wins.
func (r *Record) blocketteChain(recordBytes []byte, bo binary.ByteOrder) error {
	offset := int(r.Header.BlocketteOffset)
	for i := 0; i < int(r.Header.NumBlockettes); i++ {
		if offset == 0 {
			return &BadBlocketteError{offset, fmt.Sprintf("chain ended after %d of %d blockettes", i, r.Header.NumBlockettes)}
		}
		if len(recordBytes) < offset+blocketteHeaderSize {
			return &BadBlocketteError{offset, "not enough bytes for blockette header"}
		}
		num := bo.Uint16(recordBytes[offset : offset+2])
		next := bo.Uint16(recordBytes[offset+2 : offset+4])
		body := offset + blocketteHeaderSize

		switch num {
		case 100:
			if len(recordBytes) < body+8 {
				return &BadBlocketteError{offset, "not enough bytes for blockette 100"}
			}
			r.B100 = &Blockette100{
				SampleRate: math.Float32frombits(bo.Uint32(recordBytes[body : body+4])),
			}
		case 1000:
			if len(recordBytes) < body+4 {
				return &BadBlocketteError{offset, "not enough bytes for blockette 1000"}
			}
			r.B1000 = &Blockette1000{
				Encoding:        recordBytes[body],
				WordOrder:       recordBytes[body+1],
				RecordLengthExp: recordBytes[body+2],
			}
		case 1001:
			if len(recordBytes) < body+4 {
				return &BadBlocketteError{offset, "not enough bytes for blockette 1001"}
			}
			r.B1001 = &Blockette1001{
				TimingQuality: recordBytes[body],
				MicroSec:      recordBytes[body+1],
				FrameCount:    recordBytes[body+3],
			}
		default:
			end := int(next)
			if end == 0 {
				// last blockette runs to the start of data
				end = int(r.Header.DataOffset)
			}
			if end < offset || end > len(recordBytes) {
				return &BadBlocketteError{offset, fmt.Sprintf("blockette %d end %d out of range", num, end)}
			}
			r.Unknown = append(r.Unknown, BlocketteUnknown{
				Num:    num,
				Offset: offset,
				Raw:    append([]byte(nil), recordBytes[offset:end]...),
			})
		}
		offset = int(next)
	}
	return nil
}
