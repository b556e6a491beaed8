package mseed3

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	"github.com/seisgo/mseed/pkg/seedcodec"
	"github.com/seisgo/mseed/pkg/sourceid"
)

// Record is an in-memory miniSEED 3 record: fixed header, source
// identifier, optional extra headers and the encoded data payload.
type Record struct {
	Header       Header
	Identifier   string
	ExtraHeaders *Value // nil when the record has none
	Data         []byte // encoded payload, opaque at this layer
}

// NewRecord builds a record around an already encoded payload. The header
// encoding, sample count and data length are taken from the segment.
func NewRecord(header Header, id string, seg seedcodec.EncodedSegment) *Record {
	header.Encoding = seg.Encoding
	header.NumSamples = uint32(seg.NumSamples)
	header.DataLength = uint32(len(seg.Data))
	return &Record{Header: header, Identifier: id, Data: seg.Data}
}

// NewRecordFromSamples builds a record by encoding samples in their native
// primitive encoding, little-endian as miniSEED 3 requires.
func NewRecordFromSamples(header Header, id string, samples *seedcodec.Samples) (*Record, error) {
	seg, err := samples.Encode(true)
	if err != nil {
		return nil, err
	}
	return NewRecord(header, id, seg), nil
}

// SourceID parses the record identifier.
func (r *Record) SourceID() (sourceid.SourceID, error) {
	return sourceid.Parse(r.Identifier)
}

// Starttime returns the time of the first sample.
func (r *Record) Starttime() time.Time { return r.Header.Starttime() }

// Endtime returns the time of the last sample.
func (r *Record) Endtime() time.Time { return r.Header.Endtime() }

// HasExtraHeaders reports whether the record carries a non-empty extra
// header tree.
func (r *Record) HasExtraHeaders() bool {
	return r.ExtraHeaders != nil && !r.ExtraHeaders.IsEmpty()
}

// EncodedSegment returns the payload with the facts needed to decode it.
// Steim payloads are big-endian within their frames, primitives are
// little-endian per the miniSEED 3 spec.
func (r *Record) EncodedSegment() seedcodec.EncodedSegment {
	littleEndian := true
	switch r.Header.Encoding {
	case seedcodec.Steim1, seedcodec.Steim2, seedcodec.Steim3:
		littleEndian = false
	}
	return seedcodec.EncodedSegment{
		Encoding:     r.Header.Encoding,
		Data:         r.Data,
		NumSamples:   int(r.Header.NumSamples),
		LittleEndian: littleEndian,
	}
}

// Decompress decodes the payload into samples.
func (r *Record) Decompress() (*seedcodec.Samples, error) {
	return r.EncodedSegment().Decode()
}

// DecompressedRecord returns a copy of the record with the payload decoded
// and re-encoded in the matching primitive encoding.
func (r *Record) DecompressedRecord() (*Record, error) {
	samples, err := r.Decompress()
	if err != nil {
		return nil, err
	}
	seg, err := samples.Encode(true)
	if err != nil {
		return nil, err
	}
	header := r.Header
	// steim payloads decode to 32 bit integers
	header.Encoding = seg.Encoding
	header.DataLength = uint32(len(seg.Data))
	return &Record{
		Header:       header,
		Identifier:   r.Identifier,
		ExtraHeaders: r.ExtraHeaders.Clone(),
		Data:         seg.Data,
	}, nil
}

// Size returns the packed byte length of the record.
func (r *Record) Size() int {
	extraLen := 0
	if r.HasExtraHeaders() {
		extraLen = len(r.ExtraHeaders.JSON())
	}
	return FixedHeaderSize + len(r.Identifier) + extraLen + len(r.Data)
}

// Pack serializes the record. The length fields and CRC in the header are
// re-derived so the returned header state describes the output bytes
// exactly.
func (r *Record) Pack() ([]byte, error) {
	idBytes := []byte(r.Identifier)
	if len(idBytes) > 255 {
		return nil, fmt.Errorf("identifier longer than 255 bytes: %q", r.Identifier)
	}
	var ehBytes []byte
	if r.HasExtraHeaders() {
		ehBytes = r.ExtraHeaders.JSON()
	}
	if len(ehBytes) > 65535 {
		return nil, fmt.Errorf("extra headers longer than 65535 bytes")
	}

	r.Header.IdentifierLength = uint8(len(idBytes))
	r.Header.ExtraHeadersLength = uint16(len(ehBytes))
	r.Header.DataLength = uint32(len(r.Data))
	r.Header.CRC = 0

	out := make([]byte, 0, r.Header.RecordSize())
	out = append(out, r.Header.Pack()...)
	out = append(out, idBytes...)
	out = append(out, ehBytes...)
	out = append(out, r.Data...)

	crc := crc32.Checksum(out, castagnoli)
	binary.LittleEndian.PutUint32(out[CRCOffset:], crc)
	r.Header.CRC = crc
	return out, nil
}

// Unpack decodes a single record from the start of recordBytes, verifying
// the CRC.
func Unpack(recordBytes []byte) (*Record, error) {
	return UnpackWithOptions(recordBytes, UnpackOptions{})
}

// UnpackOptions controls record decoding.
type UnpackOptions struct {
	// SkipCRCCheck accepts records without recomputing the checksum.
	SkipCRCCheck bool
}

// UnpackWithOptions decodes a single record from the start of recordBytes.
func UnpackWithOptions(recordBytes []byte, opts UnpackOptions) (*Record, error) {
	header, err := UnpackFixedHeader(recordBytes)
	if err != nil {
		return nil, err
	}
	if len(recordBytes) < header.RecordSize() {
		return nil, &TruncatedRecordError{"record body", header.RecordSize(), len(recordBytes)}
	}
	body := recordBytes[:header.RecordSize()]

	if !opts.SkipCRCCheck {
		crc := crc32.Checksum(body[:CRCOffset], castagnoli)
		crc = crc32.Update(crc, castagnoli, []byte{0, 0, 0, 0})
		crc = crc32.Update(crc, castagnoli, body[CRCOffset+4:])
		if crc != header.CRC {
			return nil, &CRCMismatchError{Computed: crc, Stored: header.CRC}
		}
	}

	offset := FixedHeaderSize
	identifier := string(body[offset : offset+int(header.IdentifierLength)])
	offset += int(header.IdentifierLength)
	eh, err := ParseExtraHeaders(body[offset : offset+int(header.ExtraHeadersLength)])
	if err != nil {
		return nil, err
	}
	offset += int(header.ExtraHeadersLength)
	data := append([]byte(nil), body[offset:offset+int(header.DataLength)]...)

	return &Record{Header: header, Identifier: identifier, ExtraHeaders: eh, Data: data}, nil
}

// EncodingName returns a short name for the payload encoding.
func (r *Record) EncodingName() string {
	return seedcodec.EncodingName(r.Header.Encoding)
}

// Summary returns a one line description of the record.
func (r *Record) Summary() string {
	return fmt.Sprintf("%s %s %s (%d pts)",
		r.Identifier,
		isoZ(r.Starttime()),
		isoZ(r.Endtime()),
		r.Header.NumSamples)
}

var flagBitText = [8]string{
	"Calibration signals present",
	"Time tag is questionable",
	"Clock locked",
	"Undefined bit set",
	"Undefined bit set",
	"Undefined bit set",
	"Undefined bit set",
	"Undefined bit set",
}

// Details returns a multi-line description of the record header, with the
// extra headers when showExtra is set.
func (r *Record) Details(showExtra bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, version %d, %d bytes (format: 3)\n",
		r.Identifier, r.Header.PublicationVersion, r.Size())
	fmt.Fprintf(&b, "             start time: %s (%03d)\n", isoZ(r.Starttime()), r.Header.DayOfYear)
	fmt.Fprintf(&b, "      number of samples: %d\n", r.Header.NumSamples)
	fmt.Fprintf(&b, "       sample rate (Hz): %g\n", r.Header.SampleRate())
	fmt.Fprintf(&b, "                  flags: [%08b] 8 bits", r.Header.Flags)
	for bit := 0; bit < 8; bit++ {
		if r.Header.Flags&(1<<bit) != 0 {
			fmt.Fprintf(&b, "\n                         [Bit %d] %s", bit, flagBitText[bit])
		}
	}
	fmt.Fprintf(&b, "\n                    CRC: %s\n", CRCAsHex(r.Header.CRC))
	fmt.Fprintf(&b, "    extra header length: %d bytes\n", r.Header.ExtraHeadersLength)
	fmt.Fprintf(&b, "    data payload length: %d bytes\n", r.Header.DataLength)
	fmt.Fprintf(&b, "       payload encoding: %s (val: %d)", r.EncodingName(), r.Header.Encoding)
	if showExtra && r.HasExtraHeaders() {
		fmt.Fprintf(&b, "\n          extra headers: %s", r.ExtraHeaders.JSON())
	}
	return b.String()
}

func isoZ(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
