package mseed2

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/seisgo/mseed/pkg/seedcodec"
	"github.com/seisgo/mseed/pkg/sourceid"
)

// TruncatedRecordError reports an input that ended inside a record.
type TruncatedRecordError struct {
	Section string
	Need    int
	Have    int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated record: %s needs %d bytes, have %d", e.Section, e.Need, e.Have)
}

// Record is a read-only miniSEED 2 record.
type Record struct {
	Header  Header
	B100    *Blockette100
	B1000   *Blockette1000
	B1001   *Blockette1001
	Unknown []BlocketteUnknown
	Data    []byte // encoded payload
}

// Unpack decodes a record from a byte slice holding at least one full
// record.
func Unpack(recordBytes []byte) (*Record, error) {
	bo, _, err := GuessByteOrder(recordBytes)
	if err != nil {
		return nil, err
	}
	header, err := DecodeHeader(recordBytes, bo)
	if err != nil {
		return nil, err
	}
	if !header.IsValid() {
		return nil, fmt.Errorf("input is not a valid miniseed2 record: incorrect header")
	}
	rec := &Record{Header: header}
	if err := rec.blocketteChain(recordBytes, bo); err != nil {
		return nil, err
	}

	size := rec.RecordSize()
	if len(recordBytes) < size {
		return nil, &TruncatedRecordError{"record body", size, len(recordBytes)}
	}
	if int(header.DataOffset) > size {
		return nil, fmt.Errorf("data offset %d beyond record length %d", header.DataOffset, size)
	}
	rec.Data = append([]byte(nil), recordBytes[header.DataOffset:size]...)
	return rec, nil
}

// RecordSize returns the record length declared by blockette 1000, or the
// 512 byte default.
func (r *Record) RecordSize() int {
	if r.B1000 != nil {
		return r.B1000.RecordSize()
	}
	return DefaultRecordSize
}

// Encoding returns the payload encoding from blockette 1000. Records
// without one report Steim-1, the overwhelmingly common legacy default.
func (r *Record) Encoding() uint8 {
	if r.B1000 != nil {
		return r.B1000.Encoding
	}
	return seedcodec.Steim1
}

// BigEndianPayload reports the payload byte order, from blockette 1000
// when present, else the fixed header order.
func (r *Record) BigEndianPayload() bool {
	if r.B1000 != nil {
		return r.B1000.BigEndianPayload()
	}
	return !r.Header.LittleEndian
}

// SampleRate returns samples per second, preferring the blockette 100
// override.
func (r *Record) SampleRate() float64 {
	if r.B100 != nil {
		return float64(r.B100.SampleRate)
	}
	return r.Header.NominalSampleRate()
}

// StartTime returns the time of the first sample, refined by the blockette
// 1001 microsecond offset.
func (r *Record) StartTime() time.Time {
	t := r.Header.StartTime()
	if r.B1001 != nil && r.B1001.MicroSec != 0 {
		t = t.Add(time.Microsecond * time.Duration(r.B1001.MicroSec))
	}
	return t
}

// EndTime returns the time of the last sample.
func (r *Record) EndTime() time.Time {
	if n, rate := int(r.Header.NumSamples), r.SampleRate(); n > 0 && rate > 0 {
		period := float64(time.Second) / rate
		return r.StartTime().Add(time.Duration(float64(n-1) * period))
	}
	return r.StartTime()
}

// SourceID synthesizes the FDSN source identifier from the header codes.
func (r *Record) SourceID() (sourceid.SourceID, error) {
	return sourceid.FromNSLC(r.Header.Network, r.Header.Station, r.Header.Location, r.Header.Channel)
}

// steimData trims the payload to the frame count declared by blockette
// 1001, when present, so trailing record padding is not decoded.
func (r *Record) steimData() ([]byte, error) {
	data := r.Data
	if r.B1001 != nil && r.B1001.FrameCount != 0 {
		n := int(r.B1001.FrameCount) * seedcodec.FrameSize
		if n > len(data) {
			return nil, fmt.Errorf("blockette 1001 declares %d frames but payload has %d bytes", r.B1001.FrameCount, len(data))
		}
		data = data[:n]
	}
	// drop trailing partial frame from record padding
	return data[:len(data)/seedcodec.FrameSize*seedcodec.FrameSize], nil
}

// Decompress decodes the payload into samples.
func (r *Record) Decompress() (*seedcodec.Samples, error) {
	encoding := r.Encoding()
	data := r.Data
	switch encoding {
	case seedcodec.Steim1, seedcodec.Steim2:
		trimmed, err := r.steimData()
		if err != nil {
			return nil, err
		}
		data = trimmed
	case seedcodec.Int16, seedcodec.Int32, seedcodec.Float32, seedcodec.Float64:
		width := seedcodec.SampleWidth(encoding)
		if need := width * int(r.Header.NumSamples); need <= len(data) {
			data = data[:need]
		}
	}
	return seedcodec.Decode(encoding, data, int(r.Header.NumSamples), !r.BigEndianPayload())
}

// Summary returns a one line description of the record.
func (r *Record) Summary() string {
	return fmt.Sprintf("%s_%s_%s_%s %s %s (%d pts, %g Hz)",
		r.Header.Network, r.Header.Station, r.Header.Location, r.Header.Channel,
		r.StartTime().UTC().Format("2006-01-02T15:04:05.000000Z"),
		r.EndTime().UTC().Format("2006-01-02T15:04:05.000000Z"),
		r.Header.NumSamples, r.SampleRate())
}

// Reader pulls v2 records off an octet stream. Each record's length comes
// from its blockette 1000; records without one are assumed 512 bytes.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps an octet stream with a v2 record reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next record, or io.EOF at a clean end of stream.
func (r *Reader) Next() (*Record, error) {
	head := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.r, head); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, &TruncatedRecordError{"fixed header", FixedHeaderSize, 0}
		}
		return nil, err
	}
	bo, _, err := GuessByteOrder(head)
	if err != nil {
		return nil, err
	}
	header, err := DecodeHeader(head, bo)
	if err != nil {
		return nil, err
	}
	if int(header.DataOffset) < FixedHeaderSize {
		return nil, fmt.Errorf("data offset %d inside fixed header", header.DataOffset)
	}

	// read through the blockettes, then decide the full record length
	pre := make([]byte, int(header.DataOffset)-FixedHeaderSize)
	if _, err := io.ReadFull(r.r, pre); err != nil {
		return nil, &TruncatedRecordError{"blockettes", len(pre), 0}
	}
	rec := &Record{Header: header}
	withBlockettes := append(head, pre...)
	if err := rec.blocketteChain(withBlockettes, bo); err != nil {
		return nil, err
	}
	if rec.B1000 != nil {
		if exp := rec.B1000.RecordLengthExp; exp < 8 || exp > 12 {
			return nil, fmt.Errorf("record length exponent %d from blockette 1000 is not valid, want 8-12", exp)
		}
	}

	data := make([]byte, rec.RecordSize()-int(header.DataOffset))
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, &TruncatedRecordError{"data payload", len(data), 0}
	}
	rec.Data = data
	return rec, nil
}
