// Package merge joins contiguous miniSEED 3 records into larger records.
//
// Records are only compared with their immediate neighbor, so the input is
// expected to be in time sorted order per channel. Extra headers of the
// first record of a merge group win; headers on later records are dropped,
// since merging free form JSON trees automatically is not well defined.
package merge

import (
	"fmt"
	"time"

	"github.com/seisgo/mseed/pkg/mseed3"
	"github.com/seisgo/mseed/pkg/seedcodec"
	"github.com/seisgo/mseed/pkg/seedtime"
)

// DefaultMaxRecordSize bounds the packed size of merged output records.
const DefaultMaxRecordSize = 4096

// DefaultToleranceFactor is the fraction of one sample period within which
// a record start time counts as continuous.
const DefaultToleranceFactor = 0.5

// Options configures a Merger.
type Options struct {
	// Decompress decodes Steim payloads so records in differential
	// encodings can merge; outputs are re-encoded in the original
	// encoding. Without it Steim records pass through unchanged.
	Decompress bool
	// MaxRecordSize bounds packed output records, splitting merge groups
	// that grow past it. Zero means DefaultMaxRecordSize.
	MaxRecordSize int
	// ToleranceFactor overrides DefaultToleranceFactor when positive.
	ToleranceFactor float64
}

func (o Options) maxSize() int {
	if o.MaxRecordSize > 0 {
		return o.MaxRecordSize
	}
	return DefaultMaxRecordSize
}

func (o Options) tolerance() float64 {
	if o.ToleranceFactor > 0 {
		return o.ToleranceFactor
	}
	return DefaultToleranceFactor
}

// Compatible reports whether b can be appended to a: same identifier,
// sample rate, encoding and publication version, with b starting within
// tolFactor sample periods of a's predicted next sample.
func Compatible(a, b *mseed3.Record, tolFactor float64) bool {
	if a.Identifier != b.Identifier ||
		a.Header.SampleRatePeriod != b.Header.SampleRatePeriod ||
		a.Header.Encoding != b.Header.Encoding ||
		a.Header.PublicationVersion != b.Header.PublicationVersion {
		return false
	}
	if !a.Endtime().Before(b.Starttime()) {
		return false
	}
	gap := b.Starttime().Sub(a.Header.PredictedNextStart())
	if gap < 0 {
		gap = -gap
	}
	tol := time.Duration(tolFactor * float64(a.Header.SamplePeriod()))
	return gap < tol
}

// mergeable reports whether the encoding supports raw payload
// concatenation.
func mergeable(encoding uint8) bool {
	return seedcodec.IsPrimitive(encoding)
}

// group is an open run of contiguous records.
type group struct {
	first     *mseed3.Record // emitted unchanged if nothing merged into it
	header    mseed3.Header  // from the first record, decompressed form
	eh        *mseed3.Value
	targetEnc uint8  // encoding to emit
	raw       []byte // concatenated primitive payload, little-endian
	count     int
}

// Merger accumulates records and emits merged ones. Feed records with Add,
// then drain the final group with Flush.
type Merger struct {
	opts Options
	cur  *group
}

// NewMerger returns a Merger with the given options.
func NewMerger(opts Options) *Merger {
	return &Merger{opts: opts}
}

// Add offers the next record and returns zero or more finished output
// records.
func (m *Merger) Add(rec *mseed3.Record) ([]*mseed3.Record, error) {
	targetEnc := rec.Header.Encoding
	work := rec
	if m.opts.Decompress && seedcodec.CanDecode(rec.Header.Encoding) {
		dec, err := rec.DecompressedRecord()
		if err != nil {
			return nil, err
		}
		work = dec
	}

	if !mergeable(work.Header.Encoding) {
		// text, opaque or still-compressed payloads pass through
		out, err := m.finishCurrent()
		if err != nil {
			return nil, err
		}
		return append(out, rec), nil
	}

	if m.cur != nil {
		prevHeader := m.cur.header
		prevHeader.NumSamples = m.cur.numSamples()
		prev := &mseed3.Record{Header: prevHeader, Identifier: m.cur.first.Identifier}
		if m.cur.targetEnc == targetEnc && Compatible(prev, work, m.opts.tolerance()) {
			m.cur.raw = append(m.cur.raw, work.Data...)
			m.cur.count++
			return nil, nil
		}
	}

	out, err := m.finishCurrent()
	if err != nil {
		return nil, err
	}
	m.cur = &group{
		first:     rec,
		header:    work.Header,
		eh:        work.ExtraHeaders,
		targetEnc: targetEnc,
		raw:       append([]byte(nil), work.Data...),
		count:     1,
	}
	return out, nil
}

// Flush emits whatever group is still open.
func (m *Merger) Flush() ([]*mseed3.Record, error) {
	return m.finishCurrent()
}

func (g *group) numSamples() uint32 {
	width := seedcodec.SampleWidth(g.header.Encoding)
	return uint32(len(g.raw) / width)
}

func (m *Merger) finishCurrent() ([]*mseed3.Record, error) {
	g := m.cur
	m.cur = nil
	if g == nil {
		return nil, nil
	}
	if g.count == 1 {
		return []*mseed3.Record{g.first}, nil
	}

	overhead := mseed3.FixedHeaderSize + len(g.first.Identifier)
	if g.eh != nil && !g.eh.IsEmpty() {
		overhead += len(g.eh.JSON())
	}
	avail := m.opts.maxSize() - overhead
	if avail < seedcodec.FrameSize {
		avail = seedcodec.FrameSize
	}

	switch g.targetEnc {
	case seedcodec.Steim1, seedcodec.Steim2:
		return m.emitSteim(g, avail)
	default:
		return m.emitPrimitive(g, avail)
	}
}

// emitPrimitive splits the concatenated payload at sample boundaries.
func (m *Merger) emitPrimitive(g *group, avail int) ([]*mseed3.Record, error) {
	width := seedcodec.SampleWidth(g.header.Encoding)
	perRecord := avail / width
	if perRecord < 1 {
		perRecord = 1
	}
	total := int(g.numSamples())

	var out []*mseed3.Record
	for offset := 0; offset < total; offset += perRecord {
		n := perRecord
		if offset+n > total {
			n = total - offset
		}
		header := g.header
		header.NumSamples = uint32(n)
		header.SetStarttime(g.chunkStart(offset))
		out = append(out, &mseed3.Record{
			Header:       header,
			Identifier:   g.first.Identifier,
			ExtraHeaders: g.eh.Clone(),
			Data:         g.raw[offset*width : (offset+n)*width],
		})
	}
	return out, nil
}

// emitSteim re-encodes the merged samples, filling records up to the frame
// budget implied by the size limit.
func (m *Merger) emitSteim(g *group, avail int) ([]*mseed3.Record, error) {
	samples, err := seedcodec.Decode(g.header.Encoding, g.raw, int(g.numSamples()), true)
	if err != nil {
		return nil, err
	}
	vals, err := samples.Int32Values()
	if err != nil {
		return nil, err
	}
	maxFrames := avail / seedcodec.FrameSize
	if maxFrames < 1 {
		maxFrames = 1
	}

	var out []*mseed3.Record
	offset := 0
	for offset < len(vals) {
		var data []byte
		var n int
		switch g.targetEnc {
		case seedcodec.Steim1:
			data, n, err = seedcodec.EncodeSteim1Frames(vals[offset:], maxFrames)
		default:
			data, n, err = seedcodec.EncodeSteim2Frames(vals[offset:], maxFrames)
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("merge: steim encoder made no progress at sample %d", offset)
		}
		header := g.header
		header.Encoding = g.targetEnc
		header.NumSamples = uint32(n)
		header.SetStarttime(g.chunkStart(offset))
		out = append(out, &mseed3.Record{
			Header:       header,
			Identifier:   g.first.Identifier,
			ExtraHeaders: g.eh.Clone(),
			Data:         data,
		})
		offset += n
	}
	return out, nil
}

// chunkStart is the time of sample index offset within the merge group.
func (g *group) chunkStart(offset int) time.Time {
	return g.header.Starttime().Add(seedtime.SampleOffset(g.header.SampleRatePeriod, offset))
}

// Records merges a full slice of records in order.
func Records(records []*mseed3.Record, opts Options) ([]*mseed3.Record, error) {
	merger := NewMerger(opts)
	var out []*mseed3.Record
	for _, rec := range records {
		emitted, err := merger.Add(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, emitted...)
	}
	emitted, err := merger.Flush()
	if err != nil {
		return nil, err
	}
	return append(out, emitted...), nil
}
