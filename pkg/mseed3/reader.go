package mseed3

import (
	"bufio"
	"errors"
	"hash/crc32"
	"io"
	"log"
	"regexp"
)

// ReaderConfig controls a streaming record reader.
type ReaderConfig struct {
	// SkipCRCCheck accepts records without recomputing checksums.
	SkipCRCCheck bool
	// Lenient logs and skips records that fail CRC verification instead
	// of stopping. Structural errors in the fixed header still stop the
	// reader since the record boundary is lost.
	Lenient bool
	// Match filters records by a regular expression over the source
	// identifier. Non-matching records are skipped without parsing their
	// extra headers or payload.
	Match *regexp.Regexp
}

// Reader pulls records off an octet stream one at a time. Record
// boundaries come solely from the declared lengths in each fixed header;
// there is no framing escape. A short read inside a record surfaces as a
// TruncatedRecordError.
type Reader struct {
	r      *bufio.Reader
	config ReaderConfig
}

// NewReader wraps an octet stream with a fail-fast record reader.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithConfig(r, ReaderConfig{})
}

// NewReaderWithConfig wraps an octet stream with a record reader.
func NewReaderWithConfig(r io.Reader, config ReaderConfig) *Reader {
	return &Reader{r: bufio.NewReader(r), config: config}
}

// Next returns the next record, or io.EOF at a clean end of stream.
func (r *Reader) Next() (*Record, error) {
	for {
		rec, err := r.next()
		if err != nil {
			var crcErr *CRCMismatchError
			if r.config.Lenient && errors.As(err, &crcErr) {
				log.Printf("mseed3: skipping record: %v", err)
				continue
			}
			return nil, err
		}
		if rec == nil {
			// filtered out by Match
			continue
		}
		return rec, nil
	}
}

func (r *Reader) next() (*Record, error) {
	headBytes := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.r, headBytes); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, &TruncatedRecordError{"fixed header", FixedHeaderSize, 0}
		}
		return nil, err
	}
	header, err := UnpackFixedHeader(headBytes)
	if err != nil {
		return nil, err
	}

	rest := make([]byte, header.RecordSize()-FixedHeaderSize)
	if _, err := io.ReadFull(r.r, rest); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &TruncatedRecordError{"record body", len(rest), 0}
		}
		return nil, err
	}

	identifier := string(rest[:header.IdentifierLength])
	if r.config.Match != nil && !r.config.Match.MatchString(identifier) {
		return nil, nil
	}

	if !r.config.SkipCRCCheck {
		crc := crc32.Checksum(headBytes[:CRCOffset], castagnoli)
		crc = crc32.Update(crc, castagnoli, []byte{0, 0, 0, 0})
		crc = crc32.Update(crc, castagnoli, headBytes[CRCOffset+4:])
		crc = crc32.Update(crc, castagnoli, rest)
		if crc != header.CRC {
			return nil, &CRCMismatchError{Computed: crc, Stored: header.CRC}
		}
	}

	offset := int(header.IdentifierLength)
	eh, err := ParseExtraHeaders(rest[offset : offset+int(header.ExtraHeadersLength)])
	if err != nil {
		return nil, err
	}
	offset += int(header.ExtraHeadersLength)
	data := rest[offset : offset+int(header.DataLength)]

	return &Record{Header: header, Identifier: identifier, ExtraHeaders: eh, Data: data}, nil
}

// ReadAll drains the reader, returning every record.
func ReadAll(r io.Reader) ([]*Record, error) {
	reader := NewReader(r)
	var out []*Record
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// WriteRecords packs records to a writer in order.
func WriteRecords(w io.Writer, records []*Record) (int, error) {
	total := 0
	for _, rec := range records {
		b, err := rec.Pack()
		if err != nil {
			return total, err
		}
		n, err := w.Write(b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
