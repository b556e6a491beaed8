// Package holdings maintains a persistent index of what time spans a set
// of miniSEED 3 files holds, per source identifier. The index lives in a
// pebble key-value store so repeated scans over large archives stay cheap.
package holdings

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/seisgo/mseed/pkg/mseed3"
)

const spanPrefix = "span|"

// Span records one record's worth of data coverage.
type Span struct {
	SourceID   string    `json:"sid"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	NumSamples int       `json:"numSamples"`
	SampleRate float64   `json:"sampleRate"`
	File       string    `json:"file"`
	Offset     int64     `json:"offset"`
	ScanID     string    `json:"scanId"`
}

// ScanResult summarizes one ScanFile call.
type ScanResult struct {
	ScanID  string
	Records int
	Samples int64
}

// Index is a holdings database.
type Index struct {
	db *pebble.DB
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func spanKey(sid string, start time.Time, scanID string) []byte {
	return []byte(fmt.Sprintf("%s%s|%020d|%s", spanPrefix, sid, start.UnixNano(), scanID))
}

// ScanFile reads every record of a miniSEED 3 file and records its span.
// Each scan gets a fresh ksuid so entries from superseded scans of the
// same file can be told apart.
func (ix *Index) ScanFile(path string) (ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ScanResult{}, err
	}
	defer f.Close()

	result := ScanResult{ScanID: ksuid.New().String()}
	reader := mseed3.NewReader(f)
	var offset int64
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("holdings: scanning %s: %w", path, err)
		}
		span := Span{
			SourceID:   rec.Identifier,
			Start:      rec.Starttime(),
			End:        rec.Endtime(),
			NumSamples: int(rec.Header.NumSamples),
			SampleRate: rec.Header.SampleRate(),
			File:       path,
			Offset:     offset,
			ScanID:     result.ScanID,
		}
		if err := ix.put(span); err != nil {
			return result, err
		}
		offset += int64(rec.Header.RecordSize())
		result.Records++
		result.Samples += int64(rec.Header.NumSamples)
	}
}

func (ix *Index) put(span Span) error {
	val, err := json.Marshal(span)
	if err != nil {
		return fmt.Errorf("holdings: %w", err)
	}
	if err := ix.db.Set(spanKey(span.SourceID, span.Start, span.ScanID), val, pebble.NoSync); err != nil {
		return fmt.Errorf("holdings: %w", err)
	}
	return nil
}

// Spans returns all recorded spans for a source identifier, in start time
// order.
func (ix *Index) Spans(sid string) ([]Span, error) {
	lower := []byte(spanPrefix + sid + "|")
	upper := []byte(spanPrefix + sid + "}")
	iter, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	defer iter.Close()

	var out []Span
	for iter.First(); iter.Valid(); iter.Next() {
		var span Span
		if err := json.Unmarshal(iter.Value(), &span); err != nil {
			return nil, fmt.Errorf("holdings: bad entry %q: %w", iter.Key(), err)
		}
		out = append(out, span)
	}
	return out, iter.Error()
}

// SourceIDs returns the distinct identifiers with any holdings.
func (ix *Index) SourceIDs() ([]string, error) {
	lower := []byte(spanPrefix)
	upper := []byte("span}")
	iter, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	defer iter.Close()

	var out []string
	seen := map[string]bool{}
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		rest := strings.TrimPrefix(key, spanPrefix)
		sid := rest
		if i := strings.Index(rest, "|"); i >= 0 {
			sid = rest[:i]
		}
		if !seen[sid] {
			seen[sid] = true
			out = append(out, sid)
		}
	}
	return out, iter.Error()
}
