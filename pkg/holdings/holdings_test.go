package holdings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisgo/mseed/pkg/mseed3"
	"github.com/seisgo/mseed/pkg/seedcodec"
)

func writeTestFile(t *testing.T, dir string, sid string, numRecords int) string {
	t.Helper()
	path := filepath.Join(dir, "data.ms3")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < numRecords; i++ {
		samples := make([]int32, 100)
		for j := range samples {
			samples[j] = int32(j)
		}
		var header mseed3.Header
		header.SetStarttime(start.Add(time.Duration(i) * time.Second))
		header.SampleRatePeriod = 100
		rec, err := mseed3.NewRecordFromSamples(header, sid, seedcodec.NewInt32Samples(samples))
		require.NoError(t, err)
		_, err = mseed3.WriteRecords(f, []*mseed3.Record{rec})
		require.NoError(t, err)
	}
	return path
}

func TestScanAndQuery(t *testing.T) {
	dir := t.TempDir()
	sid := "FDSN:CO_BIRD_00_H_H_Z"
	path := writeTestFile(t, dir, sid, 3)

	ix, err := Open(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer ix.Close()

	result, err := ix.ScanFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, int64(300), result.Samples)
	assert.NotEmpty(t, result.ScanID)

	spans, err := ix.Spans(sid)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, sid, spans[0].SourceID)
	assert.Equal(t, 100, spans[0].NumSamples)
	assert.Equal(t, path, spans[0].File)
	assert.True(t, spans[0].Start.Before(spans[1].Start))
	// record offsets step by the packed record size
	assert.Equal(t, spans[1].Offset-spans[0].Offset, spans[2].Offset-spans[1].Offset)

	sids, err := ix.SourceIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{sid}, sids)
}

func TestSpansUnknownSid(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer ix.Close()

	spans, err := ix.Spans("FDSN:XX_NOPE__B_H_Z")
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestScanMissingFile(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer ix.Close()

	_, err = ix.ScanFile(filepath.Join(dir, "missing.ms3"))
	assert.Error(t, err)
}
