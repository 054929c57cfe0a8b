package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"capture_0002.ppm": "P6\n1 1\n# Timestamp: 100.250000\n255\n\x00\x00\x00",
		"capture_0001.ppm": "P6\n1 1\n# Timestamp: 100.000000\n255\n\x00\x00\x00",
		"capture_0003.ppm": "P6\n1 1\n# Timestamp: 100.750000\n255\n\x00\x00\x00",
		"notes.txt":        "no stamp here",
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0666))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0777))
	return dir
}

func TestTimestampsCSV(t *testing.T) {
	dir := writeFrames(t)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"timestamps", dir})
	require.NoError(t, cmd.Execute())

	want := filepath.Join(dir, "capture_0001.ppm") + ",100.000000,\n" +
		filepath.Join(dir, "capture_0002.ppm") + ",100.250000,\n" +
		filepath.Join(dir, "capture_0003.ppm") + ",100.750000,\n"
	assert.Equal(t, want, out.String())
}

func TestIntervals(t *testing.T) {
	stamps, err := scanTimestamps(writeFrames(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5}, intervals(stamps))
}

func TestHistogram(t *testing.T) {
	buckets, err := histogram([]float64{1, 1, 1.5, 2}, 2)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, 1.0, buckets[0].Low)
	assert.Equal(t, 1.5, buckets[1].Low)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, 2, buckets[1].Count)

	buckets, err = histogram([]float64{0.1, 0.1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, buckets[2].Count)

	_, err = histogram(nil, 0)
	assert.Error(t, err)
}
