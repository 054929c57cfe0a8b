package encode

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/golang/groupcache/lru"

	"github.com/lanikai/framecast/internal/metrics"
)

// Retention bounds the number of files kept in an output directory. Once
// frame i has been written, frame i-max-1 is removed, leaving the newest file
// plus max files of history.
type Retention struct {
	files *lru.Cache
}

func NewRetention(max int) *Retention {
	c := lru.New(max + 1)
	c.OnEvicted = func(key lru.Key, value interface{}) {
		path := value.(string)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error("Failed to unlink %s: %v", path, err)
			metrics.RetentionEvictions.WithLabelValues("error").Inc()
			return
		}
		log.Low("Unlinked %s", path)
		metrics.RetentionEvictions.WithLabelValues("removed").Inc()
	}
	return &Retention{files: c}
}

// Written records that frame seq now exists at path, evicting the oldest
// file if the window is full.
func (r *Retention) Written(seq uint64, path string) {
	r.files.Add(seq, path)
}

// Len is the number of files currently tracked.
func (r *Retention) Len() int {
	return r.files.Len()
}

// Clear unlinks capture files with extension ext left in dir by an earlier
// run, so the window starts empty. Other files are left alone.
func (r *Retention) Clear(dir, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Wrap(err, "scan output directory")
	}
	n := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !isCaptureFile(e.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return n, errors.Wrap(err, "remove stale frame")
		}
		n++
	}
	if n > 0 {
		log.Medium("Removed %d stale frames from %s", n, dir)
	}
	return n, nil
}

// isCaptureFile matches "capture_<digits>.<ext>".
func isCaptureFile(name, ext string) bool {
	seq := strings.TrimSuffix(strings.TrimPrefix(name, "capture_"), "."+ext)
	if len(seq) == 0 || len(seq)+len("capture_")+len(ext)+1 != len(name) {
		return false
	}
	for _, c := range seq {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
