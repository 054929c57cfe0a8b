package encode

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TimestampComment formats t as the comment line embedded in every image,
// "# Timestamp: <seconds since epoch>\n" with microsecond precision.
func TimestampComment(t time.Time) string {
	return fmt.Sprintf("# Timestamp: %f\n", float64(t.Unix())+float64(t.Nanosecond())/1e9)
}

var timestampRE = regexp.MustCompile(`Timestamp:[\s]+(\S*)`)

// TimestampText returns the text following the first "Timestamp:" in data,
// which may be a whole image file.
func TimestampText(data []byte) (string, bool) {
	m := timestampRE.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// FindTimestamp parses the first embedded timestamp. ok is false when there
// is none.
func FindTimestamp(data []byte) (ts float64, ok bool, err error) {
	raw, ok := TimestampText(data)
	if !ok {
		return 0, false, nil
	}
	ts, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, errors.Wrapf(err, "bad timestamp %q", raw)
	}
	return ts, true, nil
}
