package encode

import "github.com/pkg/errors"

var (
	errUnknownFormat = errors.New("encode: unknown output format")
	errNoSOI         = errors.New("encode: codec output has no start-of-image marker")
	errCommentSize   = errors.New("encode: comment does not fit a JPEG COM segment")
)
