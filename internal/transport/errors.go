package transport

import (
	errors "golang.org/x/xerrors"
)

// ErrMalformed means the peer sent a frame that violates the size limits.
// The connection is closed rather than trusting the lengths.
var ErrMalformed = errors.New("transport: malformed frame")
