//////////////////////////////////////////////////////////////////////////////
//
// Media errors
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import "github.com/pkg/errors"

var (
	// ErrNoFrame means the source produced nothing for this request, e.g. a
	// camera hiccup. Callers treat it as fatal for the capture stage.
	ErrNoFrame = errors.New("media: no frame available")

	errNotConfigured  = errors.New("media: source not configured")
	errSizeMismatch   = errors.New("media: image size mismatch")
	errNotSupported   = errors.New("media: not supported") // "can't do" items
	errBadPixelFormat = errors.New("media: unsupported pixel format")
)
