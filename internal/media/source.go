package media

import "io"

/*
A FrameSource produces raw frames on demand. The capture stage owns the
destination images (they live in its slot pool) and asks the source to fill
one per period:

	src, err := media.OpenSource("v4l2:/dev/video0")
	if err := src.Configure(640, 480); err != nil { ... }
	img := media.NewImage(640, 480)
	for {
		if err := src.AcquireFrame(img); err != nil { ... }
		// img.Pix holds the new frame until the next call.
	}

Implementations need not be safe for concurrent use; the capture stage is the
only caller.
*/
type FrameSource interface {
	io.Closer

	// Configure sets the frame size. Must be called before AcquireFrame.
	Configure(width, height int) error

	// AcquireFrame fills dst with the next frame. dst must match the
	// configured size. Returns ErrNoFrame (possibly wrapped) when the source
	// has nothing to deliver.
	AcquireFrame(dst *Image) error
}

// Geometry is implemented by sources that know their configured frame size.
type Geometry interface {
	Width() int
	Height() int
}

// size holds the configured geometry shared by the built-in sources.
type size struct {
	width, height int
}

func (s *size) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return errNotSupported
	}
	s.width, s.height = width, height
	return nil
}

func (s *size) Width() int  { return s.width }
func (s *size) Height() int { return s.height }

func (s *size) check(dst *Image) error {
	if s.width == 0 {
		return errNotConfigured
	}
	if dst.Width != s.width || dst.Height != s.height || len(dst.Pix) < dst.Size() {
		return errSizeMismatch
	}
	return nil
}
