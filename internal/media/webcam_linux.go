//go:build linux
// +build linux

package media

import (
	"github.com/blackjack/webcam"
	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/color"
)

// Streams raw frames from a V4L2 camera in YUYV 4:2:2 and converts them to BGR.
// Example source spec: "v4l2:/dev/video0"

const (
	fourccYUYV = 0x56595559

	// Kernel driver buffers, matching the capture slot pool depth.
	webcamBuffers = 4

	// Seconds to wait for a frame before reporting ErrNoFrame.
	webcamTimeout = 1
)

type webcamSource struct {
	size

	cam       *webcam.Webcam
	streaming bool
}

func openWebcam(devPath string) (FrameSource, error) {
	if devPath == "" {
		devPath = "/dev/video0"
	}
	cam, err := webcam.Open(devPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", devPath)
	}
	return &webcamSource{cam: cam}, nil
}

func (src *webcamSource) Configure(width, height int) error {
	if err := src.size.Configure(width, height); err != nil {
		return err
	}
	format, w, h, err := src.cam.SetImageFormat(webcam.PixelFormat(fourccYUYV), uint32(width), uint32(height))
	if err != nil {
		return errors.Wrap(err, "set image format")
	}
	if format != fourccYUYV {
		return errors.Wrapf(errBadPixelFormat, "driver chose fourcc %#x", uint32(format))
	}
	if int(w) != width || int(h) != height {
		return errors.Wrapf(errNotSupported, "driver chose %dx%d", w, h)
	}
	if err := src.cam.SetBufferCount(webcamBuffers); err != nil {
		return errors.Wrap(err, "set buffer count")
	}
	log.Medium("Configured camera for %dx%d YUYV", width, height)
	return nil
}

func (src *webcamSource) AcquireFrame(dst *Image) error {
	if err := src.check(dst); err != nil {
		return err
	}
	if !src.streaming {
		if err := src.cam.StartStreaming(); err != nil {
			return errors.Wrap(err, "start streaming")
		}
		src.streaming = true
	}

	if err := src.cam.WaitForFrame(webcamTimeout); err != nil {
		switch err.(type) {
		case *webcam.Timeout:
			return errors.Wrap(ErrNoFrame, "camera timed out")
		default:
			return errors.Wrap(err, "wait for frame")
		}
	}
	frame, err := src.cam.ReadFrame()
	if err != nil {
		return errors.Wrap(err, "read frame")
	}
	if len(frame) < dst.Width*dst.Height*2 {
		return errors.Wrapf(ErrNoFrame, "short frame (%d bytes)", len(frame))
	}
	color.YUYVToBGR(dst.Pix, color.WrapYUYV(frame, dst.Width, dst.Height))
	return nil
}

func (src *webcamSource) Close() error {
	if src.streaming {
		if err := src.cam.StopStreaming(); err != nil {
			log.Error("Failed to stop streaming: %v", err)
		}
		src.streaming = false
	}
	return src.cam.Close()
}

func init() {
	RegisterSourceType("v4l2", openWebcam)
}
