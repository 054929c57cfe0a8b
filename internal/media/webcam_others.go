//go:build !linux
// +build !linux

package media

func init() {
	RegisterSourceType("v4l2", func(string) (FrameSource, error) {
		return nil, errNotSupported
	})
}
