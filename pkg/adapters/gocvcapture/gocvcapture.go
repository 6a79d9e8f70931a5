// Package gocvcapture opens cameras and writes per-device video files with
// OpenCV through gocv. The real implementation needs the gocv build tag and
// an OpenCV installation; without it every operation returns ErrNotBuilt.
package gocvcapture

import (
	"errors"
	"strings"
)

var (
	// ErrNotBuilt is returned when the binary was built without the gocv tag.
	ErrNotBuilt = errors.New("gocvcapture: built without gocv support")

	// ErrOpenFailed is returned when OpenCV cannot open a device.
	ErrOpenFailed = errors.New("gocvcapture: cannot open device")

	// ErrMuxNotSupported is returned by NewMuxSink. OpenCV writes one stream per file.
	ErrMuxNotSupported = errors.New("gocvcapture: multiplexed output not supported")

	// ErrSinkClosed is returned when writing to a closed sink.
	ErrSinkClosed = errors.New("gocvcapture: sink closed")
)

// FourCC returns the writer codec for a container extension.
func FourCC(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp4":
		return "mp4v"
	case "mkv":
		return "X264"
	default:
		return "XVID"
	}
}
