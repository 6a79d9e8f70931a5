package devicelist

import (
	"context"
	"fmt"
	"runtime"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/ports"
)

// FFmpegLister asks ffmpeg for the capture devices of the platform input format.
type FFmpegLister struct {
	goos string
	run  func(ctx context.Context, args ...string) ([]byte, error)
}

// NewFFmpeg creates a lister for the running OS.
func NewFFmpeg() *FFmpegLister {
	return &FFmpegLister{goos: runtime.GOOS, run: ffmpeg.CombinedOutput}
}

// ListDevices runs ffmpeg -list_devices and parses its diagnostic output.
// Linux has no listing mode for v4l2, use the sysfs lister there.
func (l *FFmpegLister) ListDevices(ctx context.Context) ([]ports.Device, error) {
	var parse func(string) []ports.Device
	switch l.goos {
	case "darwin":
		parse = ParseAVFoundation
	case "windows":
		parse = ParseDShow
	default:
		return nil, fmt.Errorf("%w: device listing on %s", ffmpeg.ErrPlatformNotSupported, l.goos)
	}

	format, err := ffmpeg.InputFormat(l.goos)
	if err != nil {
		return nil, err
	}

	out, err := l.run(ctx, "-hide_banner", "-f", format, "-list_devices", "true", "-i", "dummy")
	if err != nil {
		return nil, err
	}
	return parse(string(out)), nil
}
