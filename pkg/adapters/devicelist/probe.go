package devicelist

import (
	"context"
	"errors"

	"github.com/user/duocam/pkg/ports"
)

// ErrNoOpener is returned by ProbeLister when no capture backend is available to open devices.
var ErrNoOpener = errors.New("devicelist: no camera opener to probe with")

// DefaultProbeCount is the number of indices probed from 0.
const DefaultProbeCount = 5

// ProbeLister opens each index of a fixed range and keeps the ones that open.
type ProbeLister struct {
	opener ports.CameraOpener
	Start  int
	Count  int
}

// NewProbe creates a lister probing indices [0, 5).
func NewProbe(opener ports.CameraOpener) *ProbeLister {
	return &ProbeLister{opener: opener, Count: DefaultProbeCount}
}

// ListDevices opens and immediately closes every index in the range.
func (l *ProbeLister) ListDevices(ctx context.Context) ([]ports.Device, error) {
	if l.opener == nil {
		return nil, ErrNoOpener
	}

	var devices []ports.Device
	for i := l.Start; i < l.Start+l.Count; i++ {
		if err := ctx.Err(); err != nil {
			return devices, err
		}

		cam, err := l.opener.Open(ctx, ports.Device{Index: i}, ports.CaptureOptions{})
		if err != nil {
			continue
		}
		devices = append(devices, cam.Device())
		cam.Close()
	}
	return devices, nil
}
