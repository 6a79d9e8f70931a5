// Package devicelist enumerates camera devices.
//
// Several strategies are available: a fixed index probe through a
// CameraOpener, parsing ffmpeg's -list_devices output and reading
// video4linux nodes from sysfs. Enumeration is never fatal; List turns
// failures into an empty result.
package devicelist

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/ports"
)

var (
	// ErrUnknownStrategy is returned by New for an unsupported strategy name.
	ErrUnknownStrategy = errors.New("devicelist: unknown strategy")

	// ErrDeviceNotFound is returned by Resolve for a selection that matches no device.
	ErrDeviceNotFound = errors.New("devicelist: device not found")
)

// Strategy names accepted by New.
const (
	StrategyAuto   = "auto"
	StrategyFFmpeg = "ffmpeg"
	StrategySysfs  = "sysfs"
	StrategyProbe  = "probe"
)

// New returns the lister for strategy. The opener is only used by the probe strategy.
// "auto" reads sysfs on Linux and asks ffmpeg elsewhere, probing when ffmpeg is missing.
func New(strategy string, opener ports.CameraOpener) (ports.DeviceLister, error) {
	switch strategy {
	case "", StrategyAuto:
		if runtime.GOOS == "linux" {
			return NewSysfs(), nil
		}
		if ffmpeg.IsAvailable() {
			return NewFFmpeg(), nil
		}
		return NewProbe(opener), nil
	case StrategyFFmpeg:
		return NewFFmpeg(), nil
	case StrategySysfs:
		return NewSysfs(), nil
	case StrategyProbe:
		return NewProbe(opener), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

// List enumerates devices with lister. Errors are logged and yield an empty list.
func List(ctx context.Context, lister ports.DeviceLister, log ports.Logger) []ports.Device {
	devices, err := lister.ListDevices(ctx)
	if err != nil {
		log.Warn("Device enumeration failed: %v", err)
		return nil
	}
	if len(devices) == 0 {
		log.Warn("No cameras found")
		return nil
	}
	for _, d := range devices {
		log.Debug("Found camera %d: %s", d.Index, d.Label())
	}
	return devices
}

// Resolve maps user selections to devices. A selection matches a device ID,
// a device name (case-insensitive) or an index. Empty selections are ignored.
// An index that was not enumerated and a raw backend identifier (a path or
// an ffmpeg input such as "video=Cam") are passed through so the open can be attempted.
func Resolve(devices []ports.Device, selections []string) ([]ports.Device, error) {
	var resolved []ports.Device
	for _, sel := range selections {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}

		dev, ok := match(devices, sel)
		if !ok {
			if n, err := strconv.Atoi(sel); err == nil && n >= 0 {
				dev = ports.Device{Index: n}
			} else if strings.ContainsAny(sel, "/=:") {
				dev = ports.Device{Index: len(resolved), ID: sel}
			} else {
				return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, sel)
			}
		}
		resolved = append(resolved, dev)
	}
	return resolved, nil
}

func match(devices []ports.Device, sel string) (ports.Device, bool) {
	for _, d := range devices {
		if d.ID != "" && d.ID == sel {
			return d, true
		}
	}
	for _, d := range devices {
		if d.Name != "" && strings.EqualFold(d.Name, sel) {
			return d, true
		}
	}
	if n, err := strconv.Atoi(sel); err == nil {
		for _, d := range devices {
			if d.Index == n {
				return d, true
			}
		}
	}
	return ports.Device{}, false
}
