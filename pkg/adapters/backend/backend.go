// Package backend selects the capture and encoding backend with fallback support.
package backend

import (
	"errors"
	"fmt"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/adapters/ffmpegcamera"
	"github.com/user/duocam/pkg/adapters/ffmpegsink"
	"github.com/user/duocam/pkg/adapters/gocvcapture"
	"github.com/user/duocam/pkg/adapters/logger"
	"github.com/user/duocam/pkg/ports"
)

// Kind names a backend.
type Kind string

const (
	// KindAuto prefers gocv when compiled in and falls back to ffmpeg.
	KindAuto Kind = "auto"
	// KindFFmpeg captures and encodes through ffmpeg child processes.
	KindFFmpeg Kind = "ffmpeg"
	// KindGoCV captures and writes files through OpenCV.
	KindGoCV Kind = "gocv"
)

// Info contains information about the selected backend.
type Info struct {
	// Kind is the backend actually used.
	Kind Kind
	// Requested is the backend that was originally requested.
	Requested Kind
	// FallbackUsed indicates whether a fallback occurred.
	FallbackUsed bool
}

// Options configures backend selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// NoFallback makes New fail instead of switching to the other backend.
	NoFallback bool
	// Logger is passed to the backend and receives fallback warnings.
	Logger ports.Logger
}

// Backend bundles what the session controller needs from a backend.
type Backend struct {
	Opener ports.CameraOpener
	Sinks  ports.SinkFactory
	Info   Info
}

var (
	// ErrNoBackendAvailable is returned when neither ffmpeg nor gocv can be used.
	ErrNoBackendAvailable = errors.New("backend: no backend available")

	// ErrUnknownKind is returned for an unsupported backend name.
	ErrUnknownKind = errors.New("backend: unknown backend")
)

// availability reports which backends can run.
type availability struct {
	ffmpeg func() bool
	gocv   func() bool
}

var system = availability{
	ffmpeg: ffmpeg.IsAvailable,
	gocv:   gocvcapture.Available,
}

// New creates the camera opener and sink factory for kind.
//
// The selection flow:
//  1. auto: gocv when compiled in, otherwise ffmpeg
//  2. ffmpeg: ffmpeg, falling back to gocv unless NoFallback
//  3. gocv: gocv, falling back to ffmpeg unless NoFallback
func New(kind Kind, opts Options) (*Backend, error) {
	if opts.FFmpegPath != "" {
		ffmpeg.SetPath(opts.FFmpegPath)
	}

	info, err := choose(kind, opts.NoFallback, system)
	if err != nil {
		return nil, err
	}
	if info.FallbackUsed && opts.Logger != nil {
		opts.Logger.Warn("%s backend not available, falling back to %s", info.Requested, info.Kind)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}

	switch info.Kind {
	case KindGoCV:
		return &Backend{Opener: gocvcapture.New(log), Sinks: gocvcapture.NewFactory(log), Info: info}, nil
	default:
		return &Backend{Opener: ffmpegcamera.New(log), Sinks: ffmpegsink.New(log), Info: info}, nil
	}
}

func choose(kind Kind, noFallback bool, avail availability) (Info, error) {
	if kind == "" {
		kind = KindAuto
	}
	info := Info{Requested: kind}

	var preferred, fallback Kind
	switch kind {
	case KindAuto:
		preferred, fallback = KindGoCV, KindFFmpeg
		// Auto never counts as a fallback.
		noFallback = false
	case KindFFmpeg:
		preferred, fallback = KindFFmpeg, KindGoCV
	case KindGoCV:
		preferred, fallback = KindGoCV, KindFFmpeg
	default:
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if avail.has(preferred) {
		info.Kind = preferred
		return info, nil
	}
	if noFallback || !avail.has(fallback) {
		return Info{}, fmt.Errorf("%w: requested %s", ErrNoBackendAvailable, kind)
	}

	info.Kind = fallback
	info.FallbackUsed = kind != KindAuto
	return info, nil
}

func (a availability) has(k Kind) bool {
	switch k {
	case KindFFmpeg:
		return a.ffmpeg()
	case KindGoCV:
		return a.gocv()
	default:
		return false
	}
}

// IsFFmpegAvailable checks if the ffmpeg backend can run.
func IsFFmpegAvailable() bool {
	return system.ffmpeg()
}

// IsGoCVAvailable checks if the binary was built with OpenCV support.
func IsGoCVAvailable() bool {
	return system.gocv()
}
