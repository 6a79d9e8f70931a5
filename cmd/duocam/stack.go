package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/duocam/pkg/adapters/backend"
	"github.com/user/duocam/pkg/adapters/devicelist"
	"github.com/user/duocam/pkg/adapters/ggrenderer"
	"github.com/user/duocam/pkg/adapters/logger"
	"github.com/user/duocam/pkg/adapters/nulldisplay"
	"github.com/user/duocam/pkg/adapters/osfilesystem"
	"github.com/user/duocam/pkg/adapters/snapshot"
	"github.com/user/duocam/pkg/config"
	"github.com/user/duocam/pkg/ports"
	"github.com/user/duocam/pkg/session"
	"github.com/user/duocam/pkg/summarizer"
)

// newBackend is replaced in tests.
var newBackend = backend.New

// stack holds the adapters shared by the commands.
type stack struct {
	cfg      config.Config
	log      ports.Logger
	backend  *backend.Backend
	lister   ports.DeviceLister
	renderer *ggrenderer.Renderer
	fs       *osfilesystem.FileSystem
	out      io.Writer

	// backendErr is why no backend could be selected. Listing devices
	// still works without one; opening them does not.
	backendErr error
}

func newStack(cfg config.Config, quiet bool) (*stack, error) {
	// Create logger
	var log ports.Logger
	if quiet || cfg.LogLevel == "quiet" {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	st := &stack{
		cfg:      cfg,
		log:      log,
		renderer: ggrenderer.New(),
		fs:       osfilesystem.New(),
		out:      os.Stdout,
	}

	var opener ports.CameraOpener
	b, err := newBackend(backend.Kind(cfg.Backend), backend.Options{
		FFmpegPath: cfg.FFmpegPath,
		Logger:     log,
	})
	if err != nil {
		st.backendErr = err
	} else {
		st.backend = b
		opener = b.Opener
	}

	lister, err := devicelist.New(cfg.Enumerator, opener)
	if err != nil {
		return nil, err
	}
	st.lister = lister
	return st, nil
}

// resolve enumerates the cameras and maps the selections onto them.
func (s *stack) resolve(ctx context.Context, selections []string) ([]ports.Device, error) {
	devices := devicelist.List(ctx, s.lister, s.log)
	return devicelist.Resolve(devices, selections)
}

// controller creates a session controller showing frames on extra and,
// when configured, the preview file. It fails when no backend is available.
func (s *stack) controller(extra ...ports.Display) (*session.Controller, error) {
	if s.backendErr != nil {
		return nil, s.backendErr
	}

	var out displays
	if s.cfg.Preview.File != "" {
		out = append(out, snapshot.New(
			s.cfg.Preview.File,
			s.fs,
			s.renderer,
			s.cfg.Preview.JPEGQuality,
			time.Duration(s.cfg.Preview.IntervalMs)*time.Millisecond,
		))
	}
	out = append(out, extra...)

	var display ports.Display
	switch len(out) {
	case 0:
		display = nulldisplay.New()
	case 1:
		display = out[0]
	default:
		display = out
	}

	return session.New(s.backend.Opener, s.backend.Sinks, display, s.renderer, s.fs, s.log, s.cfg.ToSessionOptions()), nil
}

// report prints the files of a finished recording and writes its summary.
func (s *stack) report(result session.Result) {
	if len(result.Artifacts) == 0 {
		return
	}
	summary := s.summary(result)
	fmt.Fprint(s.out, summarizer.Text.Format(summary))

	if !s.cfg.Summary {
		return
	}
	path := summarizer.PathFor(s.cfg.OutputDir, result.StartedAt)
	s.log.Info("Writing %s", path)
	if err := s.summaryWriter().Write(path, summary); err != nil {
		s.log.Warn("Failed to write summary: %v", err)
	}
}

func (s *stack) summary(result session.Result) *summarizer.Summary {
	var kind backend.Kind
	if s.backend != nil {
		kind = s.backend.Info.Kind
	}
	return summarizer.NewBuilder().
		WithResult(result).
		WithSettings(summarizer.Settings{
			Backend: string(kind),
			Format:  s.cfg.Format,
			Codec:   s.cfg.Encoder.Codec,
			Width:   s.cfg.Capture.Width,
			Height:  s.cfg.Capture.Height,
			FPS:     s.cfg.Capture.FPS,
			Bitrate: s.cfg.Encoder.Bitrate,
			Quality: s.cfg.Encoder.Quality,
		}).
		Build()
}

func (s *stack) summaryWriter() *summarizer.Writer {
	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	return summarizer.NewWriter(formatter, s.fs)
}

// displays shows every frame on each of its members.
type displays []ports.Display

func (d displays) Show(img image.Image) error {
	var errs []error
	for _, display := range d {
		if err := display.Show(img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d displays) Clear() error {
	var errs []error
	for _, display := range d {
		if err := display.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ ports.Display = displays(nil)
