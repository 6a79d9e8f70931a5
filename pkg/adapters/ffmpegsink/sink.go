// Package ffmpegsink writes camera frames to video files through ffmpeg.
// Frames are piped to ffmpeg as raw RGBA; one process per file.
package ffmpegsink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/juxtapose"
	"github.com/user/duocam/pkg/ports"
)

var (
	// ErrSinkClosed is returned when writing to a closed sink.
	ErrSinkClosed = errors.New("ffmpegsink: sink closed")

	// ErrUnknownStream is returned for a stream index the mux sink was not created with.
	ErrUnknownStream = errors.New("ffmpegsink: unknown stream")

	// ErrMuxNotSupported is returned where extra input pipes cannot be passed to ffmpeg.
	ErrMuxNotSupported = errors.New("ffmpegsink: multiplexed output not supported on this platform")

	// ErrInvalidSize is returned when a stream has no usable frame size.
	ErrInvalidSize = errors.New("ffmpegsink: invalid frame size")
)

// Factory creates ffmpeg backed sinks. It implements ports.SinkFactory.
type Factory struct {
	log ports.Logger
}

// New creates a sink factory.
func New(log ports.Logger) *Factory {
	return &Factory{log: log.WithComponent("ffmpegsink")}
}

var _ ports.SinkFactory = (*Factory)(nil)

// NewFileSink starts an ffmpeg process that encodes frames from stdin into path.
// The container and default codec follow the file extension.
func (f *Factory) NewFileSink(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, info.Width, info.Height)
	}

	ffmpegPath, err := ffmpeg.Find()
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	args = append(args, ffmpeg.RawInputArgs("pipe:0", info)...)
	args = append(args, ffmpeg.EncodeArgs(filepath.Ext(path), opts)...)
	args = append(args, path)

	f.log.Debug("Starting encoder for %s (%dx%d)", path, info.Width, info.Height)
	proc, err := ffmpeg.Start(ffmpegPath, args, ffmpeg.Options{})
	if err != nil {
		return nil, err
	}

	return &fileSink{path: path, info: info, proc: proc, log: f.log}, nil
}

// fileSink feeds one ffmpeg process on stdin.
type fileSink struct {
	path string
	info ports.StreamInfo
	proc *ffmpeg.Process
	log  ports.Logger

	mu     sync.Mutex
	frames int
	closed bool
}

func (s *fileSink) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	if _, err := s.proc.Write(frameBytes(img, s.info.Width, s.info.Height)); err != nil {
		return fmt.Errorf("write frame %d to %s: %w", s.frames, s.path, err)
	}
	s.frames++
	return nil
}

// Close ends the input and waits for ffmpeg to finalize the file.
func (s *fileSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	frames := s.frames
	s.mu.Unlock()

	if err := s.proc.Shutdown(ctx); err != nil {
		return fmt.Errorf("finalize %s: %w", s.path, err)
	}
	s.log.Debug("Wrote %d frames to %s", frames, s.path)
	return nil
}

// frameBytes returns the tightly packed RGBA bytes of img at width x height.
func frameBytes(img image.Image, width, height int) []byte {
	rgba := juxtapose.ToSize(img, width, height)
	rowBytes := width * 4
	if rgba.Stride == rowBytes {
		return rgba.Pix[:rowBytes*height]
	}

	buf := make([]byte, 0, rowBytes*height)
	for y := 0; y < height; y++ {
		start := y * rgba.Stride
		buf = append(buf, rgba.Pix[start:start+rowBytes]...)
	}
	return buf
}
