// Package ffmpegcamera captures webcam frames through an ffmpeg child process
// that writes raw RGBA frames to a pipe.
package ffmpegcamera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/ports"
)

// ErrOpenFailed is returned when the device produced no frame before the open timeout.
var ErrOpenFailed = errors.New("ffmpegcamera: device did not start")

const (
	defaultWidth       = 640
	defaultHeight      = 480
	defaultOpenTimeout = 5 * time.Second
	defaultReadTimeout = 100 * time.Millisecond
	closeTimeout       = 2 * time.Second
)

// Opener opens cameras with ffmpeg.
type Opener struct {
	goos        string
	log         ports.Logger
	OpenTimeout time.Duration
	ReadTimeout time.Duration
}

// New creates an Opener for the running OS.
func New(log ports.Logger) *Opener {
	return &Opener{
		goos:        runtime.GOOS,
		log:         log.WithComponent("ffmpegcamera"),
		OpenTimeout: defaultOpenTimeout,
		ReadTimeout: defaultReadTimeout,
	}
}

// Open starts capturing dev and waits for its first frame.
// Width and height default to 640x480, since raw frames need a fixed size.
func (o *Opener) Open(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
	path, err := ffmpeg.Find()
	if err != nil {
		return nil, err
	}

	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = defaultWidth, defaultHeight
	}
	args, err := ffmpeg.CaptureArgs(o.goos, dev, opts)
	if err != nil {
		return nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create frame pipe: %w", err)
	}

	proc, err := ffmpeg.Start(path, args, ffmpeg.Options{Stdout: w, QuitOnStdin: true})
	w.Close()
	if err != nil {
		r.Close()
		return nil, err
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = ffmpeg.DefaultFPS
	}
	c := newCamera(dev, ports.StreamInfo{Width: opts.Width, Height: opts.Height, FPS: fps}, r, proc.Shutdown, o.ReadTimeout)
	go c.readLoop()

	o.log.Debug("Waiting for first frame from %s", dev.Label())
	if err := c.waitFirstFrame(ctx, o.OpenTimeout, proc.Exited()); err != nil {
		c.Close()
		if stderr := proc.Stderr(); stderr != "" {
			return nil, fmt.Errorf("%w: %s: %v\nstderr: %s", ErrOpenFailed, dev.Label(), err, stderr)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, dev.Label(), err)
	}

	return c, nil
}

// camera reads fixed-size RGBA frames from r and keeps only the newest one.
type camera struct {
	dev         ports.Device
	info        ports.StreamInfo
	r           io.ReadCloser
	shutdown    func(context.Context) error
	readTimeout time.Duration

	latest chan *image.RGBA
	first  chan struct{}
	ended  chan struct{}

	firstOnce sync.Once
	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newCamera(dev ports.Device, info ports.StreamInfo, r io.ReadCloser, shutdown func(context.Context) error, readTimeout time.Duration) *camera {
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	return &camera{
		dev:         dev,
		info:        info,
		r:           r,
		shutdown:    shutdown,
		readTimeout: readTimeout,
		latest:      make(chan *image.RGBA, 1),
		first:       make(chan struct{}),
		ended:       make(chan struct{}),
		closed:      make(chan struct{}),
	}
}

func (c *camera) readLoop() {
	defer close(c.ended)

	frameSize := c.info.Width * c.info.Height * 4
	for {
		img := image.NewRGBA(image.Rect(0, 0, c.info.Width, c.info.Height))
		if _, err := io.ReadFull(c.r, img.Pix[:frameSize]); err != nil {
			return
		}

		// Replace any frame that was not consumed.
		select {
		case <-c.latest:
		default:
		}
		c.latest <- img
		c.firstOnce.Do(func() { close(c.first) })
	}
}

func (c *camera) waitFirstFrame(ctx context.Context, timeout time.Duration, exited <-chan struct{}) error {
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.first:
		return nil
	case <-c.ended:
		return errors.New("stream ended before first frame")
	case <-exited:
		return errors.New("ffmpeg exited before first frame")
	case <-timer.C:
		return fmt.Errorf("no frame within %v", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *camera) Device() ports.Device {
	return c.dev
}

func (c *camera) Info() ports.StreamInfo {
	return c.info
}

// Read returns the newest frame, waiting at most one read timeout for it.
func (c *camera) Read(ctx context.Context) (image.Image, error) {
	select {
	case <-c.closed:
		return nil, ports.ErrCameraClosed
	default:
	}

	select {
	case img := <-c.latest:
		return img, nil
	default:
	}

	timer := time.NewTimer(c.readTimeout)
	defer timer.Stop()

	select {
	case img := <-c.latest:
		return img, nil
	case <-c.ended:
		return nil, ports.ErrCameraClosed
	case <-c.closed:
		return nil, ports.ErrCameraClosed
	case <-timer.C:
		return nil, ports.ErrNoFrame
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops ffmpeg and releases the pipe. Safe to call more than once.
func (c *camera) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)

		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if c.shutdown != nil {
			c.closeErr = c.shutdown(ctx)
		}
		// Unblocks readLoop if ffmpeg left the pipe open.
		c.r.Close()
		<-c.ended
	})
	return c.closeErr
}
