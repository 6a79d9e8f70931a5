//go:build gocv

package gocvcapture

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/user/duocam/pkg/juxtapose"
	"github.com/user/duocam/pkg/ports"
)

const (
	defaultFPS         = 30
	defaultReadTimeout = 100 * time.Millisecond
	closeTimeout       = 2 * time.Second
)

// Available reports whether OpenCV support was compiled in.
func Available() bool {
	return true
}

// Opener opens cameras with gocv.VideoCapture.
type Opener struct {
	log         ports.Logger
	ReadTimeout time.Duration
}

// New creates an Opener.
func New(log ports.Logger) *Opener {
	return &Opener{log: log.WithComponent("gocvcapture"), ReadTimeout: defaultReadTimeout}
}

// Open opens dev by ID when set, otherwise by index, and applies the requested capture size.
// The stream info reflects what the device actually negotiated.
func (o *Opener) Open(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
	var source interface{} = dev.Index
	if dev.ID != "" {
		source = dev.ID
	}

	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, dev.Label(), err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, dev.Label())
	}

	if opts.Width > 0 && opts.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	}
	if opts.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, opts.FPS)
	}

	info := ports.StreamInfo{
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
	}
	if info.FPS <= 0 {
		info.FPS = defaultFPS
	}

	c := &camera{
		dev:         dev,
		info:        info,
		vc:          vc,
		readTimeout: o.ReadTimeout,
		latest:      make(chan image.Image, 1),
		stop:        make(chan struct{}),
		ended:       make(chan struct{}),
	}
	if c.readTimeout <= 0 {
		c.readTimeout = defaultReadTimeout
	}
	go c.readLoop()

	return c, nil
}

var _ ports.CameraOpener = (*Opener)(nil)

// camera owns the VideoCapture; only readLoop touches it.
type camera struct {
	dev         ports.Device
	info        ports.StreamInfo
	vc          *gocv.VideoCapture
	readTimeout time.Duration

	latest chan image.Image
	stop   chan struct{}
	ended  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (c *camera) readLoop() {
	defer close(c.ended)
	defer c.vc.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		if ok := c.vc.Read(&mat); !ok {
			return
		}
		if mat.Empty() {
			continue
		}
		img, err := mat.ToImage()
		if err != nil {
			continue
		}

		select {
		case <-c.latest:
		default:
		}
		c.latest <- img
	}
}

func (c *camera) Device() ports.Device {
	return c.dev
}

func (c *camera) Info() ports.StreamInfo {
	return c.info
}

func (c *camera) Read(ctx context.Context) (image.Image, error) {
	select {
	case <-c.stop:
		return nil, ports.ErrCameraClosed
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
	case <-c.stop:
		return nil, ports.ErrCameraClosed
	case <-timer.C:
		return nil, ports.ErrNoFrame
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the read loop, which releases the device.
func (c *camera) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		select {
		case <-c.ended:
		case <-time.After(closeTimeout):
			c.closeErr = fmt.Errorf("gocvcapture: %s did not release within %v", c.dev.Label(), closeTimeout)
		}
	})
	return c.closeErr
}

// Factory creates gocv.VideoWriter backed sinks.
type Factory struct {
	log ports.Logger
}

// NewFactory creates a sink factory.
func NewFactory(log ports.Logger) *Factory {
	return &Factory{log: log.WithComponent("gocvcapture")}
}

var _ ports.SinkFactory = (*Factory)(nil)

// NewFileSink opens a writer sized to info. The codec follows the file extension.
func (f *Factory) NewFileSink(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
	fps := info.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	codec := opts.Codec
	if len(codec) != 4 {
		codec = FourCC(filepath.Ext(path))
	}

	f.log.Debug("Starting encoder for %s (%dx%d)", path, info.Width, info.Height)
	w, err := gocv.VideoWriterFile(path, codec, fps, info.Width, info.Height, true)
	if err != nil {
		return nil, fmt.Errorf("open writer %s: %w", path, err)
	}
	return &fileSink{path: path, info: info, w: w, log: f.log}, nil
}

// NewMuxSink is not supported by OpenCV.
func (f *Factory) NewMuxSink(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
	return nil, ErrMuxNotSupported
}

type fileSink struct {
	path string
	info ports.StreamInfo
	w    *gocv.VideoWriter
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

	mat, err := gocv.ImageToMatRGB(juxtapose.ToSize(img, s.info.Width, s.info.Height))
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	if err := s.w.Write(mat); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.frames++
	return nil
}

func (s *fileSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	s.log.Debug("Wrote %d frames to %s", s.frames, s.path)
	return nil
}
