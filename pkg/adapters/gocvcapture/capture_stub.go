//go:build !gocv

package gocvcapture

import (
	"context"

	"github.com/user/duocam/pkg/ports"
)

// Available reports whether OpenCV support was compiled in.
func Available() bool {
	return false
}

// Opener is unavailable without the gocv build tag.
type Opener struct{}

// New creates an Opener whose Open always fails.
func New(log ports.Logger) *Opener {
	return &Opener{}
}

func (o *Opener) Open(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
	return nil, ErrNotBuilt
}

var _ ports.CameraOpener = (*Opener)(nil)

// Factory is unavailable without the gocv build tag.
type Factory struct{}

// NewFactory creates a Factory whose sinks always fail.
func NewFactory(log ports.Logger) *Factory {
	return &Factory{}
}

func (f *Factory) NewFileSink(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
	return nil, ErrNotBuilt
}

func (f *Factory) NewMuxSink(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
	return nil, ErrNotBuilt
}

var _ ports.SinkFactory = (*Factory)(nil)
