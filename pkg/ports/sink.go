package ports

import (
	"context"
	"errors"
	"image"
)

// ErrFrameDropped is returned by WriteFrame when a sink discards a frame
// instead of writing it, for example because its queue is full.
var ErrFrameDropped = errors.New("sink: frame dropped")

// FrameSink persists the frames of a single device.
type FrameSink interface {
	// WriteFrame appends a frame to the output.
	WriteFrame(img image.Image) error

	// Close finalizes the output. The context bounds how long finalization may take.
	Close(ctx context.Context) error
}

// MuxSink persists several device streams into one container.
// Streams are addressed by their index in the slice passed to NewMuxSink.
type MuxSink interface {
	WriteFrame(stream int, img image.Image) error
	Close(ctx context.Context) error
}

// SinkFactory creates output sinks for a recording session.
type SinkFactory interface {
	// NewFileSink creates a writer sized to one device's stream.
	NewFileSink(ctx context.Context, path string, info StreamInfo, opts EncoderOptions) (FrameSink, error)

	// NewMuxSink creates a single encoder fed by all given streams.
	NewMuxSink(ctx context.Context, path string, streams []StreamInfo, opts EncoderOptions) (MuxSink, error)
}
