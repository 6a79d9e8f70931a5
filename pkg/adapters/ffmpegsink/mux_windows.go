//go:build windows

package ffmpegsink

import (
	"context"

	"github.com/user/duocam/pkg/ports"
)

// NewMuxSink is not available on Windows: ffmpeg cannot be handed extra input pipes.
func (f *Factory) NewMuxSink(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
	return nil, ErrMuxNotSupported
}
