package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/duocam/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink that counts frames.
type FrameSink struct {
	Path string
	Info ports.StreamInfo

	WriteFrameFunc func(img image.Image) error
	CloseFunc      func(ctx context.Context) error

	mu     sync.Mutex
	frames int
	closed int
}

func (m *FrameSink) WriteFrame(img image.Image) error {
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(img); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames++
	return nil
}

func (m *FrameSink) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}

// Frames returns the number of frames written (for test verification).
func (m *FrameSink) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// CloseCount returns the number of Close calls (for test verification).
func (m *FrameSink) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.FrameSink = (*FrameSink)(nil)

// MuxSink is a mock implementation of ports.MuxSink that counts frames per stream.
type MuxSink struct {
	Path    string
	Streams []ports.StreamInfo

	WriteFrameFunc func(stream int, img image.Image) error
	CloseFunc      func(ctx context.Context) error

	mu     sync.Mutex
	frames map[int]int
	closed int
}

func (m *MuxSink) WriteFrame(stream int, img image.Image) error {
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(stream, img); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frames == nil {
		m.frames = make(map[int]int)
	}
	m.frames[stream]++
	return nil
}

func (m *MuxSink) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}

// Frames returns the number of frames written to stream (for test verification).
func (m *MuxSink) Frames(stream int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames[stream]
}

// CloseCount returns the number of Close calls (for test verification).
func (m *MuxSink) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.MuxSink = (*MuxSink)(nil)

// SinkFactory is a mock implementation of ports.SinkFactory.
// It records every sink it creates.
type SinkFactory struct {
	NewFileSinkFunc func(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error)
	NewMuxSinkFunc  func(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error)

	mu        sync.Mutex
	fileSinks []*FrameSink
	muxSinks  []*MuxSink
}

func (m *SinkFactory) NewFileSink(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
	if m.NewFileSinkFunc != nil {
		return m.NewFileSinkFunc(ctx, path, info, opts)
	}
	sink := &FrameSink{Path: path, Info: info}
	m.mu.Lock()
	m.fileSinks = append(m.fileSinks, sink)
	m.mu.Unlock()
	return sink, nil
}

func (m *SinkFactory) NewMuxSink(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
	if m.NewMuxSinkFunc != nil {
		return m.NewMuxSinkFunc(ctx, path, streams, opts)
	}
	sink := &MuxSink{Path: path, Streams: streams}
	m.mu.Lock()
	m.muxSinks = append(m.muxSinks, sink)
	m.mu.Unlock()
	return sink, nil
}

// FileSinks returns the file sinks created so far (for test verification).
func (m *SinkFactory) FileSinks() []*FrameSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*FrameSink(nil), m.fileSinks...)
}

// MuxSinks returns the mux sinks created so far (for test verification).
func (m *SinkFactory) MuxSinks() []*MuxSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MuxSink(nil), m.muxSinks...)
}

var _ ports.SinkFactory = (*SinkFactory)(nil)
