//go:build !windows

package ffmpegsink

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/ports"
)

// queueSize is the number of frames buffered per stream before frames are dropped.
const queueSize = 8

// NewMuxSink starts one ffmpeg process with an input pipe per stream
// (fd 3, 4, ...) and maps every input into a single container at path.
func (f *Factory) NewMuxSink(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: no streams", ErrUnknownStream)
	}
	for i, info := range streams {
		if info.Width <= 0 || info.Height <= 0 {
			return nil, fmt.Errorf("%w: stream %d is %dx%d", ErrInvalidSize, i, info.Width, info.Height)
		}
	}

	ffmpegPath, err := ffmpeg.Find()
	if err != nil {
		return nil, err
	}

	readers := make([]*os.File, 0, len(streams))
	writers := make([]*os.File, 0, len(streams))
	closeAll := func() {
		for _, r := range readers {
			r.Close()
		}
		for _, w := range writers {
			w.Close()
		}
	}
	for range streams {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("create input pipe: %w", err)
		}
		readers = append(readers, r)
		writers = append(writers, w)
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for i, info := range streams {
		args = append(args, ffmpeg.RawInputArgs(fmt.Sprintf("pipe:%d", 3+i), info)...)
	}
	for i := range streams {
		args = append(args, "-map", fmt.Sprintf("%d:v", i))
	}
	args = append(args, ffmpeg.EncodeArgs(filepath.Ext(path), opts)...)
	args = append(args, path)

	f.log.Debug("Starting multiplexed encoder for %s with %d streams", path, len(streams))
	proc, err := ffmpeg.Start(ffmpegPath, args, ffmpeg.Options{ExtraFiles: readers, QuitOnStdin: true})
	// The child holds its own copies of the read ends.
	for _, r := range readers {
		r.Close()
	}
	if err != nil {
		for _, w := range writers {
			w.Close()
		}
		return nil, err
	}

	m := &muxSink{
		path:    path,
		streams: streams,
		proc:    proc,
		log:     f.log,
		pipes:   writers,
		queues:  make([]chan []byte, len(streams)),
		dropped: make([]int, len(streams)),
		frames:  make([]int, len(streams)),
	}
	for i := range streams {
		m.queues[i] = make(chan []byte, queueSize)
		m.wg.Add(1)
		go m.feed(i)
	}
	return m, nil
}

// muxSink feeds each ffmpeg input from its own queue so one stalled input
// never blocks writes to the others.
type muxSink struct {
	path    string
	streams []ports.StreamInfo
	proc    *ffmpeg.Process
	log     ports.Logger
	pipes   []*os.File
	queues  []chan []byte
	wg      sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	frames  []int
	dropped []int
}

func (m *muxSink) feed(stream int) {
	defer m.wg.Done()
	for data := range m.queues[stream] {
		if _, err := m.pipes[stream].Write(data); err != nil {
			m.log.Warn("Stream %d of %s stopped: %v", stream, m.path, err)
			// Drain so writers never block on a dead input.
			for range m.queues[stream] {
			}
			return
		}
	}
}

// WriteFrame queues a frame for stream. A full queue drops the frame
// and returns ports.ErrFrameDropped.
func (m *muxSink) WriteFrame(stream int, img image.Image) error {
	if stream < 0 || stream >= len(m.queues) {
		return fmt.Errorf("%w: %d", ErrUnknownStream, stream)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSinkClosed
	}

	info := m.streams[stream]
	select {
	case m.queues[stream] <- frameBytes(img, info.Width, info.Height):
		m.frames[stream]++
	default:
		m.dropped[stream]++
		return fmt.Errorf("%w: stream %d of %s", ports.ErrFrameDropped, stream, m.path)
	}
	return nil
}

// Close flushes the queues, closes the input pipes and asks ffmpeg to quit.
// ffmpeg is killed if it has not finished when ctx expires.
func (m *muxSink) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, q := range m.queues {
		close(q)
	}
	m.mu.Unlock()

	flushed := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
	case <-ctx.Done():
		m.log.Warn("Timed out flushing %s", m.path)
	}

	for _, p := range m.pipes {
		p.Close()
	}

	err := m.proc.Shutdown(ctx)
	<-flushed

	for i := range m.streams {
		if m.dropped[i] > 0 {
			m.log.Warn("Stream %d of %s: %d frames written, %d dropped", i, m.path, m.frames[i], m.dropped[i])
		}
	}

	if err != nil {
		return fmt.Errorf("finalize %s: %w", m.path, err)
	}
	return nil
}
