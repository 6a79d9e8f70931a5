package ffmpegsink

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/duocam/pkg/adapters/ffmpeg"
	"github.com/user/duocam/pkg/adapters/logger"
	"github.com/user/duocam/pkg/ports"
)

func skipWithoutFFmpeg(t *testing.T) {
	t.Helper()
	if !ffmpeg.IsAvailable() {
		t.Skip("ffmpeg not available")
	}
}

func testFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameBytes_PacksSubImage(t *testing.T) {
	parent := testFrame(8, 8, color.RGBA{10, 20, 30, 255})
	sub := parent.SubImage(image.Rect(0, 0, 4, 2))

	data := frameBytes(sub, 4, 2)
	if len(data) != 4*2*4 {
		t.Fatalf("expected %d bytes, got %d", 4*2*4, len(data))
	}
	if data[0] != 10 || data[1] != 20 || data[2] != 30 {
		t.Errorf("unexpected first pixel %v", data[:4])
	}
}

func TestFrameBytes_ResizesToStream(t *testing.T) {
	data := frameBytes(testFrame(2, 2, color.RGBA{255, 0, 0, 255}), 4, 4)
	if len(data) != 4*4*4 {
		t.Errorf("expected %d bytes, got %d", 4*4*4, len(data))
	}
}

func TestNewFileSink_InvalidSize(t *testing.T) {
	f := New(logger.NewNoop())
	_, err := f.NewFileSink(context.Background(), "out.mp4", ports.StreamInfo{}, ports.EncoderOptions{})
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestFileSink_WritesVideo(t *testing.T) {
	skipWithoutFFmpeg(t)

	for _, ext := range []string{"mp4", "mkv", "avi"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "camera1."+ext)
			f := New(logger.NewNoop())

			sink, err := f.NewFileSink(context.Background(), path, ports.StreamInfo{Width: 64, Height: 48, FPS: 30}, ports.EncoderOptions{})
			if err != nil {
				t.Fatalf("NewFileSink failed: %v", err)
			}

			for i := 0; i < 5; i++ {
				if err := sink.WriteFrame(testFrame(64, 48, color.RGBA{uint8(i * 40), 0, 0, 255})); err != nil {
					t.Fatalf("WriteFrame %d failed: %v", i, err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sink.Close(ctx); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("output missing: %v", err)
			}
			if info.Size() == 0 {
				t.Error("output is empty")
			}

			if err := sink.WriteFrame(testFrame(64, 48, color.RGBA{})); !errors.Is(err, ErrSinkClosed) {
				t.Errorf("expected ErrSinkClosed, got %v", err)
			}
		})
	}
}
