package ffmpeg

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/user/duocam/pkg/ports"
)

func TestInputArgs(t *testing.T) {
	opts := ports.CaptureOptions{Width: 640, Height: 480, FPS: 30}

	tests := []struct {
		name string
		goos string
		dev  ports.Device
		want []string
	}{
		{
			name: "linux by index",
			goos: "linux",
			dev:  ports.Device{Index: 1},
			want: []string{"-f", "v4l2", "-framerate", "30", "-video_size", "640x480", "-i", "/dev/video1"},
		},
		{
			name: "linux by id",
			goos: "linux",
			dev:  ports.Device{Index: 0, ID: "/dev/video4"},
			want: []string{"-f", "v4l2", "-framerate", "30", "-video_size", "640x480", "-i", "/dev/video4"},
		},
		{
			name: "darwin by index",
			goos: "darwin",
			dev:  ports.Device{Index: 0},
			want: []string{"-f", "avfoundation", "-framerate", "30", "-video_size", "640x480", "-i", "0:none"},
		},
		{
			name: "windows by name",
			goos: "windows",
			dev:  ports.Device{Index: 0, Name: "Integrated Camera"},
			want: []string{"-f", "dshow", "-framerate", "30", "-video_size", "640x480", "-i", "video=Integrated Camera"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InputArgs(tt.goos, tt.dev, opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInputArgs_Errors(t *testing.T) {
	if _, err := InputArgs("plan9", ports.Device{}, ports.CaptureOptions{}); !errors.Is(err, ErrPlatformNotSupported) {
		t.Errorf("expected ErrPlatformNotSupported, got %v", err)
	}
	if _, err := InputArgs("windows", ports.Device{Index: 2}, ports.CaptureOptions{}); err == nil {
		t.Error("expected error for unnamed dshow device")
	}
}

func TestInputArgs_OmitsUnsetOptions(t *testing.T) {
	got, err := InputArgs("linux", ports.Device{Index: 0}, ports.CaptureOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"-f", "v4l2", "-i", "/dev/video0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCaptureArgs_WritesRawRGBA(t *testing.T) {
	args, err := CaptureArgs("linux", ports.Device{Index: 0}, ports.CaptureOptions{Width: 320, Height: 240, FPS: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"-f rawvideo", "-pix_fmt rgba", "-s 320x240", "pipe:1"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %q", want, joined)
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("expected output last, got %q", args[len(args)-1])
	}
}

func TestRawInputArgs_DefaultFPS(t *testing.T) {
	got := RawInputArgs("pipe:3", ports.StreamInfo{Width: 640, Height: 480})
	want := []string{"-f", "rawvideo", "-pix_fmt", "rgba", "-s", "640x480", "-r", "30", "-i", "pipe:3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEncodeArgs(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		opts     ports.EncoderOptions
		contains []string
		absent   []string
	}{
		{
			name:     "mp4 defaults",
			ext:      "mp4",
			contains: []string{"-c:v libx264", "-crf 23", "-pix_fmt yuv420p", "-movflags +faststart"},
			absent:   []string{"-b:v"},
		},
		{
			name:     "avi uses xvid",
			ext:      ".AVI",
			contains: []string{"-c:v mpeg4", "-vtag xvid", "-q:v 5"},
			absent:   []string{"-movflags", "-crf"},
		},
		{
			name:     "bitrate and quality",
			ext:      "mkv",
			opts:     ports.EncoderOptions{Bitrate: 2000, Quality: 60},
			contains: []string{"-b:v 2000k", "-crf 51"},
			absent:   []string{"-movflags"},
		},
		{
			name:     "explicit codec",
			ext:      "mkv",
			opts:     ports.EncoderOptions{Codec: "libvpx-vp9"},
			contains: []string{"-c:v libvpx-vp9", "-pix_fmt yuv420p"},
			absent:   []string{"-crf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined := strings.Join(EncodeArgs(tt.ext, tt.opts), " ")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("expected %q in %q", want, joined)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(joined, bad) {
					t.Errorf("did not expect %q in %q", bad, joined)
				}
			}
		})
	}
}
