package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/duocam/pkg/ports"
)

// DefaultFPS is used when neither the caller nor the device reports a rate.
const DefaultFPS = 30.0

// InputFormat returns the ffmpeg capture input format for an OS.
func InputFormat(goos string) (string, error) {
	switch goos {
	case "linux":
		return "v4l2", nil
	case "darwin":
		return "avfoundation", nil
	case "windows":
		return "dshow", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrPlatformNotSupported, goos)
	}
}

// InputArgs returns the arguments that open a capture device on goos.
// Device.ID is used verbatim when set.
func InputArgs(goos string, dev ports.Device, opts ports.CaptureOptions) ([]string, error) {
	format, err := InputFormat(goos)
	if err != nil {
		return nil, err
	}

	input := dev.ID
	if input == "" {
		switch goos {
		case "linux":
			input = fmt.Sprintf("/dev/video%d", dev.Index)
		case "darwin":
			input = fmt.Sprintf("%d:none", dev.Index)
		case "windows":
			if dev.Name == "" {
				return nil, fmt.Errorf("dshow needs a device name for index %d", dev.Index)
			}
			input = "video=" + dev.Name
		}
	}

	args := []string{"-f", format}
	if opts.FPS > 0 {
		args = append(args, "-framerate", formatFPS(opts.FPS))
	}
	if opts.Width > 0 && opts.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height))
	}
	args = append(args, "-i", input)
	return args, nil
}

// CaptureArgs returns a full command line that captures dev and writes raw
// RGBA frames of width x height to stdout.
func CaptureArgs(goos string, dev ports.Device, opts ports.CaptureOptions) ([]string, error) {
	input, err := InputArgs(goos, dev, opts)
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	args = append(args,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"pipe:1",
	)
	return args, nil
}

// RawInputArgs describes one raw RGBA input read from source (e.g. "pipe:0").
func RawInputArgs(source string, info ports.StreamInfo) []string {
	fps := info.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"-r", formatFPS(fps),
		"-i", source,
	}
}

// EncodeArgs returns the codec arguments for an output with extension ext.
// AVI defaults to MPEG-4 Part 2 tagged as XVID; everything else to libx264.
func EncodeArgs(ext string, opts ports.EncoderOptions) []string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")

	codec := opts.Codec
	if codec == "" {
		if ext == "avi" {
			codec = "mpeg4"
		} else {
			codec = "libx264"
		}
	}

	args := []string{"-c:v", codec}

	switch codec {
	case "libx264":
		crf := 23
		if opts.Quality > 0 {
			crf = opts.Quality
			if crf > 51 {
				crf = 51
			}
		}
		args = append(args,
			"-preset", "veryfast",
			"-pix_fmt", "yuv420p",
			"-crf", strconv.Itoa(crf),
		)
	case "mpeg4":
		if ext == "avi" {
			args = append(args, "-vtag", "xvid")
		}
		if opts.Bitrate <= 0 {
			args = append(args, "-q:v", "5")
		}
	default:
		args = append(args, "-pix_fmt", "yuv420p")
	}

	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}

	if ext == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}

	return args
}

func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
