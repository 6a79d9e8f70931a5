package ffmpeg

import "errors"

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not found.
	ErrFFmpegNotFound = errors.New("ffmpeg: executable not found")

	// ErrNotRunning is returned when writing to a process that has exited.
	ErrNotRunning = errors.New("ffmpeg: process not running")

	// ErrKilled is returned by Shutdown when the process had to be killed.
	ErrKilled = errors.New("ffmpeg: process killed after shutdown timeout")

	// ErrPlatformNotSupported is returned for capture formats unknown on this OS.
	ErrPlatformNotSupported = errors.New("ffmpeg: platform not supported")
)
