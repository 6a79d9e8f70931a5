// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/duocam/pkg/juxtapose"
	"github.com/user/duocam/pkg/ports"
	"github.com/user/duocam/pkg/session"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config represents the full configuration for duocam.
type Config struct {
	// Devices
	Backend    string   `yaml:"backend"`    // auto, ffmpeg or gocv
	Enumerator string   `yaml:"enumerator"` // auto, ffmpeg, sysfs or probe
	FFmpegPath string   `yaml:"ffmpeg_path"`
	Cameras    []string `yaml:"cameras"`
	MaxDevices int      `yaml:"max_devices"`

	// Capture
	Capture CaptureConfig `yaml:"capture"`

	// Output
	OutputDir string        `yaml:"output_dir"`
	Format    string        `yaml:"format"` // mp4, mkv or avi
	Mode      string        `yaml:"mode"`   // files or mux
	Encoder   EncoderConfig `yaml:"encoder"`
	Summary   bool          `yaml:"summary"`

	// Loop
	IntervalMs     int `yaml:"interval_ms"`
	CloseTimeoutMs int `yaml:"close_timeout_ms"`

	// Preview
	Preview PreviewConfig `yaml:"preview"`

	// Control panel
	Server ServerConfig `yaml:"server"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// CaptureConfig represents requested capture parameters.
type CaptureConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// EncoderConfig represents encoder settings.
type EncoderConfig struct {
	Codec   string `yaml:"codec"`
	Bitrate int    `yaml:"bitrate"`
	Quality int    `yaml:"quality"`
}

// PreviewConfig represents preview rendering settings.
type PreviewConfig struct {
	Width       int    `yaml:"width"`
	Overlay     bool   `yaml:"overlay"`
	Gap         int    `yaml:"gap"`
	File        string `yaml:"file"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	IntervalMs  int    `yaml:"interval_ms"`
}

// ServerConfig represents the HTTP control panel settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Devices
		Backend:    "auto",
		Enumerator: "auto",
		Cameras:    []string{"0", "1"},
		MaxDevices: 2,

		// Capture
		Capture: CaptureConfig{
			Width:  640,
			Height: 480,
			FPS:    30,
		},

		// Output
		OutputDir: ".",
		Format:    "avi",
		Mode:      string(session.ModeFiles),
		Summary:   true,

		// Loop
		IntervalMs:     30,
		CloseTimeoutMs: 10000,

		// Preview
		Preview: PreviewConfig{
			Width:       1280,
			Overlay:     true,
			JPEGQuality: 80,
			IntervalMs:  200,
		},

		// Control panel
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
// Keys missing from the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var problems []string

	if !oneOf(c.Backend, "auto", "ffmpeg", "gocv") {
		problems = append(problems, fmt.Sprintf("backend %q must be auto, ffmpeg or gocv", c.Backend))
	}
	if !oneOf(c.Enumerator, "auto", "ffmpeg", "sysfs", "probe") {
		problems = append(problems, fmt.Sprintf("enumerator %q must be auto, ffmpeg, sysfs or probe", c.Enumerator))
	}
	if !oneOf(strings.ToLower(c.Format), "mp4", "mkv", "avi") {
		problems = append(problems, fmt.Sprintf("format %q must be mp4, mkv or avi", c.Format))
	}
	if !oneOf(c.Mode, string(session.ModeFiles), string(session.ModeMux)) {
		problems = append(problems, fmt.Sprintf("mode %q must be files or mux", c.Mode))
	}
	if c.MaxDevices < 1 || c.MaxDevices > 2 {
		problems = append(problems, "max_devices must be 1 or 2")
	}
	if c.Capture.Width < 0 || c.Capture.Height < 0 || c.Capture.FPS < 0 {
		problems = append(problems, "capture width, height and fps must not be negative")
	}
	if (c.Capture.Width == 0) != (c.Capture.Height == 0) {
		problems = append(problems, "capture width and height must be set together")
	}
	if c.Encoder.Bitrate < 0 || c.Encoder.Quality < 0 {
		problems = append(problems, "encoder bitrate and quality must not be negative")
	}
	if c.IntervalMs <= 0 {
		problems = append(problems, "interval_ms must be positive")
	}
	if c.CloseTimeoutMs <= 0 {
		problems = append(problems, "close_timeout_ms must be positive")
	}
	if c.Preview.JPEGQuality < 0 || c.Preview.JPEGQuality > 100 {
		problems = append(problems, "preview jpeg_quality must be between 0 and 100")
	}
	if !oneOf(c.LogLevel, "", "debug", "info", "warn", "error", "quiet") {
		problems = append(problems, fmt.Sprintf("log_level %q must be debug, info, warn, error or quiet", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ToSessionOptions converts Config to session.Options.
func (c Config) ToSessionOptions() session.Options {
	return session.Options{
		OutputDir: c.OutputDir,
		Format:    strings.ToLower(c.Format),
		Mode:      session.Mode(c.Mode),

		Capture: ports.CaptureOptions{
			Width:  c.Capture.Width,
			Height: c.Capture.Height,
			FPS:    c.Capture.FPS,
		},
		Encoder: ports.EncoderOptions{
			Codec:   c.Encoder.Codec,
			Bitrate: c.Encoder.Bitrate,
			Quality: c.Encoder.Quality,
		},

		Interval:   time.Duration(c.IntervalMs) * time.Millisecond,
		MaxDevices: c.MaxDevices,

		PreviewWidth: c.Preview.Width,
		Overlay:      c.Preview.Overlay,
		Juxtapose:    juxtapose.Options{Gap: c.Preview.Gap},

		CloseTimeout: time.Duration(c.CloseTimeoutMs) * time.Millisecond,
	}
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
