// Package main provides the CLI entry point for duocam.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/joho/godotenv"

	"github.com/user/duocam/pkg/adapters/codecdetect"
	"github.com/user/duocam/pkg/adapters/devicelist"
	"github.com/user/duocam/pkg/adapters/previewserver"
	"github.com/user/duocam/pkg/config"
	"github.com/user/duocam/pkg/ports"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Devices DevicesCmd `cmd:"" help:"List the cameras that can be recorded."`
	Record  RecordCmd  `cmd:"" help:"Record up to two cameras."`
	Serve   ServeCmd   `cmd:"" help:"Serve the live preview and control panel over HTTP."`
	Inspect InspectCmd `cmd:"" help:"Show the tracks of a recorded MP4 file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// CommonFlags are shared by every command that opens cameras.
type CommonFlags struct {
	// Configuration
	Config string `short:"c" type:"existingfile" help:"YAML configuration file."`

	// Devices
	Backend    *string `short:"b" help:"Capture backend (auto, ffmpeg or gocv)."`
	Enumerator *string `short:"e" help:"Device enumeration (auto, ffmpeg, sysfs or probe)."`
	FFmpegPath *string `help:"Path to ffmpeg (falls back to FFMPEG_PATH env, then system default)."`

	// Logging options
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// DevicesCmd defines the devices subcommand.
type DevicesCmd struct {
	CommonFlags `embed:""`
}

// RecordCmd defines the record subcommand.
type RecordCmd struct {
	CommonFlags `embed:""`

	// Cameras
	Cam1 *string `help:"First camera (index, name or ID; default: from config)."`
	Cam2 *string `help:"Second camera (index, name or ID; default: from config)."`

	// Duration
	Duration time.Duration `short:"t" help:"Stop after this long (0 = until interrupted)."`

	// Output options
	OutputDir *string `short:"o" help:"Directory for recordings (default: current directory)."`
	Format    *string `short:"f" help:"Container format (mp4, mkv or avi)."`
	Mode      *string `short:"m" help:"Output mode (files = one file per camera, mux = one file with a stream per camera)."`
	NoSummary bool    `help:"Do not write a Markdown summary next to the recordings."`

	// Capture options
	Width  *int     `short:"W" help:"Requested capture width."`
	Height *int     `short:"H" help:"Requested capture height."`
	FPS    *float64 `help:"Requested capture frame rate."`

	// Encoding options
	Codec   *string `help:"Encoder name (e.g. libx264; default: chosen from the format)."`
	Bitrate *int    `help:"Target bitrate in kbps (0 = encoder default)."`
	Quality *int    `short:"q" help:"Encoder quality as CRF (0 = encoder default)."`

	// Preview options
	PreviewFile *string `short:"p" help:"Write the live preview to this JPEG file."`
	NoOverlay   bool    `help:"Do not draw the recording indicator on the preview."`
	Serve       string  `short:"s" help:"Also serve the control panel on this address (e.g. 127.0.0.1:8080)."`
}

// ServeCmd defines the serve subcommand.
type ServeCmd struct {
	CommonFlags `embed:""`

	Addr *string `short:"a" help:"Listen address (default: 127.0.0.1:8080)."`
}

// InspectCmd defines the inspect subcommand.
type InspectCmd struct {
	Path string `arg:"" type:"existingfile" help:"MP4 file to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	// An optional .env provides FFMPEG_PATH and friends.
	_ = godotenv.Load()

	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("duocam"),
		kong.Description("Preview and record two webcams at once."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the devices command.
func (cmd *DevicesCmd) Run() error {
	cfg, err := cmd.load(nil)
	if err != nil {
		return err
	}
	st, err := newStack(cfg, cmd.Quiet)
	if err != nil {
		return err
	}

	devices := devicelist.List(context.Background(), st.lister, st.log)
	if len(devices) == 0 {
		fmt.Println(l10n.T("No cameras found"))
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%d\t%s\t%s\n", d.Index, d.Name, d.ID)
	}
	return nil
}

// Run executes the record command.
func (cmd *RecordCmd) Run() error {
	cfg, err := cmd.load(cmd.apply)
	if err != nil {
		return err
	}
	st, err := newStack(cfg, cmd.Quiet)
	if err != nil {
		return err
	}
	log := st.log

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	devices, err := st.resolve(ctx, cfg.Cameras)
	if err != nil {
		return err
	}

	var hub *previewserver.Hub
	var extra []ports.Display
	if cmd.Serve != "" {
		hub = previewserver.NewHub(st.renderer, cfg.Preview.JPEGQuality)
		extra = append(extra, hub)
	}
	ctrl, err := st.controller(extra...)
	if err != nil {
		return err
	}

	if err := ctrl.Start(ctx, devices); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	if hub != nil {
		srv := previewserver.New(ctrl, st.lister, hub, log, previewserver.Options{
			Cameras:  cfg.Cameras,
			OnResult: st.report,
		})
		go func() { serveErr <- srv.Run(ctx, cmd.Serve) }()
	}

	var deadline <-chan time.Time
	if cmd.Duration > 0 {
		timer := time.NewTimer(cmd.Duration)
		defer timer.Stop()
		deadline = timer.C
	}

	var runErr error
	select {
	case <-ctx.Done():
	case <-deadline:
	case runErr = <-serveErr:
	}

	// Sinks must be finalized even after an interrupt.
	result, err := ctrl.Stop(context.Background())
	if err != nil {
		return err
	}
	st.report(result)
	return runErr
}

func (cmd *RecordCmd) apply(cfg *config.Config) {
	if cmd.Cam1 != nil || cmd.Cam2 != nil {
		var cameras []string
		for _, c := range []*string{cmd.Cam1, cmd.Cam2} {
			if c != nil {
				cameras = append(cameras, *c)
			}
		}
		cfg.Cameras = cameras
	}

	// Output
	if cmd.OutputDir != nil {
		cfg.OutputDir = *cmd.OutputDir
	}
	if cmd.Format != nil {
		cfg.Format = *cmd.Format
	}
	if cmd.Mode != nil {
		cfg.Mode = *cmd.Mode
	}
	if cmd.NoSummary {
		cfg.Summary = false
	}

	// Capture
	if cmd.Width != nil {
		cfg.Capture.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Capture.Height = *cmd.Height
	}
	if cmd.FPS != nil {
		cfg.Capture.FPS = *cmd.FPS
	}

	// Encoding
	if cmd.Codec != nil {
		cfg.Encoder.Codec = *cmd.Codec
	}
	if cmd.Bitrate != nil {
		cfg.Encoder.Bitrate = *cmd.Bitrate
	}
	if cmd.Quality != nil {
		cfg.Encoder.Quality = *cmd.Quality
	}

	// Preview
	if cmd.PreviewFile != nil {
		cfg.Preview.File = *cmd.PreviewFile
	}
	if cmd.NoOverlay {
		cfg.Preview.Overlay = false
	}
}

// Run executes the serve command.
func (cmd *ServeCmd) Run() error {
	cfg, err := cmd.load(cmd.apply)
	if err != nil {
		return err
	}
	st, err := newStack(cfg, cmd.Quiet)
	if err != nil {
		return err
	}
	log := st.log

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	hub := previewserver.NewHub(st.renderer, cfg.Preview.JPEGQuality)
	ctrl, err := st.controller(hub)
	if err != nil {
		return err
	}

	if cmd.Config != "" {
		go func() {
			err := config.Watch(ctx, cmd.Config,
				func(next config.Config) {
					cmd.apply(&next)
					ctrl.SetOptions(next.ToSessionOptions())
					log.Info("Reloaded %s", cmd.Config)
				},
				func(err error) {
					log.Warn("Ignoring configuration change: %v", err)
				},
			)
			if err != nil {
				log.Warn("Cannot watch %s: %v", cmd.Config, err)
			}
		}()
	}

	srv := previewserver.New(ctrl, st.lister, hub, log, previewserver.Options{
		Cameras:  cfg.Cameras,
		OnResult: st.report,
	})
	runErr := srv.Run(ctx, cfg.Server.Addr)

	result, err := ctrl.Stop(context.Background())
	if err != nil {
		return err
	}
	st.report(result)
	return runErr
}

func (cmd *ServeCmd) apply(cfg *config.Config) {
	if cmd.Addr != nil {
		cfg.Server.Addr = *cmd.Addr
	}
}

// Run executes the inspect command.
func (cmd *InspectCmd) Run() error {
	report, err := codecdetect.InspectFile(cmd.Path)
	if err != nil {
		return err
	}

	fmt.Println(report.Path)
	fmt.Println(l10n.F("Duration: %s", report.Duration))
	if report.Fragmented {
		fmt.Println(l10n.T("Fragmented: yes"))
	}
	for _, t := range report.Tracks {
		fmt.Println(l10n.F("Track %d: %s %s", t.ID, t.Kind, t.SampleEntry))
		if t.Width > 0 {
			fmt.Println(l10n.F("  %dx%d @ %.4g fps, %d samples, codec %s", t.Width, t.Height, t.FPS, t.Samples, t.Codec))
		}
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("duocam version %s", version))
	return nil
}

// load reads the configuration file if given and applies command line overrides.
func (f *CommonFlags) load(apply func(*config.Config)) (config.Config, error) {
	cfg := config.Defaults()
	if f.Config != "" {
		loaded, err := config.LoadFromFile(f.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if f.Backend != nil {
		cfg.Backend = *f.Backend
	}
	if f.Enumerator != nil {
		cfg.Enumerator = *f.Enumerator
	}
	if f.FFmpegPath != nil {
		cfg.FFmpegPath = *f.FFmpegPath
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if apply != nil {
		apply(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
