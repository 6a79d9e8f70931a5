package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/duocam/pkg/juxtapose"
	"github.com/user/duocam/pkg/ports"
)

const timestampLayout = "20060102_150405"

// Options configures a Controller.
type Options struct {
	// OutputDir receives the recordings. Created on demand.
	OutputDir string
	// Format is the container extension: mp4, mkv or avi.
	Format string
	// Mode selects per-device files or a single multiplexed container.
	Mode Mode

	Capture ports.CaptureOptions
	Encoder ports.EncoderOptions

	// Interval is the tick period. Zero or less disables the internal ticker
	// and Tick must be called by the owner.
	Interval time.Duration

	// MaxDevices caps the number of devices opened per session.
	MaxDevices int

	// PreviewWidth scales the preview down to this width (0 = native size).
	PreviewWidth int
	// Overlay draws the recording indicator on the preview.
	Overlay bool
	// Juxtapose configures the two-camera composite.
	Juxtapose juxtapose.Options

	// CloseTimeout bounds how long each sink may take to finalize.
	CloseTimeout time.Duration
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		OutputDir:    ".",
		Format:       "avi",
		Mode:         ModeFiles,
		Interval:     30 * time.Millisecond,
		MaxDevices:   2,
		Overlay:      true,
		Juxtapose:    juxtapose.DefaultOptions(),
		CloseTimeout: 10 * time.Second,
	}
}

// slot is one open device and, while recording, its output.
type slot struct {
	seat   int // 1-based position of the selection, used in file names
	cam    ports.Camera
	info   ports.StreamInfo
	sink   ports.FrameSink
	stream int // index into the mux sink
	path   string
	frames int
}

// muxOutput is the single container shared by all slots in ModeMux.
type muxOutput struct {
	sink ports.MuxSink
	path string
}

// Controller owns the devices and sinks of one session at a time and drives
// the capture loop. Command methods are serialized; Tick runs concurrently
// with them but never observes a half-built device/sink pairing.
type Controller struct {
	opener   ports.CameraOpener
	sinks    ports.SinkFactory
	display  ports.Display
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
	opts     Options

	now   func() time.Time
	newID func() string

	cmdMu   sync.Mutex
	pending *Options // set by SetOptions, adopted by the next Start or Preview

	mu             sync.Mutex
	state          State
	sessionID      string
	startedAt      time.Time
	recordingSince time.Time
	slots          []*slot
	mux            *muxOutput
	ticks          int

	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// New creates a Controller. renderer may be nil to show frames unannotated.
func New(
	opener ports.CameraOpener,
	sinks ports.SinkFactory,
	display ports.Display,
	renderer ports.Renderer,
	fs ports.FileSystem,
	logger ports.Logger,
	opts Options,
) *Controller {
	if opts.MaxDevices <= 0 {
		opts.MaxDevices = 2
	}
	if opts.Mode == "" {
		opts.Mode = ModeFiles
	}
	if opts.Format == "" {
		opts.Format = "avi"
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = 10 * time.Second
	}
	return &Controller{
		opener:   opener,
		sinks:    sinks,
		display:  display,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("session"),
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetClock replaces the time source used for timestamps and file names.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// SetOptions stores the options for the next session. A running session
// keeps the options it was started with.
func (c *Controller) SetOptions(opts Options) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	if opts.MaxDevices <= 0 {
		opts.MaxDevices = c.opts.MaxDevices
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = c.opts.CloseTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeFiles
	}
	if opts.Format == "" {
		opts.Format = "avi"
	}
	c.pending = &opts
}

// adoptOptions installs the options stored by SetOptions.
// Must be called with cmdMu held while Idle.
func (c *Controller) adoptOptions() {
	if c.pending == nil {
		return
	}
	c.mu.Lock()
	c.opts = *c.pending
	c.mu.Unlock()
	c.pending = nil
}

// Start opens the selected devices, creates their sinks and begins recording.
// Idle -> Recording.
func (c *Controller) Start(ctx context.Context, devices []ports.Device) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if s := c.currentState(); s != Idle {
		return fmt.Errorf("%w: start while %s", ErrInvalidState, s)
	}
	c.adoptOptions()

	slots := c.openDevices(ctx, devices)
	if len(slots) == 0 {
		c.logger.Warn("No camera opened!")
		return ErrNoCameras
	}

	startedAt := c.now()
	slots, mux, err := c.attachSinks(ctx, slots, startedAt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state = Recording
	c.sessionID = c.newID()
	c.startedAt = startedAt
	c.recordingSince = startedAt
	c.slots = slots
	c.mux = mux
	c.ticks = 0
	c.mu.Unlock()

	c.logger.Info("Recording started with %d camera(s)", len(slots))
	c.startLoop()
	return nil
}

// Preview opens the selected devices without sinks. Idle -> Previewing.
func (c *Controller) Preview(ctx context.Context, devices []ports.Device) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if s := c.currentState(); s != Idle {
		return fmt.Errorf("%w: preview while %s", ErrInvalidState, s)
	}
	c.adoptOptions()

	slots := c.openDevices(ctx, devices)
	if len(slots) == 0 {
		c.logger.Warn("No camera opened!")
		return ErrNoCameras
	}

	c.mu.Lock()
	c.state = Previewing
	c.sessionID = c.newID()
	c.startedAt = c.now()
	c.recordingSince = time.Time{}
	c.slots = slots
	c.mux = nil
	c.ticks = 0
	c.mu.Unlock()

	c.logger.Info("Preview started with %d camera(s)", len(slots))
	c.startLoop()
	return nil
}

// Record adds sinks to the previewed devices. Previewing -> Recording.
// Devices whose sink cannot be created are released.
func (c *Controller) Record(ctx context.Context) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	state := c.state
	current := append([]*slot(nil), c.slots...)
	c.mu.Unlock()

	if state != Previewing {
		return fmt.Errorf("%w: record while %s", ErrInvalidState, state)
	}

	// Sinks are created outside the state lock so ticks keep previewing meanwhile.
	since := c.now()
	outputs, mux, err := c.createSinks(ctx, current, since)
	if err != nil {
		return err
	}

	c.mu.Lock()
	kept := apply(outputs)
	var released []*slot
	for _, s := range current {
		if !containsSlot(kept, s) {
			released = append(released, s)
		}
	}
	c.state = Recording
	c.recordingSince = since
	c.slots = kept
	c.mux = mux
	c.mu.Unlock()

	for _, s := range released {
		c.closeCamera(s)
	}

	c.logger.Info("Recording started with %d camera(s)", len(kept))
	return nil
}

// StopRecording finalizes the sinks and keeps previewing. Recording -> Previewing.
func (c *Controller) StopRecording(ctx context.Context) (Result, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.state != Recording {
		state := c.state
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%w: stop recording while %s", ErrInvalidState, state)
	}

	pending := c.detachOutputs()
	result := Result{
		SessionID: c.sessionID,
		Mode:      c.opts.Mode,
		StartedAt: c.recordingSince,
	}
	c.state = Previewing
	c.recordingSince = time.Time{}
	c.mu.Unlock()

	result.Artifacts = c.finalize(ctx, pending)
	result.StoppedAt = c.now()
	result.Duration = result.StoppedAt.Sub(result.StartedAt)

	c.logger.Info("Recording stopped, %d file(s) written", len(result.Artifacts))
	return result, nil
}

// Stop halts the loop and releases every sink and device. Any state -> Idle.
// Stop on an idle controller is a no-op.
func (c *Controller) Stop(ctx context.Context) (Result, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.state == Idle && len(c.slots) == 0 {
		c.mu.Unlock()
		return Result{}, nil
	}
	c.mu.Unlock()

	c.stopLoop()

	c.mu.Lock()
	slots := c.slots
	recording := c.state == Recording
	result := Result{
		SessionID: c.sessionID,
		Mode:      c.opts.Mode,
	}
	var pending pendingOutputs
	if recording {
		result.StartedAt = c.recordingSince
		pending = c.detachOutputs()
	}
	c.state = Idle
	c.slots = nil
	c.sessionID = ""
	c.startedAt = time.Time{}
	c.recordingSince = time.Time{}
	c.mu.Unlock()

	// Sinks are finalized before their devices are released.
	if recording {
		result.Artifacts = c.finalize(ctx, pending)
		result.StoppedAt = c.now()
		result.Duration = result.StoppedAt.Sub(result.StartedAt)
	}

	for _, s := range slots {
		c.closeCamera(s)
	}

	if err := c.display.Clear(); err != nil {
		c.logger.Debug("Failed to clear preview: %v", err)
	}

	c.logger.Info("Session stopped")
	return result, nil
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:          c.state,
		SessionID:      c.sessionID,
		StartedAt:      c.startedAt,
		RecordingSince: c.recordingSince,
		Ticks:          c.ticks,
		Devices:        make([]DeviceStatus, 0, len(c.slots)),
	}
	for _, s := range c.slots {
		path := s.path
		if c.mux != nil {
			path = c.mux.path
		}
		st.Devices = append(st.Devices, DeviceStatus{
			Device: s.cam.Device(),
			Label:  s.cam.Device().Label(),
			Stream: s.info,
			Frames: s.frames,
			Path:   path,
		})
	}
	return st
}

// Tick reads one frame from every open device, writes it when recording and
// updates the preview. A device without a frame is skipped for this tick.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	if c.state == Idle || len(c.slots) == 0 {
		c.mu.Unlock()
		return
	}
	c.ticks++
	slots := append([]*slot(nil), c.slots...)
	c.mu.Unlock()

	// Reads may block for a frame timeout, so they run without the state lock.
	type grabbed struct {
		slot *slot
		img  image.Image
	}
	var got []grabbed
	for _, s := range slots {
		img, err := s.cam.Read(ctx)
		if err != nil {
			c.logger.Debug("No frame from %s: %v", s.cam.Device().Label(), err)
			continue
		}
		got = append(got, grabbed{slot: s, img: img})
	}

	c.mu.Lock()
	recording := c.state == Recording
	frames := make([]image.Image, 0, len(got))
	ind := ports.Indicator{Recording: recording}
	for _, g := range got {
		// The slot may have been released by a command since the read.
		if !containsSlot(c.slots, g.slot) {
			continue
		}
		if recording {
			c.write(g.slot, g.img)
		}
		frames = append(frames, g.img)
		ind.Labels = append(ind.Labels, g.slot.cam.Device().Label())
	}
	if recording {
		ind.Elapsed = c.now().Sub(c.recordingSince)
	}
	opts := c.opts
	c.mu.Unlock()

	preview := juxtapose.Frames(frames, opts.Juxtapose)
	if preview == nil {
		return
	}

	var out image.Image = preview
	if c.renderer != nil {
		if opts.PreviewWidth > 0 {
			out = c.renderer.Fit(out, opts.PreviewWidth)
		}
		if opts.Overlay {
			out = c.renderer.Annotate(out, ind)
		}
	}

	if err := c.display.Show(out); err != nil {
		c.logger.Debug("Failed to update preview: %v", err)
	}
}

// write forwards a frame to the slot's output. Must be called with mu held.
func (c *Controller) write(s *slot, img image.Image) {
	var err error
	switch {
	case s.sink != nil:
		err = s.sink.WriteFrame(img)
	case c.mux != nil:
		err = c.mux.sink.WriteFrame(s.stream, img)
	default:
		return
	}
	if errors.Is(err, ports.ErrFrameDropped) {
		c.logger.Debug("Dropped frame from %s: %v", s.cam.Device().Label(), err)
		return
	}
	if err != nil {
		c.logger.Warn("Dropped frame from %s: %v", s.cam.Device().Label(), err)
		return
	}
	s.frames++
}

func (c *Controller) currentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// openDevices opens each selected device once, skipping duplicates and
// devices that fail to open, up to MaxDevices.
func (c *Controller) openDevices(ctx context.Context, devices []ports.Device) []*slot {
	var slots []*slot
	seen := make(map[string]bool)

	for i, dev := range devices {
		key := dev.Key()
		if seen[key] {
			c.logger.Debug("Skipping duplicate selection %s", dev.Label())
			continue
		}
		seen[key] = true

		if len(slots) >= c.opts.MaxDevices {
			c.logger.Warn("Ignoring %s: at most %d cameras are supported", dev.Label(), c.opts.MaxDevices)
			continue
		}

		cam, err := c.opener.Open(ctx, dev, c.opts.Capture)
		if err != nil {
			c.logger.Warn("Failed to open %s: %v", dev.Label(), err)
			continue
		}

		info := cam.Info()
		if info.FPS <= 0 {
			info.FPS = 30
		}
		c.logger.Info("Opened %s (%dx%d @ %.4g fps)", cam.Device().Label(), info.Width, info.Height, info.FPS)
		slots = append(slots, &slot{seat: i + 1, cam: cam, info: info})
	}
	return slots
}

// output is a sink created for a slot, applied under the state lock.
type output struct {
	slot   *slot
	sink   ports.FrameSink
	stream int
	path   string
}

// apply installs the outputs on their slots and returns those slots.
// Must be called with mu held, or before the slots are shared.
func apply(outputs []output) []*slot {
	slots := make([]*slot, 0, len(outputs))
	for _, o := range outputs {
		o.slot.sink = o.sink
		o.slot.stream = o.stream
		o.slot.path = o.path
		o.slot.frames = 0
		slots = append(slots, o.slot)
	}
	return slots
}

// attachSinks creates outputs for freshly opened slots. Devices whose sink
// fails are released with it. If nothing can be written every device is
// released and an error returned.
func (c *Controller) attachSinks(ctx context.Context, slots []*slot, at time.Time) ([]*slot, *muxOutput, error) {
	outputs, mux, err := c.createSinks(ctx, slots, at)
	if err != nil {
		for _, s := range slots {
			c.closeCamera(s)
		}
		return nil, nil, err
	}

	kept := apply(outputs)
	for _, s := range slots {
		if !containsSlot(kept, s) {
			c.closeCamera(s)
		}
	}
	return kept, mux, nil
}

// createSinks creates an output per slot (or one mux output for all of them).
// Slots are not modified.
func (c *Controller) createSinks(ctx context.Context, slots []*slot, at time.Time) ([]output, *muxOutput, error) {
	if c.fs != nil && c.opts.OutputDir != "" {
		if err := c.fs.MkdirAll(c.opts.OutputDir); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	ts := at.Format(timestampLayout)
	ext := strings.TrimPrefix(strings.ToLower(c.opts.Format), ".")

	if c.opts.Mode == ModeMux {
		path := c.uniquePath(filepath.Join(c.opts.OutputDir, fmt.Sprintf("cameras_%s.%s", ts, ext)))
		streams := make([]ports.StreamInfo, len(slots))
		for i, s := range slots {
			streams[i] = s.info
		}
		sink, err := c.sinks.NewMuxSink(ctx, path, streams, c.opts.Encoder)
		if err != nil {
			c.logger.Error("Failed to create %s: %v", path, err)
			return nil, nil, fmt.Errorf("create mux sink: %w", err)
		}
		outputs := make([]output, len(slots))
		for i, s := range slots {
			outputs[i] = output{slot: s, stream: i}
		}
		c.logger.Info("Writing %s", path)
		return outputs, &muxOutput{sink: sink, path: path}, nil
	}

	var outputs []output
	var firstErr error
	for _, s := range slots {
		path := c.uniquePath(filepath.Join(c.opts.OutputDir, fmt.Sprintf("camera%d_%s.%s", s.seat, ts, ext)))
		sink, err := c.sinks.NewFileSink(ctx, path, s.info, c.opts.Encoder)
		if err != nil {
			c.logger.Warn("Failed to create %s for %s: %v", path, s.cam.Device().Label(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outputs = append(outputs, output{slot: s, sink: sink, path: path})
		c.logger.Info("Writing %s", path)
	}
	if len(outputs) == 0 {
		return nil, nil, fmt.Errorf("create file sink: %w", firstErr)
	}
	return outputs, nil, nil
}

// uniquePath appends _2, _3, ... when a file with the same timestamp exists.
func (c *Controller) uniquePath(path string) string {
	if c.fs == nil {
		return path
	}
	if ok, err := c.fs.Exists(path); err != nil || !ok {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if ok, err := c.fs.Exists(candidate); err != nil || !ok {
			return candidate
		}
	}
}

// pendingOutputs are outputs detached from their slots, awaiting finalization.
type pendingOutputs struct {
	files []pendingFile
	mux   *muxOutput
	muxOf []string
	muxN  int
}

type pendingFile struct {
	sink   ports.FrameSink
	path   string
	label  string
	frames int
}

// detachOutputs removes every output from the slots so ticks stop writing.
// Must be called with mu held.
func (c *Controller) detachOutputs() pendingOutputs {
	var p pendingOutputs
	for _, s := range c.slots {
		label := s.cam.Device().Label()
		if s.sink != nil {
			p.files = append(p.files, pendingFile{sink: s.sink, path: s.path, label: label, frames: s.frames})
		}
		if c.mux != nil {
			p.muxOf = append(p.muxOf, label)
			p.muxN += s.frames
		}
		s.sink = nil
		s.path = ""
		s.frames = 0
	}
	p.mux = c.mux
	c.mux = nil
	return p
}

// finalize closes detached outputs and reports them as artifacts.
// Finalization errors are logged and recorded on the artifact.
func (c *Controller) finalize(ctx context.Context, p pendingOutputs) []Artifact {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CloseTimeout)
	defer cancel()

	var artifacts []Artifact

	for _, f := range p.files {
		a := Artifact{Path: f.path, Devices: []string{f.label}, Frames: f.frames}
		if err := f.sink.Close(closeCtx); err != nil {
			c.logger.Warn("Failed to finalize %s: %v", a.Path, err)
			a.Error = err.Error()
		}
		a.Bytes = c.size(a.Path)
		artifacts = append(artifacts, a)
	}

	if p.mux != nil {
		a := Artifact{Path: p.mux.path, Devices: p.muxOf, Frames: p.muxN}
		if err := p.mux.sink.Close(closeCtx); err != nil {
			c.logger.Warn("Failed to finalize %s: %v", a.Path, err)
			a.Error = err.Error()
		}
		a.Bytes = c.size(a.Path)
		artifacts = append(artifacts, a)
	}

	for _, a := range artifacts {
		c.logger.Info("Saved %s (%d frames)", a.Path, a.Frames)
	}
	return artifacts
}

func (c *Controller) closeCamera(s *slot) {
	if err := s.cam.Close(); err != nil {
		c.logger.Debug("Failed to release %s: %v", s.cam.Device().Label(), err)
	}
}

func (c *Controller) size(path string) int64 {
	if c.fs == nil || path == "" {
		return 0
	}
	n, err := c.fs.Size(path)
	if err != nil {
		return 0
	}
	return n
}

// startLoop runs Tick every Interval until stopLoop.
func (c *Controller) startLoop() {
	if c.opts.Interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.loopCancel = cancel
	c.loopDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Tick(ctx)
			}
		}
	}()
}

// stopLoop cancels the ticker and waits for an in-flight tick to finish.
func (c *Controller) stopLoop() {
	if c.loopCancel == nil {
		return
	}
	c.loopCancel()
	<-c.loopDone
	c.loopCancel = nil
	c.loopDone = nil
}

func containsSlot(slots []*slot, s *slot) bool {
	for _, x := range slots {
		if x == s {
			return true
		}
	}
	return false
}
