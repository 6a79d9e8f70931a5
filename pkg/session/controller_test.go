package session

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/duocam/pkg/adapters/logger"
	"github.com/user/duocam/pkg/mocks"
	"github.com/user/duocam/pkg/ports"
)

var testClock = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	opener  *mocks.CameraOpener
	sinks   *mocks.SinkFactory
	display *mocks.Display
	fs      *mocks.FileSystem
	ctrl    *Controller
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputDir = "out"
	opts.Interval = 0
	opts.Overlay = false
	if mutate != nil {
		mutate(&opts)
	}

	f := &fixture{
		opener:  &mocks.CameraOpener{},
		sinks:   &mocks.SinkFactory{},
		display: &mocks.Display{},
		fs:      mocks.NewFileSystem(),
	}
	f.ctrl = New(f.opener, f.sinks, f.display, nil, f.fs, logger.NewNoop(), opts)
	f.ctrl.SetClock(func() time.Time { return testClock })
	return f
}

func devices(indices ...int) []ports.Device {
	var out []ports.Device
	for _, i := range indices {
		out = append(out, ports.Device{Index: i})
	}
	return out
}

func TestController_StartOpensSelectedDevices(t *testing.T) {
	tests := []struct {
		name      string
		selected  []ports.Device
		wantOpens int
	}{
		{"one device", devices(0), 1},
		{"two devices", devices(0, 1), 2},
		{"duplicate selection", devices(1, 1), 1},
		{"more than supported", devices(0, 1, 2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			if err := f.ctrl.Start(context.Background(), tt.selected); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			defer f.ctrl.Stop(context.Background())

			if got := len(f.opener.Calls()); got != tt.wantOpens {
				t.Errorf("expected %d opens, got %d", tt.wantOpens, got)
			}
			if got := len(f.sinks.FileSinks()); got != tt.wantOpens {
				t.Errorf("expected %d sinks, got %d", tt.wantOpens, got)
			}
			if f.ctrl.Status().State != Recording {
				t.Errorf("expected Recording, got %s", f.ctrl.Status().State)
			}
		})
	}
}

func TestController_StartWithoutDevices(t *testing.T) {
	f := newFixture(t, nil)

	err := f.ctrl.Start(context.Background(), nil)
	if !errors.Is(err, ErrNoCameras) {
		t.Fatalf("expected ErrNoCameras, got %v", err)
	}
	if f.ctrl.Status().State != Idle {
		t.Errorf("expected Idle, got %s", f.ctrl.Status().State)
	}
	if len(f.sinks.FileSinks()) != 0 {
		t.Error("expected no sinks")
	}
}

func TestController_StartSkipsUnavailableDevices(t *testing.T) {
	f := newFixture(t, nil)
	f.opener.OpenFunc = func(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
		if dev.Index == 0 {
			return nil, errors.New("device busy")
		}
		return mocks.NewCamera(dev, 64, 48), nil
	}

	if err := f.ctrl.Start(context.Background(), devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer f.ctrl.Stop(context.Background())

	st := f.ctrl.Status()
	if len(st.Devices) != 1 || st.Devices[0].Device.Index != 1 {
		t.Fatalf("expected only device 1 open, got %+v", st.Devices)
	}
	// File names follow the selection, not the number of devices opened.
	want := filepath.Join("out", "camera2_20240102_030405.avi")
	if st.Devices[0].Path != want {
		t.Errorf("expected path %s, got %s", want, st.Devices[0].Path)
	}
}

func TestController_StartAllDevicesUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.opener.OpenFunc = func(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
		return nil, errors.New("no such device")
	}

	if err := f.ctrl.Start(context.Background(), devices(0, 1)); !errors.Is(err, ErrNoCameras) {
		t.Fatalf("expected ErrNoCameras, got %v", err)
	}
	if f.ctrl.Status().State != Idle {
		t.Errorf("expected Idle, got %s", f.ctrl.Status().State)
	}
}

func TestController_ThreeTicksProduceTwoArtifacts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		f.ctrl.Tick(ctx)
	}

	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(result.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(result.Artifacts))
	}
	wantPaths := []string{
		filepath.Join("out", "camera1_20240102_030405.avi"),
		filepath.Join("out", "camera2_20240102_030405.avi"),
	}
	for i, a := range result.Artifacts {
		if a.Path != wantPaths[i] {
			t.Errorf("artifact %d: expected %s, got %s", i, wantPaths[i], a.Path)
		}
		if a.Frames != 3 {
			t.Errorf("artifact %d: expected 3 frames, got %d", i, a.Frames)
		}
	}
	for i, sink := range f.sinks.FileSinks() {
		if sink.Frames() != 3 {
			t.Errorf("sink %d: expected 3 frames, got %d", i, sink.Frames())
		}
		if sink.CloseCount() != 1 {
			t.Errorf("sink %d: expected 1 close, got %d", i, sink.CloseCount())
		}
	}

	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
	if f.ctrl.Status().State != Idle {
		t.Errorf("expected Idle, got %s", f.ctrl.Status().State)
	}
	if !f.fs.HasDir("out") {
		t.Error("expected output directory to be created")
	}
}

func TestController_StopReleasesSinksBeforeDevices(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var order []string
	f.opener.OpenFunc = func(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
		cam := mocks.NewCamera(dev, 64, 48)
		cam.CloseFunc = func() error {
			order = append(order, "camera")
			return nil
		}
		return cam, nil
	}
	f.sinks.NewFileSinkFunc = func(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
		return &mocks.FrameSink{CloseFunc: func(ctx context.Context) error {
			order = append(order, "sink")
			return nil
		}}, nil
	}

	if err := f.ctrl.Start(ctx, devices(0)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := f.ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(order) != 2 || order[0] != "sink" || order[1] != "camera" {
		t.Errorf("expected sink then camera, got %v", order)
	}
}

func TestController_StopWithoutStart(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.ctrl.Stop(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("expected no artifacts, got %d", len(result.Artifacts))
	}
	if f.ctrl.Status().State != Idle {
		t.Errorf("expected Idle, got %s", f.ctrl.Status().State)
	}
	if f.display.ClearCount() != 0 {
		t.Error("expected display untouched")
	}
}

func TestController_StartAfterStopBeginsClean(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	f.ctrl.Tick(ctx)
	f.ctrl.Stop(ctx)

	if err := f.ctrl.Start(ctx, devices(0)); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	st := f.ctrl.Status()
	if len(st.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(st.Devices))
	}
	if st.Devices[0].Frames != 0 {
		t.Errorf("expected fresh frame count, got %d", st.Devices[0].Frames)
	}
	f.ctrl.Stop(ctx)

	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
}

func TestController_UniquePathWithinSameSecond(t *testing.T) {
	f := newFixture(t, nil)
	existing := filepath.Join("out", "camera1_20240102_030405.avi")
	f.fs.WriteFileAtomic(existing, []byte("earlier"))

	if err := f.ctrl.Start(context.Background(), devices(0)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer f.ctrl.Stop(context.Background())

	want := filepath.Join("out", "camera1_20240102_030405_2.avi")
	if got := f.ctrl.Status().Devices[0].Path; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestController_TickComposesTwoFrames(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer f.ctrl.Stop(ctx)

	f.ctrl.Tick(ctx)

	last := f.display.Last()
	if last == nil {
		t.Fatal("expected a preview frame")
	}
	if last.Bounds().Dx() != 128 || last.Bounds().Dy() != 48 {
		t.Errorf("expected 128x48 composite, got %v", last.Bounds())
	}
}

func TestController_TickSkipsFailedRead(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.opener.OpenFunc = func(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
		cam := mocks.NewCamera(dev, 64, 48)
		if dev.Index == 1 {
			cam.ReadFunc = func(ctx context.Context) (image.Image, error) {
				return nil, ports.ErrNoFrame
			}
		}
		return cam, nil
	}

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.ctrl.Tick(ctx)
	f.ctrl.Tick(ctx)

	last := f.display.Last()
	if last == nil || last.Bounds().Dx() != 64 {
		t.Fatalf("expected single 64px frame, got %v", last)
	}

	result, _ := f.ctrl.Stop(ctx)
	if result.Artifacts[0].Frames != 2 {
		t.Errorf("expected 2 frames for device 0, got %d", result.Artifacts[0].Frames)
	}
	if result.Artifacts[1].Frames != 0 {
		t.Errorf("expected 0 frames for device 1, got %d", result.Artifacts[1].Frames)
	}
}

func TestController_SinkFailureReleasesItsDevice(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	calls := 0
	f.sinks.NewFileSinkFunc = func(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("disk full")
		}
		return &mocks.FrameSink{Path: path}, nil
	}

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer f.ctrl.Stop(ctx)

	opened := f.opener.Opened()
	if opened[0].CloseCount() != 0 {
		t.Error("expected device 0 to stay open")
	}
	if opened[1].CloseCount() != 1 {
		t.Error("expected device 1 to be released with its sink")
	}
	if len(f.ctrl.Status().Devices) != 1 {
		t.Errorf("expected 1 device in session, got %d", len(f.ctrl.Status().Devices))
	}
}

func TestController_AllSinksFail(t *testing.T) {
	f := newFixture(t, nil)
	f.sinks.NewFileSinkFunc = func(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
		return nil, errors.New("ffmpeg missing")
	}

	if err := f.ctrl.Start(context.Background(), devices(0, 1)); err == nil {
		t.Fatal("expected error")
	}
	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
	if f.ctrl.Status().State != Idle {
		t.Errorf("expected Idle, got %s", f.ctrl.Status().State)
	}
}

func TestController_MuxMode(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Mode = ModeMux
		o.Format = "mkv"
	})
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		f.ctrl.Tick(ctx)
	}
	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(f.sinks.FileSinks()) != 0 {
		t.Error("expected no per-device sinks")
	}
	muxes := f.sinks.MuxSinks()
	if len(muxes) != 1 {
		t.Fatalf("expected 1 mux sink, got %d", len(muxes))
	}
	if len(muxes[0].Streams) != 2 {
		t.Errorf("expected 2 streams, got %d", len(muxes[0].Streams))
	}
	if muxes[0].Frames(0) != 3 || muxes[0].Frames(1) != 3 {
		t.Errorf("expected 3 frames per stream, got %d and %d", muxes[0].Frames(0), muxes[0].Frames(1))
	}

	if len(result.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(result.Artifacts))
	}
	a := result.Artifacts[0]
	if a.Path != filepath.Join("out", "cameras_20240102_030405.mkv") {
		t.Errorf("unexpected path %s", a.Path)
	}
	if a.Frames != 6 || len(a.Devices) != 2 {
		t.Errorf("expected 6 frames from 2 devices, got %d from %d", a.Frames, len(a.Devices))
	}
}

func TestController_MuxFailureReleasesEverything(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Mode = ModeMux })
	f.sinks.NewMuxSinkFunc = func(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
		return nil, errors.New("unsupported")
	}

	if err := f.ctrl.Start(context.Background(), devices(0, 1)); err == nil {
		t.Fatal("expected error")
	}
	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
}

func TestController_FinalizeErrorIsReported(t *testing.T) {
	f := newFixture(t, nil)
	f.sinks.NewFileSinkFunc = func(ctx context.Context, path string, info ports.StreamInfo, opts ports.EncoderOptions) (ports.FrameSink, error) {
		return &mocks.FrameSink{Path: path, CloseFunc: func(ctx context.Context) error {
			return errors.New("ffmpeg killed")
		}}, nil
	}

	ctx := context.Background()
	f.ctrl.Start(ctx, devices(0))
	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("expected Stop to succeed, got %v", err)
	}
	if result.Artifacts[0].Error == "" {
		t.Error("expected artifact error")
	}
	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
}

func TestController_PreviewRecordStateMachine(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.Record(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Record while idle: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.ctrl.StopRecording(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("StopRecording while idle: expected ErrInvalidState, got %v", err)
	}

	if err := f.ctrl.Preview(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if f.ctrl.Status().State != Previewing {
		t.Fatalf("expected Previewing, got %s", f.ctrl.Status().State)
	}
	if err := f.ctrl.Start(ctx, devices(0)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start while previewing: expected ErrInvalidState, got %v", err)
	}

	// Previewing writes nothing.
	f.ctrl.Tick(ctx)
	if len(f.sinks.FileSinks()) != 0 {
		t.Fatal("expected no sinks while previewing")
	}

	if err := f.ctrl.Record(ctx); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if f.ctrl.Status().State != Recording {
		t.Fatalf("expected Recording, got %s", f.ctrl.Status().State)
	}
	f.ctrl.Tick(ctx)
	f.ctrl.Tick(ctx)

	result, err := f.ctrl.StopRecording(ctx)
	if err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
	if len(result.Artifacts) != 2 || result.Artifacts[0].Frames != 2 {
		t.Errorf("expected 2 artifacts with 2 frames, got %+v", result.Artifacts)
	}
	if f.ctrl.Status().State != Previewing {
		t.Fatalf("expected Previewing, got %s", f.ctrl.Status().State)
	}
	if n := f.opener.OpenHandles(); n != 2 {
		t.Errorf("expected devices to stay open, got %d handles", n)
	}

	if _, err := f.ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if n := f.opener.OpenHandles(); n != 0 {
		t.Errorf("expected zero open handles, got %d", n)
	}
	if f.display.ClearCount() != 1 {
		t.Errorf("expected preview cleared once, got %d", f.display.ClearCount())
	}
}

func TestController_OverlayIndicator(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Overlay = true })
	renderer := &mocks.Renderer{}
	f.ctrl = New(f.opener, f.sinks, f.display, renderer, f.fs, logger.NewNoop(), f.ctrl.opts)
	ctx := context.Background()

	f.ctrl.Start(ctx, []ports.Device{{Index: 0, Name: "Left"}, {Index: 1, Name: "Right"}})
	f.ctrl.Tick(ctx)
	f.ctrl.Stop(ctx)

	inds := renderer.Indicators()
	if len(inds) != 1 {
		t.Fatalf("expected 1 indicator, got %d", len(inds))
	}
	if !inds[0].Recording {
		t.Error("expected recording indicator")
	}
	if len(inds[0].Labels) != 2 || inds[0].Labels[0] != "Left" || inds[0].Labels[1] != "Right" {
		t.Errorf("unexpected labels %v", inds[0].Labels)
	}
}

func TestController_InternalTicker(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Interval = 5 * time.Millisecond })
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.display.ShowCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.display.ShowCount() < 3 {
		t.Fatalf("expected ticker to drive the preview, got %d frames", f.display.ShowCount())
	}

	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	shown := f.display.ShowCount()
	time.Sleep(30 * time.Millisecond)
	if f.display.ShowCount() != shown {
		t.Error("expected no ticks after Stop")
	}
	if result.Artifacts[0].Frames < 3 {
		t.Errorf("expected at least 3 frames, got %d", result.Artifacts[0].Frames)
	}
}

func TestController_SetOptionsWaitsForNextSession(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Interval = time.Millisecond })
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		next := DefaultOptions()
		next.OutputDir = "out"
		next.Mode = ModeMux
		next.Format = "mkv"
		next.Interval = time.Millisecond
		next.PreviewWidth = 32 + i
		f.ctrl.SetOptions(next)
		time.Sleep(time.Millisecond)
	}

	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if result.Mode != ModeFiles {
		t.Errorf("expected the running session to keep mode files, got %s", result.Mode)
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("expected 2 per-device files, got %d", len(result.Artifacts))
	}
	if len(f.sinks.MuxSinks()) != 0 {
		t.Error("expected no mux sink during the running session")
	}

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	result, err = f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
	if result.Mode != ModeMux {
		t.Errorf("expected the next session to use mode mux, got %s", result.Mode)
	}
	if len(f.sinks.MuxSinks()) != 1 {
		t.Errorf("expected 1 mux sink in the next session, got %d", len(f.sinks.MuxSinks()))
	}
}

func TestController_DroppedFramesAreNotCounted(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Mode = ModeMux })
	f.sinks.NewMuxSinkFunc = func(ctx context.Context, path string, streams []ports.StreamInfo, opts ports.EncoderOptions) (ports.MuxSink, error) {
		return &mocks.MuxSink{
			Path:    path,
			Streams: streams,
			WriteFrameFunc: func(stream int, img image.Image) error {
				if stream == 1 {
					return ports.ErrFrameDropped
				}
				return nil
			},
		}, nil
	}
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0, 1)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		f.ctrl.Tick(ctx)
	}

	st := f.ctrl.Status()
	if st.Devices[0].Frames != 3 || st.Devices[1].Frames != 0 {
		t.Errorf("expected 3 and 0 frames, got %d and %d", st.Devices[0].Frames, st.Devices[1].Frames)
	}

	result, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if result.Artifacts[0].Frames != 3 {
		t.Errorf("expected 3 frames in the container, got %d", result.Artifacts[0].Frames)
	}
	if f.display.ShowCount() != 3 {
		t.Errorf("expected dropped frames to still reach the preview, got %d", f.display.ShowCount())
	}
}

func TestController_StatusDuringSlowRead(t *testing.T) {
	f := newFixture(t, nil)
	release := make(chan struct{})
	reading := make(chan struct{}, 1)
	f.opener.OpenFunc = func(ctx context.Context, dev ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
		cam := mocks.NewCamera(dev, 64, 48)
		cam.ReadFunc = func(ctx context.Context) (image.Image, error) {
			reading <- struct{}{}
			<-release
			return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
		}
		return cam, nil
	}
	ctx := context.Background()

	if err := f.ctrl.Start(ctx, devices(0)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	tickDone := make(chan struct{})
	go func() {
		f.ctrl.Tick(ctx)
		close(tickDone)
	}()
	<-reading

	statusDone := make(chan Status, 1)
	go func() { statusDone <- f.ctrl.Status() }()
	select {
	case st := <-statusDone:
		if st.State != Recording {
			t.Errorf("expected recording, got %s", st.State)
		}
	case <-time.After(time.Second):
		t.Error("expected Status not to wait for a frame read")
	}

	close(release)
	<-tickDone
	if _, err := f.ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if f.display.ShowCount() != 1 {
		t.Errorf("expected the slow frame to be shown, got %d", f.display.ShowCount())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Previewing, "previewing"},
		{Recording, "recording"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestState_UnmarshalText(t *testing.T) {
	var s State
	if err := s.UnmarshalText([]byte("previewing")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if s != Previewing {
		t.Errorf("expected previewing, got %s", s)
	}
	if err := s.UnmarshalText([]byte("paused")); err == nil {
		t.Error("expected error for unknown state")
	}
}
