// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/duocam/pkg/ports"
)

// Camera is a mock implementation of ports.Camera.
// Without ReadFunc it returns a solid frame of the configured size.
type Camera struct {
	Dev        ports.Device
	StreamInfo ports.StreamInfo

	ReadFunc  func(ctx context.Context) (image.Image, error)
	CloseFunc func() error

	mu     sync.Mutex
	reads  int
	closed int
}

// NewCamera creates a mock camera producing width x height frames.
func NewCamera(dev ports.Device, width, height int) *Camera {
	return &Camera{
		Dev:        dev,
		StreamInfo: ports.StreamInfo{Width: width, Height: height, FPS: 30},
	}
}

func (m *Camera) Device() ports.Device {
	return m.Dev
}

func (m *Camera) Info() ports.StreamInfo {
	return m.StreamInfo
}

func (m *Camera) Read(ctx context.Context) (image.Image, error) {
	m.mu.Lock()
	m.reads++
	closed := m.closed > 0
	m.mu.Unlock()

	if m.ReadFunc != nil {
		return m.ReadFunc(ctx)
	}
	if closed {
		return nil, ports.ErrCameraClosed
	}
	return image.NewRGBA(image.Rect(0, 0, m.StreamInfo.Width, m.StreamInfo.Height)), nil
}

func (m *Camera) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reads returns the number of Read calls (for test verification).
func (m *Camera) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// CloseCount returns the number of Close calls (for test verification).
func (m *Camera) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.Camera = (*Camera)(nil)

// CameraOpener is a mock implementation of ports.CameraOpener.
// Without OpenFunc every device opens as a 64x48 Camera.
type CameraOpener struct {
	OpenFunc func(ctx context.Context, device ports.Device, opts ports.CaptureOptions) (ports.Camera, error)

	mu     sync.Mutex
	opened []*Camera
	calls  []ports.Device
}

func (m *CameraOpener) Open(ctx context.Context, device ports.Device, opts ports.CaptureOptions) (ports.Camera, error) {
	m.mu.Lock()
	m.calls = append(m.calls, device)
	m.mu.Unlock()

	if m.OpenFunc != nil {
		cam, err := m.OpenFunc(ctx, device, opts)
		if c, ok := cam.(*Camera); ok && err == nil {
			m.mu.Lock()
			m.opened = append(m.opened, c)
			m.mu.Unlock()
		}
		return cam, err
	}

	cam := NewCamera(device, 64, 48)
	m.mu.Lock()
	m.opened = append(m.opened, cam)
	m.mu.Unlock()
	return cam, nil
}

// Calls returns every device passed to Open (for test verification).
func (m *CameraOpener) Calls() []ports.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Device(nil), m.calls...)
}

// Opened returns the mock cameras handed out by Open (for test verification).
func (m *CameraOpener) Opened() []*Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Camera(nil), m.opened...)
}

// OpenHandles returns how many opened cameras have not been closed.
func (m *CameraOpener) OpenHandles() int {
	n := 0
	for _, c := range m.Opened() {
		if c.CloseCount() == 0 {
			n++
		}
	}
	return n
}

var _ ports.CameraOpener = (*CameraOpener)(nil)

// DeviceLister is a mock implementation of ports.DeviceLister.
type DeviceLister struct {
	Devices         []ports.Device
	ListDevicesFunc func(ctx context.Context) ([]ports.Device, error)
}

func (m *DeviceLister) ListDevices(ctx context.Context) ([]ports.Device, error) {
	if m.ListDevicesFunc != nil {
		return m.ListDevicesFunc(ctx)
	}
	return m.Devices, nil
}

var _ ports.DeviceLister = (*DeviceLister)(nil)
