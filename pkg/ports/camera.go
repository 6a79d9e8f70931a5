// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
)

var (
	// ErrNoFrame is returned by Camera.Read when no frame arrived within the frame timeout.
	ErrNoFrame = errors.New("camera: no frame available")

	// ErrCameraClosed is returned by Camera.Read after Close or after the device went away.
	ErrCameraClosed = errors.New("camera: closed")
)

// Device describes a camera that can be opened by a CameraOpener.
type Device struct {
	Index int    // Position in the enumeration (0-based)
	Name  string // Human readable name reported by the OS
	ID    string // Backend input identifier (e.g. "/dev/video0", "0:none", "video=Cam")
}

// Key returns the identity used to detect duplicate selections.
func (d Device) Key() string {
	if d.ID != "" {
		return d.ID
	}
	if d.Name != "" {
		return d.Name
	}
	return strconv.Itoa(d.Index)
}

// Label returns a display label for the device.
func (d Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Camera %d", d.Index)
}

// StreamInfo describes the frames a camera produces.
type StreamInfo struct {
	Width  int
	Height int
	FPS    float64
}

// CaptureOptions are the requested capture parameters.
// Backends may ignore values the device cannot honour.
type CaptureOptions struct {
	Width  int
	Height int
	FPS    float64
}

// Camera is an open device handle. It owns the underlying OS resource
// until Close is called.
type Camera interface {
	// Device returns the device this handle was opened for.
	Device() Device

	// Info returns the stream geometry used to size output sinks.
	Info() StreamInfo

	// Read returns the next available frame.
	// It never blocks longer than one frame timeout.
	Read(ctx context.Context) (image.Image, error)

	// Close releases the device.
	Close() error
}

// CameraOpener opens device handles.
type CameraOpener interface {
	Open(ctx context.Context, device Device, opts CaptureOptions) (Camera, error)
}

// DeviceLister enumerates candidate devices.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]Device, error)
}
