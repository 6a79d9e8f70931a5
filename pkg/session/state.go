// Package session implements the recording controller and its capture loop.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/duocam/pkg/ports"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("session: invalid state for operation")

	// ErrNoCameras is returned when none of the selected devices could be opened.
	ErrNoCameras = errors.New("session: no camera opened")
)

// State is the session state.
type State int

const (
	// Idle means no device is open.
	Idle State = iota
	// Previewing means devices are open and frames are only displayed.
	Previewing
	// Recording means frames are displayed and written to sinks.
	Recording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Idle, Previewing, Recording} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("session: unknown state %q", text)
}

// Mode selects how recordings are written.
type Mode string

const (
	// ModeFiles writes one file per device.
	ModeFiles Mode = "files"
	// ModeMux writes all devices into one container through a single encoder.
	ModeMux Mode = "mux"
)

// Artifact is a file written by a recording.
type Artifact struct {
	Path    string   `json:"path"`
	Devices []string `json:"devices"`
	Frames  int      `json:"frames"`
	Bytes   int64    `json:"bytes"`
	Error   string   `json:"error,omitempty"`
}

// Result describes a finished recording.
type Result struct {
	SessionID string        `json:"session_id"`
	Mode      Mode          `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
	StoppedAt time.Time     `json:"stopped_at"`
	Duration  time.Duration `json:"duration"`
	Artifacts []Artifact    `json:"artifacts"`
}

// DeviceStatus reports one open device.
type DeviceStatus struct {
	Device ports.Device     `json:"device"`
	Label  string           `json:"label"`
	Stream ports.StreamInfo `json:"stream"`
	Frames int              `json:"frames"` // Frames written since recording started
	Path   string           `json:"path,omitempty"`
}

// Status is a snapshot of the controller.
type Status struct {
	State          State          `json:"state"`
	SessionID      string         `json:"session_id,omitempty"`
	StartedAt      time.Time      `json:"started_at,omitempty"`
	RecordingSince time.Time      `json:"recording_since,omitempty"`
	Devices        []DeviceStatus `json:"devices"`
	Ticks          int            `json:"ticks"`
}
