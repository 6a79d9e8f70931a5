// Package summarizer provides summary generation for recording results.
package summarizer

import (
	"time"

	"github.com/user/duocam/pkg/session"
)

// Summary contains all data collected during a recording session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Session information
	Session SessionInfo

	// Recording settings
	Settings Settings

	// Files written by the recording
	Artifacts []ArtifactInfo
}

// SessionInfo identifies the recording.
type SessionInfo struct {
	ID        string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
}

// Settings contains the recording configuration.
type Settings struct {
	Backend string
	Format  string
	Codec   string // empty = container default

	// Requested capture size (0 = device default)
	Width  int
	Height int
	FPS    float64

	// Encoder tuning (0 = encoder default)
	Bitrate int // kbps
	Quality int // CRF
}

// ArtifactInfo describes one output file.
type ArtifactInfo struct {
	Path    string
	Devices []string
	Frames  int
	Bytes   int64
	Error   string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithResult sets session and artifact information from a finished recording.
func (b *Builder) WithResult(result session.Result) *Builder {
	b.summary.Session = SessionInfo{
		ID:        result.SessionID,
		Mode:      string(result.Mode),
		StartedAt: result.StartedAt,
		Duration:  result.Duration,
	}
	b.summary.Artifacts = b.summary.Artifacts[:0]
	for _, a := range result.Artifacts {
		b.summary.Artifacts = append(b.summary.Artifacts, ArtifactInfo{
			Path:    a.Path,
			Devices: append([]string(nil), a.Devices...),
			Frames:  a.Frames,
			Bytes:   a.Bytes,
			Error:   a.Error,
		})
	}
	return b
}

// WithSettings sets recording settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithGeneratedAt overrides the generation timestamp.
func (b *Builder) WithGeneratedAt(t time.Time) *Builder {
	b.summary.GeneratedAt = t
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
