// Package snapshot provides a preview display that keeps the latest frame in a JPEG file.
package snapshot

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/user/duocam/pkg/ports"
)

// Display writes the preview to a file, at most once per interval.
// The file is replaced atomically so viewers never read a partial image.
type Display struct {
	path     string
	fs       ports.FileSystem
	renderer ports.Renderer
	quality  int
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	written int
}

// New creates a snapshot display writing to path.
func New(path string, fs ports.FileSystem, renderer ports.Renderer, quality int, interval time.Duration) *Display {
	return &Display{
		path:     path,
		fs:       fs,
		renderer: renderer,
		quality:  quality,
		interval: interval,
		now:      time.Now,
	}
}

// Show encodes img and replaces the file unless the previous write is more recent than the interval.
func (d *Display) Show(img image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.written > 0 && now.Sub(d.last) < d.interval {
		return nil
	}

	data, err := d.renderer.EncodeJPEG(img, d.quality)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := d.fs.WriteFileAtomic(d.path, data); err != nil {
		return fmt.Errorf("write preview %s: %w", d.path, err)
	}

	d.last = now
	d.written++
	return nil
}

// Clear removes the preview file.
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.written = 0
	exists, err := d.fs.Exists(d.path)
	if err != nil || !exists {
		return err
	}
	return d.fs.Remove(d.path)
}

// Written returns the number of frames written since the last Clear.
func (d *Display) Written() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written
}

// Ensure Display implements ports.Display
var _ ports.Display = (*Display)(nil)
