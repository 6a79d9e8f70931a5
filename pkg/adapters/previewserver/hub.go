package previewserver

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/duocam/pkg/ports"
)

// Hub keeps the latest preview frame as JPEG and wakes subscribers on every update.
// It implements ports.Display.
type Hub struct {
	renderer ports.Renderer
	quality  int

	mu      sync.Mutex
	frame   []byte
	updated chan struct{}
}

// NewHub creates a Hub encoding frames at the given JPEG quality.
func NewHub(renderer ports.Renderer, quality int) *Hub {
	if quality <= 0 {
		quality = 80
	}
	return &Hub{
		renderer: renderer,
		quality:  quality,
		updated:  make(chan struct{}),
	}
}

// Show encodes img and replaces the current frame.
func (h *Hub) Show(img image.Image) error {
	data, err := h.renderer.EncodeJPEG(img, h.quality)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	h.publish(data)
	return nil
}

// Clear drops the current frame.
func (h *Hub) Clear() error {
	h.publish(nil)
	return nil
}

var _ ports.Display = (*Hub)(nil)

func (h *Hub) publish(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = data
	close(h.updated)
	h.updated = make(chan struct{})
}

// latest returns the current frame and a channel closed on the next update.
func (h *Hub) latest() ([]byte, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.updated
}
