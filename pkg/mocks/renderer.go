package mocks

import (
	"image"
	"sync"

	"github.com/user/duocam/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// By default Annotate and Fit return the input unchanged.
type Renderer struct {
	AnnotateFunc   func(img image.Image, ind ports.Indicator) image.Image
	FitFunc        func(img image.Image, maxWidth int) image.Image
	EncodeJPEGFunc func(img image.Image, quality int) ([]byte, error)

	mu         sync.Mutex
	indicators []ports.Indicator
}

func (m *Renderer) Annotate(img image.Image, ind ports.Indicator) image.Image {
	m.mu.Lock()
	m.indicators = append(m.indicators, ind)
	m.mu.Unlock()

	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(img, ind)
	}
	return img
}

func (m *Renderer) Fit(img image.Image, maxWidth int) image.Image {
	if m.FitFunc != nil {
		return m.FitFunc(img, maxWidth)
	}
	return img
}

func (m *Renderer) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if m.EncodeJPEGFunc != nil {
		return m.EncodeJPEGFunc(img, quality)
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

// Indicators returns every indicator passed to Annotate (for test verification).
func (m *Renderer) Indicators() []ports.Indicator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Indicator(nil), m.indicators...)
}

var _ ports.Renderer = (*Renderer)(nil)
