package mocks

import (
	"image"
	"sync"

	"github.com/user/duocam/pkg/ports"
)

// Display is a mock implementation of ports.Display that keeps the last frame.
type Display struct {
	ShowFunc  func(img image.Image) error
	ClearFunc func() error

	mu      sync.Mutex
	last    image.Image
	shown   int
	cleared int
}

func (m *Display) Show(img image.Image) error {
	m.mu.Lock()
	m.last = img
	m.shown++
	m.mu.Unlock()

	if m.ShowFunc != nil {
		return m.ShowFunc(img)
	}
	return nil
}

func (m *Display) Clear() error {
	m.mu.Lock()
	m.last = nil
	m.cleared++
	m.mu.Unlock()

	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	return nil
}

// Last returns the frame currently shown, nil after Clear.
func (m *Display) Last() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// ShowCount returns the number of Show calls.
func (m *Display) ShowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}

// ClearCount returns the number of Clear calls.
func (m *Display) ClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

var _ ports.Display = (*Display)(nil)
