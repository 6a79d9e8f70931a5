// Package nulldisplay provides a no-op preview display.
package nulldisplay

import (
	"image"

	"github.com/user/duocam/pkg/ports"
)

// Display is a no-op implementation of ports.Display.
// It discards every preview frame.
type Display struct{}

// New creates a new null display.
func New() *Display {
	return &Display{}
}

// Show does nothing.
func (d *Display) Show(img image.Image) error {
	return nil
}

// Clear does nothing.
func (d *Display) Clear() error {
	return nil
}

// Ensure Display implements ports.Display
var _ ports.Display = (*Display)(nil)
