package ports

import "image"

// Display shows the live preview.
// Show replaces the previous frame; nothing is buffered.
type Display interface {
	Show(img image.Image) error
	Clear() error
}
