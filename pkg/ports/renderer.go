package ports

import (
	"image"
	"time"
)

// Indicator is the status drawn on top of the preview.
type Indicator struct {
	Recording bool
	Elapsed   time.Duration
	Labels    []string // One label per visible stream, left to right
}

// Renderer abstracts image processing for the preview.
type Renderer interface {
	// Annotate draws the status indicator and returns a new image.
	Annotate(img image.Image, ind Indicator) image.Image

	// Fit scales the image down so its width does not exceed maxWidth.
	// Images already narrow enough are returned unchanged.
	Fit(img image.Image, maxWidth int) image.Image

	// EncodeJPEG encodes an image as JPEG.
	EncodeJPEG(img image.Image, quality int) ([]byte, error)
}
