// Package juxtapose combines camera frames into a single preview frame.
package juxtapose

import (
	"image"
	"image/draw"
)

// Options configures composition.
type Options struct {
	// Gap is the horizontal gap between the two frames in pixels.
	Gap int
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{Gap: 0}
}

// Frames composes the frames obtained in one tick.
// Exactly two frames are placed side by side; otherwise the first frame is
// returned on its own. Nil frames are ignored. Returns nil when there is nothing to show.
func Frames(frames []image.Image, opts Options) *image.RGBA {
	var live []image.Image
	for _, f := range frames {
		if f != nil {
			live = append(live, f)
		}
	}

	switch len(live) {
	case 0:
		return nil
	case 2:
		return SideBySide(live[0], live[1], opts.Gap)
	default:
		return ToRGBA(live[0])
	}
}

// SideBySide draws left and right next to each other on a black background.
// The output is as tall as the taller input; the shorter one is vertically centered.
func SideBySide(left, right image.Image, gap int) *image.RGBA {
	leftBounds := left.Bounds()
	rightBounds := right.Bounds()

	leftWidth := leftBounds.Dx()
	leftHeight := leftBounds.Dy()
	rightWidth := rightBounds.Dx()
	rightHeight := rightBounds.Dy()

	outputWidth := leftWidth + gap + rightWidth
	outputHeight := leftHeight
	if rightHeight > outputHeight {
		outputHeight = rightHeight
	}

	output := image.NewRGBA(image.Rect(0, 0, outputWidth, outputHeight))
	if leftHeight != rightHeight || gap > 0 {
		draw.Draw(output, output.Bounds(), image.Black, image.Point{}, draw.Src)
	}

	leftY := (outputHeight - leftHeight) / 2
	leftRect := image.Rect(0, leftY, leftWidth, leftY+leftHeight)
	draw.Draw(output, leftRect, left, leftBounds.Min, draw.Src)

	rightY := (outputHeight - rightHeight) / 2
	rightX := leftWidth + gap
	rightRect := image.Rect(rightX, rightY, rightX+rightWidth, rightY+rightHeight)
	draw.Draw(output, rightRect, right, rightBounds.Min, draw.Src)

	return output
}

// ToRGBA returns img as an *image.RGBA anchored at the origin.
// Images that already are return unchanged.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// ToSize returns img as an *image.RGBA of exactly width x height.
// Larger images are cropped and smaller ones padded with black.
func ToSize(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return ToRGBA(img)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
