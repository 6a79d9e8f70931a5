// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/duocam/pkg/ports"
)

// DefaultJPEGQuality is used when EncodeJPEG is called with quality 0.
const DefaultJPEGQuality = 80

var (
	recColor   = color.RGBA{R: 230, G: 30, B: 30, A: 255}
	textColor  = color.White
	panelColor = color.RGBA{A: 160}
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Annotate draws the recording state in the top left corner and one label
// per stream along the bottom edge. The input image is not modified.
func (r *Renderer) Annotate(img image.Image, ind ports.Indicator) image.Image {
	dc := gg.NewContextForImage(img)
	w := float64(dc.Width())
	h := float64(dc.Height())

	status := "PREVIEW"
	if ind.Recording {
		status = "REC " + formatElapsed(ind.Elapsed)
	}

	textW, textH := dc.MeasureString(status)
	radius := textH / 2
	dc.SetColor(panelColor)
	dc.DrawRoundedRectangle(6, 6, textW+radius*2+20, textH+12, 4)
	dc.Fill()

	if ind.Recording {
		dc.SetColor(recColor)
		dc.DrawCircle(12+radius, 12+textH/2, radius)
		dc.Fill()
	}
	dc.SetColor(textColor)
	dc.DrawStringAnchored(status, 18+radius*2, 12+textH/2, 0, 0.5)

	if n := len(ind.Labels); n > 0 {
		segment := w / float64(n)
		for i, label := range ind.Labels {
			if label == "" {
				continue
			}
			lw, lh := dc.MeasureString(label)
			x := float64(i)*segment + 6
			y := h - lh - 12
			dc.SetColor(panelColor)
			dc.DrawRectangle(x, y, lw+12, lh+8)
			dc.Fill()
			dc.SetColor(textColor)
			dc.DrawStringAnchored(label, x+6, y+4+lh/2, 0, 0.5)
		}
	}

	return dc.Image()
}

// Fit scales img down to maxWidth, keeping its aspect ratio.
func (r *Renderer) Fit(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// EncodeJPEG encodes an image as JPEG.
func (r *Renderer) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// formatElapsed renders d as mm:ss, or h:mm:ss past one hour.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
