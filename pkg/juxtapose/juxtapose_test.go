package juxtapose

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func TestFrames_TwoFramesEqualHeight(t *testing.T) {
	out := Frames([]image.Image{solid(64, 48, red), solid(32, 48, blue)}, DefaultOptions())
	if out == nil {
		t.Fatal("expected composite")
	}

	if out.Bounds().Dx() != 96 {
		t.Errorf("expected width 96, got %d", out.Bounds().Dx())
	}
	if out.Bounds().Dy() != 48 {
		t.Errorf("expected height 48, got %d", out.Bounds().Dy())
	}
	if got := out.RGBAAt(10, 10); got != red {
		t.Errorf("expected left pixel red, got %v", got)
	}
	if got := out.RGBAAt(70, 10); got != blue {
		t.Errorf("expected right pixel blue, got %v", got)
	}
}

func TestFrames_DifferentHeightsCentered(t *testing.T) {
	out := Frames([]image.Image{solid(10, 20, red), solid(10, 10, blue)}, DefaultOptions())

	if out.Bounds().Dy() != 20 {
		t.Fatalf("expected height 20, got %d", out.Bounds().Dy())
	}
	// Right frame spans rows 5..14.
	if got := out.RGBAAt(15, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black padding, got %v", got)
	}
	if got := out.RGBAAt(15, 10); got != blue {
		t.Errorf("expected blue, got %v", got)
	}
}

func TestFrames_Gap(t *testing.T) {
	out := Frames([]image.Image{solid(10, 10, red), solid(10, 10, blue)}, Options{Gap: 4})

	if out.Bounds().Dx() != 24 {
		t.Errorf("expected width 24, got %d", out.Bounds().Dx())
	}
	if got := out.RGBAAt(12, 5); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black gap, got %v", got)
	}
}

func TestFrames_SingleFrame(t *testing.T) {
	in := solid(40, 30, red)
	out := Frames([]image.Image{nil, in}, DefaultOptions())

	if out != in {
		t.Error("expected single RGBA frame to be passed through")
	}
}

func TestFrames_NoFrames(t *testing.T) {
	if out := Frames(nil, DefaultOptions()); out != nil {
		t.Errorf("expected nil, got %v", out.Bounds())
	}
	if out := Frames([]image.Image{nil, nil}, DefaultOptions()); out != nil {
		t.Errorf("expected nil, got %v", out.Bounds())
	}
}

func TestFrames_ThreeFramesShowsFirst(t *testing.T) {
	first := solid(8, 8, red)
	out := Frames([]image.Image{first, solid(8, 8, blue), solid(8, 8, blue)}, DefaultOptions())

	if out.Bounds().Dx() != 8 {
		t.Errorf("expected first frame only, got width %d", out.Bounds().Dx())
	}
}

func TestToRGBA_ConvertsAndRebases(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 15, 10))
	gray.SetGray(5, 5, color.Gray{Y: 200})

	out := ToRGBA(gray)
	if out.Rect.Min != (image.Point{}) {
		t.Errorf("expected origin, got %v", out.Rect.Min)
	}
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 5 {
		t.Errorf("unexpected size %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{200, 200, 200, 255}) {
		t.Errorf("expected converted pixel, got %v", got)
	}
}

func TestToSize(t *testing.T) {
	out := ToSize(solid(4, 4, red), 8, 2)

	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 2 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
	if got := out.RGBAAt(1, 1); got != red {
		t.Errorf("expected red, got %v", got)
	}
	if got := out.RGBAAt(6, 1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black padding, got %v", got)
	}
}
