package nulldisplay

import (
	"image"
	"testing"
)

func TestDisplay(t *testing.T) {
	d := New()
	if err := d.Show(image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Errorf("Show failed: %v", err)
	}
	if err := d.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
}
