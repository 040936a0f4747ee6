package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func fixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	blob := fixture(t, 64, 32)
	w, h, err := Dimensions(blob)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 64 || h != 32 {
		t.Errorf("Dimensions = %dx%d, want 64x32", w, h)
	}
}

func TestDimensionsInvalid(t *testing.T) {
	if _, _, err := Dimensions([]byte("not a jpeg")); err == nil {
		t.Fatal("expected error decoding non-jpeg bytes")
	}
}

func TestFitToHeight(t *testing.T) {
	blob := fixture(t, 200, 100)
	resized, err := FitToHeight(blob, 128, 20)
	if err != nil {
		t.Fatalf("FitToHeight: %v", err)
	}
	w, h, err := Dimensions(resized)
	if err != nil {
		t.Fatalf("Dimensions of resized: %v", err)
	}
	if h != 20 {
		t.Errorf("resized height = %d, want 20", h)
	}
	if w != 40 {
		t.Errorf("resized width = %d, want 40 (aspect ratio preserved)", w)
	}
}

func TestFitToHeightClampsWidth(t *testing.T) {
	blob := fixture(t, 200, 100)
	resized, err := FitToHeight(blob, 30, 20)
	if err != nil {
		t.Fatalf("FitToHeight: %v", err)
	}
	w, h, err := Dimensions(resized)
	if err != nil {
		t.Fatalf("Dimensions of resized: %v", err)
	}
	if h != 20 {
		t.Errorf("resized height = %d, want 20", h)
	}
	if w != 30 {
		t.Errorf("resized width = %d, want 30 (clamped to bounding box)", w)
	}
}
