package pages

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		// Narrow band around mid-gray, like a washed-out photo.
		img.Pix[i] = uint8(100 + i%40)
	}
	return img
}

func TestStretchContrast(t *testing.T) {
	img := grayRamp(16, 16)

	out := stretchContrast(img)

	minV, maxV := uint8(255), uint8(0)
	for _, p := range out.Pix {
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
	}
	if minV != 0 {
		t.Errorf("min intensity = %d, want 0", minV)
	}
	if maxV != 255 {
		t.Errorf("max intensity = %d, want 255", maxV)
	}
}

func TestStretchContrastFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	out := stretchContrast(img)
	for _, p := range out.Pix {
		if p != 128 {
			t.Fatalf("flat image changed, pixel = %d", p)
		}
	}
}

func TestDownscale(t *testing.T) {
	t.Run("small image untouched", func(t *testing.T) {
		img := grayRamp(100, 100)
		out := downscale(img)
		if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
			t.Errorf("bounds = %v", out.Bounds())
		}
	})

	t.Run("wide image capped on width", func(t *testing.T) {
		img := grayRamp(4096, 1024)
		out := downscale(img)
		if out.Bounds().Dx() != maxPageDim {
			t.Errorf("width = %d, want %d", out.Bounds().Dx(), maxPageDim)
		}
		if out.Bounds().Dy() != maxPageDim/4 {
			t.Errorf("height = %d, want %d", out.Bounds().Dy(), maxPageDim/4)
		}
	})

	t.Run("tall image capped on height", func(t *testing.T) {
		img := grayRamp(1024, 4096)
		out := downscale(img)
		if out.Bounds().Dy() != maxPageDim {
			t.Errorf("height = %d, want %d", out.Bounds().Dy(), maxPageDim)
		}
	})
}

func TestPreprocessAndEncode(t *testing.T) {
	img := grayRamp(64, 64)

	data, err := EncodeJPEG(Preprocess(img))
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode round trip: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 64 {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
}
