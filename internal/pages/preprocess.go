package pages

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

// maxPageDim caps either image dimension before recognition. Vision APIs
// reject or silently downscale oversized images; downscaling here keeps the
// result predictable.
const maxPageDim = 2048

// jpegQuality for recognizer uploads.
const jpegQuality = 90

// LoadImage reads and decodes an image file.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound, "page image not found", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "failed to decode page image", err)
	}
	return img, nil
}

// Preprocess prepares a rendered page for recognition: grayscale with
// contrast stretching to even out pencil strokes and paper shadows, then a
// downscale when the render exceeds the recognizer's size cap.
func Preprocess(img image.Image) image.Image {
	gray := toGray(img)
	stretched := stretchContrast(gray)
	return downscale(stretched)
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, img, bounds.Min, xdraw.Src)
	return gray
}

// stretchContrast maps the observed intensity range onto the full 0..255
// scale. Photographed homework is often low-contrast gray-on-gray.
func stretchContrast(gray *image.Gray) *image.Gray {
	minV, maxV := uint8(255), uint8(0)
	for _, p := range gray.Pix {
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
	}
	if maxV <= minV {
		return gray
	}

	span := int(maxV) - int(minV)
	out := image.NewGray(gray.Bounds())
	for i, p := range gray.Pix {
		out.Pix[i] = uint8((int(p) - int(minV)) * 255 / span)
	}
	return out
}

// downscale shrinks the page so neither dimension exceeds maxPageDim,
// preserving aspect ratio.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxPageDim && h <= maxPageDim {
		return img
	}

	scale := float64(maxPageDim) / float64(w)
	if h > w {
		scale = float64(maxPageDim) / float64(h)
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)

	dst := image.NewGray(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)

	logger.Debug("page downscaled",
		logger.Int("fromWidth", w), logger.Int("fromHeight", h),
		logger.Int("toWidth", dw), logger.Int("toHeight", dh))
	return dst
}

// EncodeJPEG serializes the processed page for the recognizer.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to encode page image", err)
	}
	return buf.Bytes(), nil
}

// PreparePage renders, preprocesses and encodes one page.
func (r *Renderer) PreparePage(pdfPath string, pageNum int) ([]byte, error) {
	imgPath, err := r.RenderPage(pdfPath, pageNum)
	if err != nil {
		return nil, err
	}
	defer os.Remove(imgPath)

	img, err := LoadImage(imgPath)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Preprocess(img))
}
