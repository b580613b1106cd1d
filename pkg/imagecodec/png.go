package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

var _ = jpeg.Decode // registers the JPEG format with image.Decode

// EncodePNG encodes img as PNG bytes. image/png stores a fully opaque
// image as RGB with no alpha channel, and any other image as RGBA.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imagecodec: encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG encodes img and writes it to path.
func SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("imagecodec: writing %s: %w", path, err)
	}
	return nil
}

// DecodePNG reads and decodes a PNG file. Background images are loaded
// through DecodeImage instead.
func DecodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: opening %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: decoding %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage reads and decodes a background image of any registered
// format (PNG or JPEG); backgrounds are sourced independently of the
// batch's own PNG output format, so the Canvas Placer needs to accept
// whatever a background directory actually contains.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: opening %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: decoding %s: %w", path, err)
	}
	return img, nil
}
