// Package imaging handles decoding, encoding and geometric preparation of
// source images for the lensing pipeline.
//
// Decoding accepts the common web formats (PNG, JPEG, GIF) plus BMP, TIFF
// and WebP through golang.org/x/image. All pipeline output is encoded as
// PNG for stills and animated GIF for exports.
package imaging

import (
	"bytes"
	"image"
	"image/png"
	"io"

	// Registered decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// Decode reads an image in any registered format and returns it with the
// detected format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	return img, format, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// EncodePNGBytes encodes img as PNG into a byte slice.
func EncodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
