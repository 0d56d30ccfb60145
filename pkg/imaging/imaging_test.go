package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"testing"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPNGRoundtrip(t *testing.T) {
	src := solidRGBA(6, 4, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	data, err := EncodePNGBytes(src)
	if err != nil {
		t.Fatal(err)
	}

	img, format, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
	r, g, b, _ := img.At(3, 2).RGBA()
	if r>>8 != 10 || g>>8 != 200 || b>>8 != 30 {
		t.Errorf("pixel = (%d, %d, %d), want (10, 200, 30)", r>>8, g>>8, b>>8)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(strings.NewReader("definitely not an image"))
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestResizeDimensions(t *testing.T) {
	src := solidRGBA(100, 50, color.RGBA{R: 80, G: 80, B: 80, A: 255})

	out := Resize(src, 40, 20)
	if got := out.Bounds(); got != image.Rect(0, 0, 40, 20) {
		t.Fatalf("bounds = %v, want 40x20", got)
	}
	// Scaling a uniform image stays uniform.
	if got := out.RGBAAt(20, 10); got != src.RGBAAt(0, 0) {
		t.Errorf("pixel = %v, want %v", got, src.RGBAAt(0, 0))
	}
}

func TestResizeNoopPassthrough(t *testing.T) {
	src := solidRGBA(32, 32, color.RGBA{A: 255})
	if Resize(src, 32, 32) != src {
		t.Error("same-size RGBA resize should pass through")
	}
}

func TestFitWidth(t *testing.T) {
	src := solidRGBA(200, 100, color.RGBA{A: 255})

	out := FitWidth(src, 50)
	if got := out.Bounds(); got != image.Rect(0, 0, 50, 25) {
		t.Errorf("bounds = %v, want 50x25 (aspect preserved)", got)
	}

	tall := solidRGBA(400, 1, color.RGBA{A: 255})
	if got := FitWidth(tall, 50).Bounds().Dy(); got != 1 {
		t.Errorf("height = %d, want floor of 1", got)
	}
}

func TestRollWrapsColumns(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x), A: 255})
		}
	}

	out := Roll(src, 1)
	// Column x moves to (x+1) mod 4.
	for x := 0; x < 4; x++ {
		want := uint8((x + 3) % 4)
		if got := out.RGBAAt(x, 0).R; got != want {
			t.Errorf("column %d: R = %d, want %d", x, got, want)
		}
	}

	// A full rotation is the identity.
	if Roll(src, 4) != src {
		t.Error("full-width roll should pass through")
	}

	// Negative offsets roll the other way.
	neg := Roll(src, -1)
	if got := neg.RGBAAt(0, 0).R; got != 1 {
		t.Errorf("negative roll: column 0 R = %d, want 1", got)
	}
}

func TestEncodeAnimation(t *testing.T) {
	frames := []*image.RGBA{
		solidRGBA(8, 8, color.RGBA{R: 255, A: 255}),
		solidRGBA(8, 8, color.RGBA{G: 255, A: 255}),
		solidRGBA(8, 8, color.RGBA{B: 255, A: 255}),
	}

	var buf bytes.Buffer
	if err := EncodeAnimation(&buf, frames, 50); err != nil {
		t.Fatal(err)
	}

	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(decoded.Image))
	}
	for i, d := range decoded.Delay {
		if d != 5 {
			t.Errorf("frame %d delay = %d, want 5 (50ms)", i, d)
		}
	}
	if decoded.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (loop forever)", decoded.LoopCount)
	}
}

func TestEncodeAnimationErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeAnimation(&buf, nil, 50); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Error("empty frame list should be rejected")
	}

	frames := []*image.RGBA{
		solidRGBA(8, 8, color.RGBA{A: 255}),
		solidRGBA(4, 4, color.RGBA{A: 255}),
	}
	if err := EncodeAnimation(&buf, frames, 50); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Error("mismatched frame sizes should be rejected")
	}
}
