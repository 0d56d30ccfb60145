package imaging

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// EncodeAnimation writes frames as a looping animated GIF. delayMS is the
// per-frame delay in milliseconds; GIF stores delays in hundredths of a
// second, so values round down to the nearest 10ms with a 10ms floor.
//
// Frames are quantized to the Plan 9 palette with Floyd-Steinberg
// dithering. All frames must share the same dimensions.
func EncodeAnimation(w io.Writer, frames []*image.RGBA, delayMS int) error {
	if len(frames) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "animation needs at least one frame")
	}

	delay := delayMS / 10
	if delay < 1 {
		delay = 1
	}

	bounds := frames[0].Bounds()
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0,
	}
	for i, frame := range frames {
		if frame.Bounds() != bounds {
			return errors.New(errors.ErrCodeInvalidInput,
				"frame %d is %v, want %v", i, frame.Bounds(), bounds)
		}
		pimg := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), frame, bounds.Min)
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	if err := gif.EncodeAll(w, out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode gif")
	}
	return nil
}
