package cli

import (
	"bytes"
	"context"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
)

// Animation defaults shared with the server's export endpoint.
const (
	gifDefaultFrames = 24
	gifMinFrames     = 2
	gifMaxFrames     = 200
	gifFrameDelayMS  = 50
)

// gifCommand creates the gif command: render a scrolling animation.
func (c *CLI) gifCommand() *cobra.Command {
	var flags renderFlags
	var frames int

	cmd := &cobra.Command{
		Use:   "gif <input> <output.gif>",
		Short: "Render a scrolling animated GIF of a lensed image",
		Long: `Render an animated GIF where the source image scrolls horizontally
behind the stationary lens, one full wrap per loop.

Examples:
  gravitymirage gif stars.png lensed.gif
  gravitymirage gif stars.png lensed.gif --frames 48 --mass 25`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGIF(cmd.Context(), &flags, frames, args[0], args[1])
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&frames, "frames", "f", gifDefaultFrames, "number of animation frames")
	return cmd
}

func (c *CLI) runGIF(ctx context.Context, flags *renderFlags, frames int, input, output string) error {
	if frames < gifMinFrames || frames > gifMaxFrames {
		return errors.New(errors.ErrCodeInvalidInput,
			"frames must be between %d and %d, got %d", gifMinFrames, gifMaxFrames, frames)
	}
	if err := requireExtension(output, ".gif"); err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	src, _, err := imaging.DecodeBytes(data)
	if err != nil {
		return err
	}

	b := src.Bounds()
	params, err := flags.params(b.Dx(), b.Dy())
	if err != nil {
		return err
	}

	local, err := newLocalCache(flags.noCache)
	if err != nil {
		return err
	}
	defer local.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.AnimationKey(cache.Hash(data), cache.AnimationKeyOpts{
		Params:  params.CacheKey(),
		Frames:  frames,
		DelayMS: gifFrameDelayMS,
	})

	if encoded, hit, err := local.Get(ctx, key); err == nil && hit {
		if err := os.WriteFile(output, encoded, 0644); err != nil {
			return err
		}
		printSuccess("Rendered %d frames at %dx%d", frames, params.Width, params.Height)
		printStats(0, params.Width*params.Height*frames, true)
		printFile(output)
		return nil
	}

	p := newProgress(c.Logger)
	renderer := c.newLocalRenderer()
	scaled := imaging.FitWidth(src, params.Width)

	rendered := make([]*image.RGBA, 0, frames)
	shadow := 0
	degraded := false
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		shift := i * params.Width / frames
		res, err := renderer.Render(ctx, imaging.Roll(scaled, shift), params)
		if err != nil {
			return err
		}
		rendered = append(rendered, res.Image)
		shadow += res.Stats.ShadowPixels
		degraded = degraded || res.Degraded
		c.Logger.Debug("frame rendered", "frame", i+1, "of", frames)
	}
	if degraded {
		printWarning("Some rays exhausted the integration budget and render as shadow")
	}

	var buf bytes.Buffer
	if err := imaging.EncodeAnimation(&buf, rendered, gifFrameDelayMS); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write output %s", output)
	}
	if err := local.Set(ctx, key, buf.Bytes(), localCacheTTL); err != nil {
		c.Logger.Warn("cache animation", "err", err)
	}

	p.done("Rendered animation")
	printSuccess("Rendered %d frames at %dx%d", frames, params.Width, params.Height)
	printStats(shadow, params.Width*params.Height*frames, false)
	printFile(output)
	return nil
}
