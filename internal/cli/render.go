package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

// localCacheTTL expires file-cached renders between CLI runs.
const localCacheTTL = 24 * time.Hour

// renderFlags holds the lensing flags shared by the render and gif commands.
type renderFlags struct {
	mass    float64
	scale   float64
	method  string
	width   int
	offsetX float64
	offsetY float64
	noCache bool
}

// register wires the shared flags onto cmd.
func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.mass, "mass", "m", 10, "black hole mass in solar masses")
	cmd.Flags().Float64VarP(&f.scale, "scale", "s", 20000, "meters of source plane per output pixel")
	cmd.Flags().StringVar(&f.method, "method", string(lens.MethodGeodesic), "deflection method: geodesic or weak-field")
	cmd.Flags().IntVarP(&f.width, "width", "w", 0, "output width in pixels (0 keeps the source width)")
	cmd.Flags().Float64Var(&f.offsetX, "offset-x", 0, "lens center offset from image center, in pixels")
	cmd.Flags().Float64Var(&f.offsetY, "offset-y", 0, "lens center offset from image center, in pixels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the local render cache")
}

// params builds validated lens parameters sized against the source image.
func (f *renderFlags) params(srcW, srcH int) (lens.Params, error) {
	method, err := lens.ParseMethod(f.method)
	if err != nil {
		return lens.Params{}, err
	}

	width := f.width
	if width <= 0 {
		width = srcW
	}
	height := (srcH*width + srcW/2) / srcW
	if height < 1 {
		height = 1
	}

	p := lens.Params{
		Mass:    f.mass,
		Scale:   f.scale,
		Method:  method,
		Width:   width,
		Height:  height,
		OffsetX: f.offsetX,
		OffsetY: f.offsetY,
	}
	return p, p.Validate()
}

// renderCommand creates the render command: lens one image into a PNG.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <input> <output.png>",
		Short: "Render a lensed PNG of a single image",
		Long: `Render a single image as seen through a Schwarzschild black hole.

The input may be PNG, JPEG, GIF, BMP, TIFF or WebP; the output is always
PNG. Identical invocations are served from the local render cache.

Examples:
  gravitymirage render galaxy.jpg lensed.png
  gravitymirage render galaxy.jpg lensed.png --mass 40 --method weak-field
  gravitymirage render galaxy.jpg lensed.png -w 1024 --offset-x 80`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), &flags, args[0], args[1])
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, flags *renderFlags, input, output string) error {
	if err := requireExtension(output, ".png"); err != nil {
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
	key := keyer.RenderKey(cache.Hash(data), cache.RenderKeyOpts{Params: params.CacheKey()})

	if encoded, hit, err := local.Get(ctx, key); err == nil && hit {
		if err := os.WriteFile(output, encoded, 0644); err != nil {
			return err
		}
		printSuccess("Rendered %dx%d", params.Width, params.Height)
		printStats(0, params.Width*params.Height, true)
		printFile(output)
		return nil
	}

	p := newProgress(c.Logger)
	scaled := imaging.FitWidth(src, params.Width)
	res, err := c.newLocalRenderer().Render(ctx, scaled, params)
	if err != nil {
		return err
	}
	if res.Degraded {
		printWarning("Some rays exhausted the integration budget and render as shadow")
	}

	encoded, err := imaging.EncodePNGBytes(res.Image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, encoded, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write output %s", output)
	}
	if err := local.Set(ctx, key, encoded, localCacheTTL); err != nil {
		c.Logger.Warn("cache render", "err", err)
	}

	p.done("Rendered " + params.CacheKey())
	printSuccess("Rendered %dx%d", params.Width, params.Height)
	printStats(res.Stats.ShadowPixels, params.Width*params.Height, false)
	printFile(output)
	return nil
}

// newLocalRenderer builds a renderer with a minimal profile cache; a CLI
// invocation only ever needs one profile.
func (c *CLI) newLocalRenderer() *lens.Renderer {
	return lens.NewRenderer(lens.NewProfileCache(1, lens.DefaultProfileConfig()), c.Logger)
}

// requireExtension rejects output paths whose extension does not match the
// format the command writes.
func requireExtension(path, ext string) error {
	if strings.EqualFold(filepath.Ext(path), ext) {
		return nil
	}
	return errors.New(errors.ErrCodeUnsupported, "output must have a %s extension, got %q", ext, path)
}
