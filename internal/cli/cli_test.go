package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
	"github.com/gravitymirage/gravitymirage/pkg/imaging"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

// writeTestPNG writes a small gradient PNG and returns its path.
func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(20 * x), G: uint8(20 * y), B: 128, A: 255})
		}
	}
	data, err := imaging.EncodePNGBytes(img)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "input.png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandStructure(t *testing.T) {
	root := testCLI().RootCommand()

	want := map[string]bool{"serve": false, "render": false, "gif": false, "cache": false, "completion": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRenderFlagsParams(t *testing.T) {
	f := renderFlags{mass: 10, scale: 20000, method: "geodesic"}

	p, err := f.params(200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 200 || p.Height != 100 {
		t.Errorf("zero width should keep source dimensions, got %dx%d", p.Width, p.Height)
	}
	if p.Method != lens.MethodGeodesic {
		t.Errorf("Method = %s, want geodesic", p.Method)
	}

	f.width = 50
	p, err = f.params(200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 50 || p.Height != 25 {
		t.Errorf("params = %dx%d, want 50x25 (aspect preserved)", p.Width, p.Height)
	}

	f.method = "rk45"
	if _, err := f.params(200, 100); errors.GetCode(err) != errors.ErrCodeInvalidMethod {
		t.Errorf("bad method: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMethod)
	}

	f.method = "weak"
	f.mass = -1
	if _, err := f.params(200, 100); errors.GetCode(err) != errors.ErrCodeInvalidMass {
		t.Errorf("bad mass: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMass)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	input := writeTestPNG(t, dir, 16, 16)
	output := filepath.Join(dir, "out.png")

	root := testCLI().RootCommand()
	root.SetArgs([]string{"render", input, output,
		"--mass", "1", "--scale", "1e9", "--method", "weak-field"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	img, format, err := imaging.DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("bounds = %v, want 16x16", b)
	}

	// A second identical run is served from the file cache and still
	// produces the output file.
	second := filepath.Join(dir, "out2.png")
	root = testCLI().RootCommand()
	root.SetArgs([]string{"render", input, second,
		"--mass", "1", "--scale", "1e9", "--method", "weak-field"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	cached, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cached, data) {
		t.Error("cached run should reproduce the first output byte for byte")
	}
}

func TestGIFCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	input := writeTestPNG(t, dir, 12, 8)
	output := filepath.Join(dir, "out.gif")

	root := testCLI().RootCommand()
	root.SetArgs([]string{"gif", input, output, "--frames", "3",
		"--mass", "1", "--scale", "1e9", "--method", "weak-field"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(decoded.Image))
	}
}

func TestGIFCommandFrameBounds(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPNG(t, dir, 8, 8)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"gif", input, filepath.Join(dir, "out.gif"), "--frames", "1"})
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("frames=1: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestRequireExtension(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		ok   bool
	}{
		{"out.png", ".png", true},
		{"OUT.PNG", ".png", true},
		{"out.gif", ".gif", true},
		{"out.jpg", ".png", false},
		{"out", ".png", false},
		{"out.png", ".gif", false},
	}
	for _, tt := range tests {
		err := requireExtension(tt.path, tt.ext)
		if tt.ok && err != nil {
			t.Errorf("requireExtension(%q, %q) = %v, want nil", tt.path, tt.ext, err)
		}
		if !tt.ok && errors.GetCode(err) != errors.ErrCodeUnsupported {
			t.Errorf("requireExtension(%q, %q) code = %v, want %v", tt.path, tt.ext, errors.GetCode(err), errors.ErrCodeUnsupported)
		}
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg-test/gravitymirage" {
		t.Errorf("cacheDir = %q, want XDG path", dir)
	}
}
