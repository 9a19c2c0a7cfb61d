// Command fonsdemo lays out text over several frames on a headless GPU
// device and saves the resulting glyph atlas as a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fons"
	"github.com/gogpu/fons/backend/native"
	"github.com/gogpu/fons/stash"
)

func main() {
	var (
		width    = flag.Int("width", fons.DefaultAtlasSize, "initial atlas width")
		height   = flag.Int("height", fons.DefaultAtlasSize, "initial atlas height")
		maxSize  = flag.Int("max", fons.DefaultMaxAtlasSize, "maximum atlas dimension")
		frames   = flag.Int("frames", 8, "number of frames to lay out")
		text     = flag.String("text", "The quick brown fox\njumps over the lazy dog", "text to lay out")
		fontPath = flag.String("font", "", "TrueType font file (default: Go Regular)")
		output   = flag.String("output", "atlas.png", "output file")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		fons.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("Failed to create instance: %v", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		log.Fatal("No GPU adapter available")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer openDev.Device.Destroy()

	dev := native.NewHALDevice(openDev.Device, openDev.Queue)
	defer dev.Close()

	cfg := fons.DefaultConfig()
	cfg.Width, cfg.Height = *width, *height
	cfg.MaxWidth, cfg.MaxHeight = *maxSize, *maxSize

	ft, err := fons.New(dev, cfg)
	if err != nil {
		log.Fatalf("Failed to create font texture: %v", err)
	}
	defer ft.Close()

	font, err := addFont(ft.Stash(), *fontPath)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	st := ft.Stash()
	st.SetFont(font)
	st.SetAlign(stash.AlignLeft | stash.AlignTop)

	for frame := range *frames {
		size := float32(14 + 6*frame)
		st.SetSize(size)

		y := float32(0)
		for _, line := range strings.Split(*text, "\n") {
			it := st.TextIter(0, y, line)
			for {
				if _, ok := it.Next(); !ok {
					break
				}
			}
			y += size * 1.2
		}

		if err := ft.Sync(); err != nil {
			log.Fatalf("Frame %d: sync failed: %v", frame, err)
		}
		b := ft.TextBoundsMultiline(*text, 0, 0, size, size*0.2)
		log.Printf("Frame %d: size=%.0f bounds=%.1fx%.1f texture=%d", frame, size, b[2], b[3], ft.TextureID())
	}

	if err := savePNG(ft, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	s := dev.Stats()
	log.Printf("Atlas saved to %s (%s, uploads=%d, textures created=%d destroyed=%d)\n",
		*output, ft.Bridge(), ft.Bridge().Uploads(), s.Creates, s.Destroys)
}

func addFont(st *stash.Stash, path string) (int, error) {
	if path == "" {
		return st.AddFontFromMemory("goregular", goregular.TTF)
	}
	return st.AddFont("custom", path)
}

func savePNG(ft *fons.FontTexture, path string) error {
	data, w, h := ft.DebugSnapshot()
	if w == 0 || h == 0 {
		return fmt.Errorf("atlas is empty")
	}

	img := &image.NRGBA{
		Pix:    data,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
