// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command crtfx renders a block of text through the CRT shader and writes
// the frames as PNG files.
//
//	crtfx -text "READY." -skin RetroPlasma -frames 30 -out frame%03d.png
//
// With -watch the shader file named by -shader (or the config) is reloaded
// whenever it changes, and frames are written until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/crtfx"
	"github.com/gogpu/crtfx/backend/native"
	"github.com/gogpu/crtfx/backend/software"
	"github.com/gogpu/crtfx/frame"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/internal/hotreload"
	"github.com/gogpu/crtfx/render"
)

const defaultText = "**** CRTFX ****\n\n64K RAM SYSTEM  38911 BASIC BYTES FREE\n\nREADY.\n"

type frameTarget interface {
	render.Target
	Frame() *image.RGBA
}

// host drives a control from a ticker instead of a window.
type host struct {
	*frame.TickerClock
	redraw chan struct{}
}

func (h *host) Invalidate() {
	select {
	case h.redraw <- struct{}{}:
	default:
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "config file (.toml, .yaml)")
		shaderPath = flag.String("shader", "", "WGSL shader file")
		skin       = flag.String("skin", "", "appearance preset ("+strings.Join(crtfx.SkinNames(), ", ")+")")
		text       = flag.String("text", defaultText, "text to display")
		width      = flag.Int("width", 640, "viewport width")
		height     = flag.Int("height", 480, "viewport height")
		stretch    = flag.String("stretch", "", "uniform, fill, uniform-to-fill or none")
		frames     = flag.Int("frames", 1, "frames to write, 0 for unlimited")
		fps        = flag.Float64("fps", 30, "display frame rate")
		output     = flag.String("out", "crtfx.png", "output file; a %d verb numbers frames")
		watch      = flag.Bool("watch", false, "reload the shader file when it changes")
		useGPU     = flag.Bool("gpu", false, "render on the GPU when available")
	)
	flag.Parse()

	cfg := &crtfx.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = crtfx.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *shaderPath != "" {
		cfg.ShaderPath = *shaderPath
	}
	if *skin != "" {
		cfg.Skin = *skin
		cfg.Appearance = nil
	}
	if *stretch != "" {
		s, err := geom.ParseStretch(*stretch)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Stretch = s
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		*width, *height = cfg.Width, cfg.Height
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}
	if logger != nil {
		crtfx.SetLogger(logger)
	}

	if err := run(cfg, *text, *width, *height, *frames, *fps, *output, *watch, *useGPU); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *crtfx.Config, text string, width, height, frames int, fps float64, output string, watch, useGPU bool) error {
	appearance, err := cfg.ResolveAppearance()
	if err != nil {
		return err
	}
	fg, err := parseHexColor(appearance.Foreground)
	if err != nil {
		return err
	}
	bg, err := parseHexColor(appearance.Background)
	if err != nil {
		return err
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	control := crtfx.New(opts...)
	control.ApplyAppearance(appearance)
	if err := control.SetSource(newTextElement(text, fg, bg), nil); err != nil {
		return err
	}

	target := newTarget(useGPU)
	if nt, ok := target.(*native.Target); ok {
		defer nt.Close()
	}

	h := &host{TickerClock: frame.NewTickerClock(fps), redraw: make(chan struct{}, 1)}
	defer h.Close()
	if err := control.Attach(h); err != nil {
		return err
	}
	defer control.Detach()
	control.Layout(geom.Sz(float64(width), float64(height)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wg sync.WaitGroup
	if watch {
		if cfg.ShaderPath == "" {
			return fmt.Errorf("-watch needs a shader file")
		}
		w, err := hotreload.New(cfg.ShaderPath, control.Reload)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				log.Printf("watch: %v", err)
			}
		}()
		defer wg.Wait()
		defer stop()
	}

	written := 0
	lastDiag := ""
	for frames == 0 || written < frames {
		select {
		case <-ctx.Done():
			return nil
		case <-h.redraw:
		case <-time.After(5 * time.Second):
			if d := control.LastDiagnostic(); d != nil {
				return d
			}
			return fmt.Errorf("no frame within 5s")
		}

		if d := control.LastDiagnostic(); d != nil && d.Error() != lastDiag {
			lastDiag = d.Error()
			log.Printf("shader error, keeping previous program: %v", d)
		}

		res, err := control.Render(target)
		if err != nil {
			log.Printf("render: %v", err)
			continue
		}
		if res != render.Drawn {
			continue
		}
		name := output
		if strings.Contains(output, "%") {
			name = fmt.Sprintf(output, written)
		}
		if err := writePNG(name, target.Frame()); err != nil {
			return err
		}
		written++
	}
	log.Printf("wrote %d frame(s)", written)
	return nil
}

func newTarget(useGPU bool) frameTarget {
	if useGPU {
		t, err := native.NewTarget()
		if err == nil {
			return t
		}
		log.Printf("GPU unavailable, rendering on the CPU: %v", err)
	}
	return software.NewTarget(0, 0)
}

func writePNG(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no frame to write")
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
