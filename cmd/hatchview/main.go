// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hatchview opens a window showing a glTF model rendered with
// crosshatching and outlines.
//
// Usage:
//
//	hatchview [-model models/duck] [-options hatch.toml] [-theme dark]
//
// Controls: WASD and QE move the camera, dragging with the left mouse
// button looks around, scrolling zooms, and P saves a screenshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/hatchgl/hatch/base/errors"
	"github.com/hatchgl/hatch/base/fsx"
	"github.com/hatchgl/hatch/base/iox/imagex"
	"github.com/hatchgl/hatch/gltf"
	"github.com/hatchgl/hatch/gpu/glgpu"
	"github.com/hatchgl/hatch/render"
	"github.com/hatchgl/hatch/xyz"
	"github.com/muesli/termenv"
)

func init() {
	// glfw and the GL context must stay on the main thread
	runtime.LockOSThread()
}

// config holds the command line flags.
type config struct {
	Model   string
	Options string
	Width   int
	Height  int
	Theme   string
	Verbose bool
}

func main() {
	cfg := config{}
	flag.StringVar(&cfg.Model, "model", "", "glTF model: a .gltf file, a directory dir holding dir/dir.gltf, or an http(s) URL; the default triangle scene if empty")
	flag.StringVar(&cfg.Options, "options", "", "stylization options file (.toml or .yaml), reloaded on change")
	flag.IntVar(&cfg.Width, "width", 1280, "window width")
	flag.IntVar(&cfg.Height, "height", 720, "window height")
	flag.StringVar(&cfg.Theme, "theme", "", "clear color theme: auto, dark or light (overrides the options file)")
	flag.BoolVar(&cfg.Verbose, "v", false, "verbose logging")
	flag.Parse()

	if cfg.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if err := run(cfg); err != nil {
		slog.Error("hatchview", "error", err)
		os.Exit(1)
	}
}

// loadOptions returns the options from the file, if any,
// with the theme flag applied.
func loadOptions(cfg *config) (render.Options, error) {
	opts := render.DefaultOptions()
	if cfg.Options != "" {
		var err error
		opts, err = render.LoadOptions(cfg.Options)
		if err != nil {
			return opts, err
		}
	}
	if cfg.Theme != "" {
		opts.Theme = render.Themes(cfg.Theme)
		if err := opts.Validate(); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// fetcherFor returns the fetcher and asset id for the model flag.
func fetcherFor(model string) (gltf.Fetcher, string, error) {
	if u, err := url.Parse(model); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		id := u.Path
		u.Path = "/"
		return gltf.HTTPFetcher{BaseURL: u.String()}, id, nil
	}
	fsys, name, err := fsx.DirFS(model)
	if err != nil {
		return nil, "", err
	}
	ok, err := fsx.FileExistsFS(fsys, gltf.DocumentPath(name))
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("hatchview: no glTF document for model %q", model)
	}
	return gltf.FSFetcher{FS: fsys}, name, nil
}

// loadScene imports the model, falling back to the default
// triangle scene if there is no model or the import fails.
func loadScene(ctx context.Context, cfg *config, opts *render.Options, win *glgpu.Window) *xyz.Scene {
	if cfg.Model != "" {
		f, id, err := fetcherFor(cfg.Model)
		if err == nil {
			im := gltf.NewImporter(f, win.Device)
			im.MaxTextureSize = opts.MaxTextureSize
			start := time.Now()
			var sc *xyz.Scene
			sc, err = im.Import(ctx, id)
			if err == nil {
				slog.Info("hatchview: imported model", "model", cfg.Model, "time", time.Since(start))
				return sc
			}
		}
		slog.Error("hatchview: import failed, showing the default scene", "model", cfg.Model, "error", err)
	}
	sc := xyz.DefaultTriangleScene()
	errors.Log(sc.Upload(win.Device))
	return sc
}

func run(cfg config) error {
	opts, err := loadOptions(&cfg)
	if err != nil {
		return err
	}
	if cfg.Options != "" {
		if cfg.Options, err = fsx.ExpandPath(cfg.Options); err != nil {
			return err
		}
	}

	var pending image.Point
	win, err := glgpu.GLFWCreateWindow(image.Pt(cfg.Width, cfg.Height), "hatchview", func(size image.Point) {
		pending = size
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sc := loadScene(ctx, &cfg, &opts, win)
	defer sc.Release(win.Device)

	r := render.New(win.Device, opts)
	r.SetDark(opts.Theme.IsDark(hostDark(opts.Theme)))
	r.SetCurrentScene(sc)
	if err := r.LoadResources(win.FramebufferSize()); err != nil {
		return err
	}
	defer r.Release()

	reload := make(chan struct{}, 1)
	if cfg.Options != "" {
		stop, err := watchFile(cfg.Options, reload)
		if err != nil {
			slog.Warn("hatchview: not watching options file", "file", cfg.Options, "error", err)
		} else {
			defer stop()
		}
	}

	ctl := newControls(win, r)
	last := time.Now()
	for win.PollEvents() && ctx.Err() == nil {
		select {
		case <-reload:
			applyOptions(r, &cfg)
		default:
		}
		if pending != (image.Point{}) {
			if err := r.Resize(pending); err != nil {
				return err
			}
			pending = image.Point{}
		}
		now := time.Now()
		ctl.update(float32(now.Sub(last).Seconds()))
		last = now
		if err := r.Render(); err != nil {
			return err
		}
		if ctl.screenshot {
			ctl.screenshot = false
			saveScreenshot(r)
		}
		win.SwapBuffers()
	}
	return nil
}

// applyOptions reloads the options file into the renderer,
// keeping the current options if it cannot be loaded.
func applyOptions(r *render.Renderer, cfg *config) {
	opts, err := loadOptions(cfg)
	if err != nil {
		slog.Error("hatchview: reloading options", "file", cfg.Options, "error", err)
		return
	}
	r.Options = opts
	r.SetDark(opts.Theme.IsDark(hostDark(opts.Theme)))
	slog.Info("hatchview: reloaded options", "file", cfg.Options)
}

// hostDark returns whether the terminal has a dark background,
// queried only for the auto theme.
func hostDark(th render.Themes) bool {
	if th != "" && th != render.ThemeAuto {
		return false
	}
	return termenv.HasDarkBackground()
}

func saveScreenshot(r *render.Renderer) {
	img := errors.Log1(r.Device().ReadPixels(r.Size()))
	if img == nil {
		return
	}
	fname := fmt.Sprintf("hatchview-%s.png", time.Now().Format("20060102-150405"))
	if errors.Log(imagex.Save(img, fname)) == nil {
		slog.Info("hatchview: saved screenshot", "file", fname)
	}
}
