// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render draws [xyz.Scene]s in a non-photorealistic style
// through a multi-pass pipeline: the scene is rasterized into a
// G-buffer of color, normal and line mask, which is then blurred,
// edge detected and composited with crosshatching and outlines.
package render

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/gpu"
	"github.com/hatchgl/hatch/xyz"
)

var (
	ErrNoScene   = errors.New("render: no current scene")
	ErrNoCamera  = errors.New("render: no current camera")
	ErrNotLoaded = errors.New("render: resources not loaded")
)

// MaxPointLights is the number of point lights passed to the shader.
// Further lights are ignored.
const MaxPointLights = 4

// Clear colors of the dark and light themes.
var (
	DarkClearColor  = mgl32.Vec4{0.05, 0.23, 0.17, 1}
	LightClearColor = mgl32.Vec4{0.45, 0.91, 0.67, 1}
)

// Renderer renders the current scene through the current camera to
// the default framebuffer of its device. All methods must be called
// from the goroutine owning the device.
type Renderer struct {
	// Options are read at the start of every frame.
	Options Options

	dev    gpu.Device
	scene  *xyz.Scene
	camera *xyz.Camera
	dark   bool

	loaded   bool
	programs Programs
	quad     *xyz.Mesh
	hatch    [HatchLevels]gpu.Texture
	targets  Targets

	// transparent is the transparency queue of the current frame.
	transparent []xyz.Submission
}

// New returns a renderer drawing to dev. The dark palette is used if
// the options theme is dark; for auto, call [Renderer.SetDark] with
// the host preference.
func New(dev gpu.Device, opts Options) *Renderer {
	return &Renderer{Options: opts, dev: dev, dark: opts.Theme.IsDark(false)}
}

// Device returns the device the renderer draws to.
func (r *Renderer) Device() gpu.Device {
	return r.dev
}

// SetCurrentScene sets the scene to render.
func (r *Renderer) SetCurrentScene(sc *xyz.Scene) {
	r.scene = sc
}

// Scene returns the current scene.
func (r *Renderer) Scene() *xyz.Scene {
	return r.scene
}

// SetCurrentCamera sets the camera to render through. If nil,
// the camera of the current scene is used.
func (r *Renderer) SetCurrentCamera(cam *xyz.Camera) {
	r.camera = cam
}

// Camera returns the active camera: the current camera if set,
// else that of the current scene, else nil.
func (r *Renderer) Camera() *xyz.Camera {
	if r.camera != nil {
		return r.camera
	}
	if r.scene != nil {
		return r.scene.Camera
	}
	return nil
}

// SetDark selects the dark or light clear color palette.
func (r *Renderer) SetDark(dark bool) {
	r.dark = dark
}

// Dark returns whether the dark palette is used.
func (r *Renderer) Dark() bool {
	return r.dark
}

// ClearColor returns the clear color of the current palette.
func (r *Renderer) ClearColor() mgl32.Vec4 {
	if r.dark {
		return DarkClearColor
	}
	return LightClearColor
}

// Size returns the size of the viewport targets, zero if not loaded.
func (r *Renderer) Size() image.Point {
	return r.targets.Size
}

// LoadResources builds the programs, the full-screen quad and the
// hatch textures on first call, and (re)allocates the viewport targets
// whenever size differs from their current size. It is idempotent
// and must be called before the first frame and on every resize.
func (r *Renderer) LoadResources(size image.Point) error {
	if !r.loaded {
		if err := r.loadStatic(); err != nil {
			return err
		}
	}
	if r.targets.IsValid() && r.targets.Size == size {
		return nil
	}
	return r.targets.Alloc(r.dev, size)
}

// loadStatic creates the resources that do not depend on the viewport.
func (r *Renderer) loadStatic() error {
	if err := r.programs.Build(r.dev); err != nil {
		return err
	}
	r.quad = xyz.NewFullscreenQuad()
	if err := r.quad.Upload(r.dev); err != nil {
		r.programs.Release(r.dev)
		return fmt.Errorf("render.Renderer.LoadResources: %w", err)
	}
	hatch, err := createHatchTextures(r.dev)
	if err != nil {
		r.quad.Release(r.dev)
		r.programs.Release(r.dev)
		return err
	}
	r.hatch = hatch
	r.loaded = true
	slog.Debug("render.Renderer.LoadResources: loaded programs and textures")
	return nil
}

// Resize reallocates the viewport targets for a new surface size.
func (r *Renderer) Resize(size image.Point) error {
	return r.LoadResources(size)
}

// Release deletes all GPU resources of the renderer. The scene is
// not released. LoadResources must be called again before rendering.
func (r *Renderer) Release() {
	r.targets.Release(r.dev)
	if !r.loaded {
		return
	}
	r.programs.Release(r.dev)
	r.quad.Release(r.dev)
	for i, tx := range r.hatch {
		r.dev.DeleteTexture(tx)
		r.hatch[i] = 0
	}
	r.loaded = false
}

// Render renders one frame of the current scene: the opaque pass and
// the back-to-front transparent pass into the G-buffer, then the
// optional blur and edge passes, and the composite to the default
// framebuffer.
func (r *Renderer) Render() error {
	if !r.loaded || !r.targets.IsValid() {
		return ErrNotLoaded
	}
	sc := r.scene
	if sc == nil {
		return ErrNoScene
	}
	cam := r.Camera()
	if cam == nil {
		return ErrNoCamera
	}
	op := r.Options
	dev := r.dev
	size := r.targets.Size
	gb := &r.targets.GBuffer

	dev.BindRenderTarget(gb)
	dev.Viewport(size)
	dev.SetDepthTest(true)
	dev.SetBlend(false)
	dev.Clear(r.ClearColor())
	dev.ClearColorAttachment(AttachNormal, mgl32.Vec4{})
	dev.ClearColorAttachment(AttachLineMask, mgl32.Vec4{})

	dev.UseProgram(r.programs.Main)
	r.setFrameUniforms(sc, cam, &op, size)
	r.transparent = r.transparent[:0]
	sc.Render(func(sb xyz.Submission) {
		if sb.Class.IsTransparent() {
			r.transparent = append(r.transparent, sb)
			return
		}
		sb.Mesh.Render(dev, sb.Model)
	})

	SortBackToFront(r.transparent, cam.Pos)
	if len(r.transparent) > 0 {
		dev.SetBlend(true)
		for _, sb := range r.transparent {
			sb.Mesh.Render(dev, sb.Model)
		}
		dev.SetBlend(false)
	}

	dev.SetDepthTest(false)
	dev.SetCullFace(false)
	texel := mgl32.Vec4{1 / float32(size.X), 1 / float32(size.Y), 0, 0}
	color := gb.Color[AttachColor]
	if op.UseBlur {
		dev.BindRenderTarget(&r.targets.Blur)
		dev.Viewport(size)
		dev.UseProgram(r.programs.Blur)
		dev.SetVec4("uTexel", texel)
		r.bindInput(0, "uColor", color)
		r.drawQuad()
		color = r.targets.Blur.Color[0]
	}

	lines := gb.Color[AttachLineMask]
	if op.UseSobel {
		dev.BindRenderTarget(&r.targets.Edge)
		dev.Viewport(size)
		dev.UseProgram(r.programs.Sobel)
		dev.SetVec4("uTexel", texel)
		dev.SetFloat("uThreshold", op.SobelThreshold)
		r.bindInput(0, "uColor", color)
		r.bindInput(1, "uNormal", gb.Color[AttachNormal])
		r.bindInput(2, "uLines", lines)
		r.drawQuad()
		lines = r.targets.Edge.Color[0]
	}

	dev.BindRenderTarget(nil)
	dev.Viewport(size)
	dev.Clear(r.ClearColor())
	dev.UseProgram(r.programs.Post)
	dev.SetVec3("uLinesColor", op.LinesColor)
	dev.SetVec3("uClearColor", r.ClearColor().Vec3())
	r.bindInput(0, "uColor", color)
	r.bindInput(1, "uNormal", gb.Color[AttachNormal])
	r.bindInput(2, "uLines", lines)
	r.drawQuad()
	dev.SetDepthTest(true)
	return nil
}

// setFrameUniforms sets the camera, light and stylization uniforms
// of the main program.
func (r *Renderer) setFrameUniforms(sc *xyz.Scene, cam *xyz.Camera, op *Options, size image.Point) {
	dev := r.dev
	dev.SetMat4("uView", cam.ViewMatrix())
	dev.SetMat4("uProjection", cam.ProjectionMatrix(float32(size.Y), float32(size.X)))
	dev.SetVec3("uEyePos", cam.Pos)

	if dl := sc.DirLight; dl != nil {
		dev.SetVec3("uLightDir", dl.Dir())
		dev.SetVec3("uLightColor", dl.Radiance())
	} else {
		dev.SetVec3("uLightDir", mgl32.Vec3{0, -1, 0})
		dev.SetVec3("uLightColor", mgl32.Vec3{})
	}
	np := 0
	for _, pl := range sc.PointLights {
		if np == MaxPointLights {
			break
		}
		if !pl.On {
			continue
		}
		dev.SetVec3(fmt.Sprintf("uPointLightPos[%d]", np), pl.Pos)
		dev.SetVec3(fmt.Sprintf("uPointLightColor[%d]", np), pl.Radiance())
		dev.SetVec4(fmt.Sprintf("uPointLightDecay[%d]", np), mgl32.Vec4{pl.LinDecay, pl.QuadDecay})
		np++
	}
	dev.SetInt("uNumPointLights", int32(np))

	dev.SetFloat("uAmbient", op.AmbientIntensity)
	dev.SetInt("uUseHatching", boolInt(op.UseHatching))
	dev.SetFloat("uHatchSize", op.HatchingSize)
	dev.SetInt("uUseQuantization", boolInt(op.UseColorQuantization))
	dev.SetInt("uColorQuantity", int32(op.ColorQuantity))
	for i, tx := range r.hatch {
		r.bindInput(hatchUnit+i, fmt.Sprintf("uHatch%d", i), tx)
	}
}

// bindInput binds tx to a texture unit and points the named sampler at it.
func (r *Renderer) bindInput(unit int, sampler string, tx gpu.Texture) {
	r.dev.SetInt(sampler, int32(unit))
	r.dev.BindTexture(unit, tx)
}

func (r *Renderer) drawQuad() {
	r.dev.DrawIndexed(r.quad.Handle(), r.quad.Mode)
}

// SortBackToFront sorts submissions by decreasing distance of their
// world position from eye, so the farthest is first. The order of
// submissions at equal distance is kept.
func SortBackToFront(sbs []xyz.Submission, eye mgl32.Vec3) {
	slices.SortStableFunc(sbs, func(a, b xyz.Submission) int {
		return cmp.Compare(b.Position().Sub(eye).Len(), a.Position().Sub(eye).Len())
	})
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
