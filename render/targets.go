// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/hatchgl/hatch/gpu"
)

// Color attachments of the G-buffer.
const (
	AttachColor = iota
	AttachNormal
	AttachLineMask
)

// Targets are the off-screen render targets sized to the viewport.
type Targets struct {
	// Size is the size all targets were allocated at.
	Size image.Point

	// GBuffer receives the opaque and transparent passes: color,
	// world-space normal and line mask, with depth-stencil.
	GBuffer gpu.RenderTarget

	// Blur receives the blurred color.
	Blur gpu.RenderTarget

	// Edge receives the edge and line mask for compositing.
	Edge gpu.RenderTarget
}

// IsValid returns whether the targets are allocated.
func (tg *Targets) IsValid() bool {
	return tg.GBuffer.IsValid() && tg.Blur.IsValid() && tg.Edge.IsValid()
}

// Alloc releases any current targets and allocates new ones at size.
// On error no targets remain allocated.
func (tg *Targets) Alloc(dev gpu.Device, size image.Point) error {
	tg.Release(dev)
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("render.Targets.Alloc: invalid size %v", size)
	}
	descs := []gpu.TargetDesc{
		{Name: "gbuffer", Size: size, Color: []gpu.Formats{gpu.RGBA8, gpu.RGBA16F, gpu.R8}, DepthStencil: true},
		{Name: "blur", Size: size, Color: []gpu.Formats{gpu.RGBA8}},
		{Name: "edge", Size: size, Color: []gpu.Formats{gpu.R8}},
	}
	rts := []*gpu.RenderTarget{&tg.GBuffer, &tg.Blur, &tg.Edge}
	for i, desc := range descs {
		rt, err := dev.CreateRenderTarget(desc)
		if err != nil {
			tg.Release(dev)
			return fmt.Errorf("render.Targets.Alloc: %w", err)
		}
		*rts[i] = rt
	}
	tg.Size = size
	slog.Debug("render.Targets.Alloc: allocated viewport targets", "size", size)
	return nil
}

// Release deletes all allocated targets.
func (tg *Targets) Release(dev gpu.Device) {
	for _, rt := range []*gpu.RenderTarget{&tg.GBuffer, &tg.Blur, &tg.Edge} {
		if rt.IsValid() {
			dev.DeleteRenderTarget(*rt)
		}
		*rt = gpu.RenderTarget{}
	}
	tg.Size = image.Point{}
}
