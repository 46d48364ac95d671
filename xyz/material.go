// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/gpu"
)

// AlphaModes are the ways the alpha channel of the base color is
// interpreted.
type AlphaModes int32

const (
	// AlphaOpaque ignores alpha: the surface is fully opaque.
	AlphaOpaque AlphaModes = iota

	// AlphaMask discards fragments with alpha below AlphaCutoff.
	AlphaMask

	// AlphaBlend blends the surface over what is behind it.
	AlphaBlend
)

func (am AlphaModes) String() string {
	switch am {
	case AlphaOpaque:
		return "OPAQUE"
	case AlphaMask:
		return "MASK"
	case AlphaBlend:
		return "BLEND"
	}
	return fmt.Sprintf("AlphaModes(%d)", int32(am))
}

// ParseAlphaMode parses OPAQUE, MASK or BLEND. The empty string is OPAQUE.
func ParseAlphaMode(s string) (AlphaModes, error) {
	switch strings.ToUpper(s) {
	case "", "OPAQUE":
		return AlphaOpaque, nil
	case "MASK":
		return AlphaMask, nil
	case "BLEND":
		return AlphaBlend, nil
	}
	return AlphaOpaque, fmt.Errorf("xyz.ParseAlphaMode: unknown alpha mode %q", s)
}

// TextureRef is a reference from a material to a GPU texture.
type TextureRef struct {
	Texture gpu.Texture

	// HasAlpha is whether the texture image carries an alpha channel.
	HasAlpha bool

	// TexCoord is the mesh texture coordinate set the texture is sampled with.
	TexCoord int
}

// Material describes the surface of a mesh: a base color, optionally
// modulated by a texture, and the alpha handling that decides whether
// it is drawn in the opaque or the transparent pass.
type Material struct {
	Name string

	// BaseColorFactor multiplies the vertex and texture colors.
	BaseColorFactor mgl32.Vec4

	// BaseColorTexture is the color texture, nil if none.
	BaseColorTexture *TextureRef

	MetallicFactor  float32
	RoughnessFactor float32

	AlphaMode   AlphaModes
	AlphaCutoff float32

	// DoubleSided disables back-face culling when the mesh is drawn.
	DoubleSided bool

	// Transparent is derived by [Material.UpdateTransparent].
	Transparent bool
}

// Defaults sets default surface parameters.
func (mt *Material) Defaults() {
	mt.BaseColorFactor = mgl32.Vec4{1, 1, 1, 1}
	mt.MetallicFactor = 1
	mt.RoughnessFactor = 1
	mt.AlphaMode = AlphaOpaque
	mt.AlphaCutoff = 0.5
	mt.Transparent = false
}

// NewMaterial returns a material with default parameters.
func NewMaterial(name string) Material {
	mt := Material{Name: name}
	mt.Defaults()
	return mt
}

// SetTexture sets the color texture and updates transparency.
func (mt *Material) SetTexture(tx gpu.Texture, hasAlpha bool) {
	mt.BaseColorTexture = &TextureRef{Texture: tx, HasAlpha: hasAlpha}
	mt.UpdateTransparent()
}

// NoTexture resets the color texture and updates transparency.
func (mt *Material) NoTexture() {
	mt.BaseColorTexture = nil
	mt.UpdateTransparent()
}

// UpdateTransparent derives Transparent: a material is transparent iff
// its alpha mode is not opaque, its base color alpha is below 1, or its
// color texture carries alpha. It must be called after any change to
// those fields.
func (mt *Material) UpdateTransparent() {
	mt.Transparent = mt.AlphaMode != AlphaOpaque ||
		mt.BaseColorFactor[3] < 1 ||
		(mt.BaseColorTexture != nil && mt.BaseColorTexture.HasAlpha)
}

// IsTransparent returns the derived transparency.
func (mt *Material) IsTransparent() bool {
	return mt.Transparent
}

// BaseColorUnit is the texture unit the base color texture is bound to.
const BaseColorUnit = 0

// Render sets the material uniforms and face culling on the current
// program and binds the color texture.
func (mt *Material) Render(dev gpu.Device) {
	dev.SetCullFace(!mt.DoubleSided)
	dev.SetVec4("uBaseColor", mt.BaseColorFactor)
	dev.SetFloat("uMetallic", mt.MetallicFactor)
	dev.SetFloat("uRoughness", mt.RoughnessFactor)
	if mt.AlphaMode == AlphaMask {
		dev.SetInt("uAlphaMask", 1)
	} else {
		dev.SetInt("uAlphaMask", 0)
	}
	dev.SetFloat("uAlphaCutoff", mt.AlphaCutoff)
	if mt.BaseColorTexture != nil && mt.BaseColorTexture.Texture != 0 {
		dev.SetInt("uUseTexture", 1)
		dev.SetInt("uTexCoordSet", int32(mt.BaseColorTexture.TexCoord))
		dev.SetInt("uTexture", BaseColorUnit)
		dev.BindTexture(BaseColorUnit, mt.BaseColorTexture.Texture)
	} else {
		dev.SetInt("uUseTexture", 0)
	}
}
