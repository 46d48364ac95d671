// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// LightBase has the properties common to all lights.
type LightBase struct {

	// Name is the name of the light.
	Name string

	// On is whether the light is turned on.
	On bool

	// Lumens is the brightness/intensity/strength of the light in normalized 0-1 units.
	// It is just multiplied by the color, and is convenient for easily modulating overall brightness.
	Lumens float32

	// Color is the color of the light at full intensity.
	Color color.RGBA
}

// Radiance returns the light color scaled by Lumens, in linear 0-1 units,
// or zero if the light is off.
func (lb *LightBase) Radiance() mgl32.Vec3 {
	if !lb.On {
		return mgl32.Vec3{}
	}
	return ColorVec3(lb.Color).Mul(lb.Lumens)
}

// DirLight is directional light, which is assumed to project light toward
// the origin based on its position, with no attenuation, like the Sun.
// For rendering, the position is negated and normalized to get the direction
// vector (i.e., absolute distance doesn't matter)
type DirLight struct {
	LightBase

	// position of direct light -- assumed to point at the origin so this determines direction
	Pos mgl32.Vec3
}

// NewDirLight returns a directional light with given name, standard color,
// and lumens (0-1 normalized). By default it is located overhead and toward
// the default camera (0, 1, 1): change Pos otherwise.
func NewDirLight(name string, lumens float32, clr LightColors) *DirLight {
	lt := &DirLight{}
	lt.Name = name
	lt.On = true
	lt.Color = LightColorMap[clr]
	lt.Lumens = lumens
	lt.Pos = mgl32.Vec3{0, 1, 1}
	return lt
}

// Dir returns the normalized direction the light travels in.
func (dl *DirLight) Dir() mgl32.Vec3 {
	if dl.Pos.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return dl.Pos.Mul(-1).Normalize()
}

// PointLight is an omnidirectional light with a position
// and associated decay factors, which divide the light intensity as a function of
// linear and quadratic distance.  The quadratic factor dominates at longer distances.
type PointLight struct {
	LightBase

	// position of light in world coordinates
	Pos mgl32.Vec3

	// Distance linear decay factor -- defaults to .1
	LinDecay float32

	// Distance quadratic decay factor -- defaults to .01 -- dominates at longer distances
	QuadDecay float32
}

// NewPointLight returns a point light with given name, standard color, and lumens (0-1 normalized).
// By default it is located at 0,5,5 (up and between default camera and origin): set Pos to change.
func NewPointLight(name string, lumens float32, clr LightColors) *PointLight {
	lt := &PointLight{}
	lt.Name = name
	lt.On = true
	lt.Color = LightColorMap[clr]
	lt.Lumens = lumens
	lt.LinDecay = .1
	lt.QuadDecay = .01
	lt.Pos = mgl32.Vec3{0, 5, 5}
	return lt
}

// ColorVec3 converts a color to an RGB vector in 0-1 units.
func ColorVec3(c color.RGBA) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

/////////////////////////////////////////////////////////////////////////\
//  Standard Light Colors

// http://planetpixelemporium.com/tutorialpages/light.html

// LightColors are standard light colors for different light sources
type LightColors int32

const (
	DirectSun LightColors = iota
	CarbonArc
	Halogen
	Tungsten100W
	Tungsten40W
	Candle
	Overcast
	FluorWarm
	FluorStd
	FluorCool
	FluorFull
	FluorGrow
	MercuryVapor
	SodiumVapor
	MetalHalide
)

// LightColorMap provides a map of named light colors
var LightColorMap = map[LightColors]color.RGBA{
	DirectSun:    {255, 255, 255, 255},
	CarbonArc:    {255, 250, 244, 255},
	Halogen:      {255, 241, 224, 255},
	Tungsten100W: {255, 214, 170, 255},
	Tungsten40W:  {255, 197, 143, 255},
	Candle:       {255, 147, 41, 255},
	Overcast:     {201, 226, 255, 255},
	FluorWarm:    {255, 244, 229, 255},
	FluorStd:     {244, 255, 250, 255},
	FluorCool:    {212, 235, 255, 255},
	FluorFull:    {255, 244, 242, 255},
	FluorGrow:    {255, 239, 247, 255},
	MercuryVapor: {216, 247, 255, 255},
	SodiumVapor:  {255, 209, 178, 255},
	MetalHalide:  {242, 252, 255, 255},
}
