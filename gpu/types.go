// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import "fmt"

// Handles are opaque, backend-assigned identifiers. The zero value
// of each handle type means "none".
type (
	// Texture is a 2D image living in device memory.
	Texture uint32

	// Program is a linked vertex + fragment shader program.
	Program uint32

	// Framebuffer is an off-screen render target. Zero is the
	// default, presentable framebuffer.
	Framebuffer uint32
)

// Primitive is the topology used to assemble vertices into primitives.
// The values are the glTF mesh primitive modes, which are also the
// OpenGL enum values.
type Primitive int32

const (
	Points        Primitive = 0
	Lines         Primitive = 1
	LineLoop      Primitive = 2
	LineStrip     Primitive = 3
	Triangles     Primitive = 4
	TriangleStrip Primitive = 5
	TriangleFan   Primitive = 6
)

// Valid returns whether p is one of the defined topologies.
func (p Primitive) Valid() bool {
	return p >= Points && p <= TriangleFan
}

func (p Primitive) String() string {
	switch p {
	case Points:
		return "Points"
	case Lines:
		return "Lines"
	case LineLoop:
		return "LineLoop"
	case LineStrip:
		return "LineStrip"
	case Triangles:
		return "Triangles"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	}
	return fmt.Sprintf("Primitive(%d)", int32(p))
}

// Filter is a texture minification or magnification filter.
// Values match glTF sampler filters and OpenGL enums.
type Filter int32

const (
	Nearest              Filter = 9728
	Linear               Filter = 9729
	NearestMipmapNearest Filter = 9984
	LinearMipmapNearest  Filter = 9985
	NearestMipmapLinear  Filter = 9986
	LinearMipmapLinear   Filter = 9987
)

// IsMipmap returns whether the filter samples from mipmap levels.
func (f Filter) IsMipmap() bool {
	return f >= NearestMipmapNearest && f <= LinearMipmapLinear
}

// Valid returns whether f is a known filter.
func (f Filter) Valid() bool {
	return f == Nearest || f == Linear || f.IsMipmap()
}

// Wrap is a texture coordinate wrapping mode.
type Wrap int32

const (
	ClampToEdge    Wrap = 33071
	MirroredRepeat Wrap = 33648
	Repeat         Wrap = 10497
)

// Formats are the texture storage formats used by the renderer.
type Formats int32

const (
	// RGBA8 is 8 bits per channel, 4 channels: the standard image format.
	RGBA8 Formats = iota

	// RGB8 is 8 bits per channel with no alpha channel.
	RGB8

	// RGBA16F is a half-float format used for world-space normals.
	RGBA16F

	// R8 is a single 8 bit channel, used for masks.
	R8
)

// Channels returns the number of channels in the format.
func (f Formats) Channels() int {
	switch f {
	case RGB8:
		return 3
	case R8:
		return 1
	}
	return 4
}

// HasAlpha returns whether the format stores an alpha channel.
func (f Formats) HasAlpha() bool {
	return f == RGBA8 || f == RGBA16F
}

func (f Formats) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RGB8:
		return "RGB8"
	case RGBA16F:
		return "RGBA16F"
	case R8:
		return "R8"
	}
	return fmt.Sprintf("Formats(%d)", int32(f))
}
