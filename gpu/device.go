// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu defines the device interface the renderer draws through,
// independent of the graphics API behind it. The OpenGL implementation
// lives in gpu/glgpu, and [Recorder] is an in-memory implementation
// used for testing.
//
// A Device is bound to one graphics context and, like that context,
// must only be used from the goroutine that created it.
package gpu

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute locations shared by every mesh and shader.
// Texture coordinate set i is bound at AttribTexCoord+i.
const (
	AttribPosition = 0
	AttribColor    = 1
	AttribNormal   = 2
	AttribTexCoord = 3
)

// MeshData is the host-side vertex and index data for a mesh upload.
// All attribute arrays are flat sequences of float32 components:
// 3 per position and normal, 4 per color, 2 per texture coordinate.
type MeshData struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	TexCoords [][]float32
	Indices   []uint32
}

// MeshHandle refers to the device-side buffers of an uploaded mesh.
type MeshHandle struct {
	// VAO is the vertex array object binding all attribute buffers.
	VAO uint32

	// Buffers are the attribute and index buffers owned by the mesh.
	Buffers []uint32

	// Count is the number of indices to draw.
	Count int32
}

// IsValid returns whether the handle refers to uploaded buffers.
func (h MeshHandle) IsValid() bool {
	return h.VAO != 0
}

// TextureDesc describes a sampled 2D texture.
type TextureDesc struct {
	Size      image.Point
	Format    Formats
	MinFilter Filter
	MagFilter Filter
	WrapS     Wrap
	WrapT     Wrap

	// Mipmaps requests generation of the full mipmap chain after upload.
	Mipmaps bool
}

// Defaults sets linear filtering with clamp-to-edge wrapping,
// for any fields not yet set.
func (td *TextureDesc) Defaults() {
	if td.MinFilter == 0 {
		td.MinFilter = Linear
	}
	if td.MagFilter == 0 {
		td.MagFilter = Linear
	}
	if td.WrapS == 0 {
		td.WrapS = ClampToEdge
	}
	if td.WrapT == 0 {
		td.WrapT = ClampToEdge
	}
}

// TargetDesc describes an off-screen render target with one texture
// per color attachment, and an optional depth-stencil buffer.
type TargetDesc struct {
	Name         string
	Size         image.Point
	Color        []Formats
	DepthStencil bool
}

// RenderTarget is an allocated off-screen render target.
type RenderTarget struct {
	Name string

	// FB is the framebuffer object.
	FB Framebuffer

	// Color holds the texture attached at each color attachment index.
	Color []Texture

	// Depth is the depth-stencil renderbuffer, 0 if none.
	Depth uint32

	// Size is the size of every attachment.
	Size image.Point
}

// IsValid returns whether the target has been allocated.
func (rt *RenderTarget) IsValid() bool {
	return rt != nil && rt.FB != 0
}

// Device is a single graphics context: it creates and destroys GPU
// resources and records drawing commands, which execute in the order
// they are issued.
type Device interface {
	// CreateMesh uploads vertex attribute and index data.
	CreateMesh(md *MeshData) (MeshHandle, error)

	// DeleteMesh releases the buffers of an uploaded mesh.
	DeleteMesh(h MeshHandle)

	// CreateTexture creates a texture and uploads the given tightly
	// packed pixels, which may be nil to allocate storage only.
	CreateTexture(desc TextureDesc, pix []byte) (Texture, error)

	// DeleteTexture releases a texture.
	DeleteTexture(tx Texture)

	// CreateRenderTarget allocates a framebuffer with its attachments.
	CreateRenderTarget(desc TargetDesc) (RenderTarget, error)

	// DeleteRenderTarget releases the framebuffer and all its attachments.
	DeleteRenderTarget(rt RenderTarget)

	// BindRenderTarget directs drawing to rt, or to the default
	// framebuffer if rt is nil. All color attachments of rt are enabled
	// as draw buffers.
	BindRenderTarget(rt *RenderTarget)

	// Viewport sets the drawing viewport to size, anchored at the origin.
	Viewport(size image.Point)

	// Clear clears all color attachments to clr, depth to 1 and stencil to 0.
	Clear(clr mgl32.Vec4)

	// ClearColorAttachment clears a single color attachment of the
	// currently bound target to the given value.
	ClearColorAttachment(index int, value mgl32.Vec4)

	// CreateProgram compiles and links a program, returning a
	// [*ShaderBuildError] if either stage or the link fails.
	CreateProgram(name, vertex, fragment string) (Program, error)

	// DeleteProgram releases a program.
	DeleteProgram(p Program)

	// UseProgram makes p the target of subsequent Set* calls and draws.
	UseProgram(p Program)

	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat4(name string, m mgl32.Mat4)

	// BindTexture binds tx to the given texture unit.
	BindTexture(unit int, tx Texture)

	// SetBlend enables or disables source-alpha, one-minus-source-alpha blending.
	SetBlend(on bool)

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(on bool)

	// SetCullFace enables or disables culling of back faces,
	// those wound clockwise on screen.
	SetCullFace(on bool)

	// DrawIndexed draws the mesh with the given topology.
	DrawIndexed(h MeshHandle, mode Primitive)

	// ReadPixels reads back the color of the currently bound target.
	ReadPixels(size image.Point) (*image.RGBA, error)
}

// ShaderBuildError is returned when a shader stage fails to
// compile or a program fails to link.
type ShaderBuildError struct {
	// Program is the name of the program being built.
	Program string

	// Stage is "vertex", "fragment" or "link".
	Stage string

	// Log is the info log reported by the driver.
	Log string
}

func (e *ShaderBuildError) Error() string {
	return fmt.Sprintf("gpu: building program %q: %s stage failed: %s", e.Program, e.Stage, e.Log)
}
