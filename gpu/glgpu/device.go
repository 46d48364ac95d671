// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glgpu implements [gpu.Device] on OpenGL 4.1 core profile.
// A context must be current on the calling thread (see [GLFWCreateWindow])
// before [New] is called, and all calls must come from that thread.
package glgpu

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/gpu"
)

// Device is the OpenGL implementation of [gpu.Device].
type Device struct {
	program  uint32
	uniforms map[uint32]map[string]int32
	programs map[uint32]string
}

// New initializes the OpenGL function pointers for the current
// context and returns a new Device.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glgpu.New: %w", err)
	}
	slog.Debug("glgpu.New", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return &Device{
		uniforms: make(map[uint32]map[string]int32),
		programs: make(map[uint32]string),
	}, nil
}

func attribBuffer(loc uint32, size int32, data []float32) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.VertexAttribPointer(loc, size, gl.FLOAT, false, 0, nil)
		gl.EnableVertexAttribArray(loc)
	} else {
		gl.DisableVertexAttribArray(loc)
	}
	return buf
}

func (dv *Device) CreateMesh(md *gpu.MeshData) (gpu.MeshHandle, error) {
	if len(md.Positions)%3 != 0 {
		return gpu.MeshHandle{}, fmt.Errorf("glgpu.CreateMesh: %d position components is not a multiple of 3", len(md.Positions))
	}
	h := gpu.MeshHandle{Count: int32(len(md.Indices))}
	gl.GenVertexArrays(1, &h.VAO)
	gl.BindVertexArray(h.VAO)

	h.Buffers = append(h.Buffers,
		attribBuffer(gpu.AttribPosition, 3, md.Positions),
		attribBuffer(gpu.AttribColor, 4, md.Colors),
		attribBuffer(gpu.AttribNormal, 3, md.Normals))
	for i, tc := range md.TexCoords {
		h.Buffers = append(h.Buffers, attribBuffer(uint32(gpu.AttribTexCoord+i), 2, tc))
	}

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	if len(md.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(md.Indices)*4, gl.Ptr(md.Indices), gl.STATIC_DRAW)
	}
	h.Buffers = append(h.Buffers, ebo)

	gl.BindVertexArray(0)
	return h, nil
}

func (dv *Device) DeleteMesh(h gpu.MeshHandle) {
	if len(h.Buffers) > 0 {
		gl.DeleteBuffers(int32(len(h.Buffers)), &h.Buffers[0])
	}
	if h.VAO != 0 {
		gl.DeleteVertexArrays(1, &h.VAO)
	}
}

// formats returns the internal format, pixel format and pixel type.
func formats(f gpu.Formats) (int32, uint32, uint32) {
	switch f {
	case gpu.RGB8:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case gpu.RGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gpu.R8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func (dv *Device) CreateTexture(desc gpu.TextureDesc, pix []byte) (gpu.Texture, error) {
	desc.Defaults()
	if desc.Size.X <= 0 || desc.Size.Y <= 0 {
		return 0, fmt.Errorf("glgpu.CreateTexture: invalid size %v", desc.Size)
	}
	ifmt, pfmt, ptype := formats(desc.Format)
	var tx uint32
	gl.GenTextures(1, &tx)
	gl.BindTexture(gl.TEXTURE_2D, tx)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(desc.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(desc.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(desc.MagFilter))
	var ptr unsafe.Pointer
	if len(pix) > 0 {
		ptr = gl.Ptr(pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, ifmt, int32(desc.Size.X), int32(desc.Size.Y), 0, pfmt, ptype, ptr)
	if desc.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.Texture(tx), nil
}

func (dv *Device) DeleteTexture(tx gpu.Texture) {
	t := uint32(tx)
	if t != 0 {
		gl.DeleteTextures(1, &t)
	}
}

func (dv *Device) CreateRenderTarget(desc gpu.TargetDesc) (gpu.RenderTarget, error) {
	rt := gpu.RenderTarget{Name: desc.Name, Size: desc.Size}
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	rt.FB = gpu.Framebuffer(fb)

	for i, f := range desc.Color {
		tx, err := dv.CreateTexture(gpu.TextureDesc{Size: desc.Size, Format: f}, nil)
		if err != nil {
			dv.DeleteRenderTarget(rt)
			return gpu.RenderTarget{}, fmt.Errorf("glgpu.CreateRenderTarget: %s: %w", desc.Name, err)
		}
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, uint32(tx), 0)
		rt.Color = append(rt.Color, tx)
	}
	if desc.DepthStencil {
		gl.GenRenderbuffers(1, &rt.Depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, rt.Depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(desc.Size.X), int32(desc.Size.Y))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rt.Depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}
	drawBuffers(len(rt.Color))

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		dv.DeleteRenderTarget(rt)
		return gpu.RenderTarget{}, fmt.Errorf("glgpu.CreateRenderTarget: %s: framebuffer incomplete: 0x%x", desc.Name, status)
	}
	return rt, nil
}

func drawBuffers(n int) {
	if n == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	bufs := make([]uint32, n)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(n), &bufs[0])
}

func (dv *Device) DeleteRenderTarget(rt gpu.RenderTarget) {
	for _, tx := range rt.Color {
		dv.DeleteTexture(tx)
	}
	if rt.Depth != 0 {
		gl.DeleteRenderbuffers(1, &rt.Depth)
	}
	fb := uint32(rt.FB)
	if fb != 0 {
		gl.DeleteFramebuffers(1, &fb)
	}
}

func (dv *Device) BindRenderTarget(rt *gpu.RenderTarget) {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(rt.FB))
	drawBuffers(len(rt.Color))
}

func (dv *Device) Viewport(size image.Point) {
	gl.Viewport(0, 0, int32(size.X), int32(size.Y))
}

func (dv *Device) Clear(clr mgl32.Vec4) {
	gl.ClearColor(clr[0], clr[1], clr[2], clr[3])
	gl.ClearDepth(1)
	gl.ClearStencil(0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

func (dv *Device) ClearColorAttachment(index int, value mgl32.Vec4) {
	gl.ClearBufferfv(gl.COLOR, int32(index), &value[0])
}

func compileShader(name, stage, src string, kind uint32) (uint32, error) {
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(sh, n, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, &gpu.ShaderBuildError{Program: name, Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	return sh, nil
}

func (dv *Device) CreateProgram(name, vertex, fragment string) (gpu.Program, error) {
	vs, err := compileShader(name, "vertex", vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(name, "fragment", fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	p := gl.CreateProgram()
	gl.AttachShader(p, vs)
	gl.AttachShader(p, fs)
	gl.LinkProgram(p)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(p, n, nil, gl.Str(log))
		gl.DeleteProgram(p)
		return 0, &gpu.ShaderBuildError{Program: name, Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}
	dv.uniforms[p] = make(map[string]int32)
	dv.programs[p] = name
	return gpu.Program(p), nil
}

func (dv *Device) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
	delete(dv.uniforms, uint32(p))
	delete(dv.programs, uint32(p))
}

func (dv *Device) UseProgram(p gpu.Program) {
	dv.program = uint32(p)
	gl.UseProgram(dv.program)
}

// location returns the cached uniform location in the current program,
// -1 if the uniform is not active (which GL silently ignores).
func (dv *Device) location(name string) int32 {
	um := dv.uniforms[dv.program]
	if um == nil {
		return -1
	}
	loc, ok := um[name]
	if !ok {
		loc = gl.GetUniformLocation(dv.program, gl.Str(name+"\x00"))
		um[name] = loc
	}
	return loc
}

func (dv *Device) SetInt(name string, v int32) {
	gl.Uniform1i(dv.location(name), v)
}

func (dv *Device) SetFloat(name string, v float32) {
	gl.Uniform1f(dv.location(name), v)
}

func (dv *Device) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3fv(dv.location(name), 1, &v[0])
}

func (dv *Device) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4fv(dv.location(name), 1, &v[0])
}

func (dv *Device) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(dv.location(name), 1, false, &m[0])
}

func (dv *Device) BindTexture(unit int, tx gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tx))
}

func (dv *Device) SetBlend(on bool) {
	if on {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		return
	}
	gl.Disable(gl.BLEND)
}

func (dv *Device) SetCullFace(on bool) {
	if on {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
		return
	}
	gl.Disable(gl.CULL_FACE)
}

func (dv *Device) SetDepthTest(on bool) {
	if on {
		gl.Enable(gl.DEPTH_TEST)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

func (dv *Device) DrawIndexed(h gpu.MeshHandle, mode gpu.Primitive) {
	if h.Count == 0 {
		return
	}
	gl.BindVertexArray(h.VAO)
	gl.DrawElements(uint32(mode), h.Count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (dv *Device) ReadPixels(size image.Point) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("glgpu.ReadPixels: invalid size %v", size)
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(size.X), int32(size.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	// GL rows start at the bottom
	stride := img.Stride
	row := make([]byte, stride)
	for y := 0; y < size.Y/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bot := img.Pix[(size.Y-1-y)*stride : (size.Y-y)*stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
	return img, nil
}

var _ gpu.Device = (*Device)(nil)
