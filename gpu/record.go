// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"
	"maps"

	"github.com/go-gl/mathgl/mgl32"
)

// Call is one command recorded by a [Recorder].
type Call struct {
	// Op is the Device method name.
	Op string

	// Name is the program, target or uniform name involved, if any.
	Name string

	// Handle is the primary handle involved, if any.
	Handle uint32
}

// Draw is a recorded DrawIndexed call together with the state
// it was issued under.
type Draw struct {
	Mesh    MeshHandle
	Mode    Primitive
	Program string

	// Target is the name of the bound render target, "" for the default.
	Target string

	// Model is the last value set for the "uModel" uniform.
	Model mgl32.Mat4

	Blend    bool
	Cull     bool
	Textures map[int]Texture
}

// Recorder is a [Device] that performs no rendering: it assigns
// handles, tracks which resources are alive, and records every call.
// Any use of a deleted or unknown handle is recorded in Stale, which
// makes it the tool for checking resource lifetimes in tests.
type Recorder struct {
	// Calls is every call in order.
	Calls []Call

	// Draws is every draw call in order.
	Draws []Draw

	// Stale has one entry per use of a handle that is not alive.
	Stale []string

	// FailPrograms makes CreateProgram fail with the mapped info log
	// for the named programs.
	FailPrograms map[string]string

	// Textures holds the descriptor of every live texture.
	Textures map[Texture]TextureDesc

	// Targets holds every live render target by framebuffer.
	Targets map[Framebuffer]RenderTarget

	// Uniforms holds the last value set for each uniform of each program.
	Uniforms map[string]map[string]any

	live     map[uint32]string
	next     uint32
	programs map[Program]string
	program  Program
	target   *RenderTarget
	bound    map[int]Texture
	blend    bool
	depth    bool
	cull     bool
}

// NewRecorder returns a new, empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Textures: make(map[Texture]TextureDesc),
		Targets:  make(map[Framebuffer]RenderTarget),
		Uniforms: make(map[string]map[string]any),
		live:     make(map[uint32]string),
		programs: make(map[Program]string),
		bound:    make(map[int]Texture),
	}
}

func (rc *Recorder) alloc(kind string) uint32 {
	rc.next++
	rc.live[rc.next] = kind
	return rc.next
}

func (rc *Recorder) use(op string, h uint32, kind string) {
	if h == 0 {
		return
	}
	if k, ok := rc.live[h]; !ok || k != kind {
		rc.Stale = append(rc.Stale, fmt.Sprintf("%s: %s %d is not alive", op, kind, h))
	}
}

func (rc *Recorder) free(op string, h uint32, kind string) {
	rc.use(op, h, kind)
	delete(rc.live, h)
	if kind == "texture" {
		// deleting a bound texture unbinds it, as in OpenGL
		for unit, tx := range rc.bound {
			if uint32(tx) == h {
				delete(rc.bound, unit)
			}
		}
	}
}

func (rc *Recorder) record(op, name string, h uint32) {
	rc.Calls = append(rc.Calls, Call{Op: op, Name: name, Handle: h})
}

// Live returns the number of live handles of the given kind:
// "mesh", "texture", "target" or "program".
func (rc *Recorder) Live(kind string) int {
	n := 0
	for _, k := range rc.live {
		if k == kind {
			n++
		}
	}
	return n
}

// IsAlive returns whether the handle is currently alive.
func (rc *Recorder) IsAlive(h uint32) bool {
	_, ok := rc.live[h]
	return ok
}

// Ops returns the Op of every recorded call, in order.
func (rc *Recorder) Ops() []string {
	ops := make([]string, len(rc.Calls))
	for i, c := range rc.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset clears the recorded calls and draws, keeping resources alive.
func (rc *Recorder) Reset() {
	rc.Calls = nil
	rc.Draws = nil
	rc.Stale = nil
}

func (rc *Recorder) CreateMesh(md *MeshData) (MeshHandle, error) {
	if len(md.Positions)%3 != 0 {
		return MeshHandle{}, fmt.Errorf("gpu.Recorder.CreateMesh: %d position components is not a multiple of 3", len(md.Positions))
	}
	h := MeshHandle{VAO: rc.alloc("mesh"), Count: int32(len(md.Indices))}
	for range 4 + len(md.TexCoords) {
		rc.next++
		h.Buffers = append(h.Buffers, rc.next)
	}
	rc.record("CreateMesh", "", h.VAO)
	return h, nil
}

func (rc *Recorder) DeleteMesh(h MeshHandle) {
	rc.free("DeleteMesh", h.VAO, "mesh")
	rc.record("DeleteMesh", "", h.VAO)
}

func (rc *Recorder) CreateTexture(desc TextureDesc, pix []byte) (Texture, error) {
	need := desc.Size.X * desc.Size.Y * desc.Format.Channels()
	if pix != nil && len(pix) != need && desc.Format != RGBA16F {
		return 0, fmt.Errorf("gpu.Recorder.CreateTexture: got %d bytes for %v %v, want %d", len(pix), desc.Size, desc.Format, need)
	}
	tx := Texture(rc.alloc("texture"))
	rc.Textures[tx] = desc
	rc.record("CreateTexture", "", uint32(tx))
	return tx, nil
}

func (rc *Recorder) DeleteTexture(tx Texture) {
	rc.free("DeleteTexture", uint32(tx), "texture")
	delete(rc.Textures, tx)
	rc.record("DeleteTexture", "", uint32(tx))
}

func (rc *Recorder) CreateRenderTarget(desc TargetDesc) (RenderTarget, error) {
	if desc.Size.X <= 0 || desc.Size.Y <= 0 {
		return RenderTarget{}, fmt.Errorf("gpu.Recorder.CreateRenderTarget: %s: invalid size %v", desc.Name, desc.Size)
	}
	rt := RenderTarget{Name: desc.Name, Size: desc.Size}
	rt.FB = Framebuffer(rc.alloc("target"))
	for _, f := range desc.Color {
		tx := Texture(rc.alloc("texture"))
		rc.Textures[tx] = TextureDesc{Size: desc.Size, Format: f, MinFilter: Linear, MagFilter: Linear, WrapS: ClampToEdge, WrapT: ClampToEdge}
		rt.Color = append(rt.Color, tx)
	}
	if desc.DepthStencil {
		rt.Depth = rc.alloc("renderbuffer")
	}
	rc.Targets[rt.FB] = rt
	rc.record("CreateRenderTarget", desc.Name, uint32(rt.FB))
	return rt, nil
}

func (rc *Recorder) DeleteRenderTarget(rt RenderTarget) {
	rc.free("DeleteRenderTarget", uint32(rt.FB), "target")
	for _, tx := range rt.Color {
		rc.free("DeleteRenderTarget", uint32(tx), "texture")
		delete(rc.Textures, tx)
	}
	if rt.Depth != 0 {
		rc.free("DeleteRenderTarget", rt.Depth, "renderbuffer")
	}
	delete(rc.Targets, rt.FB)
	rc.record("DeleteRenderTarget", rt.Name, uint32(rt.FB))
}

func (rc *Recorder) BindRenderTarget(rt *RenderTarget) {
	if rt == nil {
		rc.target = nil
		rc.record("BindRenderTarget", "", 0)
		return
	}
	rc.use("BindRenderTarget", uint32(rt.FB), "target")
	for _, tx := range rt.Color {
		rc.use("BindRenderTarget", uint32(tx), "texture")
	}
	cp := *rt
	rc.target = &cp
	rc.record("BindRenderTarget", rt.Name, uint32(rt.FB))
}

func (rc *Recorder) targetName() string {
	if rc.target == nil {
		return ""
	}
	return rc.target.Name
}

func (rc *Recorder) Viewport(size image.Point) {
	rc.record("Viewport", fmt.Sprintf("%dx%d", size.X, size.Y), 0)
}

func (rc *Recorder) Clear(clr mgl32.Vec4) {
	rc.record("Clear", rc.targetName(), 0)
}

func (rc *Recorder) ClearColorAttachment(index int, value mgl32.Vec4) {
	if rc.target == nil || index >= len(rc.target.Color) {
		rc.Stale = append(rc.Stale, fmt.Sprintf("ClearColorAttachment: no attachment %d on %q", index, rc.targetName()))
	}
	rc.record("ClearColorAttachment", rc.targetName(), uint32(index))
}

func (rc *Recorder) CreateProgram(name, vertex, fragment string) (Program, error) {
	if log, ok := rc.FailPrograms[name]; ok {
		return 0, &ShaderBuildError{Program: name, Stage: "link", Log: log}
	}
	if vertex == "" || fragment == "" {
		return 0, &ShaderBuildError{Program: name, Stage: "vertex", Log: "empty source"}
	}
	p := Program(rc.alloc("program"))
	rc.programs[p] = name
	rc.record("CreateProgram", name, uint32(p))
	return p, nil
}

func (rc *Recorder) DeleteProgram(p Program) {
	rc.free("DeleteProgram", uint32(p), "program")
	rc.record("DeleteProgram", rc.programs[p], uint32(p))
	delete(rc.programs, p)
}

func (rc *Recorder) UseProgram(p Program) {
	rc.use("UseProgram", uint32(p), "program")
	rc.program = p
	rc.record("UseProgram", rc.programs[p], uint32(p))
}

func (rc *Recorder) setUniform(name string, v any) {
	pn := rc.programs[rc.program]
	um := rc.Uniforms[pn]
	if um == nil {
		um = make(map[string]any)
		rc.Uniforms[pn] = um
	}
	um[name] = v
	rc.record("SetUniform", name, uint32(rc.program))
}

func (rc *Recorder) SetInt(name string, v int32)       { rc.setUniform(name, v) }
func (rc *Recorder) SetFloat(name string, v float32)   { rc.setUniform(name, v) }
func (rc *Recorder) SetVec3(name string, v mgl32.Vec3) { rc.setUniform(name, v) }
func (rc *Recorder) SetVec4(name string, v mgl32.Vec4) { rc.setUniform(name, v) }
func (rc *Recorder) SetMat4(name string, m mgl32.Mat4) { rc.setUniform(name, m) }

func (rc *Recorder) BindTexture(unit int, tx Texture) {
	rc.use("BindTexture", uint32(tx), "texture")
	rc.bound[unit] = tx
	rc.record("BindTexture", fmt.Sprintf("unit%d", unit), uint32(tx))
}

func (rc *Recorder) SetBlend(on bool) {
	rc.blend = on
	rc.record("SetBlend", fmt.Sprint(on), 0)
}

func (rc *Recorder) SetDepthTest(on bool) {
	rc.depth = on
	rc.record("SetDepthTest", fmt.Sprint(on), 0)
}

func (rc *Recorder) SetCullFace(on bool) {
	rc.cull = on
	rc.record("SetCullFace", fmt.Sprint(on), 0)
}

func (rc *Recorder) DrawIndexed(h MeshHandle, mode Primitive) {
	rc.use("DrawIndexed", h.VAO, "mesh")
	rc.use("DrawIndexed", uint32(rc.program), "program")
	if rc.target != nil {
		rc.use("DrawIndexed", uint32(rc.target.FB), "target")
	}
	for _, tx := range rc.bound {
		rc.use("DrawIndexed", uint32(tx), "texture")
	}
	pn := rc.programs[rc.program]
	d := Draw{Mesh: h, Mode: mode, Program: pn, Target: rc.targetName(), Blend: rc.blend, Cull: rc.cull, Textures: maps.Clone(rc.bound)}
	if m, ok := rc.Uniforms[pn]["uModel"].(mgl32.Mat4); ok {
		d.Model = m
	}
	rc.Draws = append(rc.Draws, d)
	rc.record("DrawIndexed", pn, h.VAO)
}

func (rc *Recorder) ReadPixels(size image.Point) (*image.RGBA, error) {
	rc.record("ReadPixels", rc.targetName(), 0)
	return image.NewRGBA(image.Rectangle{Max: size}), nil
}

var _ Device = (*Recorder)(nil)
