// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/gpu"
)

// MaxTexCoords is the maximum number of texture coordinate sets per mesh.
// Sets beyond it are ignored.
const MaxTexCoords = 5

// Vertices holds the vertex attribute streams of a mesh, each a flat
// sequence of float32 components: 3 per position and normal,
// 4 per color and 2 per texture coordinate.
type Vertices struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	TexCoords [][]float32
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min, Max mgl32.Vec3
}

// Center returns the center of the box.
func (bb BBox) Center() mgl32.Vec3 {
	return bb.Min.Add(bb.Max).Mul(0.5)
}

// Mesh is a renderable primitive: vertex attribute streams, indices,
// a topology and a material. Its GPU buffers are created exactly once
// by [Mesh.Upload], after the attribute arrays are populated; later
// changes to the arrays are not re-uploaded.
type Mesh struct {
	Name string

	Vertices Vertices

	// Indices reference vertex records. If empty at upload, sequential
	// indices over all vertices are used.
	Indices []uint32

	// Mode is the primitive topology, Triangles by default.
	Mode gpu.Primitive

	Material Material

	handle gpu.MeshHandle
}

// NewMesh returns a new empty triangle mesh with the default material.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, Mode: gpu.Triangles, Material: NewMaterial(name)}
}

// NumVertex returns the number of vertices, from the positions.
func (ms *Mesh) NumVertex() int {
	return len(ms.Vertices.Positions) / 3
}

// FillDefaultColors sets every vertex color to opaque white.
func (ms *Mesh) FillDefaultColors() {
	n := ms.NumVertex()
	ms.Vertices.Colors = make([]float32, 4*n)
	for i := range ms.Vertices.Colors {
		ms.Vertices.Colors[i] = 1
	}
}

// AddTexCoords appends a texture coordinate set, returning false
// if MaxTexCoords sets are already present.
func (ms *Mesh) AddTexCoords(tc []float32) bool {
	if len(ms.Vertices.TexCoords) >= MaxTexCoords {
		return false
	}
	ms.Vertices.TexCoords = append(ms.Vertices.TexCoords, tc)
	return true
}

// Validate checks that the attribute streams agree on the vertex count
// and that indices are in range.
func (ms *Mesh) Validate() error {
	vs := &ms.Vertices
	if len(vs.Positions)%3 != 0 {
		return fmt.Errorf("xyz.Mesh %q: %d position components is not a multiple of 3", ms.Name, len(vs.Positions))
	}
	n := ms.NumVertex()
	if len(vs.Normals) != 0 && len(vs.Normals) != 3*n {
		return fmt.Errorf("xyz.Mesh %q: %d normal components for %d vertices", ms.Name, len(vs.Normals), n)
	}
	if len(vs.Colors) != 0 && len(vs.Colors) != 4*n {
		return fmt.Errorf("xyz.Mesh %q: %d color components for %d vertices", ms.Name, len(vs.Colors), n)
	}
	for _, ix := range ms.Indices {
		if int(ix) >= n {
			return fmt.Errorf("xyz.Mesh %q: index %d out of range of %d vertices", ms.Name, ix, n)
		}
	}
	return nil
}

// Upload creates the GPU buffers of the mesh. It does nothing
// if the mesh is already uploaded. Missing colors are filled with
// opaque white first.
func (ms *Mesh) Upload(dev gpu.Device) error {
	if ms.handle.IsValid() {
		return nil
	}
	if !ms.Mode.Valid() {
		ms.Mode = gpu.Triangles
	}
	if len(ms.Vertices.Colors) == 0 {
		ms.FillDefaultColors()
	}
	if err := ms.Validate(); err != nil {
		return err
	}
	idx := ms.Indices
	if len(idx) == 0 {
		idx = make([]uint32, ms.NumVertex())
		for i := range idx {
			idx[i] = uint32(i)
		}
	}
	h, err := dev.CreateMesh(&gpu.MeshData{
		Positions: ms.Vertices.Positions,
		Normals:   ms.Vertices.Normals,
		Colors:    ms.Vertices.Colors,
		TexCoords: ms.Vertices.TexCoords,
		Indices:   idx,
	})
	if err != nil {
		return fmt.Errorf("xyz.Mesh.Upload %q: %w", ms.Name, err)
	}
	ms.handle = h
	return nil
}

// IsUploaded returns whether the GPU buffers exist.
func (ms *Mesh) IsUploaded() bool {
	return ms.handle.IsValid()
}

// Handle returns the GPU buffer handle, zero if not uploaded.
func (ms *Mesh) Handle() gpu.MeshHandle {
	return ms.handle
}

// Release deletes the GPU buffers. The mesh can be uploaded again after.
func (ms *Mesh) Release(dev gpu.Device) {
	if !ms.handle.IsValid() {
		return
	}
	dev.DeleteMesh(ms.handle)
	ms.handle = gpu.MeshHandle{}
}

// Render submits the mesh for drawing with the given model matrix,
// on the program that is current on dev. It does nothing if the mesh
// has not been uploaded.
func (ms *Mesh) Render(dev gpu.Device, model mgl32.Mat4) {
	if !ms.handle.IsValid() {
		return
	}
	dev.SetMat4("uModel", model)
	ms.Material.Render(dev)
	dev.DrawIndexed(ms.handle, ms.Mode)
}

// BBox returns the bounding box of the positions in local coordinates.
func (ms *Mesh) BBox() BBox {
	ps := ms.Vertices.Positions
	if len(ps) < 3 {
		return BBox{}
	}
	bb := BBox{Min: mgl32.Vec3{ps[0], ps[1], ps[2]}, Max: mgl32.Vec3{ps[0], ps[1], ps[2]}}
	for i := 3; i+2 < len(ps); i += 3 {
		for c := range 3 {
			bb.Min[c] = min(bb.Min[c], ps[i+c])
			bb.Max[c] = max(bb.Max[c], ps[i+c])
		}
	}
	return bb
}

// RenderClass returns the class of rendering for this mesh,
// used to group meshes into passes.
func (ms *Mesh) RenderClass() RenderClasses {
	mt := &ms.Material
	tex := mt.BaseColorTexture != nil
	switch {
	case mt.Transparent && tex:
		return RClassTransTexture
	case mt.Transparent:
		return RClassTransUniform
	case tex:
		return RClassOpaqueTexture
	}
	return RClassOpaqueUniform
}
