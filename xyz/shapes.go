// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

// NewFullscreenQuad returns a two-triangle quad covering clip space,
// with texture coordinates spanning [0,1]. It is used for the
// post-processing passes, which draw it with identity transforms.
func NewFullscreenQuad() *Mesh {
	ms := NewMesh("FullscreenQuad")
	ms.Vertices.Positions = []float32{
		-1, -1, 0,
		1, 1, 0,
		1, -1, 0,
		-1, 1, 0,
	}
	ms.Vertices.Normals = []float32{
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	}
	ms.AddTexCoords([]float32{
		0, 0,
		1, 1,
		1, 0,
		0, 1,
	})
	ms.Indices = []uint32{
		0, 1, 3,
		0, 2, 1,
	}
	ms.FillDefaultColors()
	return ms
}

// DefaultTriangleScene returns a scene holding one group with a single
// red, green and blue vertex-colored triangle, shown when no model is loaded.
// The camera is placed to look at it from +Z.
func DefaultTriangleScene() *Scene {
	sc := NewScene("Scene")
	grp, _ := sc.AddGroup(sc.Root, "TriScene")
	ms := NewMesh("TriPrim")
	ms.Vertices.Positions = []float32{
		-1, -1, 0,
		1, -1, 0,
		0, 1, 0,
	}
	ms.Vertices.Normals = []float32{
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	}
	ms.Vertices.Colors = []float32{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 1,
	}
	ms.Indices = []uint32{0, 1, 2}
	sc.AddMesh(grp, ms)
	sc.Camera.SetPos(0, 0, 4)
	sc.Camera.SetAxisRotation(0, 1, 0, 180)
	sc.Camera.UpdateVectors()
	sc.SetDirLight(NewDirLight("sun", 1, DirectSun))
	return sc
}
