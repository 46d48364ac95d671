// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderClasses define the different classes of rendering
type RenderClasses int32

const (
	RClassNone          RenderClasses = iota
	RClassOpaqueTexture               // textures tend to be in background
	RClassOpaqueUniform
	RClassTransTexture
	RClassTransUniform
)

// IsTransparent returns whether the class is drawn in the transparent pass.
func (rc RenderClasses) IsTransparent() bool {
	return rc >= RClassTransTexture
}

// Submission is one mesh to be drawn, with its world transform.
type Submission struct {
	Mesh  *Mesh
	Model mgl32.Mat4
	Class RenderClasses
}

// Position returns the world position of the mesh origin.
func (sb *Submission) Position() mgl32.Vec3 {
	return sb.Model.Col(3).Vec3()
}

// Render traverses the scene from Root in pre-order, calling fn for
// every uploaded mesh with its model matrix, composed from the root on
// down. It does not modify the scene.
func (sc *Scene) Render(fn func(sb Submission)) {
	sc.Graph.WalkModel(sc.Root, mgl32.Ident4(), func(id NodeID, nd *Node, model mgl32.Mat4) bool {
		if nd.Mesh == nil || !nd.Mesh.IsUploaded() {
			return Continue
		}
		fn(Submission{Mesh: nd.Mesh, Model: model, Class: nd.Mesh.RenderClass()})
		return Continue
	})
}
