// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xyz is a 3D scenegraph: an arena of transformable nodes, some
// of which hold meshes, rooted in a [Scene] that also holds the lights,
// the camera and the textures used by its materials.
package xyz

import (
	"errors"
	"fmt"

	"github.com/hatchgl/hatch/gpu"
)

// Scene is the overall scenegraph, with its nodes in Graph under Root.
// Scene rendering is a pure traversal: it does not change the graph.
type Scene struct {
	Name string

	// Graph holds all the nodes of the scene.
	Graph Graph

	// Root is the root node, a group.
	Root NodeID

	// DirLight is the directional light, nil if none.
	DirLight *DirLight

	// PointLights are the point lights, in order added.
	PointLights []*PointLight

	// Camera is the camera the scene is viewed through by default.
	Camera *Camera

	// Textures holds the GPU textures used by the scene's materials,
	// which are released with the scene.
	Textures TextureCache
}

// NewScene returns a new Scene with an empty root group
// and a default camera.
func NewScene(name string) *Scene {
	sc := &Scene{Name: name}
	sc.Root = sc.Graph.New(name, KindGroup)
	sc.Camera = NewCamera()
	return sc
}

// AddChild attaches child under parent. See [Graph.AddChild].
func (sc *Scene) AddChild(parent, child NodeID) error {
	return sc.Graph.AddChild(parent, child)
}

// AddGroup adds a new group node under parent.
func (sc *Scene) AddGroup(parent NodeID, name string) (NodeID, error) {
	id := sc.Graph.New(name, KindGroup)
	if err := sc.Graph.AddChild(parent, id); err != nil {
		sc.Graph.Remove(id)
		return NoNode, err
	}
	return id, nil
}

// AddMesh adds a new mesh node for ms under parent.
func (sc *Scene) AddMesh(parent NodeID, ms *Mesh) (NodeID, error) {
	id := sc.Graph.NewMesh(ms)
	if err := sc.Graph.AddChild(parent, id); err != nil {
		sc.Graph.Remove(id)
		return NoNode, err
	}
	return id, nil
}

// SetDirLight sets the directional light.
func (sc *Scene) SetDirLight(dl *DirLight) {
	sc.DirLight = dl
}

// AddPointLight adds a point light.
func (sc *Scene) AddPointLight(pl *PointLight) {
	sc.PointLights = append(sc.PointLights, pl)
}

// Meshes returns the meshes under Root, in pre-order.
func (sc *Scene) Meshes() []*Mesh {
	var ms []*Mesh
	sc.Graph.Walk(sc.Root, func(id NodeID, nd *Node) bool {
		if nd.Mesh != nil {
			ms = append(ms, nd.Mesh)
		}
		return Continue
	})
	return ms
}

// MeshByName returns the node of the first mesh with the given name,
// in pre-order, or NoNode.
func (sc *Scene) MeshByName(name string) NodeID {
	found := NoNode
	sc.Graph.Walk(sc.Root, func(id NodeID, nd *Node) bool {
		if found != NoNode {
			return Break
		}
		if nd.Mesh != nil && nd.Mesh.Name == name {
			found = id
			return Break
		}
		return Continue
	})
	return found
}

// Upload uploads every mesh not yet uploaded.
func (sc *Scene) Upload(dev gpu.Device) error {
	var errs []error
	for _, ms := range sc.Meshes() {
		if err := ms.Upload(dev); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("xyz.Scene.Upload %q: %w", sc.Name, errors.Join(errs...))
	}
	return nil
}

// Remove removes the node and its subtree from the scene,
// releasing the GPU buffers of its meshes. The root cannot be removed.
func (sc *Scene) Remove(dev gpu.Device, id NodeID) error {
	if id == sc.Root {
		return fmt.Errorf("xyz.Scene.Remove %q: cannot remove the root", sc.Name)
	}
	if !sc.Graph.Valid(id) {
		return fmt.Errorf("%w: Remove(%d)", ErrInvalidNode, id)
	}
	for _, ms := range sc.Graph.Remove(id) {
		ms.Release(dev)
	}
	return nil
}

// Release releases the GPU buffers of all meshes and the scene textures.
// The graph is kept, and can be uploaded again.
func (sc *Scene) Release(dev gpu.Device) {
	for _, ms := range sc.Meshes() {
		ms.Release(dev)
	}
	sc.Textures.Release(dev)
}
