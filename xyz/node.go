// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// NodeID addresses a node within a [Graph].
type NodeID int32

// NoNode is the NodeID of no node, e.g., the parent of a root.
const NoNode NodeID = -1

// Kinds are the variants of node in the graph.
type Kinds int32

const (
	// KindGroup collects child nodes under a shared transform,
	// and has no geometry of its own.
	KindGroup Kinds = iota

	// KindMesh is a renderable node holding a [Mesh].
	KindMesh
)

func (k Kinds) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	}
	return fmt.Sprintf("Kinds(%d)", int32(k))
}

// Walk function return values, for readability.
const (
	// Continue descends into the children of the current node.
	Continue = true

	// Break skips the children of the current node.
	Break = false
)

var (
	ErrInvalidNode = errors.New("xyz: invalid node")
	ErrHasParent   = errors.New("xyz: node already has a parent")
	ErrCycle       = errors.New("xyz: adding child would create a cycle")
)

// Node is one entry in a [Graph]: a named transform, with an optional
// mesh for [KindMesh] nodes. Parent and children are stored as ids
// into the same graph, children in the order they were added.
type Node struct {
	Name string
	Kind Kinds

	// Pose is the transform relative to the parent.
	Pose Pose

	// Mesh is the geometry of a [KindMesh] node, nil otherwise.
	Mesh *Mesh

	parent   NodeID
	children []NodeID
}

// Parent returns the id of the parent node, or [NoNode].
func (nd *Node) Parent() NodeID {
	return nd.parent
}

// NumChildren returns the number of children.
func (nd *Node) NumChildren() int {
	return len(nd.children)
}

// Graph is an arena of nodes addressed by [NodeID].
// A node has at most one parent and the graph has no cycles,
// so it is a forest; a [Scene] uses one tree of it.
// Ids of removed nodes are recycled by later calls to New.
type Graph struct {
	nodes []*Node
	free  []NodeID
}

// New adds a new detached node and returns its id.
func (g *Graph) New(name string, kind Kinds) NodeID {
	nd := &Node{Name: name, Kind: kind, parent: NoNode}
	nd.Pose.Defaults()
	if n := len(g.free); n > 0 {
		id := g.free[n-1]
		g.free = g.free[:n-1]
		g.nodes[id] = nd
		return id
	}
	g.nodes = append(g.nodes, nd)
	return NodeID(len(g.nodes) - 1)
}

// NewMesh adds a new detached mesh node named after the mesh.
func (g *Graph) NewMesh(ms *Mesh) NodeID {
	id := g.New(ms.Name, KindMesh)
	g.nodes[id].Mesh = ms
	return id
}

// Valid returns whether id refers to a live node.
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id] != nil
}

// Node returns the node for the given id, or nil if not valid.
func (g *Graph) Node(id NodeID) *Node {
	if !g.Valid(id) {
		return nil
	}
	return g.nodes[id]
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	return len(g.nodes) - len(g.free)
}

// Parent returns the parent of the node, [NoNode] for roots
// and invalid ids.
func (g *Graph) Parent(id NodeID) NodeID {
	if !g.Valid(id) {
		return NoNode
	}
	return g.nodes[id].parent
}

// Children returns a copy of the children of the node, in order.
func (g *Graph) Children(id NodeID) []NodeID {
	if !g.Valid(id) {
		return nil
	}
	return slices.Clone(g.nodes[id].children)
}

// AddChild attaches child as the last child of parent.
// The child must be detached, and must not be parent or
// one of its ancestors.
func (g *Graph) AddChild(parent, child NodeID) error {
	if !g.Valid(parent) || !g.Valid(child) {
		return fmt.Errorf("%w: AddChild(%d, %d)", ErrInvalidNode, parent, child)
	}
	cn := g.nodes[child]
	if cn.parent != NoNode {
		return fmt.Errorf("%w: %q", ErrHasParent, cn.Name)
	}
	for p := parent; p != NoNode; p = g.nodes[p].parent {
		if p == child {
			return fmt.Errorf("%w: %q under %q", ErrCycle, cn.Name, g.nodes[parent].Name)
		}
	}
	cn.parent = parent
	pn := g.nodes[parent]
	pn.children = append(pn.children, child)
	return nil
}

// Detach removes the node from its parent, making it a root.
// The subtree under it is unchanged.
func (g *Graph) Detach(id NodeID) {
	nd := g.Node(id)
	if nd == nil || nd.parent == NoNode {
		return
	}
	pn := g.nodes[nd.parent]
	if i := slices.Index(pn.children, id); i >= 0 {
		pn.children = slices.Delete(pn.children, i, i+1)
	}
	nd.parent = NoNode
}

// Remove detaches the node and releases it with its whole subtree.
// It returns the meshes held by the removed nodes, so that the caller
// can release their GPU resources.
func (g *Graph) Remove(id NodeID) []*Mesh {
	if !g.Valid(id) {
		return nil
	}
	g.Detach(id)
	var meshes []*Mesh
	var rm func(id NodeID)
	rm = func(id NodeID) {
		nd := g.nodes[id]
		for _, c := range nd.children {
			rm(c)
		}
		if nd.Mesh != nil {
			meshes = append(meshes, nd.Mesh)
		}
		g.nodes[id] = nil
		g.free = append(g.free, id)
	}
	rm(id)
	return meshes
}

// ModelMatrix returns the world transform of the node, composed
// through its ancestor chain: M(node) = M(parent) · T · R · S,
// with the identity above the root. It is recomputed on every call.
func (g *Graph) ModelMatrix(id NodeID) mgl32.Mat4 {
	nd := g.Node(id)
	if nd == nil {
		return mgl32.Ident4()
	}
	local := nd.Pose.Matrix()
	if nd.parent == NoNode {
		return local
	}
	return g.ModelMatrix(nd.parent).Mul4(local)
}

// WorldPosition returns the position of the node's origin in world space.
func (g *Graph) WorldPosition(id NodeID) mgl32.Vec3 {
	return g.ModelMatrix(id).Col(3).Vec3()
}

// Walk visits the subtree at root in pre-order, children in insertion
// order. If fn returns [Break] the children of that node are skipped.
func (g *Graph) Walk(root NodeID, fn func(id NodeID, nd *Node) bool) {
	nd := g.Node(root)
	if nd == nil {
		return
	}
	if !fn(root, nd) {
		return
	}
	for _, c := range nd.children {
		g.Walk(c, fn)
	}
}

// WalkModel is like [Graph.Walk], additionally passing the world
// transform of each node, accumulated from parent on down.
// parent is the world transform of root's parent.
func (g *Graph) WalkModel(root NodeID, parent mgl32.Mat4, fn func(id NodeID, nd *Node, model mgl32.Mat4) bool) {
	nd := g.Node(root)
	if nd == nil {
		return
	}
	model := parent.Mul4(nd.Pose.Matrix())
	if !fn(root, nd, model) {
		return
	}
	for _, c := range nd.children {
		g.WalkModel(c, model, fn)
	}
}

// Path returns the slash-separated names from the root down to the node.
func (g *Graph) Path(id NodeID) string {
	nd := g.Node(id)
	if nd == nil {
		return ""
	}
	if nd.parent == NoNode {
		return "/" + nd.Name
	}
	return g.Path(nd.parent) + "/" + nd.Name
}
