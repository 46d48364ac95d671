// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/base/tolassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseMatrix(t *testing.T) {
	ps := NewPose()
	tolassert.EqualMat4(t, mgl32.Ident4(), ps.Matrix())

	ps.SetPos(1, 2, 3)
	ps.SetAxisRotation(0, 0, 1, 90)
	ps.SetScale(2, 2, 2)

	// scale first, then rotate, then translate
	pt := ps.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	tolassert.EqualVec3(t, mgl32.Vec3{1, 4, 3}, pt)
}

func TestPoseEulerIsQuat(t *testing.T) {
	a := NewPose()
	a.SetEulerRotation(0, 90, 0)
	b := NewPose()
	b.SetAxisRotation(0, 1, 0, 90)
	tolassert.EqualMat4(t, b.Matrix(), a.Matrix())
}

func TestModelMatrixComposition(t *testing.T) {
	var g Graph
	root := g.New("root", KindGroup)
	mid := g.New("mid", KindGroup)
	leaf := g.New("leaf", KindGroup)
	require.NoError(t, g.AddChild(root, mid))
	require.NoError(t, g.AddChild(mid, leaf))

	g.Node(root).Pose.SetPos(10, 0, 0)
	g.Node(mid).Pose.SetAxisRotation(0, 1, 0, 90)
	g.Node(mid).Pose.SetScale(2, 1, 1)
	g.Node(leaf).Pose.SetPos(0, 0, 1)
	g.Node(leaf).Pose.SetQuat(0, 0, 0.7071068, 0.7071068)

	for _, id := range []NodeID{mid, leaf} {
		nd := g.Node(id)
		p := g.ModelMatrix(nd.Parent())
		local := mgl32.Translate3D(nd.Pose.Pos[0], nd.Pose.Pos[1], nd.Pose.Pos[2]).
			Mul4(nd.Pose.Quat.Mat4()).
			Mul4(mgl32.Scale3D(nd.Pose.Scale[0], nd.Pose.Scale[1], nd.Pose.Scale[2]))
		tolassert.EqualMat4(t, p.Mul4(local), g.ModelMatrix(id), g.Path(id))
	}
	tolassert.EqualMat4(t, g.Node(root).Pose.Matrix(), g.ModelMatrix(root))

	// leaf origin (0,0,1): mid scales x only, rotates z onto x, root adds 10
	tolassert.EqualVec3(t, mgl32.Vec3{11, 0, 0}, g.WorldPosition(leaf))
}

func TestDetachKeepsSiblings(t *testing.T) {
	var g Graph
	root := g.New("root", KindGroup)
	a := g.New("a", KindGroup)
	b := g.New("b", KindGroup)
	bc := g.New("bc", KindGroup)
	require.NoError(t, g.AddChild(root, a))
	require.NoError(t, g.AddChild(root, b))
	require.NoError(t, g.AddChild(b, bc))
	g.Node(root).Pose.SetPos(1, 2, 3)
	g.Node(a).Pose.SetPos(0, 1, 0)
	g.Node(b).Pose.SetPos(5, 0, 0)

	before := g.ModelMatrix(a)
	g.Detach(b)
	assert.Equal(t, before, g.ModelMatrix(a))
	assert.Equal(t, []NodeID{a}, g.Children(root))
	assert.Equal(t, NoNode, g.Parent(b))
	assert.Equal(t, b, g.Parent(bc))
	tolassert.EqualVec3(t, mgl32.Vec3{5, 0, 0}, g.WorldPosition(bc))
}

func TestAddChildErrors(t *testing.T) {
	var g Graph
	a := g.New("a", KindGroup)
	b := g.New("b", KindGroup)
	c := g.New("c", KindGroup)
	require.NoError(t, g.AddChild(a, b))
	require.NoError(t, g.AddChild(b, c))

	assert.ErrorIs(t, g.AddChild(c, a), ErrCycle)
	g.Detach(b)
	assert.ErrorIs(t, g.AddChild(c, b), ErrCycle)
	assert.ErrorIs(t, g.AddChild(a, c), ErrHasParent)
	assert.ErrorIs(t, g.AddChild(a, 99), ErrInvalidNode)
	assert.ErrorIs(t, g.AddChild(NoNode, b), ErrInvalidNode)
}

func TestRemoveRecyclesIDs(t *testing.T) {
	var g Graph
	root := g.New("root", KindGroup)
	sub := g.New("sub", KindGroup)
	ms := NewMesh("m")
	leaf := g.NewMesh(ms)
	require.NoError(t, g.AddChild(root, sub))
	require.NoError(t, g.AddChild(sub, leaf))
	assert.Equal(t, 3, g.Len())

	meshes := g.Remove(sub)
	assert.Equal(t, []*Mesh{ms}, meshes)
	assert.Equal(t, 1, g.Len())
	assert.False(t, g.Valid(sub))
	assert.False(t, g.Valid(leaf))
	assert.Empty(t, g.Children(root))

	n := g.New("new", KindGroup)
	assert.True(t, n == sub || n == leaf)
	assert.Equal(t, NoNode, g.Parent(n))
	assert.Equal(t, 0, g.Node(n).NumChildren())
}

func TestWalkOrder(t *testing.T) {
	var g Graph
	root := g.New("root", KindGroup)
	a := g.New("a", KindGroup)
	b := g.New("b", KindGroup)
	a1 := g.New("a1", KindGroup)
	a2 := g.New("a2", KindGroup)
	require.NoError(t, g.AddChild(root, a))
	require.NoError(t, g.AddChild(root, b))
	require.NoError(t, g.AddChild(a, a1))
	require.NoError(t, g.AddChild(a, a2))

	var names []string
	g.Walk(root, func(id NodeID, nd *Node) bool {
		names = append(names, nd.Name)
		return Continue
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)

	names = nil
	g.Walk(root, func(id NodeID, nd *Node) bool {
		names = append(names, nd.Name)
		if id == a {
			return Break
		}
		return Continue
	})
	assert.Equal(t, []string{"root", "a", "b"}, names)
	assert.Equal(t, "/root/a/a2", g.Path(a2))
}
