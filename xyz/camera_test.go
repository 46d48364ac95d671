// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/base/tolassert"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaults(t *testing.T) {
	cm := NewCamera()
	assert.Equal(t, float32(DefaultFOV), cm.FOV)
	assert.Equal(t, float32(DefaultNear), cm.Near)
	assert.Equal(t, float32(DefaultFar), cm.Far)
	tolassert.EqualVec3(t, mgl32.Vec3{0, 0, 1}, cm.Forward)
	tolassert.EqualVec3(t, mgl32.Vec3{1, 0, 0}, cm.Right)
}

func TestCameraLookMove(t *testing.T) {
	cm := NewCamera()
	cm.Look(LookHorizontal, 90)
	tolassert.EqualVec3(t, mgl32.Vec3{-1, 0, 0}, cm.Forward)
	tolassert.EqualVec3(t, mgl32.Vec3{0, 0, 1}, cm.Right)

	cm.Move(Forward, 2)
	tolassert.EqualVec3(t, mgl32.Vec3{-2, 0, 0}, cm.Pos)
	cm.Move(Right, 1)
	tolassert.EqualVec3(t, mgl32.Vec3{-2, 0, 1}, cm.Pos)
	cm.Move(Up, 3)
	cm.Move(Down, 1)
	tolassert.EqualVec3(t, mgl32.Vec3{-2, 2, 1}, cm.Pos)
	cm.Move(Backward, 2)
	cm.Move(Left, 1)
	tolassert.EqualVec3(t, mgl32.Vec3{0, 2, 0}, cm.Pos)

	cm = NewCamera()
	cm.Look(LookVertical, 90)
	tolassert.EqualVec3(t, mgl32.Vec3{0, 1, 0}, cm.Forward)
	tolassert.Equal(t, 1, cm.Forward.Len())
}

func TestCameraZoomClamp(t *testing.T) {
	cm := NewCamera()
	cm.Zoom(1000)
	assert.Equal(t, float32(MaxFOV), cm.FOV)
	cm.Zoom(-1000)
	assert.Equal(t, float32(MinFOV), cm.FOV)

	rnd := rand.New(rand.NewSource(1))
	for range 1000 {
		cm.Zoom(rnd.Float32()*80 - 40)
		assert.GreaterOrEqual(t, cm.FOV, float32(MinFOV))
		assert.LessOrEqual(t, cm.FOV, float32(MaxFOV))
	}
}

func TestCameraMatrices(t *testing.T) {
	cm := NewCamera()
	cm.SetPos(0, 0, 4)
	cm.SetAxisRotation(0, 1, 0, 180)
	cm.UpdateVectors()
	tolassert.EqualVec3(t, mgl32.Vec3{0, 0, -1}, cm.Forward)

	origin := cm.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	tolassert.EqualVec3(t, mgl32.Vec3{0, 0, -4}, origin)

	pr := cm.ProjectionMatrix(100, 200)
	tolassert.Equal(t, pr[5], 2*pr[0])
	tolassert.EqualMat4(t, mgl32.Perspective(mgl32.DegToRad(DefaultFOV), 2, DefaultNear, DefaultFar), pr)
}

func TestParseCameraInput(t *testing.T) {
	ax, err := ParseLookAxis("Vertical")
	assert.NoError(t, err)
	assert.Equal(t, LookVertical, ax)
	_, err = ParseLookAxis("diagonal")
	assert.Error(t, err)

	dir, err := ParseDirection("backward")
	assert.NoError(t, err)
	assert.Equal(t, Backward, dir)
	assert.Equal(t, "backward", dir.String())
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
