// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose contains the full description of position and orientation,
// always relative to the parent element. It is the transform embedded
// in every spatial entity: graph nodes and the [Camera].
type Pose struct {

	// Pos is the position of center of element (relative to parent)
	Pos mgl32.Vec3

	// Scale is the scale of the element (relative to parent)
	Scale mgl32.Vec3

	// Quat is the rotation of element (relative to parent)
	Quat mgl32.Quat
}

// NewPose returns a Pose with identity rotation and unit scale.
func NewPose() Pose {
	ps := Pose{}
	ps.Defaults()
	return ps
}

// Defaults sets defaults only if current values are nil
func (ps *Pose) Defaults() {
	if ps.Scale == (mgl32.Vec3{}) {
		ps.Scale = mgl32.Vec3{1, 1, 1}
	}
	if ps.Quat == (mgl32.Quat{}) {
		ps.Quat = mgl32.QuatIdent()
	}
}

// String is the stringer method
func (ps *Pose) String() string {
	return fmt.Sprintf("Pos: %v; Scale: %v; Quat: %v", ps.Pos, ps.Scale, ps.Quat)
}

// Matrix returns the local transform: Translate · Rotate · Scale.
func (ps *Pose) Matrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(ps.Pos[0], ps.Pos[1], ps.Pos[2])
	sc := mgl32.Scale3D(ps.Scale[0], ps.Scale[1], ps.Scale[2])
	return tr.Mul4(ps.Quat.Mat4()).Mul4(sc)
}

// SetPos sets the position.
func (ps *Pose) SetPos(x, y, z float32) {
	ps.Pos = mgl32.Vec3{x, y, z}
}

// SetScale sets the scale.
func (ps *Pose) SetScale(x, y, z float32) {
	ps.Scale = mgl32.Vec3{x, y, z}
}

// SetQuat sets the rotation from quaternion components,
// in the x, y, z, w order used by glTF.
func (ps *Pose) SetQuat(x, y, z, w float32) {
	ps.Quat = mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// SetAxisRotation sets the rotation of the pose,
// from local axis and angle in degrees.
func (ps *Pose) SetAxisRotation(x, y, z, angle float32) {
	ps.Quat = mgl32.QuatRotate(mgl32.DegToRad(angle), mgl32.Vec3{x, y, z}.Normalize())
}

// SetEulerRotation sets the rotation from euler angles in degrees,
// applied in X, Y, Z order. The rotation is stored as a quaternion.
func (ps *Pose) SetEulerRotation(x, y, z float32) {
	ps.Quat = mgl32.AnglesToQuat(mgl32.DegToRad(x), mgl32.DegToRad(y), mgl32.DegToRad(z), mgl32.XYZ)
}

// RotateOnAxis rotates the pose about the given local axis,
// by the given number of degrees.
func (ps *Pose) RotateOnAxis(x, y, z, angle float32) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(angle), mgl32.Vec3{x, y, z}.Normalize())
	ps.Quat = ps.Quat.Mul(rot).Normalize()
}
