// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera defaults. The near and far planes bound the depth range
// of every scene; imported content is assumed to fit within them.
const (
	DefaultFOV  = 40
	MinFOV      = 21
	MaxFOV      = 120
	DefaultNear = 0.01
	DefaultFar  = 100
)

// LookAxes are the axes a [Camera] can look around.
type LookAxes int32

const (
	// LookHorizontal turns about the up axis.
	LookHorizontal LookAxes = iota

	// LookVertical turns about the right axis.
	LookVertical
)

// ParseLookAxis parses "horizontal" or "vertical".
func ParseLookAxis(s string) (LookAxes, error) {
	switch strings.ToLower(s) {
	case "horizontal":
		return LookHorizontal, nil
	case "vertical":
		return LookVertical, nil
	}
	return 0, fmt.Errorf("xyz.ParseLookAxis: unknown axis %q", s)
}

// Directions are the directions a [Camera] can move in.
type Directions int32

const (
	Forward Directions = iota
	Backward
	Left
	Right
	Up
	Down
)

var directionNames = [...]string{"forward", "backward", "left", "right", "up", "down"}

func (d Directions) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Directions(%d)", int32(d))
}

// ParseDirection parses one of forward, backward, left, right, up, down.
func ParseDirection(s string) (Directions, error) {
	for i, nm := range directionNames {
		if strings.EqualFold(s, nm) {
			return Directions(i), nil
		}
	}
	return 0, fmt.Errorf("xyz.ParseDirection: unknown direction %q", s)
}

// Camera defines the properties of a first-person camera: its Pose
// gives the eye position and orientation, from which the forward and
// right vectors are derived. The world up vector is fixed.
type Camera struct {
	Pose

	// FOV is the vertical field of view in degrees, within [MinFOV, MaxFOV].
	FOV float32

	// Forward is the unit view direction, derived from the rotation.
	Forward mgl32.Vec3

	// Up is the world up direction.
	Up mgl32.Vec3

	// Right is Up × Forward.
	Right mgl32.Vec3

	// Near and Far are the clipping plane distances.
	Near float32
	Far  float32
}

// NewCamera returns a camera at the origin looking down +Z.
func NewCamera() *Camera {
	cm := &Camera{}
	cm.Defaults()
	return cm
}

// Defaults sets the default field of view, clipping planes and orientation.
func (cm *Camera) Defaults() {
	cm.Pose.Defaults()
	cm.FOV = DefaultFOV
	cm.Near = DefaultNear
	cm.Far = DefaultFar
	cm.Up = mgl32.Vec3{0, 1, 0}
	cm.UpdateVectors()
}

// UpdateVectors recomputes Forward and Right from the current rotation.
func (cm *Camera) UpdateVectors() {
	cm.Forward = cm.Quat.Rotate(mgl32.Vec3{0, 0, 1}).Normalize()
	cm.Right = cm.Up.Cross(cm.Forward)
}

// Look turns the camera by -degrees about its local up axis
// (horizontal) or its local right axis (vertical).
func (cm *Camera) Look(axis LookAxes, degrees float32) {
	switch axis {
	case LookHorizontal:
		cm.RotateOnAxis(0, 1, 0, -degrees)
	case LookVertical:
		cm.RotateOnAxis(1, 0, 0, -degrees)
	}
	cm.UpdateVectors()
}

// Move moves the camera position by amount along the given direction.
func (cm *Camera) Move(dir Directions, amount float32) {
	var mv mgl32.Vec3
	switch dir {
	case Forward:
		mv = cm.Forward
	case Backward:
		mv = cm.Forward.Mul(-1)
	case Left:
		mv = cm.Right.Mul(-1)
	case Right:
		mv = cm.Right
	case Up:
		mv = cm.Up
	case Down:
		mv = cm.Up.Mul(-1)
	}
	cm.Pos = cm.Pos.Add(mv.Mul(amount))
	cm.UpdateVectors()
}

// Zoom changes the field of view by delta degrees,
// clamped to [MinFOV, MaxFOV].
func (cm *Camera) Zoom(delta float32) {
	cm.FOV = math32.Max(MinFOV, math32.Min(MaxFOV, cm.FOV+delta))
}

// ViewMatrix returns the view matrix looking from the camera
// position along Forward.
func (cm *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(cm.Pos, cm.Pos.Add(cm.Forward), cm.Up)
}

// ProjectionMatrix returns the perspective projection for a
// viewport of the given height and width.
func (cm *Camera) ProjectionMatrix(height, width float32) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = width / height
	}
	return mgl32.Perspective(mgl32.DegToRad(cm.FOV), aspect, cm.Near, cm.Far)
}

