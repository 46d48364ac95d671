// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hatchgl/hatch/gpu/glgpu"
	"github.com/hatchgl/hatch/render"
	"github.com/hatchgl/hatch/xyz"
)

const (
	// moveSpeed is in world units per second.
	moveSpeed = 2

	// lookSpeed is in degrees per pixel of mouse drag.
	lookSpeed = 0.2

	// zoomSpeed is in degrees of field of view per scroll step.
	zoomSpeed = 2
)

var moveKeys = map[glfw.Key]xyz.Directions{
	glfw.KeyW: xyz.Forward,
	glfw.KeyS: xyz.Backward,
	glfw.KeyA: xyz.Left,
	glfw.KeyD: xyz.Right,
	glfw.KeyQ: xyz.Down,
	glfw.KeyE: xyz.Up,
}

// controls forwards keyboard and mouse input to the active camera.
type controls struct {
	win *glgpu.Window
	r   *render.Renderer

	dragging   bool
	lastX      float64
	lastY      float64
	screenshot bool
}

func newControls(win *glgpu.Window, r *render.Renderer) *controls {
	ct := &controls{win: win, r: r}
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyP && action == glfw.Press {
			ct.screenshot = true
		}
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		ct.dragging = action == glfw.Press
		ct.lastX, ct.lastY = win.GetCursorPos()
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if !ct.dragging {
			return
		}
		cam := r.Camera()
		if cam == nil {
			return
		}
		cam.Look(xyz.LookHorizontal, float32(x-ct.lastX)*lookSpeed)
		cam.Look(xyz.LookVertical, float32(y-ct.lastY)*lookSpeed)
		ct.lastX, ct.lastY = x, y
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if cam := r.Camera(); cam != nil {
			cam.Zoom(-float32(yoff) * zoomSpeed)
		}
	})
	return ct
}

// update moves the camera for the keys held down over dt seconds.
func (ct *controls) update(dt float32) {
	cam := ct.r.Camera()
	if cam == nil {
		return
	}
	for key, dir := range moveKeys {
		if ct.win.GetKey(key) == glfw.Press {
			cam.Move(dir, moveSpeed*dt)
		}
	}
}
