// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen && ((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package glgpu

import (
	"image"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hatchgl/hatch/base/errors"
)

// note: this file contains the glfw dependencies, for desktop platform builds.
// Other hosts need to create their own context and call [New].

// Init initializes glfw. Must be called before any window is made.
// IMPORTANT: must be called on the main initial thread!
func Init() error {
	return errors.Log(glfw.Init())
}

// Terminate shuts down glfw -- call as last thing before quitting.
// IMPORTANT: must be called on the main initial thread!
func Terminate() {
	glfw.Terminate()
}

// Window is a glfw window with a current OpenGL 4.1 core context
// and the [Device] drawing into it.
type Window struct {
	*glfw.Window
	Device *Device
}

// FramebufferSize returns the size of the drawing surface in pixels,
// which differs from the window size on high-DPI displays.
func (w *Window) FramebufferSize() image.Point {
	x, y := w.GetFramebufferSize()
	return image.Point{x, y}
}

// PollEvents processes pending events and returns false once
// the window has been asked to close.
func (w *Window) PollEvents() bool {
	if w.ShouldClose() {
		return false
	}
	glfw.PollEvents()
	return true
}

// Destroy destroys the window and terminates glfw.
func (w *Window) Destroy() {
	w.Window.Destroy()
	Terminate()
}

// GLFWCreateWindow makes a new window with an OpenGL 4.1 core context,
// makes the context current and initializes a [Device] on it.
// resize, if non-nil, is called with the new framebuffer size
// whenever the drawing surface resizes.
func GLFWCreateWindow(size image.Point, title string, resize func(size image.Point)) (*Window, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(size.X, size.Y, title, nil, nil)
	if err != nil {
		Terminate()
		return nil, errors.Log(err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := New()
	if err != nil {
		window.Destroy()
		Terminate()
		return nil, errors.Log(err)
	}
	w := &Window{Window: window, Device: dev}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if resize != nil && width > 0 && height > 0 {
			resize(image.Point{width, height})
		}
	})
	return w, nil
}
