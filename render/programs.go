// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"embed"
	"fmt"

	"github.com/hatchgl/hatch/gpu"
)

//go:embed shaders/*.glsl
var shaders embed.FS

// Program names, as reported in [gpu.ShaderBuildError].
const (
	ProgramMain  = "main"
	ProgramBlur  = "blur"
	ProgramSobel = "sobel"
	ProgramPost  = "post"
)

// programSources lists the vertex and fragment shader of each program.
var programSources = []struct {
	name, vertex, fragment string
}{
	{ProgramMain, "main.vert.glsl", "main.frag.glsl"},
	{ProgramBlur, "quad.vert.glsl", "blur.frag.glsl"},
	{ProgramSobel, "quad.vert.glsl", "sobel.frag.glsl"},
	{ProgramPost, "quad.vert.glsl", "post.frag.glsl"},
}

// Programs are the shader programs of the pipeline.
type Programs struct {
	Main  gpu.Program
	Blur  gpu.Program
	Sobel gpu.Program
	Post  gpu.Program
}

func (pg *Programs) byName(name string) *gpu.Program {
	switch name {
	case ProgramMain:
		return &pg.Main
	case ProgramBlur:
		return &pg.Blur
	case ProgramSobel:
		return &pg.Sobel
	}
	return &pg.Post
}

func shaderSource(name string) (string, error) {
	b, err := shaders.ReadFile("shaders/" + name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Build compiles and links every program. On error, which is a
// [*gpu.ShaderBuildError] for compile and link failures, no programs
// remain allocated.
func (pg *Programs) Build(dev gpu.Device) error {
	for _, ps := range programSources {
		vs, err := shaderSource(ps.vertex)
		if err != nil {
			pg.Release(dev)
			return err
		}
		fs, err := shaderSource(ps.fragment)
		if err != nil {
			pg.Release(dev)
			return err
		}
		p, err := dev.CreateProgram(ps.name, vs, fs)
		if err != nil {
			pg.Release(dev)
			return fmt.Errorf("render.Programs.Build: %w", err)
		}
		*pg.byName(ps.name) = p
	}
	return nil
}

// Release deletes all built programs.
func (pg *Programs) Release(dev gpu.Device) {
	for _, ps := range programSources {
		p := pg.byName(ps.name)
		if *p != 0 {
			dev.DeleteProgram(*p)
			*p = 0
		}
	}
}
