// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Themes select the clear color palette.
type Themes string

const (
	// ThemeAuto follows the host's dark mode preference.
	ThemeAuto  Themes = "auto"
	ThemeDark  Themes = "dark"
	ThemeLight Themes = "light"
)

// Valid returns whether the theme is one of the known themes.
// The empty theme is treated as auto.
func (th Themes) Valid() bool {
	switch th {
	case "", ThemeAuto, ThemeDark, ThemeLight:
		return true
	}
	return false
}

// IsDark returns whether the theme is dark, using hostDark for auto.
func (th Themes) IsDark(hostDark bool) bool {
	switch th {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	}
	return hostDark
}

// Options are the stylization settings of a [Renderer]. They are
// plain fields read at the start of every frame, so they can be
// changed freely between frames.
type Options struct {

	// UseHatching enables the crosshatch shading term.
	UseHatching bool `toml:"use_hatching" yaml:"use_hatching"`

	// UseColorQuantization quantizes the shaded color into
	// ColorQuantity bands per channel.
	UseColorQuantization bool `toml:"use_color_quantization" yaml:"use_color_quantization"`

	ColorQuantity int `toml:"color_quantity" yaml:"color_quantity"`

	// HatchingSize is the size in pixels of one repeat of the
	// hatch line textures: larger is coarser.
	HatchingSize float32 `toml:"hatching_size" yaml:"hatching_size"`

	// AmbientIntensity is the base light level.
	AmbientIntensity float32 `toml:"ambient_intensity" yaml:"ambient_intensity"`

	// UseSobel enables the edge detection pass.
	UseSobel bool `toml:"use_sobel" yaml:"use_sobel"`

	// SobelThreshold is the gradient magnitude above which
	// a pixel is an edge.
	SobelThreshold float32 `toml:"sobel_threshold" yaml:"sobel_threshold"`

	// UseBlur enables the blur pass before edge detection and composite.
	UseBlur bool `toml:"use_blur" yaml:"use_blur"`

	// LinesColor is the RGB color of edges and hatch lines.
	LinesColor mgl32.Vec3 `toml:"lines_color" yaml:"lines_color,flow"`

	Theme Themes `toml:"theme" yaml:"theme"`

	// MaxTextureSize limits imported texture dimensions.
	MaxTextureSize int `toml:"max_texture_size" yaml:"max_texture_size"`
}

// DefaultOptions returns the default stylization.
func DefaultOptions() Options {
	return Options{
		UseHatching:          true,
		UseColorQuantization: true,
		ColorQuantity:        4,
		HatchingSize:         8,
		AmbientIntensity:     0.3,
		UseSobel:             true,
		SobelThreshold:       0.25,
		UseBlur:              true,
		LinesColor:           mgl32.Vec3{0.05, 0.05, 0.08},
		Theme:                ThemeAuto,
		MaxTextureSize:       4096,
	}
}

// Validate returns an error for option values that cannot be rendered.
func (op *Options) Validate() error {
	if !op.Theme.Valid() {
		return fmt.Errorf("render.Options: unknown theme %q", op.Theme)
	}
	if op.ColorQuantity < 1 {
		return fmt.Errorf("render.Options: color_quantity %d must be at least 1", op.ColorQuantity)
	}
	if op.HatchingSize <= 0 {
		return fmt.Errorf("render.Options: hatching_size %g must be positive", op.HatchingSize)
	}
	if op.MaxTextureSize < 0 {
		return fmt.Errorf("render.Options: max_texture_size %d must not be negative", op.MaxTextureSize)
	}
	return nil
}

// optionsFormat returns "toml" or "yaml" from the file extension.
func optionsFormat(fname string) (string, error) {
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("render: options file %q must be .toml, .yaml or .yml", fname)
}

// DecodeOptions decodes options in the given format, "toml" or "yaml".
// Fields absent from data keep their default values.
func DecodeOptions(data []byte, format string) (Options, error) {
	op := DefaultOptions()
	var err error
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &op)
	case "yaml":
		err = yaml.Unmarshal(data, &op)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return op, fmt.Errorf("render.DecodeOptions: %w", err)
	}
	return op, op.Validate()
}

// LoadOptions loads options from a .toml or .yaml file.
func LoadOptions(fname string) (Options, error) {
	format, err := optionsFormat(fname)
	if err != nil {
		return DefaultOptions(), err
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return DefaultOptions(), err
	}
	op, err := DecodeOptions(data, format)
	if err != nil {
		return op, fmt.Errorf("%s: %w", fname, err)
	}
	return op, nil
}

// SaveOptions saves options to a .toml or .yaml file.
func SaveOptions(op Options, fname string) error {
	format, err := optionsFormat(fname)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if format == "toml" {
		err = toml.NewEncoder(&b).Encode(op)
	} else {
		enc := yaml.NewEncoder(&b)
		enc.SetIndent(2)
		err = enc.Encode(op)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("render.SaveOptions: %w", err)
	}
	return os.WriteFile(fname, b.Bytes(), 0o644)
}
