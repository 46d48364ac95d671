// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/hatchgl/hatch/base/iox/imagex"
	"github.com/hatchgl/hatch/gpu"
)

// HatchLevels is the number of hatch line textures,
// from sparse to dense.
const HatchLevels = 3

// HatchTextureSize is the width and height of the hatch textures.
const HatchTextureSize = 128

// hatchUnit is the first texture unit of the hatch textures,
// after the base color texture.
const hatchUnit = 1

// HatchImage returns the hatch line image for the given level:
// white with dark diagonal lines, spaced closer for higher levels,
// with crossing lines at the last level. Lines are softened with a
// gaussian blur so they filter well when minified.
func HatchImage(level, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	spacing := max(size/(8<<min(level, HatchLevels-2)), 2)
	const width = 1
	for y := range size {
		for x := range size {
			on := (x+y)%spacing < width
			if level >= HatchLevels-1 {
				on = on || (x-y+size)%spacing < width
			}
			c := color.RGBA{255, 255, 255, 255}
			if on {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return blur.Gaussian(img, 0.6)
}

// createHatchTextures creates the repeating hatch line textures.
func createHatchTextures(dev gpu.Device) ([HatchLevels]gpu.Texture, error) {
	var txs [HatchLevels]gpu.Texture
	for lev := range HatchLevels {
		img := HatchImage(lev, HatchTextureSize)
		desc := gpu.TextureDesc{
			Size:      img.Rect.Size(),
			Format:    gpu.RGBA8,
			MinFilter: gpu.LinearMipmapLinear,
			MagFilter: gpu.Linear,
			WrapS:     gpu.Repeat,
			WrapT:     gpu.Repeat,
			Mipmaps:   true,
		}
		tx, err := dev.CreateTexture(desc, imagex.RGBAPixels(img))
		if err != nil {
			for _, t := range txs[:lev] {
				dev.DeleteTexture(t)
			}
			return [HatchLevels]gpu.Texture{}, fmt.Errorf("render: creating hatch texture %d: %w", lev, err)
		}
		txs[lev] = tx
	}
	return txs, nil
}
