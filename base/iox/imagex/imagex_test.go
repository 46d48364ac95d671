// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, im image.Image) []byte {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, im))
	return b.Bytes()
}

func TestDecodeSniff(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	im.Set(1, 1, color.NRGBA{10, 20, 30, 128})
	data := encodePNG(t, im)

	f, err := Sniff(data)
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	dec, f, err := Decode(data, "")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, image.Pt(3, 2), dec.Bounds().Size())
	_, _, _, a := dec.At(0, 0).RGBA()
	assert.Less(t, a, uint32(0xffff))

	_, _, err = Decode([]byte("not an image"), "")
	assert.Error(t, err)
	_, _, err = Decode(data, "text/plain")
	assert.Error(t, err)
}

func TestMimeToFormat(t *testing.T) {
	for mime, want := range map[string]Formats{
		"image/png":  PNG,
		"image/jpeg": JPEG,
		"image/webp": WebP,
		"IMAGE/BMP":  BMP,
	} {
		f, err := MimeToFormat(mime)
		assert.NoError(t, err, mime)
		assert.Equal(t, want, f, mime)
	}
	assert.True(t, PNG.HasAlpha())
	assert.False(t, JPEG.HasAlpha())
}

func TestFitSize(t *testing.T) {
	assert.Equal(t, image.Pt(100, 50), FitSize(image.Pt(100, 50), 0))
	assert.Equal(t, image.Pt(100, 50), FitSize(image.Pt(100, 50), 100))
	assert.Equal(t, image.Pt(64, 32), FitSize(image.Pt(128, 64), 64))
	assert.Equal(t, image.Pt(1, 64), FitSize(image.Pt(2, 4096), 64))
}

func TestPixels(t *testing.T) {
	im := image.NewRGBA(image.Rect(0, 0, 2, 1))
	im.Set(0, 0, color.RGBA{1, 2, 3, 4})
	im.Set(1, 0, color.RGBA{5, 6, 7, 8})
	assert.Equal(t, []byte{1, 2, 3, 5, 6, 7}, RGBPixels(im))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, RGBAPixels(im))

	sub := im.SubImage(image.Rect(1, 0, 2, 1)).(*image.RGBA)
	assert.Equal(t, []byte{5, 6, 7, 8}, RGBAPixels(AsRGBA(sub)))

	rs := Resize(im, image.Pt(4, 2))
	assert.Equal(t, image.Pt(4, 2), rs.Rect.Size())
}
