// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagex decodes, encodes and converts the images used
// for textures and screenshots.
package imagex

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats are the supported image encoding / decoding formats
type Formats int32

// The supported image encoding formats
const (
	None Formats = iota
	PNG
	JPEG
	GIF
	TIFF
	BMP
	WebP
)

var formatNames = [...]string{"none", "png", "jpeg", "gif", "tiff", "bmp", "webp"}

func (f Formats) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Formats(%d)", int32(f))
}

// HasAlpha returns whether the encoding can carry an alpha channel.
func (f Formats) HasAlpha() bool {
	switch f {
	case PNG, GIF, TIFF, WebP:
		return true
	}
	return false
}

// ExtToFormat returns a Format based on a filename extension,
// which can start with a . or not
func ExtToFormat(ext string) (Formats, error) {
	if len(ext) == 0 {
		return None, errors.New("ExtToFormat: ext is empty")
	}
	if ext[0] == '.' {
		ext = ext[1:]
	}
	ext = strings.ToLower(ext)
	switch ext {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	case "webp":
		return WebP, nil
	}
	return None, fmt.Errorf("ExtToFormat: extension %q not recognized", ext)
}

// MimeToFormat returns a Format based on a MIME type such as "image/png".
func MimeToFormat(mime string) (Formats, error) {
	sub, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
	if !ok {
		return None, fmt.Errorf("MimeToFormat: %q is not an image type", mime)
	}
	if sub == "x-ms-bmp" {
		sub = "bmp"
	}
	return ExtToFormat(sub)
}

// Sniff returns the Format of encoded image data from its leading bytes.
func Sniff(data []byte) (Formats, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return None, err
	}
	if kind == filetype.Unknown {
		return None, errors.New("Sniff: unknown file type")
	}
	return MimeToFormat(kind.MIME.Value)
}

// Read reads an image to the given reader,
// The format is inferred automatically,
// and is returned using the Formats enum.
// png, jpeg, gif, tiff, bmp, and webp are supported.
func Read(r io.Reader) (image.Image, Formats, error) {
	im, ext, err := image.Decode(r)
	if err != nil {
		return im, None, err
	}
	f, err := ExtToFormat(ext)
	return im, f, err
}

// Decode decodes an image from encoded data. The format is taken
// from the MIME type if given, and otherwise sniffed from the data.
// The returned format is the one the data actually decoded as.
func Decode(data []byte, mime string) (image.Image, Formats, error) {
	want := None
	if mime != "" {
		f, err := MimeToFormat(mime)
		if err != nil {
			return nil, None, err
		}
		want = f
	} else if f, err := Sniff(data); err == nil {
		want = f
	}
	im, f, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, None, fmt.Errorf("imagex.Decode (%v): %w", want, err)
	}
	return im, f, nil
}

// Save saves the image to the given filename,
// with the format inferred from the filename.
// png, jpeg, gif, tiff, and bmp are supported.
func Save(im image.Image, filename string) error {
	ext := filepath.Ext(filename)
	f, err := ExtToFormat(ext)
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	bw := bufio.NewWriter(file)
	if err := Write(im, bw, f); err != nil {
		return err
	}
	return bw.Flush()
}

// Write writes the image to the given writer using the given foramt.
// png, jpeg, gif, tiff, and bmp are supported.
func Write(im image.Image, w io.Writer, f Formats) error {
	switch f {
	case PNG:
		return png.Encode(w, im)
	case JPEG:
		return jpeg.Encode(w, im, &jpeg.Options{Quality: 90})
	case GIF:
		return gif.Encode(w, im, nil)
	case TIFF:
		return tiff.Encode(w, im, nil)
	case BMP:
		return bmp.Encode(w, im)
	default:
		return fmt.Errorf("iox/imagex.Save: format %q not valid", f)
	}
}

// CloneAsRGBA returns an RGBA copy of the supplied image,
// with bounds starting at the origin.
func CloneAsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	bounds := src.Bounds()
	img := image.NewRGBA(image.Rectangle{Max: bounds.Size()})
	draw.Draw(img, img.Bounds(), src, bounds.Min, draw.Src)
	return img
}

// AsRGBA returns the image as an RGBA: if it already is one, at the
// origin, then it returns that image directly. Otherwise it returns a clone.
func AsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	return CloneAsRGBA(src)
}

// FitSize returns size scaled down to fit within limit in both
// dimensions, preserving aspect ratio. It returns size unchanged
// if it already fits or limit is not positive.
func FitSize(size image.Point, limit int) image.Point {
	if limit <= 0 || (size.X <= limit && size.Y <= limit) {
		return size
	}
	if size.X >= size.Y {
		return image.Pt(limit, max(1, size.Y*limit/size.X))
	}
	return image.Pt(max(1, size.X*limit/size.Y), limit)
}

// Resize returns the image scaled to the given size,
// using Catmull-Rom filtering.
func Resize(src image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// RGBPixels returns the pixels of the image tightly packed
// as 8-bit RGB, dropping alpha.
func RGBPixels(im *image.RGBA) []byte {
	sz := im.Rect.Size()
	pix := make([]byte, 0, sz.X*sz.Y*3)
	for y := range sz.Y {
		row := im.Pix[y*im.Stride : y*im.Stride+sz.X*4]
		for x := 0; x < len(row); x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}
	return pix
}

// RGBAPixels returns the pixels of the image tightly packed as 8-bit RGBA.
func RGBAPixels(im *image.RGBA) []byte {
	sz := im.Rect.Size()
	if im.Stride == sz.X*4 {
		return im.Pix[:sz.Y*im.Stride]
	}
	pix := make([]byte, 0, sz.X*sz.Y*4)
	for y := range sz.Y {
		pix = append(pix, im.Pix[y*im.Stride:y*im.Stride+sz.X*4]...)
	}
	return pix
}
