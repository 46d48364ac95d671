// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"slices"

	"github.com/hatchgl/hatch/base/iox/imagex"
	"golang.org/x/sync/errgroup"
)

// decodedImage is an image decoded ahead of texture creation.
type decodedImage struct {
	RGBA *image.RGBA

	// Format is the encoding the image was decoded from.
	// Its HasAlpha marks the texture as carrying alpha.
	Format imagex.Formats
}

// loadBuffers fetches every buffer referenced by a buffer view,
// concurrently. Unreferenced buffers are not fetched.
func (st *importState) loadBuffers(ctx context.Context) error {
	doc := st.doc
	st.buffers = make([][]byte, len(doc.Buffers))
	used := make([]bool, len(doc.Buffers))
	for i := range doc.BufferViews {
		used[doc.BufferViews[i].Buffer] = true
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for bi := range doc.Buffers {
		if !used[bi] {
			slog.Warn("gltf.Import: ignoring unreferenced buffer", "doc", st.docPath, "buffer", bi)
			continue
		}
		bf := &doc.Buffers[bi]
		if bf.URI == "" {
			return invalidf("buffer %d has no uri; binary glTF is not supported", bi)
		}
		g.Go(func() error {
			b, _, err := fetchURI(gctx, st.im.Fetcher, st.docPath, bf.URI)
			if err != nil {
				return err
			}
			if len(b) < bf.ByteLength {
				return &AssetLoadError{URI: resolveURI(st.docPath, bf.URI), Err: fmt.Errorf("got %d bytes, want %d", len(b), bf.ByteLength)}
			}
			st.buffers[bi] = b
			return nil
		})
	}
	return g.Wait()
}

// usedImages returns the indices of the images used by base color
// textures of materials, in increasing order.
func (st *importState) usedImages() []int {
	doc := st.doc
	var imgs []int
	for i := range doc.Materials {
		pbr := doc.Materials[i].PBRMetallicRoughness
		if pbr == nil || pbr.BaseColorTexture == nil {
			continue
		}
		src := *doc.Textures[pbr.BaseColorTexture.Index].Source
		if !slices.Contains(imgs, src) {
			imgs = append(imgs, src)
		}
	}
	slices.Sort(imgs)
	return imgs
}

// loadImages fetches and decodes every used image concurrently.
// All images are decoded before any texture is created; the first
// failure cancels the others and is returned.
func (st *importState) loadImages(ctx context.Context) error {
	st.images = make([]*decodedImage, len(st.doc.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, ii := range st.usedImages() {
		g.Go(func() error {
			di, err := st.loadImage(gctx, ii)
			if err != nil {
				return err
			}
			st.images[ii] = di
			return nil
		})
	}
	return g.Wait()
}

// imageSource returns the texture cache source for an image.
func (st *importState) imageSource(ii int) string {
	img := &st.doc.Images[ii]
	if img.URI == "" || isDataURI(img.URI) {
		return fmt.Sprintf("%s#image%d", st.docPath, ii)
	}
	return resolveURI(st.docPath, img.URI)
}

func (st *importState) loadImage(ctx context.Context, ii int) (*decodedImage, error) {
	img := &st.doc.Images[ii]
	var data []byte
	mime := img.MimeType
	if img.BufferView != nil {
		bv := &st.doc.BufferViews[*img.BufferView]
		buf := st.buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf) {
			return nil, &AssetLoadError{URI: st.imageSource(ii), Err: fmt.Errorf("bufferView %d out of range of buffer %d", *img.BufferView, bv.Buffer)}
		}
		data = buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	} else {
		b, dmime, err := fetchURI(ctx, st.im.Fetcher, st.docPath, img.URI)
		if err != nil {
			return nil, err
		}
		data = b
		if mime == "" {
			mime = dmime
		}
	}
	im, f, err := imagex.Decode(data, mime)
	if err != nil {
		return nil, &AssetLoadError{URI: st.imageSource(ii), Err: err}
	}
	di := &decodedImage{Format: f}
	di.RGBA = imagex.AsRGBA(im)
	sz := di.RGBA.Rect.Size()
	if fit := imagex.FitSize(sz, st.im.MaxTextureSize); fit != sz {
		slog.Debug("gltf.Import: downscaling image", "image", st.imageSource(ii), "from", sz, "to", fit)
		di.RGBA = imagex.Resize(di.RGBA, fit)
	}
	return di, nil
}
