// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"log/slog"

	"github.com/hatchgl/hatch/gpu"
)

// TextureKey identifies a texture by its image source and the
// sampler parameters it was created with. Two materials using the
// same image with the same sampler share one GPU texture.
type TextureKey struct {
	// Source is the image source: a path, URL, or "image#<index>"
	// for images embedded in a buffer.
	Source string

	MinFilter gpu.Filter
	MagFilter gpu.Filter
	WrapS     gpu.Wrap
	WrapT     gpu.Wrap
}

// TextureCache holds the GPU textures owned by a [Scene], keyed by
// [TextureKey], in the order they were added.
type TextureCache struct {
	refs  map[TextureKey]TextureRef
	order []TextureKey
}

// Get returns the texture for the key, if present.
func (tc *TextureCache) Get(key TextureKey) (TextureRef, bool) {
	ref, ok := tc.refs[key]
	return ref, ok
}

// Add adds a texture under the given key. If a texture already exists
// for the key, it is returned unchanged and ok is false: the caller
// owns the texture it tried to add.
func (tc *TextureCache) Add(key TextureKey, ref TextureRef) (TextureRef, bool) {
	if tc.refs == nil {
		tc.refs = make(map[TextureKey]TextureRef)
	}
	if ex, has := tc.refs[key]; has {
		return ex, false
	}
	tc.refs[key] = ref
	tc.order = append(tc.order, key)
	return ref, true
}

// Len returns the number of textures.
func (tc *TextureCache) Len() int {
	return len(tc.order)
}

// Keys returns the keys in the order added.
func (tc *TextureCache) Keys() []TextureKey {
	return append([]TextureKey(nil), tc.order...)
}

// Textures returns the GPU textures in the order added.
func (tc *TextureCache) Textures() []gpu.Texture {
	txs := make([]gpu.Texture, len(tc.order))
	for i, k := range tc.order {
		txs[i] = tc.refs[k].Texture
	}
	return txs
}

// Release deletes every texture and empties the cache.
func (tc *TextureCache) Release(dev gpu.Device) {
	for _, k := range tc.order {
		dev.DeleteTexture(tc.refs[k].Texture)
	}
	if n := len(tc.order); n > 0 {
		slog.Debug("xyz.TextureCache.Release: released textures", "n", n)
	}
	tc.refs = nil
	tc.order = nil
}
