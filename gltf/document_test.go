// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDoc = `{
	"asset": {"version": "2.0"},
	"scenes": [{"nodes": [0]}],
	"nodes": [{"name": "a", "children": [1]}, {"name": "b"}]
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(minimalDoc))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.SceneIndex())
	assert.Len(t, doc.Nodes, 2)
	assert.Equal(t, []int{1}, doc.Nodes[0].Children)
}

func TestParseDocumentInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"version", `{"asset": {"version": "1.0"}, "scenes": [{}]}`},
		{"json", `{"asset": `},
		{"noScenes", `{"asset": {"version": "2.0"}}`},
		{"sceneIndex", `{"asset": {"version": "2.0"}, "scene": 2, "scenes": [{}]}`},
		{"sceneNode", `{"asset": {"version": "2.0"}, "scenes": [{"nodes": [3]}]}`},
		{"noPosition", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"accessors": [{"componentType": 5126, "count": 1, "type": "VEC3"}],
			"meshes": [{"primitives": [{"attributes": {"NORMAL": 0}}]}]}`},
		{"componentType", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"accessors": [{"componentType": 5000, "count": 1, "type": "VEC3"}]}`},
		{"zeroAccessorSize", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"accessors": [{"componentType": 5126, "count": 1099511627776, "type": "VEC3"}]}`},
		{"mode", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"accessors": [{"componentType": 5126, "count": 1, "type": "VEC3"}],
			"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "mode": 9}]}]}`},
		{"alphaMode", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"materials": [{"alphaMode": "GLASS"}]}`},
		{"textureSource", `{"asset": {"version": "2.0"}, "scenes": [{}], "textures": [{}]}`},
		{"imageMime", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"buffers": [{"uri": "a.bin", "byteLength": 4}],
			"bufferViews": [{"buffer": 0, "byteLength": 4}],
			"images": [{"bufferView": 0}]}`},
		{"twoParents", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"nodes": [{"children": [2]}, {"children": [2]}, {}]}`},
		{"cycle", `{"asset": {"version": "2.0"}, "scenes": [{}],
			"nodes": [{"children": [1]}, {"children": [0]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.json))
			var fe *InvalidFormatError
			assert.True(t, errors.As(err, &fe), "got %v", err)
		})
	}
}

func TestTexCoordSets(t *testing.T) {
	pr := &Primitive{Attributes: map[string]int{
		"POSITION":    0,
		"TEXCOORD_10": 4,
		"TEXCOORD_2":  3,
		"TEXCOORD_0":  1,
		"TEXCOORD_1":  2,
		"TEXCOORD_x":  5,
	}}
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}, {10, 4}}, pr.TexCoordSets())
}

func TestDocumentPath(t *testing.T) {
	assert.Equal(t, "models/duck/duck.gltf", DocumentPath("models/duck"))
	assert.Equal(t, "duck/duck.gltf", DocumentPath("duck/"))
	assert.Equal(t, "models/Duck.GLTF", DocumentPath("models/Duck.GLTF"))
}
