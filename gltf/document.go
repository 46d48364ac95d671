// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gltf imports glTF 2.0 assets: a JSON document, the binary
// buffers it references, and the images used by its materials, into
// an [xyz.Scene] with uploaded meshes and textures.
package gltf

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hatchgl/hatch/gpu"
	"github.com/hatchgl/hatch/xyz"
)

// Version is the only asset version supported.
const Version = "2.0"

// Document is the JSON part of a glTF asset. Optional fields are
// pointers, nil when absent. Only the parts used for static geometry
// and base color materials are modeled.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`
}

type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
}

// Scene lists the root nodes of one scene.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is a transform with an optional mesh and child nodes.
// The transform is either Matrix or the TRS properties.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
}

type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable part of a mesh. Attributes map semantic
// names such as POSITION or TEXCOORD_0 to accessor indices.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// Accessor describes how to decode a typed array of elements from a
// buffer view. An accessor without a buffer view decodes to zeros.
type Accessor struct {
	Name          string        `json:"name,omitempty"`
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
}

// BufferView is a byte range of a buffer, optionally strided.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
}

// Buffer is binary data referenced by URI, which may be
// relative to the document or a base64 data URI.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture and the texture coordinate set it uses.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is encoded image data, referenced by URI or stored in a
// buffer view, in which case MimeType is required.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler holds texture filtering and wrapping as GL enum values,
// zero when unspecified.
type Sampler struct {
	MagFilter int `json:"magFilter,omitempty"`
	MinFilter int `json:"minFilter,omitempty"`
	WrapS     int `json:"wrapS,omitempty"`
	WrapT     int `json:"wrapT,omitempty"`
}

// ParseDocument decodes and validates a glTF JSON document.
// It returns an [*InvalidFormatError] for malformed JSON,
// an unsupported version or an invalid structure.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, invalidf("decoding JSON: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// SceneIndex returns the index of the scene to load:
// the default scene if set, else the first.
func (doc *Document) SceneIndex() int {
	if doc.Scene != nil {
		return *doc.Scene
	}
	return 0
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

func checkIndex(what string, ref *int, n int) error {
	if ref != nil && !inRange(*ref, n) {
		return invalidf("%s index %d out of range [0, %d)", what, *ref, n)
	}
	return nil
}

// Validate checks the version and that every index refers to an
// existing object, returning an [*InvalidFormatError] if not.
func (doc *Document) Validate() error {
	if doc.Asset.Version != Version {
		return invalidf("asset version %q is not supported, only %q", doc.Asset.Version, Version)
	}
	if len(doc.Scenes) == 0 {
		return invalidf("document has no scenes")
	}
	if si := doc.SceneIndex(); !inRange(si, len(doc.Scenes)) {
		return invalidf("scene index %d out of range [0, %d)", si, len(doc.Scenes))
	}
	for i, sc := range doc.Scenes {
		for _, n := range sc.Nodes {
			if !inRange(n, len(doc.Nodes)) {
				return invalidf("scene %d: node index %d out of range", i, n)
			}
		}
	}
	for i := range doc.BufferViews {
		bv := &doc.BufferViews[i]
		if !inRange(bv.Buffer, len(doc.Buffers)) {
			return invalidf("bufferView %d: buffer index %d out of range", i, bv.Buffer)
		}
		if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteStride < 0 {
			return invalidf("bufferView %d: negative offset, length or stride", i)
		}
	}
	for i := range doc.Accessors {
		if err := doc.validateAccessor(i); err != nil {
			return err
		}
	}
	for i := range doc.Meshes {
		for j := range doc.Meshes[i].Primitives {
			if err := doc.validatePrimitive(fmt.Sprintf("mesh %d primitive %d", i, j), &doc.Meshes[i].Primitives[j]); err != nil {
				return err
			}
		}
	}
	for i := range doc.Materials {
		mt := &doc.Materials[i]
		if _, err := xyz.ParseAlphaMode(mt.AlphaMode); err != nil {
			return invalidf("material %d: %v", i, err)
		}
		if pbr := mt.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if !inRange(pbr.BaseColorTexture.Index, len(doc.Textures)) {
				return invalidf("material %d: texture index %d out of range", i, pbr.BaseColorTexture.Index)
			}
		}
	}
	for i := range doc.Textures {
		tx := &doc.Textures[i]
		if tx.Source == nil {
			return invalidf("texture %d has no source image", i)
		}
		if err := checkIndex(fmt.Sprintf("texture %d: image", i), tx.Source, len(doc.Images)); err != nil {
			return err
		}
		if err := checkIndex(fmt.Sprintf("texture %d: sampler", i), tx.Sampler, len(doc.Samplers)); err != nil {
			return err
		}
	}
	for i := range doc.Images {
		im := &doc.Images[i]
		if im.BufferView == nil && im.URI == "" {
			return invalidf("image %d has neither uri nor bufferView", i)
		}
		if err := checkIndex(fmt.Sprintf("image %d: bufferView", i), im.BufferView, len(doc.BufferViews)); err != nil {
			return err
		}
		if im.BufferView != nil && im.MimeType == "" {
			return invalidf("image %d in a bufferView has no mimeType", i)
		}
	}
	return doc.validateNodes()
}

func (doc *Document) validateAccessor(i int) error {
	acc := &doc.Accessors[i]
	if err := checkIndex(fmt.Sprintf("accessor %d: bufferView", i), acc.BufferView, len(doc.BufferViews)); err != nil {
		return err
	}
	if acc.ComponentType.Size() == 0 {
		return invalidf("accessor %d: unknown componentType %d", i, acc.ComponentType)
	}
	if acc.Type.Components() == 0 {
		return invalidf("accessor %d: unknown type %q", i, acc.Type)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return invalidf("accessor %d: negative count or byteOffset", i)
	}
	if acc.BufferView == nil && acc.Count > MaxAccessorBytes/acc.ElementSize() {
		return invalidf("accessor %d: count %d without bufferView exceeds %d bytes", i, acc.Count, MaxAccessorBytes)
	}
	return nil
}

func (doc *Document) validatePrimitive(where string, pr *Primitive) error {
	if _, ok := pr.Attributes["POSITION"]; !ok {
		return invalidf("%s: no POSITION attribute", where)
	}
	for name, ai := range pr.Attributes {
		if !inRange(ai, len(doc.Accessors)) {
			return invalidf("%s: attribute %s: accessor index %d out of range", where, name, ai)
		}
	}
	if err := checkIndex(where+": indices accessor", pr.Indices, len(doc.Accessors)); err != nil {
		return err
	}
	if err := checkIndex(where+": material", pr.Material, len(doc.Materials)); err != nil {
		return err
	}
	if pr.Mode != nil && !gpu.Primitive(*pr.Mode).Valid() {
		return invalidf("%s: unknown mode %d", where, *pr.Mode)
	}
	return nil
}

// validateNodes checks node references and that the nodes form a
// forest: no node is the child of two nodes or its own ancestor.
func (doc *Document) validateNodes() error {
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for i := range doc.Nodes {
		nd := &doc.Nodes[i]
		if err := checkIndex(fmt.Sprintf("node %d: mesh", i), nd.Mesh, len(doc.Meshes)); err != nil {
			return err
		}
		for _, c := range nd.Children {
			if !inRange(c, len(doc.Nodes)) {
				return invalidf("node %d: child index %d out of range", i, c)
			}
			if parent[c] >= 0 || c == i {
				return invalidf("node %d has more than one parent", c)
			}
			parent[c] = i
		}
	}
	for i := range doc.Nodes {
		steps := 0
		for p := parent[i]; p >= 0; p = parent[p] {
			if p == i || steps > len(doc.Nodes) {
				return invalidf("node %d is its own ancestor", i)
			}
			steps++
		}
	}
	return nil
}

// TexCoordSets returns the indices of the TEXCOORD_n attributes of the
// primitive in set order, as (set, accessor) pairs.
func (pr *Primitive) TexCoordSets() [][2]int {
	var sets [][2]int
	for name, ai := range pr.Attributes {
		num, ok := strings.CutPrefix(name, "TEXCOORD_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			continue
		}
		sets = append(sets, [2]int{n, ai})
	}
	slices.SortFunc(sets, func(a, b [2]int) int {
		return cmp.Compare(a[0], b[0])
	})
	return sets
}
