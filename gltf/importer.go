// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gltf imports glTF 2.0 assets into [xyz.Scene] graphs,
// uploading their meshes and textures to a [gpu.Device].
//
// Only the JSON form with external or data URI buffers is supported,
// with static geometry and base color materials. Animation, skinning,
// morph targets and the remaining PBR textures are ignored.
package gltf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/base/iox/imagex"
	"github.com/hatchgl/hatch/gpu"
	"github.com/hatchgl/hatch/xyz"
)

// DefaultMaxTextureSize is the default limit on texture width and height.
const DefaultMaxTextureSize = 4096

// Importer loads glTF assets into scenes. Its Device must only be
// used from the goroutine calling Import; fetching and image decoding
// happen concurrently, but all GPU resources are created on the
// calling goroutine.
type Importer struct {
	// Fetcher retrieves documents, buffers and images.
	// It must be safe for concurrent use.
	Fetcher Fetcher

	// Device receives the meshes and textures of imported scenes.
	Device gpu.Device

	// MinFilter and MagFilter are the texture filters used when a
	// texture has no sampler, or its sampler leaves them unset.
	MinFilter gpu.Filter
	MagFilter gpu.Filter

	// MaxTextureSize limits the width and height of textures:
	// larger images are downscaled preserving aspect. 0 means no limit.
	MaxTextureSize int
}

// NewImporter returns an importer with default filtering and
// texture size limit.
func NewImporter(f Fetcher, dev gpu.Device) *Importer {
	return &Importer{
		Fetcher:        f,
		Device:         dev,
		MinFilter:      gpu.LinearMipmapLinear,
		MagFilter:      gpu.Linear,
		MaxTextureSize: DefaultMaxTextureSize,
	}
}

// DocumentPath returns the document path for an asset id. An id
// ending in .gltf is the document itself; otherwise the id names a
// directory holding a document with the same base name, so
// "models/duck" is "models/duck/duck.gltf".
func DocumentPath(id string) string {
	if strings.HasSuffix(strings.ToLower(id), ".gltf") {
		return id
	}
	id = strings.TrimSuffix(id, "/")
	return path.Join(id, path.Base(id)+".gltf")
}

// importState holds the data of one Import call.
type importState struct {
	im      *Importer
	docPath string
	doc     *Document
	buffers [][]byte
	images  []*decodedImage
	sc      *xyz.Scene

	// decoded caches accessor data by accessor index.
	decoded map[int][]float32
	indices map[int][]uint32
}

// Import loads the asset with the given id (see [DocumentPath]) and
// returns a scene whose root holds the nodes of the document's default
// scene, with every mesh and texture uploaded.
//
// Errors are [*AssetLoadError] for any document, buffer or image that
// cannot be fetched or decoded, and [*InvalidFormatError] for documents
// that are malformed or unsupported. On error no GPU resources remain
// allocated and no scene is returned.
func (im *Importer) Import(ctx context.Context, id string) (*xyz.Scene, error) {
	if im.Fetcher == nil || im.Device == nil {
		return nil, errors.New("gltf.Importer.Import: Fetcher and Device must be set")
	}
	docPath := DocumentPath(id)
	data, err := im.Fetcher.Fetch(ctx, docPath)
	if err != nil {
		return nil, &AssetLoadError{URI: docPath, Err: err}
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	st := &importState{
		im:      im,
		docPath: docPath,
		doc:     doc,
		decoded: make(map[int][]float32),
		indices: make(map[int][]uint32),
	}
	if err := st.loadBuffers(ctx); err != nil {
		return nil, err
	}
	if err := st.loadImages(ctx); err != nil {
		return nil, err
	}
	sc, err := st.build()
	if err != nil {
		sc.Release(im.Device)
		return nil, err
	}
	slog.Info("gltf.Import: loaded", "doc", docPath, "meshes", len(sc.Meshes()), "textures", sc.Textures.Len())
	return sc, nil
}

// build creates the scene graph, materials and textures, and uploads
// the meshes. The scene is returned even on error, for release.
func (st *importState) build() (*xyz.Scene, error) {
	doc := st.doc
	si := doc.SceneIndex()
	name := doc.Scenes[si].Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(st.docPath), path.Ext(st.docPath))
	}
	sc := xyz.NewScene(name)
	st.sc = sc
	for _, ni := range doc.Scenes[si].Nodes {
		if err := st.buildNode(sc.Root, ni); err != nil {
			return sc, err
		}
	}
	if err := sc.Upload(st.im.Device); err != nil {
		return sc, err
	}
	return sc, nil
}

// buildNode adds a group for node ni under parent, with a child mesh
// per primitive followed by the child nodes.
func (st *importState) buildNode(parent xyz.NodeID, ni int) error {
	nd := &st.doc.Nodes[ni]
	name := nd.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", ni)
	}
	id, err := st.sc.AddGroup(parent, name)
	if err != nil {
		return err
	}
	setPose(&st.sc.Graph.Node(id).Pose, nd)
	if nd.Mesh != nil {
		dm := &st.doc.Meshes[*nd.Mesh]
		for i := range dm.Primitives {
			ms, err := st.primitive(&dm.Primitives[i], fmt.Sprintf("%s_prim_%d", dm.Name, i))
			if err != nil {
				return err
			}
			if _, err := st.sc.AddMesh(id, ms); err != nil {
				return err
			}
		}
	}
	for _, c := range nd.Children {
		if err := st.buildNode(id, c); err != nil {
			return err
		}
	}
	return nil
}

// setPose sets the pose from the node's matrix or TRS properties.
// A matrix is decomposed into translation, rotation and scale.
func setPose(ps *xyz.Pose, nd *Node) {
	if m := nd.Matrix; m != nil {
		mat := mgl32.Mat4(*m)
		ps.Pos = mat.Col(3).Vec3()
		c0, c1, c2 := mat.Col(0).Vec3(), mat.Col(1).Vec3(), mat.Col(2).Vec3()
		sc := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
		if mat.Mat3().Det() < 0 {
			sc[0] = -sc[0]
		}
		ps.Scale = sc
		if sc[0] != 0 && sc[1] != 0 && sc[2] != 0 {
			rot := mgl32.Mat4FromCols(c0.Mul(1/sc[0]).Vec4(0), c1.Mul(1/sc[1]).Vec4(0), c2.Mul(1/sc[2]).Vec4(0), mgl32.Vec4{0, 0, 0, 1})
			ps.Quat = mgl32.Mat4ToQuat(rot).Normalize()
		}
		return
	}
	if t := nd.Translation; t != nil {
		ps.SetPos(t[0], t[1], t[2])
	}
	if r := nd.Rotation; r != nil {
		ps.SetQuat(r[0], r[1], r[2], r[3])
	}
	if s := nd.Scale; s != nil {
		ps.SetScale(s[0], s[1], s[2])
	}
}

// floats returns the decoded components of accessor ai, cached.
// The result is shared and must not be modified.
func (st *importState) floats(ai int) []float32 {
	if v, ok := st.decoded[ai]; ok {
		return v
	}
	acc := &st.doc.Accessors[ai]
	buf, view := st.view(acc)
	v, errs := DecodeAccessor[float32](buf, view, acc)
	st.logDecodeErrors(ai, errs)
	if acc.Normalized {
		Normalize(acc.ComponentType, v)
	}
	st.decoded[ai] = v
	return v
}

// uints returns the decoded indices of accessor ai, cached.
func (st *importState) uints(ai int) []uint32 {
	if v, ok := st.indices[ai]; ok {
		return v
	}
	acc := &st.doc.Accessors[ai]
	buf, view := st.view(acc)
	v, errs := DecodeAccessor[uint32](buf, view, acc)
	st.logDecodeErrors(ai, errs)
	st.indices[ai] = v
	return v
}

func (st *importState) view(acc *Accessor) ([]byte, *BufferView) {
	if acc.BufferView == nil {
		return nil, nil
	}
	bv := &st.doc.BufferViews[*acc.BufferView]
	return st.buffers[bv.Buffer], bv
}

func (st *importState) logDecodeErrors(ai int, errs []*AccessorDecodeError) {
	if len(errs) == 0 {
		return
	}
	skipped := 0
	for _, e := range errs {
		e.Accessor = ai
		skipped += e.Count
	}
	slog.Warn("gltf.Import: skipped accessor elements outside buffer", "doc", st.docPath, "accessor", ai, "skipped", skipped, "first", errs[0].Error())
}

// checkAccessor returns an error unless accessor ai has one of the
// given element types.
func (st *importState) checkAccessor(what string, ai int, types ...AccessorType) error {
	at := st.doc.Accessors[ai].Type
	for _, t := range types {
		if at == t {
			return nil
		}
	}
	return invalidf("%s accessor %d has type %s", what, ai, at)
}

// primitive returns a mesh with the vertex streams, indices and
// material of pr. Missing colors are white. Streams of the wrong
// length are dropped and out-of-range indices removed, with a warning.
func (st *importState) primitive(pr *Primitive, name string) (*xyz.Mesh, error) {
	ms := xyz.NewMesh(name)
	if pr.Mode != nil {
		ms.Mode = gpu.Primitive(*pr.Mode)
	}
	pa := pr.Attributes["POSITION"]
	if err := st.checkAccessor("POSITION", pa, Vec3); err != nil {
		return nil, err
	}
	ms.Vertices.Positions = st.floats(pa)
	nv := ms.NumVertex()

	if na, ok := pr.Attributes["NORMAL"]; ok {
		if err := st.checkAccessor("NORMAL", na, Vec3); err != nil {
			return nil, err
		}
		ms.Vertices.Normals = st.floats(na)
	}
	if ca, ok := pr.Attributes["COLOR_0"]; ok {
		if err := st.checkAccessor("COLOR_0", ca, Vec3, Vec4); err != nil {
			return nil, err
		}
		ms.Vertices.Colors = st.colors(ca)
	}
	// slots maps TEXCOORD_n numbers to mesh texture coordinate sets
	slots := make(map[int]int)
	for _, set := range pr.TexCoordSets() {
		if err := st.checkAccessor("TEXCOORD", set[1], Vec2); err != nil {
			return nil, err
		}
		tc := st.floats(set[1])
		if len(tc) != 2*nv {
			slog.Warn("gltf.Import: dropping texture coordinates of wrong length", "mesh", name, "set", set[0], "len", len(tc), "vertices", nv)
			continue
		}
		if !ms.AddTexCoords(tc) {
			slog.Warn("gltf.Import: dropping extra texture coordinate sets", "mesh", name, "max", xyz.MaxTexCoords)
			break
		}
		slots[set[0]] = len(ms.Vertices.TexCoords) - 1
	}
	if pr.Indices != nil {
		if err := st.checkAccessor("indices", *pr.Indices, Scalar); err != nil {
			return nil, err
		}
		ms.Indices = st.uints(*pr.Indices)
	}
	sanitize(ms)

	mt, err := st.material(pr, name, slots)
	if err != nil {
		return nil, err
	}
	ms.Material = mt
	return ms, nil
}

// colors returns the COLOR_0 stream of accessor ai as RGBA floats in
// [0,1]. Integer colors are normalized and RGB colors get alpha 1.
func (st *importState) colors(ai int) []float32 {
	acc := &st.doc.Accessors[ai]
	raw := st.floats(ai)
	clr := make([]float32, 0, len(raw)/acc.Type.Components()*4)
	norm := !acc.Normalized && acc.ComponentType != Float
	n := acc.Type.Components()
	for i := 0; i+n <= len(raw); i += n {
		c := [4]float32{0, 0, 0, 1}
		copy(c[:], raw[i:i+n])
		if norm {
			for j := range n {
				c[j] = acc.ComponentType.normalize(c[j])
			}
		}
		clr = append(clr, c[:]...)
	}
	return clr
}

// sanitize makes the mesh streams consistent with its positions,
// so that it passes [xyz.Mesh.Validate].
func sanitize(ms *xyz.Mesh) {
	vs := &ms.Vertices
	if len(vs.Positions)%3 != 0 {
		vs.Positions = vs.Positions[:len(vs.Positions)/3*3]
	}
	nv := ms.NumVertex()
	if vs.Normals != nil && len(vs.Normals) != 3*nv {
		slog.Warn("gltf.Import: dropping normals of wrong length", "mesh", ms.Name, "len", len(vs.Normals), "vertices", nv)
		vs.Normals = nil
	}
	if vs.Colors != nil && len(vs.Colors) != 4*nv {
		slog.Warn("gltf.Import: replacing colors of wrong length with white", "mesh", ms.Name, "len", len(vs.Colors), "vertices", nv)
		vs.Colors = nil
	}
	if vs.Colors == nil {
		ms.FillDefaultColors()
	}
	if len(ms.Indices) == 0 {
		return
	}
	if ms.Mode == gpu.Triangles {
		idx := make([]uint32, 0, len(ms.Indices))
		for i := 0; i+3 <= len(ms.Indices); i += 3 {
			t := ms.Indices[i : i+3]
			if int(t[0]) < nv && int(t[1]) < nv && int(t[2]) < nv {
				idx = append(idx, t...)
			}
		}
		if dropped := len(ms.Indices) - len(idx); dropped > 0 {
			slog.Warn("gltf.Import: dropped triangles with invalid indices", "mesh", ms.Name, "indices", dropped)
		}
		ms.Indices = idx
		return
	}
	idx := make([]uint32, 0, len(ms.Indices))
	for _, i := range ms.Indices {
		if int(i) < nv {
			idx = append(idx, i)
		}
	}
	if dropped := len(ms.Indices) - len(idx); dropped > 0 {
		slog.Warn("gltf.Import: dropped out-of-range indices", "mesh", ms.Name, "indices", dropped)
	}
	ms.Indices = idx
}

// material returns the material of pr, or the default material.
// slots maps TEXCOORD_n numbers to the texture coordinate sets of the mesh.
func (st *importState) material(pr *Primitive, meshName string, slots map[int]int) (xyz.Material, error) {
	if pr.Material == nil {
		return xyz.NewMaterial(meshName), nil
	}
	dm := &st.doc.Materials[*pr.Material]
	mt := xyz.NewMaterial(dm.Name)
	mt.AlphaMode, _ = xyz.ParseAlphaMode(dm.AlphaMode) // validated by ParseDocument
	if dm.AlphaCutoff != nil {
		mt.AlphaCutoff = *dm.AlphaCutoff
	}
	mt.DoubleSided = dm.DoubleSided
	if pbr := dm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mt.BaseColorFactor = mgl32.Vec4(*pbr.BaseColorFactor)
		}
		if pbr.MetallicFactor != nil {
			mt.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mt.RoughnessFactor = *pbr.RoughnessFactor
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			ref, err := st.texture(ti.Index)
			if err != nil {
				return mt, err
			}
			slot, ok := slots[ti.TexCoord]
			if !ok {
				slog.Warn("gltf.Import: texture coordinate set not present, using the first", "mesh", meshName, "texCoord", ti.TexCoord)
			}
			ref.TexCoord = slot
			mt.BaseColorTexture = &ref
		}
	}
	mt.UpdateTransparent()
	return mt, nil
}

// texture returns the texture for document texture ti, creating it
// on first use. Textures sharing an image and sampling state are
// created once per scene.
func (st *importState) texture(ti int) (xyz.TextureRef, error) {
	dt := &st.doc.Textures[ti]
	src := *dt.Source
	key := xyz.TextureKey{
		Source:    st.imageSource(src),
		MinFilter: st.im.MinFilter,
		MagFilter: st.im.MagFilter,
		WrapS:     gpu.ClampToEdge,
		WrapT:     gpu.ClampToEdge,
	}
	if key.MinFilter == 0 {
		key.MinFilter = gpu.LinearMipmapLinear
	}
	if key.MagFilter == 0 {
		key.MagFilter = gpu.Linear
	}
	if dt.Sampler != nil {
		smp := &st.doc.Samplers[*dt.Sampler]
		if f := gpu.Filter(smp.MinFilter); f.Valid() {
			key.MinFilter = f
		}
		if f := gpu.Filter(smp.MagFilter); f == gpu.Nearest || f == gpu.Linear {
			key.MagFilter = f
		}
	}
	if ref, ok := st.sc.Textures.Get(key); ok {
		return ref, nil
	}
	di := st.images[src]
	if di == nil {
		return xyz.TextureRef{}, &AssetLoadError{URI: key.Source, Err: errors.New("image was not loaded")}
	}
	desc := gpu.TextureDesc{
		Size:      di.RGBA.Rect.Size(),
		MinFilter: key.MinFilter,
		MagFilter: key.MagFilter,
		WrapS:     key.WrapS,
		WrapT:     key.WrapT,
		Mipmaps:   true,
	}
	var pix []byte
	hasAlpha := di.Format.HasAlpha()
	if hasAlpha {
		desc.Format = gpu.RGBA8
		pix = imagex.RGBAPixels(di.RGBA)
	} else {
		desc.Format = gpu.RGB8
		pix = imagex.RGBPixels(di.RGBA)
	}
	tx, err := st.im.Device.CreateTexture(desc, pix)
	if err != nil {
		return xyz.TextureRef{}, fmt.Errorf("gltf.Import: creating texture for %s: %w", key.Source, err)
	}
	ref, _ := st.sc.Textures.Add(key, xyz.TextureRef{Texture: tx, HasAlpha: hasAlpha})
	return ref, nil
}
