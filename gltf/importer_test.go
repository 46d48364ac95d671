// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"path"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hatchgl/hatch/base/iox/imagex"
	"github.com/hatchgl/hatch/base/tolassert"
	"github.com/hatchgl/hatch/gpu"
	"github.com/hatchgl/hatch/xyz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obj = map[string]any

// asset builds a glTF document whose accessors all live in one buffer.
type asset struct {
	doc       obj
	bin       []byte
	views     []obj
	accessors []obj
	files     fstest.MapFS

	// dataURI embeds the buffer in the document.
	dataURI bool
}

func newAsset() *asset {
	return &asset{doc: obj{}, files: fstest.MapFS{}}
}

// add appends data to the buffer as a new view and accessor,
// returning the accessor index.
func (a *asset) add(data []byte, ct ComponentType, typ AccessorType, count int, normalized bool) int {
	for len(a.bin)%4 != 0 {
		a.bin = append(a.bin, 0)
	}
	a.views = append(a.views, obj{"buffer": 0, "byteOffset": len(a.bin), "byteLength": len(data)})
	a.bin = append(a.bin, data...)
	acc := obj{"bufferView": len(a.views) - 1, "componentType": int(ct), "count": count, "type": string(typ)}
	if normalized {
		acc["normalized"] = true
	}
	a.accessors = append(a.accessors, acc)
	return len(a.accessors) - 1
}

// triangle adds the positions of a unit right triangle.
func (a *asset) triangle() int {
	return a.add(f32(0, 0, 0, 1, 0, 0, 0, 1, 0), Float, Vec3, 3, false)
}

// mesh sets a single node holding one mesh with the given primitives.
func (a *asset) mesh(name string, prims ...obj) {
	a.doc["meshes"] = []obj{{"name": name, "primitives": prims}}
	a.doc["nodes"] = []obj{{"name": "root", "mesh": 0}}
	a.doc["scenes"] = []obj{{"nodes": []int{0}}}
}

// fsys returns the file system holding the asset at dir/dir.gltf.
func (a *asset) fsys(t *testing.T, dir string) fstest.MapFS {
	a.doc["asset"] = obj{"version": "2.0"}
	uri := "data.bin"
	if a.dataURI {
		uri = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin)
	} else {
		a.files[dir+"/data.bin"] = &fstest.MapFile{Data: a.bin}
	}
	if len(a.views) > 0 {
		a.doc["buffers"] = []obj{{"uri": uri, "byteLength": len(a.bin)}}
		a.doc["bufferViews"] = a.views
		a.doc["accessors"] = a.accessors
	}
	js, err := json.Marshal(a.doc)
	require.NoError(t, err)
	a.files[dir+"/"+dir+".gltf"] = &fstest.MapFile{Data: js}
	return a.files
}

func (a *asset) image(name string, clr color.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetRGBA(x, y, clr)
		}
	}
	f, err := imagex.ExtToFormat(path.Ext(name))
	if err != nil {
		panic(err)
	}
	var b bytes.Buffer
	if err := imagex.Write(img, &b, f); err != nil {
		panic(err)
	}
	a.files[name] = &fstest.MapFile{Data: b.Bytes()}
}

func importAsset(t *testing.T, a *asset, dir string) (*xyz.Scene, *gpu.Recorder, error) {
	dev := gpu.NewRecorder()
	sc, err := NewImporter(FSFetcher{FS: a.fsys(t, dir)}, dev).Import(context.Background(), dir)
	return sc, dev, err
}

func TestImportTriangleDefaults(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos}})
	sc, dev, err := importAsset(t, a, "tri")
	require.NoError(t, err)

	assert.Equal(t, "tri", sc.Name)
	ms := sc.Meshes()
	require.Len(t, ms, 1)
	assert.Equal(t, "Tri_prim_0", ms[0].Name)
	assert.Equal(t, gpu.Triangles, ms[0].Mode)
	assert.Len(t, ms[0].Vertices.Colors, 12)
	for _, c := range ms[0].Vertices.Colors {
		assert.Equal(t, float32(1), c)
	}
	assert.True(t, ms[0].IsUploaded())
	assert.False(t, ms[0].Material.Transparent)
	assert.Equal(t, 1, dev.Live("mesh"))
	assert.Empty(t, dev.Stale)
}

func TestImportColors(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	red := a.add([]byte{255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255}, UnsignedByte, Vec4, 3, true)
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos, "COLOR_0": red}})
	sc, _, err := importAsset(t, a, "red")
	require.NoError(t, err)
	clr := sc.Meshes()[0].Vertices.Colors
	require.Len(t, clr, 12)
	assert.Equal(t, []float32{1, 0, 0, 1}, clr[:4])

	a = newAsset()
	pos = a.triangle()
	rgb := a.add(f32(0.5, 0.25, 0, 0.5, 0.25, 0, 0.5, 0.25, 0), Float, Vec3, 3, false)
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos, "COLOR_0": rgb}})
	sc, _, err = importAsset(t, a, "rgb")
	require.NoError(t, err)
	clr = sc.Meshes()[0].Vertices.Colors
	require.Len(t, clr, 12)
	assert.Equal(t, []float32{0.5, 0.25, 0, 1}, clr[8:])
}

func TestImportWrongLengthStreams(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	nrm := a.add(f32(0, 0, 1, 0, 0, 1), Float, Vec3, 2, false)
	clr := a.add(f32(1, 0, 0, 1), Float, Vec4, 1, false)
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos, "NORMAL": nrm, "COLOR_0": clr}})
	sc, _, err := importAsset(t, a, "short")
	require.NoError(t, err)
	ms := sc.Meshes()[0]
	assert.Nil(t, ms.Vertices.Normals)
	assert.Len(t, ms.Vertices.Colors, 12)
	assert.Equal(t, float32(1), ms.Vertices.Colors[1])
}

func TestImportIndices(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	idx := a.add(u16(0, 1, 2, 0, 1, 7), UnsignedShort, Scalar, 6, false)
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos}, "indices": idx})
	sc, _, err := importAsset(t, a, "idx")
	require.NoError(t, err)
	ms := sc.Meshes()[0]
	assert.Equal(t, []uint32{0, 1, 2}, ms.Indices)
	assert.Equal(t, int32(3), ms.Handle().Count)
}

func TestImportOutOfRangeAccessor(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	a.accessors[pos]["count"] = 4
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos}})
	sc, _, err := importAsset(t, a, "oob")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Meshes()[0].NumVertex())

	a.accessors[pos]["count"] = 1 << 40
	sc, _, err = importAsset(t, a, "huge")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Meshes()[0].NumVertex())
}

func TestImportHierarchy(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	prim := obj{"attributes": obj{"POSITION": pos}}
	a.doc["meshes"] = []obj{{"name": "Tri", "primitives": []obj{prim, prim}}}
	a.doc["nodes"] = []obj{
		{"name": "root", "mesh": 0, "children": []int{1}, "translation": []float32{1, 0, 0}},
		{"name": "child", "mesh": 0, "translation": []float32{0, 2, 0}},
	}
	a.doc["scenes"] = []obj{{"name": "Main", "nodes": []int{0}}}
	sc, dev, err := importAsset(t, a, "tree")
	require.NoError(t, err)
	assert.Equal(t, "Main", sc.Name)

	var names []string
	for _, ms := range sc.Meshes() {
		names = append(names, ms.Name)
	}
	assert.Equal(t, []string{"Tri_prim_0", "Tri_prim_1", "Tri_prim_0", "Tri_prim_1"}, names)
	assert.Equal(t, 4, dev.Live("mesh"))

	roots := sc.Graph.Children(sc.Root)
	require.Len(t, roots, 1)
	kids := sc.Graph.Children(roots[0])
	require.Len(t, kids, 3)
	child := sc.Graph.Node(kids[2])
	assert.Equal(t, "child", child.Name)
	assert.Equal(t, xyz.KindGroup, child.Kind)
	tolassert.EqualVec3(t, mgl32.Vec3{1, 2, 0}, sc.Graph.WorldPosition(kids[2]))
}

func TestImportMatrix(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos}})
	m := mgl32.Translate3D(3, 4, 5).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90))).Mul4(mgl32.Scale3D(2, 2, 2))
	a.doc["nodes"] = []obj{{"name": "root", "mesh": 0, "matrix": m[:]}}
	sc, _, err := importAsset(t, a, "mat")
	require.NoError(t, err)
	id := sc.Graph.Children(sc.Root)[0]
	ps := sc.Graph.Node(id).Pose
	tolassert.EqualVec3(t, mgl32.Vec3{3, 4, 5}, ps.Pos)
	tolassert.EqualVec3(t, mgl32.Vec3{2, 2, 2}, ps.Scale)
	tolassert.EqualMat4(t, m, ps.Matrix())
}

func TestImportDataURI(t *testing.T) {
	a := newAsset()
	a.dataURI = true
	pos := a.triangle()
	a.mesh("Tri", obj{"attributes": obj{"POSITION": pos}})
	sc, _, err := importAsset(t, a, "embedded")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, sc.Meshes()[0].Vertices.Positions)
}

func TestImportMissingDocument(t *testing.T) {
	dev := gpu.NewRecorder()
	_, err := NewImporter(FSFetcher{FS: fstest.MapFS{}}, dev).Import(context.Background(), "nothing")
	var le *AssetLoadError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, "nothing/nothing.gltf", le.URI)
}

func TestImportBadVersion(t *testing.T) {
	fs := fstest.MapFS{"old/old.gltf": {Data: []byte(`{"asset": {"version": "1.0"}, "scenes": [{}]}`)}}
	dev := gpu.NewRecorder()
	sc, err := NewImporter(FSFetcher{FS: fs}, dev).Import(context.Background(), "old")
	var fe *InvalidFormatError
	assert.True(t, errors.As(err, &fe), "got %v", err)
	assert.Nil(t, sc)
	assert.Empty(t, dev.Calls)
}

// texturedAsset returns a triangle asset with two materials, one per
// primitive, each using its own texture of the given images.
func texturedAsset(uris ...string) *asset {
	a := newAsset()
	pos := a.triangle()
	tc := a.add(f32(0, 0, 1, 0, 0, 1), Float, Vec2, 3, false)
	var prims, mats, texs, imgs []obj
	for i, uri := range uris {
		prims = append(prims, obj{"attributes": obj{"POSITION": pos, "TEXCOORD_0": tc}, "material": i})
		mats = append(mats, obj{"name": uri, "pbrMetallicRoughness": obj{"baseColorTexture": obj{"index": i}}})
		texs = append(texs, obj{"source": i})
		imgs = append(imgs, obj{"uri": uri})
	}
	a.mesh("Tri", prims...)
	a.doc["materials"] = mats
	a.doc["textures"] = texs
	a.doc["images"] = imgs
	return a
}

func TestImportTextures(t *testing.T) {
	a := texturedAsset("opaque.jpg", "opaque.png", "alpha.png")
	a.image("tex/opaque.jpg", color.RGBA{255, 0, 0, 255})
	a.image("tex/opaque.png", color.RGBA{255, 0, 0, 255})
	a.image("tex/alpha.png", color.RGBA{0, 0, 128, 128})
	sc, dev, err := importAsset(t, a, "tex")
	require.NoError(t, err)

	ms := sc.Meshes()
	require.Len(t, ms, 3)
	assert.Equal(t, 3, dev.Live("texture"))
	assert.Equal(t, 3, sc.Textures.Len())
	for _, m := range ms {
		require.NotNil(t, m.Material.BaseColorTexture)
		desc := dev.Textures[m.Material.BaseColorTexture.Texture]
		assert.Equal(t, gpu.ClampToEdge, desc.WrapS)
		assert.Equal(t, gpu.ClampToEdge, desc.WrapT)
		assert.Equal(t, image.Pt(2, 2), desc.Size)
		assert.True(t, desc.Mipmaps)
		assert.Len(t, m.Vertices.TexCoords, 1)
	}
	// a jpeg carries no alpha channel, while any png does,
	// even when all its pixels are opaque
	formats := func(m *xyz.Mesh) gpu.Formats {
		return dev.Textures[m.Material.BaseColorTexture.Texture].Format
	}
	assert.Equal(t, gpu.RGB8, formats(ms[0]))
	assert.False(t, ms[0].Material.Transparent)
	assert.Equal(t, xyz.RClassOpaqueTexture, ms[0].RenderClass())
	for _, m := range ms[1:] {
		assert.Equal(t, gpu.RGBA8, formats(m))
		assert.True(t, m.Material.BaseColorTexture.HasAlpha)
		assert.True(t, m.Material.Transparent)
		assert.Equal(t, xyz.RClassTransTexture, m.RenderClass())
	}
}

func TestImportSharedTexture(t *testing.T) {
	a := texturedAsset("a.png", "a.png")
	a.image("shared/a.png", color.RGBA{255, 255, 255, 255})
	a.doc["samplers"] = []obj{{"minFilter": int(gpu.Nearest), "magFilter": int(gpu.Nearest)}}
	sc, dev, err := importAsset(t, a, "shared")
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Live("texture"))
	ms := sc.Meshes()
	assert.Equal(t, ms[0].Material.BaseColorTexture.Texture, ms[1].Material.BaseColorTexture.Texture)

	a = texturedAsset("a.png", "a.png")
	a.image("sampled/a.png", color.RGBA{255, 255, 255, 255})
	a.doc["samplers"] = []obj{{"minFilter": int(gpu.Nearest), "magFilter": int(gpu.Nearest)}}
	a.doc["textures"] = []obj{{"source": 0}, {"source": 1, "sampler": 0}}
	_, dev, err = importAsset(t, a, "sampled")
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Live("texture"))
	var nearest int
	for _, desc := range dev.Textures {
		if desc.MinFilter == gpu.Nearest {
			assert.Equal(t, gpu.Nearest, desc.MagFilter)
			nearest++
		} else {
			assert.Equal(t, gpu.LinearMipmapLinear, desc.MinFilter)
		}
	}
	assert.Equal(t, 1, nearest)
}

func TestImportMissingImage(t *testing.T) {
	a := texturedAsset("here.png", "missing.png")
	a.image("gone/here.png", color.RGBA{255, 255, 255, 255})
	sc, dev, err := importAsset(t, a, "gone")
	assert.Nil(t, sc)
	var le *AssetLoadError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, "gone/missing.png", le.URI)
	assert.Equal(t, 0, dev.Live("mesh"))
	assert.Equal(t, 0, dev.Live("texture"))
}

// failingDevice fails mesh creation after a number of successes.
type failingDevice struct {
	*gpu.Recorder
	meshes int
}

func (fd *failingDevice) CreateMesh(md *gpu.MeshData) (gpu.MeshHandle, error) {
	if fd.meshes == 0 {
		return gpu.MeshHandle{}, errors.New("out of memory")
	}
	fd.meshes--
	return fd.Recorder.CreateMesh(md)
}

func TestImportNoPartialResources(t *testing.T) {
	a := texturedAsset("a.png", "b.png")
	a.image("partial/a.png", color.RGBA{255, 255, 255, 255})
	a.image("partial/b.png", color.RGBA{0, 0, 0, 255})
	dev := &failingDevice{Recorder: gpu.NewRecorder(), meshes: 1}
	sc, err := NewImporter(FSFetcher{FS: a.fsys(t, "partial")}, dev).Import(context.Background(), "partial")
	assert.Error(t, err)
	assert.Nil(t, sc)
	assert.Equal(t, 0, dev.Live("mesh"))
	assert.Equal(t, 0, dev.Live("texture"))
	assert.Empty(t, dev.Stale)
}

func TestImportTexCoordSet(t *testing.T) {
	a := newAsset()
	pos := a.triangle()
	short := a.add(f32(0, 0, 1, 0), Float, Vec2, 2, false)
	tc1 := a.add(f32(0, 0, 1, 0, 0, 1), Float, Vec2, 3, false)
	tc3 := a.add(f32(1, 1, 0, 1, 1, 0), Float, Vec2, 3, false)
	attrs := obj{"POSITION": pos, "TEXCOORD_0": short, "TEXCOORD_1": tc1, "TEXCOORD_3": tc3}
	a.mesh("Tri",
		obj{"attributes": attrs, "material": 0},
		obj{"attributes": attrs, "material": 1})
	a.doc["materials"] = []obj{
		{"doubleSided": true, "pbrMetallicRoughness": obj{"baseColorTexture": obj{"index": 0, "texCoord": 3}}},
		{"pbrMetallicRoughness": obj{"baseColorTexture": obj{"index": 0, "texCoord": 5}}},
	}
	a.doc["textures"] = []obj{{"source": 0}}
	a.doc["images"] = []obj{{"uri": "t.png"}}
	a.image("uv/t.png", color.RGBA{255, 255, 255, 255})
	sc, _, err := importAsset(t, a, "uv")
	require.NoError(t, err)

	ms := sc.Meshes()
	require.Len(t, ms, 2)
	// TEXCOORD_0 is dropped, so TEXCOORD_3 is the second set
	require.Len(t, ms[0].Vertices.TexCoords, 2)
	assert.Equal(t, []float32{1, 1, 0, 1, 1, 0}, ms[0].Vertices.TexCoords[1])
	assert.Equal(t, 1, ms[0].Material.BaseColorTexture.TexCoord)
	assert.True(t, ms[0].Material.DoubleSided)

	// a missing set falls back to the first
	assert.Equal(t, 0, ms[1].Material.BaseColorTexture.TexCoord)
	assert.False(t, ms[1].Material.DoubleSided)
	assert.Equal(t, ms[0].Material.BaseColorTexture.Texture, ms[1].Material.BaseColorTexture.Texture)
}
