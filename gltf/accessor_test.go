// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/hatchgl/hatch/base/tolassert"
	"github.com/stretchr/testify/assert"
)

func f32(vals ...float32) []byte {
	b := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func u16(vals ...uint16) []byte {
	b := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}

func TestDecodeAccessor(t *testing.T) {
	buf := f32(1, 2, 3, 4, 5, 6)
	view := &BufferView{ByteLength: len(buf)}
	acc := &Accessor{ComponentType: Float, Type: Vec3, Count: 2}
	vals, errs := DecodeAccessor[float32](buf, view, acc)
	assert.Empty(t, errs)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)

	// element 1 starts at byte 12 of the view
	acc = &Accessor{ComponentType: Float, Type: Scalar, Count: 1, ByteOffset: 4}
	view = &BufferView{ByteOffset: 8, ByteLength: 16}
	vals, errs = DecodeAccessor[float32](buf, view, acc)
	assert.Empty(t, errs)
	assert.Equal(t, []float32{4}, vals)
}

func TestDecodeAccessorStride(t *testing.T) {
	// VEC2 elements interleaved with one float of padding
	buf := f32(1, 2, -1, 3, 4, -1, 5, 6, -1)
	view := &BufferView{ByteLength: len(buf), ByteStride: 12}
	acc := &Accessor{ComponentType: Float, Type: Vec2, Count: 3}
	vals, errs := DecodeAccessor[float32](buf, view, acc)
	assert.Empty(t, errs)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)
}

func TestDecodeAccessorOutOfRange(t *testing.T) {
	buf := f32(1, 2, 3, 4, 5, 6)
	view := &BufferView{ByteLength: len(buf)}
	acc := &Accessor{ComponentType: Float, Type: Vec3, Count: 3}
	vals, errs := DecodeAccessor[float32](buf, view, acc)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, 2, errs[0].Element)
		assert.Equal(t, 1, errs[0].Count)
		assert.Equal(t, 24, errs[0].Offset)
		assert.Equal(t, 12, errs[0].Size)
		assert.Equal(t, -1, errs[0].Accessor)
		assert.Contains(t, errs[0].Error(), "out of range")
	}
}

func TestDecodeAccessorHugeCount(t *testing.T) {
	buf := f32(1, 2, 3, 4, 5, 6, 7)
	view := &BufferView{ByteLength: len(buf)}
	acc := &Accessor{ComponentType: Float, Type: Vec3, Count: 1 << 40}
	vals, errs := DecodeAccessor[float32](buf, view, acc)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, 2, errs[0].Element)
		assert.Equal(t, 1<<40-2, errs[0].Count)
		assert.Equal(t, 24, errs[0].Offset)
	}

	// the first element is already out of range
	view = &BufferView{ByteOffset: 20, ByteLength: 8}
	vals, errs = DecodeAccessor[float32](buf, view, acc)
	assert.Empty(t, vals)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, 0, errs[0].Element)
		assert.Equal(t, 1<<40, errs[0].Count)
	}

	vals, errs = DecodeAccessor[float32](nil, nil, acc)
	assert.Nil(t, vals)
	assert.Len(t, errs, 1)
}

func TestDecodeAccessorIndices(t *testing.T) {
	buf := u16(0, 1, 2, 65535)
	view := &BufferView{ByteLength: len(buf)}
	acc := &Accessor{ComponentType: UnsignedShort, Type: Scalar, Count: 4}
	vals, errs := DecodeAccessor[uint32](buf, view, acc)
	assert.Empty(t, errs)
	assert.Equal(t, []uint32{0, 1, 2, 65535}, vals)
}

func TestDecodeAccessorNoView(t *testing.T) {
	acc := &Accessor{ComponentType: Float, Type: Vec2, Count: 2}
	vals, errs := DecodeAccessor[float32](nil, nil, acc)
	assert.Empty(t, errs)
	assert.Equal(t, []float32{0, 0, 0, 0}, vals)
}

func TestNormalize(t *testing.T) {
	vals := []float32{255, 0, 51}
	Normalize(UnsignedByte, vals)
	tolassert.Equal(t, float32(1), vals[0])
	tolassert.Equal(t, float32(0), vals[1])
	tolassert.Equal(t, float32(0.2), vals[2])

	vals = []float32{-32768, 32767}
	Normalize(Short, vals)
	assert.Equal(t, []float32{-1, 1}, vals)

	vals = []float32{2.5}
	Normalize(Float, vals)
	assert.Equal(t, []float32{2.5}, vals)
}
