// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"encoding/binary"
	"math"
)

// ComponentType is the scalar type of accessor components, as a GL enum value.
type ComponentType int

const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the byte size of one component, 0 for unknown types.
func (ct ComponentType) Size() int {
	switch ct {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	}
	return 0
}

// read decodes one little-endian component from the start of b,
// which must be at least Size bytes.
func (ct ComponentType) read(b []byte) float64 {
	switch ct {
	case Byte:
		return float64(int8(b[0]))
	case UnsignedByte:
		return float64(b[0])
	case Short:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case UnsignedShort:
		return float64(binary.LittleEndian.Uint16(b))
	case UnsignedInt:
		return float64(binary.LittleEndian.Uint32(b))
	case Float:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return 0
}

// normalize maps an integer component value to [0,1] or [-1,1],
// as for accessors with normalized set.
func (ct ComponentType) normalize(v float32) float32 {
	switch ct {
	case Byte:
		return max(v/127, -1)
	case UnsignedByte:
		return v / 255
	case Short:
		return max(v/32767, -1)
	case UnsignedShort:
		return v / 65535
	}
	return v
}

// AccessorType is the shape of an accessor element.
type AccessorType string

const (
	Scalar AccessorType = "SCALAR"
	Vec2   AccessorType = "VEC2"
	Vec3   AccessorType = "VEC3"
	Vec4   AccessorType = "VEC4"
	Mat2   AccessorType = "MAT2"
	Mat3   AccessorType = "MAT3"
	Mat4   AccessorType = "MAT4"
)

// Components returns the number of components per element,
// 0 for unknown types.
func (at AccessorType) Components() int {
	switch at {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 0
}

// ElementSize returns the byte size of one tightly packed element.
func (acc *Accessor) ElementSize() int {
	return acc.ComponentType.Size() * acc.Type.Components()
}

// MaxAccessorBytes bounds the size of an accessor without a
// bufferView, which decodes to zeros.
const MaxAccessorBytes = 1 << 28

// DecodeAccessor decodes the elements of acc from buf, the whole
// buffer that view is a slice of, into a flat sequence of components
// in element order. Element i is read at
//
//	view.ByteOffset + acc.ByteOffset + i*stride
//
// where stride is view.ByteStride if set, else the element size.
// Elements extending outside buf are skipped. Since addresses grow
// with i, they form a tail of the accessor, reported as one
// [AccessorDecodeError] with Accessor set to -1. A nil view decodes to
// Count zero elements, or nothing if that exceeds [MaxAccessorBytes].
func DecodeAccessor[T float32 | uint32](buf []byte, view *BufferView, acc *Accessor) ([]T, []*AccessorDecodeError) {
	ncomp := acc.Type.Components()
	csz := acc.ComponentType.Size()
	if ncomp == 0 || csz == 0 || acc.Count <= 0 {
		return nil, nil
	}
	esz := csz * ncomp
	if view == nil {
		if acc.Count > MaxAccessorBytes/esz {
			return nil, []*AccessorDecodeError{{Accessor: -1, Count: acc.Count, Size: esz}}
		}
		return make([]T, acc.Count*ncomp), nil
	}
	stride := view.ByteStride
	if stride == 0 {
		stride = esz
	}
	base := view.ByteOffset + acc.ByteOffset
	n := 0
	if base >= 0 && stride > 0 && base+esz <= len(buf) {
		n = min(acc.Count, (len(buf)-base-esz)/stride+1)
	}
	out := make([]T, 0, n*ncomp)
	for i := range n {
		off := base + i*stride
		for c := range ncomp {
			out = append(out, T(acc.ComponentType.read(buf[off+c*csz:])))
		}
	}
	if n == acc.Count {
		return out, nil
	}
	tail := &AccessorDecodeError{Accessor: -1, Element: n, Count: acc.Count - n, Size: esz, BufferLen: len(buf)}
	if stride > 0 {
		tail.Offset = base + n*stride
	}
	return out, []*AccessorDecodeError{tail}
}

// Normalize maps integer component values in place to [0,1] for
// unsigned or [-1,1] for signed types. Float values are unchanged.
func Normalize(ct ComponentType, vals []float32) {
	if ct == Float {
		return
	}
	for i, v := range vals {
		vals[i] = ct.normalize(v)
	}
}
