// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tolassert provides functions for asserting the equality of numbers
// with tolerance (in other words, it checks whether numbers are about equal).
package tolassert

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// DefaultTol is the default tolerance for float32 comparisons.
const DefaultTol = float32(1.0e-5)

// EqualTol asserts that the given two numbers are about equal to each other,
// using the given tolerance value.
func EqualTol[T ~float32 | ~float64](t assert.TestingT, expected, actual, tolerance T, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return assert.InDelta(t, float64(expected), float64(actual), float64(tolerance), msgAndArgs...)
}

// Equal asserts that the given two numbers are about equal to each other,
// using [DefaultTol].
func Equal[T ~float32 | ~float64](t assert.TestingT, expected, actual T, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return EqualTol(t, expected, actual, T(DefaultTol), msgAndArgs...)
}

// EqualVec3 asserts that two vectors are about equal, component-wise.
func EqualVec3(t assert.TestingT, expected, actual mgl32.Vec3, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return assert.True(t, expected.ApproxEqualThreshold(actual, DefaultTol), append([]any{"expected %v, got %v", expected, actual}, msgAndArgs...)...)
}

// EqualMat4 asserts that two matrices are about equal, element-wise.
func EqualMat4(t assert.TestingT, expected, actual mgl32.Mat4, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return assert.True(t, expected.ApproxEqualThreshold(actual, DefaultTol), append([]any{"expected\n%v\ngot\n%v", expected, actual}, msgAndArgs...)...)
}
