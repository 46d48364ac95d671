// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import "fmt"

// InvalidFormatError is returned for a document with an unsupported
// version, or one that is structurally invalid.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "gltf: invalid format: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &InvalidFormatError{Reason: fmt.Sprintf(format, args...)}
}

// AssetLoadError is returned when the document, a buffer or an image
// cannot be fetched or decoded.
type AssetLoadError struct {
	URI string
	Err error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("gltf: loading %q: %v", e.URI, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// AccessorDecodeError records a run of accessor elements whose
// addresses lie outside their buffer. Such elements are skipped; these
// errors are logged and never returned from an import.
type AccessorDecodeError struct {
	// Accessor is the accessor index, -1 if not known.
	Accessor int

	// Element is the index of the first skipped element.
	Element int

	// Count is the number of skipped elements.
	Count int

	// Offset is the byte address of the first skipped element.
	Offset int

	// Size is the byte size of the element.
	Size int

	// BufferLen is the length of the buffer.
	BufferLen int
}

func (e *AccessorDecodeError) Error() string {
	return fmt.Sprintf("gltf: accessor %d: %d elements from %d at byte %d (size %d) out of range of buffer of %d bytes",
		e.Accessor, e.Count, e.Element, e.Offset, e.Size, e.BufferLen)
}
