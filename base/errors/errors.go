// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides helpers for logging errors at the point
// where they are handled, so that call sites can stay one line long.
package errors

import (
	"errors"
	"log/slog"
	"runtime"
	"strconv"
)

// Log logs the given error with [slog.Error] along with the caller
// information, if it is non-nil. It returns the error unchanged.
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return err
}

// Log1 logs the given error if it is non-nil and returns the value.
// It is used for functions returning a single value and an error.
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return v
}

// CallerInfo returns the file and line of the function that called
// the function that called CallerInfo.
func CallerInfo() string {
	_, file, line, _ := runtime.Caller(2)
	return file + ":" + strconv.Itoa(line)
}

// Is, As, New, Join and Unwrap mirror the standard library so that
// this package can be imported in place of it.

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }

func Join(errs ...error) error { return errors.Join(errs...) }

func Unwrap(err error) error { return errors.Unwrap(err) }
