// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsx has file system helpers shared by the importer and host.
package fsx

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hatchgl/hatch/base/errors"
	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading ~ to the user's home directory
// and returns the absolute form of the path.
func ExpandPath(fpath string) (string, error) {
	ex, err := homedir.Expand(fpath)
	if err != nil {
		return "", err
	}
	return filepath.Abs(ex)
}

// DirFS returns the directory part of given file path as an os.DirFS
// and the filename as a string.  These can then be used to access the file
// using the FS-based interface, consistent with embed and other use-cases.
// A leading ~ is expanded to the home directory.
func DirFS(fpath string) (fs.FS, string, error) {
	fabs, err := ExpandPath(fpath)
	if err != nil {
		return nil, "", err
	}
	dir, fname := filepath.Split(fabs)
	dfs := os.DirFS(dir)
	return dfs, fname, nil
}

// FileExistsFS checks whether given file exists, returning true if so,
// false if not, and error if there is an error in accessing the file.
func FileExistsFS(fsys fs.FS, filePath string) (bool, error) {
	if fsys, ok := fsys.(fs.StatFS); ok {
		fileInfo, err := fsys.Stat(filePath)
		if err == nil {
			return !fileInfo.IsDir(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	fp, err := fsys.Open(filePath)
	if err == nil {
		fp.Close()
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
