// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hatchgl/hatch/gltf"
	"github.com/hatchgl/hatch/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherFor(t *testing.T) {
	f, id, err := fetcherFor("https://example.com/models/duck")
	require.NoError(t, err)
	assert.Equal(t, gltf.HTTPFetcher{BaseURL: "https://example.com/"}, f)
	assert.Equal(t, "/models/duck", id)

	dir := t.TempDir()
	_, _, err = fetcherFor(filepath.Join(dir, "duck"))
	assert.Error(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "duck"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duck", "duck.gltf"), []byte("{}"), 0o644))
	f, id, err = fetcherFor(filepath.Join(dir, "duck"))
	require.NoError(t, err)
	assert.IsType(t, gltf.FSFetcher{}, f)
	assert.Equal(t, "duck", id)

	_, id, err = fetcherFor(filepath.Join(dir, "duck", "duck.gltf"))
	require.NoError(t, err)
	assert.Equal(t, "duck.gltf", id)
}

func TestLoadOptions(t *testing.T) {
	cfg := config{Theme: "dark"}
	opts, err := loadOptions(&cfg)
	require.NoError(t, err)
	assert.Equal(t, render.ThemeDark, opts.Theme)

	cfg.Theme = "sepia"
	_, err = loadOptions(&cfg)
	assert.Error(t, err)

	fname := filepath.Join(t.TempDir(), "hatch.toml")
	require.NoError(t, os.WriteFile(fname, []byte("use_sobel = false\ntheme = \"light\"\n"), 0o644))
	cfg = config{Options: fname}
	opts, err = loadOptions(&cfg)
	require.NoError(t, err)
	assert.False(t, opts.UseSobel)
	assert.Equal(t, render.ThemeLight, opts.Theme)
}

func TestWatchFile(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	fname := filepath.Join(dir, "hatch.toml")
	require.NoError(t, os.WriteFile(fname, []byte("use_blur = true\n"), 0o644))

	changed := make(chan struct{}, 1)
	stop, err := watchFile(fname, changed)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), nil, 0o644))
	require.NoError(t, os.WriteFile(fname, []byte("use_blur = false\n"), 0o644))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signaled")
	}
}
