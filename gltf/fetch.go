// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gltf

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Fetcher retrieves the bytes of a document, buffer or image by path.
// Paths are slash-separated, already resolved against the document.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FSFetcher fetches from a file system, such as an os.DirFS
// or an embedded one.
type FSFetcher struct {
	FS fs.FS
}

func (ff FSFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(path.Clean("/"+uri), "/")
	return fs.ReadFile(ff.FS, name)
}

// HTTPFetcher fetches over HTTP, resolving paths against BaseURL.
type HTTPFetcher struct {
	// Client is the client to use, http.DefaultClient if nil.
	Client *http.Client

	// BaseURL is the URL paths are relative to, e.g. "https://example.com/models/".
	BaseURL string
}

func (hf HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	base, err := url.Parse(hf.BaseURL)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	client := hf.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", req.URL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// isDataURI returns whether uri embeds its data.
func isDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// resolveURI returns the path of uri relative to the document at docPath.
// Percent-encoded characters in uri are decoded.
func resolveURI(docPath, uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		return uri
	}
	if dec, err := url.PathUnescape(uri); err == nil {
		uri = dec
	}
	if path.IsAbs(uri) {
		return path.Clean(uri)
	}
	return path.Join(path.Dir(docPath), uri)
}

// decodeDataURI returns the data and media type of a data URI
// of the form data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("data URI has no data")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding data URI: %w", err)
		}
		return b, mime, nil
	}
	dec, err := url.PathUnescape(data)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return []byte(dec), mime, nil
}

// fetchURI returns the bytes referenced by uri, relative to the document
// at docPath, and the media type if the URI declares one. Failures are
// returned as [*AssetLoadError].
func fetchURI(ctx context.Context, f Fetcher, docPath, uri string) ([]byte, string, error) {
	if isDataURI(uri) {
		b, mime, err := decodeDataURI(uri)
		if err != nil {
			return nil, "", &AssetLoadError{URI: truncateURI(uri), Err: err}
		}
		return b, mime, nil
	}
	p := resolveURI(docPath, uri)
	b, err := f.Fetch(ctx, p)
	if err != nil {
		return nil, "", &AssetLoadError{URI: p, Err: err}
	}
	return b, "", nil
}

// truncateURI shortens data URIs for error messages.
func truncateURI(uri string) string {
	if len(uri) > 48 {
		return uri[:48] + "..."
	}
	return uri
}
