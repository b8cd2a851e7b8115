// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
)

// maxImageBytes caps how much of a fetched image the renderer will read.
const maxImageBytes = 20 << 20

// ImageResolver turns a document image reference (an inline data URI, an
// absolute URL, or a site-relative path) into a decoded image.
type ImageResolver func(ctx context.Context, ref string) (image.Image, error)

// NewImageResolver builds the standard resolver: data URIs are decoded
// inline, http(s) URLs are fetched with the given client, and relative
// paths are resolved against baseURL (the public address assets are
// served from).
func NewImageResolver(client *http.Client, baseURL string) ImageResolver {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return func(ctx context.Context, ref string) (image.Image, error) {
		if strings.HasPrefix(ref, "data:image/") {
			return decodeDataURI(ref)
		}
		url := ref
		if strings.HasPrefix(ref, "/") {
			if baseURL == "" {
				return nil, fmt.Errorf("relative image %s with no base url", ref)
			}
			url = baseURL + ref
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build image request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
		}
		img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", url, err)
		}
		return img, nil
	}
}

// decodeDataURI decodes a data:image/...;base64,... reference.
func decodeDataURI(ref string) (image.Image, error) {
	_, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta := ref[:len(ref)-len(payload)-1]
	raw := []byte(payload)
	if strings.Contains(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		raw = decoded
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode inline image: %w", err)
	}
	return img, nil
}
