// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"certpress/internal/imaging"
	"certpress/internal/storage"
)

// maxAssetUpload caps background image uploads (20 MB before downscale).
const maxAssetUpload = 20 << 20

// allowedAssetTypes are the image MIME types accepted for backgrounds
// and decorations. SVG is excluded; the renderer only rasterizes pixels.
var allowedAssetTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Assets handles background image uploads to object storage.
type Assets struct {
	storage *storage.Client
}

// NewAssets creates the asset handler group. storage may be nil when S3
// is not configured; uploads then return 503 and the editor falls back
// to inline data URIs.
func NewAssets(storage *storage.Client) *Assets {
	return &Assets{storage: storage}
}

// Upload receives a multipart image, normalizes it and stores it in S3.
// Responds with the public URL to reference from a layout document.
func (h *Assets) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAssetUpload+1024)
	if err := r.ParseMultipartForm(maxAssetUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "An image file is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedAssetTypes[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG, GIF and WebP images are accepted.")
		return
	}

	normalized, err := imaging.Normalize(data, imaging.MaxAssetWidth)
	if err != nil {
		slog.Warn("asset normalize failed", "error", err)
		writeError(w, http.StatusBadRequest, "The file is not a valid image.")
		return
	}

	key := "assets/" + uuid.NewString() + extensionFor(normalized.ContentType, header.Filename)
	if err := h.storage.Upload(r.Context(), key, normalized.ContentType, bytes.NewReader(normalized.Data), int64(len(normalized.Data))); err != nil {
		slog.Error("asset upload failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed.")
		return
	}

	slog.Info("asset uploaded", "key", key, "width", normalized.Width, "height", normalized.Height)
	writeJSON(w, http.StatusCreated, map[string]any{
		"url":    h.storage.FileURL(key),
		"width":  normalized.Width,
		"height": normalized.Height,
	})
}

// Delete removes a previously uploaded asset by its public URL. Documents
// referencing the URL keep it; deletion is for backgrounds the admin
// discarded before saving.
func (h *Assets) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}

	key, ok := h.storage.ExtractKey(payload.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "This URL does not belong to asset storage.")
		return
	}
	if err := h.storage.Delete(r.Context(), key); err != nil {
		slog.Error("asset delete failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Delete failed.")
		return
	}

	slog.Info("asset deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

// extensionFor picks the stored file extension from the normalized
// content type, falling back to the original filename's.
func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}
