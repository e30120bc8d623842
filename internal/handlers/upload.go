// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"

	"orgpress/internal/storage"
)

// maxUploadSize is the maximum allowed file upload size (25 MB). Uploads
// travel through the repository API as base64 commits, so the practical
// ceiling is well below a typical object store's.
const maxUploadSize = 25 << 20

// allowedUploadTypes defines MIME types accepted for upload, detected
// from the file bytes rather than the client-supplied header.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"image/webp":               true,
	"image/svg+xml":            true,
	"application/pdf":          true,
	"video/mp4":                true,
	"application/octet-stream": true, // detection fallback for documents
}

// Upload handles the admin multipart upload endpoint.
type Upload struct {
	files storage.FileStore
}

// NewUpload creates the upload handler group.
func NewUpload(files storage.FileStore) *Upload {
	return &Upload{files: files}
}

// Handle accepts a multipart "file" field with an optional "category" and
// stores the blob, returning its public URL.
func (h *Upload) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 25 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Uploaded file is empty.")
		return
	}

	detected := detectContentType(data)
	if !allowedUploadTypes[detected] {
		writeError(w, http.StatusBadRequest, "File type is not allowed.")
		return
	}

	category := storage.NormalizeCategory(r.FormValue("category"))

	url, err := h.files.UploadFile(r.Context(), data, header.Filename, category)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":      url,
		"fileName": path.Base(url),
		"category": category,
		"size":     len(data),
		"type":     detected,
	})
}

// detectContentType sniffs the MIME type from the file bytes. The sniffer
// reports SVG as plain XML/text, so that case is special-cased.
func detectContentType(data []byte) string {
	detected := http.DetectContentType(data)
	if base, _, ok := strings.Cut(detected, ";"); ok {
		detected = strings.TrimSpace(base)
	}
	if detected == "text/xml" || detected == "text/plain" {
		head := strings.ToLower(string(data[:min(512, len(data))]))
		if strings.Contains(head, "<svg") {
			return "image/svg+xml"
		}
	}
	return detected
}
