// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists the site's state: a single JSON content
// document plus uploaded binary assets. The primary backend is a GitHub
// repository driven through the contents API, with an S3-compatible
// alternative for the file side. Writes to the content document carry the
// blob SHA captured at load as a precondition, so a concurrent writer is
// detected (the write is rejected) but never merged or retried.
package storage

import (
	"context"
	"errors"

	"orgpress/internal/models"
)

var (
	// ErrNotFound indicates the requested document or file does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict indicates a write was rejected because the revision
	// token was stale — another writer persisted in between.
	ErrConflict = errors.New("storage: revision conflict")

	// ErrUnavailable indicates a transport or authentication failure
	// talking to the backing store.
	ErrUnavailable = errors.New("storage: backing store unavailable")
)

// DocumentStore reads and writes the single content document.
type DocumentStore interface {
	// LoadContent fetches and decodes the content document. If the
	// document does not exist yet it is created empty and returned.
	LoadContent(ctx context.Context) (*models.Document, error)

	// SaveContent serializes the document and writes it back, using the
	// document's revision token as a write precondition. A stale token
	// surfaces as ErrConflict.
	SaveContent(ctx context.Context, doc *models.Document) error
}

// FileStore uploads and deletes binary assets.
type FileStore interface {
	// UploadFile stores data under a category-scoped path and returns a
	// stable, publicly resolvable URL.
	UploadFile(ctx context.Context, data []byte, filename, category string) (string, error)

	// DeleteFile removes the file identified by fileURL. Accepts the
	// absolute public URL, a root-relative path, or a bare relative path;
	// a file that is already gone counts as success.
	DeleteFile(ctx context.Context, fileURL string) error
}

// fileCategories are the valid upload categories; anything else is
// stored under "general".
var fileCategories = map[string]bool{
	"images":    true,
	"videos":    true,
	"documents": true,
	"general":   true,
}

// NormalizeCategory maps an arbitrary category string to a known upload
// category, defaulting to "general".
func NormalizeCategory(category string) string {
	if fileCategories[category] {
		return category
	}
	return "general"
}
