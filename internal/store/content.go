// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements content operations on top of the storage
// adapter. Every mutation is a full load-modify-save cycle against the
// single content document; the storage layer's revision precondition
// detects concurrent writers but nothing here retries or merges, so a
// losing writer surfaces a conflict to its caller.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"orgpress/internal/markdown"
	"orgpress/internal/models"
	"orgpress/internal/sections"
	"orgpress/internal/storage"
)

// ErrInvalidSection is returned when a create targets a section path that
// does not accept content.
var ErrInvalidSection = errors.New("store: section does not accept content")

// ContentStore performs find/create/update/delete operations on content
// items in the persisted document.
type ContentStore struct {
	docs  storage.DocumentStore
	files storage.FileStore
	now   func() time.Time
}

// NewContentStore creates a content store over the given backends.
func NewContentStore(docs storage.DocumentStore, files storage.FileStore) *ContentStore {
	return &ContentStore{docs: docs, files: files, now: time.Now}
}

// newID generates a content ID encoding creation time plus randomness.
// IDs are assumed globally unique across all buckets.
func (s *ContentStore) newID() string {
	return fmt.Sprintf("content-%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

// locate scans every bucket for the item with the given ID. Buckets are
// visited in sorted order so repeated scans are deterministic; the first
// structural match wins.
func locate(doc *models.Document, id string) (section string, index int, ok bool) {
	for _, bucket := range doc.Buckets() {
		for i, item := range doc.Content[bucket] {
			if item.ID == id {
				return bucket, i, true
			}
		}
	}
	return "", 0, false
}

// FindByID returns the item with the given ID, or storage.ErrNotFound.
func (s *ContentStore) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return nil, err
	}
	bucket, i, ok := locate(doc, id)
	if !ok {
		return nil, fmt.Errorf("find %s: %w", id, storage.ErrNotFound)
	}
	item := doc.Content[bucket][i]
	return &item, nil
}

// Create adds a new item to the bucket named by its section, creating the
// bucket if absent, and persists the document. The section must be a
// legal content-creation target.
func (s *ContentStore) Create(ctx context.Context, in models.ContentItem) (*models.ContentItem, error) {
	if !sections.IsContentTarget(in.Section) {
		return nil, fmt.Errorf("create in %q: %w", in.Section, ErrInvalidSection)
	}

	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := in
	item.ID = s.newID()
	item.Content = markdown.Clean(in.Content)
	item.ReferencedFiles = markdown.ExtractFileRefs(item.Content)
	item.ViewCount = 0
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.ContentStatusDraft
	}
	if item.Status == models.ContentStatusPublished {
		item.PublishedAt = &now
	} else {
		item.PublishedAt = nil
	}

	doc.Content[item.Section] = append(doc.Content[item.Section], item)

	if err := s.docs.SaveContent(ctx, doc); err != nil {
		return nil, err
	}
	return &item, nil
}

// Patch carries the fields of an update request. Nil fields are left
// untouched; present fields overwrite (shallow merge).
type Patch struct {
	Title       *string               `json:"title"`
	Content     *string               `json:"content"`
	Type        *models.ContentType   `json:"type"`
	Status      *models.ContentStatus `json:"status"`
	Category    *string               `json:"category"`
	Author      *string               `json:"author"`
	Images      *[]string             `json:"images"`
	YoutubeID   *string               `json:"youtubeId"`
	YoutubeURLs *models.StringList    `json:"youtubeUrls"`
}

// Update merges a patch over an existing item and persists the document.
// When the markdown body changes, files referenced only by the old body
// are deleted best-effort (orphan cleanup).
func (s *ContentStore) Update(ctx context.Context, id string, patch Patch) (*models.ContentItem, error) {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return nil, err
	}
	bucket, i, ok := locate(doc, id)
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, storage.ErrNotFound)
	}

	old := doc.Content[bucket][i]
	item := old

	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Content != nil {
		item.Content = markdown.Clean(*patch.Content)
	}
	if patch.Type != nil {
		item.Type = *patch.Type
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Author != nil {
		item.Author = *patch.Author
	}
	if patch.Images != nil {
		item.Images = *patch.Images
	}
	if patch.YoutubeID != nil {
		item.YoutubeID = *patch.YoutubeID
	}
	if patch.YoutubeURLs != nil {
		item.YoutubeURLs = *patch.YoutubeURLs
	}

	item.ReferencedFiles = markdown.ExtractFileRefs(item.Content)

	if item.Content != old.Content {
		s.cleanupOrphans(ctx, old.Content, item.Content, item.Images)
	}

	now := s.now()
	item.UpdatedAt = now
	if item.Status == models.ContentStatusPublished && item.PublishedAt == nil {
		item.PublishedAt = &now
	}

	doc.Content[bucket][i] = item

	if err := s.docs.SaveContent(ctx, doc); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item from its bucket and deletes every file it
// references — upload paths and raw URLs in the body plus the images
// array, deduplicated. File deletions are best-effort: failures are
// logged and the item removal still proceeds.
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return err
	}
	bucket, i, ok := locate(doc, id)
	if !ok {
		return fmt.Errorf("delete %s: %w", id, storage.ErrNotFound)
	}

	item := doc.Content[bucket][i]

	refs := markdown.ExtractFileRefs(item.Content)
	seen := make(map[string]bool, len(refs)+len(item.Images))
	for _, ref := range refs {
		seen[ref] = true
	}
	for _, img := range item.Images {
		if !seen[img] {
			seen[img] = true
			refs = append(refs, img)
		}
	}

	for _, ref := range refs {
		if err := s.files.DeleteFile(ctx, ref); err != nil {
			slog.Warn("cascading file delete failed", "file", ref, "item", id, "error", err)
		}
	}

	doc.Content[bucket] = append(doc.Content[bucket][:i], doc.Content[bucket][i+1:]...)

	return s.docs.SaveContent(ctx, doc)
}

// IncrementView bumps an item's view counter and persists the document.
// There is no debouncing; concurrent increments race and the loser's
// write is rejected by the revision precondition.
func (s *ContentStore) IncrementView(ctx context.Context, id string) (int, error) {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return 0, err
	}
	bucket, i, ok := locate(doc, id)
	if !ok {
		return 0, fmt.Errorf("increment view %s: %w", id, storage.ErrNotFound)
	}

	doc.Content[bucket][i].ViewCount++
	doc.Content[bucket][i].UpdatedAt = s.now()

	if err := s.docs.SaveContent(ctx, doc); err != nil {
		return 0, err
	}
	return doc.Content[bucket][i].ViewCount, nil
}

// ListSection returns the items of a section, newest first. A top-level
// section with subsections aggregates the union of its child buckets; a
// composite path or leaf reads its own bucket. A non-empty status filters
// the result.
func (s *ContentStore) ListSection(ctx context.Context, section string, status models.ContentStatus) ([]models.ContentItem, error) {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return nil, err
	}

	buckets := sections.ChildPaths(section)
	if buckets == nil {
		// Composite "key/subKey" paths and unknown keys read directly.
		buckets = []string{section}
	}

	var items []models.ContentItem
	for _, b := range buckets {
		for _, item := range doc.Content[b] {
			if status != "" && item.Status != status {
				continue
			}
			items = append(items, item)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

// ListAll returns every bucket, each filtered by status and sorted
// newest first. Empty buckets after filtering are omitted.
func (s *ContentStore) ListAll(ctx context.Context, status models.ContentStatus) (map[string][]models.ContentItem, error) {
	doc, err := s.docs.LoadContent(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.ContentItem, len(doc.Content))
	for bucket, items := range doc.Content {
		var kept []models.ContentItem
		for _, item := range items {
			if status != "" && item.Status != status {
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) > 0 {
			sortNewestFirst(kept)
			out[bucket] = kept
		}
	}
	return out, nil
}

// cleanupOrphans deletes files referenced by the old body but by neither
// the new body nor the images array. Failures are logged and swallowed so
// the update itself still succeeds.
func (s *ContentStore) cleanupOrphans(ctx context.Context, oldBody, newBody string, images []string) {
	stillUsed := make(map[string]bool)
	for _, ref := range markdown.ExtractFileRefs(newBody) {
		stillUsed[ref] = true
	}
	for _, img := range images {
		stillUsed[img] = true
	}

	for _, ref := range markdown.ExtractFileRefs(oldBody) {
		if stillUsed[ref] {
			continue
		}
		if err := s.files.DeleteFile(ctx, ref); err != nil {
			slog.Warn("orphan file delete failed", "file", ref, "error", err)
		}
	}
}

// sortNewestFirst orders items by creation time descending.
func sortNewestFirst(items []models.ContentItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})
}
