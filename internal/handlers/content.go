// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orgpress/internal/cache"
	"orgpress/internal/markdown"
	"orgpress/internal/models"
	"orgpress/internal/store"
)

// Content groups the content CRUD handlers.
type Content struct {
	store *store.ContentStore
	cache *cache.ContentCache // optional; nil disables listing caching
}

// NewContent creates the content handler group.
func NewContent(s *store.ContentStore, c *cache.ContentCache) *Content {
	return &Content{store: s, cache: c}
}

// List returns content buckets, optionally narrowed to one section and
// one status. Responses are cached briefly when a cache is configured.
func (h *Content) List(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	status := models.ContentStatus(r.URL.Query().Get("status"))

	var cacheKey string
	if h.cache != nil {
		cacheKey = cache.ListKey(section, string(status))
		if payload, ok := h.cache.Get(r.Context(), cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	buckets, err := h.listBuckets(r, section, status)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	payload, err := json.Marshal(map[string]any{"content": buckets})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), cacheKey, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (h *Content) listBuckets(r *http.Request, section string, status models.ContentStatus) (map[string][]models.ContentItem, error) {
	if section == "" {
		return h.store.ListAll(r.Context(), status)
	}
	items, err := h.store.ListSection(r.Context(), section, status)
	if err != nil {
		return nil, err
	}
	buckets := map[string][]models.ContentItem{}
	if len(items) > 0 {
		buckets[section] = items
	}
	return buckets, nil
}

// Get returns a single item by ID. With ?render=html the markdown body is
// additionally rendered to HTML.
func (h *Content) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if r.URL.Query().Get("render") == "html" {
		html, err := markdown.ToHTML(item.Content)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			models.ContentItem
			HTML string `json:"html"`
		}{*item, html})
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Create adds a new content item.
func (h *Content) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ContentItem
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateNewContent(&in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.store.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusCreated, created)
}

// Update merges a partial patch over an existing item.
func (h *Content) Update(w http.ResponseWriter, r *http.Request) {
	var patch store.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validatePatch(&patch); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an item and cascades to its referenced files.
func (h *Content) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// View increments an item's view counter.
func (h *Content) View(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.IncrementView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"viewCount": count})
}

func (h *Content) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}
}
