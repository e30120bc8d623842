// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// ContentType classifies a content item within a section bucket.
type ContentType string

const (
	ContentTypeArticle      ContentType = "article"
	ContentTypeAnnouncement ContentType = "announcement"
	ContentTypePress        ContentType = "press"
	ContentTypeAcademic     ContentType = "academic"
	ContentTypeVideo        ContentType = "video"
)

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// ValidContentType reports whether t is one of the known content types.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentTypeArticle, ContentTypeAnnouncement, ContentTypePress,
		ContentTypeAcademic, ContentTypeVideo:
		return true
	}
	return false
}

// ContentItem is a single entry in a section bucket of the persisted
// document. Field names match the JSON layout stored in the repository.
type ContentItem struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Section         string        `json:"section"`
	Type            ContentType   `json:"type"`
	Status          ContentStatus `json:"status"`
	Category        string        `json:"category,omitempty"`
	Author          string        `json:"author,omitempty"`
	Images          []string      `json:"images,omitempty"`
	YoutubeID       string        `json:"youtubeId,omitempty"`
	YoutubeURLs     StringList    `json:"youtubeUrls,omitempty"`
	ReferencedFiles []string      `json:"referencedFiles,omitempty"`
	ViewCount       int           `json:"viewCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	PublishedAt     *time.Time    `json:"publishedAt,omitempty"`
}

// IsPublished returns true if the item is in published status.
func (c *ContentItem) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// StringList is a []string that also accepts a single newline-separated
// string when decoding JSON. The admin form historically submitted video
// URLs as one textarea value, so existing documents contain both shapes.
type StringList []string

// UnmarshalJSON decodes either a JSON array of strings or a single string
// whose lines become the list elements. Blank lines are dropped.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	var out []string
	for _, line := range strings.Split(single, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	*s = out
	return nil
}

// Document is the full persisted state: one bucket of items per section
// path. The revision token identifies the blob version this document was
// loaded from; it is not part of the logical content and is consumed by
// the storage adapter as a write precondition.
type Document struct {
	Content map[string][]ContentItem `json:"content"`

	rev string
}

// NewDocument returns an empty document with no buckets.
func NewDocument() *Document {
	return &Document{Content: map[string][]ContentItem{}}
}

// Rev returns the revision token captured when the document was loaded,
// or the empty string for a document that has never been persisted.
func (d *Document) Rev() string { return d.rev }

// SetRev records the revision token for a loaded document.
func (d *Document) SetRev(rev string) { d.rev = rev }

// Buckets returns the section paths of the document in sorted order, so
// scans across buckets are deterministic.
func (d *Document) Buckets() []string {
	keys := make([]string, 0, len(d.Content))
	for k := range d.Content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
