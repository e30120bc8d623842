package handlers

import (
	"strings"
	"unicode/utf8"

	"orgpress/internal/models"
	"orgpress/internal/store"
)

// Validation limits for content fields.
const (
	maxTitleLen    = 300
	maxBodyLen     = 100_000
	maxCategoryLen = 200
)

// validateNewContent checks a create request and returns the first error
// found as a user-facing message, or "" when valid.
func validateNewContent(in *models.ContentItem) string {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if in.Section == "" {
		return "Section is required."
	}
	if in.Type != "" && !models.ValidContentType(in.Type) {
		return "Unknown content type."
	}
	if !validStatus(in.Status) {
		return "Status must be draft or published."
	}
	return validateCommon(in.Content, in.Category)
}

// validatePatch checks an update request.
func validatePatch(p *store.Patch) string {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return "Title cannot be empty."
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return "Title is too long (max 300 characters)."
		}
		p.Title = &title
	}
	if p.Type != nil && !models.ValidContentType(*p.Type) {
		return "Unknown content type."
	}
	if p.Status != nil && !validStatus(*p.Status) {
		return "Status must be draft or published."
	}
	var body, category string
	if p.Content != nil {
		body = *p.Content
	}
	if p.Category != nil {
		category = *p.Category
	}
	return validateCommon(body, category)
}

func validateCommon(body, category string) string {
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Content is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "Category is too long (max 200 characters)."
	}
	return ""
}

func validStatus(s models.ContentStatus) bool {
	return s == "" || s == models.ContentStatusDraft || s == models.ContentStatusPublished
}
