package handlers

import (
	"net/http"

	"orgpress/internal/sections"
)

// Sections serves the static section registry for navigation and
// breadcrumb rendering.
type Sections struct{}

// NewSections creates the sections handler group.
func NewSections() *Sections {
	return &Sections{}
}

// List returns every registered section in navigation order.
func (h *Sections) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sections": sections.All()})
}
