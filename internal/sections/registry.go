// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sections defines the static registry of site sections. A section
// either holds content directly under its own key (a leaf) or is divided
// into subsections, in which case content only ever lives under composite
// "key/subKey" paths. The registry drives navigation labels, breadcrumbs,
// and validation of content-creation targets.
package sections

import "strings"

// Section describes one named area of the site.
type Section struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Subsections map[string]string `json:"subsections,omitempty"`
}

// HasSubsections reports whether the section is divided into subsections.
func (s Section) HasSubsections() bool {
	return len(s.Subsections) > 0
}

// registry is the fixed table of site sections, in navigation order.
var registry = []Section{
	{
		Key:         "about",
		Name:        "About Us",
		Description: "Who we are and what we do",
	},
	{
		Key:         "announcements",
		Name:        "Announcements",
		Description: "News and official announcements",
	},
	{
		Key:         "activities",
		Name:        "Activities",
		Description: "Events, programs and ongoing work",
	},
	{
		Key:         "library",
		Name:        "Library",
		Description: "Published material and archives",
		Subsections: map[string]string{
			"press":    "Press Coverage",
			"academic": "Academic Publications",
			"reports":  "Reports",
		},
	},
	{
		Key:         "media",
		Name:        "Media",
		Description: "Videos and photo galleries",
		Subsections: map[string]string{
			"videos":  "Videos",
			"gallery": "Photo Gallery",
		},
	},
}

// contentTargets is the allow-list of section paths that accept content.
// It is narrower than the registry: "about" is a fixed page maintained
// outside the content system.
var contentTargets = map[string]bool{
	"announcements":    true,
	"activities":       true,
	"library/press":    true,
	"library/academic": true,
	"library/reports":  true,
	"media/videos":     true,
	"media/gallery":    true,
}

// All returns every registered section in navigation order.
func All() []Section {
	out := make([]Section, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the section registered under key.
func Lookup(key string) (Section, bool) {
	for _, s := range registry {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// IsContentTarget reports whether path is a legal content-creation target.
func IsContentTarget(path string) bool {
	return contentTargets[path]
}

// ChildPaths returns the bucket paths aggregated for a top-level section:
// every "key/subKey" path for a section with subsections, or the section's
// own key for a leaf. Returns nil for unknown keys.
func ChildPaths(key string) []string {
	s, ok := Lookup(key)
	if !ok {
		return nil
	}
	if !s.HasSubsections() {
		return []string{s.Key}
	}
	paths := make([]string, 0, len(s.Subsections))
	for sub := range s.Subsections {
		paths = append(paths, s.Key+"/"+sub)
	}
	return paths
}

// Breadcrumb resolves a section path to its display labels, one per path
// element. Unknown elements fall back to the raw key so callers always get
// something renderable.
func Breadcrumb(path string) []string {
	parts := strings.SplitN(path, "/", 2)
	s, ok := Lookup(parts[0])
	if !ok {
		return parts
	}
	labels := []string{s.Name}
	if len(parts) == 2 {
		if name, ok := s.Subsections[parts[1]]; ok {
			labels = append(labels, name)
		} else {
			labels = append(labels, parts[1])
		}
	}
	return labels
}
