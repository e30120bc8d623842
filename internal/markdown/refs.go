package markdown

import (
	"regexp"
	"strings"
)

// linkPattern matches markdown image and link destinations: ![alt](url)
// and [text](url), with an optional title after the URL.
var linkPattern = regexp.MustCompile(`!?\[[^\]]*\]\(\s*([^)\s]+)[^)]*\)`)

// ExtractFileRefs returns the upload-managed file references in a markdown
// body, deduplicated in order of first appearance. A reference is either a
// root-relative upload path (/uploads/...) or an absolute raw repository
// URL. Other destinations (external sites, anchors) are ignored.
func ExtractFileRefs(body string) []string {
	matches := linkPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var refs []string
	for _, m := range matches {
		ref := m[1]
		if !isUploadRef(ref) {
			continue
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// isUploadRef reports whether a link destination points at a file managed
// by the upload store.
func isUploadRef(ref string) bool {
	if strings.HasPrefix(ref, "/uploads/") || strings.HasPrefix(ref, "uploads/") {
		return true
	}
	return strings.Contains(ref, "raw.githubusercontent.com/")
}
