// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown handles the markdown bodies of content items: cleanup
// of double-escaped form submissions, extraction of referenced upload
// files, and HTML rendering via goldmark for public single-item reads.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // raw HTML pass-through for legacy content bodies
	),
)

// ToHTML converts a markdown body into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleaner undoes the double-escaping the admin form layer introduces when
// it serializes markdown bodies. The literal backslash pair must be listed
// first so it wins over the shorter sequences at the same position.
//
// Note this is lossy for genuinely escaped markdown (`\#`, `\-`, `\>`):
// those sequences cannot be told apart from the form artifacts, so the
// backslash is always stripped.
var cleaner = strings.NewReplacer(
	`\\`, `\`,
	`\n`, "\n",
	`\"`, `"`,
	`\#`, "#",
	`\>`, ">",
	`\-`, "-",
)

// Clean strips escape artifacts from a markdown body submitted through the
// admin form. Applied on every create and update.
func Clean(body string) string {
	return cleaner.Replace(body)
}
