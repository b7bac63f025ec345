package sanitize

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Two policies cover every piece of user-supplied text in the system:
// Plain for anything stored or broadcast verbatim (post titles and bodies,
// chat messages), Rich for rendering stored post bodies as markup.
var (
	plainPolicy = bluemonday.StrictPolicy()

	richPolicy = bluemonday.NewPolicy().AllowElements(
		"p", "br", "ul", "ol", "li", "strong", "bold", "i", "em", "h1",
	)

	// Raw HTML passes through the renderer untouched; the allow-list
	// policy right after is what strips it. Omitting it at render time
	// would hide user markup from the sanitizer instead of removing it.
	markdown = goldmark.New(
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

// Plain strips every tag and attribute from s.
func Plain(s string) string {
	return plainPolicy.Sanitize(s)
}

// Rich renders s as markdown, then strips the result down to the allowed
// block and inline tags. No attributes survive.
func Rich(s string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return plainPolicy.Sanitize(s)
	}
	return strings.TrimSpace(richPolicy.Sanitize(buf.String()))
}
