package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainStripsAllMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no markup", "hello world", "hello world"},
		{"inline tag", "<b>hello</b>", "hello"},
		{"script content dropped", "<script>alert(1)</script>", ""},
		{"attributes gone", `<a href="https://evil.example">link</a>`, "link"},
		{"nested", "<div><p onclick=\"x()\">text</p></div>", "text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plain(tt.input))
		})
	}
}

func TestRichRendersMarkdownWithinAllowList(t *testing.T) {
	out := Rich("# Heading\n\nSome *emphasis* and **strong** text.")

	assert.Contains(t, out, "<h1>Heading</h1>")
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.Contains(t, out, "<strong>strong</strong>")
}

func TestRichStripsDisallowedTags(t *testing.T) {
	out := Rich("before <script>alert(1)</script> after")

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(1)")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestRichDropsAttributes(t *testing.T) {
	out := Rich(`<p class="x" onclick="y()">text</p>`)

	assert.Contains(t, out, "text")
	assert.NotContains(t, out, "class")
	assert.NotContains(t, out, "onclick")
}

func TestRichKeepsLinkTextOnly(t *testing.T) {
	// markdown links render as <a href>; anchors are not on the allow-list
	out := Rich("[click me](https://example.com)")

	assert.Contains(t, out, "click me")
	assert.NotContains(t, out, "href")
	assert.NotContains(t, out, "<a")
}
