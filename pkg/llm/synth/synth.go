// Package synth renders LLM-authored markdown (community summaries, global
// query answers) down to sanitized plain text safe to store and display,
// grounded on the gomarkdown+bluemonday pipeline icyfire-langgraphgo's
// ReporterNode uses to turn a completion into displayable output.
package synth

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// policy strips all markup rather than allowing a safe subset: summaries and
// answers are stored as plain text, never rendered as HTML in this module.
var policy = bluemonday.StrictPolicy()

// ToPlainText strips an LLM completion of code-fence wrapping, renders it as
// markdown to HTML, then sanitizes the HTML down to plain text. This
// guards against a completion that embeds script tags or other markup
// surviving into a stored summary, and normalizes heading/list markdown into
// readable prose.
func ToPlainText(completion string) string {
	cleaned := stripCodeFence(completion)

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(cleaned))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.Render(doc, renderer)

	plain := policy.Sanitize(string(rendered))
	return strings.TrimSpace(unescapeEntities(plain))
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```md")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// unescapeEntities reverses the small set of HTML entities bluemonday's
// output may still contain after stripping tags (it sanitizes markup, not
// entity references).
func unescapeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
	)
	return replacer.Replace(s)
}
