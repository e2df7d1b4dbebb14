package render

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxDescriptionRunes = 160

// describe returns the first non-blank candidate trimmed to a meta-description
// length, or the fallback when every candidate is blank.
func describe(candidate, fallback string) string {
	text := collapseSpace(candidate)
	if text == "" {
		text = collapseSpace(fallback)
	}
	return truncate(text, maxDescriptionRunes)
}

func joinPresent(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit-3])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "..."
}

// looksLikeHTML detects content saved by the rich text editor.
func looksLikeHTML(s string) bool {
	s = strings.ToLower(s)
	for _, marker := range []string{"<p", "<br", "<div", "</", "<ul", "<ol", "<h1", "<h2", "<h3", "<img"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// plainText strips markup and collapses whitespace.
func plainText(s string) string {
	if !looksLikeHTML(s) {
		return collapseSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	doc.Find("script, style").Remove()
	parts := make([]string, 0)
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote, td").Each(func(_ int, sel *goquery.Selection) {
		if t := collapseSpace(sel.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return collapseSpace(doc.Text())
	}
	return strings.Join(parts, " ")
}

// bodyHTML renders user content for the static page. Rich text is reduced to
// escaped paragraphs; everything else goes through goldmark with raw HTML off.
func (r *Renderer) bodyHTML(content string) template.HTML {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if looksLikeHTML(content) {
		return richTextParagraphs(content)
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(content) + "</p>") //nolint:gosec // escaped
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark drops raw HTML by default
}

func richTextParagraphs(content string) template.HTML {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(collapseSpace(content)) + "</p>") //nolint:gosec // escaped
	}
	doc.Find("script, style").Remove()
	var b strings.Builder
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote").Each(func(_ int, sel *goquery.Selection) {
		if t := collapseSpace(sel.Text()); t != "" {
			b.WriteString("<p>")
			b.WriteString(template.HTMLEscapeString(t))
			b.WriteString("</p>\n")
		}
	})
	if b.Len() == 0 {
		if t := collapseSpace(doc.Text()); t != "" {
			b.WriteString("<p>" + template.HTMLEscapeString(t) + "</p>\n")
		}
	}
	return template.HTML(b.String()) //nolint:gosec // every fragment is escaped
}

// paragraphs splits plain multi-line text into paragraphs for templates.
func paragraphs(s string) []string {
	out := make([]string, 0)
	for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if t := collapseSpace(block); t != "" {
			out = append(out, t)
		}
	}
	return out
}
