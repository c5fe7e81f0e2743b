package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// PlainText strips markup from community-submitted rich text. Block
// elements become line breaks so paragraphs survive.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return CleanText(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CleanText(html)
	}
	doc.Find("script, style, iframe, object").Remove()

	var lines []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td").Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are picked up by their innermost match only.
		if s.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td").Length() > 0 {
			return
		}
		if t := CleanText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return CleanText(doc.Text())
	}
	return strings.Join(lines, "\n")
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
