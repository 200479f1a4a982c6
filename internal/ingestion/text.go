package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/claimhound/internal/types"
)

var (
	htmlTagPattern   = regexp.MustCompile(`<[a-zA-Z/][^>]*>|&[a-zA-Z]+;|&#[0-9]+;`)
	inlineSpaceRun   = regexp.MustCompile(`[ \t]+`)
	excessBlankLines = regexp.MustCompile(`\n\n\n+`)
)

// LooksLikeHTML reports whether text contains markup or entities.
func LooksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// StripHTML converts markup in a post body to plain text. Line breaks from
// <br> and block elements are kept as newlines.
func StripHTML(text string) string {
	if !LooksLikeHTML(text) {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return CleanText(doc.Text())
}

// CleanText normalizes line endings, collapses runs of spaces and tabs, and
// keeps at most one blank line between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaceRun.ReplaceAllString(line, " "))
	}

	result := strings.Join(lines, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// StripHTMLColumn rewrites one column of every post with StripHTML.
// Posts are copied; the input slice is left untouched.
func StripHTMLColumn(posts []types.Post, column string) []types.Post {
	out := make([]types.Post, len(posts))
	for i, post := range posts {
		cp := make(types.Post, len(post))
		for k, v := range post {
			cp[k] = v
		}
		if v, ok := cp[column]; ok {
			cp[column] = StripHTML(v)
		}
		out[i] = cp
	}
	return out
}
