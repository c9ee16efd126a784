package github

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadmeLimit is the maximum number of characters of README text kept.
const ReadmeLimit = 4000

var blankLines = regexp.MustCompile(`\n{3,}`)

// CleanReadme strips embedded HTML (badges, images, layout tags) from a
// README, keeping its text, and truncates the result to ReadmeLimit characters.
func CleanReadme(raw string) string {
	text := raw
	if strings.Contains(raw, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			doc.Find("script, style, img, picture, svg").Remove()
			text = doc.Text()
		}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return truncateRunes(strings.TrimSpace(text), ReadmeLimit)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
