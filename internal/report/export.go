package report

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/existflow/ironmeet/internal/model"
)

var whitespace = regexp.MustCompile(`\s+`)

// FileName returns the download name for a meeting's report
func FileName(title string) string {
	return whitespace.ReplaceAllString(title, "_") + "_Report.md"
}

// EmailDraft returns a mailto link prefilled with the report
func EmailDraft(m model.Meeting, content string) string {
	q := url.Values{}
	q.Set("subject", "Meeting Report: "+m.Title)
	q.Set("body", content)
	// mail clients expect %20, not +
	return "mailto:?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}
