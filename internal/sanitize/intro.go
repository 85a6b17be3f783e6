package sanitize

import (
	"strings"

	"github.com/jaytaylor/html2text"

	"github.com/sagar7778/emailtemp/internal/utils"
)

const defaultIntroLength = 80

// IntroFromBody derives a short display intro for a message summary,
// preferring the plain-text body and falling back to a text rendering of the
// HTML body.
func IntroFromBody(text, htmlBody string) string {
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return utils.Truncate(collapseWhitespace(trimmed), defaultIntroLength)
	}
	if strings.TrimSpace(htmlBody) == "" {
		return ""
	}

	plain, err := html2text.FromString(htmlBody, html2text.Options{TextOnly: true})
	if err != nil {
		return ""
	}
	return utils.Truncate(collapseWhitespace(plain), defaultIntroLength)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
