package sanitize

import (
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

var allowedTags = []string{"b", "i", "u", "strong", "em", "p"}

type Sanitizer struct {
	policy   *bluemonday.Policy
	maxChars int
}

func NewSanitizer(maxChars int) *Sanitizer {
	if maxChars <= 0 {
		maxChars = domain.MaxTextChars
	}
	return &Sanitizer{
		policy:   newPolicy(),
		maxChars: maxChars,
	}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// Sanitize strips markup outside the allow-list and then enforces the
// character ceiling on what remains.
func (s *Sanitizer) Sanitize(text string) (string, error) {
	clean := s.policy.Sanitize(text)
	if utf8.RuneCountInString(clean) > s.maxChars {
		return "", domain.NewError(domain.ErrTextTooLong, "Text is too long! Max length is %d characters.", s.maxChars)
	}
	return clean, nil
}
