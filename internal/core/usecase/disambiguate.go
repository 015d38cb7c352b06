package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"mvdan.cc/xurls/v2"
)

// URLDisambiguator recognises text submissions that are really a pasted link.
type URLDisambiguator struct {
	pattern *regexp.Regexp
}

func NewURLDisambiguator() (*URLDisambiguator, error) {
	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return nil, fmt.Errorf("create url regexp: %w", err)
	}
	return &URLDisambiguator{pattern: re}, nil
}

// FirstURL returns the first http or https URL found in text, or "".
func (d *URLDisambiguator) FirstURL(text string) string {
	match := d.pattern.FindString(text)
	if match == "" {
		return ""
	}
	parsed, err := url.Parse(match)
	if err != nil {
		return ""
	}
	switch parsed.Scheme {
	case "http", "https":
		return match
	default:
		return ""
	}
}

// Detect returns the URL a text submission starts with. Text that merely
// mentions a link somewhere later is not a URL submission.
func (d *URLDisambiguator) Detect(text string) (string, bool) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	found := d.FirstURL(trimmed)
	if found == "" || !strings.HasPrefix(trimmed, found) {
		return "", false
	}
	return found, true
}
