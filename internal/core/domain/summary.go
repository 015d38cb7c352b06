package domain

import "strings"

// lineMarkers open a bullet only as the first word of a line, so dashes
// inside a sentence survive.
var lineMarkers = map[string]struct{}{
	"-": {},
	"•": {},
}

// NormalizeSummary collapses whitespace in raw model output. For bullet summaries
// every standalone "*" starts a new line, as does a "-" or "•" that opens a line.
func NormalizeSummary(form OutputForm, raw string) string {
	if form != FormBullet {
		return strings.Join(strings.Fields(raw), " ")
	}

	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		for i, word := range strings.Fields(line) {
			_, opensLine := lineMarkers[word]
			if word == "*" || (i == 0 && opensLine) {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString("*")
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(word)
		}
	}
	return b.String()
}
