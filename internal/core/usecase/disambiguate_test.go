package usecase

import "testing"

func TestURLDisambiguatorDetect(t *testing.T) {
	d, err := NewURLDisambiguator()
	if err != nil {
		t.Fatalf("NewURLDisambiguator() error = %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "bare url", in: "https://example.com/page", want: "https://example.com/page", ok: true},
		{name: "http url", in: "http://example.com", want: "http://example.com", ok: true},
		{name: "leading whitespace", in: "  https://example.com/a", want: "https://example.com/a", ok: true},
		{name: "url followed by text", in: "https://example.com/a read this", want: "https://example.com/a", ok: true},
		{name: "url in the middle", in: "see https://example.com for more", ok: false},
		{name: "other scheme", in: "ftp://example.com/file", ok: false},
		{name: "plain text", in: "nothing to see here", ok: false},
	}

	for _, tt := range tests {
		got, ok := d.Detect(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("%s: Detect(%q) = %q, %v; want %q, %v", tt.name, tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestURLDisambiguatorFirstURL(t *testing.T) {
	d, err := NewURLDisambiguator()
	if err != nil {
		t.Fatalf("NewURLDisambiguator() error = %v", err)
	}
	if got := d.FirstURL("read https://example.com/x and http://other.org"); got != "https://example.com/x" {
		t.Fatalf("unexpected first url %q", got)
	}
	if got := d.FirstURL("mailto:someone@example.com"); got != "" {
		t.Fatalf("expected no url, got %q", got)
	}
}
