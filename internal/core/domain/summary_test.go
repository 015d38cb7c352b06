package domain

import (
	"errors"
	"testing"
)

func TestNormalizeSummaryProseCollapsesWhitespace(t *testing.T) {
	got := NormalizeSummary(FormProse, "  First   sentence.\n\nSecond\tsentence.  ")
	if got != "First sentence. Second sentence." {
		t.Fatalf("unexpected prose summary: %q", got)
	}
}

func TestNormalizeSummaryBulletBreaksBeforeMarkers(t *testing.T) {
	got := NormalizeSummary(FormBullet, "Key points: * first   point - second point\n• third")
	want := "Key points:\n* first point - second point\n* third"
	if got != want {
		t.Fatalf("unexpected bullet summary:\n got %q\nwant %q", got, want)
	}
}

func TestNormalizeSummaryBulletLeadingMarker(t *testing.T) {
	got := NormalizeSummary(FormBullet, "* one * two")
	if got != "* one\n* two" {
		t.Fatalf("unexpected bullet summary: %q", got)
	}
}

func TestNormalizeSummaryBulletKeepsInlineDashes(t *testing.T) {
	got := NormalizeSummary(FormBullet, "* Revenue grew - mostly in Q3 * Costs fell • slightly")
	want := "* Revenue grew - mostly in Q3\n* Costs fell • slightly"
	if got != want {
		t.Fatalf("unexpected bullet summary:\n got %q\nwant %q", got, want)
	}
}

func TestNormalizeSummaryBulletLineLeadingDashes(t *testing.T) {
	got := NormalizeSummary(FormBullet, "- one\n  - two - three\n• four")
	want := "* one\n* two - three\n* four"
	if got != want {
		t.Fatalf("unexpected bullet summary:\n got %q\nwant %q", got, want)
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrExtraction, cause, "Error extracting text from PDF.")

	if !IsKind(err, ErrExtraction) {
		t.Fatalf("expected extraction kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if UserMessage(err) != "Error extracting text from PDF." {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestUserMessageHidesUnclassifiedErrors(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp 10.0.0.1:443: refused")); got != "An unexpected error occurred." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestSupportedLanguagesIncludesSourceSentinel(t *testing.T) {
	if len(SupportedLanguages()) != 39 {
		t.Fatalf("expected 39 languages, got %d", len(SupportedLanguages()))
	}
	if !IsSupportedLanguage(SourceLanguage) {
		t.Fatalf("expected source language sentinel to be supported")
	}
	if IsSupportedLanguage("Klingon") {
		t.Fatalf("unexpected language accepted")
	}
}
