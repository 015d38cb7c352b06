package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; summarizer/1.0)"
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 10 << 20
)

// invisible elements never contribute to the extracted text.
const invisible = "script, style, noscript, template, svg, iframe, head, object, embed"

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {}, "dd": {},
	"div": {}, "dl": {}, "dt": {}, "fieldset": {}, "figcaption": {}, "figure": {},
	"footer": {}, "form": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {}, "p": {}, "pre": {},
	"section": {}, "table": {}, "td": {}, "th": {}, "tr": {}, "ul": {},
}

var feedContentTypes = map[string]struct{}{
	"application/rss+xml":  {},
	"application/atom+xml": {},
	"application/xml":      {},
	"text/xml":             {},
}

type Config struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Extractor fetches a remote page and returns the text a reader would see.
type Extractor struct {
	client   *http.Client
	feeds    *gofeed.Parser
	maxBytes int64
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &Extractor{
		client:   &http.Client{Timeout: cfg.Timeout},
		feeds:    gofeed.NewParser(),
		maxBytes: cfg.MaxBytes,
	}
}

func (e *Extractor) ExtractURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", domain.Wrap(domain.ErrFetch, fmt.Errorf("create request: %w", err), "Error fetching URL: invalid address.")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req) //nolint:gosec // user supplied URL is the point of this extractor
	if err != nil {
		return "", domain.Wrap(domain.ErrFetch, fmt.Errorf("do request: %w", err), "Error fetching URL: the page could not be reached.")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.WarnContext(ctx, "close_response_body_failed", "url", rawURL, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.Wrap(
			domain.ErrFetch,
			&domain.FetchStatusError{URL: rawURL, StatusCode: resp.StatusCode},
			"Error fetching URL: status code %d.", resp.StatusCode,
		)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBytes), contentType)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("decode charset: %w", err), "Error reading the fetched page.")
	}

	if isFeed(contentType) {
		text, err := e.feedText(ctx, body)
		if err != nil {
			return "", domain.Wrap(domain.ErrExtraction, err, "Error reading the fetched feed.")
		}
		return text, nil
	}

	text, err := VisibleText(body)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, err, "Error reading the fetched page.")
	}
	return text, nil
}

func isFeed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := feedContentTypes[strings.ToLower(mediaType)]
	return ok
}

func (e *Extractor) feedText(ctx context.Context, r io.Reader) (string, error) {
	feed, err := e.feeds.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}

	lines := make([]string, 0, 2+2*len(feed.Items))
	lines = append(lines, strings.TrimSpace(feed.Title))
	if desc := markupText(feed.Description); desc != "" {
		lines = append(lines, desc)
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if title := strings.TrimSpace(item.Title); title != "" {
			lines = append(lines, title)
		}
		body := item.Description
		if body == "" {
			body = item.Content
		}
		if text := markupText(body); text != "" {
			lines = append(lines, text)
		}
	}
	slog.DebugContext(ctx, "feed_extracted", "title", feed.Title, "items", len(feed.Items))
	return collapseBlankLines(strings.Join(lines, "\n")), nil
}

// markupText returns the visible text of an HTML fragment such as a feed item body.
func markupText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text, err := VisibleText(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return text
}

// VisibleText parses an HTML document and returns its rendered text with block
// elements on their own lines.
func VisibleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}
	doc.Find(invisible).Remove()

	var b strings.Builder
	for _, n := range doc.Selection.Nodes {
		writeText(&b, n)
	}
	return collapseBlankLines(b.String()), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	_, block := blockElements[n.Data]
	if n.Type == html.ElementNode && block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && block {
		b.WriteByte('\n')
	}
}

func collapseBlankLines(text string) string {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// isFetchStatus reports whether err carries a non-2xx response with the given code.
func isFetchStatus(err error, code int) bool {
	var statusErr *domain.FetchStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
