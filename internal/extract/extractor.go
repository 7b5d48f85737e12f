package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/platform"
)

var ErrExtractionFailed = errors.New("extraction failed")

// Many stock sites reject default client signatures, so every fetch goes
// out with a desktop browser User-Agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// attribute preference when reading a matched element: meta content first,
// then image sources, then text.
var valueAttrs = []string{"content", "src", "data-src"}

// HTTPExtractor scrapes platforms that serve usable HTML without scripting.
type HTTPExtractor struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPExtractor(timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "http_extractor"),
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string, info *platform.Info) (*models.ImageMetadata, error) {
	html, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, info.ID, err)
	}
	meta, err := Parse(html, rawURL, info)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, info.ID, err)
	}
	return meta, nil
}

func (e *HTTPExtractor) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// Parse runs the platform's selector table over an HTML document and
// assembles the metadata record. Both the plain and the rendered
// extraction paths share this pipeline.
func Parse(html, rawURL string, info *platform.Info) (*models.ImageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := models.NewImageMetadata(info.ID)

	meta.Title = firstMatch(doc, info.Selectors[platform.FieldTitle])
	meta.Description = firstMatch(doc, info.Selectors[platform.FieldDescription])
	meta.Category = firstMatch(doc, info.Selectors[platform.FieldCategory])
	meta.ImageURL = firstMatch(doc, info.Selectors[platform.FieldImage])

	collectTags(doc, info.Selectors[platform.FieldTags], meta)

	meta.StockID = firstMatch(doc, info.Selectors[platform.FieldStockID])
	if meta.StockID == "" {
		meta.StockID = FallbackStockID(rawURL)
	}

	backfillFromJSONLD(doc, meta)

	for _, trim := range info.TitleTrim {
		meta.Title = trim.ReplaceAllString(meta.Title, "")
	}

	meta.Title = CleanText(meta.Title)
	meta.Description = CleanText(meta.Description)
	meta.Category = CleanText(meta.Category)
	meta.StockID = CleanText(meta.StockID)

	meta.ImageURL = resolveImageURL(meta.ImageURL, rawURL, info)

	return meta, nil
}

// firstMatch walks a selector list in priority order and returns the first
// non-empty value, preferring an explicit content/src attribute over text.
func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var value string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			value = elementValue(s)
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return ""
}

func elementValue(s *goquery.Selection) string {
	for _, attr := range valueAttrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(s.Text())
}

// collectTags accumulates matches from every selector in the list. Tags can
// legitimately be scattered over several DOM regions, so unlike the scalar
// fields this is not first-match-wins.
func collectTags(doc *goquery.Document, selectors []string, meta *models.ImageMetadata) {
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			value := elementValue(s)
			if value == "" {
				return
			}
			for _, tag := range splitTags(value) {
				meta.AddTag(tag)
			}
		})
	}
}

// resolveImageURL makes the discovered URL absolute against the listing
// page and applies the platform's rendition upgrades.
func resolveImageURL(imageURL, pageURL string, info *platform.Info) string {
	if imageURL == "" {
		return ""
	}

	resolved := imageURL
	if base, err := url.Parse(pageURL); err == nil {
		if ref, err := url.Parse(imageURL); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
	}

	for _, rw := range info.ImageRewrites {
		if rw.Pattern.MatchString(resolved) {
			resolved = rw.Pattern.ReplaceAllString(resolved, rw.Replacement)
			break
		}
	}
	return resolved
}
