package extract

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	leadingJunk   = regexp.MustCompile(`^[^\p{L}\p{N}]+`)
	trailingJunk  = regexp.MustCompile(`[^\p{L}\p{N}]+$`)
)

// CleanText normalizes a scraped scalar value: whitespace runs collapse to
// a single space and leading/trailing non-word junk is stripped.
func CleanText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = leadingJunk.ReplaceAllString(s, "")
	s = trailingJunk.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// stockIDPatterns are tried against the listing URL path in priority order
// when no selector-based id was found.
var stockIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:image|photo|vector|illustration|video)-(\d{5,})`),
	regexp.MustCompile(`(?i)[-_](\d{6,})(?:\.\w+)?/?$`),
	regexp.MustCompile(`/(\d{5,})(?:\.\w+)?/?$`),
}

// idQueryParams are checked as a last resort.
var idQueryParams = []string{"id", "image_id", "photo_id", "asset_id"}

// FallbackStockID extracts a stock id from the URL itself. Returns the
// empty string when nothing matches.
func FallbackStockID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	for _, pattern := range stockIDPatterns {
		if matches := pattern.FindStringSubmatch(parsed.Path); len(matches) > 1 {
			return matches[1]
		}
	}

	query := parsed.Query()
	for _, param := range idQueryParams {
		if v := query.Get(param); v != "" {
			return v
		}
	}

	return ""
}

// splitTags breaks a comma-separated keyword value into individual tags.
// Values without commas come back as a single-element slice.
func splitTags(value string) []string {
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := CleanText(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
