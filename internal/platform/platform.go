package platform

import (
	"fmt"
	"regexp"
	"strings"
)

// Field names a logical metadata slot in a selector table.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
	FieldTags        Field = "tags"
	FieldCategory    Field = "category"
	FieldStockID     Field = "stock_id"
)

// Rewrite upgrades a discovered image URL to a larger rendition when the
// platform encodes the size in the URL itself.
type Rewrite struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Info is the static definition of one supported platform. Values are
// built once at package init and never mutated afterwards.
type Info struct {
	ID         string
	Name       string
	Domain     string
	RequiresJS bool

	domainPattern *regexp.Regexp

	// Selectors are tried in order; for every field except tags the first
	// selector yielding non-empty content wins. Tag selectors all
	// contribute, deduplicated by first occurrence.
	Selectors map[Field][]string

	// TitleTrim strips platform branding suffixes from extracted titles.
	TitleTrim []*regexp.Regexp

	// ImageRewrites request larger renditions via known URL patterns.
	ImageRewrites []Rewrite
}

// Matches reports whether the URL belongs to this platform.
func (p *Info) Matches(rawURL string) bool {
	return p.domainPattern.MatchString(rawURL)
}

var registry = []*Info{
	{
		ID:            "shutterstock",
		Name:          "Shutterstock",
		Domain:        "shutterstock.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)shutterstock\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1[data-automation="image-title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[data-automation="mosaic-grid-cell-image"]`},
			FieldTags:        {`meta[name="keywords"]`, `a[data-automation="keyword-pill"]`, `[data-testid="keywords-list"] a`},
			FieldCategory:    {`[data-automation="breadcrumbs"] a`, `nav[aria-label="Breadcrumb"] a`},
			FieldStockID:     {`[data-automation="image-id"]`},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Shutterstock\s*$`),
			regexp.MustCompile(`\s*Stock Photo\s*$`),
		},
		ImageRewrites: []Rewrite{
			{Pattern: regexp.MustCompile(`-260nw-`), Replacement: "-1500w-"},
			{Pattern: regexp.MustCompile(`-600nw-`), Replacement: "-1500w-"},
		},
	},
	{
		ID:            "adobestock",
		Name:          "Adobe Stock",
		Domain:        "stock.adobe.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)stock\.adobe\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1[data-t="asset-title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img#detail-image`},
			FieldTags:        {`meta[name="keywords"]`, `[data-t="keywords"] a`, `.details-keywords a`},
			FieldCategory:    {`[data-t="category-link"]`, `.breadcrumbs a`},
			FieldStockID:     {`[data-t="asset-id"]`},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Adobe Stock\s*$`),
			regexp.MustCompile(`\s*Stock (?:Photo|Vector|Illustration)\s*$`),
		},
		ImageRewrites: []Rewrite{
			{Pattern: regexp.MustCompile(`/240_F_`), Replacement: "/500_F_"},
		},
	},
	{
		ID:            "gettyimages",
		Name:          "Getty Images",
		Domain:        "gettyimages.com",
		RequiresJS:    true,
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)gettyimages\.(?:com|de|co\.uk|fr)`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1[data-testid="asset-title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[data-testid="asset-image"]`},
			FieldTags:        {`meta[name="keywords"]`, `[data-testid="related-searches"] a`},
			FieldCategory:    {`[data-testid="asset-category"]`},
			FieldStockID:     {`[data-testid="asset-id"]`},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Getty Images\s*$`),
			regexp.MustCompile(`\s*(?:High-Res|Stock) (?:Photo|Photograph)\s*$`),
		},
	},
	{
		ID:            "istockphoto",
		Name:          "iStock",
		Domain:        "istockphoto.com",
		RequiresJS:    true,
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)istockphoto\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1[data-testid="asset-title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `[data-testid="hero-image"] img`},
			FieldTags:        {`meta[name="keywords"]`, `[data-testid="keywords"] a`},
			FieldCategory:    {`[data-testid="breadcrumbs"] a`},
			FieldStockID:     {`[data-testid="asset-id"]`},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*iStock\s*$`),
			regexp.MustCompile(`\s*Stock Photo\s*$`),
		},
	},
	{
		ID:            "unsplash",
		Name:          "Unsplash",
		Domain:        "unsplash.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)unsplash\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `meta[name="twitter:title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[data-testid="photo-detail-image"]`},
			FieldTags:        {`meta[name="keywords"]`, `a[data-testid="photos-route-tag"]`, `[title="Related tags"] ~ div a`},
			FieldCategory:    {`[data-testid="photo-topic"] a`},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Unsplash\s*$`),
			regexp.MustCompile(`^Photo by .*? on\s*`),
		},
		ImageRewrites: []Rewrite{
			{Pattern: regexp.MustCompile(`([?&])w=\d+`), Replacement: "${1}w=1600"},
		},
	},
	{
		ID:            "pexels",
		Name:          "Pexels",
		Domain:        "pexels.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)pexels\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[data-image]`},
			FieldTags:        {`meta[name="keywords"]`, `[data-testid="photo-page-tags"] a`},
			FieldCategory:    {},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[·|\-–]\s*Free Stock Photo\s*$`),
			regexp.MustCompile(`\s*[|\-–]\s*Pexels\s*$`),
		},
		ImageRewrites: []Rewrite{
			{Pattern: regexp.MustCompile(`([?&])w=\d+`), Replacement: "${1}w=1600"},
		},
	},
	{
		ID:            "pixabay",
		Name:          "Pixabay",
		Domain:        "pixabay.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)pixabay\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `picture img`},
			FieldTags:        {`meta[name="keywords"]`, `.tags a`, `a[href^="/images/search/"]`},
			FieldCategory:    {`.breadcrumbs a`},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[·|\-–]\s*Pixabay\s*$`),
			regexp.MustCompile(`\s*[·|\-–]\s*Free (?:photo|image) on\s*$`),
		},
		ImageRewrites: []Rewrite{
			{Pattern: regexp.MustCompile(`_640(\.\w+)$`), Replacement: "_1280${1}"},
		},
	},
	{
		ID:            "freepik",
		Name:          "Freepik",
		Domain:        "freepik.com",
		RequiresJS:    true,
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)freepik\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[data-cy="resource-detail-preview"]`},
			FieldTags:        {`meta[name="keywords"]`, `[data-cy="related-tags"] a`, `.detail__related a`},
			FieldCategory:    {`.breadcrumb a`},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Freepik\s*$`),
			regexp.MustCompile(`\s*[|\-–]\s*(?:Free|Premium) (?:Photo|Vector|PSD)\s*$`),
		},
	},
	{
		ID:            "depositphotos",
		Name:          "Depositphotos",
		Domain:        "depositphotos.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)depositphotos\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img.file-big-image__img`},
			FieldTags:        {`meta[name="keywords"]`, `.related-keywords a`},
			FieldCategory:    {`.breadcrumbs a`},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–—]\s*Depositphotos\s*$`),
			regexp.MustCompile(`\s*(?:Stock Photo|Royalty Free .*)\s*$`),
		},
	},
	{
		ID:            "dreamstime",
		Name:          "Dreamstime",
		Domain:        "dreamstime.com",
		domainPattern: regexp.MustCompile(`(?i)(?:^|\.|//)dreamstime\.com`),
		Selectors: map[Field][]string{
			FieldTitle:       {`meta[property="og:title"]`, `h1[itemprop="name"]`, `h1`},
			FieldDescription: {`meta[property="og:description"]`, `meta[name="description"]`, `[itemprop="description"]`},
			FieldImage:       {`meta[property="og:image"]`, `img[itemprop="contentUrl"]`},
			FieldTags:        {`meta[name="keywords"]`, `.tags-list a`},
			FieldCategory:    {`.breadcrumb a`},
			FieldStockID:     {},
		},
		TitleTrim: []*regexp.Regexp{
			regexp.MustCompile(`\s*[|\-–]\s*Dreamstime\s*$`),
			regexp.MustCompile(`\s*Stock (?:Photo|Image)(?:\s*-\s*Image of .*)?\s*$`),
		},
	},
}

// All returns the supported platforms in identification order.
func All() []*Info {
	out := make([]*Info, len(registry))
	copy(out, registry)
	return out
}

// Get looks up a platform by id.
func Get(id string) (*Info, bool) {
	for _, p := range registry {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Identify maps a listing URL to its platform. The registry is tested in a
// fixed order and the first domain match wins.
func Identify(rawURL string) (*Info, error) {
	for _, p := range registry {
		if p.Matches(rawURL) {
			return p, nil
		}
	}
	return nil, &UnsupportedPlatformError{URL: rawURL}
}

// UnsupportedPlatformError is returned when no domain pattern matches.
// Its message enumerates every supported domain so callers can surface
// the full list to users.
type UnsupportedPlatformError struct {
	URL string
}

func (e *UnsupportedPlatformError) Error() string {
	domains := make([]string, len(registry))
	for i, p := range registry {
		domains[i] = p.Domain
	}
	return fmt.Sprintf("unsupported platform for %q: supported domains are %s",
		e.URL, strings.Join(domains, ", "))
}
