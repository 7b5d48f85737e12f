package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stocklens/stocklens/internal/models"
)

// jsonLDDocument covers the ImageObject/CreativeWork fields the platforms
// actually embed. Keywords appear both as arrays and comma-joined strings.
type jsonLDDocument struct {
	Type         any              `json:"@type"`
	Name         string           `json:"name"`
	Headline     string           `json:"headline"`
	Description  string           `json:"description"`
	Keywords     any              `json:"keywords"`
	ContentURL   string           `json:"contentUrl"`
	ThumbnailURL string           `json:"thumbnailUrl"`
	Graph        []jsonLDDocument `json:"@graph"`
}

// backfillFromJSONLD fills fields the selector pass missed from embedded
// structured-data blocks. Selector results always take precedence.
func backfillFromJSONLD(doc *goquery.Document, meta *models.ImageMetadata) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var parsed jsonLDDocument
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			// Some platforms emit a top-level array of documents.
			var list []jsonLDDocument
			if err := json.Unmarshal([]byte(raw), &list); err != nil {
				return
			}
			for _, d := range list {
				applyJSONLD(d, meta)
			}
			return
		}

		applyJSONLD(parsed, meta)
		for _, d := range parsed.Graph {
			applyJSONLD(d, meta)
		}
	})
}

func applyJSONLD(d jsonLDDocument, meta *models.ImageMetadata) {
	if meta.Title == "" {
		if d.Name != "" {
			meta.Title = d.Name
		} else if d.Headline != "" {
			meta.Title = d.Headline
		}
	}
	if meta.Description == "" && d.Description != "" {
		meta.Description = d.Description
	}
	if meta.ImageURL == "" {
		if d.ContentURL != "" {
			meta.ImageURL = d.ContentURL
		} else if d.ThumbnailURL != "" {
			meta.ImageURL = d.ThumbnailURL
		}
	}

	switch kw := d.Keywords.(type) {
	case string:
		for _, tag := range splitTags(kw) {
			meta.AddTag(tag)
		}
	case []any:
		for _, item := range kw {
			if s, ok := item.(string); ok {
				if tag := CleanText(s); tag != "" {
					meta.AddTag(tag)
				}
			}
		}
	}
}
