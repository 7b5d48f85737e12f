package models

import (
	"time"
)

// ImageMetadata holds everything extracted from a single stock-photo listing.
// Missing scalar fields are empty strings, never omitted.
type ImageMetadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StockID     string    `json:"stock_id"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	Platform    string    `json:"platform"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

func NewImageMetadata(platform string) *ImageMetadata {
	return &ImageMetadata{
		Platform:  platform,
		Tags:      make([]string, 0),
		ScrapedAt: time.Now(),
	}
}

// HasContent reports whether the scrape found enough to be usable.
// A record with neither a title nor an image URL is treated as a failed
// extraction even when the HTTP fetch itself succeeded.
func (m *ImageMetadata) HasContent() bool {
	return m.Title != "" || m.ImageURL != ""
}

// AddTag appends a tag unless it is empty or already present,
// preserving discovery order.
func (m *ImageMetadata) AddTag(tag string) {
	if tag == "" {
		return
	}
	for _, existing := range m.Tags {
		if existing == tag {
			return
		}
	}
	m.Tags = append(m.Tags, tag)
}
