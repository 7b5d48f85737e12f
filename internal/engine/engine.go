package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/platform"
)

var (
	ErrInvalidURL = errors.New("invalid listing URL")
	ErrNoContent  = errors.New("no usable content extracted")
)

// Extractor turns a listing URL into metadata using the platform's
// selector table.
type Extractor interface {
	Extract(ctx context.Context, rawURL string, info *platform.Info) (*models.ImageMetadata, error)
}

// ImageFetcher downloads and encodes the preview image. Failures here are
// never fatal to a scrape.
type ImageFetcher interface {
	FetchAndEncode(ctx context.Context, imageURL string) (string, error)
}

// Result is the envelope returned for every scrape, success or failure.
type Result struct {
	Success        bool                  `json:"success"`
	RequestID      string                `json:"request_id"`
	Data           *models.ImageMetadata `json:"data,omitempty"`
	Error          string                `json:"error,omitempty"`
	ProcessingTime int64                 `json:"processing_time_ms"`
}

// Engine routes listing URLs to the right extractor and attaches the
// encoded preview image.
type Engine struct {
	plain    Extractor
	rendered Extractor
	images   ImageFetcher
	timeout  time.Duration
	logger   *slog.Logger
}

func New(plain, rendered Extractor, images ImageFetcher, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Engine{
		plain:    plain,
		rendered: rendered,
		images:   images,
		timeout:  timeout,
		logger:   slog.Default().With("component", "engine"),
	}
}

// Scrape extracts metadata for a single listing URL. The whole operation,
// including any headless rendering and the image download, runs under one
// deadline.
func (e *Engine) Scrape(ctx context.Context, rawURL string) *Result {
	start := time.Now()
	requestID := uuid.New().String()
	logger := e.logger.With("request_id", requestID)

	fail := func(err error) *Result {
		logger.Error("scrape failed", "url", rawURL, "error", err)
		return &Result{
			Success:        false,
			RequestID:      requestID,
			Error:          err.Error(),
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	if err := checkURL(rawURL); err != nil {
		return fail(err)
	}

	info, err := platform.Identify(rawURL)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	extractor := e.plain
	if info.RequiresJS {
		extractor = e.rendered
	}
	logger.Info("scraping listing", "url", rawURL, "platform", info.ID, "rendered", info.RequiresJS)

	meta, err := extractor.Extract(ctx, rawURL, info)
	if err != nil {
		return fail(err)
	}
	if !meta.HasContent() {
		return fail(fmt.Errorf("%w: %s", ErrNoContent, rawURL))
	}

	if meta.ImageURL != "" && e.images != nil {
		encoded, err := e.images.FetchAndEncode(ctx, meta.ImageURL)
		if err != nil {
			logger.Warn("image fetch failed", "image_url", meta.ImageURL, "error", err)
		} else {
			meta.ImageBase64 = encoded
		}
	}

	logger.Info("scrape complete",
		"platform", info.ID,
		"has_image", meta.ImageBase64 != "",
		"duration_ms", time.Since(start).Milliseconds())

	return &Result{
		Success:        true,
		RequestID:      requestID,
		Data:           meta,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
