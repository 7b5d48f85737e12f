package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stocklens/stocklens/internal/browser"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/platform"
)

// RenderedExtractor handles platforms that only populate their DOM through
// client-side scripting. Every call launches its own sandboxed browser so
// no state leaks between concurrent scrapes.
type RenderedExtractor struct {
	opts       *browser.Options
	navTimeout time.Duration
	logger     *slog.Logger
}

func NewRenderedExtractor(opts *browser.Options, navTimeout time.Duration) *RenderedExtractor {
	if opts == nil {
		opts = browser.DefaultOptions()
	}
	return &RenderedExtractor{
		opts:       opts,
		navTimeout: navTimeout,
		logger:     slog.Default().With("component", "rendered_extractor"),
	}
}

func (e *RenderedExtractor) Extract(ctx context.Context, rawURL string, info *platform.Info) (*models.ImageMetadata, error) {
	start := time.Now()

	b, err := browser.New(e.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, info.ID, err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			e.logger.Warn("failed to close browser", "platform", info.ID, "error", err)
		}
	}()

	html, err := b.Render(ctx, rawURL, e.navTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, info.ID, err)
	}

	e.logger.Debug("page rendered", "platform", info.ID, "elapsed", time.Since(start))

	meta, err := Parse(html, rawURL, info)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, info.ID, err)
	}
	return meta, nil
}
