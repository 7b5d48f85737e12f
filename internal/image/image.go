// Package image downloads listing preview images and re-encodes them into
// a bounded JPEG suitable for inline transmission to vision APIs.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	ErrTooLarge          = errors.New("image exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDownloadFailed    = errors.New("image download failed")
)

type Options struct {
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int
	Quality   int
	Timeout   time.Duration
	UserAgent string
}

func DefaultOptions() Options {
	return Options{
		MaxBytes:  15 * 1024 * 1024,
		MaxWidth:  1024,
		MaxHeight: 1024,
		Quality:   85,
		Timeout:   20 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Fetcher downloads and transcodes preview images. Failures here are
// reported to the caller but never fail the parent scrape.
type Fetcher struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.MaxBytes <= 0 {
		opts = DefaultOptions()
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: slog.Default().With("component", "image_fetcher"),
	}
}

// FetchAndEncode downloads the image and returns it as base64-encoded
// JPEG, resized into the configured bounding box.
func (f *Fetcher) FetchAndEncode(ctx context.Context, imageURL string) (string, error) {
	data, err := f.download(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return Encode(data, f.opts)
}

func (f *Fetcher) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrDownloadFailed, resp.StatusCode)
	}

	// Reject oversize bodies early when the server announces the length.
	if resp.ContentLength > 0 && resp.ContentLength > f.opts.MaxBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds maximum %d bytes",
			ErrTooLarge, resp.ContentLength, f.opts.MaxBytes)
	}

	// Read at most MaxBytes+1 so a missing or lying Content-Length still
	// cannot exhaust memory; the extra byte detects truncation.
	limited := io.LimitReader(resp.Body, f.opts.MaxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrDownloadFailed, err)
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return nil, fmt.Errorf("%w: response body exceeds maximum %d bytes",
			ErrTooLarge, f.opts.MaxBytes)
	}

	return data, nil
}

// Encode decodes raw image bytes, fits them into the bounding box without
// ever upscaling, and returns base64-encoded quality-constrained JPEG.
func Encode(data []byte, opts Options) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image data", ErrUnsupportedFormat)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	resized := fit(img, opts.MaxWidth, opts.MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return "", fmt.Errorf("failed to encode %s image as JPEG: %w", format, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fit scales the image to fit within maxWidth x maxHeight preserving
// aspect ratio. Images already inside the box pass through untouched.
func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxWidth && srcHeight <= maxHeight {
		return img
	}

	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}
