package collector

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"copysmith/pkg/tracker"
)

// imageMIMETypes is the attachment extension allowlist. Anything else is not
// downloaded at all.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageMIMEForURL returns the MIME type implied by a URL's extension, or ""
// when the URL is not a recognized image.
func imageMIMEForURL(rawURL string) string {
	clean := rawURL
	if idx := strings.IndexAny(clean, "?#"); idx != -1 {
		clean = clean[:idx]
	}
	return imageMIMETypes[strings.ToLower(path.Ext(clean))]
}

// DownloadImages fetches every attachment whose URL matches the image
// extension allowlist, concurrently, each under the fetch timeout. Oversized
// and unfetchable images are skipped silently; the returned slice holds only
// successes, in attachment order.
func (c *Collector) DownloadImages(ctx context.Context, attachments []tracker.Attachment) []ProcessedImage {
	results := make([]*ProcessedImage, len(attachments))
	var wg sync.WaitGroup
	for i, att := range attachments {
		mimeType := imageMIMEForURL(att.URL)
		if mimeType == "" {
			continue
		}
		wg.Add(1)
		go func(i int, att tracker.Attachment, mimeType string) {
			defer wg.Done()
			results[i] = c.downloadOne(ctx, att, mimeType)
		}(i, att, mimeType)
	}
	wg.Wait()

	var images []ProcessedImage
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images
}

func (c *Collector) downloadOne(ctx context.Context, att tracker.Attachment, mimeType string) *ProcessedImage {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Image fetch failed for %s: %v", att.URL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Image fetch for %s returned HTTP %d", att.URL, resp.StatusCode)
		return nil
	}

	// Read one byte past the limit to distinguish at-limit from over-limit.
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxImgBytes)+1))
	if err != nil {
		return nil
	}
	if len(data) > c.maxImgBytes {
		c.logger.Debug("Skipping oversized image %s (> %d bytes)", att.URL, c.maxImgBytes)
		return nil
	}

	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		mimeType = ct
	}

	return &ProcessedImage{
		URL:      att.URL,
		Title:    att.Title,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
	}
}

// Collect runs the link batch and the image batch concurrently with each
// other and returns both results.
func (c *Collector) Collect(ctx context.Context, description string, attachments []tracker.Attachment) ([]FetchedContent, []ProcessedImage) {
	var (
		wg     sync.WaitGroup
		links  []FetchedContent
		images []ProcessedImage
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		links = c.FetchLinks(ctx, ExtractURLs(description))
	}()
	go func() {
		defer wg.Done()
		images = c.DownloadImages(ctx, attachments)
	}()
	wg.Wait()

	return links, images
}
