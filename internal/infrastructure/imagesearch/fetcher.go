package imagesearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

const (
	userAgent     = "Mozilla/5.0 (compatible; stock-backoffice/1.0)"
	maxImageBytes = 15 << 20
)

// HTTPFetcher downloads candidate images
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher fetcher with a per-request timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and checks that it is an image
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*entity.ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fail(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fail(err)
	}
	if len(data) > maxImageBytes {
		return nil, &entity.ImageRejectedError{Check: "download", Reason: "image larger than 15MB"}
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]))
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &entity.ImageRejectedError{Check: "download", Reason: "not an image: " + contentType}
	}

	return &entity.ImageData{URL: url, ContentType: contentType, Bytes: data}, nil
}

func fail(err error) error {
	return &entity.ExternalServiceError{Service: "image download", Op: "fetch", Err: err}
}
