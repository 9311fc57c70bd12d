package imagestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

// DefaultMaxImageBytes bounds how much image content a single read may pull.
const DefaultMaxImageBytes = 5 << 20

// HTTPReader resolves image URIs over HTTP and hands the content back
// base64 encoded, ready to be attached to a terrain draft.
type HTTPReader struct {
	client   *http.Client
	maxBytes int64
	logger   *logging.Logger
}

func NewHTTPReader(client *http.Client, maxBytes int64, logger *logging.Logger) *HTTPReader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &HTTPReader{
		client:   client,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (r *HTTPReader) ReadAsBase64(ctx context.Context, uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return "", fmt.Errorf("image uri %q must use http or https", uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	if int64(len(content)) > r.maxBytes {
		return "", fmt.Errorf("image exceeds %d bytes", r.maxBytes)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("image body is empty")
	}

	r.logger.DebugContext(ctx, "image fetched",
		"uri", uri,
		"bytes", len(content),
	)

	return base64.StdEncoding.EncodeToString(content), nil
}
