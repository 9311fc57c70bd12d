package imagestore

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

func TestHTTPReader_ReadAsBase64(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	reader := NewHTTPReader(server.Client(), 0, logging.NewNop())

	got, err := reader.ReadAsBase64(t.Context(), server.URL+"/terrains/1/cover.png")
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	want := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	if got != want {
		t.Fatalf("unexpected content: got %q want %q", got, want)
	}
}

func TestHTTPReader_RejectsNonHTTPScheme(t *testing.T) {
	t.Parallel()

	reader := NewHTTPReader(nil, 0, logging.NewNop())

	if _, err := reader.ReadAsBase64(t.Context(), "file:///tmp/cover.png"); err == nil {
		t.Fatalf("expected error for non-http uri")
	}
}

func TestHTTPReader_RejectsOversizedImage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	reader := NewHTTPReader(server.Client(), 16, logging.NewNop())

	if _, err := reader.ReadAsBase64(t.Context(), server.URL); err == nil {
		t.Fatalf("expected error for oversized image")
	}
}

func TestHTTPReader_RejectsNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	reader := NewHTTPReader(server.Client(), 0, logging.NewNop())

	if _, err := reader.ReadAsBase64(t.Context(), server.URL); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}
