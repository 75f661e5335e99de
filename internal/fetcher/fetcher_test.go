package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestFetch tests page fetching and parsing.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses a page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
				t.Errorf("expected default user agent, got %q", ua)
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><p>hi</p></body></html>`))
		}))
		defer server.Close()

		client := New(WithHTTPClient(server.Client()), WithDelay(0))
		doc, err := client.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Title() != "Hello" {
			t.Errorf("expected title 'Hello', got %q", doc.Title())
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		client := New(WithHTTPClient(server.Client()), WithDelay(0))
		if _, err := client.Fetch(context.Background(), server.URL); err == nil {
			t.Fatal("expected error for 404 response")
		}
	})

	t.Run("sends custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer token" {
				t.Errorf("expected custom header, got %q", got)
			}
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer server.Close()

		client := New(
			WithHTTPClient(server.Client()),
			WithDelay(0),
			WithHeaders(map[string]string{"Authorization": "Bearer token"}),
		)
		if _, err := client.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		t.Parallel()

		client := New(WithDelay(0))
		if _, err := client.Fetch(context.Background(), "http://127.0.0.1:1/nope"); err == nil {
			t.Fatal("expected error for unreachable server")
		}
	})
}
