package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ragcrawl/ragcrawl/internal/crawler"
	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/session"
)

// stubFetcher serves a fixed page map without a network.
type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, pageURL string) (*htmldoc.Document, error) {
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("fetch %s: connection refused", pageURL)
	}
	return htmldoc.Parse(pageURL, strings.NewReader(body))
}

func sitePage(h1, h2, text string) string {
	return fmt.Sprintf(`<html><head><title>%s</title></head><body><main>
		<h1>%s</h1><h2>%s</h2><p>%s</p>
	</main></body></html>`, h1, h1, h2, text)
}

func newFactory() func() *session.Session {
	fetch := &stubFetcher{pages: map[string]string{
		"https://a.example.com": sitePage("Alpha", "Intro", "First site content."),
		"https://b.example.com": sitePage("Beta", "Intro", "Second site content."),
		"https://c.example.com": sitePage("Gamma", "Intro", "Third site content."),
	}}
	return func() *session.Session {
		return session.New(session.WithFetcher(fetch))
	}
}

func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	targets := []string{
		"https://a.example.com",
		"https://b.example.com",
		"https://c.example.com",
	}

	bp := NewBatchProcessor(newFactory(), WithConcurrency(2))
	results, err := bp.ProcessBatch(context.Background(), targets)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	if len(results) != len(targets) {
		t.Fatalf("got %d results, want %d", len(results), len(targets))
	}
	// Results come back in input order regardless of completion order.
	for i, target := range targets {
		if results[i].StartURL != target {
			t.Errorf("results[%d].StartURL = %q, want %q", i, results[i].StartURL, target)
		}
		if results[i].Err != nil {
			t.Errorf("results[%d].Err = %v, want nil", i, results[i].Err)
		}
		if results[i].Result == nil || results[i].Result.Stats.VisitedCount != 1 {
			t.Errorf("results[%d] missing crawl result", i)
		}
	}
}

func TestBatchProcessorRecordsTargetFailures(t *testing.T) {
	t.Parallel()

	targets := []string{
		"https://a.example.com",
		"not-a-url",
		"https://b.example.com",
	}

	bp := NewBatchProcessor(newFactory())
	results, err := bp.ProcessBatch(context.Background(), targets)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy targets carried errors")
	}
	if !errors.Is(results[1].Err, crawler.ErrInvalidStartURL) {
		t.Errorf("results[1].Err = %v, want ErrInvalidStartURL", results[1].Err)
	}
}

func TestBatchProcessorTargetsAreIsolated(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(newFactory(), WithConcurrency(3))
	results, err := bp.ProcessBatch(context.Background(), []string{
		"https://a.example.com",
		"https://b.example.com",
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	// Each target's chunks come only from its own site.
	for _, r := range results {
		for _, chunk := range r.Result.Chunks {
			if chunk.URL != r.StartURL {
				t.Errorf("target %q collected chunk from %q", r.StartURL, chunk.URL)
			}
		}
	}
}

func TestBatchProcessorWithCallback(t *testing.T) {
	t.Parallel()

	targets := []string{
		"https://a.example.com",
		"https://b.example.com",
	}

	var mu sync.Mutex
	seen := make(map[int]string)

	bp := NewBatchProcessor(newFactory(), WithConcurrency(2))
	err := bp.ProcessBatchWithCallback(context.Background(), targets, func(result TargetResult, index int) {
		mu.Lock()
		defer mu.Unlock()
		seen[index] = result.StartURL
	})
	if err != nil {
		t.Fatalf("ProcessBatchWithCallback() error = %v", err)
	}

	if len(seen) != len(targets) {
		t.Fatalf("callback invoked %d times, want %d", len(seen), len(targets))
	}
	for i, target := range targets {
		if seen[i] != target {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], target)
		}
	}
}

func TestBatchProcessorCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bp := NewBatchProcessor(newFactory())
	_, err := bp.ProcessBatch(ctx, []string{"https://a.example.com"})
	if err == nil {
		t.Error("ProcessBatch() error = nil, want cancellation error")
	}
}
