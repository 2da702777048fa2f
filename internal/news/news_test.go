package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const validFeed = `{
  "schemaVersion": "2025-02-01",
  "lastUpdated": "2025-02-01T10:00:00Z",
  "items": [
    {
      "id": "older",
      "title": {"en": "Older", "zh": "较早"},
      "summary": {"en": "s", "zh": "s"},
      "source": {"name": "Src", "url": "https://example.com/a"},
      "publishedAt": "2025-01-10T00:00:00Z",
      "tags": ["policy"]
    },
    {
      "id": "newer",
      "title": {"en": "Newer", "zh": "较新"},
      "summary": {"en": "s", "zh": "s"},
      "source": {"name": "Src", "url": "https://example.com/b"},
      "publishedAt": "2025-01-20T00:00:00Z",
      "tags": [],
      "signal": "Launch"
    }
  ]
}`

// ---------------------------------------------------------------------------
// TestParse - Decoding and schema validation
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
		wantLen int
	}{
		{name: "valid feed", input: validFeed, wantLen: 2},
		{name: "empty items", input: `{"schemaVersion":"1","lastUpdated":"x","items":[]}`, wantLen: 0},
		{name: "malformed json", input: `{"items": [`, wantErr: ErrDecode},
		{name: "items missing", input: `{"schemaVersion":"1","lastUpdated":"x"}`, wantErr: ErrSchema},
		{name: "items not an array", input: `{"schemaVersion":"1","lastUpdated":"x","items":{}}`, wantErr: ErrSchema},
		{
			name:    "item without title",
			input:   `{"schemaVersion":"1","lastUpdated":"x","items":[{"id":"a","summary":{"en":"","zh":""},"source":{"name":"","url":""},"publishedAt":"x","tags":[]}]}`,
			wantErr: ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			feed, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(feed.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(feed.Items), tt.wantLen)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoader - File and HTTP sources with fallback
// ---------------------------------------------------------------------------

func TestLoader_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "agent-news.json")
	if err := os.WriteFile(path, []byte(validFeed), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	feed, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if feed.SchemaVersion != "2025-02-01" {
		t.Errorf("SchemaVersion = %q", feed.SchemaVersion)
	}
	if feed.Items[1].Signal != "Launch" {
		t.Errorf("Items[1].Signal = %q, want Launch", feed.Items[1].Signal)
	}
}

func TestLoader_FallbackOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	notFound := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(notFound.Close)

	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{name: "missing file", source: filepath.Join(dir, "missing.json"), wantErr: ErrFetch},
		{name: "malformed file", source: bad, wantErr: ErrDecode},
		{name: "http 404", source: notFound.URL + "/data/agent-news.json", wantErr: ErrStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			feed, err := NewLoader().Load(context.Background(), tt.source)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(Fallback(), feed); diff != "" {
				t.Errorf("Load() should return fallback feed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoader_SingleAttemptByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader().Load(context.Background(), srv.URL)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("Load() error = %v, want ErrStatus", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestLoader_RetriesWhenConfigured(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validFeed))
	}))
	t.Cleanup(srv.Close)

	loader := NewLoader(WithAttempts(3), WithRetryDelay(time.Millisecond))
	feed, err := loader.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(feed.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(feed.Items))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestLoader_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(validFeed))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed, err := NewLoader(WithAttempts(5)).Load(ctx, srv.URL)
	if err == nil {
		t.Fatal("Load() with canceled context should fail")
	}
	if feed == nil || len(feed.Items) != 3 {
		t.Errorf("Load() should return the 3-item fallback feed, got %+v", feed)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestLoader_CustomHTTPClient(t *testing.T) {
	t.Parallel()

	var accept string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		accept = r.Header.Get("Accept")
		return nil, errors.New("offline")
	})}

	feed, err := NewLoader(WithHTTPClient(client)).Load(context.Background(), "https://feeds.example.com/agent-news.json")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("Load() error = %v, want ErrFetch", err)
	}
	if accept != "application/json" {
		t.Errorf("Accept header = %q, want application/json", accept)
	}
	if diff := cmp.Diff(Fallback(), feed); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestSorted - Newest first
// ---------------------------------------------------------------------------

func TestSorted(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "mid", PublishedAt: "2025-01-15T00:00:00Z"},
		{ID: "bad", PublishedAt: "yesterday"},
		{ID: "new", PublishedAt: "2025-01-20T00:00:00Z"},
		{ID: "old", PublishedAt: "2025-01-01T00:00:00Z"},
	}

	got := Sorted(items)
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old", "bad"}, ids); diff != "" {
		t.Errorf("Sorted() order mismatch (-want +got):\n%s", diff)
	}
	if items[0].ID != "mid" {
		t.Error("Sorted() must not reorder its input")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	got := Preview(Fallback().Items, 2)
	if len(got) != 2 || got[0].ID != "openai-o4-mini-20250116" {
		t.Errorf("Preview() = %+v", got)
	}
	if len(Preview(Fallback().Items, 10)) != 3 {
		t.Error("Preview() with n > len should return all items")
	}
	if len(Preview(Fallback().Items, -1)) != 0 {
		t.Error("Preview() with negative n should return nothing")
	}
}

// ---------------------------------------------------------------------------
// TestPaginate - Page bounds
// ---------------------------------------------------------------------------

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: string(rune('a' + i%26))}
	}
	return items
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		total      int
		page       int
		wantNumber int
		wantPages  int
		wantFirst  int
		wantLast   int
		wantLen    int
	}{
		{name: "empty feed", total: 0, page: 1, wantNumber: 1, wantPages: 1, wantFirst: 0, wantLast: 0, wantLen: 0},
		{name: "single partial page", total: 5, page: 1, wantNumber: 1, wantPages: 1, wantFirst: 1, wantLast: 5, wantLen: 5},
		{name: "exact page", total: 12, page: 1, wantNumber: 1, wantPages: 1, wantFirst: 1, wantLast: 12, wantLen: 12},
		{name: "second page", total: 30, page: 2, wantNumber: 2, wantPages: 3, wantFirst: 13, wantLast: 24, wantLen: 12},
		{name: "last partial page", total: 30, page: 3, wantNumber: 3, wantPages: 3, wantFirst: 25, wantLast: 30, wantLen: 6},
		{name: "page past end clamped", total: 30, page: 9, wantNumber: 3, wantPages: 3, wantFirst: 25, wantLast: 30, wantLen: 6},
		{name: "page zero clamped", total: 30, page: 0, wantNumber: 1, wantPages: 3, wantFirst: 1, wantLast: 12, wantLen: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Paginate(makeItems(tt.total), tt.page, DefaultPageSize)
			if p.Number != tt.wantNumber || p.TotalPages != tt.wantPages {
				t.Errorf("page %d of %d, want %d of %d", p.Number, p.TotalPages, tt.wantNumber, tt.wantPages)
			}
			if p.First != tt.wantFirst || p.Last != tt.wantLast {
				t.Errorf("range %d-%d, want %d-%d", p.First, p.Last, tt.wantFirst, tt.wantLast)
			}
			if len(p.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if p.Total != tt.total {
				t.Errorf("Total = %d, want %d", p.Total, tt.total)
			}
		})
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	pages := Pages(makeItems(25), 12)
	if len(pages) != 3 {
		t.Fatalf("len(Pages) = %d, want 3", len(pages))
	}
	if pages[0].HasPrevious() || !pages[0].HasNext() {
		t.Error("first page navigation flags wrong")
	}
	if !pages[2].HasPrevious() || pages[2].HasNext() {
		t.Error("last page navigation flags wrong")
	}

	if got := Pages(nil, 0); len(got) != 1 || got[0].TotalPages != 1 {
		t.Errorf("Pages(nil) = %+v, want one empty page", got)
	}
}
