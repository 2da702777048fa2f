package news

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/yushaw/howagentworks/internal/fileutil"
)

// MaxFeedSize bounds how much of a feed is read (4 MiB).
const MaxFeedSize = 4 << 20

// Defaults for remote fetches. A single attempt matches the site's
// no-retry behavior; retries are opt-in through WithAttempts.
const (
	DefaultAttempts = 1
	DefaultDelay    = 500 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

//go:embed schema/feed.schema.json
var feedSchemaJSON []byte

const feedSchemaURL = "feed.schema.json"

var compileFeedSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(feedSchemaURL, bytes.NewReader(feedSchemaJSON)); err != nil {
		return nil, fmt.Errorf("loading feed schema: %w", err)
	}
	return compiler.Compile(feedSchemaURL)
})

// Loader reads feeds from disk or over HTTP.
type Loader struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for remote feeds.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithAttempts sets how many times a remote fetch is tried. Values below 1
// are treated as 1.
func WithAttempts(n uint) LoaderOption {
	return func(l *Loader) {
		if n < 1 {
			n = 1
		}
		l.attempts = n
	}
}

// WithRetryDelay sets the base delay between remote attempts.
func WithRetryDelay(d time.Duration) LoaderOption {
	return func(l *Loader) { l.delay = d }
}

// WithLogger sets the logger for retry notices.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader with a single attempt and a 10s HTTP timeout.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and validates the feed at source, a file path or http(s) URL.
// On any failure it returns the fallback feed and the cause; the returned
// feed is never nil.
func (l *Loader) Load(ctx context.Context, source string) (*Feed, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return Fallback(), err
	}

	feed, err := Parse(data)
	if err != nil {
		return Fallback(), fmt.Errorf("%s: %w", source, err)
	}
	return feed, nil
}

// Parse decodes and validates a feed document.
func Parse(data []byte) (*Feed, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	schema, err := compileFeedSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if feed.Items == nil {
		feed.Items = []Item{}
	}
	return &feed, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !fileutil.IsURL(source) {
		f, err := os.Open(source) // #nosec G304 -- path from config
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		defer f.Close()
		return readLimited(f)
	}

	var data []byte
	err := retry.Do(
		func() error {
			var fetchErr error
			data, fetchErr = l.fetch(ctx, source)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Warn("news feed fetch failed, retrying",
				slog.String("url", source),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFeedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if len(data) > MaxFeedSize {
		return nil, fmt.Errorf("%w: feed exceeds %d bytes", ErrDecode, MaxFeedSize)
	}
	return data, nil
}
