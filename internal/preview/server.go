// Package preview serves a live export of the site while content is edited.
//
// Every rebuild writes into a fresh directory and takes the next generation
// number. A finished build is published only if no newer build has started
// since; otherwise its output is dropped. The newest started build always
// wins, however long older builds take.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/site"
)

// StatusPath reports the served generation as JSON.
const StatusPath = "/_/status"

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// Sentinel errors for the preview server.
var (
	ErrStale  = errors.New("build superseded by a newer one")
	ErrBuild  = errors.New("preview build failed")
	ErrListen = errors.New("preview server cannot listen")
)

// snapshot is one published build.
type snapshot struct {
	dir        string
	basePath   string
	generation uint64
	report     *site.Report
	builtAt    time.Time
}

// Server rebuilds the site on change and serves the newest finished build.
type Server struct {
	logger     *slog.Logger
	debounce   time.Duration
	workDir    string
	ownWorkDir bool
	configPath string
	reload     func() (*site.Builder, error)

	generation atomic.Uint64
	current    atomic.Pointer[snapshot]

	mu      sync.Mutex
	builder *site.Builder
	cancel  context.CancelFunc
	retired string // previous snapshot dir, removed on the next publish
	lastErr error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for changes to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithWorkDir sets the directory builds are written under. By default a
// temp directory is created and removed on Close.
func WithWorkDir(dir string) Option {
	return func(s *Server) { s.workDir = dir }
}

// WithConfigReload watches the config file at path and, when it changes,
// replaces the builder with the one reload returns.
func WithConfigReload(path string, reload func() (*site.Builder, error)) Option {
	return func(s *Server) {
		s.configPath = path
		s.reload = reload
	}
}

// New creates a Server for builder. Nothing is built until Rebuild or Run.
func New(builder *site.Builder, opts ...Option) (*Server, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: nil builder", ErrBuild)
	}

	s := &Server{
		logger:   slog.New(slog.DiscardHandler),
		debounce: builder.Config().Serve.Debounce,
		builder:  builder,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.workDir == "" {
		dir, err := os.MkdirTemp("", "howagent-preview-")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBuild, err)
		}
		s.workDir = dir
		s.ownWorkDir = true
	}
	return s, nil
}

// Close cancels any running build and removes the builds on disk.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if s.ownWorkDir {
		return os.RemoveAll(s.workDir)
	}
	return nil
}

// Generation returns the generation of the published build, 0 before the
// first successful build.
func (s *Server) Generation() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.generation
	}
	return 0
}

// Rebuild starts a new generation, cancels the build in flight and
// publishes the result unless a newer build started meanwhile, in which
// case it returns ErrStale.
func (s *Server) Rebuild(ctx context.Context) error {
	gen := s.generation.Add(1)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	bctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	builder := s.builder
	s.mu.Unlock()
	defer cancel()

	dir, err := os.MkdirTemp(s.workDir, fmt.Sprintf("gen-%d-", gen))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuild, err)
	}
	report, buildErr := builder.BuildTo(bctx, dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation.Load() {
		_ = os.RemoveAll(dir)
		s.logger.Debug("discarding stale build", "generation", gen)
		return ErrStale
	}
	if buildErr != nil {
		_ = os.RemoveAll(dir)
		s.lastErr = buildErr
		return fmt.Errorf("%w: %w", ErrBuild, buildErr)
	}

	s.lastErr = nil
	old := s.current.Swap(&snapshot{
		dir:        dir,
		basePath:   fileutil.CleanBasePath(builder.Config().Site.BasePath),
		generation: gen,
		report:     report,
		builtAt:    time.Now(),
	})
	// The replaced tree may still be serving a request; drop the one before.
	if s.retired != "" {
		_ = os.RemoveAll(s.retired)
	}
	if old != nil {
		s.retired = old.dir
	}

	s.logger.Info("preview rebuilt", "generation", gen, "pages", len(report.Pages), "elapsed", report.Elapsed)
	for _, docErr := range report.DocErrors {
		s.logger.Warn("document unavailable", "error", docErr)
	}
	return nil
}

// Run builds once, then serves on addr and rebuilds on change until ctx is
// done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	s.logger.Info("preview listening", "url", "http://"+ln.Addr().String()+"/")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Watch(gctx) })
	g.Go(func() error { return s.Serve(gctx, ln) })
	return g.Wait()
}

// Serve handles requests on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler serving the published build.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get(StatusPath, s.handleStatus)
	r.Get("/", s.handleRoot)
	r.Get("/*", s.handleFile)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start))
	})
}

// handleRoot sends the visitor to their language's home page. The
// language cookie set by the page script wins over Accept-Language.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		http.Error(w, "preview is building", http.StatusServiceUnavailable)
		return
	}

	var stored string
	if c, err := r.Cookie(site.LanguageStorageKey); err == nil {
		stored = c.Value
	}
	prefs := site.ResolvePreferences("", stored, site.SystemHints{Languages: r.Header.Get("Accept-Language")})

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, snap.basePath+site.HomePath(prefs.Language), http.StatusFound)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		http.Error(w, "preview is building", http.StatusServiceUnavailable)
		return
	}

	urlPath := r.URL.Path
	if snap.basePath != "" {
		if urlPath == snap.basePath || urlPath == snap.basePath+"/" {
			s.handleRoot(w, r)
			return
		}
		rest, ok := strings.CutPrefix(urlPath, snap.basePath+"/")
		if !ok {
			s.notFound(w, snap)
			return
		}
		urlPath = "/" + rest
	}

	name := filepath.Join(snap.dir, fileutil.PageFile(urlPath))
	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		s.notFound(w, snap)
		return
	}
	if !strings.HasSuffix(urlPath, "/") && path.Ext(urlPath) == "" {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, name)
}

// notFound serves the built 404 page with a 404 status.
func (s *Server) notFound(w http.ResponseWriter, snap *snapshot) {
	body, err := os.ReadFile(filepath.Join(snap.dir, fileutil.PageFile(site.NotFoundPath))) // #nosec G304 -- inside the build dir
	if err != nil {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(body)
}

// Status is the body of StatusPath.
type Status struct {
	Generation uint64   `json:"generation"`
	Latest     uint64   `json:"latest"`
	BuildID    string   `json:"buildId,omitempty"`
	BuiltAt    string   `json:"builtAt,omitempty"`
	Pages      int      `json:"pages"`
	DocErrors  []string `json:"docErrors,omitempty"`
	NewsError  string   `json:"newsError,omitempty"`
	LastError  string   `json:"lastError,omitempty"`
}

// Status reports the published build and the newest started generation.
func (s *Server) Status() Status {
	st := Status{Latest: s.generation.Load()}

	s.mu.Lock()
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	snap := s.current.Load()
	if snap == nil {
		return st
	}
	st.Generation = snap.generation
	st.BuildID = snap.report.BuildID
	st.BuiltAt = snap.builtAt.UTC().Format(time.RFC3339)
	st.Pages = len(snap.report.Pages)
	for _, err := range snap.report.DocErrors {
		st.DocErrors = append(st.DocErrors, err.Error())
	}
	if snap.report.NewsError != nil {
		st.NewsError = snap.report.NewsError.Error()
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(s.Status())
}
