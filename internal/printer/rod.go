package printer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yushaw/howagentworks/internal/fileutil"
	"github.com/yushaw/howagentworks/internal/process"
)

var _ Renderer = (*RodRenderer)(nil)

// RodRenderer prints with go-rod. Rod downloads Chromium on first use when
// no browser is found.
type RodRenderer struct {
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodRenderer creates a renderer; Chrome starts on the first render.
func NewRodRenderer(timeout time.Duration, logger *slog.Logger) *RodRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RodRenderer{timeout: timeout, logger: logger}
}

// ensureBrowser launches and connects to Chrome once.
func (r *RodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI runners usually lack the user namespaces the
	// sandbox needs.
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || fileutil.FileExists("/.dockerenv") {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.kill(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	r.logger.Debug("browser started", "pid", l.PID())
	return browser, nil
}

// Close closes the browser and kills its whole process tree.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.kill(r.launcher)
		r.launcher = nil
	}
	return err
}

// kill terminates Chrome and its helper processes, then removes the
// temporary user data directory.
func (r *RodRenderer) kill(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		if err := process.KillTree(pid); err != nil {
			r.logger.Debug("killing browser tree", "pid", pid, "error", err)
		}
	}
	l.Kill()
	l.Cleanup()
}

// RenderFromFile opens filePath in Chrome and prints it.
func (r *RodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(printOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// printOptions maps Options onto Chrome's print settings.
func printOptions(opts *Options) *proto.PagePrintToPDF {
	width, height := opts.paper()
	bottom := opts.Margin
	if opts.Footer != nil {
		bottom += footerMarginInches
	}

	p := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(opts.Margin),
		MarginBottom:    floatPtr(bottom),
		MarginLeft:      floatPtr(opts.Margin),
		MarginRight:     floatPtr(opts.Margin),
		PrintBackground: true,
	}
	if opts.Footer != nil {
		p.DisplayHeaderFooter = true
		p.HeaderTemplate = "<span></span>"
		p.FooterTemplate = footerTemplate(opts.Footer)
	}
	return p
}

func floatPtr(v float64) *float64 {
	return &v
}
