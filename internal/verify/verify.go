// Package verify checks published snapshots the way search crawlers and
// regular browsers see them.
package verify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// PageFetcher fetches a snapshot with a crawler identity.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Response, error)
}

// RedirectProber loads a snapshot with a browser identity.
type RedirectProber interface {
	Probe(ctx context.Context, url string) (BrowserCheck, error)
}

// Check is the verdict for one published page.
type Check struct {
	Page           string        `json:"page"`
	URL            string        `json:"url"`
	Status         int           `json:"status"`
	Title          string        `json:"title,omitempty"`
	Canonical      string        `json:"canonical,omitempty"`
	StructuredData []string      `json:"structuredData,omitempty"`
	Browser        *BrowserCheck `json:"browser,omitempty"`
	Problems       []string      `json:"problems,omitempty"`
}

// OK reports whether the page passed every check.
func (c Check) OK() bool { return len(c.Problems) == 0 }

func (c *Check) problem(format string, args ...any) {
	c.Problems = append(c.Problems, fmt.Sprintf(format, args...))
}

// Result aggregates a verification pass.
type Result struct {
	Checked int     `json:"checked"`
	Failed  int     `json:"failed"`
	Checks  []Check `json:"checks"`
}

// Config controls a Verifier.
type Config struct {
	// BaseURL is where page objects are served, e.g. a public bucket URL.
	BaseURL     string
	Parallelism int
}

// Verifier fetches published pages and inspects them.
type Verifier struct {
	cfg     Config
	bot     PageFetcher
	browser RedirectProber
	logger  *zap.Logger
}

// New builds a Verifier. browser may be nil to skip the redirect probe.
func New(cfg Config, bot PageFetcher, browser RedirectProber, logger *zap.Logger) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("verify base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse verify base URL: %w", err)
	}
	if bot == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{cfg: cfg, bot: bot, browser: browser, logger: logger}, nil
}

// DefaultPages lists the singleton pages every run publishes.
func DefaultPages() []string {
	kinds := append([]snapshot.Kind{
		snapshot.KindHome,
		snapshot.KindCatalog,
		snapshot.KindForum,
		snapshot.KindBlog,
		snapshot.KindMarketplace,
	}, snapshot.StaticKinds...)
	pages := make([]string, 0, len(kinds))
	for _, k := range kinds {
		pages = append(pages, snapshot.PageName(k, ""))
	}
	return pages
}

// PageURL maps an object name to its public URL. Object names are escaped
// again because they may contain literal percent signs.
func (v *Verifier) PageURL(page string) string {
	return strings.TrimRight(v.cfg.BaseURL, "/") + "/" + url.PathEscape(page)
}

// Verify checks pages, or DefaultPages when none are given. Only context
// cancellation is returned as an error; page problems land in the result.
func (v *Verifier) Verify(ctx context.Context, pages []string) (Result, error) {
	if len(pages) == 0 {
		pages = DefaultPages()
	}
	checks := make([]Check, len(pages))
	sem := make(chan struct{}, v.cfg.Parallelism)
	var wg sync.WaitGroup
	for i, page := range pages {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return Result{}, fmt.Errorf("verify canceled: %w", ctx.Err())
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			checks[i] = v.check(ctx, page)
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("verify canceled: %w", err)
	}

	result := Result{Checked: len(checks), Checks: checks}
	for _, c := range checks {
		if !c.OK() {
			result.Failed++
		}
	}
	v.logger.Info("verification finished", zap.Int("checked", result.Checked), zap.Int("failed", result.Failed))
	return result, nil
}

func (v *Verifier) check(ctx context.Context, page string) Check {
	c := Check{Page: page, URL: v.PageURL(page)}
	defer func() {
		outcome := "ok"
		if !c.OK() {
			outcome = "failed"
			v.logger.Warn("page failed verification", zap.String("page", page), zap.Strings("problems", c.Problems))
		}
		metrics.ObserveVerifyCheck(outcome)
	}()

	resp, err := v.bot.Fetch(ctx, c.URL)
	if err != nil {
		c.problem("fetch failed: %v", err)
		return c
	}
	inspect(&c, resp)
	if c.Status != 200 || v.browser == nil {
		return c
	}

	probe, err := v.browser.Probe(ctx, c.URL)
	if err != nil {
		c.problem("browser probe failed: %v", err)
		return c
	}
	c.Browser = &probe
	if !probe.Redirected {
		c.problem("browser was not redirected to the live site")
	}
	return c
}
