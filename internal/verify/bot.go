package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

const defaultBotTimeout = 15 * time.Second

// BotConfig controls the crawler-identity fetcher.
type BotConfig struct {
	UserAgent string
	Timeout   time.Duration
	// Transport overrides the retrying default transport.
	Transport http.RoundTripper
}

// Response is a fetched snapshot as a crawler saw it.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// BotFetcher fetches snapshots with a crawler user agent using Colly.
type BotFetcher struct {
	cfg           BotConfig
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// NewBotFetcher builds a BotFetcher.
func NewBotFetcher(cfg BotConfig) *BotFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBotTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = newRetryTransport(newHTTPTransport())
	}
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(transport)
	return &BotFetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes a single GET. Non-2xx responses are returned, not treated as
// errors.
func (f *BotFetcher) Fetch(ctx context.Context, url string) (Response, error) {
	var (
		result   Response
		fetchErr error
	)
	collector := f.buildCollector(&result, &fetchErr)
	if err := runCollector(ctx, collector, url, &fetchErr); err != nil {
		return Response{}, err
	}
	return result, nil
}

func (f *BotFetcher) buildCollector(result *Response, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	configureCollectorHooks(collector, result, fetchErr)
	return collector
}

func configureCollectorHooks(hooks collectorHooks, result *Response, fetchErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		var headers http.Header
		if r.Headers != nil {
			headers = r.Headers.Clone()
		}
		*result = Response{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("bot fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("bot visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("bot response failed: %w", *fetchErr)
		}
		return nil
	}
}
