package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JakeFAU/seo-snapshot-generator/internal/render"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

type fakeProber struct {
	mu     sync.Mutex
	result BrowserCheck
	err    error
	urls   []string
}

func (p *fakeProber) Probe(_ context.Context, url string) (BrowserCheck, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	return p.result, p.err
}

func snapshotServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	r, err := render.New(render.Site{BaseURL: "https://ottocollect.test"})
	require.NoError(t, err)
	home, err := r.Home(snapshot.HomeData{})
	require.NoError(t, err)
	about, err := r.StaticPage(snapshot.KindAbout)
	require.NoError(t, err)
	country, err := r.CountryListing(snapshot.CountryGroup{Name: "Bosnia & Herzegovina"}, nil)
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		agents []string
	)
	// Keys are decoded request paths; object names keep their literal escapes.
	pages := map[string]string{
		"/index.html":   home,
		"/about.html":   about,
		"/catalog.html": "<html><head></head><body><main>undefined</main></body></html>",

		"/catalog-Bosnia%20%26%20Herzegovina.html": country,
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		agents = append(agents, req.UserAgent())
		mu.Unlock()
		body, ok := pages[req.URL.Path]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", snapshot.ContentTypeHTML)
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, &agents
}

func TestVerifyRenderedPagesPass(t *testing.T) {
	t.Parallel()

	srv, agents := snapshotServer(t)
	prober := &fakeProber{result: BrowserCheck{FinalURL: "https://ottocollect.test/", Redirected: true}}
	v, err := New(Config{BaseURL: srv.URL + "/", Parallelism: 2}, NewBotFetcher(BotConfig{UserAgent: googlebot, Timeout: 5 * time.Second}), prober, zaptest.NewLogger(t))
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), []string{"index.html", "about.html", "catalog-Bosnia%20%26%20Herzegovina.html"})
	require.NoError(t, err)
	require.Equal(t, 3, result.Checked)
	require.Zero(t, result.Failed, "%+v", result.Checks)

	home := result.Checks[0]
	require.Equal(t, "index.html", home.Page)
	require.Equal(t, http.StatusOK, home.Status)
	require.Equal(t, "https://ottocollect.test/", home.Canonical)
	require.Contains(t, home.StructuredData, "WebSite")
	require.NotNil(t, home.Browser)
	require.True(t, home.Browser.Redirected)

	require.Equal(t, "https://ottocollect.test/catalog/Bosnia%20%26%20Herzegovina", result.Checks[2].Canonical)
	require.Len(t, prober.urls, 3)
	for _, ua := range *agents {
		require.Equal(t, googlebot, ua)
	}
}

func TestVerifyReportsProblems(t *testing.T) {
	t.Parallel()

	srv, _ := snapshotServer(t)
	prober := &fakeProber{result: BrowserCheck{FinalURL: srv.URL + "/index.html"}}
	v, err := New(Config{BaseURL: srv.URL}, NewBotFetcher(BotConfig{UserAgent: googlebot}), prober, zaptest.NewLogger(t))
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), []string{"index.html", "catalog.html", "forum.html"})
	require.NoError(t, err)
	require.Equal(t, 3, result.Failed)

	require.Equal(t, []string{"browser was not redirected to the live site"}, result.Checks[0].Problems)

	bare := result.Checks[1].Problems
	require.Contains(t, bare, "missing <title>")
	require.Contains(t, bare, "missing meta description")
	require.Contains(t, bare, "missing canonical link")
	require.Contains(t, bare, "missing structured data")
	require.Contains(t, bare, `placeholder text "undefined" in content`)
	require.Contains(t, bare, "missing browser redirect script")

	missing := result.Checks[2]
	require.Equal(t, http.StatusNotFound, missing.Status)
	require.Equal(t, []string{"unexpected status 404"}, missing.Problems)
	require.Nil(t, missing.Browser)
}

func TestVerifyWithoutBrowser(t *testing.T) {
	t.Parallel()

	srv, _ := snapshotServer(t)
	v, err := New(Config{BaseURL: srv.URL}, NewBotFetcher(BotConfig{}), nil, nil)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), []string{"about.html"})
	require.NoError(t, err)
	require.Zero(t, result.Failed)
	require.Nil(t, result.Checks[0].Browser)
}

type erroringFetcher struct{}

func (erroringFetcher) Fetch(context.Context, string) (Response, error) {
	return Response{}, errors.New("dial tcp: connection refused")
}

func TestVerifyFetchFailure(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{}
	v, err := New(Config{BaseURL: "https://storage.googleapis.com/static-pages"}, erroringFetcher{}, prober, nil)
	require.NoError(t, err)

	result, err := v.Verify(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, len(DefaultPages()), result.Checked)
	require.Equal(t, result.Checked, result.Failed)
	require.True(t, strings.HasPrefix(result.Checks[0].Problems[0], "fetch failed"))
	require.Empty(t, prober.urls)
}

func TestVerifyCanceled(t *testing.T) {
	t.Parallel()

	v, err := New(Config{BaseURL: "https://x.test"}, erroringFetcher{}, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Verify(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, erroringFetcher{}, nil, nil)
	require.Error(t, err)
	_, err = New(Config{BaseURL: "https://x.test"}, nil, nil, nil)
	require.Error(t, err)
}

func TestDefaultPagesAndURLs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"index.html", "catalog.html", "forum.html", "blog.html", "marketplace.html",
		"about.html", "contact.html", "guide.html",
	}, DefaultPages())

	v, err := New(Config{BaseURL: "https://storage.googleapis.com/static-pages/"}, erroringFetcher{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "https://storage.googleapis.com/static-pages/catalog-C%25C3%25B4te%2520d%27Ivoire.html",
		v.PageURL(snapshot.PageName(snapshot.KindCountry, "Côte d'Ivoire")))
}

func TestStructuredDataTypes(t *testing.T) {
	t.Parallel()

	types, err := structuredDataTypes([]byte(`[{"@context":"https://schema.org","@type":"Product"},{"@context":"https://schema.org","@type":"BreadcrumbList"}]`))
	require.NoError(t, err)
	require.Equal(t, []string{"Product", "BreadcrumbList"}, types)

	_, err = structuredDataTypes([]byte(`{"@type":"Product"}`))
	require.ErrorContains(t, err, "@context")
	_, err = structuredDataTypes([]byte(`{"@context":"https://schema.org"`))
	require.Error(t, err)
	_, err = structuredDataTypes([]byte(`"text"`))
	require.Error(t, err)
}
