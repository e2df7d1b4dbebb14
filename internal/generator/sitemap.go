package generator

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const (
	sitemapName = "sitemap.xml"
	robotsName  = "robots.txt"
)

type sitemapEntry struct {
	Location string
	LastMod  *time.Time
}

func (g *Generator) canonicalURL(kind snapshot.Kind, key string) string {
	base := strings.TrimRight(strings.TrimSpace(g.cfg.BaseURL), "/")
	return base + snapshot.CanonicalPath(kind, key)
}

func buildSitemap(entries []sitemapEntry) string {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]sitemapEntry, 0, len(entries))
	for _, e := range entries {
		if e.Location == "" {
			continue
		}
		if _, ok := seen[e.Location]; ok {
			continue
		}
		seen[e.Location] = struct{}{}
		unique = append(unique, e)
	}
	sort.Slice(unique, func(i, k int) bool {
		return unique[i].Location < unique[k].Location
	})

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, e := range unique {
		b.WriteString("  <url>\n    <loc>")
		_ = xml.EscapeText(&b, []byte(e.Location))
		b.WriteString("</loc>\n")
		if e.LastMod != nil {
			fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", e.LastMod.UTC().Format(time.RFC3339))
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return b.String()
}

func buildRobots(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sitemap: %s/%s\n", base, sitemapName)
	return b.String()
}

// publishSitemap uploads sitemap.xml and robots.txt. Failures are reported but
// neither file counts as a generated page.
func (g *Generator) publishSitemap(ctx context.Context, j *job) {
	files := []struct {
		name        string
		contentType string
		body        string
	}{
		{sitemapName, "application/xml; charset=utf-8", buildSitemap(j.entries)},
		{robotsName, "text/plain; charset=utf-8", buildRobots(g.cfg.BaseURL)},
	}
	for _, f := range files {
		_, err := g.store.PutObject(ctx, f.name, []byte(f.body), snapshot.PutOptions{
			ContentType:  f.contentType,
			CacheControl: g.cfg.CacheControl,
			Upsert:       true,
		})
		if err != nil {
			perr := &snapshot.PageError{Page: f.name, Stage: snapshot.StageUpload, Err: err}
			metrics.ObservePage("sitemap", metrics.PageUploadError, 0)
			j.fail(f.name, perr)
			j.logger.Warn("sitemap upload failed", zap.String("page", f.name), zap.Error(err))
			continue
		}
		metrics.ObservePage("sitemap", metrics.PageGenerated, len(f.body))
	}
}
