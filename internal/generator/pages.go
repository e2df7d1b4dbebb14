package generator

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// Collection names used in logs, metrics and report.skippedCollections.
const (
	collectionCatalog       = "catalog"
	collectionCountries     = "countries"
	collectionForumPosts    = "forum_posts"
	collectionAnnouncements = "announcements"
	collectionBlogPosts     = "blog_posts"
	collectionListings      = "marketplace"
	collectionCountryScoped = "country_entries"
)

// dataset is the working set of one run.
type dataset struct {
	catalog       []snapshot.CatalogEntry
	publishable   int
	countries     []snapshot.CountryGroup
	forumPosts    []snapshot.ForumPost
	announcements []snapshot.ForumPost
	blogPosts     []snapshot.BlogPost
	listings      []snapshot.MarketplaceListing
	lookups       snapshot.Lookups
}

func fetch[T any](ctx context.Context, g *Generator, j *job, collection string, fn func(context.Context) ([]T, error)) []T {
	ctx, span := g.tracer.Start(ctx, "snapshot.fetch", trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	items, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ObserveFetchError(collection)
		j.logger.Warn("fetch failed, continuing with an empty collection",
			zap.String("collection", collection), zap.Error(err))
		j.skipped = append(j.skipped, collection)
		return nil
	}
	span.SetAttributes(attribute.Int("count", len(items)))
	j.logger.Debug("fetched collection", zap.String("collection", collection), zap.Int("count", len(items)))
	return items
}

func (g *Generator) fetchAll(ctx context.Context, j *job) *dataset {
	data := &dataset{
		catalog:       fetch(ctx, g, j, collectionCatalog, g.fetcher.CatalogEntries),
		countries:     fetch(ctx, g, j, collectionCountries, g.fetcher.Countries),
		forumPosts:    fetch(ctx, g, j, collectionForumPosts, g.fetcher.ForumPosts),
		announcements: fetch(ctx, g, j, collectionAnnouncements, g.fetcher.Announcements),
		blogPosts:     fetch(ctx, g, j, collectionBlogPosts, g.fetcher.BlogPosts),
		listings:      fetch(ctx, g, j, collectionListings, g.fetcher.MarketplaceListings),
	}

	data.lookups = snapshot.Lookups{Banknotes: make(map[string]snapshot.CatalogEntry, len(data.catalog))}
	counts := make(map[string]int)
	for _, e := range data.catalog {
		if e.ID != "" {
			data.lookups.Banknotes[e.ID] = e
		}
		if e.Publishable() {
			data.publishable++
			counts[e.Country]++
		}
	}
	for i := range data.countries {
		data.countries[i].Name = strings.TrimSpace(data.countries[i].Name)
		data.countries[i].EntryCount = counts[data.countries[i].Name]
	}
	return data
}

// pageSpec describes one document to render and upload.
type pageSpec struct {
	kind    snapshot.Kind
	key     string
	lastMod *time.Time
	render  func() (string, error)
}

func (g *Generator) publish(ctx context.Context, j *job, p pageSpec) {
	name := snapshot.PageName(p.kind, p.key)
	id := p.key
	if id == "" {
		id = name
	}
	ctx, span := g.tracer.Start(ctx, "snapshot.page", trace.WithAttributes(
		attribute.String("page.kind", string(p.kind)),
		attribute.String("page.name", name),
	))
	defer span.End()

	html, err := safeRender(p.render)
	if err != nil {
		g.recordFailure(j, span, p.kind, id, &snapshot.PageError{Page: name, Stage: snapshot.StageRender, Err: err})
		return
	}

	body := []byte(html)
	meta := map[string]string{"kind": string(p.kind)}
	if digest, err := g.hasher.Hash(body); err == nil {
		meta["sha256"] = digest
	} else {
		j.logger.Debug("hash page failed", zap.String("page", name), zap.Error(err))
	}
	uri, err := g.store.PutObject(ctx, name, body, snapshot.PutOptions{
		ContentType:  snapshot.ContentTypeHTML,
		CacheControl: g.cfg.CacheControl,
		Upsert:       true,
		Metadata:     meta,
	})
	if err != nil {
		g.recordFailure(j, span, p.kind, id, &snapshot.PageError{Page: name, Stage: snapshot.StageUpload, Err: err})
		return
	}

	j.succeed(name, sitemapEntry{Location: g.canonicalURL(p.kind, p.key), LastMod: p.lastMod})
	metrics.ObservePage(string(p.kind), metrics.PageGenerated, len(body))
	j.logger.Debug("page published", zap.String("page", name), zap.String("uri", uri))
}

func (g *Generator) recordFailure(j *job, span trace.Span, kind snapshot.Kind, id string, perr *snapshot.PageError) {
	span.RecordError(perr)
	span.SetStatus(codes.Error, perr.Error())
	outcome := metrics.PageRenderError
	if perr.Stage == snapshot.StageUpload {
		outcome = metrics.PageUploadError
	}
	metrics.ObservePage(string(kind), outcome, 0)
	j.fail(id, perr)
	j.logger.Warn("page failed",
		zap.String("page", perr.Page),
		zap.String("stage", string(perr.Stage)),
		zap.String("id", id),
		zap.Error(perr.Err),
	)
}

func (g *Generator) publishSingletons(ctx context.Context, j *job, data *dataset) {
	r := g.renderer
	g.publish(ctx, j, pageSpec{kind: snapshot.KindHome, render: func() (string, error) {
		return r.Home(snapshot.HomeData{
			Countries:    data.countries,
			CatalogCount: data.publishable,
			ForumPosts:   data.forumPosts,
			BlogPosts:    data.blogPosts,
			Listings:     data.listings,
			Lookups:      data.lookups,
		})
	}})
	g.publish(ctx, j, pageSpec{kind: snapshot.KindCatalog, lastMod: latestCatalogUpdate(data.catalog), render: func() (string, error) {
		return r.CatalogRoot(data.countries)
	}})
	g.publish(ctx, j, pageSpec{kind: snapshot.KindForum, lastMod: latestForumPost(data.forumPosts, data.announcements), render: func() (string, error) {
		return r.ForumRoot(data.forumPosts, data.announcements)
	}})
	g.publish(ctx, j, pageSpec{kind: snapshot.KindBlog, lastMod: latestBlogPost(data.blogPosts), render: func() (string, error) {
		return r.BlogRoot(data.blogPosts)
	}})
	g.publish(ctx, j, pageSpec{kind: snapshot.KindMarketplace, lastMod: latestListing(data.listings), render: func() (string, error) {
		return r.MarketplaceRoot(data.listings, data.lookups)
	}})
	for _, kind := range snapshot.StaticKinds {
		g.publish(ctx, j, pageSpec{kind: kind, render: func() (string, error) {
			return r.StaticPage(kind)
		}})
	}
}

// publishCatalogItems renders detail pages for publishable entries only.
func (g *Generator) publishCatalogItems(ctx context.Context, j *job, data *dataset) {
	for _, e := range data.catalog {
		if !e.Publishable() {
			continue
		}
		g.publish(ctx, j, pageSpec{kind: snapshot.KindCatalogItem, key: e.ID, lastMod: e.UpdatedAt, render: func() (string, error) {
			return g.renderer.CatalogItem(e)
		}})
	}
}

func (g *Generator) publishForumPosts(ctx context.Context, j *job, data *dataset) {
	for _, posts := range [][]snapshot.ForumPost{data.forumPosts, data.announcements} {
		for _, p := range posts {
			g.publish(ctx, j, pageSpec{kind: snapshot.KindForumPost, key: p.ID, lastMod: modified(p.CreatedAt, p.UpdatedAt), render: func() (string, error) {
				return g.renderer.ForumPost(p)
			}})
		}
	}
}

func (g *Generator) publishBlogPosts(ctx context.Context, j *job, data *dataset) {
	for _, p := range data.blogPosts {
		g.publish(ctx, j, pageSpec{kind: snapshot.KindBlogPost, key: p.ID, lastMod: modified(p.CreatedAt, p.UpdatedAt), render: func() (string, error) {
			return g.renderer.BlogPost(p)
		}})
	}
}

func (g *Generator) publishListings(ctx context.Context, j *job, data *dataset) {
	for _, l := range data.listings {
		g.publish(ctx, j, pageSpec{kind: snapshot.KindMarketplaceItem, key: l.ID, lastMod: modified(l.CreatedAt, nil), render: func() (string, error) {
			return g.renderer.MarketplaceItem(l, data.lookups)
		}})
	}
}

// publishCountries re-fetches each country's publishable entries so listings
// never depend on the gating of the full catalog fetch.
func (g *Generator) publishCountries(ctx context.Context, j *job, data *dataset) {
	for _, country := range data.countries {
		entries := g.countryEntries(ctx, j, country.Name)
		country.EntryCount = len(entries)
		g.publish(ctx, j, pageSpec{kind: snapshot.KindCountry, key: country.Name, lastMod: latestCatalogUpdate(entries), render: func() (string, error) {
			return g.renderer.CountryListing(country, entries)
		}})
	}
}

func (g *Generator) countryEntries(ctx context.Context, j *job, country string) []snapshot.CatalogEntry {
	ctx, span := g.tracer.Start(ctx, "snapshot.fetch", trace.WithAttributes(
		attribute.String("collection", collectionCountryScoped),
		attribute.String("country", country),
	))
	defer span.End()

	entries, err := g.fetcher.CountryEntries(ctx, country)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ObserveFetchError(collectionCountryScoped)
		j.logger.Warn("country fetch failed, rendering an empty listing",
			zap.String("country", country), zap.Error(err))
		return nil
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.Publishable() {
			out = append(out, e)
		}
	}
	return out
}

func modified(created time.Time, updated *time.Time) *time.Time {
	if updated != nil && !updated.IsZero() {
		return updated
	}
	if created.IsZero() {
		return nil
	}
	return &created
}

func latest(times ...*time.Time) *time.Time {
	var out *time.Time
	for _, t := range times {
		if t != nil && !t.IsZero() && (out == nil || t.After(*out)) {
			out = t
		}
	}
	return out
}

func latestCatalogUpdate(entries []snapshot.CatalogEntry) *time.Time {
	times := make([]*time.Time, 0, len(entries))
	for _, e := range entries {
		times = append(times, e.UpdatedAt)
	}
	return latest(times...)
}

func latestForumPost(groups ...[]snapshot.ForumPost) *time.Time {
	var times []*time.Time
	for _, posts := range groups {
		for _, p := range posts {
			times = append(times, modified(p.CreatedAt, p.UpdatedAt))
		}
	}
	return latest(times...)
}

func latestBlogPost(posts []snapshot.BlogPost) *time.Time {
	times := make([]*time.Time, 0, len(posts))
	for _, p := range posts {
		times = append(times, modified(p.CreatedAt, p.UpdatedAt))
	}
	return latest(times...)
}

func latestListing(listings []snapshot.MarketplaceListing) *time.Time {
	times := make([]*time.Time, 0, len(listings))
	for _, l := range listings {
		times = append(times, modified(l.CreatedAt, nil))
	}
	return latest(times...)
}
