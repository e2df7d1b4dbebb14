package snapshot

import (
	"context"
	"time"
)

// EntityFetcher reads the working set of a generation run from the data store.
type EntityFetcher interface {
	CatalogEntries(ctx context.Context) ([]CatalogEntry, error)
	CountryEntries(ctx context.Context, country string) ([]CatalogEntry, error)
	Countries(ctx context.Context) ([]CountryGroup, error)
	ForumPosts(ctx context.Context) ([]ForumPost, error)
	Announcements(ctx context.Context) ([]ForumPost, error)
	BlogPosts(ctx context.Context) ([]BlogPost, error)
	MarketplaceListings(ctx context.Context) ([]MarketplaceListing, error)
}

// Renderer turns entities into HTML documents. Implementations must not do I/O.
type Renderer interface {
	Home(data HomeData) (string, error)
	CatalogRoot(countries []CountryGroup) (string, error)
	CountryListing(country CountryGroup, entries []CatalogEntry) (string, error)
	CatalogItem(entry CatalogEntry) (string, error)
	ForumRoot(posts []ForumPost, announcements []ForumPost) (string, error)
	ForumPost(post ForumPost) (string, error)
	BlogRoot(posts []BlogPost) (string, error)
	BlogPost(post BlogPost) (string, error)
	MarketplaceRoot(listings []MarketplaceListing, lookups Lookups) (string, error)
	MarketplaceItem(listing MarketplaceListing, lookups Lookups) (string, error)
	StaticPage(kind Kind) (string, error)
}

// PutOptions controls how a page is written to the store.
type PutOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
	Metadata     map[string]string
}

// PageStore persists rendered pages and returns a URI for the stored object.
type PageStore interface {
	PutObject(ctx context.Context, name string, data []byte, opts PutOptions) (string, error)
}

// Notifier pushes run reports to Pub/Sub (or similar).
type Notifier interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests of rendered documents.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Defaults applied to every generated document.
const (
	ContentTypeHTML     = "text/html; charset=utf-8"
	DefaultCacheControl = "public, max-age=3600"
)
