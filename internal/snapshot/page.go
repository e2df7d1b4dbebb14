package snapshot

import (
	"net/url"
	"strings"
)

// Kind identifies a page template.
type Kind string

// Page kinds rendered by the generator.
const (
	KindHome            Kind = "home"
	KindCatalog         Kind = "catalog"
	KindCountry         Kind = "country"
	KindCatalogItem     Kind = "catalog-banknote"
	KindForum           Kind = "forum"
	KindForumPost       Kind = "forum-post"
	KindBlog            Kind = "blog"
	KindBlogPost        Kind = "blog-post"
	KindMarketplace     Kind = "marketplace"
	KindMarketplaceItem Kind = "marketplace-item"
	KindAbout           Kind = "about"
	KindContact         Kind = "contact"
	KindGuide           Kind = "guide"
)

// StaticKinds are the informational pages with fixed content.
var StaticKinds = []Kind{KindAbout, KindContact, KindGuide}

// PageName derives the object name of a page. It is a pure function of kind and
// key so a rerun overwrites the same object.
func PageName(kind Kind, key string) string {
	switch kind {
	case KindHome:
		return "index.html"
	case KindCountry:
		return "catalog-" + EncodeURIComponent(key) + ".html"
	case KindCatalogItem, KindForumPost, KindBlogPost, KindMarketplaceItem:
		return string(kind) + "-" + EncodeURIComponent(key) + ".html"
	default:
		return string(kind) + ".html"
	}
}

// CanonicalPath returns the path of the interactive page a snapshot mirrors.
func CanonicalPath(kind Kind, key string) string {
	switch kind {
	case KindHome:
		return "/"
	case KindCountry:
		return "/catalog/" + EncodeURIComponent(key)
	case KindCatalogItem, KindForumPost, KindBlogPost, KindMarketplaceItem:
		return "/" + string(kind) + "/" + EncodeURIComponent(key)
	default:
		return "/" + string(kind)
	}
}

// EncodeURIComponent escapes s like ECMAScript encodeURIComponent, leaving
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) untouched.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentFixups.Replace(escaped)
}

var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// GeneratedPage describes one rendered document ready for upload.
type GeneratedPage struct {
	Name         string
	Kind         Kind
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	SHA256       string
}
