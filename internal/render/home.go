package render

import (
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// homeSectionSize caps each teaser section on the home page.
const homeSectionSize = 6

type homeView struct {
	SiteName   string
	Tagline    string
	Stats      []property
	Countries  []cardView
	Listings   []cardView
	ForumPosts []cardView
	BlogPosts  []cardView
	CatalogURL string
	MarketURL  string
	ForumURL   string
	BlogURL    string
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Home renders the landing page from the aggregate data of the run.
func (r *Renderer) Home(data snapshot.HomeData) (string, error) {
	view := homeView{
		SiteName:   r.site.Name,
		Tagline:    r.site.Description,
		Countries:  r.countryCards(data.Countries),
		CatalogURL: r.url(snapshot.KindCatalog, ""),
		MarketURL:  r.url(snapshot.KindMarketplace, ""),
		ForumURL:   r.url(snapshot.KindForum, ""),
		BlogURL:    r.url(snapshot.KindBlog, ""),
	}
	view.Stats = []property{
		{Label: "Catalogued banknotes", Value: r.count(data.CatalogCount, "banknote", "banknotes")},
		{Label: "Countries", Value: r.count(len(view.Countries), "country", "countries")},
		{Label: "Marketplace", Value: r.count(len(data.Listings), "listing", "listings")},
	}
	for _, l := range head(data.Listings, homeSectionSize) {
		if l.ID != "" {
			view.Listings = append(view.Listings, r.listingCard(l, data.Lookups))
		}
	}
	for _, p := range head(data.ForumPosts, homeSectionSize) {
		if p.ID != "" {
			view.ForumPosts = append(view.ForumPosts, r.forumCard(p))
		}
	}
	for _, p := range head(data.BlogPosts, homeSectionSize) {
		if p.ID != "" {
			view.BlogPosts = append(view.BlogPosts, r.blogCard(p))
		}
	}

	home := r.url(snapshot.KindHome, "")
	website := r.website().
		set("description", r.site.Description).
		set("inLanguage", r.site.Locale).
		set("publisher", r.organization())
	return r.render(page{
		kind:        snapshot.KindHome,
		title:       r.site.Name + " - Banknote Catalogue and Marketplace",
		description: r.genericDescription(),
		bodyName:    "home",
		bodyData:    view,
		ld: []node{
			r.organization(),
			website,
			itemList("Countries", listEntries(view.Countries)).set("url", home),
		},
	})
}
