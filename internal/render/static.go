package render

import (
	"fmt"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

type staticPage struct {
	title       string
	description string
	schemaType  string
	bodyName    string
}

var staticPages = map[snapshot.Kind]staticPage{
	snapshot.KindAbout: {
		title:       "About",
		description: "Learn about the collectors behind the catalogue and how the community documents Ottoman and successor-state banknotes.",
		schemaType:  "AboutPage",
		bodyName:    "static-about",
	},
	snapshot.KindContact: {
		title:       "Contact",
		description: "Get in touch with the team for catalogue corrections, partnership requests or account support.",
		schemaType:  "ContactPage",
		bodyName:    "static-contact",
	},
	snapshot.KindGuide: {
		title:       "Collector's Guide",
		description: "How to catalogue, grade and trade banknotes: pick numbers, condition grades and marketplace etiquette.",
		schemaType:  "WebPage",
		bodyName:    "static-guide",
	},
}

type staticView struct {
	SiteName   string
	Title      string
	CatalogURL string
	MarketURL  string
	ForumURL   string
}

// StaticPage renders the about, contact and guide pages.
func (r *Renderer) StaticPage(kind snapshot.Kind) (string, error) {
	sp, ok := staticPages[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnknownStatic, kind)
	}
	canonical := r.url(kind, "")
	view := staticView{
		SiteName:   r.site.Name,
		Title:      sp.title,
		CatalogURL: r.url(snapshot.KindCatalog, ""),
		MarketURL:  r.url(snapshot.KindMarketplace, ""),
		ForumURL:   r.url(snapshot.KindForum, ""),
	}
	webpage := newNode(sp.schemaType).
		set("name", sp.title).
		set("description", sp.description).
		set("url", canonical).
		set("isPartOf", r.website())
	if kind == snapshot.KindAbout || kind == snapshot.KindContact {
		webpage.set("about", r.organization())
	}
	return r.render(page{
		kind:        kind,
		title:       sp.title,
		description: sp.description,
		bodyName:    sp.bodyName,
		bodyData:    view,
		ld: []node{
			webpage,
			r.breadcrumbs(listEntry{Name: sp.title, URL: canonical}),
		},
	})
}
