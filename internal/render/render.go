// Package render turns snapshot entities into self-contained SEO documents.
//
// Every method of Renderer is a pure function of its arguments and the Site it
// was built with: no clock, no network, no storage. The same input always
// yields byte-identical output, which keeps re-runs idempotent.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var (
	errMissingID     = errors.New("render: entity id is required")
	errMissingName   = errors.New("render: country name is required")
	errUnknownStatic = errors.New("render: unknown static page")
)

// Site carries the site-wide inputs shared by every page.
type Site struct {
	BaseURL       string
	Name          string
	Description   string
	DefaultImage  string
	Locale        string
	Currency      string
	RedirectDelay time.Duration
}

func (s Site) withDefaults() Site {
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Name == "" {
		s.Name = "OttoCollect"
	}
	if s.Description == "" {
		s.Description = "Catalogue, collect and trade Ottoman Empire and successor-state banknotes."
	}
	if s.Locale == "" {
		s.Locale = "en"
	}
	if s.Currency == "" {
		s.Currency = "USD"
	}
	if s.RedirectDelay <= 0 {
		s.RedirectDelay = 100 * time.Millisecond
	}
	return s
}

// URL joins a canonical path onto the live site origin.
func (s Site) URL(path string) string {
	if path == "" || path == "/" {
		return s.BaseURL + "/"
	}
	return s.BaseURL + path
}

// Renderer implements snapshot.Renderer with html/template.
type Renderer struct {
	site     Site
	lang     language.Tag
	tmpl     *template.Template
	markdown goldmark.Markdown
}

var _ snapshot.Renderer = (*Renderer)(nil)

// New parses the embedded templates for the given site.
func New(site Site) (*Renderer, error) {
	site = site.withDefaults()
	if site.BaseURL == "" {
		return nil, fmt.Errorf("render: site base URL is required")
	}
	lang, err := language.Parse(site.Locale)
	if err != nil {
		return nil, fmt.Errorf("render: parse locale %q: %w", site.Locale, err)
	}
	tmpl, err := template.New("snapshot").ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{
		site: site,
		lang: lang,
		tmpl: tmpl,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		),
	}, nil
}

// Site returns the normalized site settings.
func (r *Renderer) Site() Site {
	return r.site
}

type navLink struct {
	Label string
	URL   string
}

// document is the view model of the shared layout.
type document struct {
	Lang           string
	SiteName       string
	Title          string
	Description    string
	Canonical      string
	Image          string
	OGType         string
	Kind           string
	StructuredData []template.JS
	Nav            []navLink
	Body           template.HTML
	Redirect       template.JS
}

type page struct {
	kind        snapshot.Kind
	key         string
	title       string
	description string
	image       string
	ogType      string
	bodyName    string
	bodyData    any
	ld          []node
}

func (r *Renderer) render(p page) (string, error) {
	canonical := r.site.URL(snapshot.CanonicalPath(p.kind, p.key))

	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, p.bodyName, p.bodyData); err != nil {
		return "", fmt.Errorf("render %s body: %w", p.kind, err)
	}

	structured, err := encodeLD(p.ld)
	if err != nil {
		return "", fmt.Errorf("render %s structured data: %w", p.kind, err)
	}

	image := p.image
	if image == "" {
		image = r.site.DefaultImage
	}
	ogType := p.ogType
	if ogType == "" {
		ogType = "website"
	}

	doc := document{
		Lang:           r.site.Locale,
		SiteName:       r.site.Name,
		Title:          pageTitle(p.title, r.site.Name),
		Description:    describe(p.description, r.genericDescription()),
		Canonical:      canonical,
		Image:          image,
		OGType:         ogType,
		Kind:           string(p.kind),
		StructuredData: structured,
		Nav:            r.nav(),
		Body:           template.HTML(body.String()), //nolint:gosec // produced by html/template above
		Redirect:       redirectScript(canonical, r.site.RedirectDelay),
	}

	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, "layout", doc); err != nil {
		return "", fmt.Errorf("render %s layout: %w", p.kind, err)
	}
	return out.String(), nil
}

func (r *Renderer) nav() []navLink {
	return []navLink{
		{"Home", r.site.URL("/")},
		{"Catalogue", r.site.URL(snapshot.CanonicalPath(snapshot.KindCatalog, ""))},
		{"Marketplace", r.site.URL(snapshot.CanonicalPath(snapshot.KindMarketplace, ""))},
		{"Forum", r.site.URL(snapshot.CanonicalPath(snapshot.KindForum, ""))},
		{"Blog", r.site.URL(snapshot.CanonicalPath(snapshot.KindBlog, ""))},
		{"Guide", r.site.URL(snapshot.CanonicalPath(snapshot.KindGuide, ""))},
		{"About", r.site.URL(snapshot.CanonicalPath(snapshot.KindAbout, ""))},
		{"Contact", r.site.URL(snapshot.CanonicalPath(snapshot.KindContact, ""))},
	}
}

func (r *Renderer) genericDescription() string {
	return r.site.Name + " - " + r.site.Description
}

func (r *Renderer) url(kind snapshot.Kind, key string) string {
	return r.site.URL(snapshot.CanonicalPath(kind, key))
}

func pageTitle(title, siteName string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return siteName
	}
	return title + " | " + siteName
}
