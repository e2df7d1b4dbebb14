package render

import (
	"strings"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// catalogProperties lists the attributes shown in the details table and in
// additionalProperty. Absent attributes are skipped in both.
func catalogProperties(e snapshot.CatalogEntry) []property {
	props := make([]property, 0, 14)
	country := strings.TrimSpace(e.Country)
	face := strings.TrimSpace(e.FaceValue)
	props = addProperty(props, "Country", country, country != "")
	props = addProperty(props, "Face Value", face, face != "")
	year, ok := e.YearLabel()
	props = addProperty(props, "Year", year, ok)
	pick, ok := e.PickLabel()
	props = addProperty(props, "Pick Number", pick, ok)
	v, ok := snapshot.Text(e.SultanName)
	props = addProperty(props, "Sultan", v, ok)
	v, ok = snapshot.Text(e.Printer)
	props = addProperty(props, "Printer", v, ok)
	v, ok = snapshot.Text(e.Rarity)
	props = addProperty(props, "Rarity", v, ok)
	v, ok = snapshot.Text(e.SecurityElement)
	props = addProperty(props, "Security Features", v, ok)
	v, ok = snapshot.Text(e.Dimensions)
	props = addProperty(props, "Dimensions", v, ok)
	v, ok = snapshot.Text(e.Colors)
	props = addProperty(props, "Colors", v, ok)
	v, ok = e.SignatureLabel()
	props = addProperty(props, "Signatures", v, ok)
	v, ok = snapshot.Text(e.SealNames)
	props = addProperty(props, "Seal Names", v, ok)
	v, ok = snapshot.Text(e.Category)
	props = addProperty(props, "Category", v, ok)
	v, ok = snapshot.Text(e.Type)
	props = addProperty(props, "Type", v, ok)
	return props
}

func catalogImages(e snapshot.CatalogEntry) []imageView {
	name := e.Name()
	images := make([]imageView, 0, 2)
	if front, ok := e.Images.Front(); ok {
		images = append(images, imageView{URL: front, Alt: name + " (obverse)"})
	}
	if back, ok := e.Images.Back(); ok {
		images = append(images, imageView{URL: back, Alt: name + " (reverse)"})
	}
	return images
}

func catalogDescription(e snapshot.CatalogEntry) string {
	if d, ok := snapshot.Text(e.Description); ok {
		return plainText(d)
	}
	parts := []string{e.Name()}
	if pick, ok := e.PickLabel(); ok {
		parts = append(parts, "Pick "+pick)
	}
	if sultan, ok := snapshot.Text(e.SultanName); ok {
		parts = append(parts, "issued under "+sultan)
	}
	if rarity, ok := snapshot.Text(e.Rarity); ok {
		parts = append(parts, "rarity "+rarity)
	}
	return joinPresent(", ", parts...) + "."
}

func (r *Renderer) banknoteCard(e snapshot.CatalogEntry) cardView {
	card := cardView{
		Title: e.Name(),
		URL:   r.url(snapshot.KindCatalogItem, e.ID),
	}
	if thumb, ok := snapshot.First(e.Images.FrontThumbnail, e.Images.FrontWatermarked, e.Images.FrontOriginal); ok {
		card.Image = thumb
	}
	if pick, ok := e.PickLabel(); ok {
		card.Subtitle = "Pick " + pick
	}
	if sultan, ok := snapshot.Text(e.SultanName); ok {
		card.Meta = sultan
	}
	return card
}

type catalogItemView struct {
	Heading     string
	Country     string
	CountryURL  string
	Images      []imageView
	Properties  []property
	Description []string
	History     []string
}

// CatalogItem renders the detail page of one banknote.
func (r *Renderer) CatalogItem(entry snapshot.CatalogEntry) (string, error) {
	if strings.TrimSpace(entry.ID) == "" {
		return "", errMissingID
	}
	props := catalogProperties(entry)
	images := catalogImages(entry)
	canonical := r.url(snapshot.KindCatalogItem, entry.ID)
	description := catalogDescription(entry)

	view := catalogItemView{
		Heading:    entry.Name(),
		Images:     images,
		Properties: props,
	}
	if country := strings.TrimSpace(entry.Country); country != "" {
		view.Country = country
		view.CountryURL = r.url(snapshot.KindCountry, country)
	}
	if d, ok := snapshot.Text(entry.Description); ok {
		view.Description = paragraphs(plainText(d))
	}
	if h, ok := snapshot.Text(entry.HistoricalDescription); ok {
		view.History = paragraphs(plainText(h))
	}

	imageURLs := make([]string, 0, len(images))
	for _, img := range images {
		imageURLs = append(imageURLs, img.URL)
	}
	category := "Banknote"
	if c, ok := snapshot.Text(entry.Category); ok {
		category = c
	}
	product := newNode("Product").
		set("name", entry.Name()).
		set("description", describe(description, "")).
		set("url", canonical).
		set("image", imageURLs).
		set("category", category).
		set("sku", entry.ID).
		set("additionalProperty", propertyValues(props))
	if country := strings.TrimSpace(entry.Country); country != "" {
		product.set("countryOfOrigin", newNode("Country").set("name", country))
	}
	if pick, ok := entry.PickLabel(); ok {
		product.set("mpn", pick)
	}

	trail := []listEntry{{Name: "Catalogue", URL: r.url(snapshot.KindCatalog, "")}}
	if view.Country != "" {
		trail = append(trail, listEntry{Name: view.Country, URL: view.CountryURL})
	}
	trail = append(trail, listEntry{Name: entry.Name(), URL: canonical})

	primary, _ := entry.Images.Primary()
	return r.render(page{
		kind:        snapshot.KindCatalogItem,
		key:         entry.ID,
		title:       entry.Name(),
		description: description,
		image:       primary,
		ogType:      "product",
		bodyName:    "catalog-item",
		bodyData:    view,
		ld:          []node{product, r.breadcrumbs(trail...)},
	})
}

type countryView struct {
	Name        string
	Description []string
	Image       string
	Count       string
	Entries     []cardView
	CatalogURL  string
}

// CountryListing renders the public listing of one country. Callers pass only
// publishable entries.
func (r *Renderer) CountryListing(country snapshot.CountryGroup, entries []snapshot.CatalogEntry) (string, error) {
	name := strings.TrimSpace(country.Name)
	if name == "" {
		return "", errMissingName
	}
	cards := make([]cardView, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			continue
		}
		cards = append(cards, r.banknoteCard(e))
	}
	view := countryView{
		Name:       name,
		Count:      r.count(len(cards), "banknote", "banknotes"),
		Entries:    cards,
		CatalogURL: r.url(snapshot.KindCatalog, ""),
	}
	var description string
	if d, ok := snapshot.Text(country.Description); ok {
		description = plainText(d)
		view.Description = paragraphs(description)
	} else {
		description = "Browse " + view.Count + " from " + name + " in the " + r.site.Name + " catalogue."
	}
	image, _ := snapshot.Text(country.ImageURL)
	view.Image = image

	canonical := r.url(snapshot.KindCountry, name)
	title := name + " Banknotes"
	return r.render(page{
		kind:        snapshot.KindCountry,
		key:         name,
		title:       title,
		description: description,
		image:       image,
		bodyName:    "country",
		bodyData:    view,
		ld: []node{
			r.collectionPage(title, describe(description, ""), canonical, itemList(title, listEntries(cards))),
			r.breadcrumbs(
				listEntry{Name: "Catalogue", URL: view.CatalogURL},
				listEntry{Name: name, URL: canonical},
			),
		},
	})
}

type catalogRootView struct {
	Total     string
	Countries []cardView
}

// CatalogRoot renders the catalogue index of countries.
func (r *Renderer) CatalogRoot(countries []snapshot.CountryGroup) (string, error) {
	cards := r.countryCards(countries)
	total := 0
	for _, c := range countries {
		total += c.EntryCount
	}
	view := catalogRootView{
		Total:     r.count(total, "banknote", "banknotes"),
		Countries: cards,
	}
	title := "Banknote Catalogue"
	description := "Explore " + view.Total + " across " + r.count(len(cards), "country", "countries") +
		" in the " + r.site.Name + " banknote catalogue."
	canonical := r.url(snapshot.KindCatalog, "")
	return r.render(page{
		kind:        snapshot.KindCatalog,
		title:       title,
		description: description,
		bodyName:    "catalog-root",
		bodyData:    view,
		ld: []node{
			r.collectionPage(title, description, canonical, itemList("Countries", listEntries(cards))),
			r.breadcrumbs(listEntry{Name: "Catalogue", URL: canonical}),
		},
	})
}

func (r *Renderer) countryCards(countries []snapshot.CountryGroup) []cardView {
	cards := make([]cardView, 0, len(countries))
	for _, c := range countries {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		image, _ := snapshot.Text(c.ImageURL)
		cards = append(cards, cardView{
			Title:    name,
			URL:      r.url(snapshot.KindCountry, name),
			Image:    image,
			Subtitle: r.count(c.EntryCount, "banknote", "banknotes"),
		})
	}
	return cards
}
