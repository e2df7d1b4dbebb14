package render

import (
	"strings"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const emptyMarketplace = "No banknotes are listed for sale right now. Check back soon!"

// listingName prefers the catalogue name of the banknote behind the listing.
func listingName(l snapshot.MarketplaceListing, lookups snapshot.Lookups) (string, snapshot.CatalogEntry, bool) {
	entry, ok := lookups.Banknote(l.Item.BanknoteID)
	if ok {
		return entry.Name(), entry, true
	}
	return "Banknote listing", entry, false
}

func listingImages(l snapshot.MarketplaceListing, entry snapshot.CatalogEntry, name string) []imageView {
	images := make([]imageView, 0, 2)
	if front, ok := snapshot.Text(l.Item.ObverseImage); ok {
		images = append(images, imageView{URL: front, Alt: name + " (obverse)"})
	} else if front, ok := entry.Images.Front(); ok {
		images = append(images, imageView{URL: front, Alt: name + " (obverse)"})
	}
	if back, ok := snapshot.Text(l.Item.ReverseImage); ok {
		images = append(images, imageView{URL: back, Alt: name + " (reverse)"})
	} else if back, ok := entry.Images.Back(); ok {
		images = append(images, imageView{URL: back, Alt: name + " (reverse)"})
	}
	return images
}

func (r *Renderer) listingProperties(l snapshot.MarketplaceListing, entry snapshot.CatalogEntry, known bool) []property {
	props := make([]property, 0, 8)
	if known {
		country := strings.TrimSpace(entry.Country)
		props = addProperty(props, "Country", country, country != "")
		year, ok := entry.YearLabel()
		props = addProperty(props, "Year", year, ok)
		pick, ok := entry.PickLabel()
		props = addProperty(props, "Pick Number", pick, ok)
	}
	v, ok := snapshot.Text(l.Item.Condition)
	props = addProperty(props, "Condition", v, ok)
	v, ok = snapshot.Text(l.Item.Grade)
	props = addProperty(props, "Grade", v, ok)
	if l.Item.SalePrice != nil {
		props = append(props, property{Label: "Price", Value: r.price(*l.Item.SalePrice)})
	}
	status := r.statusLabel(l.Status)
	props = addProperty(props, "Status", status, status != "")
	return props
}

func (r *Renderer) listingCard(l snapshot.MarketplaceListing, lookups snapshot.Lookups) cardView {
	name, entry, _ := listingName(l, lookups)
	card := cardView{
		Title: name,
		URL:   r.url(snapshot.KindMarketplaceItem, l.ID),
		Meta:  "Sold by " + l.Seller.Name(),
		Badge: r.statusLabel(l.Status),
	}
	if images := listingImages(l, entry, name); len(images) > 0 {
		card.Image = images[0].URL
	}
	if l.Item.SalePrice != nil {
		card.Subtitle = r.price(*l.Item.SalePrice)
	}
	return card
}

func (r *Renderer) offer(l snapshot.MarketplaceListing, url string, seller authorView) node {
	offer := newNode("Offer").
		set("url", url).
		set("price", l.Item.SalePrice).
		set("availability", availability(l.Status)).
		set("seller", person(seller))
	if l.Item.SalePrice != nil {
		offer.set("priceCurrency", r.site.Currency)
	}
	// Listings resell collection items. The grade text goes to additionalProperty.
	offer.set("itemCondition", "https://schema.org/UsedCondition")
	return offer
}

type marketplaceRootView struct {
	Count    string
	Listings []cardView
	Empty    string
}

// MarketplaceRoot renders the marketplace index. Lookups resolve the catalogue
// entry behind each listing.
func (r *Renderer) MarketplaceRoot(listings []snapshot.MarketplaceListing, lookups snapshot.Lookups) (string, error) {
	view := marketplaceRootView{Listings: make([]cardView, 0, len(listings))}
	for _, l := range listings {
		if strings.TrimSpace(l.ID) == "" {
			continue
		}
		view.Listings = append(view.Listings, r.listingCard(l, lookups))
	}
	view.Count = r.count(len(view.Listings), "listing", "listings")
	if len(view.Listings) == 0 {
		view.Empty = emptyMarketplace
	}
	title := "Banknote Marketplace"
	description := "Buy and sell collectible banknotes. " + view.Count + " from " + r.site.Name + " collectors."
	canonical := r.url(snapshot.KindMarketplace, "")
	return r.render(page{
		kind:        snapshot.KindMarketplace,
		title:       title,
		description: description,
		bodyName:    "marketplace-root",
		bodyData:    view,
		ld: []node{
			r.collectionPage(title, description, canonical, itemList("Listings", listEntries(view.Listings))),
			r.breadcrumbs(listEntry{Name: "Marketplace", URL: canonical}),
		},
	})
}

type marketplaceItemView struct {
	Title          string
	Status         string
	Price          string
	Images         []imageView
	Properties     []property
	Note           []string
	Seller         authorView
	CatalogURL     string
	MarketplaceURL string
}

// MarketplaceItem renders one listing with an Offer.
func (r *Renderer) MarketplaceItem(listing snapshot.MarketplaceListing, lookups snapshot.Lookups) (string, error) {
	if strings.TrimSpace(listing.ID) == "" {
		return "", errMissingID
	}
	name, entry, known := listingName(listing, lookups)
	images := listingImages(listing, entry, name)
	props := r.listingProperties(listing, entry, known)
	seller := newAuthorView(listing.Seller)
	canonical := r.url(snapshot.KindMarketplaceItem, listing.ID)

	view := marketplaceItemView{
		Title:          name,
		Status:         r.statusLabel(listing.Status),
		Images:         images,
		Properties:     props,
		Seller:         seller,
		MarketplaceURL: r.url(snapshot.KindMarketplace, ""),
	}
	if listing.Item.SalePrice != nil {
		view.Price = r.price(*listing.Item.SalePrice)
	}
	if known {
		view.CatalogURL = r.url(snapshot.KindCatalogItem, entry.ID)
	}
	note, hasNote := snapshot.Text(listing.Item.PublicNote)
	if hasNote {
		view.Note = paragraphs(plainText(note))
	}

	imageURLs := make([]string, 0, len(images))
	for _, img := range images {
		imageURLs = append(imageURLs, img.URL)
	}
	product := newNode("Product").
		set("name", name).
		set("url", canonical).
		set("image", imageURLs).
		set("sku", listing.Item.ID).
		set("additionalProperty", propertyValues(props)).
		set("offers", r.offer(listing, canonical, seller))
	if known {
		product.set("category", "Banknote")
		if pick, ok := entry.PickLabel(); ok {
			product.set("mpn", pick)
		}
	}

	description := joinPresent(" ", name+" for sale", view.Price)
	if hasNote {
		description = joinPresent(". ", description, plainText(note))
	} else {
		description += ". Listed by " + seller.Name + " on " + r.site.Name + "."
	}
	if known {
		product.set("description", describe(catalogDescription(entry), ""))
	}

	var image string
	if len(imageURLs) > 0 {
		image = imageURLs[0]
	}
	return r.render(page{
		kind:        snapshot.KindMarketplaceItem,
		key:         listing.ID,
		title:       name + " for Sale",
		description: description,
		image:       image,
		ogType:      "product",
		bodyName:    "marketplace-item",
		bodyData:    view,
		ld: []node{
			product,
			r.breadcrumbs(
				listEntry{Name: "Marketplace", URL: view.MarketplaceURL},
				listEntry{Name: name, URL: canonical},
			),
		},
	})
}
