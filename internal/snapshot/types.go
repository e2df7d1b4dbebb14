// Package snapshot defines the entities, page kinds, and contracts shared by the
// snapshot generator subsystems.
package snapshot

import (
	"strings"
	"time"
)

// ImageSet holds the stored picture variants of a banknote.
type ImageSet struct {
	FrontOriginal    *string `json:"front_original,omitempty"`
	BackOriginal     *string `json:"back_original,omitempty"`
	FrontWatermarked *string `json:"front_watermarked,omitempty"`
	BackWatermarked  *string `json:"back_watermarked,omitempty"`
	FrontThumbnail   *string `json:"front_thumbnail,omitempty"`
	BackThumbnail    *string `json:"back_thumbnail,omitempty"`
}

// Front returns the best obverse picture: watermarked, then original, then thumbnail.
func (s ImageSet) Front() (string, bool) {
	return First(s.FrontWatermarked, s.FrontOriginal, s.FrontThumbnail)
}

// Back returns the best reverse picture using the same preference as Front.
func (s ImageSet) Back() (string, bool) {
	return First(s.BackWatermarked, s.BackOriginal, s.BackThumbnail)
}

// Primary returns the picture used for social cards.
func (s ImageSet) Primary() (string, bool) {
	if front, ok := s.Front(); ok {
		return front, true
	}
	return s.Back()
}

// CatalogEntry is a catalogued banknote.
type CatalogEntry struct {
	ID                    string     `json:"id"`
	Country               string     `json:"country"`
	FaceValue             string     `json:"face_value"`
	GregorianYear         *string    `json:"gregorian_year,omitempty"`
	IslamicYear           *string    `json:"islamic_year,omitempty"`
	PickNumber            *string    `json:"pick_number,omitempty"`
	ExtendedPickNumber    *string    `json:"extended_pick_number,omitempty"`
	SultanName            *string    `json:"sultan_name,omitempty"`
	Printer               *string    `json:"printer,omitempty"`
	Rarity                *string    `json:"rarity,omitempty"`
	SecurityElement       *string    `json:"security_element,omitempty"`
	Dimensions            *string    `json:"dimensions,omitempty"`
	Colors                *string    `json:"colors,omitempty"`
	SealNames             *string    `json:"seal_names,omitempty"`
	Category              *string    `json:"category,omitempty"`
	Type                  *string    `json:"type,omitempty"`
	Description           *string    `json:"description,omitempty"`
	HistoricalDescription *string    `json:"historical_description,omitempty"`
	Signatures            []string   `json:"signatures,omitempty"`
	Images                ImageSet   `json:"images"`
	Approved              bool       `json:"is_approved"`
	Pending               bool       `json:"is_pending"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// Publishable reports whether the entry may appear in public aggregate listings.
func (e CatalogEntry) Publishable() bool {
	return e.Approved && !e.Pending
}

// PickLabel returns the extended pick number, falling back to the plain one.
func (e CatalogEntry) PickLabel() (string, bool) {
	return First(e.ExtendedPickNumber, e.PickNumber)
}

// YearLabel combines the Gregorian and Islamic issue years.
func (e CatalogEntry) YearLabel() (string, bool) {
	greg, hasGreg := Text(e.GregorianYear)
	hijri, hasHijri := Text(e.IslamicYear)
	switch {
	case hasGreg && hasHijri:
		return greg + " (" + hijri + " AH)", true
	case hasGreg:
		return greg, true
	case hasHijri:
		return hijri + " AH", true
	default:
		return "", false
	}
}

// SignatureLabel joins the non-blank signature names.
func (e CatalogEntry) SignatureLabel() (string, bool) {
	names := make([]string, 0, len(e.Signatures))
	for _, s := range e.Signatures {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return strings.Join(names, ", "), true
}

// Name is the human readable heading, e.g. "100 Rials 1950 - Iran".
func (e CatalogEntry) Name() string {
	parts := make([]string, 0, 3)
	if face := strings.TrimSpace(e.FaceValue); face != "" {
		parts = append(parts, face)
	}
	if year, ok := e.YearLabel(); ok {
		parts = append(parts, year)
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = "Banknote"
	}
	if country := strings.TrimSpace(e.Country); country != "" {
		name += " - " + country
	}
	return name
}

// CountryGroup is a catalogue country and its derived entry count.
type CountryGroup struct {
	Name        string  `json:"name"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	EntryCount  int     `json:"entry_count"`
}

// Author references a user profile.
type Author struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Rank        *string `json:"rank,omitempty"`
}

// Name returns the display name, or "Anonymous" for blank profiles.
func (a Author) Name() string {
	if name := strings.TrimSpace(a.DisplayName); name != "" {
		return name
	}
	return "Anonymous"
}

// ForumPost is a forum thread or announcement.
type ForumPost struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Author       Author     `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	CommentCount int        `json:"comment_count"`
	ImageURLs    []string   `json:"image_urls,omitempty"`
	Announcement bool       `json:"announcement"`
}

// BlogPost is a published blog article.
type BlogPost struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	Author        Author     `json:"author"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	CommentCount  int        `json:"comment_count"`
}

// ListingStatus is the sale state of a marketplace listing.
type ListingStatus string

// Listing status values persisted by the marketplace.
const (
	ListingAvailable ListingStatus = "available"
	ListingReserved  ListingStatus = "reserved"
	ListingSold      ListingStatus = "sold"
)

// CollectionItem is the collection record offered for sale.
type CollectionItem struct {
	ID           string   `json:"id"`
	BanknoteID   string   `json:"banknote_id"`
	Condition    *string  `json:"condition,omitempty"`
	Grade        *string  `json:"grade,omitempty"`
	SalePrice    *float64 `json:"sale_price,omitempty"`
	PublicNote   *string  `json:"public_note,omitempty"`
	ObverseImage *string  `json:"obverse_image,omitempty"`
	ReverseImage *string  `json:"reverse_image,omitempty"`
}

// MarketplaceListing is a collection item offered by a seller.
type MarketplaceListing struct {
	ID        string         `json:"id"`
	Status    ListingStatus  `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	Item      CollectionItem `json:"item"`
	Seller    Author         `json:"seller"`
}

// Lookups are per-run indexes built once from batch fetches.
type Lookups struct {
	Banknotes map[string]CatalogEntry
}

// Banknote resolves the catalog entry behind a collection item.
func (l Lookups) Banknote(id string) (CatalogEntry, bool) {
	if l.Banknotes == nil || id == "" {
		return CatalogEntry{}, false
	}
	entry, ok := l.Banknotes[id]
	return entry, ok
}

// HomeData is the aggregate input of the home page.
type HomeData struct {
	Countries    []CountryGroup
	CatalogCount int
	ForumPosts   []ForumPost
	BlogPosts    []BlogPost
	Listings     []MarketplaceListing
	Lookups      Lookups
}
