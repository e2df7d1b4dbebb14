package render

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/message"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const displayDate = "January 2, 2006"

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return isoTime(*t)
}

func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(displayDate)
}

// count formats n with locale grouping and a singular/plural noun.
func (r *Renderer) count(n int, singular, plural string) string {
	p := message.NewPrinter(r.lang)
	if n == 1 {
		return p.Sprintf("%d %s", n, singular)
	}
	return p.Sprintf("%d %s", n, plural)
}

func (r *Renderer) price(amount float64) string {
	p := message.NewPrinter(r.lang)
	return p.Sprintf("%.2f %s", amount, r.site.Currency)
}

func (r *Renderer) statusLabel(status snapshot.ListingStatus) string {
	if status == "" {
		return ""
	}
	return cases.Title(r.lang).String(string(status))
}

func availability(status snapshot.ListingStatus) string {
	switch status {
	case snapshot.ListingAvailable:
		return "https://schema.org/InStock"
	case snapshot.ListingReserved:
		return "https://schema.org/LimitedAvailability"
	case snapshot.ListingSold:
		return "https://schema.org/SoldOut"
	default:
		return ""
	}
}
