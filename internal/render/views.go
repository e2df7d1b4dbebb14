package render

import (
	"strconv"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

type property struct {
	Label string
	Value string
}

type imageView struct {
	URL string
	Alt string
}

type authorView struct {
	Name   string
	Avatar string
	Rank   string
}

func newAuthorView(a snapshot.Author) authorView {
	avatar, _ := snapshot.Text(a.AvatarURL)
	rank, _ := snapshot.Text(a.Rank)
	return authorView{Name: a.Name(), Avatar: avatar, Rank: rank}
}

// cardView is one entry of a listing page.
type cardView struct {
	Title    string
	URL      string
	Image    string
	Subtitle string
	Meta     string
	Badge    string
}

func addProperty(props []property, label string, value string, ok bool) []property {
	if !ok {
		return props
	}
	return append(props, property{Label: label, Value: value})
}

func listEntries(cards []cardView) []listEntry {
	out := make([]listEntry, 0, len(cards))
	for _, c := range cards {
		out = append(out, listEntry{Name: c.Title, URL: c.URL})
	}
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
