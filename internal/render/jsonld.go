package render

import (
	"encoding/json"
	"fmt"
	"html/template"
)

const schemaContext = "https://schema.org"

// node is one schema.org object. encoding/json sorts map keys, so output is
// stable across runs.
type node map[string]any

func newNode(typ string) node {
	return node{"@type": typ}
}

// set stores value unless it is absent: nil, a blank string, or an empty list.
func (n node) set(key string, value any) node {
	switch v := value.(type) {
	case nil:
		return n
	case string:
		if v == "" {
			return n
		}
	case []string:
		if len(v) == 0 {
			return n
		}
	case []node:
		if len(v) == 0 {
			return n
		}
	case node:
		if v == nil {
			return n
		}
	case *float64:
		if v == nil {
			return n
		}
		value = *v
	}
	n[key] = value
	return n
}

func encodeLD(nodes []node) ([]template.JS, error) {
	out := make([]template.JS, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		n["@context"] = schemaContext
		raw, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("marshal %v: %w", n["@type"], err)
		}
		// json.Marshal escapes <, > and &, so the payload cannot close the script element.
		out = append(out, template.JS(raw)) //nolint:gosec // JSON is HTML-safe after Marshal
	}
	return out, nil
}

func person(a authorView) node {
	return newNode("Person").
		set("name", a.Name).
		set("image", a.Avatar)
}

func propertyValues(props []property) []node {
	out := make([]node, 0, len(props))
	for _, p := range props {
		out = append(out, newNode("PropertyValue").set("name", p.Label).set("value", p.Value))
	}
	return out
}

type listEntry struct {
	Name string
	URL  string
}

func itemList(name string, entries []listEntry) node {
	items := make([]node, 0, len(entries))
	for i, e := range entries {
		items = append(items, newNode("ListItem").
			set("position", i+1).
			set("name", e.Name).
			set("url", e.URL))
	}
	return newNode("ItemList").
		set("name", name).
		set("numberOfItems", len(entries)).
		set("itemListElement", items)
}

func (r *Renderer) collectionPage(name, description, url string, list node) node {
	return newNode("CollectionPage").
		set("name", name).
		set("description", description).
		set("url", url).
		set("isPartOf", r.website()).
		set("mainEntity", list)
}

func (r *Renderer) website() node {
	return newNode("WebSite").
		set("name", r.site.Name).
		set("url", r.site.URL("/"))
}

func (r *Renderer) organization() node {
	return newNode("Organization").
		set("name", r.site.Name).
		set("url", r.site.URL("/")).
		set("logo", r.site.DefaultImage)
}

func (r *Renderer) breadcrumbs(trail ...listEntry) node {
	items := make([]node, 0, len(trail)+1)
	all := append([]listEntry{{Name: "Home", URL: r.site.URL("/")}}, trail...)
	for i, e := range all {
		items = append(items, newNode("ListItem").
			set("position", i+1).
			set("name", e.Name).
			set("item", e.URL))
	}
	return newNode("BreadcrumbList").set("itemListElement", items)
}
