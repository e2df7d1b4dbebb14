package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// inspect fills the page fields of c from a bot response and records every
// problem a crawler would hit.
func inspect(c *Check, resp Response) {
	c.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		c.problem("unexpected status %d", resp.StatusCode)
		return
	}
	if mediaType, _, err := mime.ParseMediaType(resp.Headers.Get("Content-Type")); err != nil || mediaType != "text/html" {
		c.problem("unexpected content type %q", resp.Headers.Get("Content-Type"))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		c.problem("unparseable HTML: %v", err)
		return
	}

	c.Title = strings.TrimSpace(doc.Find("head > title").First().Text())
	if c.Title == "" {
		c.problem("missing <title>")
	}
	if attr(doc, `meta[name="description"]`, "content") == "" {
		c.problem("missing meta description")
	}
	if attr(doc, `meta[property="og:title"]`, "content") == "" {
		c.problem("missing og:title")
	}
	c.Canonical = attr(doc, `link[rel="canonical"]`, "href")
	if c.Canonical == "" {
		c.problem("missing canonical link")
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		types, err := structuredDataTypes([]byte(s.Text()))
		if err != nil {
			c.problem("invalid structured data: %v", err)
			return
		}
		c.StructuredData = append(c.StructuredData, types...)
	})
	if len(c.StructuredData) == 0 {
		c.problem("missing structured data")
	}

	if strings.Contains(doc.Find("main").Text(), "undefined") {
		c.problem(`placeholder text "undefined" in content`)
	}

	hasRedirect := false
	doc.Find("script:not([type])").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		hasRedirect = strings.Contains(s.Text(), "window.location.replace")
		return !hasRedirect
	})
	if !hasRedirect {
		c.problem("missing browser redirect script")
	}
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// structuredDataTypes validates one JSON-LD block and returns its @type values.
func structuredDataTypes(raw []byte) ([]string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	var nodes []map[string]any
	switch v := decoded.(type) {
	case map[string]any:
		nodes = append(nodes, v)
	case []any:
		for _, item := range v {
			if node, ok := item.(map[string]any); ok {
				nodes = append(nodes, node)
			}
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no JSON-LD objects")
	}
	types := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if _, ok := node["@context"]; !ok {
			return nil, fmt.Errorf("node without @context")
		}
		typ, _ := node["@type"].(string)
		if typ == "" {
			return nil, fmt.Errorf("node without @type")
		}
		types = append(types, typ)
	}
	return types, nil
}
