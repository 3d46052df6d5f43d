package source

import (
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// metaTags is the flat property->content map collected from a page's
// <meta> elements (both property= and name= variants).
type metaTags map[string]string

// first returns the first non-empty value among the given keys.
func (m metaTags) first(keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

// parseMetaTags walks the HTML document and collects og:* and twitter:*
// meta tags, HTML-entity-decoded. Malformed HTML yields whatever the
// tokenizer managed to parse before the error.
func parseMetaTags(r io.Reader) metaTags {
	tags := make(metaTags)

	doc, err := xhtml.Parse(r)
	if err != nil {
		return tags
	}

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.Data == "meta" {
			var key, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name":
					if strings.HasPrefix(attr.Val, "og:") || strings.HasPrefix(attr.Val, "twitter:") {
						key = attr.Val
					}
				case "content":
					content = attr.Val
				}
			}
			if key != "" && content != "" {
				if _, seen := tags[key]; !seen {
					tags[key] = strings.TrimSpace(html.UnescapeString(content))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tags
}
