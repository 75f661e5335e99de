package htmldoc

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page. It exposes the small query surface the
// crawler and extractors depend on; callers never touch html.Node directly.
type Document struct {
	// root is the document node of the parsed tree.
	root *html.Node

	// baseURL is the URL the page was fetched from, used to resolve
	// relative links.
	baseURL *url.URL
}

// Element is a single HTML element inside a Document.
type Element struct {
	node *html.Node
}

// Parse parses HTML content fetched from baseURL.
// x/net/html never fails on malformed markup; the only error paths are an
// invalid base URL or a reader failure.
func Parse(baseURL string, content io.Reader) (*Document, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	return &Document{root: root, baseURL: u}, nil
}

// Title returns the text of the <title> element, or an empty string.
func (d *Document) Title() string {
	title := d.Root().Find("title")
	if title == nil {
		return ""
	}
	return title.Text()
}

// Root returns the whole document as an Element, for use as a traversal
// scope when no narrower content root exists.
func (d *Document) Root() *Element {
	return &Element{node: d.root}
}

// FindAll returns all elements matching any of the given tag names, in
// document order.
func (d *Document) FindAll(tags ...string) []*Element {
	return d.Root().FindAll(tags...)
}

// Find returns the first element matching the selector, or nil.
// See Element.Find for the supported selector forms.
func (d *Document) Find(selector string) *Element {
	return d.Root().Find(selector)
}

// Links returns all anchor destinations in document order, resolved to
// absolute URLs against the page's base URL. Non-navigational schemes
// (javascript:, mailto:, tel:, data:) and bare fragment links are skipped.
func (d *Document) Links() []string {
	links := make([]string, 0)
	for _, a := range d.FindAll("a") {
		href := a.Attr("href")
		if href == "" {
			continue
		}
		if resolved := d.resolveURL(href); resolved != "" {
			links = append(links, resolved)
		}
	}
	return links
}

// resolveURL resolves a relative href against the base URL.
//
// Design decision: We resolve URLs here rather than in the crawler because:
//  1. Makes deduplication easier
//  2. Keeps the crawler free of parser concerns
func (d *Document) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return d.baseURL.ResolveReference(u).String()
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute, or an empty string.
func (e *Element) Attr(key string) string {
	for _, attr := range e.node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// Text returns the element's visible text with all whitespace runs
// collapsed to single spaces. Script and style contents are excluded.
func (e *Element) Text() string {
	return strings.Join(strings.Fields(e.RawText()), " ")
}

// RawText returns the element's visible text with internal whitespace
// preserved, trimmed only at the ends. This matters for <pre> blocks
// where line breaks are significant.
func (e *Element) RawText() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return strings.TrimSpace(sb.String())
}

// FindAll returns all descendant elements matching any of the given tag
// names, in document order. Matching elements nested inside other matches
// are included.
func (e *Element) FindAll(tags ...string) []*Element {
	wanted := make(map[string]bool, len(tags))
	for _, tag := range tags {
		wanted[tag] = true
	}

	found := make([]*Element, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && wanted[n.Data] {
			found = append(found, &Element{node: n})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// Find returns the first descendant matching the selector, or nil.
// Three selector forms are supported:
//
//	"main"      matches by tag name
//	".content"  matches by class attribute token
//	"#content"  matches by id attribute
func (e *Element) Find(selector string) *Element {
	var match func(*html.Node) bool
	switch {
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		match = func(n *html.Node) bool {
			return hasClass(n, class)
		}
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		match = func(n *html.Node) bool {
			return getAttr(n, "id") == id
		}
	default:
		match = func(n *html.Node) bool {
			return n.Data == selector
		}
	}

	var walk func(*html.Node) *Element
	walk = func(n *html.Node) *Element {
		if n.Type == html.ElementNode && match(n) {
			return &Element{node: n}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}

	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if found := walk(c); found != nil {
			return found
		}
	}
	return nil
}

// hasClass reports whether the node's class attribute contains the given
// class token.
func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(getAttr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
