// Package sanitize strips unsafe markup from upstream message bodies before
// they are returned to a caller.
package sanitize

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sagar7778/emailtemp/interfaces"
)

// Tags whose entire subtree is dropped, content included.
var dropWithContent = "script, style, iframe, object, embed, form, link, meta, base"

var allowedTags = map[string]bool{
	"a": true, "b": true, "strong": true, "i": true, "em": true, "u": true,
	"br": true, "p": true, "ul": true, "ol": true, "li": true, "pre": true,
	"code": true, "blockquote": true, "span": true, "img": true,
	"table": true, "tr": true, "td": true, "th": true,
	"tbody": true, "thead": true, "tfoot": true,
}

var allowedAttrs = map[string]map[string]bool{
	"a":    {"href": true},
	"span": {"style": true},
	"img":  {"src": true, "alt": true, "title": true, "width": true, "height": true},
}

var allowedSchemes = map[string]bool{
	"http": true, "https": true, "mailto": true, "data": true,
}

type Sanitizer struct{}

func NewSanitizer() interfaces.HTMLSanitizer {
	return &Sanitizer{}
}

// Sanitize rewrites the input with a strict tag and attribute whitelist.
// Disallowed elements are unwrapped (their text survives) except for script
// and friends, which are removed with their content. URL attributes are kept
// only for http, https, mailto and data schemes.
func (s *Sanitizer) Sanitize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return ""
	}

	doc.Find(dropWithContent).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}

	var buf bytes.Buffer
	for _, node := range body.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			renderNode(&buf, child)
		}
	}
	return buf.String()
}

func renderNode(buf *bytes.Buffer, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		buf.WriteString(html.EscapeString(node.Data))
		return
	case html.ElementNode:
		// handled below
	default:
		return
	}

	name := strings.ToLower(node.Data)
	if !allowedTags[name] {
		// Unwrap: drop the tag, keep its children.
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			renderNode(buf, child)
		}
		return
	}

	buf.WriteString("<" + name)
	for _, attr := range node.Attr {
		if !attrAllowed(name, attr) {
			continue
		}
		buf.WriteString(" " + attr.Key + `="` + html.EscapeString(attr.Val) + `"`)
	}

	if name == "br" || name == "img" {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderNode(buf, child)
	}
	buf.WriteString("</" + name + ">")
}

func attrAllowed(tag string, attr html.Attribute) bool {
	allowed, ok := allowedAttrs[tag]
	if !ok || !allowed[strings.ToLower(attr.Key)] {
		return false
	}
	if attr.Key == "href" || attr.Key == "src" {
		return schemeAllowed(attr.Val)
	}
	return true
}

func schemeAllowed(rawURL string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(rawURL))
	// Protocol-relative and relative URLs are fine.
	if !strings.Contains(trimmed, ":") || strings.HasPrefix(trimmed, "//") {
		return true
	}
	for scheme := range allowedSchemes {
		if strings.HasPrefix(trimmed, scheme+":") {
			return true
		}
	}
	return false
}
