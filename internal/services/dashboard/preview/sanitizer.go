package preview

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContentPolicy is installed into every sanitized document. Scripts never run.
const ContentPolicy = "default-src *; script-src 'none'; style-src * 'unsafe-inline'; " +
	"img-src * data: blob:; font-src * data:; connect-src * data: blob:;"

const frozenStyle = "html, body { overflow: hidden !important; } " +
	"body { pointer-events: none; user-select: none; }"

// injectedAttr marks nodes added by Sanitize so a second pass can replace them.
const injectedAttr = "data-preview-injected"

const blockedPrefix = "data-blocked-"

var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Noscript: true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Applet:   true,
	atom.Base:     true,
}

var javascriptAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true, "data": true,
}

var dataHTMLAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
}

// Sanitize parses doc, strips everything executable and prepends a <base>
// pointing at final's origin plus the content policy. The output is a
// fixed point: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(doc []byte, final *url.URL) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	scrub(root)

	head := findHead(root)
	if head == nil {
		// html.Parse always synthesizes <head>; this guards hand-built trees.
		head = &html.Node{Type: html.ElementNode, DataAtom: atom.Head, Data: "head"}
		htmlEl := findElement(root, atom.Html)
		if htmlEl == nil {
			htmlEl = &html.Node{Type: html.ElementNode, DataAtom: atom.Html, Data: "html"}
			root.AppendChild(htmlEl)
		}
		htmlEl.InsertBefore(head, htmlEl.FirstChild)
	}
	for _, n := range injected(BaseHref(final)) {
		head.InsertBefore(n, head.FirstChild)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// BaseHref is the origin of u with a trailing slash.
func BaseHref(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}

// injected returns the nodes in reverse order of their final position.
func injected(baseHref string) []*html.Node {
	mark := html.Attribute{Key: injectedAttr}
	style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style", Attr: []html.Attribute{mark}}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: frozenStyle})
	return []*html.Node{
		style,
		{Type: html.ElementNode, DataAtom: atom.Meta, Data: "meta", Attr: []html.Attribute{
			{Key: "http-equiv", Val: "Content-Security-Policy"},
			{Key: "content", Val: ContentPolicy},
			mark,
		}},
		// The renderer escapes attribute values, so baseHref cannot break out.
		{Type: html.ElementNode, DataAtom: atom.Base, Data: "base", Attr: []html.Attribute{
			{Key: "href", Val: baseHref},
		}},
	}
}

func scrub(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && dropElement(c) {
			n.RemoveChild(c)
		} else {
			if c.Type == html.ElementNode {
				c.Attr = scrubAttrs(c.Attr)
			}
			scrub(c)
		}
		c = next
	}
}

func dropElement(n *html.Node) bool {
	if droppedElements[n.DataAtom] || !validTagName(n.Data) {
		return true
	}
	if hasAttr(n, injectedAttr) {
		return true
	}
	switch n.DataAtom {
	case atom.Link:
		rel := tokens(attr(n, "rel"))
		if rel["modulepreload"] {
			return true
		}
		return rel["preload"] && strings.EqualFold(strings.TrimSpace(attr(n, "as")), "script")
	case atom.Meta:
		switch strings.ToLower(strings.TrimSpace(attr(n, "http-equiv"))) {
		case "content-security-policy", "refresh":
			return true
		}
	}
	return false
}

func scrubAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (javascriptAttrs[key] && hasScheme(a.Val, "javascript:")) ||
			(dataHTMLAttrs[key] && hasScheme(a.Val, "data:text/html")) {
			a.Namespace = ""
			a.Key = blockedPrefix + key
		}
		out = append(out, a)
	}
	return out
}

// hasScheme compares the way browsers resolve URLs: whitespace and control
// characters are ignored and the scheme is case-insensitive.
func hasScheme(val, scheme string) bool {
	var b strings.Builder
	for _, r := range val {
		if r <= ' ' {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= len(scheme) {
			break
		}
	}
	return strings.EqualFold(b.String(), scheme)
}

func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == ':', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func tokens(s string) map[string]bool {
	out := map[string]bool{}
	for _, f := range strings.Fields(strings.ToLower(s)) {
		out[f] = true
	}
	return out
}

func findHead(root *html.Node) *html.Node { return findElement(root, atom.Head) }

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
