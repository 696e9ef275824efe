package preview

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func sanitizeString(t *testing.T, doc, final string) string {
	t.Helper()
	out, err := Sanitize([]byte(doc), mustURL(t, final))
	require.NoError(t, err)
	return string(out)
}

// elements collects every element in the rendered document.
func elements(t *testing.T, doc string) []*html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func countTag(t *testing.T, doc, tag string) int {
	n := 0
	for _, e := range elements(t, doc) {
		if e.Data == tag {
			n++
		}
	}
	return n
}

var hostile = []string{
	`<html><head><title>x</title></head><body><script>evil()</script><p>ok</p></body></html>`,
	`<scr<script>ipt>alert(1)</scr</script>ipt><div>after</div>`,
	`<SCRIPT src=//evil.example/x.js></SCRIPT><script>`,
	`<noscript><img src=x onerror=alert(1)></noscript><p>visible</p>`,
	`<link rel="preload" as="script" href="/a.js"><link as=script rel=preload href=/b.js><link rel=modulepreload href=/c.js><link rel=stylesheet href=/s.css>`,
	`<img src=x OnErRoR="alert(1)" onload=alert(2) alt="onerror=still text">`,
	`<div onclick="a" data-x="ononclick=b" onmouseover=c>t</div>`,
	`<a href="javascript:alert(1)">a</a><a HREF=" JaVaScRiPt:alert(2)">b</a><a href="java&#x09;script:alert(3)">c</a>`,
	`<form action="javascript:go()"><button formaction="javascript:x()">go</button></form><object data="javascript:x"></object>`,
	`<iframe src="data:text/html;base64,PHNjcmlwdD4="></iframe><a href="DATA:text/html,<b>">d</a><img src="data:image/png;base64,AAAA">`,
	`<object data="x.swf"><embed src="y.swf"></object><applet code=z></applet><embed src=w>`,
	`<head><meta http-equiv="Content-Security-Policy" content="script-src *"><meta http-equiv=refresh content="0;url=javascript:alert(1)"><base href="https://evil.example/"></head><p>x</p>`,
	`no markup at all`,
	``,
	`<svg><script>alert(1)</script><a xlink:href="javascript:alert(2)">s</a></svg>`,
}

func TestSanitizeRemovesExecutableContent(t *testing.T) {
	for _, in := range hostile {
		out := sanitizeString(t, in, "https://acme.example.com/landing?x=1")

		assert.Zero(t, countTag(t, out, "script"), in)
		assert.Zero(t, countTag(t, out, "noscript"), in)
		assert.Zero(t, countTag(t, out, "object"), in)
		assert.Zero(t, countTag(t, out, "embed"), in)
		assert.Zero(t, countTag(t, out, "applet"), in)

		for _, el := range elements(t, out) {
			for _, a := range el.Attr {
				key := strings.ToLower(a.Key)
				assert.False(t, strings.HasPrefix(key, "on"), "event handler %q survived in %q", a.Key, in)
				if javascriptAttrs[key] {
					assert.False(t, hasScheme(a.Val, "javascript:"), "javascript uri in %q", in)
				}
				if dataHTMLAttrs[key] {
					assert.False(t, hasScheme(a.Val, "data:text/html"), "data:text/html uri in %q", in)
				}
			}
		}
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	final := mustURL(t, "https://acme.example.com/a/b")
	for _, in := range hostile {
		once, err := Sanitize([]byte(in), final)
		require.NoError(t, err)
		twice, err := Sanitize(once, final)
		require.NoError(t, err)
		assert.Equal(t, string(once), string(twice), in)
	}
}

func TestSanitizeNeutralizesByRenaming(t *testing.T) {
	out := sanitizeString(t, `<a href="javascript:alert(1)" class="cta">go</a><iframe src="data:text/html,x"></iframe>`, "https://acme.example.com/")

	var anchor, frame *html.Node
	for _, el := range elements(t, out) {
		switch el.Data {
		case "a":
			anchor = el
		case "iframe":
			frame = el
		}
	}
	require.NotNil(t, anchor)
	require.NotNil(t, frame)
	assert.Equal(t, "javascript:alert(1)", attr(anchor, "data-blocked-href"))
	assert.Empty(t, attr(anchor, "href"))
	assert.Equal(t, "cta", attr(anchor, "class"))
	assert.Equal(t, "data:text/html,x", attr(frame, "data-blocked-src"))
}

func TestSanitizeKeepsHarmlessContent(t *testing.T) {
	out := sanitizeString(t, `<link rel=stylesheet href=/s.css><img src="data:image/png;base64,AAAA" alt=logo><a href="/docs">docs</a>`, "https://acme.example.com/")
	assert.Equal(t, 1, countTag(t, out, "link"))
	assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, out, `href="/docs"`)
}

func TestSanitizeInjectsHeadPreamble(t *testing.T) {
	out := sanitizeString(t, `<html><head><base href="https://evil.example/"><title>t</title></head><body>b</body></html>`,
		"https://docs.example.org:8443/deep/path?q=1#frag")

	root, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	head := findHead(root)
	require.NotNil(t, head)

	first := head.FirstChild
	require.NotNil(t, first)
	assert.Equal(t, "base", first.Data)
	assert.Equal(t, "https://docs.example.org:8443/", attr(first, "href"))

	meta := first.NextSibling
	require.NotNil(t, meta)
	assert.Equal(t, "meta", meta.Data)
	assert.Equal(t, ContentPolicy, attr(meta, "content"))
	assert.Contains(t, ContentPolicy, "script-src 'none'")

	style := meta.NextSibling
	require.NotNil(t, style)
	assert.Equal(t, "style", style.Data)
	assert.Contains(t, style.FirstChild.Data, "overflow: hidden !important")

	assert.Equal(t, 1, countTag(t, out, "base"))
	assert.NotContains(t, out, "evil.example")
}

func TestSanitizeEscapesBaseHref(t *testing.T) {
	u := &url.URL{Scheme: "https", Host: `acme.example.com"><script>x()</script>`}
	out, err := Sanitize([]byte("<p>x</p>"), u)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(out, []byte("<script>")))
	assert.Zero(t, countTag(t, string(out), "script"))
}

func TestSanitizeWithoutHead(t *testing.T) {
	out := sanitizeString(t, "<p>fragment</p>", "http://acme.example.com/x")
	assert.True(t, strings.HasPrefix(out, "<html><head><base href=\"http://acme.example.com/\"/>"), out)
	assert.Contains(t, out, "<p>fragment</p>")
}
