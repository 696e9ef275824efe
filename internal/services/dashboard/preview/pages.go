package preview

import (
	"bytes"
	"html/template"
	"net/url"
)

var methodNotAllowedTmpl = template.Must(template.New("405").Parse(
	`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>405 Method Not Allowed</title></head>` +
		`<body><h1>405 Method Not Allowed</h1><p>The requested URL {{.}} returned 405. ` +
		`Preview is not available for non-GET endpoints.</p></body></html>`))

var unavailableTmpl = template.Must(template.New("unavailable").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Preview unavailable</title>
<style>
body{margin:0;height:100vh;display:flex;align-items:center;justify-content:center;font-family:system-ui,sans-serif;color:#6b7280;background:#f4f4f5}
.box{text-align:center}.reason{font-size:.75rem;margin:.5rem 0}a{color:#2563eb;font-size:.8rem}
</style></head>
<body><div class="box"><div>Preview unavailable</div>
{{with .Reason}}<div class="reason">{{.}}</div>{{end}}
{{with .Link}}<a href="{{.}}" target="_blank" rel="noopener noreferrer">Open in new tab</a>{{end}}
</div></body></html>`))

var wrapperTmpl = template.Must(template.New("wrapper").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Preview</title>
<style>
html,body{margin:0;height:100%;overflow:hidden;font-family:system-ui,sans-serif;background:#f4f4f5}
.state{position:absolute;inset:0;display:flex;align-items:center;justify-content:center;color:#6b7280}
.state[hidden],iframe[hidden]{display:none}
iframe{border:0;width:100%;height:100%;pointer-events:none}
a{color:#2563eb;margin-left:.5rem;font-size:.8rem}
</style></head>
<body>
<div id="loading" class="state" data-state="loading">Loading preview&hellip;</div>
<div id="failed" class="state" data-state="error" hidden>Preview unavailable<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">Open in new tab</a></div>
<iframe id="frame" title="Preview" src="{{.URL}}" sandbox="allow-scripts" referrerpolicy="no-referrer" loading="eager" hidden></iframe>
<script>
(function () {
  var settled = false;
  var frame = document.getElementById("frame");
  function settle(ok) {
    if (settled) { return; }
    settled = true;
    document.getElementById("loading").hidden = true;
    if (ok) { frame.hidden = false; } else { document.getElementById("failed").hidden = false; }
  }
  frame.addEventListener("load", function () { settle(true); });
  frame.addEventListener("error", function () { settle(false); });
  setTimeout(function () { settle(false); }, {{.TimeoutMs}});
})();
</script>
</body></html>`))

func renderMethodNotAllowed(u *url.URL) []byte {
	var buf bytes.Buffer
	_ = methodNotAllowedTmpl.Execute(&buf, u.String())
	return buf.Bytes()
}

// RenderUnavailable renders the fallback shown instead of a preview. link is
// only offered when it is an http(s) URL.
func RenderUnavailable(rawTarget, reason string) []byte {
	data := struct{ Link, Reason string }{Reason: reason}
	if u, err := url.Parse(rawTarget); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		data.Link = u.String()
	}
	var buf bytes.Buffer
	_ = unavailableTmpl.Execute(&buf, data)
	return buf.Bytes()
}

func renderWrapper(u *url.URL, timeoutMs int64) []byte {
	var buf bytes.Buffer
	_ = wrapperTmpl.Execute(&buf, struct {
		URL       string
		TimeoutMs int64
	}{URL: u.String(), TimeoutMs: timeoutMs})
	return buf.Bytes()
}
