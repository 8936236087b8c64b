package view

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// ShellParams configures the page shell: surface element ids, the
// initially committed route output, and client behavior flags.
type ShellParams struct {
	MountID         string
	NavID           string
	TitleID         string
	Initial         Rendered
	ViewTransitions bool

	// DegradedMessage, when non-empty, replaces the mount content with a
	// visible failure notice (initial load failed at startup).
	DegradedMessage string
}

// Shell renders the full HTML document hosting the single-page site. The
// embedded client script mirrors the server engine: it re-renders on
// fragment changes and reloads when the content WebSocket reports a new
// fingerprint.
func Shell(p ShellParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		mount := p.Initial.Mount
		if p.DegradedMessage != "" {
			mount = fmt.Sprintf(`<div class="degraded" role="alert">%s</div>`,
				html.EscapeString(p.DegradedMessage))
		}

		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title id=%q>%s</title>
<link rel="stylesheet" href="/static/site.css">
</head>
<body>
<nav id=%q>%s</nav>
<main id=%q>%s</main>
<script>
(function () {
	var transitions = %t && typeof document.startViewTransition === "function";

	function rerender(route) {
		fetch("/render/" + encodeURIComponent(route))
			.then(function (r) { return r.json(); })
			.then(function (out) {
				var commit = function () {
					document.getElementById(%q).innerHTML = out.mount;
					document.getElementById(%q).innerHTML = out.nav;
					document.getElementById(%q).textContent = out.title;
				};
				requestAnimationFrame(function () {
					if (transitions) {
						document.startViewTransition(commit);
					} else {
						commit();
					}
				});
			});
	}

	window.addEventListener("hashchange", function () {
		rerender(location.hash.replace(/^#\/?/, ""));
	});

	var proto = location.protocol === "https:" ? "wss:" : "ws:";
	var ws = new WebSocket(proto + "//" + location.host + "/ws");
	ws.onmessage = function (event) {
		var msg = JSON.parse(event.data);
		if (msg.type === "content") {
			rerender(location.hash.replace(/^#\/?/, ""));
		}
	};
})();
</script>
</body>
</html>`,
			p.TitleID, html.EscapeString(p.Initial.Title),
			p.NavID, p.Initial.Nav,
			p.MountID, mount,
			p.ViewTransitions,
			p.MountID, p.NavID, p.TitleID)
		return err
	})
}
