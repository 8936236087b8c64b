// Package view renders routes to HTML for the mount, navigation, and
// title surfaces. Components are composed from templ.ComponentFunc values;
// content blocks and widgets dispatch through explicit kind-to-renderer
// maps with defined fallbacks.
package view

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/driftline/driftline/internal/content"
	"github.com/driftline/driftline/internal/router"
)

// Rendered is one route's output for the three surfaces.
type Rendered struct {
	Mount string
	Nav   string
	Title string
}

var kickerCaser = cases.Title(language.English)

// RenderRoute renders a resolved route against a snapshot. The route must
// already be normalized; an article route whose article is missing renders
// the home feed (the resolver guarantees this does not happen on the
// commit path).
func RenderRoute(route string, snap *content.Snapshot) (Rendered, error) {
	var page templ.Component
	var title string

	switch {
	case route == router.RouteHome:
		page = HomeFeed(snap)
		title = snap.Meta.Title
	case route == router.RouteLatest:
		page = LatestFeed(snap)
		title = joinTitle("Latest", snap.Meta.Title)
	default:
		article := snap.Article(route)
		if article == nil {
			page = HomeFeed(snap)
			title = snap.Meta.Title
		} else {
			page = ArticlePage(article)
			title = joinTitle(article.Title, snap.Meta.Title)
		}
	}

	mount, err := renderToString(page)
	if err != nil {
		return Rendered{}, fmt.Errorf("render route %q: %w", route, err)
	}

	nav, err := renderToString(NavList(route, snap))
	if err != nil {
		return Rendered{}, fmt.Errorf("render nav for %q: %w", route, err)
	}

	return Rendered{Mount: mount, Nav: nav, Title: title}, nil
}

func joinTitle(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " — ")
}

func renderToString(c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HomeFeed renders the card grid for every article in feed order.
func HomeFeed(snap *content.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="feed" data-route=%q>`, router.RouteHome); err != nil {
			return err
		}
		for i := range snap.Articles {
			if err := ArticleCard(&snap.Articles[i]).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// LatestFeed leads with the first article as a hero card, then the rest.
func LatestFeed(snap *content.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="feed feed--latest" data-route=%q>`, router.RouteLatest); err != nil {
			return err
		}
		for i := range snap.Articles {
			card := ArticleCard(&snap.Articles[i])
			if i == 0 {
				card = HeroCard(&snap.Articles[i])
			}
			if err := card.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// ArticleCard is one feed entry linking to its article route.
func ArticleCard(a *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<article class="card"><a href="%s"><span class="card-kicker">%s</span><h2>%s</h2><p class="card-dek">%s</p><span class="card-reading">%d min</span></a></article>`,
			router.Fragment(a.ID),
			html.EscapeString(kickerCaser.String(a.Kicker)),
			html.EscapeString(a.Title),
			html.EscapeString(a.Dek),
			a.ReadingMinutes)
		return err
	})
}

// HeroCard is the lead treatment of a feed entry.
func HeroCard(a *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<article class="card card--hero"><a href="%s"><img src=%q alt=%q><span class="card-kicker">%s</span><h2>%s</h2><p class="card-dek">%s</p></a></article>`,
			router.Fragment(a.ID),
			a.Hero.Image.Src,
			a.Hero.Image.Alt,
			html.EscapeString(kickerCaser.String(a.Kicker)),
			html.EscapeString(a.Title),
			html.EscapeString(a.Dek))
		return err
	})
}

// ArticlePage renders a full long-form article: hero, header, blocks.
func ArticlePage(a *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<article class="longform" data-article=%q><header><img class="hero" src=%q alt=%q><span class="kicker">%s</span><h1>%s</h1><p class="dek">%s</p><span class="reading">%d min read</span></header>`,
			a.ID,
			a.Hero.Image.Src,
			a.Hero.Image.Alt,
			html.EscapeString(kickerCaser.String(a.Kicker)),
			html.EscapeString(a.Title),
			html.EscapeString(a.Dek),
			a.ReadingMinutes); err != nil {
			return err
		}
		for i := range a.Blocks {
			if err := RenderBlock(&a.Blocks[i], a).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
}

// NavList renders the route affordances: literals first, then every
// article. The active route is marked.
func NavList(active string, snap *content.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<ul class="nav">`); err != nil {
			return err
		}
		writeItem := func(route, label string) error {
			class := ""
			if route == active {
				class = ` class="active"`
			}
			_, err := fmt.Fprintf(w, `<li%s><a href="%s">%s</a></li>`,
				class, router.Fragment(route), html.EscapeString(label))
			return err
		}
		if err := writeItem(router.RouteHome, "Home"); err != nil {
			return err
		}
		if err := writeItem(router.RouteLatest, "Latest"); err != nil {
			return err
		}
		for i := range snap.Articles {
			a := &snap.Articles[i]
			if err := writeItem(a.ID, a.Title); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}
