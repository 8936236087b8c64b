package view

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/driftline/driftline/internal/content"
)

// blockRenderer renders one content block within its article.
type blockRenderer func(*content.Block, *content.Article) templ.Component

// blockRenderers dispatches on block kind. Unknown kinds fall through to
// renderUnknownBlock.
var blockRenderers = map[content.BlockKind]blockRenderer{
	content.BlockParagraph: renderParagraph,
	content.BlockHeading:   renderHeading,
	content.BlockWidget:    renderWidgetBlock,
	content.BlockImage:     renderImageBlock,
}

// RenderBlock dispatches a block to its kind's renderer.
func RenderBlock(b *content.Block, a *content.Article) templ.Component {
	if render, ok := blockRenderers[b.Kind]; ok {
		return render(b, a)
	}
	return renderUnknownBlock(b, a)
}

func renderParagraph(b *content.Block, _ *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p>%s</p>`, html.EscapeString(b.Text))
		return err
	})
}

func renderHeading(b *content.Block, _ *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		level := b.Level
		if level < 2 || level > 6 {
			level = 2
		}
		_, err := fmt.Fprintf(w, `<h%d>%s</h%d>`, level, html.EscapeString(b.Text), level)
		return err
	})
}

func renderWidgetBlock(b *content.Block, a *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		widget, ok := a.Widgets[b.WidgetID]
		if !ok {
			_, err := fmt.Fprintf(w, `<figure class="widget widget--missing" data-widget=%q></figure>`, b.WidgetID)
			return err
		}
		return RenderWidget(b.WidgetID, &widget).Render(ctx, w)
	})
}

func renderImageBlock(b *content.Block, _ *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if b.Image == nil {
			return nil
		}
		_, err := fmt.Fprintf(w, `<figure class="image"><img src=%q alt=%q></figure>`,
			b.Image.Src, b.Image.Alt)
		return err
	})
}

// renderUnknownBlock is the fallback for unrecognized kinds: the block is
// skipped but leaves a marker for debugging instead of breaking the page.
func renderUnknownBlock(b *content.Block, _ *content.Article) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!-- unsupported block kind %q -->`, string(b.Kind))
		return err
	})
}
