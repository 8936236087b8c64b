package view

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/driftline/driftline/internal/content"
)

// widgetRenderer draws one widget descriptor as inline SVG markup.
type widgetRenderer func(id string, wd *content.Widget) templ.Component

// widgetRenderers dispatches on widget type. Unknown types fall through
// to renderUnknownWidget.
var widgetRenderers = map[content.WidgetType]widgetRenderer{
	content.WidgetSparkline: renderSparkline,
	content.WidgetHeat:      renderHeat,
}

// RenderWidget dispatches a widget to its type's renderer.
func RenderWidget(id string, wd *content.Widget) templ.Component {
	if render, ok := widgetRenderers[wd.Type]; ok {
		return render(id, wd)
	}
	return renderUnknownWidget(id, wd)
}

const (
	sparkWidth  = 240.0
	sparkHeight = 48.0
	heatCell    = 16.0
)

func renderSparkline(id string, wd *content.Widget) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<figure class="widget widget--sparkline" data-widget=%q><svg viewBox="0 0 %.0f %.0f" role="img" aria-label=%q>`,
			id, sparkWidth, sparkHeight, wd.Label); err != nil {
			return err
		}
		if len(wd.Series) > 1 {
			min, max := seriesRange(wd.Series)
			span := max - min
			if span == 0 {
				span = 1
			}
			step := sparkWidth / float64(len(wd.Series)-1)
			if _, err := io.WriteString(w, `<polyline fill="none" stroke="currentColor" stroke-width="2" points="`); err != nil {
				return err
			}
			for i, v := range wd.Series {
				x := float64(i) * step
				y := sparkHeight - (v-min)/span*sparkHeight
				if _, err := fmt.Fprintf(w, "%.1f,%.1f ", x, y); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `"/>`); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</svg><figcaption>%s</figcaption></figure>`, html.EscapeString(wd.Label))
		return err
	})
}

func renderHeat(id string, wd *content.Widget) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cols := 0
		for _, row := range wd.Cells {
			if len(row) > cols {
				cols = len(row)
			}
		}
		width := float64(cols) * heatCell
		height := float64(len(wd.Cells)) * heatCell
		if _, err := fmt.Fprintf(w,
			`<figure class="widget widget--heat" data-widget=%q><svg viewBox="0 0 %.0f %.0f" role="img" aria-label=%q>`,
			id, width, height, wd.Label); err != nil {
			return err
		}
		min, max := cellsRange(wd.Cells)
		span := max - min
		if span == 0 {
			span = 1
		}
		for r, row := range wd.Cells {
			for c, v := range row {
				opacity := (v - min) / span
				if _, err := fmt.Fprintf(w,
					`<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="currentColor" fill-opacity="%.2f"/>`,
					float64(c)*heatCell, float64(r)*heatCell, heatCell, heatCell, opacity); err != nil {
					return err
				}
			}
		}
		_, err := fmt.Fprintf(w, `</svg><figcaption>%s</figcaption></figure>`, html.EscapeString(wd.Label))
		return err
	})
}

// renderUnknownWidget keeps the figure slot so layout survives an
// unrecognized widget type.
func renderUnknownWidget(id string, wd *content.Widget) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<figure class="widget widget--unsupported" data-widget=%q><figcaption>%s</figcaption></figure>`,
			id, html.EscapeString(wd.Label))
		return err
	})
}

func seriesRange(series []float64) (min, max float64) {
	min, max = series[0], series[0]
	for _, v := range series[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func cellsRange(cells [][]float64) (min, max float64) {
	first := true
	for _, row := range cells {
		for _, v := range row {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}
