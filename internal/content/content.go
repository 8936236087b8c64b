// Package content defines the feed data model: the immutable Snapshot, its
// articles, tagged content blocks, and widget descriptors, plus the
// canonical fingerprint used for change detection.
//
// A Snapshot is never mutated after Parse returns it; each successful feed
// load produces a fresh Snapshot with a fully rebuilt ArticlesByID index.
package content

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/driftline/driftline/internal/errors"
)

// BlockKind discriminates the content block variants.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
	BlockWidget    BlockKind = "widget"
	BlockImage     BlockKind = "image"
)

// WidgetType discriminates widget visualizations.
type WidgetType string

const (
	WidgetSparkline WidgetType = "sparkline"
	WidgetHeat      WidgetType = "heat"
)

// Meta holds feed-level metadata.
type Meta struct {
	Title        string `json:"title"`
	DefaultRoute string `json:"defaultRoute"`
}

// Image describes an image source with alt text.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Hero is an article's lead visual.
type Hero struct {
	Image Image `json:"image"`
}

// Block is one unit of article body content. Kind selects which of the
// remaining fields are meaningful; renderers dispatch on Kind through an
// explicit handler map with a fallback for unknown kinds.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Level    int       `json:"level,omitempty"`
	WidgetID string    `json:"widgetId,omitempty"`
	Image    *Image    `json:"image,omitempty"`
}

// Widget describes an embedded data visualization.
type Widget struct {
	Type   WidgetType  `json:"type"`
	Label  string      `json:"label"`
	Series []float64   `json:"series,omitempty"`
	Cells  [][]float64 `json:"cells,omitempty"`
}

// Article is one long-form piece. ID is the routing key: a unique,
// URL-safe token.
type Article struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Dek            string            `json:"dek"`
	Kicker         string            `json:"kicker"`
	ReadingMinutes int               `json:"readingMinutes"`
	Hero           Hero              `json:"hero"`
	Blocks         []Block           `json:"blocks"`
	Widgets        map[string]Widget `json:"widgets"`
}

// Snapshot is one parsed feed payload. Immutable once published.
type Snapshot struct {
	Meta     Meta      `json:"meta"`
	Articles []Article `json:"articles"`

	// ArticlesByID indexes Articles by routing key. Rebuilt whole by
	// Parse, never patched.
	ArticlesByID map[string]*Article `json:"-"`

	// Fingerprint is the canonical-serialization hash of the payload
	// this snapshot was parsed from.
	Fingerprint string `json:"-"`
}

// Parse decodes a raw feed payload into a Snapshot, builds the article
// index, and stamps the canonical fingerprint. A payload that does not
// decode, or that contains articles without IDs, yields a ParseError and
// no snapshot.
func Parse(payload []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, &apperrors.ParseError{Cause: err}
	}

	fp, err := Fingerprint(payload)
	if err != nil {
		return nil, &apperrors.ParseError{Cause: err}
	}
	snap.Fingerprint = fp

	snap.ArticlesByID = make(map[string]*Article, len(snap.Articles))
	for i := range snap.Articles {
		a := &snap.Articles[i]
		if a.ID == "" {
			return nil, &apperrors.ParseError{Cause: fmt.Errorf("article %d has no id", i)}
		}
		if _, dup := snap.ArticlesByID[a.ID]; dup {
			return nil, &apperrors.ParseError{Cause: fmt.Errorf("duplicate article id %q", a.ID)}
		}
		snap.ArticlesByID[a.ID] = a
	}

	return &snap, nil
}

// Article returns the article for a routing key, or nil.
func (s *Snapshot) Article(id string) *Article {
	if s == nil {
		return nil
	}
	return s.ArticlesByID[id]
}

// HasArticle reports whether id is a valid article route in this snapshot.
func (s *Snapshot) HasArticle(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ArticlesByID[id]
	return ok
}
