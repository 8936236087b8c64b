//go:build property

package router

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/driftline/driftline/internal/content"
)

// TestNormalizeProperties validates totality and idempotence of route
// normalization over arbitrary tokens.
func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	snap, err := content.Parse([]byte(`{
		"meta": {"defaultRoute": "latest"},
		"articles": [{"id": "a1", "title": "A1"}, {"id": "a2", "title": "A2"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("normalize is total and yields a valid route", prop.ForAll(
		func(token string) bool {
			route := Normalize(token, snap)
			return IsLiteral(route) || snap.HasArticle(route)
		},
		gen.AnyString(),
	))

	properties.Property("normalize is idempotent", prop.ForAll(
		func(token string) bool {
			once := Normalize(token, snap)
			return Normalize(once, snap) == once
		},
		gen.AnyString(),
	))

	properties.Property("resolve output survives another resolve", prop.ForAll(
		func(raw string) bool {
			route := Resolve(raw, snap)
			return Resolve(route, snap) == route
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
