package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/content"
)

func testSnapshot(t *testing.T) *content.Snapshot {
	t.Helper()
	snap, err := content.Parse([]byte(`{
		"meta": {"title": "Test Site", "defaultRoute": "latest"},
		"articles": [
			{"id": "deep-currents", "title": "Deep Currents"},
			{"id": "glass-harbor", "title": "Glass Harbor"}
		]
	}`))
	require.NoError(t, err)
	return snap
}

func TestParseFragment(t *testing.T) {
	snap := testSnapshot(t)

	tests := []struct {
		name     string
		raw      string
		snap     *content.Snapshot
		expected string
	}{
		{"empty uses snapshot default", "", snap, "latest"},
		{"hash only uses snapshot default", "#", snap, "latest"},
		{"empty without snapshot falls back to home", "", nil, RouteHome},
		{"strips hash marker", "#deep-currents", snap, "deep-currents"},
		{"strips hash slash marker", "#/deep-currents", snap, "deep-currents"},
		{"trims whitespace", "  #home  ", snap, "home"},
		{"bare token passes through", "glass-harbor", snap, "glass-harbor"},
		{"unknown token passes through unvalidated", "#ghost", snap, "ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFragment(tt.raw, tt.snap))
		})
	}
}

func TestParseFragment_EmptyDefaultRoute(t *testing.T) {
	snap, err := content.Parse([]byte(`{"meta": {}, "articles": []}`))
	require.NoError(t, err)

	assert.Equal(t, RouteHome, ParseFragment("", snap))
}

func TestNormalize(t *testing.T) {
	snap := testSnapshot(t)

	tests := []struct {
		name      string
		candidate string
		expected  string
	}{
		{"home literal unchanged", RouteHome, RouteHome},
		{"latest literal unchanged", RouteLatest, RouteLatest},
		{"known article unchanged", "deep-currents", "deep-currents"},
		{"unknown article coerced to home", "ghost-article", RouteHome},
		{"empty coerced to home", "", RouteHome},
		{"garbage coerced to home", "../../etc", RouteHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.candidate, snap))
		})
	}
}

func TestNormalize_NilSnapshot(t *testing.T) {
	// Normalize is total even before the first load.
	assert.Equal(t, RouteHome, Normalize("deep-currents", nil))
	assert.Equal(t, RouteLatest, Normalize(RouteLatest, nil))
}

func TestNormalize_Idempotent(t *testing.T) {
	snap := testSnapshot(t)

	for _, token := range []string{"", "home", "latest", "deep-currents", "ghost", "#weird"} {
		once := Normalize(token, snap)
		assert.Equal(t, once, Normalize(once, snap), "token %q", token)
	}
}

func TestResolve(t *testing.T) {
	snap := testSnapshot(t)

	// Empty fragment resolves through the snapshot default.
	assert.Equal(t, "latest", Resolve("", snap))
	// Ghost article degrades to home.
	assert.Equal(t, RouteHome, Resolve("#ghost-article", snap))
	// Valid article resolves to itself.
	assert.Equal(t, "glass-harbor", Resolve("#glass-harbor", snap))
}

func TestIsArticle(t *testing.T) {
	snap := testSnapshot(t)

	assert.True(t, IsArticle("deep-currents", snap))
	assert.False(t, IsArticle(RouteHome, snap))
	assert.False(t, IsArticle("ghost", snap))
}

func TestFragment(t *testing.T) {
	assert.Equal(t, "#home", Fragment(RouteHome))
	assert.Equal(t, "#deep-currents", Fragment("deep-currents"))
}
