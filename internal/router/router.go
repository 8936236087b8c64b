// Package router maps raw fragment tokens to canonical routes. Resolution
// is pure and snapshot-relative: the same token can be valid before a poll
// and invalid after. Normalization is total; unknown tokens degrade to the
// home route rather than erroring, because the navigation boundary favors
// availability over strict validation.
package router

import (
	"strings"

	"github.com/driftline/driftline/internal/content"
)

// Literal routes. Everything else is an article ID.
const (
	RouteHome   = "home"
	RouteLatest = "latest"
)

var literals = map[string]bool{
	RouteHome:   true,
	RouteLatest: true,
}

// IsLiteral reports whether token is one of the fixed literal routes.
func IsLiteral(token string) bool {
	return literals[token]
}

// ParseFragment strips the fragment marker and whitespace from a raw
// fragment. An empty fragment resolves to the snapshot's default route,
// or to home when no snapshot is loaded or no default is set.
func ParseFragment(raw string, snap *content.Snapshot) string {
	token := strings.TrimSpace(raw)
	token = strings.TrimPrefix(token, "#")
	token = strings.TrimPrefix(token, "/")
	token = strings.TrimSpace(token)

	if token == "" {
		if snap != nil && snap.Meta.DefaultRoute != "" {
			return snap.Meta.DefaultRoute
		}
		return RouteHome
	}
	return token
}

// Normalize coerces a candidate token to a route valid against snap: a
// literal route or a known article ID passes unchanged, anything else
// becomes home. Total and idempotent.
func Normalize(candidate string, snap *content.Snapshot) string {
	if IsLiteral(candidate) {
		return candidate
	}
	if snap.HasArticle(candidate) {
		return candidate
	}
	return RouteHome
}

// Resolve parses then normalizes a raw fragment.
func Resolve(raw string, snap *content.Snapshot) string {
	return Normalize(ParseFragment(raw, snap), snap)
}

// IsArticle reports whether route names an article in snap.
func IsArticle(route string, snap *content.Snapshot) bool {
	return !IsLiteral(route) && snap.HasArticle(route)
}

// Fragment returns the canonical external representation of a route.
func Fragment(route string) string {
	return "#" + route
}
