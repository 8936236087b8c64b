// Package internal contains the core implementation packages for driftline.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the driftline host.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Configuration management with validation
//   - content: Feed decoding, snapshot model, and fingerprinting
//   - engine: Render transition controller and surface contracts
//   - errors: Typed error taxonomy with severity classification
//   - feed: Content synchronizer with polling and file watching
//   - hub: WebSocket fan-out for content and route updates
//   - logging: Structured logging built on slog
//   - router: Fragment parsing and route normalization
//   - server: HTTP host wiring the feed, engine, and hub
//   - version: Build-time version metadata
//   - view: HTML rendering of routes, blocks, and widgets
package internal
