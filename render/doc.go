// Package render maps canonical events onto human-readable notification
// messages. Rendering is a pure per-kind mapping; kinds without a dedicated
// template fall back to a generic three-line layout.
package render
