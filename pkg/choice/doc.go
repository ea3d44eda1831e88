// Package choice defines the collaborators a selection widget needs to turn
// application values into widget data and back: a Renderer that extracts ids
// and labels from a preloaded candidate list, and a Provider that resolves ids
// against a remote source, serialises choices, and answers paged searches.
// Option is the plain id/text value used when callers have no richer type,
// and StaticProvider adapts any in-memory list to the Provider contract.
package choice
