// Package template defines the template engine seam used to render widget
// markup. The gotemplate subpackage provides the pongo2-backed engine.
package template
