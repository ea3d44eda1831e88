// Package select2 binds a multi-value field to a Select2 widget rendered over
// a hidden input.
//
// A MultiChoice converts the comma-separated ids the widget submits into a
// typed selection, writes that selection to its Model, and renders the
// widget's settings and initial data as on-DOM-ready scripts. Choices are
// resolved either against a preloaded candidate list (Local) or through a
// choice.Provider (Remote); the mode is fixed at construction.
//
// Host capabilities are passed in explicitly: a Request for submitted
// parameters, a Model for the durable selection, and a render.Response for
// page scripts. A MultiChoice is single-owner for the duration of a request;
// use Clone to stamp per-request copies from a configured prototype.
package select2
