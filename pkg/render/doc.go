// Package render collects the page-level output of widget fields: header
// items (plain and on-DOM-ready scripts), jQuery helpers for addressing
// fields by markup id, and hidden inputs emitted next to the widget markup.
package render
