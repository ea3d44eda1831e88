// Package jsonb provides a small streaming JSON writer with the
// array/object/key/value call shape that widget providers expect. Values are
// assembled into yunion.io/x/jsonutils trees and rendered compactly with HTML
// escaping so the result can be inlined into page scripts.
package jsonb
