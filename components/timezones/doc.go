// Package timezones provides deterministic IANA timezone data and a ready-made
// remote choice provider for multi-choice widgets.
//
// The handler answers widget queries (term and page parameters) with
// {"results":[{"id":...,"text":...}],"more":bool}. The backing data is loaded
// from the embedded list under data/iana_timezones.txt unless zones are
// supplied explicitly.
package timezones
