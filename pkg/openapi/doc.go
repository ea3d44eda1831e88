// Package openapi derives multi-choice candidate sets from the enum schemas of
// OpenAPI documents. Documents are read through a Loader (file, fs.FS or
// HTTP) and parsed with kin-openapi.
package openapi
