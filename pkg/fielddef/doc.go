// Package fielddef loads multi-choice field definitions from JSON or YAML
// documents and builds configured select2 fields from them.
//
// A document lists fields by key:
//
//	fields:
//	  tags:
//	    settings:
//	      placeholder: Pick tags
//	    choices:
//	      - {id: go, text: Go}
//	      - {id: rust, text: Rust}
//	  owner:
//	    remote:
//	      url: /api/users
//	      provider: users
//
// Remote fields either name a provider registered on the Builder or serve
// their inline choices through a static provider.
package fielddef
