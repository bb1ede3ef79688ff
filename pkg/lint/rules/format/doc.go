// Package format provides lint rules for comma-separated string fields.
//
// links and tags are written by sphinx-needs directives as comma-separated
// strings. A falsy value (absent, empty, null) is not checked.
//
// Rules in this package:
//   - ND03: links is a string
//   - ND04: every links token matches ^[A-Z0-9_]+$
//   - ND05: tags is a string
//   - ND06: every tag matches ^[a-zA-Z0-9_-]+$
package format
