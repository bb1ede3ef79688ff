// Package identity provides lint rules for need identifiers.
//
// Rules in this package:
//   - ND01: the id field equals the need's key
//   - ND02: the id matches ^[A-Z0-9_]+$
package identity
