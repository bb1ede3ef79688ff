// Package references provides lint rules for relationships between needs.
//
// Rules in this package:
//   - VR02: relationship targets exist in the same version
package references
