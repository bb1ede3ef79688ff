// Package consistency provides lint rules comparing what a version declares
// about itself with what it contains.
//
// Rules in this package:
//   - VR01: needs_amount matches the number of needs
package consistency
