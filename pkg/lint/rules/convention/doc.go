// Package convention provides advisory lint rules for need vocabularies.
// The vocabularies are conventions, not constraints: findings are warnings
// and the lists can be replaced through the "allowed" option.
//
// Rules in this package:
//   - ND07: type is one of req, spec, impl, test, actor, usecase
//   - ND08: status is one of open, closed, in_progress, done
package convention
