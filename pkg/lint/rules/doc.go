// Package rules provides the built-in needs lint rules.
//
// Rules are organized by category:
//   - consistency: declared counts against actual content (VR01)
//   - references: relationship targets resolve within their version (VR02)
//   - identity: need ids agree with their keys and the id pattern (ND01-ND02)
//   - format: comma-separated links and tags fields (ND03-ND06)
//   - convention: advisory type and status vocabularies (ND07-ND08)
//
// To register all rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/needscheck/pkg/lint/rules"
package rules
