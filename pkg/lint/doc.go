// Package lint provides the rule engine that checks needs documents for
// problems a JSON Schema cannot express.
//
// # Rule Scopes
//
// Version rules (VR) see a whole version and its id space. Need rules (ND)
// see one need at a time. For each version in document order the analyzer
// runs the version rules, then every need rule for each need in document
// order. Versions without a needs mapping are skipped.
//
// # Rule Registration
//
// Rules are automatically registered via init() functions when their
// package is imported:
//
//	import _ "github.com/leapstack-labs/needscheck/pkg/lint/rules"
//
// # Configuration
//
// Use Config to control which rules are enabled, their severity and options:
//
//	config := lint.NewConfig()
//	config.Disable("ND07")
//	config.SetSeverity("VR01", core.SeverityError)
//	config.SetRuleOptions("ND08", map[string]any{"allowed": []string{"open", "draft"}})
//
// # Creating Custom Rules
//
// Use RuleDef with either CheckVersion or CheckNeed:
//
//	func init() {
//		lint.Register(lint.RuleDef{
//			ID:          "ND90",
//			Name:        "title-required",
//			Group:       "content",
//			Description: "Needs must have a title",
//			Severity:    core.SeverityWarning,
//			CheckNeed:   checkTitle,
//		})
//	}
//
// Rules that carry their own state implement VersionRule or NeedRule and
// are passed to NewAnalyzer directly.
package lint
