package references

import (
	"fmt"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(LinkIntegrity)
}

// LinkIntegrity reports relationship targets that are not needs of the
// same version.
var LinkIntegrity = lint.RuleDef{
	ID:           "VR02",
	Name:         "link-integrity",
	Group:        "references",
	Description:  "Relationship targets must exist in the same version",
	Severity:     core.SeverityError,
	ConfigKeys:   []string{"fields", "preset"},
	CheckVersion: checkLinkIntegrity,

	Rationale: `A relationship pointing at an id that is not in the version is dropped or breaks the build
when the export is imported. Only the version's own needs count: references into other versions
are reported as missing.`,

	BadExample: `"needs": {"REQ_1": {"extends": ["REQ_9"]}}`,

	GoodExample: `"needs": {"REQ_1": {"extends": ["REQ_9"]}, "REQ_9": {}}`,

	Fix: "Add the missing need to the version or remove the reference.",
}

// Relationship presets for the preset option. fields, when set, wins.
var presets = map[string][]string{
	"default":  needs.DefaultRelationships,
	"extended": needs.ExtendedRelationships,
}

type linkOptions struct {
	Preset string   `mapstructure:"preset"`
	Fields []string `mapstructure:"fields"`
}

// relationshipFields resolves the fields to check from the rule options.
func relationshipFields(opts map[string]any) ([]string, error) {
	cfg := linkOptions{Preset: "default"}
	if err := lint.DecodeOptions(opts, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Fields) > 0 {
		return cfg.Fields, nil
	}
	fields, ok := presets[cfg.Preset]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (want default or extended)", cfg.Preset)
	}
	return fields, nil
}

// checkLinkIntegrity reports each (need, relationship, missing target)
// once, in need order, then field order, then target order.
func checkLinkIntegrity(v *needs.Version, opts map[string]any) []lint.Diagnostic {
	fields, err := relationshipFields(opts)
	if err != nil {
		return []lint.Diagnostic{{
			Message:     fmt.Sprintf("invalid options: %v", err),
			RuleFailure: true,
		}}
	}

	ids := v.IDs()
	var diagnostics []lint.Diagnostic

	for _, n := range v.Needs {
		for _, field := range fields {
			seen := make(map[string]bool)
			for _, target := range needs.Targets(n.Field(field)) {
				if _, ok := ids[target]; ok || seen[target] {
					continue
				}
				seen[target] = true
				diagnostics = append(diagnostics, lint.Diagnostic{
					Message: fmt.Sprintf("Need '%s' %s references non-existent need '%s'", n.Key, field, target),
					Need:    n.Key,
					Path:    []string{needs.FieldNeeds, n.Key, field},
				})
			}
		}
	}

	return diagnostics
}
