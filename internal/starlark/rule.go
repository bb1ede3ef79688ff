package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// GroupScript is the group every script rule reports under.
const GroupScript = "script"

// ScriptRule is a need rule whose check is a Starlark function.
// Loaded globals are frozen, so one rule may run on several goroutines.
type ScriptRule struct {
	path        string
	id          string
	name        string
	description string
	rationale   string
	severity    core.Severity
	check       *starlark.Function
	withOptions bool
	pool        *ThreadPool
}

var _ lint.NeedRule = (*ScriptRule)(nil)

func (r *ScriptRule) ID() string                     { return r.id }
func (r *ScriptRule) Name() string                   { return r.name }
func (r *ScriptRule) Group() string                  { return GroupScript }
func (r *ScriptRule) Description() string            { return r.description }
func (r *ScriptRule) DefaultSeverity() core.Severity { return r.severity }
func (r *ScriptRule) ConfigKeys() []string           { return nil }
func (r *ScriptRule) Rationale() string              { return r.rationale }
func (r *ScriptRule) BadExample() string             { return "" }
func (r *ScriptRule) GoodExample() string            { return "" }
func (r *ScriptRule) Fix() string                    { return "" }

// Path returns the script file the rule was loaded from.
func (r *ScriptRule) Path() string { return r.path }

// CheckNeed calls check(need) and turns each returned string into a
// finding. A script error yields one rule failure instead.
func (r *ScriptRule) CheckNeed(n *needs.Need, opts map[string]any) []lint.Diagnostic {
	args := starlark.Tuple{NeedToStarlark(n)}
	if r.withOptions {
		o, err := GoToStarlark(opts)
		if err != nil {
			return r.failure(n, err)
		}
		if o == starlark.None {
			o = starlark.NewDict(0)
		}
		args = append(args, o)
	}

	thread := r.pool.Get(r.id + ":" + n.Key)
	result, err := starlark.Call(thread, r.check, args, nil)
	r.pool.Put(thread)
	if err != nil {
		return r.failure(n, err)
	}

	msgs, err := Messages(result)
	if err != nil {
		return r.failure(n, err)
	}
	if len(msgs) == 0 {
		return nil
	}
	diags := make([]lint.Diagnostic, len(msgs))
	for i, m := range msgs {
		diags[i] = lint.Diagnostic{Message: m}
	}
	return diags
}

func (r *ScriptRule) failure(n *needs.Need, err error) []lint.Diagnostic {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		err = fmt.Errorf("%s", evalErr.Backtrace())
	}
	return []lint.Diagnostic{{
		Message:     fmt.Sprintf("Script rule %s failed on need '%s': %v", r.id, n.Key, err),
		RuleFailure: true,
	}}
}

// Rules adapts script rules for lint.NewAnalyzer.
func Rules(scripts []*ScriptRule) []lint.Rule {
	out := make([]lint.Rule, len(scripts))
	for i, s := range scripts {
		out[i] = s
	}
	return out
}
