package core

// =============================================================================
// Verdict
// =============================================================================

// Verdict is the aggregate outcome of one validation run.
type Verdict string

// Verdicts, from best to worst.
const (
	VerdictPass             Verdict = "PASS"
	VerdictPassWithWarnings Verdict = "PASS_WITH_WARNINGS"
	VerdictFail             Verdict = "FAIL"
)

// Classify derives the verdict from the number of errors and warnings.
// Any error fails the run regardless of warnings.
func Classify(errors, warnings int) Verdict {
	switch {
	case errors > 0:
		return VerdictFail
	case warnings > 0:
		return VerdictPassWithWarnings
	default:
		return VerdictPass
	}
}

// Failed reports whether the verdict should be signalled as a failure.
// Strict mode promotes PASS_WITH_WARNINGS to a failure without changing the verdict.
func (v Verdict) Failed(strict bool) bool {
	switch v {
	case VerdictFail:
		return true
	case VerdictPassWithWarnings:
		return strict
	default:
		return false
	}
}

// ExitCode maps the verdict to the process exit code.
func (v Verdict) ExitCode(strict bool) int {
	if v.Failed(strict) {
		return 1
	}
	return 0
}
