package starlark

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
)

// ScriptExt is the extension of script rule files.
const ScriptExt = ".star"

// ruleIDPattern keeps script rule ids in the same shape as built-in ones.
var ruleIDPattern = regexp.MustCompile(`^[A-Z]{2,}[0-9]+$`)

// LoadError represents an error loading a script rule.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("script %s: %s", e.File, e.Message)
}

// Loader compiles script rules from files and directories.
type Loader struct {
	pool *ThreadPool
}

// NewLoader creates a loader whose rules share the given thread pool.
func NewLoader(pool *ThreadPool) *Loader {
	if pool == nil {
		pool = NewThreadPool(0, nil)
	}
	return &Loader{pool: pool}
}

// Load compiles every script named by paths. A directory contributes its
// .star files in name order. Rule ids must be unique across scripts and
// must not shadow a registered rule.
func (l *Loader) Load(paths []string) ([]*ScriptRule, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	rules := make([]*ScriptRule, 0, len(files))
	for _, file := range files {
		rule, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		if _, builtin := lint.GetByID(rule.id); builtin {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("rule_id %s is already used by a built-in rule", rule.id)}
		}
		if other, dup := seen[rule.id]; dup {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("rule_id %s is already defined in %s", rule.id, other)}
		}
		seen[rule.id] = file
		rules = append(rules, rule)
	}
	return rules, nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &LoadError{File: p, Message: fmt.Sprintf("failed to access: %v", err)}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*"+ScriptExt))
		if err != nil {
			return nil, fmt.Errorf("failed to scan script directory: %w", err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// LoadFile compiles a single script.
func (l *Loader) LoadFile(path string) (*ScriptRule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	thread := l.pool.Get("load:" + filepath.Base(path))
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, content, Predeclared())
	l.pool.Put(thread)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	globals.Freeze()

	rule := &ScriptRule{
		path:     path,
		name:     strings.TrimSuffix(filepath.Base(path), ScriptExt),
		severity: core.SeverityWarning,
		pool:     l.pool,
	}

	id, ok := stringGlobal(globals, "rule_id")
	if !ok {
		return nil, &LoadError{File: path, Message: "rule_id must be defined as a string"}
	}
	if !ruleIDPattern.MatchString(id) {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("rule_id %q must look like XX01", id)}
	}
	rule.id = id

	if _, defined := globals["severity"]; defined {
		s, ok := stringGlobal(globals, "severity")
		if !ok {
			return nil, &LoadError{File: path, Message: "severity must be a string"}
		}
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return nil, &LoadError{File: path, Message: fmt.Sprintf("unknown severity %q", s)}
		}
		rule.severity = sev
	}
	if name, ok := stringGlobal(globals, "name"); ok {
		rule.name = name
	}
	rule.description, _ = stringGlobal(globals, "description")
	rule.rationale, _ = stringGlobal(globals, "rationale")

	fn, ok := globals["check"].(*starlark.Function)
	if !ok {
		return nil, &LoadError{File: path, Message: "check(need) must be defined as a function"}
	}
	switch fn.NumParams() {
	case 1:
	case 2:
		rule.withOptions = true
	default:
		return nil, &LoadError{File: path, Message: "check must take (need) or (need, options)"}
	}
	rule.check = fn

	return rule, nil
}

func stringGlobal(globals starlark.StringDict, name string) (string, bool) {
	v, ok := globals[name]
	if !ok {
		return "", false
	}
	return starlark.AsString(v)
}
