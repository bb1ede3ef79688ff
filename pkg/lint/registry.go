package lint

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/needscheck/pkg/core"
)

// globalRegistry is the single global registry for all lint rules.
var globalRegistry = &Registry{
	rules: make(map[string]Rule),
}

// Registry stores registered lint rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule // keyed by ID
}

// Register adds a rule definition to the global registry.
// Call this from init() functions in rule packages.
func Register(def RuleDef) {
	RegisterRule(WrapRuleDef(def))
}

// RegisterRule adds a rule implementation to the global registry.
// A rule registered under an existing ID replaces it.
func RegisterRule(rule Rule) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID()] = rule
}

// GetAll returns all registered rules ordered by ID.
func GetAll() []Rule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]Rule, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (Rule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// GetByGroup returns all rules in a specific group ordered by ID.
func GetByGroup(group string) []Rule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	var rules []Rule
	for _, rule := range globalRegistry.rules {
		if rule.Group() == group {
			rules = append(rules, rule)
		}
	}
	sortRules(rules)
	return rules
}

// AllRuleInfo returns metadata for every registered rule.
func AllRuleInfo() []core.RuleInfo {
	rules := GetAll()
	infos := make([]core.RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = GetRuleInfo(r)
	}
	return infos
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]Rule)
}

// sortRules orders version rules before need rules, each by ID.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		si, sj := scopeRank(rules[i]), scopeRank(rules[j])
		if si != sj {
			return si < sj
		}
		return rules[i].ID() < rules[j].ID()
	})
}

func scopeRank(r Rule) int {
	if _, ok := r.(VersionRule); ok {
		return 0
	}
	return 1
}
