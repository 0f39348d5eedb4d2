// Package rules evaluates metrics.Metrics against an ordered, independent
// set of diagnostic rules. No rule observes another's output; findings are
// combined and de-duplicated downstream by internal/rootcause.
//
// Grounded on the teacher's internal/optimizer.BasicOptimizer.Suggest
// categorization logic — per-condition checks each producing a
// Suggestion{Type, Severity} — generalized here into independent Rule
// implementations over metrics.Metrics instead of one monolithic method.
package rules

import "github.com/karimalihussein/querysentinel/internal/metrics"

// Severity is the finding's urgency band.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding is one diagnostic observation produced by a single Rule.
type Finding struct {
	Category       string
	Severity       Severity
	Title          string
	Description    string
	Recommendation string
}

// Rule evaluates one independent condition over Metrics.
type Rule interface {
	Evaluate(m metrics.Metrics) *Finding
}

// Registry holds an ordered list of rules and evaluates all of them.
type Registry struct {
	rules []Rule
}

// NewRegistry builds the default nine-rule set with the thresholds named in
// spec.md §4.6. Callers needing different thresholds for testing construct
// individual rules directly and pass them to NewRegistryWithRules.
func NewRegistry() *Registry {
	return NewRegistryWithRules([]Rule{
		NewFullTableScanRule(10000),
		NewNoIndexRule(),
		NewTempTableRule(),
		NewWeedoutRule(),
		NewDeepNestedLoopRule(4),
		NewIndexMergeRule(),
		NewStaleStatsRule(10.0),
		NewLimitIneffectiveRule(100, 1000),
		NewQuadraticComplexityRule(10000),
	})
}

// NewRegistryWithRules builds a Registry from an explicit, ordered rule
// list — used by tests that need custom thresholds.
func NewRegistryWithRules(rules []Rule) *Registry {
	return &Registry{rules: rules}
}

// Rules returns the registry's ordered rule list.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Evaluate runs every rule against m and returns the findings that fired,
// in rule order.
func (r *Registry) Evaluate(m metrics.Metrics) []Finding {
	var findings []Finding
	for _, rule := range r.rules {
		if finding := rule.Evaluate(m); finding != nil {
			findings = append(findings, *finding)
		}
	}
	return findings
}
