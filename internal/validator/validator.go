// Package validator implements a standalone structural pass over a
// rule.Catalogue: cycles, unreachable conditions, and dead rules. These
// issues are tolerated at runtime — the evaluator and propagator never
// refuse to run on a malformed catalogue — so this pass is never
// invoked from internal/session's hot path, only from cmd/rulectl
// validate.
package validator

import (
	"sort"

	"visaexpert/internal/planner"
	"visaexpert/internal/rule"
)

// Report is the result of Validate: informational findings about a
// catalogue's structure. None of these block session.Start.
type Report struct {
	Cycles               [][]string
	UnreachableConditions []string
	DeadRules             []string
}

// IsClean reports whether the catalogue has no findings at all.
func (r *Report) IsClean() bool {
	return len(r.Cycles) == 0 && len(r.UnreachableConditions) == 0 && len(r.DeadRules) == 0
}

// Validate builds the same condition→action dependency graph the
// planner uses for ancestor resolution and reports:
//   - cycles: strongly connected components of size > 1, meaning some
//     condition transitively depends on its own derivation;
//   - unreachable conditions: base conditions that no goal rule (directly
//     or transitively) depends on, so the dialogue could never need them;
//   - dead rules: rules whose action is neither a goal nor read by any
//     other rule, so they can never influence a diagnosis.
func Validate(cat *rule.Catalogue) (*Report, error) {
	deps := planner.BuildDependencyGraph(cat)

	sccs, err := deps.StronglyConnectedComponents()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, scc := range sccs {
		if len(scc) > 1 {
			sorted := append([]string(nil), scc...)
			sort.Strings(sorted)
			report.Cycles = append(report.Cycles, sorted)
		}
	}

	report.UnreachableConditions = unreachableConditions(cat, deps)
	report.DeadRules = deadRules(cat)

	return report, nil
}

// unreachableConditions returns every base condition not transitively
// reachable from any goal rule's own conditions, walking the dependency
// graph forward from each condition towards the goal actions — the same
// direction ancestor resolution walks, just starting from every
// condition instead of one candidate.
func unreachableConditions(cat *rule.Catalogue, deps *planner.DependencyGraph) []string {
	goalSet := make(map[string]bool, len(cat.GoalActions))
	for _, g := range cat.GoalActions {
		goalSet[g] = true
	}

	reachesGoal := make(map[string]bool)
	var reaches func(cond string, visited map[string]bool) bool
	reaches = func(cond string, visited map[string]bool) bool {
		if v, ok := reachesGoal[cond]; ok {
			return v
		}
		if visited[cond] {
			return false
		}
		visited[cond] = true

		for _, action := range deps.Successors(cond) {
			if goalSet[action] || reaches(action, visited) {
				reachesGoal[cond] = true
				return true
			}
		}
		reachesGoal[cond] = false
		return false
	}

	var out []string
	for cond := range allConditions(cat) {
		if cat.IsDerived(cond) {
			continue
		}
		if !reaches(cond, make(map[string]bool)) {
			out = append(out, cond)
		}
	}
	sort.Strings(out)
	return out
}

func allConditions(cat *rule.Catalogue) map[string]bool {
	set := make(map[string]bool)
	for _, r := range cat.Rules {
		for _, cond := range r.Conditions {
			set[cond] = true
		}
	}
	return set
}

// deadRules returns the IDs of rules whose action is never a goal action
// and never appears as another rule's condition.
func deadRules(cat *rule.Catalogue) []string {
	usedAsCondition := make(map[string]bool)
	for _, r := range cat.Rules {
		for _, cond := range r.Conditions {
			usedAsCondition[cond] = true
		}
	}
	goalSet := make(map[string]bool, len(cat.GoalActions))
	for _, g := range cat.GoalActions {
		goalSet[g] = true
	}

	var out []string
	for _, r := range cat.Rules {
		if !goalSet[r.Action] && !usedAsCondition[r.Action] {
			out = append(out, r.ID)
		}
	}
	sort.Strings(out)
	return out
}
