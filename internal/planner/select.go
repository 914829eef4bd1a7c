package planner

import (
	"visaexpert/internal/evaluator"
	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
	"visaexpert/internal/workingmemory"
)

// MaxSelectionLoops bounds Next's pop loop against a pathological queue
//.
const MaxSelectionLoops = 1000

// maxAncestorDepth bounds the recursive ancestor walk.
const maxAncestorDepth = 20

// Planner owns the mutable question queue for one session and the pure
// skip/expand logic around it.
type Planner struct {
	catalogue *rule.Catalogue
	eval      *evaluator.Evaluator
	deps      *DependencyGraph
	queue     []string
}

// New builds a Planner for cat with a freshly constructed initial queue.
func New(cat *rule.Catalogue, eval *evaluator.Evaluator) *Planner {
	return &Planner{
		catalogue: cat,
		eval:      eval,
		deps:      BuildDependencyGraph(cat),
		queue:     BuildInitialQueue(cat),
	}
}

// Rebuild discards the current queue and recomputes it from the
// catalogue — used by rewind.
func (p *Planner) Rebuild() {
	p.queue = BuildInitialQueue(p.catalogue)
}

// Next returns the next question to ask, popping conditions ahead of it
// that are already resolved, ancestor-resolved, or AND-block-shortcut
// eligible. The returned question stays at the head of the queue until
// a later call finds it answered. Returns ("", false) when the queue is
// exhausted.
func (p *Planner) Next(mem *workingmemory.Memory) (string, bool) {
	for loops := 0; len(p.queue) > 0 && loops < MaxSelectionLoops; loops++ {
		candidate := p.queue[0]

		if val, ok := p.eval.EffectiveValue(mem, candidate); ok && val != fact.Pending {
			p.queue = p.queue[1:]
			continue
		}

		if p.shouldSkip(mem, candidate) {
			p.queue = p.queue[1:]
			continue
		}

		mem.MarkEvaluating(candidate)
		return candidate, true
	}
	return "", false
}

// shouldSkip reports whether candidate should never be asked: either no
// rule reads it at all, some ancestor conclusion is already resolved, or
// every rule reading it is blocked (or AND-blocked by another of its own
// conditions already being FALSE).
func (p *Planner) shouldSkip(mem *workingmemory.Memory, candidate string) bool {
	related := p.catalogue.RulesUsing(candidate)
	if len(related) == 0 {
		return true
	}

	if p.isAncestorResolved(mem, candidate, make(map[string]bool), 0) {
		return true
	}

	return p.allUsersEffectivelyBlocked(mem, candidate, related)
}

// isAncestorResolved walks up the condition→rule→action graph from
// condition: for every rule that reads condition, if its action is
// already resolved to TRUE or FALSE (via hypotheses first, then
// findings — a derived OR-rule's TRUE hypothesis outranks an earlier
// literal UNKNOWN on that same key), the question is moot. Otherwise the
// walk continues one level further up from that action.
func (p *Planner) isAncestorResolved(mem *workingmemory.Memory, condition string, visited map[string]bool, depth int) bool {
	if depth > maxAncestorDepth {
		return false
	}
	if visited[condition] {
		return false
	}
	visited[condition] = true

	for _, action := range p.deps.Successors(condition) {
		if hv, ok := mem.Hypotheses[action]; ok && (hv == fact.True || hv == fact.False) {
			return true
		}
		if fv, ok := mem.Findings[action]; ok && (fv == fact.True || fv == fact.False) {
			return true
		}
		if p.isAncestorResolved(mem, action, visited, depth+1) {
			return true
		}
	}
	return false
}

// allUsersEffectivelyBlocked reports whether every rule reading candidate
// is already BLOCKED, or is an AND-rule whose outcome is already fixed
// because some other condition of it is FALSE — so answering candidate
// could never change that rule's outcome. OR-rules never trigger this
// shortcut, since a later disjunct could still fire.
func (p *Planner) allUsersEffectivelyBlocked(mem *workingmemory.Memory, candidate string, related []rule.Rule) bool {
	for _, r := range related {
		state := mem.RuleStates[r.ID]
		if state.Status == workingmemory.StatusBlocked {
			continue
		}
		if r.IsOrRule {
			return false
		}
		if !p.andRuleBlockedByOtherCondition(mem, r, candidate) {
			return false
		}
	}
	return true
}

func (p *Planner) andRuleBlockedByOtherCondition(mem *workingmemory.Memory, r rule.Rule, candidate string) bool {
	for _, cond := range r.Conditions {
		if cond == candidate {
			continue
		}
		if val, ok := p.eval.EffectiveValue(mem, cond); ok && val == fact.False {
			return true
		}
	}
	return false
}

// ExpandOnUnknown realizes the depth-first descent into a derived
// condition's explanation subtree: when the user answers
// UNKNOWN to a derived condition, the conditions of every rule producing
// it are collected (skipping already-answered ones), sorted base-first,
// de-duplicated against the existing queue, and inserted at its head.
func (p *Planner) ExpandOnUnknown(mem *workingmemory.Memory, condition string) {
	if !p.catalogue.IsDerived(condition) {
		return
	}
	producing := p.catalogue.RulesProducing(condition)
	if len(producing) == 0 {
		return
	}

	var subConditions []string
	seen := make(map[string]bool)
	for _, r := range producing {
		for _, cond := range r.Conditions {
			if seen[cond] {
				continue
			}
			seen[cond] = true
			if val, ok := p.eval.EffectiveValue(mem, cond); ok && val != fact.Pending {
				continue
			}
			subConditions = append(subConditions, cond)
		}
	}
	if len(subConditions) == 0 {
		return
	}

	isBase := func(c string) bool { return !p.catalogue.IsDerived(c) }
	stableSortBaseFirst(subConditions, isBase)

	p.queue = removeAll(p.queue, subConditions)
	p.queue = append(append([]string{}, subConditions...), p.queue...)
}

func stableSortBaseFirst(conds []string, isBase func(string) bool) {
	// insertion sort: base conditions (priority 1000) before derived
	// conditions (priority 0), preserving relative order within each
	// group — mirrors the Python sort(key=..., reverse=True) over a
	// two-valued key.
	priority := func(c string) int {
		if isBase(c) {
			return 1000
		}
		return 0
	}
	for i := 1; i < len(conds); i++ {
		j := i
		for j > 0 && priority(conds[j-1]) < priority(conds[j]) {
			conds[j-1], conds[j] = conds[j], conds[j-1]
			j--
		}
	}
}

func removeAll(queue []string, remove []string) []string {
	if len(remove) == 0 {
		return queue
	}
	drop := make(map[string]bool, len(remove))
	for _, c := range remove {
		drop[c] = true
	}
	out := make([]string, 0, len(queue))
	for _, c := range queue {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out
}
