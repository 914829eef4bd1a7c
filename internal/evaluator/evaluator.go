// Package evaluator implements the pure rule-classification step of the
// inference core: effective-value resolution for a
// condition, and AND/OR classification of a single rule's status.
//
// Evaluator holds no session state of its own — it is invoked against a
// workingmemory.Memory after every answer and after every propagation
// pass, and never mutates hypotheses itself (that is the propagator's
// job, package internal/propagator).
package evaluator

import (
	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
	"visaexpert/internal/workingmemory"
)

// Evaluator recomputes rule statuses against a catalogue + working memory.
type Evaluator struct {
	catalogue *rule.Catalogue
}

// New creates an Evaluator bound to cat.
func New(cat *rule.Catalogue) *Evaluator {
	return &Evaluator{catalogue: cat}
}

// EffectiveValue resolves the value the evaluator should use for
// condition:
//  1. if condition is derived and hypotheses[condition] is TRUE or
//     FALSE, that value wins outright;
//  2. else findings[condition] if present;
//  3. else hypotheses[condition] if present;
//  4. else absent.
//
// This lets a later OR-rule derivation of TRUE/FALSE override an earlier
// UNKNOWN the user gave directly on the same derived key, while base
// conditions are always resolved by the user's literal answer alone.
func (e *Evaluator) EffectiveValue(mem *workingmemory.Memory, condition string) (fact.Status, bool) {
	hypoVal, hasHypo := mem.Hypotheses[condition]
	if e.catalogue.IsDerived(condition) {
		if hypoVal == fact.True || hypoVal == fact.False {
			return hypoVal, true
		}
	}
	if findVal, ok := mem.Findings[condition]; ok {
		return findVal, true
	}
	if hasHypo {
		return hypoVal, true
	}
	return "", false
}

// EvaluateAll recomputes every rule's status in mem against the current
// working memory. It is idempotent and safe to call repeatedly.
func (e *Evaluator) EvaluateAll(mem *workingmemory.Memory) {
	for _, state := range mem.RuleStates {
		e.evaluateRule(mem, state)
	}
}

func (e *Evaluator) evaluateRule(mem *workingmemory.Memory, state *workingmemory.RuleState) {
	r := state.Rule

	allTrue := true
	anyTrue := false
	anyFalse := false
	hasUnknown := false
	hasAbsent := false

	for _, cond := range r.Conditions {
		val, ok := e.EffectiveValue(mem, cond)
		if !ok {
			val = fact.Pending
		}
		state.CheckedConditions[cond] = val

		switch val {
		case fact.True:
			anyTrue = true
		case fact.False:
			anyFalse = true
			allTrue = false
		case fact.Unknown:
			hasUnknown = true
			allTrue = false
		default: // Pending / absent
			allTrue = false
			hasAbsent = true
		}
	}

	if r.IsOrRule {
		e.evaluateOrRule(mem, state, anyTrue)
	} else {
		e.evaluateAndRule(state, allTrue, anyFalse, hasUnknown, hasAbsent)
	}
}

// evaluateAndRule classifies an AND-combinator rule:
// FIRED if every condition is TRUE; BLOCKED if any condition is FALSE;
// UNCERTAIN if no condition is absent/PENDING and at least one is
// UNKNOWN; otherwise the rule stays at its current (PENDING/EVALUATING)
// status pending further answers.
func (e *Evaluator) evaluateAndRule(state *workingmemory.RuleState, allTrue, anyFalse, hasUnknown, hasAbsent bool) {
	switch {
	case allTrue:
		state.Status = workingmemory.StatusFired
	case anyFalse:
		state.Status = workingmemory.StatusBlocked
	case hasUnknown && !hasAbsent:
		state.Status = workingmemory.StatusUncertain
	}
}

// evaluateOrRule classifies an OR-combinator rule: FIRED if
// any condition is TRUE. Otherwise each condition is checked for being
// "negatively resolved" — FALSE outright, UNKNOWN on a base condition, or
// UNKNOWN on a derived condition whose every producing rule is already in
// a resolved status. If every condition is negatively resolved, the rule
// becomes UNCERTAIN (if any were UNKNOWN) or BLOCKED (if all were FALSE).
func (e *Evaluator) evaluateOrRule(mem *workingmemory.Memory, state *workingmemory.RuleState, anyTrue bool) {
	if anyTrue {
		state.Status = workingmemory.StatusFired
		return
	}

	allNegativelyResolved := true
	hasAnyUnknown := false

	for _, cond := range state.Rule.Conditions {
		val := state.CheckedConditions[cond]
		switch {
		case val == fact.True:
			allNegativelyResolved = false
		case val == fact.False:
			// negatively resolved, nothing further to check
		case val == fact.Unknown:
			hasAnyUnknown = true
			if e.catalogue.IsDerived(cond) {
				if !e.everyProducerResolved(mem, cond) {
					allNegativelyResolved = false
				}
			}
			// UNKNOWN on a base condition is always negatively resolved
		default: // absent / PENDING
			allNegativelyResolved = false
		}
		if !allNegativelyResolved {
			break
		}
	}

	if allNegativelyResolved {
		if hasAnyUnknown {
			state.Status = workingmemory.StatusUncertain
		} else {
			state.Status = workingmemory.StatusBlocked
		}
	}
}

func (e *Evaluator) everyProducerResolved(mem *workingmemory.Memory, condition string) bool {
	for _, dr := range e.catalogue.RulesProducing(condition) {
		st, ok := mem.RuleStates[dr.ID]
		if !ok || !workingmemory.IsResolved(st.Status) {
			return false
		}
	}
	return true
}
