// Package propagator lifts fired/blocked rule statuses into hypotheses
// until a fixpoint is reached.
package propagator

import (
	"visaexpert/internal/evaluator"
	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
	"visaexpert/internal/workingmemory"
)

// MaxIterations bounds the fixpoint loop against cycles in ill-formed
// catalogues.
const MaxIterations = 100

// Propagator re-evaluates and lifts rule statuses into hypotheses.
type Propagator struct {
	catalogue *rule.Catalogue
	eval      *evaluator.Evaluator
}

// New creates a Propagator bound to cat, sharing eval's effective-value
// resolution so propagation and evaluation never disagree about a
// condition's current value.
func New(cat *rule.Catalogue, eval *evaluator.Evaluator) *Propagator {
	return &Propagator{catalogue: cat, eval: eval}
}

// Run re-evaluates every rule and lifts newly-settled conclusions into
// hypotheses, repeating until a full pass makes no change or
// MaxIterations is reached.
//
// A FIRED rule sets hypotheses[action]=TRUE. A BLOCKED AND-rule sets
// hypotheses[action]=FALSE only when no other rule producing the same
// action is still non-blocked — an OR-rule's BLOCKED status never
// propagates a negative hypothesis, since other disjuncts elsewhere may
// still fire.
func (p *Propagator) Run(mem *workingmemory.Memory) {
	for iter := 0; iter < MaxIterations; iter++ {
		p.eval.EvaluateAll(mem)

		changed := false
		for _, state := range mem.RuleStates {
			switch state.Status {
			case workingmemory.StatusFired:
				action := state.Rule.Action
				if cur, ok := mem.Hypotheses[action]; !ok || cur != fact.True {
					mem.PutHypothesis(action, fact.True)
					changed = true
				}
			case workingmemory.StatusBlocked:
				if state.Rule.IsOrRule {
					continue
				}
				action := state.Rule.Action
				if p.anyNonBlockedProducer(mem, action) {
					continue
				}
				if cur, ok := mem.Hypotheses[action]; !ok || cur != fact.False {
					mem.PutHypothesis(action, fact.False)
					changed = true
				}
			}
		}

		if !changed {
			return
		}
	}
}

func (p *Propagator) anyNonBlockedProducer(mem *workingmemory.Memory, action string) bool {
	for _, r := range p.catalogue.RulesProducing(action) {
		st, ok := mem.RuleStates[r.ID]
		if !ok || st.Status != workingmemory.StatusBlocked {
			return true
		}
	}
	return false
}
