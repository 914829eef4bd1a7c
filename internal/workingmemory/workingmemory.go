// Package workingmemory holds the per-session mutable state the
// inference core reasons over: findings (user answers), hypotheses
// (derived facts), the answer history that makes rewind possible, and
// the per-rule evaluation state table.
//
// A Memory value belongs to exactly one session and is never shared; the
// concurrency discipline (one call in flight per session) is left to the
// session's caller, so this package does no locking of its own.
package workingmemory

import (
	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
)

// AnswerEvent is one entry of the answer history: the condition the user
// was asked and the trilean value their answer recorded as a finding.
type AnswerEvent struct {
	Condition string
	Status    fact.Status
}

// RuleStatus is the rule-status state machine's five states.
type RuleStatus string

const (
	StatusPending    RuleStatus = "pending"
	StatusEvaluating RuleStatus = "evaluating"
	StatusFired      RuleStatus = "fired"
	StatusBlocked    RuleStatus = "blocked"
	StatusUncertain  RuleStatus = "uncertain"
)

// IsResolved reports whether s is one of the three terminal-within-session
// statuses used by ancestor resolution and the completion predicate.
func IsResolved(s RuleStatus) bool {
	return s == StatusFired || s == StatusBlocked || s == StatusUncertain
}

// RuleState is the per-session, per-rule evaluation state: its current
// status and a snapshot of what each of its conditions last evaluated to.
type RuleState struct {
	Rule              rule.Rule
	Status            RuleStatus
	CheckedConditions map[string]fact.Status
}

func newRuleState(r rule.Rule) *RuleState {
	return &RuleState{
		Rule:              r,
		Status:            StatusPending,
		CheckedConditions: make(map[string]fact.Status),
	}
}

// Memory is the working memory + rule-state table for one session.
type Memory struct {
	Findings      map[string]fact.Status
	Hypotheses    map[string]fact.Status
	AnswerHistory []AnswerEvent

	RuleStates map[string]*RuleState // rule ID -> state
	catalogue  *rule.Catalogue
}

// New builds a fresh Memory for cat, with every rule's state initialized
// to PENDING — the state produced by session Start/Restart.
func New(cat *rule.Catalogue) *Memory {
	m := &Memory{
		Findings:   make(map[string]fact.Status),
		Hypotheses: make(map[string]fact.Status),
		RuleStates: make(map[string]*RuleState, len(cat.Rules)),
		catalogue:  cat,
	}
	for _, r := range cat.Rules {
		m.RuleStates[r.ID] = newRuleState(r)
	}
	return m
}

// GetValue returns the raw stored value for condition: findings take
// priority over hypotheses, with no derived/base distinction. This is
// the WorkingMemory.get_value primitive the evaluator's richer
// effective-value resolution (internal/evaluator) builds on top of.
func (m *Memory) GetValue(condition string) (fact.Status, bool) {
	if v, ok := m.Findings[condition]; ok {
		return v, true
	}
	if v, ok := m.Hypotheses[condition]; ok {
		return v, true
	}
	return "", false
}

// PutFinding records a user answer, appending to the answer history.
func (m *Memory) PutFinding(condition string, status fact.Status) {
	m.Findings[condition] = status
	m.AnswerHistory = append(m.AnswerHistory, AnswerEvent{Condition: condition, Status: status})
}

// PutHypothesis records a derived fact. Hypotheses are never appended to
// the answer history — only literal user answers are.
func (m *Memory) PutHypothesis(condition string, status fact.Status) {
	m.Hypotheses[condition] = status
}

// ClearAfter truncates the answer history at the first occurrence of
// condition (inclusive), deletes the corresponding findings, and clears
// all hypotheses — rewinding the session to just before condition was
// answered.
//
// Mirrors working_memory.py's clear_after: find the first index whose
// condition matches, not the last — rewinding to a condition that was
// asked more than once (which should not happen in a well-formed queue,
// but is tolerated) rewinds to its earliest occurrence.
func (m *Memory) ClearAfter(condition string) {
	idx := -1
	for i, ev := range m.AnswerHistory {
		if ev.Condition == condition {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	toRemove := m.AnswerHistory[idx:]
	m.AnswerHistory = m.AnswerHistory[:idx]
	for _, ev := range toRemove {
		delete(m.Findings, ev.Condition)
	}
	m.Hypotheses = make(map[string]fact.Status)
}

// ResetRuleStates sets every rule back to PENDING with an empty snapshot,
// the step rewind performs before re-evaluation.
func (m *Memory) ResetRuleStates() {
	for _, r := range m.catalogue.Rules {
		m.RuleStates[r.ID] = newRuleState(r)
	}
}

// MarkEvaluating transitions every PENDING rule that mentions condition
// to EVALUATING — a purely display-oriented transition.
func (m *Memory) MarkEvaluating(condition string) {
	for _, r := range m.catalogue.RulesUsing(condition) {
		st := m.RuleStates[r.ID]
		if st.Status == StatusPending {
			st.Status = StatusEvaluating
		}
	}
}
