// Package session implements the session façade: the orchestration
// layer that wires working memory, the evaluator, the propagator and
// the question planner together behind
// Start/Answer/Back/Restart/State/RelatedVisaTypes, and synthesizes the
// final diagnosis result.
//
// A Session is built from one immutable rule.Catalogue snapshot and owns
// all further state itself; it is not safe for concurrent use. Callers
// needing concurrent session management can go through pkg/sessionstore,
// which locks only its registry map: calls on one Session must still be
// serialized by the caller.
package session

import (
	"context"
	"fmt"
	"sort"

	"visaexpert/internal/evaluator"
	"visaexpert/internal/fact"
	"visaexpert/internal/planner"
	"visaexpert/internal/propagator"
	"visaexpert/internal/rule"
	"visaexpert/internal/workingmemory"
)

// Facade is the session-façade API consumed by an outer dialogue server
//. ctx threads through for adapters like internal/mcpadapter
// even though the core itself has no suspension points.
type Facade interface {
	Start(ctx context.Context) (*QuestionView, error)
	Answer(ctx context.Context, condition string, answer fact.Answer) (*AnswerResult, error)
	Back(ctx context.Context, steps int) (*BackResult, error)
	Restart(ctx context.Context) (*QuestionView, error)
	State(ctx context.Context) (*StateView, error)
	RelatedVisaTypes(ctx context.Context, condition string) []string
}

// Session implements Facade over one rule.Catalogue snapshot.
type Session struct {
	catalogue *rule.Catalogue
	eval      *evaluator.Evaluator
	prop      *propagator.Propagator

	mem  *workingmemory.Memory
	plan *planner.Planner

	currentQuestion string
	hasQuestion     bool
	log             []string
}

var _ Facade = (*Session)(nil)

// New constructs a Session bound to cat. Call Start to begin the
// dialogue.
func New(cat *rule.Catalogue) *Session {
	eval := evaluator.New(cat)
	return &Session{
		catalogue: cat,
		eval:      eval,
		prop:      propagator.New(cat, eval),
	}
}

func (s *Session) resetState() {
	s.mem = workingmemory.New(s.catalogue)
	s.plan = planner.New(s.catalogue, s.eval)
	s.currentQuestion = ""
	s.hasQuestion = false
	s.log = nil
}

func (s *Session) logf(format string, args ...interface{}) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

// Start begins (or re-begins) the dialogue: it resets all session state,
// runs one propagation pass so zero-condition goal rules fire
// immediately, and selects the first
// question.
func (s *Session) Start(ctx context.Context) (*QuestionView, error) {
	s.resetState()
	s.logf("diagnosis started: evaluating %d goal rule(s)", len(s.catalogue.GoalRules()))
	before := snapshotHypotheses(s.mem)
	s.prop.Run(s.mem)
	s.logNewDerivations(before)
	s.advance()

	return &QuestionView{
		Question:    s.currentQuestion,
		HasQuestion: s.hasQuestion,
		RuleStatus:  s.ruleStatusSnapshot(),
		IsComplete:  s.isComplete(),
	}, nil
}

// Restart discards all session state and starts over.
func (s *Session) Restart(ctx context.Context) (*QuestionView, error) {
	return s.Start(ctx)
}

// Answer records the user's answer to condition, re-evaluates and
// propagates, selects the next question, and synthesizes the diagnosis
// result once complete.
//
// Answer rejects with ErrNoCurrentQuestion when there is no current
// question, and with ErrConditionMismatch when condition does not match
// it — in both cases session state is left unchanged.
func (s *Session) Answer(ctx context.Context, condition string, answer fact.Answer) (*AnswerResult, error) {
	if !s.hasQuestion {
		return nil, ErrNoCurrentQuestion
	}
	if condition != s.currentQuestion {
		return nil, ErrConditionMismatch
	}

	status := answer.ToStatus()
	s.mem.PutFinding(condition, status)
	s.logf("answer: %q -> %s", condition, answer)

	if status == fact.Unknown && s.catalogue.IsDerived(condition) {
		s.plan.ExpandOnUnknown(s.mem, condition)
		s.logf("expanded unknown derived condition %q into its sub-conditions", condition)
	}

	before := snapshotHypotheses(s.mem)
	s.prop.Run(s.mem)
	s.logNewDerivations(before)
	s.advance()

	result := &AnswerResult{
		NextQuestion:    s.currentQuestion,
		HasNextQuestion: s.hasQuestion,
		DerivedFacts:    sortedHypothesisKeys(s.mem),
		RuleStatus:      s.ruleStatusSnapshot(),
		IsComplete:      s.isComplete(),
	}
	if result.IsComplete {
		result.Diagnosis = s.synthesizeResult()
	}
	return result, nil
}

// Back rewinds steps answers (clamped to the history length) and
// re-derives state from the remaining findings.
func (s *Session) Back(ctx context.Context, steps int) (*BackResult, error) {
	if steps < 1 {
		return nil, ErrInvalidSteps
	}
	if steps > len(s.mem.AnswerHistory) {
		steps = len(s.mem.AnswerHistory)
	}
	if steps > 0 {
		targetIdx := len(s.mem.AnswerHistory) - steps
		targetCondition := s.mem.AnswerHistory[targetIdx].Condition

		askedUpToTarget := make([]string, targetIdx+1)
		for i, ev := range s.mem.AnswerHistory[:targetIdx+1] {
			askedUpToTarget[i] = ev.Condition
		}

		s.mem.ClearAfter(targetCondition)
		s.mem.ResetRuleStates()
		s.plan.Rebuild()
		s.prop.Run(s.mem)

		s.currentQuestion = targetCondition
		s.hasQuestion = true
		for _, cond := range askedUpToTarget {
			s.mem.MarkEvaluating(cond)
		}
		s.logf("rewound %d step(s) to %q", steps, targetCondition)
	}

	return &BackResult{
		CurrentQuestion:    s.currentQuestion,
		HasCurrentQuestion: s.hasQuestion,
		AnsweredQuestions:  s.answeredQuestions(),
		RuleStatus:         s.ruleStatusSnapshot(),
	}, nil
}

// State returns the current session view without mutating anything.
func (s *Session) State(ctx context.Context) (*StateView, error) {
	view := &StateView{
		CurrentQuestion:    s.currentQuestion,
		HasCurrentQuestion: s.hasQuestion,
		AnsweredQuestions:  s.answeredQuestions(),
		RuleStatus:         s.ruleStatusSnapshot(),
		DerivedFacts:       sortedHypothesisKeys(s.mem),
		IsComplete:         s.isComplete(),
	}
	if view.IsComplete {
		view.Diagnosis = s.synthesizeResult()
	}
	return view, nil
}

// RelatedVisaTypes returns the visa-type tags of rules mentioning
// condition.
func (s *Session) RelatedVisaTypes(ctx context.Context, condition string) []string {
	return s.catalogue.RelatedVisaTypes(condition)
}

// advance selects the next question from the planner and records
// whether one was found.
func (s *Session) advance() {
	q, ok := s.plan.Next(s.mem)
	s.currentQuestion = q
	s.hasQuestion = ok
}

// isComplete reports completion: true when there is no current
// question, or every goal rule's status is terminal.
func (s *Session) isComplete() bool {
	if !s.hasQuestion {
		return true
	}
	for _, gr := range s.catalogue.GoalRules() {
		state := s.mem.RuleStates[gr.ID]
		if state == nil || !workingmemory.IsResolved(state.Status) {
			return false
		}
	}
	return true
}

// synthesizeResult classifies each goal rule as applicable, conditional,
// or excluded, and reports every literally UNKNOWN-answered condition
// plus the reasoning log.
func (s *Session) synthesizeResult() *DiagnosisResult {
	result := &DiagnosisResult{
		ReasoningLog: append([]string(nil), s.log...),
	}

	for _, gr := range s.catalogue.GoalRules() {
		state := s.mem.RuleStates[gr.ID]
		if state == nil {
			continue
		}
		switch state.Status {
		case workingmemory.StatusFired:
			result.Applicable = append(result.Applicable, ApplicableVisa{
				Action:   gr.Action,
				VisaType: gr.VisaType,
			})
		case workingmemory.StatusBlocked:
			// excluded: intentionally not reported.
		default:
			var unknowns []string
			for _, cond := range gr.Conditions {
				if val, ok := s.eval.EffectiveValue(s.mem, cond); ok && val == fact.Unknown {
					unknowns = append(unknowns, cond)
				}
			}
			result.Conditional = append(result.Conditional, ConditionalVisa{
				Action:            gr.Action,
				VisaType:          gr.VisaType,
				UnknownConditions: unknowns,
			})
		}
	}

	for cond, status := range s.mem.Findings {
		if status == fact.Unknown {
			result.UnknownConditions = append(result.UnknownConditions, cond)
		}
	}

	return result
}

func (s *Session) answeredQuestions() []AnsweredQuestion {
	out := make([]AnsweredQuestion, len(s.mem.AnswerHistory))
	for i, ev := range s.mem.AnswerHistory {
		out[i] = AnsweredQuestion{Condition: ev.Condition, Answer: ev.Status}
	}
	return out
}

func (s *Session) ruleStatusSnapshot() []RuleStatusView {
	out := make([]RuleStatusView, 0, len(s.catalogue.Rules))
	for _, r := range s.catalogue.Rules {
		state := s.mem.RuleStates[r.ID]
		conds := make([]ConditionView, 0, len(r.Conditions))
		for _, cond := range r.Conditions {
			val, ok := s.eval.EffectiveValue(s.mem, cond)
			if !ok {
				val = fact.Pending
			}
			conds = append(conds, ConditionView{
				Text:      cond,
				Status:    val,
				IsDerived: s.catalogue.IsDerived(cond),
			})
		}
		out = append(out, RuleStatusView{
			ID:         r.ID,
			Name:       r.Name,
			VisaType:   r.VisaType,
			Conditions: conds,
			Conclusion: r.Action,
			Status:     string(state.Status),
			IsAndRule:  !r.IsOrRule,
		})
	}
	return out
}

func snapshotHypotheses(mem *workingmemory.Memory) map[string]fact.Status {
	out := make(map[string]fact.Status, len(mem.Hypotheses))
	for k, v := range mem.Hypotheses {
		out[k] = v
	}
	return out
}

// logNewDerivations records a reasoning-log line for every hypothesis
// that changed value (or newly appeared) since before.
func (s *Session) logNewDerivations(before map[string]fact.Status) {
	for action, val := range s.mem.Hypotheses {
		if before[action] != val {
			s.logf("derived: %q = %s", action, val)
		}
	}
}

func sortedHypothesisKeys(mem *workingmemory.Memory) []string {
	out := make([]string, 0, len(mem.Hypotheses))
	for k := range mem.Hypotheses {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
