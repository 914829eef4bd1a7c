package session

import "visaexpert/internal/fact"

// ConditionView is one condition's display state within a RuleStatusView,
// shown to the outer dialogue server for UI rendering.
type ConditionView struct {
	Text      string      `json:"text"`
	Status    fact.Status `json:"status"`
	IsDerived bool        `json:"is_derived"`
}

// RuleStatusView is the display-oriented snapshot of one rule's current
// evaluation state, returned alongside every façade operation.
type RuleStatusView struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	VisaType   string           `json:"visa_type"`
	Conditions []ConditionView  `json:"conditions"`
	Conclusion string           `json:"conclusion"`
	Status     string           `json:"status"`
	IsAndRule  bool             `json:"is_and_rule"`
}

// QuestionView is the result of Start/Restart: the first question (or
// absent if the catalogue needs none) plus the initial rule-status
// snapshot and completion flag.
type QuestionView struct {
	Question    string           `json:"question,omitempty"`
	HasQuestion bool             `json:"has_question"`
	RuleStatus  []RuleStatusView `json:"rule_status"`
	IsComplete  bool             `json:"is_complete"`
}

// AnswerResult is the result of Answer: the next question, derived
// facts, the rule-status snapshot, completion flag, and — once
// complete — the diagnosis result.
type AnswerResult struct {
	NextQuestion    string           `json:"next_question,omitempty"`
	HasNextQuestion bool             `json:"has_next_question"`
	DerivedFacts    []string         `json:"derived_facts"`
	RuleStatus      []RuleStatusView `json:"rule_status"`
	IsComplete      bool             `json:"is_complete"`
	Diagnosis       *DiagnosisResult `json:"diagnosis_result,omitempty"`
}

// BackResult is the result of Back: the current (rewound-to) question,
// the answered-questions list up to that point, and the rule-status
// snapshot.
type BackResult struct {
	CurrentQuestion   string              `json:"current_question,omitempty"`
	HasCurrentQuestion bool               `json:"has_current_question"`
	AnsweredQuestions []AnsweredQuestion  `json:"answered_questions"`
	RuleStatus        []RuleStatusView    `json:"rule_status"`
}

// AnsweredQuestion is one entry of the answered-questions list returned
// by Back/State.
type AnsweredQuestion struct {
	Condition string      `json:"condition"`
	Answer    fact.Status `json:"answer"`
}

// StateView is the result of State: everything needed to resume or
// render the session without mutating it.
type StateView struct {
	CurrentQuestion    string              `json:"current_question,omitempty"`
	HasCurrentQuestion bool                `json:"has_current_question"`
	AnsweredQuestions  []AnsweredQuestion  `json:"answered_questions"`
	RuleStatus         []RuleStatusView    `json:"rule_status"`
	DerivedFacts       []string            `json:"derived_facts"`
	IsComplete         bool                `json:"is_complete"`
	Diagnosis          *DiagnosisResult    `json:"diagnosis_result,omitempty"`
}

// ApplicableVisa is a goal rule whose status is FIRED: the visa type is
// unconditionally applicable.
type ApplicableVisa struct {
	Action   string `json:"action"`
	VisaType string `json:"visa_type"`
}

// ConditionalVisa is a goal rule that is neither FIRED nor BLOCKED: it
// remains possible pending the listed UNKNOWN conditions.
type ConditionalVisa struct {
	Action            string   `json:"action"`
	VisaType          string   `json:"visa_type"`
	UnknownConditions []string `json:"unknown_conditions"`
}

// DiagnosisResult is the final classification of goal conclusions:
// applicable, conditional, the conditions the user explicitly answered
// UNKNOWN, and the reasoning log.
type DiagnosisResult struct {
	Applicable        []ApplicableVisa   `json:"applicable_visas"`
	Conditional       []ConditionalVisa  `json:"conditional_visas"`
	UnknownConditions []string           `json:"unknown_conditions"`
	ReasoningLog      []string           `json:"reasoning_log"`
}
