package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
)

// TestScenarioA_StraightYesPath: a single AND goal rule, both conditions
// answered yes, yields an unconditional applicable visa.
func TestScenarioA_StraightYesPath(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1", "c2"}, Action: "E-visa applicable", VisaType: "E"},
	}, []string{"E-visa applicable"}, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	require.True(t, q.HasQuestion)
	assert.Equal(t, "c1", q.Question)

	res, err := sess.Answer(ctx, "c1", fact.AnswerYes)
	require.NoError(t, err)
	require.True(t, res.HasNextQuestion)
	assert.Equal(t, "c2", res.NextQuestion)
	assert.False(t, res.IsComplete)

	res, err = sess.Answer(ctx, "c2", fact.AnswerYes)
	require.NoError(t, err)
	require.True(t, res.IsComplete)
	require.NotNil(t, res.Diagnosis)
	assert.Equal(t, []ApplicableVisa{{Action: "E-visa applicable", VisaType: "E"}}, res.Diagnosis.Applicable)
	assert.Empty(t, res.Diagnosis.Conditional)
}

// TestScenarioB_OrEarlyTermination: an OR-rule feeding an AND goal rule.
// Answering one disjunct derives the parent and prunes the other disjunct
// entirely via ancestor resolution — it is never asked.
//
// R1's and G1's visa types are deliberately distinct (and ordered X before
// Y) so the base disjuncts a/b are bucketed ahead of the derived goal
// condition P, matching how a real multi-visa catalogue would route the
// question order.
func TestScenarioB_OrEarlyTermination(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "r1", Conditions: []string{"a", "b"}, Action: "P", IsOrRule: true, VisaType: "X"},
		{ID: "g1", Conditions: []string{"P"}, Action: "goal", VisaType: "Y"},
	}, []string{"goal"}, map[string]int{"X": 1, "Y": 2})

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", q.Question)

	res, err := sess.Answer(ctx, "a", fact.AnswerYes)
	require.NoError(t, err)
	require.True(t, res.IsComplete)
	assert.Contains(t, res.DerivedFacts, "P")
	require.NotNil(t, res.Diagnosis)
	assert.Equal(t, []ApplicableVisa{{Action: "goal", VisaType: "Y"}}, res.Diagnosis.Applicable)
}

// TestScenarioC_UnknownExpansion: answering UNKNOWN on a derived condition
// expands the queue into its producing rule's own conditions; resolving
// those afterwards re-derives the parent and lets the goal fire.
func TestScenarioC_UnknownExpansion(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "r1", Conditions: []string{"x1", "x2"}, Action: "P", VisaType: "A"},
		{ID: "g1", Conditions: []string{"P", "y"}, Action: "goal", VisaType: "A"},
	}, []string{"goal"}, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "y", q.Question) // base + goal-direct outranks derived + goal-direct

	res, err := sess.Answer(ctx, "y", fact.AnswerYes)
	require.NoError(t, err)
	require.True(t, res.HasNextQuestion)
	assert.Equal(t, "P", res.NextQuestion)

	res, err = sess.Answer(ctx, "P", fact.AnswerUnknown)
	require.NoError(t, err)
	require.True(t, res.HasNextQuestion)
	assert.Equal(t, "x1", res.NextQuestion, "expansion inserts P's producing rule's own conditions at the queue head")

	res, err = sess.Answer(ctx, "x1", fact.AnswerYes)
	require.NoError(t, err)
	assert.Equal(t, "x2", res.NextQuestion)

	res, err = sess.Answer(ctx, "x2", fact.AnswerYes)
	require.NoError(t, err)
	require.True(t, res.IsComplete)
	require.NotNil(t, res.Diagnosis)
	assert.Equal(t, []ApplicableVisa{{Action: "goal", VisaType: "A"}}, res.Diagnosis.Applicable)
}

// TestScenarioD_AndBlockShortcut: one FALSE condition on an AND goal rule
// blocks it outright; the planner never bothers asking the sibling
// condition, and the blocked goal is excluded (not conditional).
func TestScenarioD_AndBlockShortcut(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1", "c2"}, Action: "goal"},
	}, []string{"goal"}, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", q.Question)

	res, err := sess.Answer(ctx, "c1", fact.AnswerNo)
	require.NoError(t, err)
	require.True(t, res.IsComplete, "c2 should never need asking once c1=no blocks the sole goal rule")
	require.NotNil(t, res.Diagnosis)
	assert.Empty(t, res.Diagnosis.Applicable)
	assert.Empty(t, res.Diagnosis.Conditional)
	assert.Equal(t, "blocked", res.RuleStatus[0].Status)
}

// TestScenarioE_Rewind replays Scenario A and then rewinds one step.
func TestScenarioE_Rewind(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1", "c2"}, Action: "E-visa applicable", VisaType: "E"},
	}, []string{"E-visa applicable"}, nil)

	sess := New(cat)
	_, err := sess.Start(ctx)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c1", fact.AnswerYes)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c2", fact.AnswerYes)
	require.NoError(t, err)

	back, err := sess.Back(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "c2", back.CurrentQuestion)
	assert.Equal(t, []AnsweredQuestion{{Condition: "c1", Answer: fact.True}}, back.AnsweredQuestions)
	require.Len(t, back.RuleStatus, 1)
	assert.Equal(t, "evaluating", back.RuleStatus[0].Status)

	res, err := sess.Answer(ctx, "c2", fact.AnswerNo)
	require.NoError(t, err)
	require.True(t, res.IsComplete)
	require.NotNil(t, res.Diagnosis)
	assert.Empty(t, res.Diagnosis.Applicable)
	assert.Equal(t, "blocked", res.RuleStatus[0].Status)
}

// TestScenarioF_AllUnknownTerminates answers every question UNKNOWN and
// checks the diagnosis still terminates with every goal rule UNCERTAIN or
// BLOCKED, nothing applicable, and every UNKNOWN answer reported back.
func TestScenarioF_AllUnknownTerminates(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1", "c2"}, Action: "goal"},
	}, []string{"goal"}, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)

	steps := 0
	const askableConditions = 2
	for q.HasQuestion && steps <= askableConditions {
		res, answerErr := sess.Answer(ctx, q.Question, fact.AnswerUnknown)
		require.NoError(t, answerErr)
		q = &QuestionView{Question: res.NextQuestion, HasQuestion: res.HasNextQuestion, IsComplete: res.IsComplete}
		steps++
		if res.IsComplete {
			require.NotNil(t, res.Diagnosis)
			assert.Empty(t, res.Diagnosis.Applicable)
			assert.ElementsMatch(t, []string{"c1", "c2"}, res.Diagnosis.UnknownConditions)
			break
		}
	}
	require.LessOrEqual(t, steps, askableConditions)

	state, err := sess.State(ctx)
	require.NoError(t, err)
	require.True(t, state.IsComplete)
	require.Len(t, state.RuleStatus, 1)
	assert.Equal(t, "uncertain", state.RuleStatus[0].Status)
}

// TestInvariant4_BackThenReplayMatchesOriginalState rewinds an entire
// session to its start and replays the same answers, checking the
// observable state (current question, rule status, diagnosis) is
// identical to the state before the rewind. The reasoning log is
// excluded deliberately: it always grows with new "rewound" entries.
func TestInvariant4_BackThenReplayMatchesOriginalState(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1", "c2"}, Action: "E-visa applicable", VisaType: "E"},
	}, []string{"E-visa applicable"}, nil)

	sess := New(cat)
	_, err := sess.Start(ctx)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c1", fact.AnswerYes)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c2", fact.AnswerYes)
	require.NoError(t, err)

	before, err := sess.State(ctx)
	require.NoError(t, err)

	_, err = sess.Back(ctx, 2)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c1", fact.AnswerYes)
	require.NoError(t, err)
	_, err = sess.Answer(ctx, "c2", fact.AnswerYes)
	require.NoError(t, err)

	after, err := sess.State(ctx)
	require.NoError(t, err)

	assert.Equal(t, before.CurrentQuestion, after.CurrentQuestion)
	assert.Equal(t, before.HasCurrentQuestion, after.HasCurrentQuestion)
	assert.Equal(t, before.AnsweredQuestions, after.AnsweredQuestions)
	assert.Equal(t, before.RuleStatus, after.RuleStatus)
	assert.Equal(t, before.DerivedFacts, after.DerivedFacts)
	assert.Equal(t, before.IsComplete, after.IsComplete)
	require.NotNil(t, before.Diagnosis)
	require.NotNil(t, after.Diagnosis)
	assert.Equal(t, before.Diagnosis.Applicable, after.Diagnosis.Applicable)
	assert.Equal(t, before.Diagnosis.Conditional, after.Diagnosis.Conditional)
	assert.Equal(t, before.Diagnosis.UnknownConditions, after.Diagnosis.UnknownConditions)
}

func TestStart_EmptyCatalogueCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue(nil, nil, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	assert.False(t, q.HasQuestion)
	assert.True(t, q.IsComplete)

	state, err := sess.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Diagnosis)
	assert.Empty(t, state.Diagnosis.Applicable)
	assert.Empty(t, state.Diagnosis.Conditional)
}

func TestStart_ZeroConditionGoalRuleFiresImmediately(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{}, Action: "goal"},
	}, []string{"goal"}, nil)

	sess := New(cat)
	q, err := sess.Start(ctx)
	require.NoError(t, err)
	assert.False(t, q.HasQuestion)
	assert.True(t, q.IsComplete)
	require.Len(t, q.RuleStatus, 1)
	assert.Equal(t, "fired", q.RuleStatus[0].Status)
}

func TestAnswer_NoCurrentQuestion(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue(nil, nil, nil)
	sess := New(cat)
	_, err := sess.Start(ctx)
	require.NoError(t, err)

	_, err = sess.Answer(ctx, "anything", fact.AnswerYes)
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
}

func TestAnswer_ConditionMismatch(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue([]rule.Rule{
		{ID: "g1", Conditions: []string{"c1"}, Action: "goal"},
	}, []string{"goal"}, nil)
	sess := New(cat)
	_, err := sess.Start(ctx)
	require.NoError(t, err)

	_, err = sess.Answer(ctx, "wrong_condition", fact.AnswerYes)
	assert.ErrorIs(t, err, ErrConditionMismatch)
}

func TestBack_InvalidSteps(t *testing.T) {
	ctx := context.Background()
	cat := rule.NewCatalogue(nil, nil, nil)
	sess := New(cat)
	_, err := sess.Start(ctx)
	require.NoError(t, err)

	_, err = sess.Back(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidSteps)
}
