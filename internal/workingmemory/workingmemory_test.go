package workingmemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
)

func testCatalogue() *rule.Catalogue {
	return rule.NewCatalogue([]rule.Rule{
		{ID: "r1", Conditions: []string{"a", "b"}, Action: "x"},
		{ID: "r2", Conditions: []string{"c"}, Action: "y"},
	}, nil, nil)
}

func TestNew_InitializesEveryRuleToPending(t *testing.T) {
	mem := New(testCatalogue())

	require.Len(t, mem.RuleStates, 2)
	assert.Equal(t, StatusPending, mem.RuleStates["r1"].Status)
	assert.Equal(t, StatusPending, mem.RuleStates["r2"].Status)
	assert.Empty(t, mem.Findings)
	assert.Empty(t, mem.Hypotheses)
	assert.Empty(t, mem.AnswerHistory)
}

func TestPutFinding_AppendsToAnswerHistory(t *testing.T) {
	mem := New(testCatalogue())

	mem.PutFinding("a", fact.True)
	mem.PutFinding("b", fact.False)

	assert.Equal(t, fact.True, mem.Findings["a"])
	require.Len(t, mem.AnswerHistory, 2)
	assert.Equal(t, AnswerEvent{Condition: "a", Status: fact.True}, mem.AnswerHistory[0])
	assert.Equal(t, AnswerEvent{Condition: "b", Status: fact.False}, mem.AnswerHistory[1])
}

func TestPutHypothesis_NeverAppendsToAnswerHistory(t *testing.T) {
	mem := New(testCatalogue())

	mem.PutHypothesis("x", fact.True)

	assert.Equal(t, fact.True, mem.Hypotheses["x"])
	assert.Empty(t, mem.AnswerHistory)
}

func TestGetValue_FindingsTakePriorityOverHypotheses(t *testing.T) {
	mem := New(testCatalogue())
	mem.PutHypothesis("a", fact.False)
	mem.PutFinding("a", fact.True)

	val, ok := mem.GetValue("a")

	assert.True(t, ok)
	assert.Equal(t, fact.True, val)
}

func TestGetValue_AbsentWhenNeverStored(t *testing.T) {
	mem := New(testCatalogue())

	_, ok := mem.GetValue("nope")

	assert.False(t, ok)
}

func TestClearAfter_TruncatesHistoryAtFirstOccurrenceInclusive(t *testing.T) {
	mem := New(testCatalogue())
	mem.PutFinding("a", fact.True)
	mem.PutFinding("b", fact.False)
	mem.PutFinding("c", fact.Unknown)
	mem.PutHypothesis("x", fact.True)

	mem.ClearAfter("b")

	require.Len(t, mem.AnswerHistory, 1)
	assert.Equal(t, "a", mem.AnswerHistory[0].Condition)
	assert.Equal(t, fact.True, mem.Findings["a"])
	_, bPresent := mem.Findings["b"]
	_, cPresent := mem.Findings["c"]
	assert.False(t, bPresent)
	assert.False(t, cPresent)
	assert.Empty(t, mem.Hypotheses, "rewinding clears every hypothesis regardless of which condition it depended on")
}

func TestClearAfter_RewindsToEarliestOccurrenceWhenAskedTwice(t *testing.T) {
	mem := New(testCatalogue())
	mem.PutFinding("a", fact.Unknown)
	mem.PutFinding("b", fact.False)
	mem.PutFinding("a", fact.True) // re-answered later in the same session

	mem.ClearAfter("a")

	assert.Empty(t, mem.AnswerHistory)
	_, ok := mem.Findings["a"]
	assert.False(t, ok)
}

func TestClearAfter_NoOpWhenConditionNeverAnswered(t *testing.T) {
	mem := New(testCatalogue())
	mem.PutFinding("a", fact.True)
	mem.PutHypothesis("x", fact.True)

	mem.ClearAfter("never_asked")

	require.Len(t, mem.AnswerHistory, 1)
	assert.Equal(t, fact.True, mem.Findings["a"])
	assert.Equal(t, fact.True, mem.Hypotheses["x"])
}

func TestResetRuleStates_RestoresEveryRuleToPendingWithEmptySnapshot(t *testing.T) {
	mem := New(testCatalogue())
	mem.RuleStates["r1"].Status = StatusFired
	mem.RuleStates["r1"].CheckedConditions["a"] = fact.True

	mem.ResetRuleStates()

	assert.Equal(t, StatusPending, mem.RuleStates["r1"].Status)
	assert.Empty(t, mem.RuleStates["r1"].CheckedConditions)
}

func TestMarkEvaluating_OnlyTransitionsPendingRules(t *testing.T) {
	mem := New(testCatalogue())
	mem.RuleStates["r2"].Status = StatusFired

	mem.MarkEvaluating("a") // read by r1, which is still PENDING
	mem.MarkEvaluating("c") // read by r2, which is already FIRED

	assert.Equal(t, StatusEvaluating, mem.RuleStates["r1"].Status)
	assert.Equal(t, StatusFired, mem.RuleStates["r2"].Status, "MarkEvaluating must not downgrade a settled rule")
}

func TestIsResolved(t *testing.T) {
	assert.True(t, IsResolved(StatusFired))
	assert.True(t, IsResolved(StatusBlocked))
	assert.True(t, IsResolved(StatusUncertain))
	assert.False(t, IsResolved(StatusPending))
	assert.False(t, IsResolved(StatusEvaluating))
}
