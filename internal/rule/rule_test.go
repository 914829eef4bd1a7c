package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRules() []Rule {
	return []Rule{
		{ID: "r1", Conditions: []string{"has_job_offer", "has_degree"}, Action: "qualifies_h1b", VisaType: "H-1B"},
		{ID: "r2", Conditions: []string{"qualifies_h1b"}, Action: "recommend_h1b", VisaType: "H-1B"},
		{ID: "r3", Conditions: []string{"has_investment"}, Action: "qualifies_eb5", VisaType: "EB-5"},
		{ID: "r4", Conditions: []string{"qualifies_eb5"}, Action: "recommend_eb5", VisaType: "EB-5"},
	}
}

func TestCatalogue_IsDerived(t *testing.T) {
	cat := NewCatalogue(sampleRules(), nil, nil)

	assert.True(t, cat.IsDerived("qualifies_h1b"))
	assert.True(t, cat.IsDerived("qualifies_eb5"))
	assert.False(t, cat.IsDerived("has_job_offer"))
	assert.False(t, cat.IsDerived("unknown_condition"))
}

func TestCatalogue_RulesProducing(t *testing.T) {
	cat := NewCatalogue(sampleRules(), nil, nil)

	producing := cat.RulesProducing("qualifies_h1b")
	assert.Len(t, producing, 1)
	assert.Equal(t, "r1", producing[0].ID)

	assert.Empty(t, cat.RulesProducing("has_job_offer"))
	assert.Empty(t, cat.RulesProducing("no_such_action"))
}

func TestCatalogue_RulesUsing(t *testing.T) {
	cat := NewCatalogue(sampleRules(), nil, nil)

	using := cat.RulesUsing("qualifies_h1b")
	assert.Len(t, using, 1)
	assert.Equal(t, "r2", using[0].ID)

	assert.Empty(t, cat.RulesUsing("recommend_h1b"))
	assert.Empty(t, cat.RulesUsing("no_such_condition"))
}

func TestCatalogue_RulesUsing_MultipleRulesShareACondition(t *testing.T) {
	rules := []Rule{
		{ID: "r1", Conditions: []string{"shared"}, Action: "a1"},
		{ID: "r2", Conditions: []string{"shared"}, Action: "a2"},
	}
	cat := NewCatalogue(rules, nil, nil)

	using := cat.RulesUsing("shared")
	assert.Len(t, using, 2)
}

func TestCatalogue_GoalRules_OrderedByVisaType(t *testing.T) {
	cat := NewCatalogue(sampleRules(), []string{"recommend_eb5", "recommend_h1b"}, map[string]int{"H-1B": 1, "EB-5": 2})

	goals := cat.GoalRules()
	if assert.Len(t, goals, 2) {
		assert.Equal(t, "recommend_h1b", goals[0].Action)
		assert.Equal(t, "recommend_eb5", goals[1].Action)
	}
}

func TestCatalogue_GoalRules_UnconfiguredVisaTypeSortsLast(t *testing.T) {
	rules := []Rule{
		{ID: "r1", Conditions: []string{"a"}, Action: "goal_unconfigured", VisaType: "O-1"},
		{ID: "r2", Conditions: []string{"b"}, Action: "goal_configured", VisaType: "H-1B"},
	}
	cat := NewCatalogue(rules, []string{"goal_unconfigured", "goal_configured"}, map[string]int{"H-1B": 1})

	goals := cat.GoalRules()
	if assert.Len(t, goals, 2) {
		assert.Equal(t, "goal_configured", goals[0].Action)
		assert.Equal(t, "goal_unconfigured", goals[1].Action)
	}
}

func TestCatalogue_RelatedVisaTypes(t *testing.T) {
	cat := NewCatalogue(sampleRules(), nil, nil)

	assert.Equal(t, []string{"H-1B"}, cat.RelatedVisaTypes("has_job_offer"))
	assert.Nil(t, cat.RelatedVisaTypes("no_such_condition"))
}

func TestCatalogue_RelatedVisaTypes_FirstSeenOrderDeduped(t *testing.T) {
	rules := []Rule{
		{ID: "r1", Conditions: []string{"shared"}, Action: "a1", VisaType: "H-1B"},
		{ID: "r2", Conditions: []string{"shared"}, Action: "a2", VisaType: "EB-5"},
		{ID: "r3", Conditions: []string{"shared"}, Action: "a3", VisaType: "H-1B"},
	}
	cat := NewCatalogue(rules, nil, nil)

	assert.Equal(t, []string{"H-1B", "EB-5"}, cat.RelatedVisaTypes("shared"))
}
