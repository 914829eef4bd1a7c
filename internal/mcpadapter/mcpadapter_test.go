package mcpadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaexpert/internal/rule"
)

func testCatalogue() *rule.Catalogue {
	return rule.NewCatalogue([]rule.Rule{
		{ID: "r1", Conditions: []string{"has_job_offer"}, Action: "qualifies_h1b", VisaType: "H-1B"},
	}, []string{"qualifies_h1b"}, nil)
}

func TestServer_StartAnswerRoundTrip(t *testing.T) {
	srv := NewServer(testCatalogue())
	ctx := context.Background()

	_, startResp, err := srv.handleStart(ctx, nil, StartRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, startResp.SessionID)
	require.True(t, startResp.Question.HasQuestion)
	assert.Equal(t, "has_job_offer", startResp.Question.Question)

	_, answerResp, err := srv.handleAnswer(ctx, nil, AnswerRequest{
		SessionID: startResp.SessionID,
		Condition: "has_job_offer",
		Answer:    "yes",
	})
	require.NoError(t, err)
	require.True(t, answerResp.IsComplete)
	require.NotNil(t, answerResp.Diagnosis)
	assert.Equal(t, "qualifies_h1b", answerResp.Diagnosis.Applicable[0].Action)
}

func TestServer_AnswerUnknownSession(t *testing.T) {
	srv := NewServer(testCatalogue())
	_, _, err := srv.handleAnswer(context.Background(), nil, AnswerRequest{
		SessionID: "does-not-exist",
		Condition: "has_job_offer",
		Answer:    "yes",
	})
	assert.Error(t, err)
}

func TestServer_AnswerInvalidAnswerString(t *testing.T) {
	srv := NewServer(testCatalogue())
	ctx := context.Background()
	_, startResp, err := srv.handleStart(ctx, nil, StartRequest{})
	require.NoError(t, err)

	_, _, err = srv.handleAnswer(ctx, nil, AnswerRequest{
		SessionID: startResp.SessionID,
		Condition: "has_job_offer",
		Answer:    "maybe",
	})
	assert.Error(t, err)
}

func TestServer_RelatedVisaTypes(t *testing.T) {
	srv := NewServer(testCatalogue())
	ctx := context.Background()
	_, startResp, err := srv.handleStart(ctx, nil, StartRequest{})
	require.NoError(t, err)

	_, resp, err := srv.handleRelatedVisaTypes(ctx, nil, RelatedVisaTypesRequest{
		SessionID: startResp.SessionID,
		Condition: "has_job_offer",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.VisaTypes, "H-1B")
}
