// Package mcpadapter exposes the session façade as MCP tools: one
// struct holding the shared collaborators, a RegisterTools method
// calling mcp.AddTool per tool, and one typed request/response pair per
// handler.
package mcpadapter

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"visaexpert/internal/fact"
	"visaexpert/internal/rule"
	"visaexpert/internal/session"
	"visaexpert/pkg/sessionstore"
)

// Server wires a pkg/sessionstore registry and a shared catalogue into
// MCP tool handlers. It holds one catalogue and creates a fresh session
// per visa-start call: each dialogue is its own session.
type Server struct {
	catalogue *rule.Catalogue
	store     *sessionstore.Store
}

// NewServer builds a Server over cat, backed by a new in-process session
// registry.
func NewServer(cat *rule.Catalogue) *Server {
	return &Server{catalogue: cat, store: sessionstore.New()}
}

// RegisterTools registers every visa-* tool on mcpServer.
func (s *Server) RegisterTools(mcpServer *mcp.Server) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-start",
		Description: "Start a new visa-eligibility diagnosis session and return the first question",
	}, s.handleStart)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-answer",
		Description: "Answer the current question of a visa-eligibility session",
	}, s.handleAnswer)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-back",
		Description: "Rewind a visa-eligibility session by one or more answered questions",
	}, s.handleBack)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-restart",
		Description: "Restart a visa-eligibility session from the beginning",
	}, s.handleRestart)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-state",
		Description: "Get the current state of a visa-eligibility session without mutating it",
	}, s.handleState)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "visa-related-visa-types",
		Description: "List visa types related to a given condition",
	}, s.handleRelatedVisaTypes)
}

// StartRequest takes no input; the tool accepts an empty object so MCP
// clients that always send a params object still work.
type StartRequest struct{}

// StartResponse carries the new session ID alongside the first
// question.
type StartResponse struct {
	SessionID string                `json:"session_id"`
	Question  *session.QuestionView `json:"question"`
}

func (s *Server) handleStart(ctx context.Context, req *mcp.CallToolRequest, input StartRequest) (*mcp.CallToolResult, *StartResponse, error) {
	id, sess, err := s.store.Create(s.catalogue)
	if err != nil {
		return nil, nil, fmt.Errorf("mcpadapter: starting session: %w", err)
	}

	q, err := sess.Start(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, &StartResponse{SessionID: id, Question: q}, nil
}

// AnswerRequest answers the current question of an existing session.
type AnswerRequest struct {
	SessionID string `json:"session_id"`
	Condition string `json:"condition"`
	Answer    string `json:"answer"`
}

func (s *Server) handleAnswer(ctx context.Context, req *mcp.CallToolRequest, input AnswerRequest) (*mcp.CallToolResult, *session.AnswerResult, error) {
	sess, err := s.store.Get(input.SessionID)
	if err != nil {
		return nil, nil, err
	}
	answer, ok := fact.ParseAnswer(input.Answer)
	if !ok {
		return nil, nil, session.ErrInvalidAnswer
	}
	result, err := sess.Answer(ctx, input.Condition, answer)
	if err != nil {
		return nil, nil, err
	}
	return nil, result, nil
}

// BackRequest rewinds a session by Steps answers.
type BackRequest struct {
	SessionID string `json:"session_id"`
	Steps     int    `json:"steps"`
}

func (s *Server) handleBack(ctx context.Context, req *mcp.CallToolRequest, input BackRequest) (*mcp.CallToolResult, *session.BackResult, error) {
	sess, err := s.store.Get(input.SessionID)
	if err != nil {
		return nil, nil, err
	}
	result, err := sess.Back(ctx, input.Steps)
	if err != nil {
		return nil, nil, err
	}
	return nil, result, nil
}

// RestartRequest restarts an existing session from scratch.
type RestartRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleRestart(ctx context.Context, req *mcp.CallToolRequest, input RestartRequest) (*mcp.CallToolResult, *session.QuestionView, error) {
	sess, err := s.store.Get(input.SessionID)
	if err != nil {
		return nil, nil, err
	}
	q, err := sess.Restart(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, q, nil
}

// StateRequest reads a session's current state without mutating it.
type StateRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleState(ctx context.Context, req *mcp.CallToolRequest, input StateRequest) (*mcp.CallToolResult, *session.StateView, error) {
	sess, err := s.store.Get(input.SessionID)
	if err != nil {
		return nil, nil, err
	}
	view, err := sess.State(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, view, nil
}

// RelatedVisaTypesRequest asks which visa types a condition feeds into.
type RelatedVisaTypesRequest struct {
	SessionID string `json:"session_id"`
	Condition string `json:"condition"`
}

// RelatedVisaTypesResponse carries the visa-type tags related to a
// condition.
type RelatedVisaTypesResponse struct {
	VisaTypes []string `json:"visa_types"`
}

func (s *Server) handleRelatedVisaTypes(ctx context.Context, req *mcp.CallToolRequest, input RelatedVisaTypesRequest) (*mcp.CallToolResult, *RelatedVisaTypesResponse, error) {
	sess, err := s.store.Get(input.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return nil, &RelatedVisaTypesResponse{VisaTypes: sess.RelatedVisaTypes(ctx, input.Condition)}, nil
}
