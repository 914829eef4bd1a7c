// Package sessionstore provides a reader/writer-locked session
// registry: many sessions can be hosted concurrently by an outer
// server, sharing no mutable state beyond the read-only rule catalogue
// each was started with, so the only shared resource that needs a lock
// is the session map itself — a coarse sync.RWMutex around map access,
// with each *session.Session doing its own single-threaded work once
// looked up.
package sessionstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"visaexpert/internal/rule"
	"visaexpert/internal/session"
)

// Store is a concurrency-safe registry of sessions, keyed by session ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New creates an empty Store.
func New() *Store {
	return &Store{sessions: make(map[string]*session.Session)}
}

// Create starts a new session against cat and registers it under a
// freshly generated UUID, returning the ID and the started session.
func (s *Store) Create(cat *rule.Catalogue) (string, *session.Session, error) {
	id := uuid.NewString()
	sess := session.New(cat)
	if _, err := sess.Start(context.Background()); err != nil {
		return "", nil, fmt.Errorf("sessionstore: starting session %s: %w", id, err)
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return id, sess, nil
}

// ErrNotFound is returned by Get when id is not registered.
var ErrNotFound = fmt.Errorf("sessionstore: session not found")

// Get looks up a session by ID.
func (s *Store) Get(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session from the registry (e.g. once a dialogue
// completes and the outer server tears the session down).
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of registered sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
