package session

import "errors"

// Recoverable caller-sequence errors: session state is left
// unchanged when any of these are returned.
var (
	// ErrNoCurrentQuestion is returned by Answer when there is no
	// current question to answer — either the diagnosis already
	// completed or the session was never started.
	ErrNoCurrentQuestion = errors.New("session: no current question")

	// ErrConditionMismatch is returned by Answer when the supplied
	// condition does not match the session's current question.
	ErrConditionMismatch = errors.New("session: condition does not match current question")

	// ErrInvalidAnswer is returned when the supplied answer is not one
	// of yes/no/unknown.
	ErrInvalidAnswer = errors.New("session: answer must be yes, no, or unknown")

	// ErrInvalidSteps is returned by Back when steps < 1.
	ErrInvalidSteps = errors.New("session: steps must be >= 1")
)
