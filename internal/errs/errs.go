// Package errs defines the sentinel error taxonomy shared by the Trip
// Analysis Engine and the Evaluation Engine (spec §7). Call sites wrap
// these with fmt.Errorf("...: %w", err) the same way the teacher's
// storage and network layers wrap driver errors, so callers can still
// recover the taxonomy with errors.Is.
package errs

import "errors"

var (
	// ErrNoSegments is returned when both the front and cabin stream
	// folders are empty. Fatal for the trip.
	ErrNoSegments = errors.New("no segments found in either stream")

	// ErrSignalProviderUnavailable is returned when a detector failed to
	// initialize. Recoverable: the dependent events are disabled and a
	// human-readable note is appended to the trip report's limitations.
	ErrSignalProviderUnavailable = errors.New("signal provider unavailable")

	// ErrVideoUnreadable is returned when a single clip cannot be
	// opened. Recoverable: the clip is skipped.
	ErrVideoUnreadable = errors.New("video clip unreadable")

	// ErrPersistence is returned when a report write fails.
	ErrPersistence = errors.New("persistence error")

	// ErrInputMissing is returned when a required evaluation input path
	// does not exist. Fatal for that evaluation run.
	ErrInputMissing = errors.New("required input missing")

	// ErrMalformed is returned when an evaluation input fails to parse
	// as valid JSON in the expected shape. Fatal for that evaluation
	// run.
	ErrMalformed = errors.New("malformed input")
)
