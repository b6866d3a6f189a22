package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedURL means no video id could be derived from a URL.
	ErrMalformedURL = errors.New("malformed video url")

	// ErrConnection means a store could not be reached.
	ErrConnection = errors.New("store connection failed")

	// ErrNotFound means the video is absent from the document store.
	ErrNotFound = errors.New("video not found")

	// ErrAlreadyExists means the video is already in the document store.
	ErrAlreadyExists = errors.New("video already exists")

	// ErrUpstream wraps failures of external services (oEmbed, transcripts,
	// embedding model, generative model).
	ErrUpstream = errors.New("upstream service failed")

	// ErrEmptyTranscript means there is no transcript to embed.
	ErrEmptyTranscript = errors.New("transcript is empty")

	// ErrConsistency marks a dual-write whose undo could not be completed.
	ErrConsistency = errors.New("stores are inconsistent")
)

// ConsistencyError reports a multi-store operation that failed and left the
// stores out of sync. It unwraps to the error of the step that failed, not
// to the errors of the compensations.
type ConsistencyError struct {
	Operation string
	VideoID   string
	Cause     error

	// Unresolved lists steps that completed and could not be undone.
	Unresolved []string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s %s left stores inconsistent (unresolved: %s): %v",
		e.Operation, e.VideoID, strings.Join(e.Unresolved, ", "), e.Cause)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrConsistency) match.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}
