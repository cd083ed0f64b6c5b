package usecases

import (
	"errors"
	"fmt"

	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// Precondition errors for the music player module.
var (
	// ErrNothingQueued is returned when resuming a guild that has no current track.
	ErrNothingQueued = errors.New("there's nothing in the queue")

	// ErrAlreadyPlaying is returned when resuming a track that is already playing.
	ErrAlreadyPlaying = errors.New("already playing")

	// ErrNotEnoughSongs is returned when skipping past the end of the queue.
	ErrNotEnoughSongs = errors.New("there's not enough songs in the queue")

	// ErrQueueEmpty is returned when the queue is empty.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = domain.ErrUserNotInVoice

	// ErrStoppedWhileResolving is returned by Play when the guild was stopped
	// before its first track could start.
	ErrStoppedWhileResolving = errors.New("stopped before anything started playing")

	// ErrMissingURL is returned when a command that resolves a URL is given none.
	ErrMissingURL = domain.ErrMissingURL

	// ErrInvalidURL is returned when a command is given something other than an http(s) URL.
	ErrInvalidURL = domain.ErrInvalidURL

	// ErrNoTracks is returned when a resolution yields no playable track.
	ErrNoTracks = errors.New("no playable tracks found")
)

// ResolutionError reports a URL or metadata record that could not be turned into a Track.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to resolve track: %v", e.Err)
	}
	return fmt.Sprintf("failed to resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// TranscodeError reports an audio pipeline that failed to start for a track.
type TranscodeError struct {
	Track *domain.Track
	Err   error
}

func (e *TranscodeError) Error() string {
	if e.Track == nil {
		return fmt.Sprintf("failed to open audio: %v", e.Err)
	}
	return fmt.Sprintf("failed to open audio for %q: %v", e.Track.Title, e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a voice join, leave or play failure.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("voice %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InputValidationError reports a missing or out-of-range command argument.
type InputValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputValidationError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, reason)
}

func (e *InputValidationError) Unwrap() error {
	return e.Err
}

func isTranscodeError(err error) bool {
	var transcodeErr *TranscodeError
	return errors.As(err, &transcodeErr)
}
