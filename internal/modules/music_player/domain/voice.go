package domain

import "errors"

// ErrUserNotInVoice is returned when the invoking user is not connected to a
// voice channel the bot could join.
var ErrUserNotInVoice = errors.New("you need to be in a voice channel")
