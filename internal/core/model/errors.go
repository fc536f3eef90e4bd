package model

import "errors"

var (
	// ErrInvalidArgument is returned when an operation rejects its input
	// without touching playback state.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange marks a seek target outside the recording. Seeks clamp
	// instead of failing, so it only shows up in logs.
	ErrOutOfRange = errors.New("out of range")
)
