package keyboard

import "errors"

var (
	// ErrUnknownAction is returned for action type names a layout may not
	// use.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrNoWordChoice is returned when a word key has no candidate.
	ErrNoWordChoice = errors.New("no word choice")
)
