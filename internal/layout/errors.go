package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeys is returned for a layout without any key.
	ErrNoKeys = errors.New("layout has no keys")

	// ErrBadRect is reported for a rect that is not [x, y, w, h] with a
	// positive size.
	ErrBadRect = errors.New("rect must be [x, y, w, h] with positive size")

	// ErrMissingField is reported when an action lacks its payload.
	ErrMissingField = errors.New("missing field")

	// ErrDuplicateID is reported for a second key with the same id on the
	// same layer.
	ErrDuplicateID = errors.New("duplicate key id")

	// ErrUnknownLayer is reported for a key on a layer the layout does not
	// declare.
	ErrUnknownLayer = errors.New("unknown layer")
)

// KeyError describes a key that could not be configured. The key is kept
// but left inert.
type KeyError struct {
	Index int
	ID    string
	Err   error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
