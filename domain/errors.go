package domain

import "errors"

var (
	// ErrBlankTitle indicates a create or rename with an empty title.
	ErrBlankTitle = errors.New("title must not be blank")
	// ErrMissingID indicates a command that does not name its target.
	ErrMissingID = errors.New("missing id")
	// ErrUnknownCommand indicates an unsupported command type.
	ErrUnknownCommand = errors.New("unknown command type")
)
