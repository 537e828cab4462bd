package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrFunctionNotFound is returned when the called global is missing or
	// is not a function.
	ErrFunctionNotFound = errors.New("lua function not found")

	// ErrBadResult is returned when a script returns something other than a
	// list of ranges.
	ErrBadResult = errors.New("lua script returned an invalid result")
)
