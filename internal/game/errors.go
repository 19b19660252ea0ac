package game

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a malformed level. It aborts setup.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvariant marks a bookkeeping bug in the driver. The run cannot
	// continue once it is returned.
	ErrInvariant = errors.New("invariant violation")

	// ErrStalled marks a run in which nobody has moved for too long.
	ErrStalled = errors.New("boarding stalled")

	ErrBoardingStarted = errors.New("boarding already started")
	ErrUnknownOrdering = errors.New("unknown queue ordering")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func invariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
