package sim

import "errors"

// ErrConfiguration is wrapped by every error caused by invalid caller input:
// bad quantum, priority out of range, non-positive burst, unknown server,
// missing manual ticket count. Such calls are rejected before any state changes.
var ErrConfiguration = errors.New("invalid configuration")

// ErrDuplicateID is returned when a process id is already known to the simulation.
// It also matches ErrConfiguration under errors.Is.
var ErrDuplicateID = &duplicateIDError{}

// ErrCycleLimit is returned by RunToCompletion when the cycle cap is reached
// with work still pending (typically a client whose server never terminates).
var ErrCycleLimit = errors.New("cycle limit reached before all processes terminated")

type duplicateIDError struct{}

func (*duplicateIDError) Error() string        { return "duplicate process id" }
func (*duplicateIDError) Is(target error) bool { return target == ErrConfiguration }
