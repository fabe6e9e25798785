package scheduler

import "errors"

// Sentinel errors for scheduling.
var (
	ErrFilenameCollision = errors.New("intermediate filename scheduled for deletion in more than one place")
)
