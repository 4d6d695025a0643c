package composition

import (
	"errors"
	"fmt"
)

var (
	// ErrCompositionNotFound means the aggregate does not exist (or was deleted).
	ErrCompositionNotFound = errors.New("composition not found")

	// ErrUnitNotFound means no unit carries the requested index.
	ErrUnitNotFound = errors.New("dialog unit not found")

	// ErrGenerationInFlight enforces the single-flight rule: a unit that is
	// already processing does not get a second backend call. The caller sees
	// this error and zero network activity.
	ErrGenerationInFlight = errors.New("generation already in progress for this unit")

	// ErrNotEnoughUnits rejects a merge of fewer than two units.
	ErrNotEnoughUnits = errors.New("at least two dialog units are required to merge")

	// ErrMergeNotReady rejects a publish without a successfully merged video.
	ErrMergeNotReady = errors.New("no merged video available to publish")
)

// MergeError carries the failing unit's index through a merge attempt. The
// unit's own error message is surfaced unchanged.
type MergeError struct {
	UnitIndex int
	Err       error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("unit %d: %v", e.UnitIndex, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
