package migrate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a step's down version is not below its up version.
	ErrInvalidRange = errors.New("down version must be lower than up version")
	// ErrInvalidChange is returned for malformed step declarations.
	ErrInvalidChange = errors.New("invalid change")
	// ErrShape is returned when a document does not have the shape a step expects.
	ErrShape = errors.New("unexpected document shape")
	// ErrUnknownTransform is returned when a change set names a transform that was not
	// provided.
	ErrUnknownTransform = errors.New("unknown transform")
	// ErrSubjectMismatch is returned when a change set targets another document type.
	ErrSubjectMismatch = errors.New("change set subject mismatch")
)

// StepError reports the step that failed during a migration.
type StepError struct {
	Subject     string
	Description string
	Attribute   string
	Direction   Direction
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s of %q failed on attribute %s: %v",
		e.Subject, e.Direction, e.Description, e.Attribute, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
