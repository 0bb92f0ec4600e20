package masks

import (
	"errors"
	"fmt"
)

// Errors returned by the geometry engine. A failure is always local to the
// shape being processed: a form that cannot render degrades to an empty
// mask and never corrupts sibling forms.
var (
	// ErrMalformedShape reports a form whose node list is missing, too
	// short for its kind, or carries an unknown kind tag.
	ErrMalformedShape = errors.New("masks: malformed shape")

	// ErrTransform reports that the coordinate mapper failed to map a
	// point batch. No partial geometry is returned.
	ErrTransform = errors.New("masks: coordinate transform failed")

	// ErrMigration reports that a legacy schema upgrade step is missing
	// prerequisite data. The form is rejected for that history entry.
	ErrMigration = errors.New("masks: legacy migration failed")

	// ErrNotClone reports a source-area request on a form that is not a
	// clone-kind shape.
	ErrNotClone = errors.New("masks: form has no clone source")

	// ErrCyclicGroup reports an attempted group attachment that would
	// make a group reachable from itself.
	ErrCyclicGroup = errors.New("masks: cyclic group membership")

	// ErrShortBlob reports a node blob whose length is not a whole
	// multiple of the kind's node struct size.
	ErrShortBlob = errors.New("masks: node blob truncated")

	// ErrUnknownKind reports a form whose kind flags match no shape
	// implementation.
	ErrUnknownKind = errors.New("masks: unknown shape kind")

	// ErrVersion reports a form whose schema version is newer than this
	// engine understands.
	ErrVersion = errors.New("masks: unsupported schema version")
)

// errTransform wraps a mapper failure so callers can match ErrTransform
// while keeping the collaborator's own message.
func errTransform(err error) error {
	return fmt.Errorf("%w: %w", ErrTransform, err)
}
