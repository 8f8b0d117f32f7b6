package blobs

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// PurgeKind labels which reference a purged blob was held by.
type PurgeKind string

const (
	PurgeKindGallery    PurgeKind = "gallery"
	PurgeKindProfilePic PurgeKind = "profile_pic"
)

// PurgeOutcome is the result of one independent deletion attempt.
type PurgeOutcome struct {
	BlobID   uuid.UUID
	FileName string
	Kind     PurgeKind
	Err      error
}

// PurgeResult carries the per-item outcomes of a cascading blob cleanup.
// Failures never abort the sweep; the caller logs them and proceeds.
type PurgeResult struct {
	Outcomes []PurgeOutcome
}

// Failed returns the outcomes that did not complete.
func (r PurgeResult) Failed() []PurgeOutcome {
	var failed []PurgeOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines every failure into one error for operator logging, nil when
// all deletions succeeded.
func (r PurgeResult) Err() error {
	var combined error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s blob %s: %w", o.Kind, o.BlobID, o.Err))
		}
	}
	return combined
}
