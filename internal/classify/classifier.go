package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vlmbench/internal/metadata"
)

// Kind is the outcome of classifying a single item.
type Kind int

const (
	// Excluded items carry a skip marker.
	Excluded Kind = iota
	// Absent items have no label.
	Absent
	// Eligible items have both a label and an info record.
	Eligible
)

func (k Kind) String() string {
	switch k {
	case Excluded:
		return "excluded"
	case Absent:
		return "absent"
	case Eligible:
		return "eligible"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is the classification of one id.
type Decision struct {
	ID    string
	Kind  Kind
	Skip  metadata.SkipMarker
	Label metadata.LabelRecord
	Info  metadata.InfoRecord
}

// ErrMetadataInconsistency marks an id that has a label but no info record.
var ErrMetadataInconsistency = errors.New("metadata inconsistency")

// MetadataInconsistencyError identifies the offending id.
type MetadataInconsistencyError struct {
	ID string
}

func (e *MetadataInconsistencyError) Error() string {
	return fmt.Sprintf("metadata inconsistency: item %s has a label but no info record", e.ID)
}

func (e *MetadataInconsistencyError) Is(target error) bool {
	return target == ErrMetadataInconsistency
}

// Classifier decides eligibility from the metadata store.
type Classifier struct {
	store  metadata.Store
	logger *slog.Logger
}

// New returns a Classifier over store.
func New(store metadata.Store, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{store: store, logger: logger}
}

// Classify resolves an id to Excluded, Absent or Eligible. A skip marker
// always wins over a label. Store faults on the skip and label lookups count
// as absence; a fault on the info lookup is returned.
func (c *Classifier) Classify(ctx context.Context, id string) (Decision, error) {
	skip, found, err := c.store.GetSkip(ctx, id)
	if err != nil {
		c.logger.Warn("skip lookup failed, treating as absent", "id", id, "error", err)
		found = false
	}
	if found {
		return Decision{ID: id, Kind: Excluded, Skip: skip}, nil
	}

	label, found, err := c.store.GetLabel(ctx, id)
	if err != nil {
		c.logger.Warn("label lookup failed, treating as absent", "id", id, "error", err)
		found = false
	}
	if !found {
		return Decision{ID: id, Kind: Absent}, nil
	}

	info, found, err := c.store.GetInfo(ctx, id)
	if err != nil {
		return Decision{}, fmt.Errorf("classify %s: %w", id, err)
	}
	if !found {
		return Decision{}, &MetadataInconsistencyError{ID: id}
	}
	return Decision{ID: id, Kind: Eligible, Label: label, Info: info}, nil
}
