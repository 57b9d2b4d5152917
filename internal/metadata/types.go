package metadata

import (
	"context"
	"fmt"
)

// SkipMarker excludes an item from evaluation.
type SkipMarker struct {
	Reason   string `json:"reason"`
	SkipTime string `json:"skipTime"`
}

// LabelItem is one annotated finding inside a label.
type LabelItem struct {
	ID            string      `json:"id"`
	LowConfidence bool        `json:"lowConfidence"`
	Description   string      `json:"description"`
	Contours      [][]float64 `json:"contours"`
}

// LabelRecord is the ground-truth annotation for an item.
type LabelRecord struct {
	Annotators         []string    `json:"annotators"`
	OverallDescription string      `json:"overallDescription"`
	Items              []LabelItem `json:"items"`
}

// CompactItem is the label item form passed to prompts.
type CompactItem struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	LowConfidence bool   `json:"low_confidence"`
}

// CompactLabel drops annotator and contour data from a label.
type CompactLabel struct {
	OverallDescription string        `json:"overall_description"`
	Items              []CompactItem `json:"items"`
}

// Compact returns the prompt-facing view of a label.
func (l LabelRecord) Compact() CompactLabel {
	items := make([]CompactItem, 0, len(l.Items))
	for _, item := range l.Items {
		items = append(items, CompactItem{
			ID:            item.ID,
			Description:   item.Description,
			LowConfidence: item.LowConfidence,
		})
	}
	return CompactLabel{OverallDescription: l.OverallDescription, Items: items}
}

// InfoRecord describes the source image of an item.
type InfoRecord struct {
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	Source   string `json:"source"`
}

// Store is a read-only keyed metadata store.
type Store interface {
	GetSkip(ctx context.Context, id string) (SkipMarker, bool, error)
	GetLabel(ctx context.Context, id string) (LabelRecord, bool, error)
	GetInfo(ctx context.Context, id string) (InfoRecord, bool, error)
	Close() error
}

// Kind names a record type within the store.
type Kind string

const (
	KindSkip  Kind = "skip"
	KindLabel Kind = "label"
	KindInfo  Kind = "info"
)

// StoreError reports a transport or decoding fault while reading a record.
type StoreError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metadata %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(kind Kind, id string, err error) error {
	return &StoreError{Kind: kind, ID: id, Err: err}
}
