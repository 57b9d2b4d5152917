package metadatatest

import (
	"context"
	"sync"

	"vlmbench/internal/metadata"
)

// MemoryStore is an in-memory metadata.Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	skips  map[string]metadata.SkipMarker
	labels map[string]metadata.LabelRecord
	infos  map[string]metadata.InfoRecord
	errs   map[metadata.Kind]map[string]error
	calls  map[metadata.Kind]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		skips:  map[string]metadata.SkipMarker{},
		labels: map[string]metadata.LabelRecord{},
		infos:  map[string]metadata.InfoRecord{},
		errs:   map[metadata.Kind]map[string]error{},
		calls:  map[metadata.Kind]int{},
	}
}

// PutSkip stores a skip marker.
func (m *MemoryStore) PutSkip(id string, skip metadata.SkipMarker) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[id] = skip
	return m
}

// PutLabel stores a label.
func (m *MemoryStore) PutLabel(id string, label metadata.LabelRecord) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[id] = label
	return m
}

// PutInfo stores an info record.
func (m *MemoryStore) PutInfo(id string, info metadata.InfoRecord) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[id] = info
	return m
}

// PutEligible stores a label and info record for id.
func (m *MemoryStore) PutEligible(id, source string, label metadata.LabelRecord) *MemoryStore {
	m.PutLabel(id, label)
	return m.PutInfo(id, metadata.InfoRecord{FileName: id + ".png", Path: "/images/" + id + ".png", Source: source})
}

// FailWith makes lookups of kind for id return err.
func (m *MemoryStore) FailWith(kind metadata.Kind, id string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs[kind] == nil {
		m.errs[kind] = map[string]error{}
	}
	m.errs[kind][id] = &metadata.StoreError{Kind: kind, ID: id, Err: err}
	return m
}

// Calls returns how many lookups of kind were made.
func (m *MemoryStore) Calls(kind metadata.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *MemoryStore) GetSkip(_ context.Context, id string) (metadata.SkipMarker, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[metadata.KindSkip]++
	if err := m.errs[metadata.KindSkip][id]; err != nil {
		return metadata.SkipMarker{}, false, err
	}
	skip, ok := m.skips[id]
	return skip, ok, nil
}

func (m *MemoryStore) GetLabel(_ context.Context, id string) (metadata.LabelRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[metadata.KindLabel]++
	if err := m.errs[metadata.KindLabel][id]; err != nil {
		return metadata.LabelRecord{}, false, err
	}
	label, ok := m.labels[id]
	return label, ok, nil
}

func (m *MemoryStore) GetInfo(_ context.Context, id string) (metadata.InfoRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[metadata.KindInfo]++
	if err := m.errs[metadata.KindInfo][id]; err != nil {
		return metadata.InfoRecord{}, false, err
	}
	info, ok := m.infos[id]
	return info, ok, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
