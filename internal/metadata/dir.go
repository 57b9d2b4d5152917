package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirStore reads records laid out as <root>/<id>/<kind>.json.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) (*DirStore, error) {
	root := strings.TrimRight(strings.TrimSpace(dir), "/")
	if root == "" {
		return nil, fmt.Errorf("metadata dir is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open metadata dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("metadata dir %s is not a directory", root)
	}
	return &DirStore{root: root}, nil
}

// GetSkip loads the skip marker for id.
func (s *DirStore) GetSkip(ctx context.Context, id string) (SkipMarker, bool, error) {
	var marker SkipMarker
	found, err := s.load(ctx, KindSkip, id, &marker)
	return marker, found, err
}

// GetLabel loads the label record for id.
func (s *DirStore) GetLabel(ctx context.Context, id string) (LabelRecord, bool, error) {
	var label LabelRecord
	found, err := s.load(ctx, KindLabel, id, &label)
	return label, found, err
}

// GetInfo loads the info record for id.
func (s *DirStore) GetInfo(ctx context.Context, id string) (InfoRecord, bool, error) {
	var info InfoRecord
	found, err := s.load(ctx, KindInfo, id, &info)
	return info, found, err
}

// Close is a no-op for directory stores.
func (s *DirStore) Close() error {
	return nil
}

// RecordPath returns the on-disk location of a record.
func (s *DirStore) RecordPath(kind Kind, id string) string {
	return filepath.Join(s.root, id, string(kind)+".json")
}

func (s *DirStore) load(ctx context.Context, kind Kind, id string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storeError(kind, id, err)
	}
	data, err := os.ReadFile(s.RecordPath(kind, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storeError(kind, id, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, storeError(kind, id, fmt.Errorf("decode: %w", err))
	}
	return true, nil
}
