package metadata

import (
	"context"
	"fmt"
)

// Writer accepts records for a metadata store.
type Writer interface {
	Put(ctx context.Context, kind Kind, id string, record any) error
}

// ImportStats counts records copied by Import.
type ImportStats struct {
	Skips  int
	Labels int
	Infos  int
}

// Import copies every record present in src for the given ids into dst.
func Import(ctx context.Context, src Store, dst Writer, ids []string) (ImportStats, error) {
	var stats ImportStats
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		skip, found, err := src.GetSkip(ctx, id)
		if err != nil {
			return stats, err
		}
		if found {
			if err := dst.Put(ctx, KindSkip, id, skip); err != nil {
				return stats, fmt.Errorf("import skip: %w", err)
			}
			stats.Skips++
		}
		label, found, err := src.GetLabel(ctx, id)
		if err != nil {
			return stats, err
		}
		if found {
			if err := dst.Put(ctx, KindLabel, id, label); err != nil {
				return stats, fmt.Errorf("import label: %w", err)
			}
			stats.Labels++
		}
		info, found, err := src.GetInfo(ctx, id)
		if err != nil {
			return stats, err
		}
		if found {
			if err := dst.Put(ctx, KindInfo, id, info); err != nil {
				return stats, fmt.Errorf("import info: %w", err)
			}
			stats.Infos++
		}
	}
	return stats, nil
}
