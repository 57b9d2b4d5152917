package classify

import (
	"context"
	"errors"
	"testing"

	"vlmbench/internal/itemid"
	"vlmbench/internal/metadata"
	"vlmbench/internal/metadata/metadatatest"
)

func TestBuildDistributionGroupsBySource(t *testing.T) {
	store := metadatatest.NewMemoryStore()
	ids, _ := itemid.Range{Start: 1, End: 40}.IDs()
	for i, id := range ids {
		switch {
		case i%10 == 0:
			store.PutSkip(id, metadata.SkipMarker{Reason: "skip"})
		case i%5 == 0:
			// absent
		case i%2 == 0:
			store.PutEligible(id, "a", sampleLabel(true, false))
		default:
			store.PutEligible(id, "b", sampleLabel(false))
		}
	}

	dist, err := BuildDistribution(context.Background(), New(store, quietLogger()), ids, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist.Excluded != 4 || dist.Absent != 4 {
		t.Fatalf("unexpected excluded/absent %d/%d", dist.Excluded, dist.Absent)
	}
	if dist.Eligible != 32 {
		t.Fatalf("expected 32 eligible, got %d", dist.Eligible)
	}
	if len(dist.Sources["a"])+len(dist.Sources["b"]) != 32 {
		t.Fatalf("unexpected source sizes %d/%d", len(dist.Sources["a"]), len(dist.Sources["b"]))
	}
	wantLow := len(dist.Sources["a"])
	if dist.Tally.Low != wantLow || dist.Tally.High != wantLow+len(dist.Sources["b"]) {
		t.Fatalf("unexpected tally %+v", dist.Tally)
	}
	a := dist.Sources["a"]
	for i := 1; i < len(a); i++ {
		if !itemid.Less(a[i-1], a[i]) {
			t.Fatalf("source ids not sorted: %v", a)
		}
	}
	if names := dist.SourceNames(); len(names) != 2 || names[0] != "a" {
		t.Fatalf("unexpected source names %v", names)
	}
}

func TestBuildDistributionAbortsOnInconsistency(t *testing.T) {
	store := metadatatest.NewMemoryStore().
		PutEligible("000000001", "a", sampleLabel(false)).
		PutLabel("000000002", sampleLabel(true))
	_, err := BuildDistribution(context.Background(), New(store, quietLogger()), []string{"000000001", "000000002"}, 2)
	if !errors.Is(err, ErrMetadataInconsistency) {
		t.Fatalf("expected inconsistency, got %v", err)
	}
}

func TestMergeTallies(t *testing.T) {
	total := Merge(ConfidenceTally{Low: 1, High: 2}, ConfidenceTally{Low: 3}, ConfidenceTally{High: 4})
	if total.Low != 4 || total.High != 6 {
		t.Fatalf("unexpected total %+v", total)
	}
}
