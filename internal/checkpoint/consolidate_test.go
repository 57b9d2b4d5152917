package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func appendAll(t *testing.T, path string, records [][2]string) {
	t.Helper()
	log, err := OpenLog(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer log.Close()
	for _, rec := range records {
		if err := log.Append(rec[0], json.RawMessage(rec[1])); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestConsolidateLastWriteWinsSortedNumerically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	appendAll(t, path, [][2]string{
		{"000000003", `{"v":1}`},
		{"000000001", `{"v":2}`},
		{"000000003", `{"v":9}`},
	})
	artifact, stats, err := Consolidate(path)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if stats.Records != 3 || artifact.Len() != 2 {
		t.Fatalf("unexpected stats %+v len %d", stats, artifact.Len())
	}
	if artifact.Entries[0].ID != "000000001" || artifact.Entries[1].ID != "000000003" {
		t.Fatalf("unexpected order %+v", artifact.Entries)
	}
	if string(artifact.Entries[1].Payload) != `{"v":9}` {
		t.Fatalf("expected last write to win, got %s", artifact.Entries[1].Payload)
	}
}

func TestConsolidateIsOrderIndependentForFinalRecords(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jsonl")
	second := filepath.Join(dir, "b.jsonl")
	appendAll(t, first, [][2]string{{"000000010", `1`}, {"000000002", `2`}, {"000000007", `7`}})
	appendAll(t, second, [][2]string{{"000000007", `0`}, {"000000002", `2`}, {"000000010", `1`}, {"000000007", `7`}})

	a, _, err := Consolidate(first)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	b, _, err := Consolidate(second)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	left, _ := MarshalArtifact(a)
	right, _ := MarshalArtifact(b)
	if string(left) != string(right) {
		t.Fatalf("artifacts differ:\n%s\n%s", left, right)
	}
}

func TestMarshalArtifactFormat(t *testing.T) {
	artifact := Artifact{Entries: []Entry{
		{ID: "000000001", Payload: json.RawMessage(`{"v":2}`)},
		{ID: "000000003", Payload: json.RawMessage(`[1,2]`)},
	}}
	data, err := MarshalArtifact(artifact)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "{\n  \"000000001\": {\n    \"v\": 2\n  },\n  \"000000003\": [\n    1,\n    2\n  ]\n}\n"
	if string(data) != want {
		t.Fatalf("artifact =\n%s\nwant\n%s", data, want)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
}

func TestBuildWritesArtifactAndSummary(t *testing.T) {
	set := NewSet(t.TempDir(), "translate")
	writers, err := set.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = writers.Append(PrimaryName, "000000002", json.RawMessage(`{"ok":true}`))
	_ = writers.Append(FailureName, "000000001", MarshalFailure("summarize", os.ErrDeadlineExceeded))
	_ = writers.Append("translate", "000000001", json.RawMessage(`"hello"`))
	if err := writers.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	summaries, err := set.BuildAll()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	failure := summaries[2]
	if failure.Channel != FailureName || failure.Failures != 1 {
		t.Fatalf("unexpected failure summary %+v", failure)
	}
	loaded, err := LoadArtifact(ArtifactPath(set.Primary().Path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := loaded["000000002"]; !ok {
		t.Fatalf("expected primary artifact to contain id")
	}
}

func TestSetRemoveDeletesLogsAndArtifacts(t *testing.T) {
	set := NewSet(t.TempDir(), "refine")
	appendAll(t, set.Primary().Path, [][2]string{{"000000001", `1`}})
	if _, err := set.BuildAll(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !set.Exists() {
		t.Fatalf("expected logs to exist")
	}
	if err := set.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, ch := range set.Channels {
		if _, err := os.Stat(ch.Path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", ch.Path)
		}
		if _, err := os.Stat(ArtifactPath(ch.Path)); !os.IsNotExist(err) {
			t.Fatalf("expected artifact for %s removed", ch.Name)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	if got := ArtifactPath("/data/x/results.jsonl"); got != "/data/x/results.json" {
		t.Fatalf("unexpected artifact path %q", got)
	}
}
