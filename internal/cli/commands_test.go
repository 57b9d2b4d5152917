package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestValidateCommand verifies the success and failure paths of validate.
func TestValidateCommand(t *testing.T) {
	p := newProject(t)
	var out, errOut bytes.Buffer
	if code := Run([]string{"validate", "--config", p.configPath}, &out, &errOut); code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut.String())
	}
	if !strings.Contains(out.String(), "Config OK") {
		t.Fatalf("expected success message, got %q", out.String())
	}

	p.write(t, "vlmbench.yml", "version: 2\n")
	out.Reset()
	errOut.Reset()
	if code := Run([]string{"validate", "--config", p.configPath}, &out, &errOut); code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 || !strings.Contains(errOut.String(), "Validation failed") {
		t.Fatalf("unexpected output stdout=%q stderr=%q", out.String(), errOut.String())
	}
}

// TestInitScaffoldsOnce verifies init writes a config and refuses to overwrite.
func TestInitScaffoldsOnce(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bench", "vlmbench.yml")
	var out, errOut bytes.Buffer
	if code := Run([]string{"init", "--config", target}, &out, &errOut); code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut.String())
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(target), "schemas", "classify.schema.json")); err != nil {
		t.Fatalf("expected schema file: %v", err)
	}
	if code := Run([]string{"init", "--config", target}, &out, &errOut); code != ExitError {
		t.Fatalf("expected exit %d on second init, got %d", ExitError, code)
	}
}

// TestConsolidateRebuildsArtifacts verifies artifacts are rebuilt from logs.
func TestConsolidateRebuildsArtifacts(t *testing.T) {
	p := newProject(t)
	if code, out, errOut := p.run(t, "run", "--ui", "plain"); code != ExitOK {
		t.Fatalf("run failed: %d\n%s\n%s", code, out, errOut)
	}
	resultsPath := filepath.Join(p.dir, filepath.FromSlash(captioningDir+"results.json"))
	if err := os.Remove(resultsPath); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}
	code, out, errOut := p.run(t, "consolidate")
	if code != ExitOK {
		t.Fatalf("consolidate failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "results") || !strings.Contains(out, "3 items, 1 failures") {
		t.Fatalf("unexpected consolidate output:\n%s", out)
	}
	if got := keys(p.artifact(t, captioningDir+"results.json")); got != "000000001,000000002,000000003" {
		t.Fatalf("unexpected rebuilt ids %s", got)
	}

	if code, _, _ := p.run(t, "consolidate", "--task", "prediction/vqa"); code != ExitError {
		t.Fatalf("expected error without logs, got %d", code)
	}
}

// TestDistributionGroupsBySource verifies the distribution report.
func TestDistributionGroupsBySource(t *testing.T) {
	p := newProject(t)
	code, out, errOut := p.run(t, "distribution", "--start", "1", "--end", "5")
	if code != ExitOK {
		t.Fatalf("distribution failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "3 eligible, 1 excluded, 1 without label") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	data, err := os.ReadFile(filepath.Join(p.dir, "data", "distribution.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report struct {
		Sources map[string][]string `json:"sources"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Sources["clinic-a"]) != 2 || len(report.Sources["clinic-b"]) != 1 {
		t.Fatalf("unexpected sources %v", report.Sources)
	}
}

// TestDistributionAbortsOnInconsistentMetadata verifies a label without info
// stops the report.
func TestDistributionAbortsOnInconsistentMetadata(t *testing.T) {
	p := newProject(t)
	if err := os.Remove(filepath.Join(p.dir, "metadata", "000000002", "info.json")); err != nil {
		t.Fatalf("remove info: %v", err)
	}
	if code, _, _ := p.run(t, "distribution"); code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if _, err := os.Stat(filepath.Join(p.dir, "data", "distribution.json")); !os.IsNotExist(err) {
		t.Fatalf("no report may be written on inconsistency")
	}
}

// TestCategoriesDerivesClassificationDataset verifies category derivation.
func TestCategoriesDerivesClassificationDataset(t *testing.T) {
	p := newProject(t)
	if code, _, _ := p.run(t, "categories"); code != ExitError {
		t.Fatalf("expected error without generation output, got %d", code)
	}
	p.write(t, "data/generation/classification/test-vlm/results.json", `{
  "000000001": [{"id": "C3"}, {"id": "C1"}],
  "000000002": {"failed": "timeout", "step": "classify"},
  "000000003": "C12 probably"
}`)
	code, out, errOut := p.run(t, "categories")
	if code != ExitOK {
		t.Fatalf("categories failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "2 items (1 failures skipped, 1 recovered by token scan)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	dataset := p.artifact(t, "data/classification.json")
	codes := map[string][]string{}
	for id, raw := range dataset {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			t.Fatalf("decode %s: %v", id, err)
		}
		codes[id] = list
	}
	if strings.Join(codes["000000001"], ",") != "C1,C3" || strings.Join(codes["000000003"], ",") != "C12" || len(codes) != 2 {
		t.Fatalf("unexpected dataset %v", codes)
	}
}

// TestExportLoadsArtifacts verifies export into a DuckDB file.
func TestExportLoadsArtifacts(t *testing.T) {
	p := newProject(t)
	if code, out, errOut := p.run(t, "run", "--ui", "plain"); code != ExitOK {
		t.Fatalf("run failed: %d\n%s\n%s", code, out, errOut)
	}
	if code, _, _ := p.run(t, "export"); code != ExitUsage {
		t.Fatalf("expected usage error without a DuckDB path, got %d", code)
	}
	dbPath := filepath.Join(p.dir, "bench.duckdb")
	code, out, errOut := p.run(t, "export", "--duckdb", dbPath, "--run-id", "manual")
	if code != ExitOK {
		t.Fatalf("export failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "Exported 7 entries (2 failures)") || !strings.Contains(out, "results    3 entries, 1 failures") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
}

// TestImportMetadataIntoSQLite verifies the directory store can be copied
// into SQLite and classified from there.
func TestImportMetadataIntoSQLite(t *testing.T) {
	p := newProject(t)
	p.write(t, "vlmbench.yml", strings.Replace(testConfig,
		"kind: dir\n  dir: ./metadata", "kind: sqlite\n  sqlite_path: ./metadata.db", 1))

	code, out, errOut := p.run(t, "import-metadata", "--from", "metadata")
	if code != ExitOK {
		t.Fatalf("import failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "Imported 1 skip markers, 3 labels, 3 info records into sqlite") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	code, out, errOut = p.run(t, "distribution")
	if code != ExitOK {
		t.Fatalf("distribution failed: %d\n%s", code, errOut)
	}
	if !strings.Contains(out, "3 eligible, 1 excluded, 0 without label") {
		t.Fatalf("unexpected distribution from sqlite:\n%s", out)
	}
}

// TestImportMetadataRejectsDirectoryStore verifies a dir store is not a target.
func TestImportMetadataRejectsDirectoryStore(t *testing.T) {
	p := newProject(t)
	if code, _, _ := p.run(t, "import-metadata"); code != ExitUsage {
		t.Fatalf("expected usage error for a dir target, got %d", code)
	}
}
