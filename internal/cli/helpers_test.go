package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vlmbench/internal/testutil"
)

const testConfig = `version: 1
model: test-vlm
oracle:
  backend: api
  base_url: "${VLMBENCH_TEST_BASE_URL}/v1"
  api_key_env: VLMBENCH_TEST_KEY
metadata:
  kind: dir
  dir: ./metadata
  language: en
data:
  image_dir: ./images
  output_dir: ./data
run:
  task: generation
  subtask: captioning
  start: 1
  end: 4
  workers: 2
  on_existing: continue
`

// project is a temporary benchmark workspace backed by a fake oracle.
type project struct {
	dir        string
	configPath string
	// failing makes the oracle reject prompts mentioning FAIL-ME.
	failing atomic.Bool
	calls   atomic.Int64
}

// newProject writes a config and metadata for ids 1..4: ids 1 and 2 are
// eligible, id 3 is eligible but its label trips the failing oracle, and
// id 4 is excluded.
func newProject(t *testing.T) *project {
	t.Helper()
	p := &project{dir: t.TempDir()}
	p.failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if p.failing.Load() && bytes.Contains(body, []byte("FAIL-ME")) {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		resp := map[string]any{"choices": []any{map[string]any{"message": map[string]any{
			"content": `{"description":"caries on the upper first molar"}`,
		}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	t.Setenv("VLMBENCH_TEST_BASE_URL", server.URL)
	t.Setenv("VLMBENCH_TEST_KEY", "secret")

	p.configPath = filepath.Join(p.dir, "vlmbench.yml")
	p.write(t, "vlmbench.yml", testConfig)
	p.label(t, "000000001", "caries on 16", "clinic-a")
	p.label(t, "000000002", "calculus on 31", "clinic-b")
	p.label(t, "000000003", "FAIL-ME", "clinic-a")
	p.write(t, "metadata/000000004/skip.json", `{"reason":"blurred","skipTime":"2024-05-01"}`)
	if err := os.MkdirAll(filepath.Join(p.dir, "images"), 0o755); err != nil {
		t.Fatalf("mkdir images: %v", err)
	}
	return p
}

func (p *project) label(t *testing.T, id, description, source string) {
	t.Helper()
	p.write(t, "metadata/"+id+"/label.json", `{"annotators":["a"],"overallDescription":"upper arch","items":[{"id":"1","lowConfidence":false,"description":"`+description+`","contours":[]}]}`)
	p.write(t, "metadata/"+id+"/info.json", `{"file_name":"`+id+`.png","path":"/images","source":"`+source+`"}`)
}

func (p *project) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(p.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// artifact reads a consolidated artifact relative to the project.
func (p *project) artifact(t *testing.T, rel string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", rel, err)
	}
	return out
}

// run executes a command against the project config.
func (p *project) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{args[0], "--config", p.configPath, "--no-color"}, args[1:]...)
	var code int
	runWithTimeout(t, func() {
		code = Run(full, &out, &errOut)
	})
	return code, out.String(), errOut.String()
}

func keys(m map[string]json.RawMessage) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, 10*time.Second)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}

// cancelledSignals makes runs behave as if interrupted before they start.
func cancelledSignals(t *testing.T) {
	t.Helper()
	original := notifyContext
	notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx, cancel
	}
	t.Cleanup(func() { notifyContext = original })
}
