package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vlmbench/internal/itemid"
)

// Entry is one id and its winning payload.
type Entry struct {
	ID      string
	Payload json.RawMessage
}

// Artifact is the deduplicated, id-sorted view of a channel log.
type Artifact struct {
	Entries []Entry
}

// Len returns the number of unique ids.
func (a Artifact) Len() int {
	return len(a.Entries)
}

// Failures counts entries whose payload is a failure marker.
func (a Artifact) Failures() int {
	count := 0
	for _, entry := range a.Entries {
		if IsFailure(entry.Payload) {
			count++
		}
	}
	return count
}

// Summary describes a consolidation pass.
type Summary struct {
	Channel      string
	LogPath      string
	ArtifactPath string
	Records      int
	Unique       int
	Failures     int
	Malformed    int
}

// Consolidate merges every record in path, keeping the last record per id,
// and returns entries sorted by numeric id.
func Consolidate(path string) (Artifact, ScanStats, error) {
	merged := map[string]json.RawMessage{}
	stats, err := ReadRecords(path, func(id string, payload json.RawMessage) {
		merged[id] = payload
	})
	if err != nil {
		return Artifact{}, stats, err
	}
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	itemid.Sort(ids)
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{ID: id, Payload: merged[id]})
	}
	return Artifact{Entries: entries}, stats, nil
}

// ArtifactPath maps a .jsonl log path to its consolidated .json path.
func ArtifactPath(logPath string) string {
	return strings.TrimSuffix(logPath, filepath.Ext(logPath)) + ".json"
}

// MarshalArtifact renders the artifact as a two-space indented JSON object
// whose keys appear in artifact order.
func MarshalArtifact(artifact Artifact) ([]byte, error) {
	if len(artifact.Entries) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, entry := range artifact.Entries {
		key, err := json.Marshal(entry.ID)
		if err != nil {
			return nil, err
		}
		var value bytes.Buffer
		if err := json.Indent(&value, entry.Payload, "  ", "  "); err != nil {
			return nil, fmt.Errorf("indent payload for %s: %w", entry.ID, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value.Bytes())
		if i < len(artifact.Entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// WriteArtifact replaces path with the rendered artifact.
func WriteArtifact(path string, artifact Artifact) error {
	data, err := MarshalArtifact(artifact)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// Build consolidates the log for channel and writes its artifact.
func Build(channel Channel) (Artifact, Summary, error) {
	artifact, stats, err := Consolidate(channel.Path)
	if err != nil {
		return Artifact{}, Summary{}, err
	}
	artifactPath := ArtifactPath(channel.Path)
	if err := WriteArtifact(artifactPath, artifact); err != nil {
		return Artifact{}, Summary{}, fmt.Errorf("write artifact %s: %w", artifactPath, err)
	}
	summary := Summary{
		Channel:      channel.Name,
		LogPath:      channel.Path,
		ArtifactPath: artifactPath,
		Records:      stats.Records,
		Unique:       artifact.Len(),
		Failures:     artifact.Failures(),
		Malformed:    stats.Malformed,
	}
	return artifact, summary, nil
}

// LoadArtifact reads a consolidated artifact from disk.
func LoadArtifact(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return out, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
