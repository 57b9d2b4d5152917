package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Role classifies a channel within a run.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleAuxiliary Role = "auxiliary"
	RoleFailure   Role = "failure"
)

const (
	// PrimaryName is the channel that decides completion.
	PrimaryName = "results"
	// FailureName is the channel collecting failure markers.
	FailureName = "failures"
)

// Channel is one named log within a run directory.
type Channel struct {
	Name string
	Role Role
	Path string
}

// Set is the group of channels written by one run.
type Set struct {
	Dir      string
	Channels []Channel
}

// NewSet builds the channel set for dir: results, the given auxiliary
// channels, then failures.
func NewSet(dir string, auxiliary ...string) Set {
	channels := []Channel{{Name: PrimaryName, Role: RolePrimary, Path: filepath.Join(dir, PrimaryName+".jsonl")}}
	for _, name := range auxiliary {
		channels = append(channels, Channel{Name: name, Role: RoleAuxiliary, Path: filepath.Join(dir, name+".jsonl")})
	}
	channels = append(channels, Channel{Name: FailureName, Role: RoleFailure, Path: filepath.Join(dir, FailureName+".jsonl")})
	return Set{Dir: dir, Channels: channels}
}

// Primary returns the primary channel.
func (s Set) Primary() Channel {
	for _, ch := range s.Channels {
		if ch.Role == RolePrimary {
			return ch
		}
	}
	return Channel{}
}

// Failure returns the failure channel.
func (s Set) Failure() Channel {
	for _, ch := range s.Channels {
		if ch.Role == RoleFailure {
			return ch
		}
	}
	return Channel{}
}

// Lookup finds a channel by name.
func (s Set) Lookup(name string) (Channel, bool) {
	for _, ch := range s.Channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// Exists reports whether any channel log is present on disk.
func (s Set) Exists() bool {
	for _, ch := range s.Channels {
		if _, err := os.Stat(ch.Path); err == nil {
			return true
		}
	}
	return false
}

// Remove deletes every channel log and consolidated artifact.
func (s Set) Remove() error {
	for _, ch := range s.Channels {
		if err := removeIfExists(ch.Path); err != nil {
			return err
		}
		if err := removeIfExists(ArtifactPath(ch.Path)); err != nil {
			return err
		}
	}
	return nil
}

// ResetFailures truncates the failure channel so it reflects only the
// current run segment.
func (s Set) ResetFailures() error {
	failure := s.Failure()
	if failure.Path == "" {
		return nil
	}
	return removeIfExists(failure.Path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Writers holds an open Log per channel.
type Writers struct {
	logs map[string]*Log
}

// Open opens a log for every channel in the set.
func (s Set) Open() (*Writers, error) {
	w := &Writers{logs: make(map[string]*Log, len(s.Channels))}
	for _, ch := range s.Channels {
		log, err := OpenLog(ch.Path)
		if err != nil {
			w.Close()
			return nil, err
		}
		w.logs[ch.Name] = log
	}
	return w, nil
}

// Append writes one record to the named channel.
func (w *Writers) Append(channel, id string, payload json.RawMessage) error {
	log, ok := w.logs[channel]
	if !ok {
		return &LogWriteError{Path: channel, ID: id, Err: fmt.Errorf("unknown channel %q", channel)}
	}
	return log.Append(id, payload)
}

// Close closes every log, returning the first error.
func (w *Writers) Close() error {
	var first error
	for _, log := range w.logs {
		if err := log.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildAll consolidates every channel in the set.
func (s Set) BuildAll() ([]Summary, error) {
	summaries := make([]Summary, 0, len(s.Channels))
	for _, ch := range s.Channels {
		_, summary, err := Build(ch)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
