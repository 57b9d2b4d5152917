package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"vlmbench/internal/itemid"
)

const maxLineBytes = 64 << 20

// ScanStats describes a pass over a channel log.
type ScanStats struct {
	Lines     int
	Records   int
	Malformed int
}

// ReadRecords calls fn for every (id, payload) pair in file order. A missing
// file yields no records. Lines that do not decode as a JSON object are
// counted as malformed and skipped.
func ReadRecords(path string, fn func(id string, payload json.RawMessage)) (ScanStats, error) {
	var stats ScanStats
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("open log %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := readFullLine(reader)
		if len(line) > 0 {
			stats.Lines++
			decodeLine(line, &stats, fn)
		}
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read log %s: %w", path, err)
		}
	}
}

func readFullLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := reader.ReadSlice('\n')
		line = append(line, chunk...)
		if err == bufio.ErrBufferFull {
			if len(line) > maxLineBytes {
				return nil, fmt.Errorf("line exceeds %d bytes", maxLineBytes)
			}
			continue
		}
		return bytes.TrimSpace(line), err
	}
}

func decodeLine(line []byte, stats *ScanStats, fn func(string, json.RawMessage)) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(line, &record); err != nil || record == nil {
		stats.Malformed++
		return
	}
	// Records written by Log hold exactly one key; tolerate more.
	ids := make([]string, 0, len(record))
	for id := range record {
		ids = append(ids, id)
	}
	itemid.Sort(ids)
	for _, id := range ids {
		stats.Records++
		fn(id, record[id])
	}
}

// ScanCompleted returns the ids whose latest record in path is a real
// payload. Ids whose latest record is a failure marker are not completed.
func ScanCompleted(path string) (itemid.Set, ScanStats, error) {
	latest := map[string]bool{}
	stats, err := ReadRecords(path, func(id string, payload json.RawMessage) {
		latest[id] = !IsFailure(payload)
	})
	if err != nil {
		return nil, stats, err
	}
	completed := itemid.NewSet()
	for id, ok := range latest {
		if ok {
			completed.Add(id)
		}
	}
	return completed, stats, nil
}
