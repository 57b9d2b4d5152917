package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

const runIDSuffixBytes = 4

// NewRunID returns a run id that sorts by start time, e.g.
// 20240102T030405Z-1a2b3c4d. It tags log lines and exported rows.
func NewRunID() (string, error) {
	return newRunID(time.Now(), rand.Reader)
}

func newRunID(now time.Time, r io.Reader) (string, error) {
	buf := make([]byte, runIDSuffixBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	return now.UTC().Format("20060102T150405Z") + "-" + hex.EncodeToString(buf), nil
}
