package tasks

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/itemid"
)

// Counter is incremented each time the token-scan fallback is used.
type Counter interface {
	Inc()
}

// CategoryStats summarizes a category derivation.
type CategoryStats struct {
	Items     int
	Fallbacks int
	Failures  int
}

var categoryToken = regexp.MustCompile(`\bC(1[0-8]|[1-9])\b`)

// TokenScanFallback recovers category codes from a generation payload whose
// shape could not be read, by scanning its text for whole C1..C18 tokens.
func TokenScanFallback(payload json.RawMessage) []string {
	seen := map[string]bool{}
	var codes []string
	for _, code := range categoryToken.FindAllString(string(payload), -1) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sortCodes(codes)
	return codes
}

// DeriveCategories turns a generation/classification artifact into the
// sorted category codes per id. Failure markers are left out. Entries whose
// shape is not a list of {"id": ...} objects go through TokenScanFallback,
// which is logged and counted on fallbacks when it is non-nil.
func DeriveCategories(artifact map[string]json.RawMessage, logger *slog.Logger, fallbacks Counter) (checkpoint.Artifact, CategoryStats) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats CategoryStats
	ids := make([]string, 0, len(artifact))
	for id := range artifact {
		ids = append(ids, id)
	}
	itemid.Sort(ids)

	out := checkpoint.Artifact{Entries: make([]checkpoint.Entry, 0, len(ids))}
	for _, id := range ids {
		payload := artifact[id]
		if checkpoint.IsFailure(payload) {
			stats.Failures++
			continue
		}
		codes, ok := readCategoryList(payload)
		if !ok {
			codes = TokenScanFallback(payload)
			stats.Fallbacks++
			if fallbacks != nil {
				fallbacks.Inc()
			}
			logger.Warn("category list unreadable, scanned for tokens", "id", id, "found", len(codes))
		}
		if codes == nil {
			codes = []string{}
		}
		encoded, _ := json.Marshal(codes)
		out.Entries = append(out.Entries, checkpoint.Entry{ID: id, Payload: encoded})
		stats.Items++
	}
	return out, stats
}

// readCategoryList reads [{"id": "C1"}, ...]. Nested lists of such objects,
// null entries and string entries are tolerated; an object without "id"
// falls back to its "1" key.
func readCategoryList(payload json.RawMessage) ([]string, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, false
	}
	seen := map[string]bool{}
	var codes []string
	add := func(raw json.RawMessage) bool {
		code, ok := categoryCode(raw)
		if !ok {
			return false
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
		return true
	}
	for _, entry := range entries {
		trimmed := strings.TrimSpace(string(entry))
		switch {
		case trimmed == "null" || strings.HasPrefix(trimmed, `"`):
			continue
		case strings.HasPrefix(trimmed, "["):
			var nested []json.RawMessage
			if err := json.Unmarshal(entry, &nested); err != nil {
				return nil, false
			}
			for _, inner := range nested {
				if !add(inner) {
					return nil, false
				}
			}
		default:
			if !add(entry) {
				return nil, false
			}
		}
	}
	sortCodes(codes)
	return codes, true
}

func categoryCode(raw json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return "", false
	}
	for _, key := range []string{"id", "1"} {
		value, ok := obj[key]
		if !ok {
			continue
		}
		var code string
		if err := json.Unmarshal(value, &code); err != nil {
			return "", false
		}
		return code, true
	}
	return "", false
}

func sortCodes(codes []string) {
	sort.SliceStable(codes, func(i, j int) bool {
		a, aok := codeNumber(codes[i])
		b, bok := codeNumber(codes[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return codes[i] < codes[j]
		}
	})
}

func codeNumber(code string) (int, bool) {
	if len(code) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(code[1:])
	return n, err == nil
}
