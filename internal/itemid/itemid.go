package itemid

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Width is the number of digits in a formatted item id.
const Width = 9

// MaxIndex is the largest index representable with Width digits.
const MaxIndex = 999_999_999

// ErrInvalidRange is returned when a range cannot be enumerated.
var ErrInvalidRange = errors.New("invalid id range")

// Format renders an index as a zero-padded item id.
func Format(index int) string {
	return fmt.Sprintf("%0*d", Width, index)
}

// Parse converts an item id back to its index.
func Parse(id string) (int, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return 0, fmt.Errorf("empty item id")
	}
	index, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse item id %q: %w", id, err)
	}
	if index < 0 {
		return 0, fmt.Errorf("item id %q is negative", id)
	}
	return index, nil
}

// Range is an inclusive span of item indices.
type Range struct {
	Start int
	End   int
}

// Validate rejects ranges that are reversed or out of bounds.
func (r Range) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("%w: bounds must be non-negative (start=%d end=%d)", ErrInvalidRange, r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d is greater than end %d", ErrInvalidRange, r.Start, r.End)
	}
	if r.End > MaxIndex {
		return fmt.Errorf("%w: end %d exceeds %d", ErrInvalidRange, r.End, MaxIndex)
	}
	return nil
}

// Len returns the number of ids in the range.
func (r Range) Len() int {
	if r.Start > r.End {
		return 0
	}
	return r.End - r.Start + 1
}

// IDs enumerates every id in the range in ascending order.
func (r Range) IDs() ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		ids = append(ids, Format(i))
	}
	return ids, nil
}

// Contains reports whether the id falls within the range.
func (r Range) Contains(id string) bool {
	index, err := Parse(id)
	if err != nil {
		return false
	}
	return index >= r.Start && index <= r.End
}

// String renders the range as start..end.
func (r Range) String() string {
	return fmt.Sprintf("%s..%s", Format(r.Start), Format(r.End))
}

// Less orders ids numerically. Ids that do not parse sort after numeric ids,
// lexically among themselves.
func Less(a, b string) bool {
	ai, aerr := Parse(a)
	bi, berr := Parse(b)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// Sort orders ids numerically in place.
func Sort(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return Less(ids[i], ids[j]) })
}

// Set is an unordered collection of ids.
type Set map[string]struct{}

// NewSet builds a set from the given ids.
func NewSet(ids ...string) Set {
	set := make(Set, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add inserts an id.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in numeric order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	Sort(ids)
	return ids
}
