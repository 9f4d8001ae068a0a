package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/refinery/internal/shared"
)

// Plausible bounds for a user-entered cutoff year.
const (
	MinPlausibleYear = 1900
	MaxPlausibleYear = 2100
)

// PickMode is the interpretation of the indexes in a [Picks].
type PickMode int

const (
	// KeepAll leaves every member of the group in place.
	KeepAll PickMode = iota
	// KeepListed keeps the listed members and deletes the rest.
	KeepListed
	// RemoveListed deletes exactly the listed members.
	RemoveListed
)

// Picks is a parsed duplicate-group selection: which members to keep or
// remove, as 1-based indexes into the displayed group.
type Picks struct {
	Mode    PickMode
	Indexes []int
}

// Removals resolves the selection to the set of 1-based indexes that should
// be removed from a group of the given size.
func (p Picks) Removals(size int) []int {
	switch p.Mode {
	case RemoveListed:
		return p.Indexes
	case KeepListed:
		keep := make(map[int]bool, len(p.Indexes))
		for _, i := range p.Indexes {
			keep[i] = true
		}
		var removed []int
		for i := 1; i <= size; i++ {
			if !keep[i] {
				removed = append(removed, i)
			}
		}
		return removed
	default:
		return nil
	}
}

// ParsePicks parses a duplicate-group selection for a group of the given
// size. Plain numbers ("2", "1,3") name the members to keep; a leading '-'
// ("-2,3") names the members to remove; empty input keeps everything.
func ParsePicks(input string, size int) (Picks, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Picks{Mode: KeepAll}, nil
	}

	mode := KeepListed
	if strings.HasPrefix(input, "-") {
		mode = RemoveListed
		input = input[1:]
	}

	indexes, err := ParseIndexes(input, size)
	if err != nil {
		return Picks{}, err
	}
	if len(indexes) == 0 {
		return Picks{Mode: KeepAll}, nil
	}
	return Picks{Mode: mode, Indexes: indexes}, nil
}

// ParseIndexes parses a comma-separated list of 1-based indexes, validating
// each against max. The result is deduplicated and sorted ascending.
func ParseIndexes(input string, max int) ([]int, error) {
	seen := make(map[int]bool)
	var indexes []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidInput, part)
		}
		if n < 1 || n > max {
			return nil, fmt.Errorf("%w: %d is out of range 1-%d", shared.ErrInvalidInput, n, max)
		}
		if !seen[n] {
			seen[n] = true
			indexes = append(indexes, n)
		}
	}

	sort.Ints(indexes)
	return indexes, nil
}
