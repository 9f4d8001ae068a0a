package review

import (
	"sort"

	"github.com/desertthunder/refinery/internal/models"
)

// DuplicateDurationThresholdMS is the maximum length difference between two
// grouped tracks for the later one to qualify as an automatic cleanup
// candidate.
const DuplicateDurationThresholdMS = 3000

// Group is a set of two or more tracks judged to be the same underlying
// song by [KeyFor]. Members are ordered by ascending playlist position.
type Group struct {
	Key    Key
	Tracks []models.Track
}

// GroupDuplicates partitions a playlist snapshot into duplicate groups.
//
// Groups appear in the order their first member appears in the playlist and
// only groups with two or more members are returned; every input track lands
// in at most one group. Matching is a heuristic, so callers present each
// group for confirmation rather than deleting automatically.
func GroupDuplicates(tracks []models.Track) []Group {
	var order []Key
	members := make(map[Key][]models.Track)

	for _, t := range tracks {
		key := KeyFor(t)
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = append(members[key], t)
	}

	var groups []Group
	for _, key := range order {
		grouped := members[key]
		if len(grouped) < 2 {
			continue
		}
		sort.SliceStable(grouped, func(i, j int) bool {
			return grouped[i].Position < grouped[j].Position
		})
		groups = append(groups, Group{Key: key, Tracks: grouped})
	}

	return groups
}

// AutoCandidate pairs a track proposed for automatic removal with the
// earlier occurrence that would be kept in its place.
type AutoCandidate struct {
	Remove models.Track
	KeepAs models.Track
}

// AutoCandidates proposes removals within duplicate groups based on track
// length: the earliest occurrence in each group is the base, and later
// members whose duration differs from the base by at most thresholdMS are
// flagged. Tracks without duration data are never proposed. Candidates are
// suggestions only; nothing is removed without user confirmation.
func AutoCandidates(groups []Group, thresholdMS int) []AutoCandidate {
	if thresholdMS <= 0 {
		thresholdMS = DuplicateDurationThresholdMS
	}

	var candidates []AutoCandidate
	for _, group := range groups {
		base := group.Tracks[0]
		if base.DurationMS <= 0 {
			continue
		}

		for _, t := range group.Tracks[1:] {
			if t.DurationMS <= 0 {
				continue
			}
			diff := t.DurationMS - base.DurationMS
			if diff < 0 {
				diff = -diff
			}
			if diff <= thresholdMS {
				candidates = append(candidates, AutoCandidate{Remove: t, KeepAs: base})
			}
		}
	}

	return candidates
}
