package usecase

import (
	"github.com/andriansah/cf-dashboard/internal/domain/submission"
)

// TagStats aggregates attempts on one problem tag. Solved and Total count
// distinct problems, not submissions.
type TagStats struct {
	Solved   int
	Total    int
	Accuracy float64
}

// ProblemStats is the per-user breakdown of every problem the user has
// touched. Attempted equals Total: every grouped problem key had at least one
// submission by construction.
type ProblemStats struct {
	Total        int
	Solved       int
	Attempted    int
	ByDifficulty map[int]int
	ByTag        map[string]TagStats
}

// CalculateProblemStats groups submissions by problem identity key. A problem
// counts as solved when any of its submissions has the accepted verdict.
// ByDifficulty counts accepted submissions per rating bucket: every rated
// attempt creates its bucket, so an unsolved rated problem shows up as a zero
// entry. Unrated problems are excluded from that breakdown.
func CalculateProblemStats(subs []submission.Submission) ProblemStats {
	type problemState struct {
		solved bool
		rating int
		tags   []string
	}

	stats := ProblemStats{
		ByDifficulty: make(map[int]int),
		ByTag:        make(map[string]TagStats),
	}

	byKey := make(map[string]*problemState, len(subs))
	for _, sub := range subs {
		key := sub.Problem.Key()
		state, ok := byKey[key]
		if !ok {
			state = &problemState{
				rating: sub.Problem.Rating,
				tags:   sub.Problem.Tags,
			}
			byKey[key] = state
		}
		if sub.Verdict.Solved() {
			state.solved = true
		}
		if state.rating == 0 && sub.Problem.Rating > 0 {
			state.rating = sub.Problem.Rating
		}
		if len(state.tags) == 0 && len(sub.Problem.Tags) > 0 {
			state.tags = sub.Problem.Tags
		}

		if rating := sub.Problem.Rating; rating > 0 {
			count := stats.ByDifficulty[rating]
			if sub.Verdict.Solved() {
				count++
			}
			stats.ByDifficulty[rating] = count
		}
	}

	stats.Total = len(byKey)
	stats.Attempted = len(byKey)

	for _, state := range byKey {
		if state.solved {
			stats.Solved++
		}
		for _, tag := range state.tags {
			entry := stats.ByTag[tag]
			entry.Total++
			if state.solved {
				entry.Solved++
			}
			stats.ByTag[tag] = entry
		}
	}

	for tag, entry := range stats.ByTag {
		if entry.Total > 0 {
			entry.Accuracy = float64(entry.Solved) / float64(entry.Total) * 100
		}
		stats.ByTag[tag] = entry
	}

	return stats
}
