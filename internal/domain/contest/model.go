package contest

import "time"

// Contest phases as reported by the platform.
const (
	PhaseBefore   = "BEFORE"
	PhaseCoding   = "CODING"
	PhaseFinished = "FINISHED"
)

// Contest describes one scheduled or finished round.
type Contest struct {
	ID       int
	Name     string
	Type     string
	Phase    string
	Frozen   bool
	Duration time.Duration
	StartsAt time.Time
}

// ProblemResult is one participant's outcome on a single problem inside a
// standings row.
type ProblemResult struct {
	Points           float64
	RejectedAttempts int
}

// StandingsRow ranks one party in a contest.
type StandingsRow struct {
	Rank    int
	Handle  string
	Points  float64
	Penalty int
	Results []ProblemResult
}

// Standings is a slice of a contest scoreboard. Standings are eventually
// consistent on the remote side, so they are never cached.
type Standings struct {
	Contest Contest
	Rows    []StandingsRow
}

// SolvedCount counts fully solved problems in one row.
func (r StandingsRow) SolvedCount() int {
	solved := 0
	for _, result := range r.Results {
		if result.Points > 0 {
			solved++
		}
	}
	return solved
}
