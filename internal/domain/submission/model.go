package submission

import (
	"strconv"
	"strings"
	"time"
)

// Verdict is the judge outcome for one submission attempt.
type Verdict string

const (
	VerdictOK                Verdict = "OK"
	VerdictWrongAnswer       Verdict = "WRONG_ANSWER"
	VerdictTimeLimit         Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictMemoryLimit       Verdict = "MEMORY_LIMIT_EXCEEDED"
	VerdictRuntimeError      Verdict = "RUNTIME_ERROR"
	VerdictCompilationError  Verdict = "COMPILATION_ERROR"
	VerdictChallenged        Verdict = "CHALLENGED"
	VerdictSkipped           Verdict = "SKIPPED"
	VerdictTesting           Verdict = "TESTING"
	VerdictPartial           Verdict = "PARTIAL"
	VerdictIdlenessLimit     Verdict = "IDLENESS_LIMIT_EXCEEDED"
	VerdictPresentationError Verdict = "PRESENTATION_ERROR"
)

// Solved reports whether the verdict counts as a full accepted solution.
func (v Verdict) Solved() bool {
	return v == VerdictOK
}

// Pending reports whether judging has not finished yet.
func (v Verdict) Pending() bool {
	return v == VerdictTesting || v == ""
}

// practiceContestKey is the sentinel used for problems that are not attached
// to any contest (problemset/practice archive entries). Every representation
// of "no contest id" must collapse to this value so a problem's submissions
// are never split across two identity keys.
const practiceContestKey = "practice"

// Problem references one judged problem. ContestID 0 means the problem has no
// owning contest; Rating 0 means the problem is unrated.
type Problem struct {
	ContestID int
	Index     string
	Name      string
	Rating    int
	Tags      []string
}

// Key returns the canonical problem identity key: "<contestID>-<index>", with
// the practice sentinel substituted when no contest id is present.
func (p Problem) Key() string {
	contest := practiceContestKey
	if p.ContestID > 0 {
		contest = strconv.Itoa(p.ContestID)
	}
	return contest + "-" + strings.TrimSpace(p.Index)
}

// Submission is one judge verdict for one attempt at one problem.
type Submission struct {
	ID        int64
	CreatedAt time.Time
	Verdict   Verdict
	Language  string
	Problem   Problem
}
