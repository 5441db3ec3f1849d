package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/andriansah/cf-dashboard/internal/domain/submission"
)

func makeSubmission(id int64, contestID int, index string, verdict submission.Verdict, rating int, tags ...string) submission.Submission {
	return submission.Submission{
		ID:        id,
		CreatedAt: time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC),
		Verdict:   verdict,
		Language:  "GNU C++20",
		Problem: submission.Problem{
			ContestID: contestID,
			Index:     index,
			Name:      "problem " + index,
			Rating:    rating,
			Tags:      tags,
		},
	}
}

func TestCalculateProblemStats_Empty(t *testing.T) {
	t.Parallel()

	stats := CalculateProblemStats(nil)

	if stats.Total != 0 || stats.Solved != 0 || stats.Attempted != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if len(stats.ByDifficulty) != 0 {
		t.Fatalf("expected empty difficulty map, got %v", stats.ByDifficulty)
	}
	if len(stats.ByTag) != 0 {
		t.Fatalf("expected empty tag map, got %v", stats.ByTag)
	}
}

func TestCalculateProblemStats_RetryThenAcceptCountsOnce(t *testing.T) {
	t.Parallel()

	subs := []submission.Submission{
		makeSubmission(1, 1700, "A", submission.VerdictWrongAnswer, 800, "math"),
		makeSubmission(2, 1700, "A", submission.VerdictOK, 800, "math"),
	}

	stats := CalculateProblemStats(subs)

	if stats.Total != 1 || stats.Attempted != 1 {
		t.Fatalf("retried problem must group to one key, got %+v", stats)
	}
	if stats.Solved != 1 {
		t.Fatalf("problem with a later accept must count as solved, got %d", stats.Solved)
	}
}

func TestCalculateProblemStats_TagAccuracy(t *testing.T) {
	t.Parallel()

	subs := []submission.Submission{
		makeSubmission(1, 100, "A", submission.VerdictOK, 1200, "dp"),
		makeSubmission(2, 100, "B", submission.VerdictWrongAnswer, 1400, "dp"),
		makeSubmission(3, 101, "C", submission.VerdictTimeLimit, 1600, "dp"),
	}

	stats := CalculateProblemStats(subs)

	entry, ok := stats.ByTag["dp"]
	if !ok {
		t.Fatalf("dp tag missing: %v", stats.ByTag)
	}
	if entry.Solved != 1 || entry.Total != 3 {
		t.Fatalf("expected 1/3 for dp, got %+v", entry)
	}
	if math.Abs(entry.Accuracy-100.0/3.0) > 1e-9 {
		t.Fatalf("expected accuracy 33.33, got %f", entry.Accuracy)
	}
	if entry.Solved > entry.Total {
		t.Fatalf("solved exceeds total: %+v", entry)
	}
}

func TestCalculateProblemStats_DifficultyCountsAcceptedSubmissions(t *testing.T) {
	t.Parallel()

	subs := []submission.Submission{
		makeSubmission(1, 100, "A", submission.VerdictOK, 800),
		makeSubmission(2, 100, "B", submission.VerdictOK, 800),
		makeSubmission(3, 100, "C", submission.VerdictWrongAnswer, 1900),
		makeSubmission(4, 100, "D", submission.VerdictOK, 0),
	}

	stats := CalculateProblemStats(subs)

	if got := stats.ByDifficulty[800]; got != 2 {
		t.Fatalf("expected 2 accepted at rating 800, got %d", got)
	}
	if got, exists := stats.ByDifficulty[1900]; !exists || got != 0 {
		t.Fatalf("unsolved rated attempt must produce a zero entry, got %v", stats.ByDifficulty)
	}
	if _, exists := stats.ByDifficulty[0]; exists {
		t.Fatalf("unrated problems must be excluded from the difficulty breakdown: %v", stats.ByDifficulty)
	}
	if stats.Solved != 3 || stats.Total != 4 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
}

func TestCalculateProblemStats_DifficultyCountsRepeatAccepts(t *testing.T) {
	t.Parallel()

	subs := []submission.Submission{
		makeSubmission(1, 1700, "A", submission.VerdictOK, 800, "math"),
		makeSubmission(2, 1700, "A", submission.VerdictOK, 800, "math"),
	}

	stats := CalculateProblemStats(subs)

	if got := stats.ByDifficulty[800]; got != 2 {
		t.Fatalf("two accepts on one problem must count twice in the histogram, got %d", got)
	}
	if stats.Total != 1 || stats.Solved != 1 {
		t.Fatalf("problem-level totals must still dedupe by key: %+v", stats)
	}
}

func TestCalculateProblemStats_PracticeProblemsShareOneKey(t *testing.T) {
	t.Parallel()

	subs := []submission.Submission{
		makeSubmission(1, 0, "A", submission.VerdictWrongAnswer, 900, "greedy"),
		makeSubmission(2, 0, "A", submission.VerdictOK, 900, "greedy"),
	}

	stats := CalculateProblemStats(subs)

	if stats.Total != 1 {
		t.Fatalf("contest-less submissions for one problem must not split, got total=%d", stats.Total)
	}
	if stats.Solved != 1 {
		t.Fatalf("expected solved=1, got %d", stats.Solved)
	}
}
