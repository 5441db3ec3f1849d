package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/domain/profile"
	"github.com/andriansah/cf-dashboard/internal/platform/logging"
)

const (
	defaultPerformanceWorkers  = 4
	defaultPerformanceContests = 10
)

// StandingsClient is the slice of the API client the performance service
// needs.
type StandingsClient interface {
	FetchRatingHistory(ctx context.Context, handle string) ([]profile.RatingChange, error)
	FetchContestStandings(ctx context.Context, contestID int, handles []string) (contest.Standings, error)
}

// ContestPerformance is one attended contest enriched with the user's
// scoreboard row. Points and SolvedCount are zero when the standings fetch
// for that contest failed or the user's row was missing.
type ContestPerformance struct {
	ContestID      int
	ContestName    string
	Rank           int
	OldRating      int
	NewRating      int
	Delta          int
	Points         float64
	SolvedCount    int
	StandingsError string
	ParticipatedAt time.Time
}

// PerformanceReport covers the user's most recent rated contests, newest
// first.
type PerformanceReport struct {
	Handle         string
	Rows           []ContestPerformance
	FailedContests int
}

type PerformanceService struct {
	client      StandingsClient
	maxWorkers  int
	maxContests int
	logger      *logging.Logger
}

func NewPerformanceService(client StandingsClient, maxWorkers, maxContests int, logger *logging.Logger) *PerformanceService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = defaultPerformanceWorkers
	}
	if maxContests < 1 {
		maxContests = defaultPerformanceContests
	}
	return &PerformanceService{
		client:      client,
		maxWorkers:  maxWorkers,
		maxContests: maxContests,
		logger:      logger,
	}
}

// Recent fans standings lookups for the user's latest rated contests out over
// a bounded worker pool. limit caps how many contests are covered; zero or
// anything above the configured maximum falls back to the maximum. A failed
// standings fetch degrades that row to rating data only instead of failing the
// whole report, since standings for old rounds occasionally disappear
// upstream.
func (s *PerformanceService) Recent(ctx context.Context, handle string, limit int) (PerformanceReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PerformanceService.Recent")
	defer span.End()

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return PerformanceReport{}, crerr.Mark(crerr.New("handle is required"), ErrInvalidInput)
	}

	history, err := s.client.FetchRatingHistory(ctx, handle)
	if err != nil {
		return PerformanceReport{}, crerr.Wrap(err, "fetch rating history")
	}

	report := PerformanceReport{Handle: handle}
	if len(history) == 0 {
		return report, nil
	}

	if limit < 1 || limit > s.maxContests {
		limit = s.maxContests
	}
	recent := history
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	rows := make([]ContestPerformance, len(recent))
	for i, change := range recent {
		rows[i] = ContestPerformance{
			ContestID:      change.ContestID,
			ContestName:    change.ContestName,
			Rank:           change.Rank,
			OldRating:      change.OldRating,
			NewRating:      change.NewRating,
			Delta:          change.Delta(),
			ParticipatedAt: change.UpdatedAt,
		}
	}

	workerCount := s.maxWorkers
	if workerCount > len(rows) {
		workerCount = len(rows)
	}
	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return PerformanceReport{}, crerr.Wrap(err, "create worker pool")
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for i := range rows {
		i := i
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			s.hydrateStandingsRow(ctx, handle, &rows[i])
		}); err != nil {
			workers.Done()
			return PerformanceReport{}, crerr.Wrap(err, "submit standings lookup")
		}
	}
	workers.Wait()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ParticipatedAt.After(rows[j].ParticipatedAt)
	})

	for _, row := range rows {
		if row.StandingsError != "" {
			report.FailedContests++
		}
	}
	report.Rows = rows
	return report, nil
}

func (s *PerformanceService) hydrateStandingsRow(ctx context.Context, handle string, row *ContestPerformance) {
	standings, err := s.client.FetchContestStandings(ctx, row.ContestID, []string{handle})
	if err != nil {
		row.StandingsError = err.Error()
		s.logger.WarnContext(ctx, "standings lookup failed, keeping rating-only row",
			"handle", handle,
			"contest_id", row.ContestID,
			"error", err,
		)
		return
	}

	for _, standingsRow := range standings.Rows {
		if !strings.EqualFold(standingsRow.Handle, handle) {
			continue
		}
		row.Points = standingsRow.Points
		row.SolvedCount = standingsRow.SolvedCount()
		if standingsRow.Rank > 0 {
			row.Rank = standingsRow.Rank
		}
		return
	}
}
