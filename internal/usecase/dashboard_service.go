package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/domain/profile"
	"github.com/andriansah/cf-dashboard/internal/domain/submission"
	"github.com/andriansah/cf-dashboard/internal/platform/logging"
)

// CodeforcesClient is the slice of the API client the dashboard needs. The
// client caches responses internally, so repeated calls within the TTL are
// cheap.
type CodeforcesClient interface {
	FetchUserProfile(ctx context.Context, handle string) (profile.UserProfile, error)
	FetchRatingHistory(ctx context.Context, handle string) ([]profile.RatingChange, error)
	FetchSubmissions(ctx context.Context, handle string, from, count int) ([]submission.Submission, error)
	FetchContestList(ctx context.Context, includeGym bool) ([]contest.Contest, error)
}

// Dashboard bundles everything one dashboard load needs: the raw profile and
// rating history plus the derived statistics. PredictedRating is nil when the
// user has too few rated contests for a prediction.
type Dashboard struct {
	Profile         profile.UserProfile
	RatingHistory   []profile.RatingChange
	SubmissionCount int
	Stats           ProblemStats
	Streak          StreakInfo
	PredictedRating *int
}

type DashboardService struct {
	client   CodeforcesClient
	pageSize int
	logger   *logging.Logger
	now      func() time.Time
}

func NewDashboardService(client CodeforcesClient, pageSize int, logger *logging.Logger) *DashboardService {
	if logger == nil {
		logger = logging.Default()
	}
	if pageSize <= 0 {
		pageSize = 10000
	}
	return &DashboardService{
		client:   client,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// Load fetches profile, rating history, and submission log concurrently and
// derives the dashboard statistics from them. The three fetches share the
// client's rate limiter, so concurrency here overlaps waiting, not requests.
func (s *DashboardService) Load(ctx context.Context, handle string) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Load")
	defer span.End()

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return Dashboard{}, crerr.Mark(crerr.New("handle is required"), ErrInvalidInput)
	}

	var (
		userProfile profile.UserProfile
		history     []profile.RatingChange
		subs        []submission.Submission
	)

	fetches := pool.New().WithContext(ctx).WithCancelOnError()
	fetches.Go(func(ctx context.Context) error {
		fetched, err := s.client.FetchUserProfile(ctx, handle)
		if err != nil {
			return crerr.Wrap(err, "fetch user profile")
		}
		userProfile = fetched
		return nil
	})
	fetches.Go(func(ctx context.Context) error {
		fetched, err := s.client.FetchRatingHistory(ctx, handle)
		if err != nil {
			return crerr.Wrap(err, "fetch rating history")
		}
		history = fetched
		return nil
	})
	fetches.Go(func(ctx context.Context) error {
		fetched, err := s.client.FetchSubmissions(ctx, handle, 1, s.pageSize)
		if err != nil {
			return crerr.Wrap(err, "fetch submissions")
		}
		subs = fetched
		return nil
	})
	if err := fetches.Wait(); err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{
		Profile:         userProfile,
		RatingHistory:   history,
		SubmissionCount: len(subs),
		Stats:           CalculateProblemStats(subs),
		Streak:          CalculateStreak(subs, s.now()),
	}
	if predicted, ok := PredictRating(history); ok {
		dashboard.PredictedRating = &predicted
	}

	s.logger.DebugContext(ctx, "dashboard loaded",
		"handle", handle,
		"submissions", dashboard.SubmissionCount,
		"rated_contests", len(history),
	)
	return dashboard, nil
}

// Heatmap renders the activity calendar for the inclusive [start, end] day
// range. It refetches the submission log through the client, which serves it
// from cache on a warm dashboard.
func (s *DashboardService) Heatmap(ctx context.Context, handle string, start, end time.Time) ([]HeatmapCell, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Heatmap")
	defer span.End()

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, crerr.Mark(crerr.New("handle is required"), ErrInvalidInput)
	}
	if start.IsZero() || end.IsZero() {
		return nil, crerr.Mark(crerr.New("start and end dates are required"), ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, crerr.Mark(crerr.New("end date must not be before start date"), ErrInvalidInput)
	}

	subs, err := s.client.FetchSubmissions(ctx, handle, 1, s.pageSize)
	if err != nil {
		return nil, crerr.Wrap(err, "fetch submissions")
	}
	return GenerateHeatmap(subs, start, end), nil
}

// Contests lists rounds from the platform, optionally including gym contests.
func (s *DashboardService) Contests(ctx context.Context, includeGym bool) ([]contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Contests")
	defer span.End()

	contests, err := s.client.FetchContestList(ctx, includeGym)
	if err != nil {
		return nil, crerr.Wrap(err, "fetch contest list")
	}
	return contests, nil
}
