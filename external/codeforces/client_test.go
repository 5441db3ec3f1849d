package codeforces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/andriansah/cf-dashboard/internal/platform/resilience"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

func newTestClient(t *testing.T, handler http.Handler, cacheTTL time.Duration) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:         server.Client(),
		BaseURL:            server.URL,
		CacheTTL:           cacheTTL,
		MinRequestInterval: -1,
		CircuitBreaker:     resilience.CircuitBreakerConfig{Enabled: false},
	})
	return client, server
}

func TestNewClient_ZeroIntervalMeansDefaultSpacing(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	if got := client.limiter.Interval(); got != defaultMinRequestInterval {
		t.Fatalf("zero-value config must keep the default request spacing, got %s", got)
	}

	client = NewClient(ClientConfig{MinRequestInterval: -1})
	if got := client.limiter.Interval(); got != 0 {
		t.Fatalf("negative interval must disable spacing, got %s", got)
	}
}

func TestClient_FetchUserProfile(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/user.info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("handles"); got != "tourist" {
			t.Errorf("unexpected handles param %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","rating":3889,"maxRating":4009,"rank":"legendary grandmaster","registrationTimeSeconds":1265987288}]}`))
	}), time.Minute)

	got, err := client.FetchUserProfile(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Handle != "tourist" || got.Rating != 3889 || got.MaxRating != 4009 {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if got.RegisteredAt != time.Unix(1265987288, 0).UTC() {
		t.Fatalf("unexpected registration time: %v", got.RegisteredAt)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestClient_CacheServesRepeatCallsWithoutNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"OK","result":[{"contestId":1,"contestName":"Codeforces Beta Round #1","rank":3,"ratingUpdateTimeSeconds":1266588000,"oldRating":0,"newRating":1602}]}`))
	}), time.Minute)

	ctx := context.Background()
	first, err := client.FetchRatingHistory(ctx, "tourist")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := client.FetchRatingHistory(ctx, "tourist")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
	if first[0].Delta() != 1602 {
		t.Fatalf("unexpected delta %d", first[0].Delta())
	}
}

func TestClient_CacheExpiryTriggersRefetch(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"OK","result":[]}`))
	}), 30*time.Millisecond)

	ctx := context.Background()
	if _, err := client.FetchRatingHistory(ctx, "tourist"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := client.FetchRatingHistory(ctx, "tourist"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if hits.Load() != 2 {
		t.Fatalf("expected refetch after TTL, got %d upstream hits", hits.Load())
	}
}

func TestClient_ClearCacheForcesRefetch(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"OK","result":[]}`))
	}), time.Minute)

	ctx := context.Background()
	if _, err := client.FetchSubmissions(ctx, "tourist", 1, 100); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if stats := client.CacheStats(ctx); stats.Size != 1 {
		t.Fatalf("expected 1 cache entry, got %d", stats.Size)
	}

	client.ClearCache(ctx)
	if stats := client.CacheStats(ctx); stats.Size != 0 {
		t.Fatalf("expected empty cache after flush, got %d entries", stats.Size)
	}

	if _, err := client.FetchSubmissions(ctx, "tourist", 1, 100); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected refetch after flush, got %d upstream hits", hits.Load())
	}
}

func TestClient_FailedEnvelopeIsNotCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle missing_user not found"}`))
	}), time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.FetchUserProfile(ctx, "missing_user")
		if !crerr.Is(err, usecase.ErrNotFound) {
			t.Fatalf("call %d: expected not-found classification, got %v", i, err)
		}
	}

	if hits.Load() != 2 {
		t.Fatalf("failed responses must not be cached, got %d upstream hits", hits.Load())
	}
	if stats := client.CacheStats(ctx); stats.Size != 0 {
		t.Fatalf("expected empty cache, got %d entries", stats.Size)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		sentinel error
	}{
		{
			name: "failed envelope without not-found comment",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"FAILED","comment":"Call limit exceeded"}`))
			},
			sentinel: usecase.ErrRemoteRejected,
		},
		{
			name: "non-envelope server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream exploded"))
			},
			sentinel: usecase.ErrTransport,
		},
		{
			name: "malformed envelope on success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>definitely not json</html>`))
			},
			sentinel: usecase.ErrTransport,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, tc.handler, time.Minute)
			_, err := client.FetchUserProfile(context.Background(), "tourist")
			if !crerr.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestClient_EmptyHandleRejectedLocally(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}), time.Minute)

	ctx := context.Background()
	if _, err := client.FetchUserProfile(ctx, "  "); !crerr.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := client.FetchRatingHistory(ctx, ""); !crerr.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := client.FetchSubmissions(ctx, "", 1, 10); !crerr.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := client.FetchContestStandings(ctx, 0, nil); !crerr.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("local validation must not reach upstream, got %d hits", hits.Load())
	}
}

func TestClient_SubmissionsPaginationPassthrough(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("from"); got != "11" {
			t.Errorf("unexpected from param %q", got)
		}
		if got := query.Get("count"); got != "50" {
			t.Errorf("unexpected count param %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[{"id":42,"creationTimeSeconds":1700000000,"verdict":"OK","programmingLanguage":"GNU C++20","problem":{"contestId":1700,"index":"A","name":"Two Chess Pieces","rating":800,"tags":["math"]}}]}`))
	}), time.Minute)

	subs, err := client.FetchSubmissions(context.Background(), "tourist", 11, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	if subs[0].Problem.Key() != "1700-A" {
		t.Fatalf("unexpected problem key %q", subs[0].Problem.Key())
	}
	if !subs[0].Verdict.Solved() {
		t.Fatalf("OK verdict should count as solved")
	}
}

func TestClient_DefaultPageSizeApplied(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "10000" {
			t.Errorf("unexpected count param %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "1" {
			t.Errorf("unexpected from param %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[]}`))
	}), time.Minute)

	if _, err := client.FetchSubmissions(context.Background(), "tourist", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_StandingsAreNeverCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"OK","result":{"contest":{"id":1700,"name":"Codeforces Round 802","type":"CF","phase":"FINISHED"},"rows":[{"party":{"members":[{"handle":"tourist"}]},"rank":1,"points":5000,"penalty":0,"problemResults":[{"points":500,"rejectedAttemptCount":0}]}]}}`))
	}), time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		standings, err := client.FetchContestStandings(ctx, 1700, []string{"tourist"})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(standings.Rows) != 1 || standings.Rows[0].Handle != "tourist" {
			t.Fatalf("call %d: unexpected standings %+v", i, standings)
		}
	}

	if hits.Load() != 2 {
		t.Fatalf("standings must bypass the cache, got %d upstream hits", hits.Load())
	}
	if stats := client.CacheStats(ctx); stats.Size != 0 {
		t.Fatalf("standings must not populate the cache, got %d entries", stats.Size)
	}
}

func TestClient_ContestListPassesGymFlag(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("gym"); got != "true" {
			t.Errorf("unexpected gym param %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[{"id":1,"name":"Codeforces Beta Round #1","type":"CF","phase":"FINISHED","durationSeconds":7200,"startTimeSeconds":1266580800}]}`))
	}), time.Minute)

	contests, err := client.FetchContestList(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contests) != 1 || contests[0].Duration != 2*time.Hour {
		t.Fatalf("unexpected contests: %+v", contests)
	}
}
