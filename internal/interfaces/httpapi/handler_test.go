package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/domain/profile"
	"github.com/andriansah/cf-dashboard/internal/infrastructure/settings"
	"github.com/andriansah/cf-dashboard/internal/platform/cache"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

type fakeDashboardProvider struct {
	dashboard    usecase.Dashboard
	dashboardErr error
	cells        []usecase.HeatmapCell
	cellsErr     error
	contests     []contest.Contest
	contestsErr  error
}

func (f *fakeDashboardProvider) Load(_ context.Context, handle string) (usecase.Dashboard, error) {
	return f.dashboard, f.dashboardErr
}

func (f *fakeDashboardProvider) Heatmap(_ context.Context, handle string, start, end time.Time) ([]usecase.HeatmapCell, error) {
	return f.cells, f.cellsErr
}

func (f *fakeDashboardProvider) Contests(_ context.Context, includeGym bool) ([]contest.Contest, error) {
	return f.contests, f.contestsErr
}

type fakePerformanceProvider struct {
	report usecase.PerformanceReport
	err    error
}

func (f *fakePerformanceProvider) Recent(_ context.Context, handle string, limit int) (usecase.PerformanceReport, error) {
	return f.report, f.err
}

type fakeCacheController struct {
	cleared bool
	stats   cache.Stats
}

func (f *fakeCacheController) ClearCache(_ context.Context) { f.cleared = true }

func (f *fakeCacheController) CacheStats(_ context.Context) cache.Stats { return f.stats }

func newTestRouter(t *testing.T, dashboards *fakeDashboardProvider, performance *fakePerformanceProvider, cacheCtl *fakeCacheController) http.Handler {
	t.Helper()

	store, err := settings.NewStore("")
	if err != nil {
		t.Fatalf("create settings store: %v", err)
	}
	handler := NewHandler(dashboards, performance, store, cacheCtl, nil)
	return NewRouter(handler, nil, nil)
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, &fakeCacheController{})
	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_GetDashboard(t *testing.T) {
	t.Parallel()

	predicted := 1625
	dashboards := &fakeDashboardProvider{
		dashboard: usecase.Dashboard{
			Profile:         profile.UserProfile{Handle: "tourist", Rating: 3800},
			SubmissionCount: 12,
			PredictedRating: &predicted,
		},
	}
	router := newTestRouter(t, dashboards, &fakePerformanceProvider{}, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodGet, "/v1/dashboard?handle=tourist", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data dashboardDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Profile.Handle != "tourist" || envelope.Data.SubmissionCount != 12 {
		t.Fatalf("unexpected dashboard payload: %+v", envelope.Data)
	}
	if envelope.Data.PredictedRating == nil || *envelope.Data.PredictedRating != 1625 {
		t.Fatalf("expected predicted rating 1625, got %+v", envelope.Data.PredictedRating)
	}
}

func TestRouter_GetDashboardRequiresHandle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, &fakeCacheController{})
	rec := doRequest(t, router, http.MethodGet, "/v1/dashboard", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_GetDashboardMapsNotFound(t *testing.T) {
	t.Parallel()

	dashboards := &fakeDashboardProvider{
		dashboardErr: crerr.Mark(crerr.New("handle unknown"), usecase.ErrNotFound),
	}
	router := newTestRouter(t, dashboards, &fakePerformanceProvider{}, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodGet, "/v1/dashboard?handle=missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_GetHeatmapRejectsBadDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, &fakeCacheController{})
	rec := doRequest(t, router, http.MethodGet, "/v1/heatmap?handle=tourist&from=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_GetHeatmap(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	dashboards := &fakeDashboardProvider{
		cells: []usecase.HeatmapCell{{Date: day, Count: 4, Level: 2}},
	}
	router := newTestRouter(t, dashboards, &fakePerformanceProvider{}, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodGet, "/v1/heatmap?handle=tourist&from=2026-06-01&to=2026-06-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []heatmapCellDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Date != "2026-06-01" || envelope.Data[0].Level != 2 {
		t.Fatalf("unexpected heatmap payload: %+v", envelope.Data)
	}
}

func TestRouter_SettingsLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodPut, "/v1/settings/handle", `{"handle":"tourist"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set handle: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/settings/theme", `{"theme":"dark"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set theme: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/settings/contests/1700/attendance", `{"attended":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set attendance: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings: expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data settingsDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Handle != "tourist" || envelope.Data.Theme != "dark" || !envelope.Data.AttendedContests[1700] {
		t.Fatalf("unexpected settings: %+v", envelope.Data)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/settings/handle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear handle: expected 200, got %d", rec.Code)
	}
}

func TestRouter_SettingsValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodPut, "/v1/settings/theme", `{"theme":"neon"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown theme: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/settings/handle", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing handle: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/settings/contests/zero/attendance", `{"attended":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad contest id: expected 400, got %d", rec.Code)
	}
}

func TestRouter_CacheEndpoints(t *testing.T) {
	t.Parallel()

	cacheCtl := &fakeCacheController{stats: cache.Stats{Size: 2, Keys: []string{"a", "b"}}}
	router := newTestRouter(t, &fakeDashboardProvider{}, &fakePerformanceProvider{}, cacheCtl)

	rec := doRequest(t, router, http.MethodDelete, "/v1/cache", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear cache: expected 200, got %d", rec.Code)
	}
	if !cacheCtl.cleared {
		t.Fatalf("clear endpoint must call the cache controller")
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/cache/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cache stats: expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data cacheStatsDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Size != 2 || len(envelope.Data.Keys) != 2 {
		t.Fatalf("unexpected cache stats: %+v", envelope.Data)
	}
}

func TestRouter_GetPerformance(t *testing.T) {
	t.Parallel()

	performance := &fakePerformanceProvider{
		report: usecase.PerformanceReport{
			Handle: "tourist",
			Rows: []usecase.ContestPerformance{
				{ContestID: 1700, Rank: 1, Delta: 50, SolvedCount: 5, ParticipatedAt: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
	router := newTestRouter(t, &fakeDashboardProvider{}, performance, &fakeCacheController{})

	rec := doRequest(t, router, http.MethodGet, "/v1/performance?handle=tourist", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data performanceDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Handle != "tourist" || len(envelope.Data.Rows) != 1 || envelope.Data.Rows[0].SolvedCount != 5 {
		t.Fatalf("unexpected performance payload: %+v", envelope.Data)
	}
}
