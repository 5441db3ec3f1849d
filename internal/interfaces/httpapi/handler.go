package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/infrastructure/settings"
	"github.com/andriansah/cf-dashboard/internal/platform/cache"
	"github.com/andriansah/cf-dashboard/internal/platform/logging"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

const (
	dateLayout         = "2006-01-02"
	defaultHeatmapDays = 365
)

type dashboardProvider interface {
	Load(ctx context.Context, handle string) (usecase.Dashboard, error)
	Heatmap(ctx context.Context, handle string, start, end time.Time) ([]usecase.HeatmapCell, error)
	Contests(ctx context.Context, includeGym bool) ([]contest.Contest, error)
}

type performanceProvider interface {
	Recent(ctx context.Context, handle string, limit int) (usecase.PerformanceReport, error)
}

type settingsStore interface {
	Get(ctx context.Context) settings.Settings
	SetHandle(ctx context.Context, handle string) (settings.Settings, error)
	ClearHandle(ctx context.Context) (settings.Settings, error)
	SetTheme(ctx context.Context, theme string) (settings.Settings, error)
	SetContestAttendance(ctx context.Context, contestID int, attended bool) (settings.Settings, error)
}

type cacheController interface {
	ClearCache(ctx context.Context)
	CacheStats(ctx context.Context) cache.Stats
}

type Handler struct {
	dashboardService   dashboardProvider
	performanceService performanceProvider
	settingsStore      settingsStore
	cacheController    cacheController
	logger             *logging.Logger
	validator          *validator.Validate
	now                func() time.Time
}

func NewHandler(
	dashboardService dashboardProvider,
	performanceService performanceProvider,
	settingsStore settingsStore,
	cacheController cacheController,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dashboardService:   dashboardService,
		performanceService: performanceService,
		settingsStore:      settingsStore,
		cacheController:    cacheController,
		logger:             logger,
		validator:          validator.New(),
		now:                time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type handleQuery struct {
	Handle string `validate:"required,min=1,max=64"`
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	query := handleQuery{Handle: strings.TrimSpace(r.URL.Query().Get("handle"))}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		writeError(ctx, w, crerr.Mark(crerr.New("handle query parameter is required"), usecase.ErrInvalidInput))
		return
	}

	dashboard, err := h.dashboardService.Load(ctx, query.Handle)
	if err != nil {
		h.logger.WarnContext(ctx, "dashboard load failed", "handle", query.Handle, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dashboardToDTO(dashboard))
}

func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeatmap")
	defer span.End()

	query := handleQuery{Handle: strings.TrimSpace(r.URL.Query().Get("handle"))}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		writeError(ctx, w, crerr.Mark(crerr.New("handle query parameter is required"), usecase.ErrInvalidInput))
		return
	}

	end := dayStart(h.now().UTC())
	start := end.AddDate(0, 0, -(defaultHeatmapDays - 1))
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(ctx, w, crerr.Mark(crerr.Newf("invalid from date %q, want YYYY-MM-DD", raw), usecase.ErrInvalidInput))
			return
		}
		start = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(ctx, w, crerr.Mark(crerr.Newf("invalid to date %q, want YYYY-MM-DD", raw), usecase.ErrInvalidInput))
			return
		}
		end = parsed
	}

	cells, err := h.dashboardService.Heatmap(ctx, query.Handle, start, end)
	if err != nil {
		h.logger.WarnContext(ctx, "heatmap failed", "handle", query.Handle, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]heatmapCellDTO, 0, len(cells))
	for _, cell := range cells {
		items = append(items, heatmapCellDTO{
			Date:  cell.Date.Format(dateLayout),
			Count: cell.Count,
			Level: cell.Level,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPerformance")
	defer span.End()

	query := handleQuery{Handle: strings.TrimSpace(r.URL.Query().Get("handle"))}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		writeError(ctx, w, crerr.Mark(crerr.New("handle query parameter is required"), usecase.ErrInvalidInput))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, crerr.Mark(crerr.Newf("invalid limit %q, want a positive integer", raw), usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	report, err := h.performanceService.Recent(ctx, query.Handle, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "performance report failed", "handle", query.Handle, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, performanceToDTO(report))
}

func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContests")
	defer span.End()

	includeGym := false
	if raw := strings.TrimSpace(r.URL.Query().Get("gym")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, crerr.Mark(crerr.Newf("invalid gym flag %q", raw), usecase.ErrInvalidInput))
			return
		}
		includeGym = parsed
	}

	contests, err := h.dashboardService.Contests(ctx, includeGym)
	if err != nil {
		h.logger.WarnContext(ctx, "contest list failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	marks := h.settingsStore.Get(ctx).AttendedContests
	items := make([]contestDTO, 0, len(contests))
	for _, item := range contests {
		items = append(items, contestToDTO(item, marks[item.ID]))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettings")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(h.settingsStore.Get(ctx)))
}

type updateHandleRequest struct {
	Handle string `json:"handle" validate:"required,min=1,max=64"`
}

func (h *Handler) UpdateHandle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateHandle")
	defer span.End()

	var payload updateHandleRequest
	if !h.decodeAndValidate(ctx, w, r, &payload) {
		return
	}

	updated, err := h.settingsStore.SetHandle(ctx, payload.Handle)
	if err != nil {
		h.logger.ErrorContext(ctx, "persist handle failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(updated))
}

func (h *Handler) ClearHandle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearHandle")
	defer span.End()

	updated, err := h.settingsStore.ClearHandle(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "clear handle failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(updated))
}

type updateThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark system"`
}

func (h *Handler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTheme")
	defer span.End()

	var payload updateThemeRequest
	if !h.decodeAndValidate(ctx, w, r, &payload) {
		return
	}

	updated, err := h.settingsStore.SetTheme(ctx, payload.Theme)
	if err != nil {
		h.logger.ErrorContext(ctx, "persist theme failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(updated))
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

func (h *Handler) SetContestAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetContestAttendance")
	defer span.End()

	contestID, err := strconv.Atoi(r.PathValue("contestID"))
	if err != nil || contestID <= 0 {
		writeError(ctx, w, crerr.Mark(crerr.New("contest id must be a positive integer"), usecase.ErrInvalidInput))
		return
	}

	var payload attendanceRequest
	if !h.decodeAndValidate(ctx, w, r, &payload) {
		return
	}

	updated, err := h.settingsStore.SetContestAttendance(ctx, contestID, payload.Attended)
	if err != nil {
		h.logger.ErrorContext(ctx, "persist attendance failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(updated))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	h.cacheController.ClearCache(ctx)
	h.logger.InfoContext(ctx, "response cache cleared")
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCacheStats")
	defer span.End()

	stats := h.cacheController.CacheStats(ctx)
	writeSuccess(ctx, w, http.StatusOK, cacheStatsDTO{
		Size: stats.Size,
		Keys: stats.Keys,
	})
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
