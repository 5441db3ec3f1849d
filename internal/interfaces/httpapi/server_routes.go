package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDashboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/dashboard", handler.GetDashboard)
	mux.HandleFunc("GET /v1/heatmap", handler.GetHeatmap)
	mux.HandleFunc("GET /v1/performance", handler.GetPerformance)
	mux.HandleFunc("GET /v1/contests", handler.ListContests)
}

func registerSettingsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/settings", handler.GetSettings)
	mux.HandleFunc("PUT /v1/settings/handle", handler.UpdateHandle)
	mux.HandleFunc("DELETE /v1/settings/handle", handler.ClearHandle)
	mux.HandleFunc("PUT /v1/settings/theme", handler.UpdateTheme)
	mux.HandleFunc("PUT /v1/settings/contests/{contestID}/attendance", handler.SetContestAttendance)
}

func registerCacheRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("DELETE /v1/cache", handler.ClearCache)
	mux.HandleFunc("GET /v1/cache/stats", handler.GetCacheStats)
}
