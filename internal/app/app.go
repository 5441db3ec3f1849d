package app

import (
	"fmt"
	"net/http"

	"github.com/andriansah/cf-dashboard/external/codeforces"
	"github.com/andriansah/cf-dashboard/internal/config"
	"github.com/andriansah/cf-dashboard/internal/infrastructure/settings"
	"github.com/andriansah/cf-dashboard/internal/interfaces/httpapi"
	"github.com/andriansah/cf-dashboard/internal/platform/logging"
	"github.com/andriansah/cf-dashboard/internal/platform/resilience"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cfClient := codeforces.NewClient(codeforces.ClientConfig{
		BaseURL:            cfg.CodeforcesBaseURL,
		Timeout:            cfg.CodeforcesTimeout,
		CacheTTL:           cfg.CodeforcesCacheTTL,
		MinRequestInterval: cfg.CodeforcesMinRequestInterval,
		Logger:             logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CodeforcesCircuitEnabled,
			FailureThreshold: cfg.CodeforcesCircuitFailureCount,
			OpenTimeout:      cfg.CodeforcesCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CodeforcesCircuitHalfOpenMax,
		},
	})

	dashboardSvc := usecase.NewDashboardService(cfClient, cfg.CodeforcesPageSize, logger)
	performanceSvc := usecase.NewPerformanceService(cfClient, cfg.PerformanceMaxWorkers, cfg.PerformanceMaxContests, logger)

	settingsStore, err := settings.NewStore(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	handler := httpapi.NewHandler(dashboardSvc, performanceSvc, settingsStore, cfClient, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
