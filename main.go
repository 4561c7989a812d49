package main

import (
	"net/http"
	"os"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")

	if err := cfg.ConnectDB(); err != nil {
		cfg.logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.ConnectRedis(); err != nil {
		cfg.logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	cfg.wireServices()

	scheduler := NewScheduler(cfg, cfg.refreshInterval)
	cfg.logger.Info("starting scheduler", "interval", cfg.refreshInterval.String())
	scheduler.Start()

	api := http.NewServeMux()
	api.HandleFunc("GET /api/cities", cfg.handlerListCities)
	api.HandleFunc("POST /api/cities", cfg.handlerAddCity)
	api.HandleFunc("POST /api/cities/refresh", cfg.handlerRefreshAll)
	api.HandleFunc("DELETE /api/cities/{id}", cfg.handlerDeleteCity)
	api.HandleFunc("POST /api/cities/{id}/refresh", cfg.handlerRefreshCity)
	api.HandleFunc("GET /api/citysearch", cfg.handlerCitySearch)
	api.HandleFunc("GET /api/profile", cfg.handlerGetProfile)
	api.HandleFunc("PUT /api/profile", cfg.handlerPutProfile)

	mux := http.NewServeMux()
	mux.Handle("/api/", cfg.authMiddleware(api))
	mux.Handle("/metrics", promhttp.Handler())

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled. Registering /dev/reset-db endpoint.")
		mux.HandleFunc("/dev/reset-db", cfg.handlerResetDB)
	}

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: metricsMiddleware(corsMiddleware(mux)),
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	err := server.ListenAndServe()
	if err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}
