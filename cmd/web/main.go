package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"paws-and-claws/internal/platform/config"
	"paws-and-claws/internal/platform/logger"
	"paws-and-claws/internal/router"
)

func main() {
	cfg := config.FromEnv()
	log := logger.NewFromEnv()

	h := router.New(router.Options{
		Config: cfg,
		Logger: log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
