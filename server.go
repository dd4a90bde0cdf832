package atrealtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Handler routes every endpoint of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/vehicles", s.handleVehicles)
	mux.HandleFunc("/api/vehicles.pb", s.handleVehiclesProtobuf)
	mux.HandleFunc("/api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	mux.HandleFunc("/api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// StartServer listens on port in the background.
func (s *Service) StartServer(port int) *http.Server {
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("addr", addr).Msg("server listening")
	return server
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, then stops the
// poller through cancel and shuts the server down.
func HandleGracefulShutdown(server *http.Server, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info().Msg("shutdown signal received")
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if server == nil {
		return
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return
	}
	log.Info().Msg("server shut down successfully")
}
