// Package atrealtime polls the Auckland Transport realtime feeds and serves the
// merged snapshot over HTTP.
package atrealtime

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/at-realtime/config"
	"github.com/theoremus-urban-solutions/at-realtime/converter"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
	"github.com/theoremus-urban-solutions/at-realtime/internal/metrics"
)

// Service polls both realtime feeds, keeps the latest merged snapshot and
// serves it over HTTP.
type Service struct {
	client   *gtfsrt.Client
	store    *SnapshotStore
	metrics  *metrics.Collector
	merge    []gtfsrt.MergeOption
	siri     converter.Options
	interval time.Duration
	now      func() time.Time
}

// NewService wires a Service from the application configuration.
func NewService(cfg config.AppConfig) (*Service, error) {
	joinBy, err := gtfsrt.ParseJoinKey(cfg.Merge.JoinBy)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(cfg.Poller.ReadIntervalMS) * time.Millisecond
	collector := metrics.NewCollector(interval)

	opts := []gtfsrt.ClientOption{
		gtfsrt.WithBaseURL(cfg.API.BaseURL),
		gtfsrt.WithFeedPaths(cfg.Feeds.TripUpdatesPath, cfg.Feeds.VehiclePositionsPath),
		gtfsrt.WithFetchHook(collector.FetchHook()),
	}
	if cfg.API.TimeoutMS > 0 {
		opts = append(opts, gtfsrt.WithTimeout(time.Duration(cfg.API.TimeoutMS)*time.Millisecond))
	}

	return &Service{
		client:  gtfsrt.NewClient(cfg.API.APIKey, opts...),
		store:   NewSnapshotStore(),
		metrics: collector,
		merge:   []gtfsrt.MergeOption{gtfsrt.WithJoinKey(joinBy)},
		siri: converter.Options{
			ProducerRef:    cfg.Siri.ProducerRef,
			ReadIntervalMS: int64(cfg.Poller.ReadIntervalMS),
			NormalizeIDs:   cfg.Merge.NormalizeIDs,
			FieldMutators: converter.FieldMutators{
				StopPointRef: cfg.Siri.FieldMutators.StopPointRef,
				LineRef:      cfg.Siri.FieldMutators.LineRef,
			},
		},
		interval: interval,
		now:      time.Now,
	}, nil
}

// Store exposes the snapshot store.
func (s *Service) Store() *SnapshotStore { return s.store }

// Poll runs one fetch and merge cycle. On failure the previous snapshot is kept.
func (s *Service) Poll(ctx context.Context) error {
	start := s.now()
	combined, err := s.client.FetchCombined(ctx, gtfsrt.Filter{}, s.merge...)
	if err != nil {
		s.metrics.PollErrors.Inc()
		log.Error().Err(err).Msg("realtime poll failed, keeping previous snapshot")
		return fmt.Errorf("poll: %w", err)
	}

	s.store.Set(combined, start)
	s.metrics.ObserveMerge(combined)
	log.Info().
		Int("vehicles", len(combined.Entities)).
		Int("indexed", combined.Stats.Indexed).
		Int("merged", combined.Stats.Merged).
		Int("dropped_no_trip", combined.Stats.DroppedNoTrip).
		Int("dropped_no_match", combined.Stats.DroppedNoMatch).
		Dur("elapsed", s.now().Sub(start)).
		Msg("realtime snapshot updated")
	return nil
}

// Run polls immediately and then every read interval until ctx is done.
// Without an interval it polls once.
func (s *Service) Run(ctx context.Context) {
	_ = s.Poll(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("poller stopped")
			return
		case <-ticker.C:
			_ = s.Poll(ctx)
		}
	}
}
