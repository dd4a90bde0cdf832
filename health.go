package atrealtime

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status                  string `json:"status"`
	LatestGTFSRealtimeEpoch int64  `json:"latest_gtfsrt_epoch"`
	FetchedAt               string `json:"fetched_at,omitempty"`
	Vehicles                int    `json:"vehicles"`
}

// handleHealth reports "starting" until the first snapshot is in.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "starting"}
	if c, fetchedAt, ok := s.store.Get(); ok {
		resp.Status = "ok"
		resp.FetchedAt = fetchedAt.UTC().Format(time.RFC3339)
		resp.Vehicles = len(c.Entities)
		if ts := c.Header.Timestamp; ts != nil {
			resp.LatestGTFSRealtimeEpoch = int64(*ts)
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}
