package atrealtime

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/at-realtime/formatter"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

func (s *Service) handleVehicles(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, formatter.FormatJSON)
}

func (s *Service) handleVehiclesProtobuf(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, formatter.FormatProtobuf)
}

func (s *Service) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, formatter.FormatSiri)
}

func (s *Service) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, formatter.FormatSiriXML)
}

// serveSnapshot writes the current snapshot, filtered by the query, in format f.
func (s *Service) serveSnapshot(w http.ResponseWriter, r *http.Request, f formatter.Format) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, f, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	q, err := parseVehicleQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, f, http.StatusBadRequest, err.Error())
		return
	}

	buf, err := s.store.Encoded(q.key(f), func(c *gtfsrt.Combined) ([]byte, error) {
		return formatter.Build(f, selectEntities(c, q), s.siri)
	})
	switch {
	case errors.Is(err, errNoSnapshot):
		s.writeError(w, f, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("format", string(f)).Msg("failed to build response")
		s.writeError(w, f, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	_, _ = w.Write(buf)
}

// writeError answers with a SIRI ErrorCondition. The protobuf endpoint has no
// error message, so it gets the JSON form.
func (s *Service) writeError(w http.ResponseWriter, f formatter.Format, status int, msg string) {
	xml := f == formatter.FormatSiriXML
	if xml {
		w.Header().Set("Content-Type", "application/xml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write(buildErrorPayload(msg, xml))
}
