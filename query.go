package atrealtime

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/theoremus-urban-solutions/at-realtime/formatter"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

var errNoSnapshot = errors.New("no realtime data available yet")

// vehicleQuery holds the filters accepted by the vehicle endpoints.
type vehicleQuery struct {
	VehicleRef   string
	LineRef      string
	TripID       string
	DirectionRef string
}

func (q vehicleQuery) empty() bool { return q == vehicleQuery{} }

// key is the memo key of the response. Filtered responses are not memoized,
// so the memo holds at most one entry per format.
func (q vehicleQuery) key(f formatter.Format) string {
	if !q.empty() {
		return ""
	}
	return memoKey(string(f))
}

// parseVehicleQuery reads the filters case-insensitively by parameter name.
func parseVehicleQuery(values url.Values) (vehicleQuery, error) {
	var q vehicleQuery
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		val := strings.TrimSpace(v[0])
		switch strings.ToLower(k) {
		case "vehicleref":
			q.VehicleRef = val
		case "lineref":
			q.LineRef = val
		case "tripid":
			q.TripID = val
		case "directionref":
			if val != "" && val != "0" && val != "1" {
				return vehicleQuery{}, &QueryError{Msg: "DirectionRef must be 0 or 1."}
			}
			q.DirectionRef = val
		}
	}
	return q, nil
}

// buildErrorPayload renders msg as a SIRI ErrorCondition, in XML when xml is set.
func buildErrorPayload(msg string, xml bool) []byte {
	if xml {
		return formatter.BuildErrorXML(msg)
	}

	type siriErr struct {
		Siri struct {
			ServiceDelivery struct {
				ErrorCondition struct {
					Description string `json:"Description"`
				} `json:"ErrorCondition"`
			} `json:"ServiceDelivery"`
		} `json:"Siri"`
	}
	var e siriErr
	e.Siri.ServiceDelivery.ErrorCondition.Description = msg
	b, _ := json.Marshal(e)
	return b
}
