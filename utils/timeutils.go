package utils

import (
	"strconv"
	"strings"
	"time"
)

// Iso8601Now returns the current time in ISO8601 format
func Iso8601Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// ValidUntilFrom calculates the valid until timestamp
func ValidUntilFrom(baseEpoch int64, readIntervalMS int64) string {
	if baseEpoch <= 0 || readIntervalMS <= 0 {
		return ""
	}
	return time.Unix(baseEpoch+readIntervalMS/1000, 0).UTC().Format(time.RFC3339)
}

// FormatDelayAsISO8601Duration renders a delay in seconds as an ISO 8601
// duration, e.g. 75 -> "PT1M15S" and -30 -> "-PT30S".
func FormatDelayAsISO8601Duration(sec int64) string {
	if sec == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if sec < 0 {
		b.WriteByte('-')
		sec = -sec
	}
	b.WriteString("PT")
	h, m, s := sec/3600, sec%3600/60, sec%60
	if h > 0 {
		b.WriteString(strconv.FormatInt(h, 10) + "H")
	}
	if m > 0 {
		b.WriteString(strconv.FormatInt(m, 10) + "M")
	}
	if s > 0 {
		b.WriteString(strconv.FormatInt(s, 10) + "S")
	}
	return b.String()
}

// ServiceDateToISO converts a GTFS service date (YYYYMMDD) to YYYY-MM-DD.
// Anything else is returned unchanged.
func ServiceDateToISO(date string) string {
	if len(date) != 8 {
		return date
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:8]
}
