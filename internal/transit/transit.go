// Package transit models departure data fetched from the BKK Futár
// arrivals-and-departures endpoint.
package transit

import (
	"context"
	"fmt"
	"time"
)

// Certainty describes how reliable a departure estimate is.
type Certainty uint8

const (
	// CertaintyLive means a realtime prediction exists for the departure.
	CertaintyLive Certainty = iota
	// CertaintyScheduled means only the timetabled departure time is known.
	CertaintyScheduled
)

func (c Certainty) String() string {
	switch c {
	case CertaintyLive:
		return "live"
	case CertaintyScheduled:
		return "scheduled"
	default:
		return fmt.Sprintf("Certainty(%d)", c)
	}
}

// Departure is one upcoming vehicle departure at a configured stop.
// It is immutable once constructed.
type Departure struct {
	// Route is the short route label, e.g. "91" or "291".
	Route string
	// Headsign shows where the trip is heading, e.g. "Nyugati pályaudvar M".
	Headsign string
	// ETA is the predicted or scheduled departure time.
	ETA time.Time
	// Certainty tells whether ETA is a realtime prediction.
	Certainty Certainty
	// Tag is the single display character assigned to the departure's stop,
	// usually a direction arrow.
	Tag rune
}

// Minutes returns the whole minutes remaining until the departure at the
// given instant. Departures in the past report 0.
func (d Departure) Minutes(now time.Time) int {
	m := int(d.ETA.Sub(now) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// DisplayInfo is one fetch snapshot. The departure order is the server's
// response order and encodes display priority; it must be preserved.
type DisplayInfo struct {
	// MachineTime is the local time the snapshot was taken.
	MachineTime time.Time
	// ServerTime is the server's currentTime from the response.
	ServerTime time.Time
	// Departures in display order.
	Departures []Departure
}

// Source produces departure snapshots. Fetch fails with *NetworkError or
// *APIError; any other error is a bug.
type Source interface {
	Fetch(ctx context.Context) (*DisplayInfo, error)
}
