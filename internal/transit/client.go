package transit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the public BKK Futár OTP endpoint root.
const DefaultBaseURL = "https://futar.bkk.hu/api/query/v1/ws/otp/api/where"

// ClientConfig configures a Client. Immutable after construction.
type ClientConfig struct {
	// BaseURL of the OTP API. DefaultBaseURL when empty.
	BaseURL string
	// APIKey passed as the key query parameter.
	APIKey string
	// StopIDs to query, e.g. "BKK_F00247".
	StopIDs []string
	// TagByStop maps a stop ID to its single display character.
	// Stops without a mapping get a space tag.
	TagByStop map[string]rune
	// Limit caps the number of stop times requested per stop.
	Limit int
	// MinutesAfter is the lookahead window requested from the server.
	MinutesAfter int
}

// Client fetches departures from the arrivals-and-departures-for-stop
// endpoint. It implements Source.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a Client using the given HTTP client. Pass an
// http.Client with a timeout shorter than the fetch interval; when hc is
// nil a 10-second default is used.
func NewClient(cfg ClientConfig, hc *http.Client) (*Client, error) {
	if len(cfg.StopIDs) == 0 {
		return nil, errors.New("no stop IDs configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit == 0 {
		cfg.Limit = 10
	}
	if cfg.MinutesAfter == 0 {
		cfg.MinutesAfter = 90
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: hc}, nil
}

// Response schema for the OTP dialect of arrivals-and-departures-for-stop.
// Times on stop times are epoch seconds; currentTime is epoch milliseconds.

type otpResponse struct {
	CurrentTime int64   `json:"currentTime"`
	Status      string  `json:"status"`
	Code        int     `json:"code"`
	Data        otpData `json:"data"`
}

type otpData struct {
	Entry      otpEntry      `json:"entry"`
	References otpReferences `json:"references"`
}

type otpEntry struct {
	StopID    string        `json:"stopId"`
	StopTimes []otpStopTime `json:"stopTimes"`
}

type otpStopTime struct {
	StopID                 string `json:"stopId"`
	StopHeadsign           string `json:"stopHeadsign"`
	DepartureTime          int64  `json:"departureTime"`
	PredictedDepartureTime int64  `json:"predictedDepartureTime"`
	TripID                 string `json:"tripId"`
}

type otpReferences struct {
	Routes map[string]otpRoute `json:"routes"`
	Trips  map[string]otpTrip  `json:"trips"`
}

type otpRoute struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
}

type otpTrip struct {
	ID      string `json:"id"`
	RouteID string `json:"routeId"`
}

// Fetch queries every configured stop and returns one merged snapshot.
// Departures keep the server's per-stop response order, stops in the
// configured order.
func (c *Client) Fetch(ctx context.Context) (*DisplayInfo, error) {
	info := &DisplayInfo{MachineTime: time.Now()}

	for _, stopID := range c.cfg.StopIDs {
		resp, err := c.fetchStop(ctx, stopID)
		if err != nil {
			return nil, err
		}

		serverTime := time.UnixMilli(resp.CurrentTime)
		if info.ServerTime.IsZero() || serverTime.Before(info.ServerTime) {
			info.ServerTime = serverTime
		}

		tag, ok := c.cfg.TagByStop[stopID]
		if !ok {
			tag = ' '
		}

		for _, st := range resp.Data.Entry.StopTimes {
			if st.DepartureTime == 0 && st.PredictedDepartureTime == 0 {
				continue
			}

			certainty := CertaintyLive
			departure := st.PredictedDepartureTime
			if departure == 0 {
				certainty = CertaintyScheduled
				departure = st.DepartureTime
			}

			route := ""
			if trip, ok := resp.Data.References.Trips[st.TripID]; ok {
				route = resp.Data.References.Routes[trip.RouteID].ShortName
			}

			info.Departures = append(info.Departures, Departure{
				Route:     route,
				Headsign:  st.StopHeadsign,
				ETA:       time.Unix(departure, 0),
				Certainty: certainty,
				Tag:       tag,
			})
		}
	}

	return info, nil
}

func (c *Client) fetchStop(ctx context.Context, stopID string) (*otpResponse, error) {
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("stopId", stopID)
	q.Set("onlyDepartures", "true")
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	q.Set("minutesAfter", strconv.Itoa(c.cfg.MinutesAfter))

	u := c.cfg.BaseURL + "/arrivals-and-departures-for-stop.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{Status: res.StatusCode}
	}

	var resp otpResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, &APIError{Err: errors.Wrap(err, "failed to decode response")}
	}

	return &resp, nil
}
