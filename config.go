package futarboard

import (
	"encoding"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/homebkk/futarboard/internal/display"
	"github.com/homebkk/futarboard/internal/layout"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the configuration for the futarboard daemon. It is loaded once
// at startup and treated as immutable afterwards; components receive it (or
// slices of it) explicitly.
type Config struct {
	// Matrix describes the LED matrix hardware.
	Matrix MatrixConfig `toml:"matrix"`
	// API configures the departure source.
	API APIConfig `toml:"api"`
	// Timing sets the fetch and render cadences.
	Timing TimingConfig `toml:"timing"`
	// Night sets the dimming window.
	Night NightConfig `toml:"night"`
	// Button configures the physical button, when present.
	Button ButtonConfig `toml:"button"`
}

// MatrixConfig describes the matrix controller connection and dimensions.
type MatrixConfig struct {
	// Device is the serial device of the matrix controller, usually
	// /dev/ttyUSB0 or /dev/ttyACM0. Empty selects the console display
	// for development.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Cols and Rows are the matrix dimensions in pixels.
	Cols int `toml:"cols"`
	Rows int `toml:"rows"`
}

// APIConfig configures the BKK Futár client.
type APIConfig struct {
	// BaseURL of the OTP API; the public endpoint when empty.
	BaseURL string `toml:"base_url"`
	// Key is the API key.
	Key string `toml:"key"`
	// Stops lists the stops to display, in display priority order.
	Stops []StopConfig `toml:"stop"`
}

// StopConfig pairs a stop ID with its display tag.
type StopConfig struct {
	// ID of the stop, e.g. "BKK_F00247".
	ID string `toml:"id"`
	// Tag is the single character shown in front of the stop's
	// departures, usually a direction arrow.
	Tag string `toml:"tag"`
}

// TimingConfig sets the loop cadences. Rendering must run strictly more
// often than fetching, and a fetch must time out before the next one is
// due.
type TimingConfig struct {
	FetchInterval  TOMLDuration `toml:"fetch_interval"`
	RenderInterval TOMLDuration `toml:"render_interval"`
	FetchTimeout   TOMLDuration `toml:"fetch_timeout"`
}

// NightConfig bounds the dimming window. Start and End are local clock
// times as "HH:MM"; the window may wrap past midnight.
type NightConfig struct {
	Start         string  `toml:"start"`
	End           string  `toml:"end"`
	MinBrightness float64 `toml:"min_brightness"`
}

// ButtonConfig configures button-actuated operation.
type ButtonConfig struct {
	// Pin is the GPIO pin name, e.g. "GPIO26".
	Pin string `toml:"pin"`
	// Window is the confirmation window for a press pair.
	Window TOMLDuration `toml:"window"`
	// SampleInterval is the standby loop tick.
	SampleInterval TOMLDuration `toml:"sample_interval"`
	// Hold keeps the display on this long after activation; zero means
	// until deactivated by the button.
	Hold TOMLDuration `toml:"hold"`
	// Grace bounds how long a terminating display process gets before
	// being killed.
	Grace TOMLDuration `toml:"grace"`
}

// Validate validates the configuration. Any error here is fatal at
// startup.
func (c *Config) Validate() error {
	if c.Matrix.Cols <= 0 || c.Matrix.Rows <= 0 {
		return errors.New("matrix dimensions must be positive")
	}
	if c.Matrix.Device != "" && c.Matrix.Baud <= 0 {
		return errors.New("matrix baud rate must be positive")
	}

	lines, chars := display.GridShape(c.Matrix.Cols, c.Matrix.Rows)
	if lines < 1 || chars < layout.MinChars {
		return errors.Errorf(
			"matrix %dx%d fits a %dx%d character grid, need at least 1x%d",
			c.Matrix.Cols, c.Matrix.Rows, lines, chars, layout.MinChars)
	}

	if len(c.API.Stops) == 0 {
		return errors.New("no stops configured")
	}
	for _, stop := range c.API.Stops {
		if stop.ID == "" {
			return errors.New("stop with empty ID")
		}
		if utf8.RuneCountInString(stop.Tag) > 1 {
			return errors.Errorf("stop %s: tag %q must be a single character", stop.ID, stop.Tag)
		}
	}

	render := time.Duration(c.Timing.RenderInterval)
	fetch := time.Duration(c.Timing.FetchInterval)
	timeout := time.Duration(c.Timing.FetchTimeout)
	if render <= 0 {
		return errors.New("render interval must be positive")
	}
	if fetch <= render {
		return errors.New("fetch interval must be longer than the render interval")
	}
	if timeout <= 0 || timeout >= fetch {
		return errors.New("fetch timeout must be positive and shorter than the fetch interval")
	}

	if c.Night.Start != "" || c.Night.End != "" {
		if _, err := parseClock(c.Night.Start); err != nil {
			return errors.Wrap(err, "night start")
		}
		if _, err := parseClock(c.Night.End); err != nil {
			return errors.Wrap(err, "night end")
		}
		if c.Night.MinBrightness <= 0 || c.Night.MinBrightness > 1 {
			return errors.New("night min_brightness must be in (0, 1]")
		}
	}

	if c.Button.Pin != "" {
		if time.Duration(c.Button.Window) <= 0 {
			return errors.New("button window must be positive")
		}
		if time.Duration(c.Button.SampleInterval) <= 0 {
			return errors.New("button sample_interval must be positive")
		}
		if time.Duration(c.Button.Grace) <= 0 {
			return errors.New("button grace must be positive")
		}
	}

	return nil
}

// GridShape returns the character grid the configured matrix can hold.
func (c *Config) GridShape() (lines, chars int) {
	return display.GridShape(c.Matrix.Cols, c.Matrix.Rows)
}

// TagByStop builds the stop-to-tag mapping for the client.
func (c *Config) TagByStop() map[string]rune {
	tags := make(map[string]rune, len(c.API.Stops))
	for _, stop := range c.API.Stops {
		if stop.Tag != "" {
			r, _ := utf8.DecodeRuneInString(stop.Tag)
			tags[stop.ID] = r
		}
	}
	return tags
}

// StopIDs returns the configured stop IDs in priority order.
func (c *Config) StopIDs() []string {
	ids := make([]string, len(c.API.Stops))
	for i, stop := range c.API.Stops {
		ids[i] = stop.ID
	}
	return ids
}

// parseClock parses "HH:MM" into minutes from midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
