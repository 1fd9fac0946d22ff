// Package layout turns departure lists into fixed-size character grids.
package layout

import (
	"strconv"
	"strings"
	"time"

	"github.com/homebkk/futarboard/internal/transit"
	"github.com/pkg/errors"
)

// Field widths within one row. The tag is one character followed by a
// space, the route label is left-aligned in routeWidth cells, the countdown
// is right-aligned in countdownWidth cells at the end of the row, and the
// headsign fills whatever is left.
const (
	tagWidth       = 1
	routeWidth     = 3
	minuteDigits   = 2
	countdownWidth = minuteDigits + 1 // digits plus the minute sign '
)

// MinChars is the smallest row width that still leaves one headsign cell.
const MinChars = tagWidth + 1 + routeWidth + 1 + 1 + countdownWidth

// maxMinutes is the largest countdown value the field can show. Larger
// values are clamped rather than truncated.
const maxMinutes = 99

// Formatter renders departures into rows of a fixed grid shape. The shape
// is validated once at construction and never changes.
type Formatter struct {
	lines     int
	chars     int
	headWidth int
}

// New creates a Formatter for the given grid shape. It fails when the shape
// cannot fit the minimum field layout; that is a configuration problem and
// should abort startup.
func New(lines, chars int) (*Formatter, error) {
	if lines < 1 {
		return nil, errors.Errorf("grid needs at least 1 line, got %d", lines)
	}
	if chars < MinChars {
		return nil, errors.Errorf("grid width %d is below the minimum %d", chars, MinChars)
	}
	return &Formatter{
		lines:     lines,
		chars:     chars,
		headWidth: chars - tagWidth - 1 - routeWidth - 1 - countdownWidth,
	}, nil
}

// Lines returns the number of rows the formatter produces.
func (f *Formatter) Lines() int { return f.lines }

// Chars returns the width of each row in characters.
func (f *Formatter) Chars() int { return f.chars }

// Format renders the first Lines departures, in input order, into exactly
// Lines rows of exactly Chars characters. Excess departures are dropped;
// missing ones leave blank rows. Countdowns are computed against now, not
// against the fetch time.
func (f *Formatter) Format(departures []transit.Departure, now time.Time) []string {
	rows := make([]string, f.lines)
	blank := strings.Repeat(" ", f.chars)

	for i := range rows {
		if i < len(departures) {
			rows[i] = f.row(departures[i], now)
		} else {
			rows[i] = blank
		}
	}

	return rows
}

func (f *Formatter) row(d transit.Departure, now time.Time) string {
	row := make([]rune, 0, f.chars)

	tag := d.Tag
	if tag == 0 {
		tag = ' '
	}
	row = append(row, tag, ' ')
	row = append(row, padRight([]rune(d.Route), routeWidth)...)
	row = append(row, ' ')
	row = append(row, padRight([]rune(d.Headsign), f.headWidth)...)
	row = append(row, countdown(d.Minutes(now))...)

	return string(row)
}

// countdown renders a right-aligned "<minutes>'" field of countdownWidth
// runes, clamping minutes into the digits the field can hold.
func countdown(minutes int) []rune {
	if minutes > maxMinutes {
		minutes = maxMinutes
	}
	if minutes < 0 {
		minutes = 0
	}
	s := strconv.Itoa(minutes) + "'"
	return padLeft([]rune(s), countdownWidth)
}

func padRight(r []rune, width int) []rune {
	if len(r) >= width {
		return r[:width]
	}
	out := make([]rune, width)
	copy(out, r)
	for i := len(r); i < width; i++ {
		out[i] = ' '
	}
	return out
}

func padLeft(r []rune, width int) []rune {
	if len(r) >= width {
		return r[len(r)-width:]
	}
	out := make([]rune, width)
	for i := 0; i < width-len(r); i++ {
		out[i] = ' '
	}
	copy(out[width-len(r):], r)
	return out
}
