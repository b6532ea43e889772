// Package window resolves cleaning modes and raw date inputs into an
// inclusive epoch-second time window.
//
// A Window is inclusive on both ends; End == Unbounded means "no upper
// bound". Start may exceed End (for example an inverted between range);
// such a window simply matches nothing, which is valid rather than an
// error.
package window

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chazuruo/histwipe/internal/errors"
)

// Unbounded marks a window with no upper bound.
const Unbounded = int64(math.MaxInt64)

// Mode selects how the time window is derived.
type Mode int

const (
	ModeNone Mode = iota
	ModeToday
	ModeLast7Days
	ModeLast30Days
	ModeSpecificDay
	ModeBetween
	ModeBefore
	ModeAfter
	ModeOlderThan
	ModeNewerThan
	ModeAllTime
)

var modeNames = map[Mode]string{
	ModeNone:        "none",
	ModeToday:       "today",
	ModeLast7Days:   "last_7_days",
	ModeLast30Days:  "last_30_days",
	ModeSpecificDay: "specific_day",
	ModeBetween:     "between",
	ModeBefore:      "before",
	ModeAfter:       "after",
	ModeOlderThan:   "older_than",
	ModeNewerThan:   "newer_than",
	ModeAllTime:     "all",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode token as accepted on the command line
// ("today", "last_7_days", "between", ...) into a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if m != ModeNone && name == s {
			return m, nil
		}
	}
	return ModeNone, &errors.ParseError{Input: s, Err: errors.ErrInvalid}
}

// Modes lists every selectable mode in menu order.
func Modes() []Mode {
	return []Mode{
		ModeToday, ModeLast7Days, ModeLast30Days, ModeSpecificDay,
		ModeBetween, ModeBefore, ModeAfter, ModeOlderThan,
		ModeNewerThan, ModeAllTime,
	}
}

// Window is an inclusive [Start, End] range of epoch seconds.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

// String renders the window bounds in local time for display.
func (w Window) String() string {
	return fmt.Sprintf("%s .. %s", FormatBound(w.Start), FormatBound(w.End))
}

// FormatBound renders one epoch bound in local time; the unbounded
// sentinel renders as the infinity sign.
func FormatBound(ts int64) string {
	if ts == Unbounded {
		return "∞"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05 MST")
}

// Inputs carries the raw date strings and day counts a mode may need.
type Inputs struct {
	// Date is the single date for specific_day, before and after.
	Date string
	// StartDate and EndDate bound the between mode.
	StartDate string
	EndDate   string
	// Days is the day count for older_than and newer_than.
	Days int
	// Precise makes date strings match to the second instead of
	// expanding to whole days.
	Precise bool
}

// Date layouts tried most specific first. A layout only matches when it
// consumes the whole (trimmed) input, so "2024-01-02 bogus" falls
// through every layout and fails.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

const dateOnlyLayout = "2006-01-02"

// ParseDate parses a date expression in the local timezone. Accepted
// forms, most specific first: "YYYY-MM-DD HH:MM:SS", "YYYY-MM-DD HH:MM",
// "YYYY-MM-DD". With precise set, a date without a time component is
// rejected: precise mode matches an exact instant, and a bare date has
// none.
func ParseDate(s string, precise bool) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, trimmed, time.Local)
		if err != nil {
			continue
		}
		if precise && layout == dateOnlyLayout {
			return time.Time{}, &errors.ParseError{
				Input: s,
				Err:   errors.Wrap(errors.ErrFormat, "time component required with --precise"),
			}
		}
		return t, nil
	}
	return time.Time{}, &errors.ParseError{Input: s, Err: errors.ErrFormat}
}

// Resolve derives the time window for mode from in, relative to now.
// Day-based modes count back in fixed 86400-second steps from now;
// date-based modes resolve in the local timezone of the parsed instant.
func Resolve(mode Mode, in Inputs, now time.Time) (Window, error) {
	switch mode {
	case ModeToday:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: midnight.Unix(), End: Unbounded}, nil

	case ModeLast7Days:
		return Window{Start: now.Unix() - 7*86400, End: Unbounded}, nil

	case ModeLast30Days:
		return Window{Start: now.Unix() - 30*86400, End: Unbounded}, nil

	case ModeSpecificDay:
		t, err := ParseDate(in.Date, in.Precise)
		if err != nil {
			return Window{}, err
		}
		if in.Precise {
			return Window{Start: t.Unix(), End: t.Unix()}, nil
		}
		return Window{Start: t.Unix(), End: endOfDay(t)}, nil

	case ModeBetween:
		start, err := ParseDate(in.StartDate, in.Precise)
		if err != nil {
			return Window{}, err
		}
		end, err := ParseDate(in.EndDate, in.Precise)
		if err != nil {
			return Window{}, err
		}
		w := Window{Start: start.Unix(), End: end.Unix()}
		if !in.Precise {
			w.End = endOfDay(end)
		}
		return w, nil

	case ModeBefore:
		t, err := ParseDate(in.Date, in.Precise)
		if err != nil {
			return Window{}, err
		}
		end := t.Unix()
		if !in.Precise {
			// One second before local midnight, so the named day
			// itself is excluded.
			end--
		}
		return Window{Start: 0, End: end}, nil

	case ModeAfter:
		t, err := ParseDate(in.Date, in.Precise)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: t.Unix(), End: Unbounded}, nil

	case ModeOlderThan:
		if in.Days <= 0 {
			return Window{}, errors.Wrap(errors.ErrInvalid, "older_than requires a positive day count")
		}
		return Window{Start: 0, End: now.Unix() - int64(in.Days)*86400}, nil

	case ModeNewerThan:
		if in.Days <= 0 {
			return Window{}, errors.Wrap(errors.ErrInvalid, "newer_than requires a positive day count")
		}
		return Window{Start: now.Unix() - int64(in.Days)*86400, End: Unbounded}, nil

	case ModeAllTime:
		return Window{Start: 0, End: Unbounded}, nil
	}

	return Window{}, errors.Wrap(errors.ErrInvalid, "mode not set")
}

// endOfDay returns 23:59:59 of t's local day as epoch seconds.
func endOfDay(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location()).Unix()
}
