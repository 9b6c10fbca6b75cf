// Package window implements the inclusive calendar-date range used to
// select log lines.
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RangeFormat is how a window is written on the command line.
const (
	RangeFormat = "dd/mm/yyyy-dd/mm/yyyy"
	dateLayout  = "2/1/2006"
)

var ErrInvalidRange = errors.New("invalid date range")

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date shown on t's wall clock.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y, m, d}
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return d.Year - o.Year
	case d.Month != o.Month:
		return int(d.Month) - int(o.Month)
	default:
		return d.Day - o.Day
	}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// Window is an inclusive [Start, End] range of dates.
type Window struct {
	Start Date
	End   Date
}

// Default covers yesterday and today relative to now.
func Default(now time.Time) Window {
	return Window{
		Start: DateOf(now.AddDate(0, 0, -1)),
		End:   DateOf(now),
	}
}

// Parse reads a window written as dd/mm/yyyy-dd/mm/yyyy.
func Parse(s string) (Window, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || strings.Contains(end, "-") {
		return Window{}, fmt.Errorf("%w %q: expected %s", ErrInvalidRange, s, RangeFormat)
	}
	st, err := time.Parse(dateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q: start: %w", ErrInvalidRange, s, err)
	}
	et, err := time.Parse(dateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q: end: %w", ErrInvalidRange, s, err)
	}
	w := Window{Start: DateOf(st), End: DateOf(et)}
	if w.Start.Compare(w.End) > 0 {
		return Window{}, fmt.Errorf("%w %q: start is after end", ErrInvalidRange, s)
	}
	return w, nil
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether d lies within the window, both ends included.
func (w Window) Contains(d Date) bool {
	return w.Start.Compare(d) <= 0 && d.Compare(w.End) <= 0
}

// ContainsTime is Contains on the wall-clock date of t.
func (w Window) ContainsTime(t time.Time) bool {
	return w.Contains(DateOf(t))
}

func (w Window) String() string {
	if w.IsZero() {
		return ""
	}
	return w.Start.String() + "-" + w.End.String()
}
