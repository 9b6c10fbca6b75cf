package parser

import (
	"fmt"
	"strings"
	"time"
)

// CommonLogFormat is the full $time_local layout. Only its date/time part
// is used when normalizing, the zone is dropped.
const (
	CommonLogFormat = "02/Jan/2006:15:04:05 -0700"
	clfDateTime     = "02/Jan/2006:15:04:05"

	HourFormat = "2006-01-02 15:00"
)

// NormalizeTime parses the raw timestamp of a Record. Everything after the
// first space (the zone offset) is ignored and the result carries the wall
// clock as written, in UTC.
func NormalizeTime(raw string) (time.Time, error) {
	s, _, _ := strings.Cut(raw, " ")
	t, err := time.Parse(clfDateTime, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrBadTimestamp, raw, err)
	}
	return t, nil
}

// HourBucket truncates t to its hour, e.g. "2024-03-15 09:00".
func HourBucket(t time.Time) string {
	return t.Format(HourFormat)
}
