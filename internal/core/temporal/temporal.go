// Package temporal parses the date-time and duration text users type when
// creating events and timers.
package temporal

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted from users.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = DateLayout + " " + TimeLayout

	// Human readable forms of the layouts above, shown in prompts.
	DateHint     = "YYYY-MM-DD"
	TimeHint     = "HH:MM:SS"
	DateTimeHint = DateHint + " " + TimeHint
	DurationHint = "HH:MM:SS"
)

// Parse errors.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrInThePast     = errors.New("time is in the past")
	ErrNegative      = errors.New("duration is negative")
)

// maxSeconds keeps durations representable as time.Duration.
const maxSeconds = int64(math.MaxInt64 / int64(time.Second))

// time.Parse accepts single digit hours, so the shape is checked first.
var dateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// ParseEventTime parses text in the "YYYY-MM-DD HH:MM:SS" layout as local time.
// The result must be strictly after now.
func ParseEventTime(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if !dateTimeRe.MatchString(text) {
		return time.Time{}, ErrInvalidFormat
	}

	t, err := time.ParseInLocation(DateTimeLayout, text, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}

	if !t.After(now) {
		return time.Time{}, ErrInThePast
	}

	return t, nil
}

// FormatEventTime is the inverse of ParseEventTime.
func FormatEventTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDuration parses "H:M:S" where each part is an integer. Parts are not
// range checked ("0:90:0" is ninety minutes) but the total must not be negative.
func ParseDuration(text string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, ErrInvalidFormat
	}

	var total int64
	for i, mult := range []int64{3600, 60, 1} {
		n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
		if err != nil {
			return 0, ErrInvalidFormat
		}
		// each term stays within ±maxSeconds, so the sum of three cannot wrap
		if n > maxSeconds/mult || n < -maxSeconds/mult {
			return 0, ErrInvalidFormat
		}
		total += n * mult
	}

	if total < 0 {
		return 0, ErrNegative
	}
	if total > maxSeconds {
		return 0, ErrInvalidFormat
	}

	return time.Duration(total) * time.Second, nil
}

// ParseSeconds parses a plain integer number of seconds.
func ParseSeconds(text string) (time.Duration, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if n < 0 {
		return 0, ErrNegative
	}
	if n > maxSeconds {
		return 0, ErrInvalidFormat
	}
	return time.Duration(n) * time.Second, nil
}
