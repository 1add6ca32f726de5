package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

// ToSeconds parses a clock or duration string into whole seconds.
// Accepts HH:MM:SS and legacy MM:SS. Malformed or negative input
// clamps to zero so a half-typed duration never breaks the editor.
func ToSeconds(timeStr string) int {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")

	var hours, minutes, seconds int
	switch len(parts) {
	case 3:
		hours = parseComponent(parts[0])
		minutes = parseComponent(parts[1])
		seconds = parseComponent(parts[2])
	case 2:
		minutes = parseComponent(parts[0])
		seconds = parseComponent(parts[1])
	default:
		return 0
	}

	return hours*3600 + minutes*60 + seconds
}

// FromSeconds formats seconds as wall-clock HH:MM:SS, wrapping at 24 hours.
func FromSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	seconds %= secondsPerDay
	return format(seconds)
}

// FromSecondsNoWrap formats seconds as HH:MM:SS without the 24-hour wrap.
// Used for elapsed and total-runtime display, which may exceed a day.
func FromSecondsNoWrap(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return format(seconds)
}

// AddDuration advances a wall-clock time by a duration, wrapping past midnight.
func AddDuration(start, duration string) string {
	return FromSeconds(ToSeconds(start) + ToSeconds(duration))
}

// Difference returns the duration from a to b. Unlike the parsers it is
// strict: b before a is reported as an error instead of a wrapped or
// negative duration showing up in a schedule delta.
func Difference(a, b string) (string, error) {
	secondsA := ToSeconds(a)
	secondsB := ToSeconds(b)
	if secondsB < secondsA {
		return "", fmt.Errorf("%w: %s is before %s", ErrNegativeDifference, b, a)
	}
	return FromSecondsNoWrap(secondsB - secondsA), nil
}

func parseComponent(s string) int {
	// Floor fractional components; "01.5" counts as 1.
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func format(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
