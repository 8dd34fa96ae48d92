package toc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

var (
	ErrTimeNumber  = errors.New("time segment is not a valid number")
	ErrMinSecRange = errors.New("minutes and seconds must be between 0 and 59")
	ErrHourRange   = errors.New("hours must be between 0 and 23")
)

// FormatMillis renders a millisecond counter as "D:HH:MM:SS". Division is
// truncating throughout; sub-second remainders are dropped, never rounded.
func FormatMillis(ms int64) string {
	day := ms / msPerDay
	hour := (ms / msPerHour) % 24
	min := (ms / msPerMinute) % 60
	sec := (ms / msPerSecond) % 60
	return fmt.Sprintf("%d:%02d:%02d:%02d", day, hour, min, sec)
}

// timeSegmentRoles indexes segment names right-to-left: the rightmost colon
// segment is always seconds, so "MM:SS" and "HH:MM:SS" are both accepted.
var timeSegmentRoles = []string{"sec", "min", "hour", "day"}

// ParseEditTime turns a user-supplied time value into a canonical millisecond
// string. Text without a colon is already milliseconds and passes through
// unchanged; integer validation happens later against the record's own kind.
func ParseEditTime(text string) (string, error) {
	if !strings.Contains(text, ":") {
		return text, nil
	}
	parts := strings.Split(text, ":")
	if len(parts) > len(timeSegmentRoles) {
		return "", fmt.Errorf("%w: %q has more than %d segments", ErrTimeNumber, text, len(timeSegmentRoles))
	}
	var segments [4]int64
	for i := 0; i < len(parts); i++ {
		raw := parts[len(parts)-1-i]
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: Time (%s) is not a valid number", ErrTimeNumber, timeSegmentRoles[i])
		}
		segments[i] = v
	}
	sec, min, hour, day := segments[0], segments[1], segments[2], segments[3]
	if sec < 0 || sec > 59 || min < 0 || min > 59 {
		return "", fmt.Errorf("%w: got %02d:%02d", ErrMinSecRange, min, sec)
	}
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: got %d", ErrHourRange, hour)
	}
	if day < 0 {
		return "", fmt.Errorf("%w: Time (day) must not be negative", ErrTimeNumber)
	}
	total := day*msPerDay + hour*msPerHour + min*msPerMinute + sec*msPerSecond
	return strconv.FormatInt(total, 10), nil
}
