package toc

import (
	"fmt"
	"strings"
)

// blankKeyLabel stands in for a key that decoded to the empty string. It is a
// display label only; filtering and editing always work on the raw key, so a
// literal key named "(blank)" never collides with an actually-empty one.
const blankKeyLabel = "(blank)"

// valueColumnPadding separates the key column from the right-justified values.
const valueColumnPadding = 10

// DisplayKey returns the label shown for a record key.
func DisplayKey(key string) string {
	if key == "" {
		return blankKeyLabel
	}
	return key
}

// TimeAnnotated reports whether a record's value is a millisecond counter that
// should be echoed in day:hour:min:sec form. This also drives the time-string
// parse on the write path.
func TimeAnnotated(kind, key string) bool {
	if kind == KindInfo && key == "total_time" {
		return true
	}
	return key == "DrSTime" || key == "DrSCmTime"
}

// RenderListing formats records into the two-column listing: keys
// left-justified to the widest key, values right-justified to the widest value
// plus the fixed column padding, time fields annotated in parentheses.
func RenderListing(kind string, records []Record) string {
	keyWidth := 0
	valWidth := 0
	for _, r := range records {
		if n := len(DisplayKey(r.Key)); n > keyWidth {
			keyWidth = n
		}
		if n := len(r.ValueString()); n > valWidth {
			valWidth = n
		}
	}
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%-*s%*s", keyWidth, DisplayKey(r.Key), valWidth+valueColumnPadding, r.ValueString())
		if TimeAnnotated(kind, r.Key) {
			fmt.Fprintf(&b, " (%s)", FormatMillis(r.Millis()))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
