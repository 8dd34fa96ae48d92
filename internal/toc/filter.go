package toc

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FilterRecords retains the records whose raw key matches pattern as a regular
// expression. Matching is against the real key, so an empty pattern segment can
// still match records whose key decoded to the empty string. A nil result set
// is legitimate; callers decide whether zero matches is an error.
func FilterRecords(records []Record, pattern string, ignoreCase bool) ([]Record, error) {
	if pattern == "" {
		return records, nil
	}
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("key pattern: %w", err)
	}
	var out []Record
	for _, r := range records {
		if re.MatchString(r.Key) {
			out = append(out, r)
		}
	}
	return out, nil
}

// infoDisplayOrder fixes the presentation order of the info chunk independent
// of both lexical order and on-disk field order.
var infoDisplayOrder = map[string]int{
	"created_by":    0,
	"last_saved_by": 1,
	"total_time":    2,
}

// SortRecords orders records for display. The info chunk uses its fixed
// three-key order; every other chunk sorts by the lower-cased non-digit key
// prefix and then numerically by the trailing digit run, so goal_state_2 comes
// before goal_state_10 and case variants group together.
func SortRecords(kind string, records []Record) {
	if kind == KindInfo {
		sort.SliceStable(records, func(i, j int) bool {
			return infoDisplayOrder[records[i].Key] < infoDisplayOrder[records[j].Key]
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		pi, ni := splitKeySuffix(records[i].Key)
		pj, nj := splitKeySuffix(records[j].Key)
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

// splitKeySuffix breaks a key into its lower-cased leading non-digit run and
// the integer value of its trailing digit run (0 when absent).
func splitKeySuffix(key string) (string, int64) {
	end := len(key)
	for end > 0 && key[end-1] >= '0' && key[end-1] <= '9' {
		end--
	}
	var n int64
	if end < len(key) {
		// The run is all digits; overflow on absurdly long runs saturates.
		if v, err := strconv.ParseInt(key[end:], 10, 64); err == nil {
			n = v
		}
	}
	cut := 0
	for cut < len(key) && !(key[cut] >= '0' && key[cut] <= '9') {
		cut++
	}
	return strings.ToLower(key[:cut]), n
}
