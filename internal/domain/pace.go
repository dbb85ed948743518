package domain

import (
	"fmt"
	"time"
)

// monthBucketLayout renders session months as "MM-YYYY", the grouping key
// the dashboard has always used.
const monthBucketLayout = "01-2006"

// ComputePace returns seconds per kilometre, or nil when either the
// distance or the duration is non-positive. Fractional seconds truncate,
// so 601s over 2km is 300 sec/km.
func ComputePace(distanceKm float64, durationSec int) *int {
	if distanceKm <= 0 || durationSec <= 0 {
		return nil
	}
	pace := int(float64(durationSec) / distanceKm)
	return &pace
}

// FormatPace renders a pace as "MM:SS" per kilometre. Nil paces render as
// the empty string.
func FormatPace(paceSecPerKm *int) string {
	if paceSecPerKm == nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", *paceSecPerKm/60, *paceSecPerKm%60)
}

// MonthBucket derives the "MM-YYYY" grouping key from a start time.
func MonthBucket(startedAt time.Time) string {
	return startedAt.UTC().Format(monthBucketLayout)
}

// ParseMonthBucket parses a "MM-YYYY" key back into the first instant of
// that month, for sorting summaries.
func ParseMonthBucket(bucket string) (time.Time, error) {
	return time.Parse(monthBucketLayout, bucket)
}
