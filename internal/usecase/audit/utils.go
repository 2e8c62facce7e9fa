package audit

import (
	"fmt"
	"time"
)

// unknownDepartmentName is the fallback label when a department row has
// vanished (retention races are expected, crashes are not).
func unknownDepartmentName(id uint64) string {
	return fmt.Sprintf("department #%d", id)
}

// truncateToDay drops the time-of-day part; inspection rounds are dated,
// not timestamped.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
