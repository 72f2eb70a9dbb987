package models

import (
	"time"
)

// Snapshots are keyed by the calendar date in Korea regardless of where the
// crawler runs.
var kst = time.FixedZone("KST", 9*60*60)

// DateKey formats t as the YYYY-MM-DD snapshot document id, in KST.
func DateKey(t time.Time) string {
	return t.In(kst).Format("2006-01-02")
}
