// AngelaMos | 2026
// time.go

package core

import "time"

// Now is the timestamp stored on records: UTC, millisecond precision, the
// same resolution as the ISO strings JavaScript clients write.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
