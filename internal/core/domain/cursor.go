package domain

import "time"

// Cursor records the boundary up to which a source's data is known
// complete. It is advanced only after a successful fetch-and-write
// cycle, always to the window's Until, and never rolled back
// automatically: a failed run leaves it untouched so the next run
// retries the same window.
type Cursor struct {
	Source SourceID
	Since  time.Time
}
