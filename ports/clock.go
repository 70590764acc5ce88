package ports

import "time"

// Clock supplies performedAt timestamps. Implementations must be strictly
// monotonic within a process so audit appends for one calculation are
// totally ordered.
type Clock interface {
	Now() time.Time
}
