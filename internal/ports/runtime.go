package ports

import "time"

// Clock returns the current time. History ordering relies on timestamps
// being rendered in a sortable, string-comparable layout.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces collision-free identifiers for new entities
type IDGenerator interface {
	NewID() string
}
