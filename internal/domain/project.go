package domain

import "time"

// Project represents a tracked software project backed by one git checkout
type Project struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Path      string
	UpdatedAt time.Time
}
