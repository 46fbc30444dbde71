package system

import (
	"time"

	"github.com/google/uuid"

	"obra/internal/ports"
)

// Clock implements ports.Clock using the wall clock in UTC
type Clock struct{}

// Verify interface compliance at compile time
var _ ports.Clock = (*Clock)(nil)

// NewClock creates a new Clock
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC
func (c *Clock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator implements ports.IDGenerator using random UUIDs
type IDGenerator struct{}

// Verify interface compliance at compile time
var _ ports.IDGenerator = (*IDGenerator)(nil)

// NewIDGenerator creates a new IDGenerator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID returns a new random UUID string
func (g *IDGenerator) NewID() string {
	return uuid.New().String()
}
