package services

import (
	"time"

	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns a Clock backed by the system time.
func NewRealClock() portssvc.Clock {
	return realClock{}
}
