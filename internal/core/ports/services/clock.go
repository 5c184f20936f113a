package services

import "time"

// Clock is an injectable time source so period-boundary logic is deterministic
// under test.
type Clock interface {
	Now() time.Time
}
