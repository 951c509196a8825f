package clock

import (
	"time"

	uuid "github.com/satori/go.uuid"
)

// Clock is the single time source for expiry checks and timestamps.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewV4().String() }
