// Package service implements the reading tracker's use cases on top of the
// readlog engine and a store.Backend.
package service

import (
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// today returns the UTC day of the clock's current time.
func (c Clock) today() time.Time {
	if c == nil {
		return domain.Day(time.Now())
	}
	return domain.Day(c())
}
