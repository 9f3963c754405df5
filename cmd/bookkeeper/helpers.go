package main

import (
	"fmt"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// parseDayFlag parses an optional YYYY-MM-DD flag; empty yields the zero time.
func parseDayFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", name, value)
	}
	return d, nil
}
