package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/glowdesk/receptionist/internal/appointments"
)

// Checker validates candidate slots against business hours and existing
// appointments, and proposes alternatives on conflict.
type Checker struct {
	store       appointments.Store
	openingHour int
	closingHour int
}

// NewChecker builds a checker over the given store. Hours form the
// half-open band [opening, closing) on a 24-hour clock.
func NewChecker(store appointments.Store, openingHour, closingHour int) *Checker {
	if openingHour <= 0 && closingHour <= 0 {
		openingHour, closingHour = 9, 17
	}
	return &Checker{store: store, openingHour: openingHour, closingHour: closingHour}
}

// IsAvailable reports whether the date+time slot can be booked. A slot
// outside business hours is rejected regardless of store contents. A slot
// conflicts when any stored appointment has the identical date and time
// string; service identity does not disambiguate.
func (c *Checker) IsAvailable(ctx context.Context, date, timeStr, service string) (bool, error) {
	hour, ok := hourOf(timeStr)
	if !ok {
		return false, nil
	}
	if hour < c.openingHour || hour >= c.closingHour {
		return false, nil
	}

	records, err := c.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("schedule: load appointments: %w", err)
	}
	for _, r := range records {
		if r.Date == date && r.Time == timeStr {
			return false, nil
		}
	}
	return true, nil
}

// SuggestAlternatives enumerates the whole-hour slots inside business hours
// for the date, in ascending order, returning those still available.
func (c *Checker) SuggestAlternatives(ctx context.Context, date, service string) ([]string, error) {
	var available []string
	for hour := c.openingHour; hour < c.closingHour; hour++ {
		slot := fmt.Sprintf("%02d:00", hour)
		ok, err := c.IsAvailable(ctx, date, slot, service)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, slot)
		}
	}
	return available, nil
}

// hourOf extracts the hour component of an HH:MM string. A malformed time
// yields false and the slot is treated as unavailable.
func hourOf(timeStr string) (int, bool) {
	parts := strings.SplitN(timeStr, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}
