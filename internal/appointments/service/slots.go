package service

import (
	"fmt"
	"time"

	"patitas_backend/platform/apperr"
)

// Visit slots run on a half hour grid during shelter opening hours.
const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"

	firstSlotHour   = 9
	lastSlotHour    = 17
	lastSlotMinute  = 30
	slotGridMinutes = 30

	// Bookings open at most one month ahead.
	maxAdvanceMonths = 1
)

// parseSlot validates the requested visit date and slot time against the
// grid and the booking window. Same-day bookings are allowed as long as
// the slot itself has not started yet. The returned time is the slot
// start in the server's location.
func parseSlot(now time.Time, visitDate, slotTime string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, visitDate, now.Location())
	if err != nil {
		return time.Time{}, apperr.BadRequest("visitDate must be formatted as YYYY-MM-DD")
	}

	slot, err := time.Parse(slotLayout, slotTime)
	if err != nil {
		return time.Time{}, apperr.BadRequest("slotTime must be formatted as HH:MM")
	}
	if slot.Minute()%slotGridMinutes != 0 {
		return time.Time{}, apperr.BadRequest("slotTime must fall on a half hour")
	}
	if slot.Hour() < firstSlotHour ||
		slot.Hour() > lastSlotHour ||
		(slot.Hour() == lastSlotHour && slot.Minute() > lastSlotMinute) {
		return time.Time{}, apperr.BadRequest(fmt.Sprintf(
			"slotTime must be between %02d:00 and %02d:%02d", firstSlotHour, lastSlotHour, lastSlotMinute))
	}

	slotStart := time.Date(day.Year(), day.Month(), day.Day(), slot.Hour(), slot.Minute(), 0, 0, now.Location())
	if !slotStart.After(now) {
		return time.Time{}, apperr.Validation("visit slot must be in the future")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.After(today.AddDate(0, maxAdvanceMonths, 0)) {
		return time.Time{}, apperr.Validation("visits can be booked at most one month ahead")
	}

	return slotStart, nil
}

// slotGrid enumerates every bookable slot time for a day.
func slotGrid() []string {
	slots := make([]string, 0, 18)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		for minute := 0; minute < 60; minute += slotGridMinutes {
			if hour == lastSlotHour && minute > lastSlotMinute {
				break
			}
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}
