package scheduling

import (
	"sort"
	"time"

	"github.com/Dosada05/padel-system/models"
)

// TimeSlot is a free window on a single court.
type TimeSlot struct {
	CourtID int
	Start   time.Time
	End     time.Time
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether a booking occupying [existingStart, existingEnd)
// collides with a requested [newStart, newEnd) on the same court. A booking
// conflicts when the new interval starts inside it, ends inside it, or fully
// contains it.
func Overlaps(existingStart, existingEnd, newStart, newEnd time.Time) bool {
	if !existingStart.After(newStart) && existingEnd.After(newStart) {
		return true
	}
	if existingStart.Before(newEnd) && !existingEnd.Before(newEnd) {
		return true
	}
	if !existingStart.Before(newStart) && !existingEnd.After(newEnd) {
		return true
	}
	return false
}

// FirstConflict returns the first booked match that collides with the
// requested interval, or nil. Matches without both timestamps are ignored.
func FirstConflict(booked []*models.Match, start, end time.Time) *models.Match {
	for _, match := range booked {
		if match.ScheduledStart == nil || match.ScheduledEnd == nil {
			continue
		}
		if Overlaps(*match.ScheduledStart, *match.ScheduledEnd, start, end) {
			return match
		}
	}
	return nil
}

// FreeSlots subtracts booked matches from a court's availability window and
// returns the remaining free windows in chronological order. Bookings
// entirely outside the window are skipped.
func FreeSlots(courtID int, windowStart, windowEnd time.Time, booked []*models.Match) []TimeSlot {
	slots := make([]TimeSlot, 0)
	if !windowStart.Before(windowEnd) {
		return slots
	}

	sorted := make([]*models.Match, 0, len(booked))
	for _, match := range booked {
		if match.ScheduledStart == nil || match.ScheduledEnd == nil {
			continue
		}
		if !match.ScheduledEnd.After(windowStart) || !match.ScheduledStart.Before(windowEnd) {
			continue
		}
		sorted = append(sorted, match)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledStart.Before(*sorted[j].ScheduledStart)
	})

	lastEnd := windowStart
	for _, match := range sorted {
		if lastEnd.Before(*match.ScheduledStart) {
			slots = append(slots, TimeSlot{CourtID: courtID, Start: lastEnd, End: *match.ScheduledStart})
		}
		if match.ScheduledEnd.After(lastEnd) {
			lastEnd = *match.ScheduledEnd
		}
	}
	if lastEnd.Before(windowEnd) {
		slots = append(slots, TimeSlot{CourtID: courtID, Start: lastEnd, End: windowEnd})
	}

	return slots
}
