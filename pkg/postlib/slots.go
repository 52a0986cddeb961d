package postlib

import (
	"fmt"
	"time"
)

// DefaultHorizonDays bounds how far ahead the allocator walks looking for a
// free slot.
const DefaultHorizonDays = 60

// BookedSet tracks which slots are already claimed. Slot identity is the
// platform plus the minute-truncated local instant; that same identity is
// used everywhere a slot is compared, so rounding can never double-book.
//
// The set carries two notions of "claimed": committed bookings (Add), which
// count toward the per-day cap, and in-batch reservations (Reserve), which
// only block the exact instant. A reservation exists between the moment a
// remote post is created and the moment the batch commits it to the store;
// it must block re-issue of the instant but does not saturate the day, so a
// later item in the same batch can still use the day's remaining slot times.
type BookedSet struct {
	slots  map[string]struct{}
	perDay map[string]int
}

// NewBookedSet returns an empty booked set.
func NewBookedSet() *BookedSet {
	return &BookedSet{
		slots:  make(map[string]struct{}),
		perDay: make(map[string]int),
	}
}

func slotKey(platform string, t time.Time) string {
	return platform + "|" + t.Format("2006-01-02 15:04")
}

func dayKey(platform string, t time.Time) string {
	return platform + "|" + t.Format("2006-01-02")
}

// Add records a committed booking: the instant is claimed and counts toward
// the platform's per-day cap. The instant is interpreted in loc.
func (b *BookedSet) Add(platform string, at time.Time, loc *time.Location) {
	local := at.In(loc)
	key := slotKey(platform, local)
	if _, ok := b.slots[key]; ok {
		return
	}
	b.slots[key] = struct{}{}
	b.perDay[dayKey(platform, local)]++
}

// Reserve claims the exact instant without counting it toward the day cap.
func (b *BookedSet) Reserve(platform string, at time.Time, loc *time.Location) {
	b.slots[slotKey(platform, at.In(loc))] = struct{}{}
}

// Has reports whether the instant is already claimed for the platform.
func (b *BookedSet) Has(platform string, at time.Time, loc *time.Location) bool {
	_, ok := b.slots[slotKey(platform, at.In(loc))]
	return ok
}

// CountOn returns the committed bookings for the platform on the local
// calendar day containing at.
func (b *BookedSet) CountOn(platform string, at time.Time, loc *time.Location) int {
	return b.perDay[dayKey(platform, at.In(loc))]
}

// Len returns the number of claimed slot identities.
func (b *BookedSet) Len() int { return len(b.slots) }

// Allocator walks a platform's weekly template forward from tomorrow and
// hands out collision-free posting instants. It keeps no state of its own;
// all booked knowledge comes in through the BookedSet.
type Allocator struct {
	Schedules   *ScheduleStore
	HorizonDays int
	Now         func() time.Time
}

// NewAllocator creates an allocator over the given schedule store.
func NewAllocator(schedules *ScheduleStore) *Allocator {
	return &Allocator{
		Schedules:   schedules,
		HorizonDays: DefaultHorizonDays,
		Now:         time.Now,
	}
}

// NextSlot returns the earliest free instant for the platform and clip type,
// or ErrNoAvailableSlot if the horizon is exhausted. The walk starts at
// tomorrow 00:00 in the platform's timezone; ties break by ascending time of
// day, then ascending date. The booked set is not modified.
func (a *Allocator) NextSlot(platform, clipType string, booked *BookedSet) (time.Time, error) {
	var out time.Time
	err := a.walk(platform, clipType, booked, func(t time.Time) bool {
		out = t
		return false
	})
	if err != nil {
		return time.Time{}, err
	}
	if out.IsZero() {
		return time.Time{}, ErrNoAvailableSlot
	}
	return out, nil
}

// AvailableSlots collects up to count free instants, inserting each one into
// booked as it goes so the returned instants never collide with each other.
// Fewer than count instants are returned when the horizon runs out first.
func (a *Allocator) AvailableSlots(platform, clipType string, count int, booked *BookedSet) ([]time.Time, error) {
	cfg, err := a.Schedules.Load()
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}
	slots := make([]time.Time, 0, count)
	err = a.walk(platform, clipType, booked, func(t time.Time) bool {
		slots = append(slots, t)
		booked.Add(platform, t, cfg.Location())
		return len(slots) < count
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// walk scans day by day from tomorrow, invoking accept for every free
// candidate until accept returns false or the horizon ends.
func (a *Allocator) walk(platform, clipType string, booked *BookedSet, accept func(time.Time) bool) error {
	sched, err := a.Schedules.PlatformSchedule(platform, clipType)
	if err != nil {
		return err
	}
	cfg, err := a.Schedules.Load()
	if err != nil {
		return err
	}
	loc := cfg.Location()
	horizon := a.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	now := a.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	for i := 0; i < horizon; i++ {
		day := start.AddDate(0, 0, i)
		if sched.Avoids(day.Weekday()) {
			continue
		}
		if booked.CountOn(platform, day, loc) >= sched.MaxPerDay {
			continue
		}
		for _, hhmm := range sched.TimesOn(day.Weekday()) {
			candidate, err := slotInstant(day, hhmm, loc)
			if err != nil {
				return err
			}
			if booked.Has(platform, candidate, loc) {
				continue
			}
			if !accept(candidate) {
				return nil
			}
			// Day may have saturated through accept's bookkeeping.
			if booked.CountOn(platform, day, loc) >= sched.MaxPerDay {
				break
			}
		}
	}
	return nil
}

// slotInstant computes the absolute instant of an HH:MM slot on a specific
// calendar date. time.Date resolves the UTC offset for that exact date, so
// the result stays correct across daylight-saving transitions.
func slotInstant(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hh, &mm); err != nil {
		return time.Time{}, fmt.Errorf("bad slot time %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, loc), nil
}
