package postlib

import (
	"sort"
	"time"
)

// CalendarEntry is one upcoming slot in the schedule projection.
type CalendarEntry struct {
	Platform string    `json:"platform"`
	At       time.Time `json:"at"`
	Label    string    `json:"label,omitempty"`
	Booked   bool      `json:"booked"`
}

// Calendar projects the upcoming slots of every configured platform over the
// next days, marking which ones are already claimed. It is a read-only view
// for display; nothing is allocated or reserved.
func (a *Allocator) Calendar(days int, booked *BookedSet) ([]*CalendarEntry, error) {
	cfg, err := a.Schedules.Load()
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()
	if days <= 0 {
		days = 7
	}

	now := a.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	var entries []*CalendarEntry
	for platform := range cfg.Platforms {
		sched, err := a.Schedules.PlatformSchedule(platform, "")
		if err != nil {
			if err == ErrNoSchedule {
				continue
			}
			return nil, err
		}
		for i := 0; i < days; i++ {
			day := start.AddDate(0, 0, i)
			if sched.Avoids(day.Weekday()) {
				continue
			}
			for _, hhmm := range sched.TimesOn(day.Weekday()) {
				at, err := slotInstant(day, hhmm, loc)
				if err != nil {
					return nil, err
				}
				entries = append(entries, &CalendarEntry{
					Platform: platform,
					At:       at,
					Label:    labelFor(sched.Slots, day.Weekday(), hhmm),
					Booked:   booked.Has(platform, at, loc),
				})
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return entries[i].Platform < entries[j].Platform
		}
		return entries[i].At.Before(entries[j].At)
	})
	return entries, nil
}

func labelFor(slots []Slot, d time.Weekday, hhmm string) string {
	for _, s := range slots {
		if s.Time != hhmm {
			continue
		}
		for _, day := range s.Days {
			if dayAbbrevs[day] == d {
				return s.Label
			}
		}
	}
	return ""
}
