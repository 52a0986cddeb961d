package postlib

import (
	"testing"
	"time"
)

// allocatorFixture builds an allocator over an in-memory schedule with a
// deterministic clock. now is a Wednesday so "tomorrow" is Thursday.
func allocatorFixture(t *testing.T, cfg *ScheduleConfig) *Allocator {
	t.Helper()
	alloc := NewAllocator(newTestScheduleStore(t, cfg))
	alloc.Now = func() time.Time {
		return time.Date(2026, time.September, 2, 10, 0, 0, 0, time.UTC)
	}
	return alloc
}

func everyDay() []string {
	return []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
}

// TestNextSlotSameDayDistinctSlots verifies that two back-to-back
// allocations on a platform with two daily slot times land on the same day:
// the in-batch reservation blocks the first instant without saturating the
// day cap, which only binds through committed bookings.
func TestNextSlotSameDayDistinctSlots(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				ClipTypes: map[string][]Slot{
					"short": {
						{Days: everyDay(), Time: "09:00"},
						{Days: everyDay(), Time: "15:00"},
					},
				},
				Slots:     []Slot{{Days: everyDay(), Time: "12:00"}},
				MaxPerDay: 1,
			},
		},
	})
	booked := NewBookedSet()

	first, err := alloc.NextSlot("youtube", "short", booked)
	if err != nil {
		t.Fatalf("first NextSlot: %v", err)
	}
	want := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	if !first.Equal(want) {
		t.Fatalf("expected first slot %v, got %v", want, first)
	}

	booked.Reserve("youtube", first, time.UTC)
	second, err := alloc.NextSlot("youtube", "short", booked)
	if err != nil {
		t.Fatalf("second NextSlot: %v", err)
	}
	want = time.Date(2026, time.September, 3, 15, 0, 0, 0, time.UTC)
	if !second.Equal(want) {
		t.Fatalf("expected second slot %v on the same day, got %v", want, second)
	}
}

// TestNextSlotSkipsSaturatedDay verifies a committed booking at the day cap
// pushes the next allocation to the following day.
func TestNextSlotSkipsSaturatedDay(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots: []Slot{
					{Days: everyDay(), Time: "09:00"},
					{Days: everyDay(), Time: "15:00"},
				},
				MaxPerDay: 1,
			},
		},
	})
	booked := NewBookedSet()
	booked.Add("youtube", time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC), time.UTC)

	got, err := alloc.NextSlot("youtube", "", booked)
	if err != nil {
		t.Fatalf("NextSlot: %v", err)
	}
	want := time.Date(2026, time.September, 4, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected next-day slot %v, got %v", want, got)
	}
}

// TestNextSlotHonorsAvoidDays verifies blacked-out weekdays are skipped
// entirely. Thursday and Friday are avoided, so the walk lands on Saturday.
func TestNextSlotHonorsAvoidDays(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"linkedin": {
				Slots:     []Slot{{Days: everyDay(), Time: "09:30"}},
				MaxPerDay: 1,
				AvoidDays: []string{"thu", "fri"},
			},
		},
	})
	got, err := alloc.NextSlot("linkedin", "", NewBookedSet())
	if err != nil {
		t.Fatalf("NextSlot: %v", err)
	}
	want := time.Date(2026, time.September, 5, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v (saturday), got %v", want, got)
	}
}

// TestNextSlotRespectsSlotWeekdays verifies a slot only applies on the
// weekdays it lists.
func TestNextSlotRespectsSlotWeekdays(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"twitter": {
				Slots:     []Slot{{Days: []string{"mon"}, Time: "08:00"}},
				MaxPerDay: 1,
			},
		},
	})
	got, err := alloc.NextSlot("twitter", "", NewBookedSet())
	if err != nil {
		t.Fatalf("NextSlot: %v", err)
	}
	// 2026-09-02 is a Wednesday; the next Monday is 2026-09-07.
	want := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v (monday), got %v", want, got)
	}
}

// TestNextSlotExhaustsHorizon verifies ErrNoAvailableSlot once every day in
// the horizon is blacked out.
func TestNextSlotExhaustsHorizon(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots:     []Slot{{Days: everyDay(), Time: "09:00"}},
				MaxPerDay: 1,
				AvoidDays: everyDay(),
			},
		},
	})
	if _, err := alloc.NextSlot("youtube", "", NewBookedSet()); err != ErrNoAvailableSlot {
		t.Fatalf("expected ErrNoAvailableSlot, got %v", err)
	}
}

// TestNextSlotUnknownPlatform verifies allocation against an unconfigured
// platform reports ErrNoSchedule.
func TestNextSlotUnknownPlatform(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone:  "UTC",
		Platforms: map[string]*PlatformSchedule{},
	})
	if _, err := alloc.NextSlot("myspace", "", NewBookedSet()); err != ErrNoSchedule {
		t.Fatalf("expected ErrNoSchedule, got %v", err)
	}
}

// TestAvailableSlotsLaw verifies the slot-set law: the call returns
// min(count, reachable) instants, none booked beforehand, all booked
// afterwards, and no two equal.
func TestAvailableSlotsLaw(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"tiktok": {
				Slots: []Slot{
					{Days: everyDay(), Time: "12:00"},
					{Days: everyDay(), Time: "19:00"},
				},
				MaxPerDay: 2,
			},
		},
	})
	booked := NewBookedSet()
	slots, err := alloc.AvailableSlots("tiktok", "", 5, booked)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	seen := make(map[string]bool)
	for _, s := range slots {
		key := s.Format(time.RFC3339)
		if seen[key] {
			t.Fatalf("slot %v issued twice", s)
		}
		seen[key] = true
		if !booked.Has("tiktok", s, time.UTC) {
			t.Fatalf("slot %v missing from booked set afterwards", s)
		}
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].Before(slots[i]) {
			t.Fatalf("slots not strictly ascending: %v then %v", slots[i-1], slots[i])
		}
	}
}

// TestAvailableSlotsZeroCount verifies a non-positive count yields no
// instants and leaves the booked set untouched.
func TestAvailableSlotsZeroCount(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots:     []Slot{{Days: everyDay(), Time: "09:00"}},
				MaxPerDay: 1,
			},
		},
	})
	for _, count := range []int{0, -1} {
		booked := NewBookedSet()
		slots, err := alloc.AvailableSlots("youtube", "", count, booked)
		if err != nil {
			t.Fatalf("AvailableSlots(count=%d): %v", count, err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected 0 slots for count=%d, got %d", count, len(slots))
		}
		if booked.Len() != 0 {
			t.Fatalf("count=%d mutated the booked set: %d entries", count, booked.Len())
		}
	}
}

// TestAvailableSlotsCountsTowardCap verifies allocations within one walk
// saturate the day immediately: with maxPerDay=1 and two slot times, two
// requested slots land on two different days.
func TestAvailableSlotsCountsTowardCap(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots: []Slot{
					{Days: everyDay(), Time: "09:00"},
					{Days: everyDay(), Time: "15:00"},
				},
				MaxPerDay: 1,
			},
		},
	})
	slots, err := alloc.AvailableSlots("youtube", "", 2, NewBookedSet())
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Day() == slots[1].Day() && slots[0].Month() == slots[1].Month() {
		t.Fatalf("expected slots on distinct days, got %v and %v", slots[0], slots[1])
	}
}

// TestAvailableSlotsShortHorizon verifies fewer than count slots come back
// when the horizon runs out first.
func TestAvailableSlotsShortHorizon(t *testing.T) {
	alloc := allocatorFixture(t, &ScheduleConfig{
		Timezone: "UTC",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots:     []Slot{{Days: everyDay(), Time: "09:00"}},
				MaxPerDay: 1,
			},
		},
	})
	alloc.HorizonDays = 3
	slots, err := alloc.AvailableSlots("youtube", "", 10, NewBookedSet())
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots within horizon, got %d", len(slots))
	}
}

// TestSlotInstantAcrossDSTTransition verifies the slot instant recomputes
// the UTC offset per calendar date. 2026-03-08 is the US spring-forward
// date: a 09:00 New York slot is UTC-5 before it and UTC-4 after.
func TestSlotInstantAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}
	alloc := NewAllocator(newTestScheduleStore(t, &ScheduleConfig{
		Timezone: "America/New_York",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots:     []Slot{{Days: everyDay(), Time: "09:00"}},
				MaxPerDay: 1,
			},
		},
	}))
	alloc.Now = func() time.Time {
		return time.Date(2026, time.March, 6, 12, 0, 0, 0, loc)
	}

	booked := NewBookedSet()
	slots, err := alloc.AvailableSlots("youtube", "", 2, booked)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	_, off1 := slots[0].Zone() // Mar 7, EST
	_, off2 := slots[1].Zone() // Mar 8, EDT
	if off1 != -5*3600 || off2 != -4*3600 {
		t.Fatalf("expected offsets -5h then -4h across DST, got %d and %d", off1, off2)
	}
	for _, s := range slots {
		if s.Hour() != 9 || s.Minute() != 0 {
			t.Fatalf("expected 09:00 local on both sides of DST, got %v", s)
		}
	}
}

// TestBookedSetMinuteIdentity verifies slot identity is minute-truncated:
// instants differing only in seconds collide.
func TestBookedSetMinuteIdentity(t *testing.T) {
	booked := NewBookedSet()
	at := time.Date(2026, time.September, 3, 9, 0, 17, 0, time.UTC)
	booked.Add("youtube", at, time.UTC)
	if !booked.Has("youtube", at.Truncate(time.Minute), time.UTC) {
		t.Fatalf("expected minute-truncated instant to collide")
	}
	if booked.Has("tiktok", at, time.UTC) {
		t.Fatalf("identity must include the platform")
	}
	if booked.CountOn("youtube", at, time.UTC) != 1 {
		t.Fatalf("expected day count 1, got %d", booked.CountOn("youtube", at, time.UTC))
	}
}
