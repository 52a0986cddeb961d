package postlib

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Slot is one recurring entry of a platform's weekly template: a time of day
// on a set of weekdays.
type Slot struct {
	Days  []string `json:"days"`
	Time  string   `json:"time"`
	Label string   `json:"label,omitempty"`
}

// PlatformSchedule is the weekly posting template for one platform.
type PlatformSchedule struct {
	// Slots is the default slot table.
	Slots []Slot `json:"slots"`
	// ClipTypes holds clip-type specific slot tables. A matching entry takes
	// precedence over Slots.
	ClipTypes map[string][]Slot `json:"clip_types,omitempty"`
	// MaxPerDay caps committed bookings per calendar day in the configured
	// timezone. Must be >= 1.
	MaxPerDay int `json:"max_per_day"`
	// AvoidDays lists weekdays that never receive posts.
	AvoidDays []string `json:"avoid_days,omitempty"`
	// DefaultAccount is the posting account used when an item does not
	// carry an account override.
	DefaultAccount string `json:"default_account,omitempty"`
}

// ScheduleConfig is the full schedule file: one timezone, one template per
// platform.
type ScheduleConfig struct {
	Timezone  string                       `json:"timezone"`
	Platforms map[string]*PlatformSchedule `json:"platforms"`

	loc *time.Location
}

// Location returns the config's timezone location. Valid only after the
// config passed validation.
func (c *ScheduleConfig) Location() *time.Location {
	return c.loc
}

// ResolvedSchedule is a platform schedule with the slot table already chosen
// for a clip type and the slot times of each weekday pre-sorted.
type ResolvedSchedule struct {
	Platform       string
	Slots          []Slot
	MaxPerDay      int
	DefaultAccount string

	avoid map[time.Weekday]bool
}

// Avoids reports whether the weekday is blacked out for this platform.
func (r *ResolvedSchedule) Avoids(d time.Weekday) bool {
	return r.avoid[d]
}

// TimesOn returns the slot times applying on the given weekday, ascending.
func (r *ResolvedSchedule) TimesOn(d time.Weekday) []string {
	var times []string
	for _, s := range r.Slots {
		for _, day := range s.Days {
			if dayAbbrevs[day] == d {
				times = append(times, s.Time)
				break
			}
		}
	}
	sort.Strings(times)
	return times
}

var (
	timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	dayAbbrevs = map[string]time.Weekday{
		"mon": time.Monday,
		"tue": time.Tuesday,
		"wed": time.Wednesday,
		"thu": time.Thursday,
		"fri": time.Friday,
		"sat": time.Saturday,
		"sun": time.Sunday,
	}
)

// ValidateScheduleConfig checks the schedule config invariants and resolves
// its timezone. The returned error is a *ValidationError naming the first
// offending field.
func ValidateScheduleConfig(cfg *ScheduleConfig) error {
	if cfg == nil {
		return newValidationError("config must be a non-null object")
	}
	if cfg.Timezone == "" {
		return newValidationError("timezone is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return newValidationError("unknown timezone %q", cfg.Timezone)
	}
	cfg.loc = loc
	for key, ps := range cfg.Platforms {
		if ps == nil {
			return newValidationError("platform %q must be a non-null object", key)
		}
		if ps.MaxPerDay < 1 {
			return newValidationError("platform %q: maxPerDay must be >= 1", key)
		}
		if err := validateSlots(key, ps.Slots); err != nil {
			return err
		}
		for clipType, slots := range ps.ClipTypes {
			if err := validateSlots(key+"/"+clipType, slots); err != nil {
				return err
			}
		}
		for _, day := range ps.AvoidDays {
			if _, ok := dayAbbrevs[day]; !ok {
				return newValidationError("platform %q: invalid day %q in avoidDays", key, day)
			}
		}
	}
	return nil
}

func validateSlots(scope string, slots []Slot) error {
	for i, s := range slots {
		if !timeRe.MatchString(s.Time) {
			return newValidationError("platform %q: slot %d time %q must be 24-hour HH:MM", scope, i, s.Time)
		}
		for _, day := range s.Days {
			if _, ok := dayAbbrevs[day]; !ok {
				return newValidationError("platform %q: slot %d has invalid day %q", scope, i, day)
			}
		}
	}
	return nil
}

// ScheduleStore loads, validates and caches the schedule config file. When
// the file does not exist yet, a default template is synthesized and
// persisted so there is always something to edit.
type ScheduleStore struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	cached *ScheduleConfig
}

// NewScheduleStore creates a store reading the config at path on fs.
func NewScheduleStore(fs afero.Fs, path string) *ScheduleStore {
	return &ScheduleStore{fs: fs, path: path}
}

// Load returns the validated schedule config, reading it from disk on the
// first call and from cache afterwards.
func (s *ScheduleStore) Load() (*ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}
	cfg, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := ValidateScheduleConfig(cfg); err != nil {
		return nil, err
	}
	s.cached = cfg
	return cfg, nil
}

// ClearCache forces the next Load to re-read the file.
func (s *ScheduleStore) ClearCache() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// PlatformSchedule resolves the slot table for a platform and clip type.
// Clip-type specific slots win over the platform default. Returns
// ErrNoSchedule if the platform is unknown or ends up with no slots, which
// means this platform/clip-type pair cannot be scheduled at all.
func (s *ScheduleStore) PlatformSchedule(platform, clipType string) (*ResolvedSchedule, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	ps, ok := cfg.Platforms[platform]
	if !ok {
		return nil, ErrNoSchedule
	}
	slots := ps.Slots
	if clipType != "" {
		if ct, ok := ps.ClipTypes[clipType]; ok {
			slots = ct
		}
	}
	if len(slots) == 0 {
		return nil, ErrNoSchedule
	}
	avoid := make(map[time.Weekday]bool, len(ps.AvoidDays))
	for _, day := range ps.AvoidDays {
		avoid[dayAbbrevs[day]] = true
	}
	return &ResolvedSchedule{
		Platform:       platform,
		Slots:          slots,
		MaxPerDay:      ps.MaxPerDay,
		DefaultAccount: ps.DefaultAccount,
		avoid:          avoid,
	}, nil
}

func (s *ScheduleStore) read() (*ScheduleConfig, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		cfg := DefaultScheduleConfig()
		if werr := s.write(cfg); werr != nil {
			return nil, fmt.Errorf("persist default schedule: %w", werr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schedule config: %w", err)
	}
	var cfg ScheduleConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, newValidationError("malformed schedule file: %v", err)
	}
	return &cfg, nil
}

func (s *ScheduleStore) write(cfg *ScheduleConfig) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, append(b, '\n'), 0644)
}

var weekdays = []string{"mon", "tue", "wed", "thu", "fri"}

// DefaultScheduleConfig returns the template synthesized on first run:
// five platforms, one timezone, weekday slots only.
func DefaultScheduleConfig() *ScheduleConfig {
	everyWeekday := func(t, label string) Slot {
		return Slot{Days: weekdays, Time: t, Label: label}
	}
	return &ScheduleConfig{
		Timezone: "America/New_York",
		Platforms: map[string]*PlatformSchedule{
			"youtube": {
				Slots:     []Slot{everyWeekday("15:00", "afternoon")},
				ClipTypes: map[string][]Slot{"short": {everyWeekday("09:00", "morning short"), everyWeekday("17:00", "evening short")}},
				MaxPerDay: 2,
			},
			"tiktok": {
				Slots:     []Slot{everyWeekday("12:00", "lunch"), everyWeekday("19:00", "prime")},
				MaxPerDay: 3,
			},
			"instagram": {
				Slots:     []Slot{everyWeekday("11:00", "late morning")},
				MaxPerDay: 2,
				AvoidDays: []string{"sun"},
			},
			"twitter": {
				Slots:     []Slot{everyWeekday("08:00", "commute"), everyWeekday("13:00", "lunch")},
				MaxPerDay: 4,
			},
			"linkedin": {
				Slots:     []Slot{everyWeekday("09:30", "office hours")},
				MaxPerDay: 1,
				AvoidDays: []string{"sat", "sun"},
			},
		},
	}
}
