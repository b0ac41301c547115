package dunning

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const day = 24 * time.Hour

/* Schedule is the reminder plan as data
 * ReminderDays are day offsets from the first payment failure. A record whose failure is
 * older than GracePeriodDays is expired. Reminders sent on or after FinalWarningDay tell
 * the customer the subscription will be canceled.
 */
type Schedule struct {
	ReminderDays    []int `yaml:"reminder_days"`
	GracePeriodDays int   `yaml:"grace_period_days"`
	FinalWarningDay int   `yaml:"final_warning_day"`
}

// DefaultSchedule reminds on days 0, 3, 7 and 10 and expires after 10 days
func DefaultSchedule() Schedule {
	return Schedule{
		ReminderDays:    []int{0, 3, 7, 10},
		GracePeriodDays: 10,
		FinalWarningDay: 7,
	}
}

// LoadSchedule reads a YAML schedule; fields left out keep their default
func LoadSchedule(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("reading schedule file: %w", err)
	}

	s := DefaultSchedule()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schedule{}, fmt.Errorf("parsing schedule YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate checks that reminder days start at 0 and strictly increase
func (s Schedule) Validate() error {
	if len(s.ReminderDays) == 0 {
		return fmt.Errorf("%w: schedule needs at least one reminder day", ErrInvalid)
	}
	if s.ReminderDays[0] != 0 {
		return fmt.Errorf("%w: first reminder day must be 0, got %d", ErrInvalid, s.ReminderDays[0])
	}
	for i := 1; i < len(s.ReminderDays); i++ {
		if s.ReminderDays[i] <= s.ReminderDays[i-1] {
			return fmt.Errorf("%w: reminder days must strictly increase, %d follows %d",
				ErrInvalid, s.ReminderDays[i], s.ReminderDays[i-1])
		}
	}
	if s.GracePeriodDays < 1 {
		return fmt.Errorf("%w: grace period must be at least 1 day", ErrInvalid)
	}
	if s.FinalWarningDay < 0 {
		return fmt.Errorf("%w: final warning day cannot be negative", ErrInvalid)
	}
	return nil
}

// Contains reports whether d is one of the reminder days
func (s Schedule) Contains(d int) bool {
	for _, rd := range s.ReminderDays {
		if rd == d {
			return true
		}
	}
	return false
}

// NextReminderDay returns the first reminder day after last; false once the schedule is exhausted
func (s Schedule) NextReminderDay(last int) (int, bool) {
	for _, rd := range s.ReminderDays {
		if rd > last {
			return rd, true
		}
	}
	return 0, false
}

// NextFor returns the next step for a record. A record that has never been reminded is due for the first step.
func (s Schedule) NextFor(r Record) (int, bool) {
	if r.LastReminderSentAt == nil {
		return s.ReminderDays[0], true
	}
	return s.NextReminderDay(r.LastReminderSent)
}

// DaysSince returns the whole days elapsed from failedAt to now, rounded down
func DaysSince(failedAt, now time.Time) int {
	return int(math.Floor(float64(now.Sub(failedAt)) / float64(day)))
}

// IsDue reports whether an open record has reached its next reminder day
func (s Schedule) IsDue(r Record, now time.Time) (int, bool) {
	if !r.Open() {
		return 0, false
	}
	next, ok := s.NextFor(r)
	if !ok {
		return 0, false
	}
	return next, DaysSince(r.FailedAt, now) >= next
}

// ExpiryCutoff is the failure time before which open records are expired
func (s Schedule) ExpiryCutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(s.GracePeriodDays) * day)
}

// IsExpired reports whether an open record failed more than the grace period ago
func (s Schedule) IsExpired(r Record, now time.Time) bool {
	return r.Open() && r.FailedAt.Before(s.ExpiryCutoff(now))
}

// GracePeriodEnd is when the record's grace period runs out
func (s Schedule) GracePeriodEnd(r Record) time.Time {
	return r.FailedAt.Add(time.Duration(s.GracePeriodDays) * day)
}
