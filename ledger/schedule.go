package ledger

import (
	"errors"
	"fmt"
	"time"
)

// RepeatKind is the unit a schedule repeats in.
type RepeatKind int

const (
	Daily RepeatKind = iota + 1
	Weekly
	Monthly
	Yearly
)

// RepeatRule describes how often a schedule repeats. Only the DateStepper
// interprets it.
type RepeatRule struct {
	Kind  RepeatKind
	Every int
}

// DateStepper returns the date of occurrence count (0 being start).
type DateStepper func(start time.Time, rule RepeatRule, count int) (time.Time, error)

// CalendarStep is a DateStepper on plain calendar arithmetic. Month ends
// overflow the way time.AddDate does.
func CalendarStep(start time.Time, rule RepeatRule, count int) (time.Time, error) {
	every := rule.Every
	if every <= 0 {
		every = 1
	}
	n := every * count
	switch rule.Kind {
	case Daily:
		return start.AddDate(0, 0, n), nil
	case Weekly:
		return start.AddDate(0, 0, 7*n), nil
	case Monthly:
		return start.AddDate(0, n, 0), nil
	case Yearly:
		return start.AddDate(n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown repeat kind %d", int(rule.Kind))
}

var ErrUnboundedSchedule = errors.New("schedule has no stop date and no cook limit")

// Schedule repeats a reference transaction.
type Schedule struct {
	Ref  *Transaction
	Rule RepeatRule
	Stop time.Time
	Step DateStepper
}

func NewSchedule(ref *Transaction, rule RepeatRule, stop time.Time) *Schedule {
	return &Schedule{Ref: ref, Rule: rule, Stop: stop, Step: CalendarStep}
}

// Spawns materializes the occurrences dated within [from, until]. Spawns
// are unreconciled copies of the reference transaction.
func (s *Schedule) Spawns(from, until time.Time) ([]*Transaction, error) {
	if until.IsZero() && s.Stop.IsZero() {
		return nil, ErrUnboundedSchedule
	}
	var (
		spawns []*Transaction
		prev   time.Time
	)
	for count := 0; ; count++ {
		date, err := s.Step(s.Ref.Date, s.Rule, count)
		if err != nil {
			return nil, err
		}
		if (!until.IsZero() && date.After(until)) || (!s.Stop.IsZero() && date.After(s.Stop)) {
			break
		}
		if count > 0 && !date.After(prev) {
			return nil, fmt.Errorf("occurrence %d on %s does not follow %s", count, date.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		prev = date
		if !from.IsZero() && date.Before(from) {
			continue
		}
		spawn := s.Ref.Replicate()
		spawn.Type = RecurrenceSpawn
		spawn.Date = date
		for _, split := range spawn.splits {
			split.Unreconcile()
		}
		spawns = append(spawns, spawn)
	}
	return spawns, nil
}
