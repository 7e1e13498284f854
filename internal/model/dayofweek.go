package model

import (
	"fmt"
	"time"
)

// DayOfWeek is the canonical weekday enum. Ordering is fixed Monday..Sunday
// and is used for sorting; never derive a weekday from a formatted string.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{
	"MONDAY",
	"TUESDAY",
	"WEDNESDAY",
	"THURSDAY",
	"FRIDAY",
	"SATURDAY",
	"SUNDAY",
}

// AllDays lists every weekday in canonical order.
func AllDays() []DayOfWeek {
	return []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDayOfWeek parses the wire/storage form ("MONDAY".."SUNDAY").
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i, name := range dayNames {
		if name == s {
			return DayOfWeek(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", s)
}

// DayOfDate is the single conversion point from a calendar date to a
// DayOfWeek. time.Weekday numbers Sunday as 0; this enum starts at Monday.
func DayOfDate(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Sunday:
		return Sunday
	default:
		return DayOfWeek(int(t.Weekday()) - 1)
	}
}
