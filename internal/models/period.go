package models

import (
	"fmt"
	"time"
)

// Period is a calendar reporting window. Windows are calendar-aligned, not
// rolling: "week" means the current ISO week, not the last seven days.
type Period int

const (
	PeriodWeek Period = iota
	PeriodMonth
	PeriodYear
	PeriodAll
)

// ParsePeriod parses a period name: week, month, year, or all.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	case "all":
		return PeriodAll, nil
	default:
		return PeriodAll, fmt.Errorf("models: unknown period %q (want week, month, year, or all)", s)
	}
}

func (p Period) String() string {
	switch p {
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	default:
		return "all"
	}
}

// Contains reports whether t falls in the same calendar window as now.
func (p Period) Contains(t, now time.Time) bool {
	switch p {
	case PeriodWeek:
		ty, tw := t.ISOWeek()
		ny, nw := now.ISOWeek()
		return ty == ny && tw == nw
	case PeriodMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	case PeriodYear:
		return t.Year() == now.Year()
	default:
		return true
	}
}
