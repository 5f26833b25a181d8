package models

import (
	"testing"
	"time"
)

// --- MoodLevel ---

func TestMoodLevel_Score(t *testing.T) {
	if got := MoodVeryBad.Score(); got != 1 {
		t.Errorf("MoodVeryBad.Score() = %d, want 1", got)
	}
	if got := MoodVeryGood.Score(); got != 5 {
		t.Errorf("MoodVeryGood.Score() = %d, want 5", got)
	}
}

func TestMoodLevel_Slug(t *testing.T) {
	cases := map[MoodLevel]string{
		MoodVeryBad:  "very_sad",
		MoodBad:      "sad",
		MoodNeutral:  "neutral",
		MoodGood:     "happy",
		MoodVeryGood: "very_happy",
	}
	for level, want := range cases {
		if got := level.Slug(); got != want {
			t.Errorf("Slug(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestMoodFromScore_Valid(t *testing.T) {
	for score := 1; score <= 5; score++ {
		if got := MoodFromScore(score); got.Score() != score {
			t.Errorf("MoodFromScore(%d).Score() = %d", score, got.Score())
		}
	}
}

func TestMoodFromScore_OutOfRange(t *testing.T) {
	for _, score := range []int{0, -1, 6, 100} {
		if got := MoodFromScore(score); got != MoodNeutral {
			t.Errorf("MoodFromScore(%d) = %v, want MoodNeutral", score, got)
		}
	}
}

// --- MoodEntry ---

func TestMoodEntry_Mood(t *testing.T) {
	e := MoodEntry{Rating: 5}
	if got := e.Mood(); got != MoodVeryGood {
		t.Errorf("Mood() = %v, want MoodVeryGood", got)
	}
}

// --- Period ---

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"week", "month", "year", "all"} {
		p, err := ParsePeriod(s)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", s, err)
		}
		if p.String() != s {
			t.Errorf("ParsePeriod(%q).String() = %q", s, p.String())
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestPeriod_Contains_Month(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	sameMonth := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)

	if !PeriodMonth.Contains(sameMonth, now) {
		t.Error("same calendar month should be contained")
	}
	if PeriodMonth.Contains(lastMonth, now) {
		t.Error("previous month should not be contained")
	}
}

func TestPeriod_Contains_WeekIsCalendarWeek(t *testing.T) {
	// Wednesday and the Monday of the same ISO week.
	now := time.Date(2025, 7, 16, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	prevSunday := time.Date(2025, 7, 13, 23, 0, 0, 0, time.UTC)

	if !PeriodWeek.Contains(monday, now) {
		t.Error("Monday of the same ISO week should be contained")
	}
	if PeriodWeek.Contains(prevSunday, now) {
		t.Error("Sunday of the previous ISO week should not be contained")
	}
}

func TestPeriod_Contains_All(t *testing.T) {
	now := time.Now()
	ancient := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	if !PeriodAll.Contains(ancient, now) {
		t.Error("PeriodAll should contain everything")
	}
}

func TestProfileStatus_Icon(t *testing.T) {
	if StatusGood.Icon() != "sun" || StatusBad.Icon() != "rain" {
		t.Errorf("icons = %q/%q", StatusGood.Icon(), StatusBad.Icon())
	}
}
