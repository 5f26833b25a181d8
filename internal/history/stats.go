package history

import (
	"time"

	"github.com/mindwell/mindwell/internal/models"
)

// dayOf collapses a timestamp to its calendar day. Any time of day within
// the same day counts as the same day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StreakDays counts consecutive calendar days, walking backward from today,
// with at least one session each. The streak breaks at the first empty day.
func (s *Store) StreakDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) == 0 {
		return 0
	}

	byDay := make(map[time.Time]bool, len(s.sessions))
	for _, sess := range s.sessions {
		byDay[dayOf(sess.Date)] = true
	}

	streak := 0
	day := dayOf(s.now())
	for byDay[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// SessionsCount counts sessions within the period's calendar window.
func (s *Store) SessionsCount(period models.Period) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, sess := range s.sessions {
		if period.Contains(sess.Date, now) {
			count++
		}
	}
	return count
}

// SessionsThisMonth counts sessions in the current calendar month.
func (s *Store) SessionsThisMonth() int {
	return s.SessionsCount(models.PeriodMonth)
}

// AverageMoodScore returns the arithmetic mean of session mood scores, or 0
// for an empty list.
func (s *Store) AverageMoodScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) == 0 {
		return 0
	}
	sum := 0
	for _, sess := range s.sessions {
		sum += sess.Mood.Score()
	}
	return float64(sum) / float64(len(s.sessions))
}

// SessionsForProfile projects each session into the profile view's 2-valued
// status: good for scores 4-5, bad for everything else, neutral included.
func (s *Store) SessionsForProfile() []models.ProfileSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ProfileSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		status := models.StatusBad
		if sess.Mood.Score() >= 4 {
			status = models.StatusGood
		}
		out = append(out, models.ProfileSession{
			ID:     sess.ID,
			Date:   sess.Date,
			Status: status,
		})
	}
	return out
}
