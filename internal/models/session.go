package models

import "time"

// Session is one counseling session from the server's history.
type Session struct {
	ID   int
	Date time.Time
	Mood MoodLevel
	Note string
}

// ProfileStatus is the profile view's collapsed 2-valued session status.
// The values reuse the score scale: 4 reads as good, 2 as bad.
type ProfileStatus int

const (
	StatusBad  ProfileStatus = 2
	StatusGood ProfileStatus = 4
)

// Icon names the weather glyph shown for the status.
func (s ProfileStatus) Icon() string {
	if s == StatusGood {
		return "sun"
	}
	return "rain"
}

// ProfileSession is a session projected for the profile view.
type ProfileSession struct {
	ID     int
	Date   time.Time
	Status ProfileStatus
}

// SessionInfo describes a just-opened chat session.
type SessionInfo struct {
	ID    int
	IsNew bool
}

// MoodStatistics are the server-computed mood aggregates.
type MoodStatistics struct {
	TotalSessions     int
	AverageScore      float64
	StreakDays        int
	SessionsThisMonth int
}
