package models

import "time"

// MoodEntry is one manual journal check-in. Entries are local-authoritative:
// the JSON tags define the durable storage format.
type MoodEntry struct {
	ID     string    `json:"id"`
	Rating int       `json:"rating"`
	Note   string    `json:"note"`
	Date   time.Time `json:"date"`
}

// Mood returns the entry's rating as a mood level.
func (e MoodEntry) Mood() MoodLevel {
	return MoodFromScore(e.Rating)
}
