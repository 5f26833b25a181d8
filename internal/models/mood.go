// Package models holds the domain types shared across the app: moods,
// sessions, journal entries, and reporting periods.
package models

// MoodLevel is a 5-point mood scale. The numeric values double as scores.
type MoodLevel int

const (
	MoodVeryBad MoodLevel = iota + 1
	MoodBad
	MoodNeutral
	MoodGood
	MoodVeryGood
)

// Score returns the 1-5 numeric score.
func (m MoodLevel) Score() int {
	return int(m)
}

// Slug returns the wire identifier used by the backend.
func (m MoodLevel) Slug() string {
	switch m {
	case MoodVeryBad:
		return "very_sad"
	case MoodBad:
		return "sad"
	case MoodGood:
		return "happy"
	case MoodVeryGood:
		return "very_happy"
	default:
		return "neutral"
	}
}

// Title returns a human-readable label.
func (m MoodLevel) Title() string {
	switch m {
	case MoodVeryBad:
		return "Very bad"
	case MoodBad:
		return "Bad"
	case MoodGood:
		return "Good"
	case MoodVeryGood:
		return "Very good"
	default:
		return "Neutral"
	}
}

// MoodFromScore maps a 1-5 score back to a level. Out-of-range scores read
// as neutral rather than failing.
func MoodFromScore(score int) MoodLevel {
	if score < 1 || score > 5 {
		return MoodNeutral
	}
	return MoodLevel(score)
}
