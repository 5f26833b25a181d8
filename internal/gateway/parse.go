package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mindwell/mindwell/internal/models"
)

// dateLayouts are tried in order when parsing server date strings. The
// backend has been observed emitting all five.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"01/02/2006",
}

// serverTZ is the fixed reference zone for server dates. Falls back to UTC
// when the zone database is unavailable.
var serverTZ = loadServerTZ()

func loadServerTZ() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.UTC
	}
	return loc
}

// sessionEnvelope is the top-level shape of GET /Session/History.
type sessionEnvelope struct {
	Content json.RawMessage `json:"content"`
}

// parseSessionHistory decodes the session-history payload. The server
// encodes each session positionally as [id, dateString, statusCode].
// Malformed tuples are dropped, never failing the batch; a missing or
// differently-shaped content field means zero sessions, not an error.
func parseSessionHistory(body []byte) ([]models.Session, error) {
	var env sessionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindDecoding, Message: fmt.Sprintf("malformed session history response: %v", err)}
	}
	if len(env.Content) == 0 {
		return nil, nil
	}

	var tuples [][]json.RawMessage
	if err := json.Unmarshal(env.Content, &tuples); err != nil {
		log.Printf("gateway: session history content is not a tuple list, treating as empty")
		return nil, nil
	}

	sessions := make([]models.Session, 0, len(tuples))
	for i, tuple := range tuples {
		s, ok := decodeSessionTuple(tuple)
		if !ok {
			log.Printf("gateway: dropping malformed session tuple %d", i)
			continue
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	return sessions, nil
}

// decodeSessionTuple decodes one positional session tuple. The positional
// contract, documented once here: index 0 is the server-assigned session ID,
// index 1 the date string, index 2 the 3-valued status code.
func decodeSessionTuple(tuple []json.RawMessage) (models.Session, bool) {
	if len(tuple) < 3 {
		return models.Session{}, false
	}

	var id int
	if err := json.Unmarshal(tuple[0], &id); err != nil {
		id = 0
	}

	var dateString string
	if err := json.Unmarshal(tuple[1], &dateString); err != nil {
		return models.Session{}, false
	}
	date, ok := parseServerDate(dateString)
	if !ok {
		return models.Session{}, false
	}

	status := 1
	if err := json.Unmarshal(tuple[2], &status); err != nil {
		status = 1
	}

	return models.Session{
		ID:   id,
		Date: date,
		Mood: statusToMood(status),
		Note: fmt.Sprintf("AI counseling session on %s", strings.TrimSpace(dateString)),
	}, true
}

// parseServerDate tries each known layout in the fixed server zone.
func parseServerDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, serverTZ); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// statusToMood maps the server's 3-valued status to a mood level. The
// asymmetry (1 is good, 3 is bad, 2 unused) matches the counterpart web
// encoding and must not be "corrected" to a linear scale.
func statusToMood(status int) models.MoodLevel {
	switch status {
	case 1:
		return models.MoodGood
	case 3:
		return models.MoodBad
	default:
		return models.MoodNeutral
	}
}

// parseProfile decodes GET /Account/About. The first content row is used;
// positions: [_, fullName, phone, email, sessionBalance, avatarURL].
func parseProfile(body []byte) (*models.UserProfile, error) {
	var env sessionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindDecoding, Message: fmt.Sprintf("malformed profile response: %v", err)}
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(env.Content, &rows); err != nil || len(rows) == 0 {
		return nil, &Error{Kind: KindDecoding, Message: "profile response has no content rows"}
	}

	row := rows[0]
	if len(row) < 5 {
		return nil, &Error{Kind: KindDecoding, Message: fmt.Sprintf("profile row has %d fields, want at least 5", len(row))}
	}

	// Individual field decode failures leave the zero value; only a missing
	// row fails the whole profile.
	p := &models.UserProfile{}
	json.Unmarshal(row[1], &p.FullName)
	json.Unmarshal(row[2], &p.Phone)
	json.Unmarshal(row[3], &p.Email)
	json.Unmarshal(row[4], &p.SessionBalance)
	if len(row) > 5 {
		json.Unmarshal(row[5], &p.AvatarURL)
	}
	return p, nil
}
