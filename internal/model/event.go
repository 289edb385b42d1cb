package model

import (
	"slices"
	"time"
)

// DateLayout is the only accepted event date format. Dates are stored as
// text, so ordering by the column is lexicographic and relies on it.
const DateLayout = "2006-01-02"

// UnknownUsername is shown when an event's owner cannot be resolved.
const UnknownUsername = "unknown"

// EventLocations is the fixed set of cities an event may take place in.
var EventLocations = []string{
	"Stockholm",
	"Göteborg",
	"Malmö",
	"Uppsala",
	"Västerås",
	"Örebro",
	"Linköping",
	"Helsingborg",
	"Jönköping",
	"Norrköping",
	"Lund",
	"Umeå",
	"Gävle",
	"Borås",
	"Eskilstuna",
	"Södertälje",
	"Karlstad",
	"Täby",
	"Växjö",
	"Halmstad",
}

// EventCategories is the fixed set of event categories.
var EventCategories = []string{
	"Languages",
	"Sports",
	"Social",
	"Arts and theatre",
	"Xmas",
	"Other",
}

// IsValidLocation reports whether loc is one of EventLocations.
func IsValidLocation(loc string) bool {
	return slices.Contains(EventLocations, loc)
}

// IsValidCategory reports whether cat is one of EventCategories.
func IsValidCategory(cat string) bool {
	return slices.Contains(EventCategories, cat)
}

// Event is a happening created by a user. Events are never edited.
type Event struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
}

// IsOwnedBy reports whether userID created the event.
func (e *Event) IsOwnedBy(userID int64) bool {
	return userID != 0 && e.UserID == userID
}

// EventListing is an event annotated for display.
type EventListing struct {
	Event
	Username      string `json:"username"`
	AttendeeCount int64  `json:"attendee_count"`
}

// Attendance marks a user as going to an event.
type Attendance struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	EventID      int64     `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}
