package models

// Attendance status values cast by members on an event.
const (
	AttendeeStatusAvailable    = "available"
	AttendeeStatusNotAvailable = "not-available"
	AttendeeStatusPending      = "pending"
)

// EventAttendee is the per-member voting record attached to an event.
type EventAttendee struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// Event is a scheduled team event. At most one attendee exists per member.
type Event struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Date               string          `json:"event_date"`
	Time               string          `json:"event_time"`
	Location           string          `json:"location"`
	Description        string          `json:"description"`
	GatherAvailability bool            `json:"gather_availability"`
	Attendees          []EventAttendee `json:"attendees"`
}

// Clone returns a copy that does not share the attendee slice.
func (e Event) Clone() Event {
	clone := e
	if e.Attendees != nil {
		clone.Attendees = make([]EventAttendee, len(e.Attendees))
		copy(clone.Attendees, e.Attendees)
	}
	return clone
}

// IsValidAttendeeStatus reports whether status is a known attendance state.
func IsValidAttendeeStatus(status string) bool {
	switch status {
	case AttendeeStatusAvailable, AttendeeStatusNotAvailable, AttendeeStatusPending:
		return true
	default:
		return false
	}
}
