package conversation

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLocation returns the *time.Location for a timezone name.
// Falls back to UTC if the name is empty or unknown.
func DisplayLocation(timezone string) *time.Location {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatAppointmentTime renders an instant for the recipient, e.g.
// "Tuesday, October 20 at 3:00 PM IST".
func FormatAppointmentTime(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	return local.Format("Monday, January 2") + " at " + local.Format("3:04 PM MST")
}

// FormatBookingConfirmation builds the deterministic booking-path reply.
func FormatBookingConfirmation(name string, at time.Time, loc *time.Location) string {
	return fmt.Sprintf(
		"Thanks, %s! Your appointment is booked for %s. Reply to this message if you need to change anything.",
		name, FormatAppointmentTime(at, loc))
}
