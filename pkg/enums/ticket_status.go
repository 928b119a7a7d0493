package enums

import "fmt"

// TicketStatus tracks the lifecycle of an issued ticket.
type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "booked"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCheckedIn TicketStatus = "checked_in"
	TicketStatusCancelled TicketStatus = "cancelled"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusBooked,
	TicketStatusConfirmed,
	TicketStatusCheckedIn,
	TicketStatusCancelled,
}

// ActiveTicketStatuses are the statuses whose seat bindings occupy the ledger.
var ActiveTicketStatuses = []TicketStatus{
	TicketStatusBooked,
	TicketStatusConfirmed,
	TicketStatusCheckedIn,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsActive reports whether a ticket in this status holds its seat.
func (t TicketStatus) IsActive() bool {
	return t != TicketStatusCancelled && t.IsValid()
}

// CanCheckIn reports whether check-in is allowed from this status.
func (t TicketStatus) CanCheckIn() bool {
	return t == TicketStatusBooked || t == TicketStatusConfirmed
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
