package enums

import "fmt"

// SeatClass identifies the cabin class of a selected seat.
type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "first"
)

var validSeatClasses = []SeatClass{
	SeatClassEconomy,
	SeatClassBusiness,
	SeatClassFirst,
}

// String implements fmt.Stringer.
func (s SeatClass) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SeatClass.
func (s SeatClass) IsValid() bool {
	for _, candidate := range validSeatClasses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeatClass converts raw input into a SeatClass.
func ParseSeatClass(value string) (SeatClass, error) {
	for _, candidate := range validSeatClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seat class %q", value)
}
