package enums

import "fmt"

// SeatPreference captures how a cart line item wants its seats assigned.
type SeatPreference string

const (
	// SeatPreferenceExplicit pins a concrete seat number at purchase time.
	SeatPreferenceExplicit SeatPreference = "explicit"
	// SeatPreferenceDeferred leaves seat selection to check-in.
	SeatPreferenceDeferred SeatPreference = "deferred"
	// SeatPreferenceRandom lets the system allocate; priced at zero.
	SeatPreferenceRandom SeatPreference = "random"
)

var validSeatPreferences = []SeatPreference{
	SeatPreferenceExplicit,
	SeatPreferenceDeferred,
	SeatPreferenceRandom,
}

// String implements fmt.Stringer.
func (s SeatPreference) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SeatPreference.
func (s SeatPreference) IsValid() bool {
	for _, candidate := range validSeatPreferences {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeatPreference converts raw input into a SeatPreference.
func ParseSeatPreference(value string) (SeatPreference, error) {
	for _, candidate := range validSeatPreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seat preference %q", value)
}
