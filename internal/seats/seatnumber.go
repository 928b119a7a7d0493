package seats

import (
	"fmt"
	"strconv"
	"strings"
)

// Letters is the per-row seat layout, aisle-ordered.
var Letters = []string{"A", "B", "C", "D", "E", "F"}

// ParseSeatNumber splits a seat like "12A" into row and letter.
func ParseSeatNumber(seat string) (int, string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(seat))
	if len(trimmed) < 2 {
		return 0, "", fmt.Errorf("invalid seat number %q", seat)
	}
	letter := trimmed[len(trimmed)-1:]
	if !isSeatLetter(letter) {
		return 0, "", fmt.Errorf("invalid seat letter in %q", seat)
	}
	row, err := strconv.Atoi(trimmed[:len(trimmed)-1])
	if err != nil || row < 1 {
		return 0, "", fmt.Errorf("invalid seat row in %q", seat)
	}
	return row, letter, nil
}

// ValidateSeatNumber checks a seat against the flight's row count.
func ValidateSeatNumber(seat string, seatRows int) error {
	row, _, err := ParseSeatNumber(seat)
	if err != nil {
		return err
	}
	if seatRows > 0 && row > seatRows {
		return fmt.Errorf("seat %q is beyond row %d", seat, seatRows)
	}
	return nil
}

// NextSeat returns the seat after the given one in cabin order, wrapping from
// the last letter of a row to the first letter of the next.
func NextSeat(seat string) (string, error) {
	row, letter, err := ParseSeatNumber(seat)
	if err != nil {
		return "", err
	}
	for i, candidate := range Letters {
		if candidate == letter {
			if i+1 < len(Letters) {
				return fmt.Sprintf("%d%s", row, Letters[i+1]), nil
			}
			return fmt.Sprintf("%d%s", row+1, Letters[0]), nil
		}
	}
	return "", fmt.Errorf("invalid seat letter in %q", seat)
}

func isSeatLetter(letter string) bool {
	for _, candidate := range Letters {
		if candidate == letter {
			return true
		}
	}
	return false
}
