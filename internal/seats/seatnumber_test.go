package seats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatNumber(t *testing.T) {
	t.Parallel()

	row, letter, err := ParseSeatNumber("12A")
	require.NoError(t, err)
	assert.Equal(t, 12, row)
	assert.Equal(t, "A", letter)

	row, letter, err = ParseSeatNumber(" 3f ")
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, "F", letter)

	for _, bad := range []string{"", "A", "12", "0A", "12G", "A12", "-1B"} {
		_, _, err := ParseSeatNumber(bad)
		assert.Error(t, err, "seat %q", bad)
	}
}

func TestValidateSeatNumber(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSeatNumber("30F", 30))
	assert.Error(t, ValidateSeatNumber("31A", 30))
	assert.Error(t, ValidateSeatNumber("nope", 30))
}

func TestNextSeat(t *testing.T) {
	t.Parallel()

	next, err := NextSeat("12A")
	require.NoError(t, err)
	assert.Equal(t, "12B", next)

	next, err = NextSeat("12F")
	require.NoError(t, err)
	assert.Equal(t, "13A", next)

	_, err = NextSeat("12G")
	assert.Error(t, err)
}
