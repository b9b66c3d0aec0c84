package records

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain date", "1990-06-15", "15/06/1990"},
		{"leap day", "2024-02-29", "29/02/2024"},
		{"surrounding spaces", " 2023-01-05 ", "05/01/2023"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDisplay(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDisplay_RejectsMalformed(t *testing.T) {
	for _, input := range []string{"15/06/1990", "1990-13-01", "2023-02-29", "1990-6-15", "yesterday"} {
		t.Run(input, func(t *testing.T) {
			_, err := ToDisplay(input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDate))
			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "YYYY-MM-DD", fe.Layout)
			assert.Equal(t, input, fe.Value)
		})
	}
}

func TestToInput(t *testing.T) {
	got, err := ToInput("15/06/1990")
	require.NoError(t, err)
	assert.Equal(t, "1990-06-15", got)

	got, err = ToInput("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ToInput("1990-06-15")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "DD/MM/YYYY", fe.Layout)
}

func TestDateRoundTrip(t *testing.T) {
	// Every calendar day of a leap year survives the trip in both directions.
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == 2024 {
		input := day.Format(InputLayout)
		display := day.Format(DisplayLayout)

		gotDisplay, err := ToDisplay(input)
		require.NoError(t, err)
		backInput, err := ToInput(gotDisplay)
		require.NoError(t, err)
		assert.Equal(t, input, backInput)

		gotInput, err := ToInput(display)
		require.NoError(t, err)
		backDisplay, err := ToDisplay(gotInput)
		require.NoError(t, err)
		assert.Equal(t, display, backDisplay)

		day = day.AddDate(0, 0, 1)
	}
}

func TestParseDisplay(t *testing.T) {
	got, err := ParseDisplay("01/12/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDisplay("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDisplay("32/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCalendarDate_UsesLocalDay(t *testing.T) {
	// GIVEN: 23:30 on 14 June in a zone ahead of UTC
	loc := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2024, 6, 14, 23, 30, 0, 0, loc)

	// THEN: the calendar date is the local one, not the UTC one
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), CalendarDate(local))
	assert.Equal(t, 1, DaysBetween(local, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestEndDateLess(t *testing.T) {
	early := Policy{ID: 3, EndDate: "01/02/2024"}
	late := Policy{ID: 1, EndDate: "15/01/2025"}
	undated := Policy{ID: 2}
	garbled := Policy{ID: 4, EndDate: "2024-01-01"}
	sameDay := Policy{ID: 5, EndDate: "01/02/2024"}

	// Lexically "15/01/2025" < "01/02/2024" is false but by date it's later.
	assert.True(t, EndDateLess(early, late))
	assert.False(t, EndDateLess(late, early))
	assert.True(t, EndDateLess(late, undated))
	assert.True(t, EndDateLess(late, garbled))
	assert.True(t, EndDateLess(undated, garbled), "ties among undated fall back to id")
	assert.True(t, EndDateLess(early, sameDay))
}
