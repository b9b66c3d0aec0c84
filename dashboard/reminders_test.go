package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/samvbk/insurance-dashboard/records"
	"github.com/samvbk/insurance-dashboard/records/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedClients(t *testing.T, dobs map[string]string) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	for name, dob := range dobs {
		require.NoError(t, st.CreateClient(context.Background(), &records.Client{Name: name, DOB: dob}))
	}
	return st
}

func names(clients []records.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.Name
	}
	return out
}

// =============================================================================
// BIRTHDAYS
// =============================================================================

func TestBirthdays_TodayIsNotAlsoUpcoming(t *testing.T) {
	// GIVEN: A client born 15/06/1990
	st := seedClients(t, map[string]string{"Anita": "15/06/1990"})

	// WHEN: Today is 15 June 2024
	b, err := NewReminders(nil).Birthdays(context.Background(), st, day(2024, 6, 15))

	// THEN: Listed under today only
	require.NoError(t, err)
	assert.Equal(t, []string{"Anita"}, names(b.Today))
	assert.Empty(t, b.Upcoming)
}

func TestBirthdays_UpcomingWithinSevenDays(t *testing.T) {
	st := seedClients(t, map[string]string{"Anita": "15/06/1990"})

	// WHEN: Today is 10 June 2024
	b, err := NewReminders(nil).Birthdays(context.Background(), st, day(2024, 6, 10))

	// THEN: Upcoming in five days
	require.NoError(t, err)
	assert.Empty(t, b.Today)
	require.Len(t, b.Upcoming, 1)
	assert.Equal(t, day(2024, 6, 15), b.Upcoming[0].Date)
	assert.Equal(t, 5, b.Upcoming[0].InDays)
}

func TestBirthdays_WindowEdges(t *testing.T) {
	st := seedClients(t, map[string]string{
		"Yesterday": "09/06/1980",
		"PlusSeven": "17/06/1980",
		"PlusEight": "18/06/1980",
		"NoDOB":     "",
		"Garbled":   "1980-06-12",
	})

	b, err := NewReminders(nil).Birthdays(context.Background(), st, day(2024, 6, 10))

	require.NoError(t, err)
	assert.Empty(t, b.Today)
	require.Len(t, b.Upcoming, 1)
	assert.Equal(t, "PlusSeven", b.Upcoming[0].Client.Name)
	assert.Equal(t, 7, b.Upcoming[0].InDays)
	assert.Equal(t, 1, b.Unreadable, "only the garbled dob is unreadable; a missing one is skipped")
}

func TestBirthdays_WrapsYearEnd(t *testing.T) {
	st := seedClients(t, map[string]string{
		"NewYear": "02/01/1975",
		"Eve":     "31/12/1975",
	})

	b, err := NewReminders(nil).Birthdays(context.Background(), st, day(2024, 12, 28))

	require.NoError(t, err)
	require.Len(t, b.Upcoming, 2)
	assert.Equal(t, "Eve", b.Upcoming[0].Client.Name)
	assert.Equal(t, day(2024, 12, 31), b.Upcoming[0].Date)
	assert.Equal(t, "NewYear", b.Upcoming[1].Client.Name)
	assert.Equal(t, day(2025, 1, 2), b.Upcoming[1].Date)
	assert.Equal(t, 5, b.Upcoming[1].InDays)
}

func TestBirthdays_LeapDay(t *testing.T) {
	st := seedClients(t, map[string]string{"Leapling": "29/02/2000"})
	r := NewReminders(nil)

	// Non-leap year: celebrated on 28 February
	b, err := r.Birthdays(context.Background(), st, day(2023, 2, 28))
	require.NoError(t, err)
	assert.Equal(t, []string{"Leapling"}, names(b.Today))

	// Leap year: 29 February, upcoming from the 25th
	b, err = r.Birthdays(context.Background(), st, day(2024, 2, 25))
	require.NoError(t, err)
	require.Len(t, b.Upcoming, 1)
	assert.Equal(t, day(2024, 2, 29), b.Upcoming[0].Date)
}

// =============================================================================
// RENEWALS
// =============================================================================

func seedPolicies(t *testing.T, policies map[string]string) *store.Memory {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	c := &records.Client{Name: "Owner"}
	require.NoError(t, st.CreateClient(ctx, c))
	for number, end := range policies {
		p := &records.Policy{ClientID: c.ID, PolicyNumber: number, EndDate: end, Premium: decimal.NewFromInt(100)}
		require.NoError(t, st.CreatePolicy(ctx, p))
	}
	return st
}

func TestUpcomingRenewals_InclusiveWindow(t *testing.T) {
	// GIVEN: Today is 10 June 2024, so the window is 10/06/2024 to 10/07/2024
	st := seedPolicies(t, map[string]string{
		"ENDED":    "09/06/2024",
		"TODAY":    "10/06/2024",
		"LAST-DAY": "10/07/2024",
		"TOO-LATE": "11/07/2024",
		"NEXT-YR":  "15/06/2025",
		"UNDATED":  "",
		"GARBLED":  "2024-06-20",
	})
	r := NewReminders(nil)

	renewals, err := r.UpcomingRenewals(context.Background(), st, day(2024, 6, 10))

	// THEN: Both edges are included, soonest first
	require.NoError(t, err)
	require.Len(t, renewals, 2)
	assert.Equal(t, "TODAY", renewals[0].PolicyNumber)
	assert.Equal(t, 0, renewals[0].DaysLeft)
	assert.Equal(t, "LAST-DAY", renewals[1].PolicyNumber)
	assert.Equal(t, 30, renewals[1].DaysLeft)
	assert.Equal(t, "Owner", renewals[1].ClientName)

	n, err := r.RenewalCount(context.Background(), st, day(2024, 6, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpcomingRenewals_AcrossYearEnd(t *testing.T) {
	st := seedPolicies(t, map[string]string{"JAN": "05/01/2025"})

	renewals, err := NewReminders(nil).UpcomingRenewals(context.Background(), st, day(2024, 12, 20))

	require.NoError(t, err)
	require.Len(t, renewals, 1)
	assert.Equal(t, 16, renewals[0].DaysLeft)
}
