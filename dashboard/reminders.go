/*
Package dashboard derives reminders and summary figures from stored records.

PURPOSE:
  Read-only views over the record store, recomputed on every request:
  today's and upcoming client birthdays, policies due for renewal, and the
  report totals shown on the dashboard.

WINDOWS:
  Birthday window: (today, today+7]. A birthday on today's month/day is
                   listed under Today only.
  Renewal window:  [today, today+30], both ends inclusive.

  All comparisons are between calendar dates; "today" is the caller's local
  date, passed in explicitly.

LEAP DAYS:
  A 29 February birthday falls on 28 February in non-leap years.

SEE ALSO:
  - reports.go: Reporting aggregator
  - records/dates.go: Display date parsing
*/
package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/samvbk/insurance-dashboard/records"
	"go.uber.org/zap"
)

const (
	BirthdayWindowDays = 7
	RenewalWindowDays  = 30
)

// =============================================================================
// TYPES
// =============================================================================

// UpcomingBirthday is a client whose next birthday falls inside the window.
type UpcomingBirthday struct {
	Client records.Client
	Date   time.Time // the coming occurrence
	InDays int
}

// Birthdays groups the birthday reminders for one day.
type Birthdays struct {
	Today    []records.Client
	Upcoming []UpcomingBirthday
	// Unreadable counts clients skipped because their dob couldn't be parsed.
	Unreadable int
}

// Renewal is a policy whose end date falls inside the renewal window.
type Renewal struct {
	records.PolicyListing
	EndDate  time.Time
	DaysLeft int
}

// =============================================================================
// REMINDER ENGINE
// =============================================================================

// Reminders computes birthday and renewal reminders.
type Reminders struct {
	logger *zap.Logger
}

func NewReminders(logger *zap.Logger) *Reminders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reminders{logger: logger}
}

// Birthdays lists clients whose birthday is today or within the next seven days.
// Clients without a readable dob are skipped.
func (r *Reminders) Birthdays(ctx context.Context, st records.Store, today time.Time) (*Birthdays, error) {
	clients, err := st.FindClients(ctx, "")
	if err != nil {
		return nil, err
	}

	day := records.CalendarDate(today)
	limit := day.AddDate(0, 0, BirthdayWindowDays)
	out := &Birthdays{}

	for _, c := range clients {
		if strings.TrimSpace(c.DOB) == "" {
			continue
		}
		dob, err := records.ParseDisplay(c.DOB)
		if err != nil {
			r.logger.Debug("skipping unreadable dob",
				zap.Int64("client_id", int64(c.ID)), zap.String("dob", c.DOB))
			out.Unreadable++
			continue
		}

		next := occurrence(dob, day.Year())
		if next.Equal(day) {
			out.Today = append(out.Today, c)
			continue
		}
		if next.Before(day) {
			next = occurrence(dob, day.Year()+1)
		}
		if next.After(limit) {
			continue
		}
		out.Upcoming = append(out.Upcoming, UpcomingBirthday{
			Client: c,
			Date:   next,
			InDays: records.DaysBetween(day, next),
		})
	}

	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return out.Upcoming[i].Date.Before(out.Upcoming[j].Date)
	})
	return out, nil
}

// UpcomingRenewals lists policies ending between today and today+30, soonest first.
func (r *Reminders) UpcomingRenewals(ctx context.Context, st records.Store, today time.Time) ([]Renewal, error) {
	listings, err := st.FindPolicies(ctx, "")
	if err != nil {
		return nil, err
	}
	return renewalsDue(listings, today), nil
}

// RenewalCount counts policies ending between today and today+30.
func (r *Reminders) RenewalCount(ctx context.Context, st records.Store, today time.Time) (int, error) {
	renewals, err := r.UpcomingRenewals(ctx, st, today)
	if err != nil {
		return 0, err
	}
	return len(renewals), nil
}

func renewalsDue(listings []records.PolicyListing, today time.Time) []Renewal {
	day := records.CalendarDate(today)
	limit := day.AddDate(0, 0, RenewalWindowDays)

	var due []Renewal
	for _, l := range listings {
		end, err := records.ParseDisplay(l.EndDate)
		if err != nil || end.IsZero() {
			continue
		}
		if end.Before(day) || end.After(limit) {
			continue
		}
		due = append(due, Renewal{
			PolicyListing: l,
			EndDate:       end,
			DaysLeft:      records.DaysBetween(day, end),
		})
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].EndDate.Before(due[j].EndDate)
	})
	return due
}

// occurrence places dob's month and day in year.
func occurrence(dob time.Time, year int) time.Time {
	month, d := dob.Month(), dob.Day()
	if month == time.February && d == 29 && !isLeap(year) {
		d = 28
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
