package dashboard

import (
	"context"
	"time"

	"github.com/samvbk/insurance-dashboard/records"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard and reports view.
type Summary struct {
	ClientCount         int
	PolicyCount         int
	AgencyCount         int
	UpcomingPolicyCount int
	TotalPremium        decimal.Decimal
	AsOf                time.Time
}

// Reports aggregates figures over the whole store. Nothing is cached.
type Reports struct{}

func NewReports() *Reports {
	return &Reports{}
}

// TotalPremium sums every policy's premium; missing premiums count as zero.
func (r *Reports) TotalPremium(ctx context.Context, st records.Store) (decimal.Decimal, error) {
	listings, err := st.FindPolicies(ctx, "")
	if err != nil {
		return decimal.Zero, err
	}
	return sumPremiums(listings), nil
}

// ClientCount returns the number of clients.
func (r *Reports) ClientCount(ctx context.Context, st records.Store) (int, error) {
	return st.CountClients(ctx)
}

// UpcomingPolicyCount counts policies due for renewal within 30 days of today.
func (r *Reports) UpcomingPolicyCount(ctx context.Context, st records.Store, today time.Time) (int, error) {
	listings, err := st.FindPolicies(ctx, "")
	if err != nil {
		return 0, err
	}
	return len(renewalsDue(listings, today)), nil
}

// Summary computes every dashboard figure from one pass over the policies.
func (r *Reports) Summary(ctx context.Context, st records.Store, today time.Time) (*Summary, error) {
	clients, err := st.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := st.FindPolicies(ctx, "")
	if err != nil {
		return nil, err
	}
	agencies, err := st.ListAgencies(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		ClientCount:         clients,
		PolicyCount:         len(listings),
		AgencyCount:         len(agencies),
		UpcomingPolicyCount: len(renewalsDue(listings, today)),
		TotalPremium:        sumPremiums(listings),
		AsOf:                records.CalendarDate(today),
	}, nil
}

func sumPremiums(listings []records.PolicyListing) decimal.Decimal {
	total := decimal.Zero
	for _, l := range listings {
		total = total.Add(l.Premium)
	}
	return total
}
