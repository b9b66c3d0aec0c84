package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samvbk/insurance-dashboard/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReminderScheduler_RunNow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// GIVEN: A birthday today and a policy ending within the month
	c := &records.Client{Name: "Anita", DOB: "10/06/1988"}
	require.NoError(t, s.store.CreateClient(ctx, c))
	require.NoError(t, s.store.CreatePolicy(ctx, &records.Policy{ClientID: c.ID, EndDate: "01/07/2024"}))

	// WHEN: The scheduler checks
	rs := NewReminderScheduler(s.handler, nil)
	d, err := rs.RunNow(ctx)

	// THEN: The digest and gauges reflect today's reminders
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d.Day)
	assert.Equal(t, 1, d.BirthdaysToday)
	assert.Equal(t, 0, d.BirthdaysUpcoming)
	assert.Equal(t, 1, d.RenewalsDue)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.BirthdaysToday))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RenewalsPending))
}

func TestReminderScheduler_ConcurrentRunsDigestOnce(t *testing.T) {
	s := newTestServer(t)
	core, logs := observer.New(zap.InfoLevel)
	rs := NewReminderScheduler(s.handler, zap.New(core))

	// WHEN: Several checks run at once on the same day
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rs.RunNow(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// THEN: The day's digest is logged exactly once
	assert.Equal(t, 1, logs.FilterMessage("daily reminders").Len())
}

func TestReminderScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)
	rs := NewReminderScheduler(s.handler, nil)
	rs.CheckInterval = 10 * time.Millisecond

	rs.Start()
	time.Sleep(30 * time.Millisecond)
	rs.Stop()
	rs.Stop()

	disabled := NewReminderScheduler(s.handler, nil)
	disabled.CheckInterval = 0
	disabled.Start()
	disabled.Stop()
}
