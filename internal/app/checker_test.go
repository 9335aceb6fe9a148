package app

import (
	"context"
	"testing"

	"DomainWatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshUpdatesAttributesButNotLastNotice(t *testing.T) {
	lookup := &fakeLookup{results: map[string]Registration{
		"example.com": {
			Domain:      "example.com",
			CreatedOn:   domain.ParseDate("1995-08-14"),
			ExpiresOn:   day(30),
			Registrar:   "Example Registrar",
			Registrant:  "Example Org",
			NameServers: []string{"ns1.example.com"},
		},
	}}
	checker := &ExpiryCheckerService{Lookup: lookup}
	records := []domain.DomainRecord{{Domain: "example.com", Registrar: "old", LastNotice: day(-3)}}

	failed, err := checker.Refresh(context.Background(), records)
	require.NoError(t, err)
	assert.Empty(t, failed)

	got := records[0]
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, "1995-08-14", got.RegisteredOn.String())
	assert.Equal(t, day(30), got.ExpiresOn)
	assert.Equal(t, "Example Registrar", got.Registrar)
	assert.Equal(t, "Example Org", got.Registrant)
	assert.Equal(t, []string{"ns1.example.com"}, got.NameServers)
	assert.Equal(t, day(-3), got.LastNotice)
}

func TestRefreshMarksFailuresWithSentinel(t *testing.T) {
	lookup := &fakeLookup{results: map[string]Registration{"ok.com": {Domain: "ok.com", ExpiresOn: day(100)}}}
	checker := &ExpiryCheckerService{Lookup: lookup}
	records := []domain.DomainRecord{
		{Domain: "bad.com", ExpiresOn: day(20), Registrar: "Kept Registrar", LastNotice: day(-20)},
		{Domain: "ok.com"},
	}

	failed, err := checker.Refresh(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.com"}, failed)
	assert.True(t, records[0].ExpiresOn.IsError())
	assert.Equal(t, "Kept Registrar", records[0].Registrar)
	assert.Equal(t, day(-20), records[0].LastNotice)
	assert.Equal(t, day(100), records[1].ExpiresOn)
	assert.Equal(t, []string{"bad.com", "ok.com"}, lookup.calls, "lookups run in record order")
}

func TestRefreshStopsOnCancelledContext(t *testing.T) {
	lookup := &fakeLookup{}
	checker := &ExpiryCheckerService{Lookup: lookup}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := checker.Refresh(ctx, []domain.DomainRecord{{Domain: "a.com"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, lookup.calls)
}

func TestRefreshRequiresLookup(t *testing.T) {
	_, err := (&ExpiryCheckerService{}).Refresh(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingDependencies)
}

func TestEvaluateSetsLastNoticeOnlyForBatch(t *testing.T) {
	checker := &ExpiryCheckerService{Policy: Policy{ThresholdDays: 45, IntervalDays: 15}}
	records := []domain.DomainRecord{
		{Domain: "far.com", ExpiresOn: day(200), LastNotice: day(-100)},
		{Domain: "first.com", ExpiresOn: day(10)},
		{Domain: "cooling.com", ExpiresOn: day(5), LastNotice: day(-10)},
		{Domain: "deadline.com", ExpiresOn: day(1), LastNotice: day(-1)},
		{Domain: "bad.com", ExpiresOn: domain.ErrorDate(), LastNotice: day(-30)},
	}

	batch := checker.Evaluate(records, todayUTC())

	var names []string
	for _, rec := range batch {
		names = append(names, rec.Domain)
		assert.Equal(t, day(0), rec.LastNotice)
	}
	assert.Equal(t, []string{"first.com", "deadline.com"}, names)

	assert.Equal(t, day(-100), records[0].LastNotice)
	assert.Equal(t, day(0), records[1].LastNotice)
	assert.Equal(t, day(-10), records[2].LastNotice)
	assert.Equal(t, day(0), records[3].LastNotice)
	assert.Equal(t, day(-30), records[4].LastNotice)
}
