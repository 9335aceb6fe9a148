package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"DomainWatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(repo domain.Repository, lookup LookupClient, notifier Notifier) *App {
	return &App{
		Repo: repo,
		Checker: &ExpiryCheckerService{
			Lookup: lookup,
			Policy: Policy{ThresholdDays: 45, IntervalDays: 15},
		},
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	}
}

func TestRunFirstWarningForNewDomain(t *testing.T) {
	repo := &memRepo{}
	lookup := &fakeLookup{results: map[string]Registration{
		"example.com": {Domain: "example.com", ExpiresOn: day(10)},
	}}
	notifier := &fakeNotifier{}

	report, err := newTestApp(repo, lookup, notifier).Run(context.Background(), []string{"example.com"})
	require.NoError(t, err)

	require.Len(t, notifier.batches, 1)
	require.Len(t, notifier.batches[0], 1)
	assert.Equal(t, "example.com", notifier.batches[0][0].Domain)
	assert.Equal(t, []string{"example.com"}, report.Added)
	assert.Equal(t, []string{"example.com"}, report.Notified)

	rec, ok := repo.find("example.com")
	require.True(t, ok)
	assert.Equal(t, day(0), rec.LastNotice)
}

func TestRunCoolDownSuppressesRepeat(t *testing.T) {
	repo := &memRepo{records: []domain.DomainRecord{{Domain: "example.com", LastNotice: day(-10)}}}
	lookup := &fakeLookup{results: map[string]Registration{
		"example.com": {Domain: "example.com", ExpiresOn: day(5)},
	}}
	notifier := &fakeNotifier{}

	report, err := newTestApp(repo, lookup, notifier).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, notifier.batches, "an empty batch is never sent")
	assert.Empty(t, report.Notified)
	rec, ok := repo.find("example.com")
	require.True(t, ok)
	assert.Equal(t, day(-10), rec.LastNotice)
	assert.Equal(t, day(5), rec.ExpiresOn)
}

func TestRunLookupFailureIsolated(t *testing.T) {
	repo := &memRepo{records: []domain.DomainRecord{
		{Domain: "bad.com", ExpiresOn: day(3), LastNotice: day(-30)},
		{Domain: "good.com"},
	}}
	lookup := &fakeLookup{results: map[string]Registration{
		"good.com": {Domain: "good.com", ExpiresOn: day(2)},
	}}
	notifier := &fakeNotifier{}

	report, err := newTestApp(repo, lookup, notifier).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"bad.com"}, report.Failed)
	assert.Equal(t, []string{"good.com"}, report.Notified)

	bad, ok := repo.find("bad.com")
	require.True(t, ok)
	assert.True(t, bad.ExpiresOn.IsError())
	assert.Equal(t, day(-30), bad.LastNotice)
	for _, b := range notifier.batches {
		for _, rec := range b {
			assert.NotEqual(t, "bad.com", rec.Domain)
		}
	}
}

func TestRunDeadlineOverridesCoolDown(t *testing.T) {
	repo := &memRepo{records: []domain.DomainRecord{{Domain: "last.com", LastNotice: day(-1)}}}
	lookup := &fakeLookup{results: map[string]Registration{"last.com": {Domain: "last.com", ExpiresOn: day(1)}}}
	notifier := &fakeNotifier{}

	_, err := newTestApp(repo, lookup, notifier).Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, notifier.batches, 1)
	assert.Equal(t, "last.com", notifier.batches[0][0].Domain)
}

func TestRunPersistsSortedRecords(t *testing.T) {
	repo := &memRepo{records: []domain.DomainRecord{
		{Domain: "broken.com"},
		{Domain: "late.com"},
		{Domain: "soon.com"},
		{Domain: "unknown.com"},
	}}
	lookup := &fakeLookup{results: map[string]Registration{
		"late.com":    {Domain: "late.com", ExpiresOn: day(300)},
		"soon.com":    {Domain: "soon.com", ExpiresOn: day(60)},
		"unknown.com": {Domain: "unknown.com"},
	}}

	_, err := newTestApp(repo, lookup, &fakeNotifier{}).Run(context.Background(), []string{"mid.com"})
	require.NoError(t, err)

	var names []string
	for _, rec := range repo.saved {
		names = append(names, rec.Domain)
	}
	assert.Equal(t, []string{"soon.com", "late.com", "broken.com", "unknown.com", "mid.com"}, names)
}

func TestRunPersistsWhenNotificationFails(t *testing.T) {
	repo := &memRepo{}
	lookup := &fakeLookup{results: map[string]Registration{"a.com": {Domain: "a.com", ExpiresOn: day(4)}}}
	notifier := &fakeNotifier{err: errors.New("smtp down")}

	report, err := newTestApp(repo, lookup, notifier).Run(context.Background(), []string{"a.com"})
	require.NoError(t, err)
	assert.Error(t, report.NotifyErr)

	rec, ok := repo.find("a.com")
	require.True(t, ok)
	assert.Equal(t, day(0), rec.LastNotice, "policy decisions survive a delivery failure")
}

func TestRunWithoutNotifierStillPersists(t *testing.T) {
	repo := &memRepo{}
	lookup := &fakeLookup{results: map[string]Registration{"a.com": {Domain: "a.com", ExpiresOn: day(4)}}}

	report, err := newTestApp(repo, lookup, nil).Run(context.Background(), []string{"a.com"})
	require.NoError(t, err)
	assert.ErrorIs(t, report.NotifyErr, ErrNotifierDisabled)
	assert.Equal(t, 1, repo.saves)
}

func TestRunMergesSourcesAndSkipsFailingOnes(t *testing.T) {
	repo := &memRepo{records: []domain.DomainRecord{{Domain: "a.com"}}}
	app := newTestApp(repo, &fakeLookup{}, &fakeNotifier{})
	app.Collector = &Collector{Sources: []DomainSource{
		fakeSource{name: "cloudflare:main", names: []string{"a.com", "b.com"}},
		fakeSource{name: "acm:prod", err: errors.New("denied")},
	}}

	report, err := app.Run(context.Background(), []string{"c.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.com", "b.com"}, report.Added)
	assert.Equal(t, 3, report.Total)
}

func TestRunLoadFailureIsFatal(t *testing.T) {
	repo := &memRepo{loadErr: errors.New("permission denied")}
	_, err := newTestApp(repo, &fakeLookup{}, nil).Run(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	repo := &memRepo{saveErr: errors.New("disk full")}
	_, err := newTestApp(repo, &fakeLookup{}, nil).Run(context.Background(), []string{"a.com"})
	assert.Error(t, err)
}

func TestRunPersistsPartialProgressOnCancel(t *testing.T) {
	repo := &memRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestApp(repo, &fakeLookup{}, nil).Run(ctx, []string{"a.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.saves)
}

func TestRunAgainstCSVFile(t *testing.T) {
	repo := domain.NewCSVRepository(filepath.Join(t.TempDir(), "whois_dominios.csv"))
	lookup := &fakeLookup{results: map[string]Registration{"example.com": {Domain: "example.com", ExpiresOn: day(10)}}}
	notifier := &fakeNotifier{}
	app := newTestApp(repo, lookup, notifier)

	_, err := app.Run(context.Background(), []string{"example.com"})
	require.NoError(t, err)
	require.Len(t, notifier.batches, 1)

	// 第二次运行处于冷却期内
	_, err = app.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, notifier.batches, 1)

	records, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(0), records[0].LastNotice)
}
