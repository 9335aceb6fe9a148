package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"DomainWatch/domain"
)

var errLookup = errors.New("lookup boom")

// fakeLookup 按域名返回预设结果，未登记的域名视为查询失败。
type fakeLookup struct {
	mu      sync.Mutex
	results map[string]Registration
	calls   []string
}

func (f *fakeLookup) Lookup(ctx context.Context, name string) (Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	reg, ok := f.results[name]
	if !ok {
		return Registration{}, errLookup
	}
	return reg, nil
}

type fakeNotifier struct {
	batches [][]domain.DomainRecord
	err     error
}

func (f *fakeNotifier) Send(ctx context.Context, batch []domain.DomainRecord) error {
	f.batches = append(f.batches, batch)
	return f.err
}

type fakeChannel struct {
	name     string
	subjects []string
	bodies   []string
	err      error
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Deliver(ctx context.Context, subject, body string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return f.err
}

type memRepo struct {
	records []domain.DomainRecord
	saved   []domain.DomainRecord
	saves   int
	loadErr error
	saveErr error
}

func (r *memRepo) Load() ([]domain.DomainRecord, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make([]domain.DomainRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *memRepo) Save(records []domain.DomainRecord) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = make([]domain.DomainRecord, len(records))
	copy(r.saved, records)
	return nil
}

func (r *memRepo) find(name string) (domain.DomainRecord, bool) {
	for _, rec := range r.saved {
		if rec.Domain == name {
			return rec, true
		}
	}
	return domain.DomainRecord{}, false
}

type fakeSource struct {
	name  string
	names []string
	err   error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Names(ctx context.Context) ([]string, error) { return f.names, f.err }

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

func day(offset int) domain.Date {
	y, m, d := fixedNow.Date()
	return domain.NewDate(time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC))
}

func todayUTC() time.Time {
	y, m, d := fixedNow.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
