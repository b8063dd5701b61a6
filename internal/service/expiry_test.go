package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/service"
)

// fakeExpiryUsers filters seeded users by the requested window, mirroring
// the SQL query, so the sweeper's window arithmetic is exercised.
type fakeExpiryUsers struct {
	users []model.User
}

func (f *fakeExpiryUsers) ListExpiringBetween(_ context.Context, from, to time.Time) ([]model.User, error) {
	out := make([]model.User, 0)
	for _, u := range f.users {
		if u.ActiveUntil == nil {
			continue
		}
		if u.ActiveUntil.Before(from) || !u.ActiveUntil.Before(to) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeWarnHistory struct {
	fakeHistory
	warnedSince map[uint64]time.Time
}

func (f *fakeWarnHistory) ExistsSince(_ context.Context, category string, userID uint64, since time.Time) (bool, error) {
	if category != model.HistoryAccessExpiring {
		return false, nil
	}
	at, ok := f.warnedSince[userID]
	return ok && !at.Before(since), nil
}

func expiringTenant(id uint64, until time.Time) model.User {
	return model.User{ID: id, Username: "tenant", Role: model.RoleTenant, ActiveUntil: &until}
}

func TestRunOnceWarnsSoonToExpire(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	users := &fakeExpiryUsers{users: []model.User{
		expiringTenant(1, now.Add(24*time.Hour)),  // inside window
		expiringTenant(2, now.Add(240*time.Hour)), // far out
	}}
	history := &fakeWarnHistory{}
	n := service.NewExpiryNotifier(users, history)
	n.Now = func() time.Time { return now }

	warned, err := n.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if warned != 1 {
		t.Fatalf("warned = %d, want 1", warned)
	}
	if len(history.entries) != 1 {
		t.Fatalf("history rows = %d", len(history.entries))
	}
	got := history.entries[0]
	if got.category != model.HistoryAccessExpiring || got.userID == nil || *got.userID != 1 {
		t.Fatalf("appended = %+v", got)
	}
	if !strings.Contains(got.activity, "2/6/2025") {
		t.Fatalf("activity = %q", got.activity)
	}
}

func TestRunOnceWarnsOnlyOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	users := &fakeExpiryUsers{users: []model.User{
		expiringTenant(1, now.Add(24 * time.Hour)),
	}}
	history := &fakeWarnHistory{warnedSince: map[uint64]time.Time{1: now.Add(-time.Hour)}}
	n := service.NewExpiryNotifier(users, history)
	n.Now = func() time.Time { return now }

	warned, err := n.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if warned != 0 || len(history.entries) != 0 {
		t.Fatalf("warned = %d, rows = %d, want no new warnings", warned, len(history.entries))
	}
}

func TestRunOnceSurvivesHistoryFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	users := &fakeExpiryUsers{users: []model.User{
		expiringTenant(1, now.Add(24 * time.Hour)),
	}}
	history := &fakeWarnHistory{}
	history.appendErr = errors.New("history table down")
	n := service.NewExpiryNotifier(users, history)
	n.Now = func() time.Time { return now }

	warned, err := n.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if warned != 0 {
		t.Fatalf("warned = %d, want 0", warned)
	}
}
