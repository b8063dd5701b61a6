package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
)

// expiryUserStore lists tenants whose access expiry falls in a window.
type expiryUserStore interface {
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]model.User, error)
}

// warnHistoryStore extends HistoryStore with the dedup lookup the
// sweeper needs.
type warnHistoryStore interface {
	HistoryStore
	ExistsSince(ctx context.Context, category string, userID uint64, since time.Time) (bool, error)
}

// ExpiryNotifier periodically writes an access_expiring history entry for
// each tenant whose subscription lapses within WarnWindow.  Each expiry is
// warned about at most once: a warning already on record since the start
// of the window suppresses the next.
type ExpiryNotifier struct {
	Users      expiryUserStore
	History    warnHistoryStore
	WarnWindow time.Duration
	Now        func() time.Time
}

func NewExpiryNotifier(users expiryUserStore, history warnHistoryStore) *ExpiryNotifier {
	return &ExpiryNotifier{
		Users:      users,
		History:    history,
		WarnWindow: 72 * time.Hour,
		Now:        time.Now,
	}
}

// RunOnce performs a single sweep.  It returns the number of warnings
// written; individual history failures are logged and skipped so one bad
// row cannot stall the rest of the sweep.
func (n *ExpiryNotifier) RunOnce(ctx context.Context) (int, error) {
	now := n.Now().UTC()
	users, err := n.Users.ListExpiringBetween(ctx, now, now.Add(n.WarnWindow))
	if err != nil {
		return 0, err
	}

	warned := 0
	for _, u := range users {
		if u.ActiveUntil == nil {
			continue
		}
		windowStart := u.ActiveUntil.Add(-n.WarnWindow)
		seen, err := n.History.ExistsSince(ctx, model.HistoryAccessExpiring, u.ID, windowStart)
		if err != nil {
			log.Printf("expiry: dedup lookup for user %d: %v", u.ID, err)
			continue
		}
		if seen {
			continue
		}
		uid := u.ID
		activity := "Utility access expires on " + FormatExpiry(*u.ActiveUntil)
		if err := n.History.Append(ctx, activity, model.HistoryAccessExpiring, &uid, nil); err != nil {
			log.Printf("expiry: append warning for user %d: %v", u.ID, err)
			continue
		}
		warned++
	}
	return warned, nil
}

// Start runs sweeps on the given interval until ctx is cancelled.
// Intended to be launched in its own goroutine.
func (n *ExpiryNotifier) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := n.RunOnce(ctx); err != nil {
			log.Printf("expiry: sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
