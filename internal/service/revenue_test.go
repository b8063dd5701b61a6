package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/repository"
	"github.com/iliyamo/kost-management/internal/service"
)

// fakeRevenueStore filters seeded rows by the window it is asked for, the
// way the SQL layer does, so the window arithmetic is exercised end to end.
type fakeRevenueStore struct {
	rows []repository.ReportWithUser
	err  error
}

func (f *fakeRevenueStore) ListConfirmedBetween(_ context.Context, start, end time.Time) ([]repository.ReportWithUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]repository.ReportWithUser, 0)
	for _, r := range f.rows {
		if r.Report.Status != model.StatusConfirmed {
			continue
		}
		if r.Report.PaidAt.Before(start) || !r.Report.PaidAt.Before(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func confirmedRow(id uint64, amount int64, paidAt time.Time, user *model.UserSummary) repository.ReportWithUser {
	return repository.ReportWithUser{
		Report: model.PaymentReport{
			ID: id, Amount: amount, Periods: "Juni", PaidAt: paidAt,
			Status: model.StatusConfirmed,
		},
		User: user,
	}
}

func TestMonthWindow(t *testing.T) {
	start, end, err := service.MonthWindow("2025-06")
	if err != nil {
		t.Fatalf("MonthWindow: %v", err)
	}
	if !start.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}

	if _, _, err := service.MonthWindow("June 2025"); !errors.Is(err, service.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
}

// The window is half-open: the last second of June is in, midnight of
// July 1 is out.
func TestMonthlyWindowBoundaries(t *testing.T) {
	u := &model.UserSummary{ID: 1, Username: "sari", Email: "sari@kost.local"}
	store := &fakeRevenueStore{rows: []repository.ReportWithUser{
		confirmedRow(1, 650000, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), u),
		confirmedRow(2, 650000, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), u),
		confirmedRow(3, 650000, time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC), u),
	}}
	svc := service.NewRevenueService(store)

	got, err := svc.Monthly(context.Background(), "2025-06")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if got.TransactionCount != 1 || got.Total != 650000 {
		t.Fatalf("count=%d total=%d, want 1/650000", got.TransactionCount, got.Total)
	}
	if len(got.Items) != 1 || got.Items[0].ID != 1 {
		t.Fatalf("items = %+v", got.Items)
	}
}

func TestMonthlyTotalsMatchConfirmedRows(t *testing.T) {
	u := &model.UserSummary{ID: 2, Username: "budi", Email: "budi@kost.local"}
	store := &fakeRevenueStore{rows: []repository.ReportWithUser{
		confirmedRow(1, 650000, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), u),
		confirmedRow(2, 1300000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), u),
		confirmedRow(3, 650000, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), u),
	}}
	svc := service.NewRevenueService(store)

	got, err := svc.Monthly(context.Background(), "2025-06")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if got.Total != 2600000 || got.TransactionCount != 3 {
		t.Fatalf("total=%d count=%d", got.Total, got.TransactionCount)
	}
	// Items come back in payment-timestamp order.
	for i := 1; i < len(got.Items); i++ {
		if got.Items[i].PaidAt.Before(got.Items[i-1].PaidAt) {
			t.Fatalf("items out of order: %+v", got.Items)
		}
	}
}

// Orphaned rows (owner no longer resolvable) stay in the total and count
// but are dropped from the itemized list, so the total can exceed the
// sum over the items.
func TestMonthlyKeepsOrphansInTotals(t *testing.T) {
	u := &model.UserSummary{ID: 3, Username: "tono", Email: "tono@kost.local"}
	store := &fakeRevenueStore{rows: []repository.ReportWithUser{
		confirmedRow(1, 650000, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), u),
		confirmedRow(2, 650000, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), nil), // orphan
	}}
	svc := service.NewRevenueService(store)

	got, err := svc.Monthly(context.Background(), "2025-06")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if got.Total != 1300000 || got.TransactionCount != 2 {
		t.Fatalf("total=%d count=%d, want orphan counted", got.Total, got.TransactionCount)
	}
	var itemized int64
	for _, it := range got.Items {
		itemized += it.Amount
	}
	if len(got.Items) != 1 || itemized >= got.Total {
		t.Fatalf("items=%d itemized=%d total=%d, want total > itemized", len(got.Items), itemized, got.Total)
	}
}

func TestMonthlyRequiresMonth(t *testing.T) {
	svc := service.NewRevenueService(&fakeRevenueStore{})
	if _, err := svc.Monthly(context.Background(), ""); !errors.Is(err, service.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
}
