package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/repository"
)

// ErrInvalidMonth is returned when the month designator is missing or
// not in YYYY-MM form.
var ErrInvalidMonth = errors.New("invalid month")

// RevenueStore is the slice of the payment-report repository the
// aggregator reads from.
type RevenueStore interface {
	ListConfirmedBetween(ctx context.Context, start, end time.Time) ([]repository.ReportWithUser, error)
}

// RevenueService computes the monthly revenue summary.  It is read-only.
type RevenueService struct {
	Reports RevenueStore
}

func NewRevenueService(reports RevenueStore) *RevenueService {
	return &RevenueService{Reports: reports}
}

// RevenueItem is one confirmed payment in the itemized breakdown.
type RevenueItem struct {
	ID      uint64            `json:"id"`
	Amount  int64             `json:"amount"`
	Periods string            `json:"periods"`
	PaidAt  time.Time         `json:"paid_at"`
	User    model.UserSummary `json:"user"`
}

// MonthlyRevenue is the aggregation result for one calendar month.
// Total and TransactionCount cover every confirmed in-window report;
// Items lists only those whose owning user resolves, so Total can exceed
// the sum over Items when orphaned rows exist.
type MonthlyRevenue struct {
	Month            string        `json:"month"`
	Total            int64         `json:"total"`
	TransactionCount int           `json:"transaction_count"`
	Items            []RevenueItem `json:"items"`
}

// MonthWindow converts a "YYYY-MM" designator into the half-open UTC
// window [first instant of the month, first instant of the next month).
func MonthWindow(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Monthly sums confirmed payments whose payment timestamp falls in the
// designated month and itemizes them in payment-timestamp order.
func (s *RevenueService) Monthly(ctx context.Context, month string) (*MonthlyRevenue, error) {
	if month == "" {
		return nil, ErrInvalidMonth
	}
	start, end, err := MonthWindow(month)
	if err != nil {
		return nil, err
	}
	rows, err := s.Reports.ListConfirmedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := &MonthlyRevenue{Month: month, Items: make([]RevenueItem, 0, len(rows))}
	for _, row := range rows {
		out.Total += row.Report.Amount
		out.TransactionCount++
		if row.User == nil {
			continue // counted above, not itemized
		}
		out.Items = append(out.Items, RevenueItem{
			ID:      row.Report.ID,
			Amount:  row.Report.Amount,
			Periods: row.Report.Periods,
			PaidAt:  row.Report.PaidAt,
			User:    *row.User,
		})
	}
	return out, nil
}
