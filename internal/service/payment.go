// Package service holds the domain logic between handlers and
// repositories: the payment-report state machine, access-expiry
// arithmetic and the monthly revenue aggregation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/repository"
)

// ErrInvalidInput is returned when a submission misses a required field.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidStatus is returned when a decision names a status other than
// confirmed or rejected.
var ErrInvalidStatus = errors.New("invalid status")

// ReportStore is the slice of the payment-report repository the service
// depends on.
type ReportStore interface {
	Create(ctx context.Context, rep *model.PaymentReport) error
	Transition(ctx context.Context, reportID uint64, target string, comment *string,
		extend func(report model.PaymentReport, user *model.User) *time.Time) (repository.TransitionResult, error)
}

// HistoryStore appends audit-log entries.
type HistoryStore interface {
	Append(ctx context.Context, activity, category string, userID, reportID *uint64) error
}

// PaymentService implements report submission and the pending →
// confirmed/rejected transition.  Now is injected so the expiry
// arithmetic is deterministic under test; it defaults to time.Now.
type PaymentService struct {
	Reports ReportStore
	History HistoryStore
	Now     func() time.Time
}

func NewPaymentService(reports ReportStore, history HistoryStore) *PaymentService {
	return &PaymentService{Reports: reports, History: history, Now: time.Now}
}

// ParsePeriods splits a comma-separated period descriptor into trimmed,
// non-empty labels.  The label count is the number of calendar months a
// confirmation extends the tenant's access by.
func ParsePeriods(periods string) []string {
	parts := strings.Split(periods, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NextExpiry returns the access expiry after adding months calendar
// months to the later of the current expiry and now.  An expired or
// absent current expiry therefore never backdates the extension, while a
// still-active expiry stacks.  AddDate increments the month component
// with year rollover and day normalization.
func NextExpiry(current *time.Time, now time.Time, months int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, months, 0)
}

// FormatExpiry renders an expiry as d/m/yyyy, the format tenants see in
// their history feed.
func FormatExpiry(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// SubmitInput carries a tenant's payment claim.  Amount arrives as
// computed by the client and is stored as submitted; the server does not
// re-derive it from the period count.
type SubmitInput struct {
	UserID        uint64
	PaymentMethod string
	Amount        int64
	Periods       string
	ProofURL      string
}

// Submit persists a new pending report and records a submission history
// entry.  Any persistence error is returned as-is; a failed history
// write is logged and discarded.
func (s *PaymentService) Submit(ctx context.Context, in SubmitInput) (*model.PaymentReport, error) {
	if in.UserID == 0 || in.PaymentMethod == "" || in.Amount <= 0 || in.ProofURL == "" ||
		len(ParsePeriods(in.Periods)) == 0 {
		return nil, ErrInvalidInput
	}
	rep := &model.PaymentReport{
		UserID:        in.UserID,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		Periods:       in.Periods,
		PaidAt:        s.Now().UTC(),
		ProofURL:      in.ProofURL,
		Status:        model.StatusPending,
	}
	if err := s.Reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	s.appendHistory(ctx, "Payment report submitted", model.HistoryPaymentSubmitted, &rep.UserID, &rep.ID)
	return rep, nil
}

// Decide moves a pending report to confirmed or rejected.  On confirm
// the owning tenant's access expiry advances by one calendar month per
// period label, measured from the later of the current expiry and now;
// report status and expiry commit atomically.  A missing owner skips the
// extension but still records the outcome.  On reject nothing but the
// status changes.  History entries are written after commit and never
// fail the decision.  Returns a human-readable outcome message.
func (s *PaymentService) Decide(ctx context.Context, reportID uint64, target, comment string) (string, error) {
	if target != model.StatusConfirmed && target != model.StatusRejected {
		return "", ErrInvalidStatus
	}
	var commentPtr *string
	if target == model.StatusRejected && comment != "" {
		commentPtr = &comment
	}

	now := s.Now().UTC()
	res, err := s.Reports.Transition(ctx, reportID, target, commentPtr,
		func(rep model.PaymentReport, user *model.User) *time.Time {
			if user == nil {
				return nil
			}
			months := len(ParsePeriods(rep.Periods))
			if months == 0 {
				return nil
			}
			next := NextExpiry(user.ActiveUntil, now, months)
			return &next
		})
	if err != nil {
		return "", err
	}

	reportRef := res.Report.ID
	switch target {
	case model.StatusConfirmed:
		if res.NewExpiry != nil {
			s.appendHistory(ctx,
				"Utility access extended until "+FormatExpiry(*res.NewExpiry),
				model.HistoryAccessExtended, &res.User.ID, &reportRef)
		}
		s.appendHistory(ctx, "Payment report confirmed",
			model.HistoryPaymentConfirmed, &res.Report.UserID, &reportRef)
		return "Payment report confirmed", nil
	default:
		activity := "Payment report rejected"
		if comment != "" {
			activity += ": " + comment
		}
		s.appendHistory(ctx, activity,
			model.HistoryPaymentRejected, &res.Report.UserID, &reportRef)
		return "Payment report rejected", nil
	}
}

// appendHistory writes an audit entry, swallowing failures.
func (s *PaymentService) appendHistory(ctx context.Context, activity, category string, userID, reportID *uint64) {
	if err := s.History.Append(ctx, activity, category, userID, reportID); err != nil {
		log.Printf("history: append failed (category=%s): %v", category, err)
	}
}
