package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
)

// HistoryRepo appends and lists audit-log entries.  The table is
// append-only: there are deliberately no update or delete methods.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// Append inserts one history entry.  Callers treat failures as
// non-fatal: the triggering operation has already succeeded and must not
// be rolled back because its audit trail could not be written.
func (r *HistoryRepo) Append(ctx context.Context, activity, category string, userID, reportID *uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO history_entries (activity, category, user_id, report_id) VALUES (?,?,?,?)`,
		activity, category, userID, reportID)
	return err
}

// ExistsSince reports whether a history entry with the given category was
// written for the user at or after the given time.  The expiry sweeper
// uses this to warn each tenant only once per expiry.
func (r *HistoryRepo) ExistsSince(ctx context.Context, category string, userID uint64, since time.Time) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM history_entries WHERE category = ? AND user_id = ? AND created_at >= ? LIMIT 1`,
		category, userID, since).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HistoryFeedItem is one row of the history feed: the entry itself plus
// summaries of the optionally linked user and payment report.
type HistoryFeedItem struct {
	Entry  model.HistoryEntry `json:"entry"`
	User   *model.UserSummary `json:"user"`
	Report *ReportSummary     `json:"report"`
}

// ReportSummary carries the report fields shown alongside a history entry.
type ReportSummary struct {
	ID      uint64    `json:"id"`
	Amount  int64     `json:"amount"`
	Periods string    `json:"periods"`
	Status  string    `json:"status"`
	PaidAt  time.Time `json:"paid_at"`
}

// ListAll returns history entries newest-first, each joined with its
// associated user and payment-report summaries.  When category is
// non-empty only entries with that tag are returned.
func (r *HistoryRepo) ListAll(ctx context.Context, category string) ([]HistoryFeedItem, error) {
	q := `SELECT h.id, h.activity, h.category, h.user_id, h.report_id, h.created_at,
	             u.id, u.username, u.email, u.room_number,
	             r.id, r.amount, r.periods, r.status, r.paid_at
	      FROM history_entries h
	      LEFT JOIN users u ON u.id = h.user_id
	      LEFT JOIN payment_reports r ON r.id = h.report_id`
	args := []any{}
	if category != "" {
		q += ` WHERE h.category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY h.created_at DESC, h.id DESC`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryFeedItem, 0)
	for rows.Next() {
		var (
			item      HistoryFeedItem
			entryUser sql.NullInt64
			entryRep  sql.NullInt64
			uID       sql.NullInt64
			uName     sql.NullString
			uEmail    sql.NullString
			uRoom     sql.NullString
			rID       sql.NullInt64
			rAmount   sql.NullInt64
			rPeriods  sql.NullString
			rStatus   sql.NullString
			rPaidAt   sql.NullTime
		)
		if err := rows.Scan(
			&item.Entry.ID, &item.Entry.Activity, &item.Entry.Category,
			&entryUser, &entryRep, &item.Entry.CreatedAt,
			&uID, &uName, &uEmail, &uRoom,
			&rID, &rAmount, &rPeriods, &rStatus, &rPaidAt,
		); err != nil {
			return nil, err
		}
		if entryUser.Valid {
			id := uint64(entryUser.Int64)
			item.Entry.UserID = &id
		}
		if entryRep.Valid {
			id := uint64(entryRep.Int64)
			item.Entry.ReportID = &id
		}
		if uID.Valid {
			u := &model.UserSummary{ID: uint64(uID.Int64), Username: uName.String, Email: uEmail.String}
			if uRoom.Valid {
				rn := uRoom.String
				u.RoomNumber = &rn
			}
			item.User = u
		}
		if rID.Valid {
			item.Report = &ReportSummary{
				ID:      uint64(rID.Int64),
				Amount:  rAmount.Int64,
				Periods: rPeriods.String,
				Status:  rStatus.String,
				PaidAt:  rPaidAt.Time.UTC(),
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
