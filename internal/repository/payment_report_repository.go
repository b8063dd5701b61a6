package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
)

// PaymentReportRepo provides CRUD operations for payment reports.  All
// timestamp fields are assumed to be stored in UTC.
type PaymentReportRepo struct {
	DB *sql.DB
}

// NewPaymentReportRepo returns a new PaymentReportRepo bound to the given database.
func NewPaymentReportRepo(db *sql.DB) *PaymentReportRepo { return &PaymentReportRepo{DB: db} }

const reportColumns = `r.id, r.user_id, r.payment_method, r.amount, r.periods,
	r.paid_at, r.proof_url, r.status, r.comment, r.created_at, r.updated_at`

func scanReport(scan func(dest ...any) error) (model.PaymentReport, error) {
	var (
		rep     model.PaymentReport
		comment sql.NullString
	)
	err := scan(&rep.ID, &rep.UserID, &rep.PaymentMethod, &rep.Amount, &rep.Periods,
		&rep.PaidAt, &rep.ProofURL, &rep.Status, &comment, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return rep, err
	}
	if comment.Valid {
		c := comment.String
		rep.Comment = &c
	}
	return rep, nil
}

// Create inserts a new pending report and populates the generated ID on
// the provided record.
func (r *PaymentReportRepo) Create(ctx context.Context, rep *model.PaymentReport) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payment_reports (user_id, payment_method, amount, periods, paid_at, proof_url, status)
		 VALUES (?,?,?,?,?,?,?)`,
		rep.UserID, rep.PaymentMethod, rep.Amount, rep.Periods, rep.PaidAt, rep.ProofURL, rep.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	return nil
}

// ReportWithUser pairs a report with a summary of its owning user.  User
// is nil when the owning user row cannot be resolved.
type ReportWithUser struct {
	Report model.PaymentReport `json:"report"`
	User   *model.UserSummary  `json:"user"`
}

func scanReportWithUser(rows *sql.Rows) (ReportWithUser, error) {
	var (
		out      ReportWithUser
		comment  sql.NullString
		userID   sql.NullInt64
		username sql.NullString
		email    sql.NullString
		room     sql.NullString
	)
	err := rows.Scan(
		&out.Report.ID, &out.Report.UserID, &out.Report.PaymentMethod, &out.Report.Amount,
		&out.Report.Periods, &out.Report.PaidAt, &out.Report.ProofURL, &out.Report.Status,
		&comment, &out.Report.CreatedAt, &out.Report.UpdatedAt,
		&userID, &username, &email, &room,
	)
	if err != nil {
		return out, err
	}
	if comment.Valid {
		c := comment.String
		out.Report.Comment = &c
	}
	if userID.Valid {
		u := &model.UserSummary{ID: uint64(userID.Int64), Username: username.String, Email: email.String}
		if room.Valid {
			rn := room.String
			u.RoomNumber = &rn
		}
		out.User = u
	}
	return out, nil
}

const reportWithUserQuery = `SELECT ` + reportColumns + `,
	       u.id, u.username, u.email, u.room_number
	FROM payment_reports r
	LEFT JOIN users u ON u.id = r.user_id`

// ListAll returns every report newest-first with its owning-user summary.
func (r *PaymentReportRepo) ListAll(ctx context.Context) ([]ReportWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, reportWithUserQuery+` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReportWithUser, 0)
	for rows.Next() {
		rec, err := scanReportWithUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListByUser returns the given tenant's reports newest-first.
func (r *PaymentReportRepo) ListByUser(ctx context.Context, userID uint64) ([]ReportWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		reportWithUserQuery+` WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReportWithUser, 0)
	for rows.Next() {
		rec, err := scanReportWithUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByID returns a single report with its owning-user summary.  When no
// report with the given ID exists, sql.ErrNoRows is returned.
func (r *PaymentReportRepo) GetByID(ctx context.Context, id uint64) (*ReportWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, reportWithUserQuery+` WHERE r.id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	rec, err := scanReportWithUser(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// TransitionResult reports what a Transition call changed.  User is nil
// when the report's owner could not be resolved; NewExpiry is nil unless
// the owner's access expiry was extended.
type TransitionResult struct {
	Report    model.PaymentReport
	User      *model.User
	NewExpiry *time.Time
}

// Transition moves a pending report to the target status inside a single
// transaction.  The status change is a compare-and-swap: only a report
// that is still pending can move, so a racing second decision observes
// ErrConflict instead of re-applying side effects.  When the target is
// confirmed, the extend callback receives the locked report and its owner
// (nil when the owner row is missing) and returns the new access expiry
// to persist, or nil to leave the expiry untouched.  Report update and
// expiry update commit or roll back together.  sql.ErrNoRows is returned
// when the report does not exist.
func (r *PaymentReportRepo) Transition(ctx context.Context, reportID uint64, target string, comment *string,
	extend func(report model.PaymentReport, user *model.User) *time.Time) (TransitionResult, error) {

	var out TransitionResult

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	defer func() { _ = tx.Rollback() }()

	rep, err := scanReport(tx.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM payment_reports r WHERE r.id = ? FOR UPDATE`, reportID).Scan)
	if err != nil {
		return out, err
	}
	if rep.Status != model.StatusPending {
		return out, ErrConflict
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE payment_reports SET status = ?, comment = ? WHERE id = ? AND status = ?`,
		target, comment, reportID, model.StatusPending)
	if err != nil {
		return out, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return out, err
	}
	if affected == 0 {
		return out, ErrConflict
	}
	rep.Status = target
	rep.Comment = comment
	out.Report = rep

	if target == model.StatusConfirmed {
		user, err := r.lockUserTx(ctx, tx, rep.UserID)
		if err != nil && err != sql.ErrNoRows {
			return out, err
		}
		// A missing owner skips the extension but never aborts the decision.
		if err == nil {
			out.User = user
			if newExpiry := extend(rep, user); newExpiry != nil {
				if _, err := tx.ExecContext(ctx,
					`UPDATE users SET active_until = ? WHERE id = ?`, *newExpiry, user.ID); err != nil {
					return out, err
				}
				out.NewExpiry = newExpiry
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return TransitionResult{}, err
	}
	return out, nil
}

func (r *PaymentReportRepo) lockUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.User, error) {
	var (
		u           model.User
		roomNumber  sql.NullString
		activeUntil sql.NullTime
	)
	err := tx.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,role,room_number,active_until,created_at,updated_at
		 FROM users WHERE id = ? FOR UPDATE`, userID).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&roomNumber, &activeUntil, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if roomNumber.Valid {
		rn := roomNumber.String
		u.RoomNumber = &rn
	}
	if activeUntil.Valid {
		au := activeUntil.Time.UTC()
		u.ActiveUntil = &au
	}
	return &u, nil
}

// ListConfirmedBetween returns confirmed reports whose payment timestamp
// falls in [start, end), ordered by payment timestamp ascending.  The
// owning-user summary is nil for orphaned rows; callers decide how to
// treat those.
func (r *PaymentReportRepo) ListConfirmedBetween(ctx context.Context, start, end time.Time) ([]ReportWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		reportWithUserQuery+` WHERE r.status = ? AND r.paid_at >= ? AND r.paid_at < ?
		 ORDER BY r.paid_at ASC`,
		model.StatusConfirmed, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReportWithUser, 0)
	for rows.Next() {
		rec, err := scanReportWithUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
