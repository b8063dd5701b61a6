package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/utils"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,username,email,password_hash,role,room_number,active_until,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u           model.User
		roomNumber  sql.NullString
		activeUntil sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&roomNumber, &activeUntil, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if roomNumber.Valid {
		rn := roomNumber.String
		u.RoomNumber = &rn
	}
	if activeUntil.Valid {
		au := activeUntil.Time.UTC()
		u.ActiveUntil = &au
	}
	return u, nil
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, roomNumber *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, room_number) VALUES (?,?,?,?,?)",
		username, email, hash, role, roomNumber)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByRoom fetches the tenant occupying the given room, if any.
func (r *UserRepo) GetByRoom(ctx context.Context, roomNumber string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE room_number=? LIMIT 1", roomNumber))
}

// ListWithRoom returns all tenants that have a room number assigned,
// ordered by room number.  The monitoring dashboard uses this to build
// its room selector.
func (r *UserRepo) ListWithRoom(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, username, email, room_number FROM users
		 WHERE role=? AND room_number IS NOT NULL
		 ORDER BY room_number`, model.RoleTenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.UserSummary, 0)
	for rows.Next() {
		var (
			s    model.UserSummary
			room sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Username, &s.Email, &room); err != nil {
			return nil, err
		}
		if room.Valid {
			rn := room.String
			s.RoomNumber = &rn
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListExpiringBetween returns tenants whose access expiry falls in
// [from, to).  The expiry sweeper uses this to warn tenants shortly
// before their subscription lapses.
func (r *UserRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE role=? AND active_until IS NOT NULL AND active_until >= ? AND active_until < ?
		 ORDER BY active_until`, model.RoleTenant, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var (
			u           model.User
			roomNumber  sql.NullString
			activeUntil sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&roomNumber, &activeUntil, &u.CreatedAt, &u.UpdatedAt); err != nil {
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
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateActiveUntilTx sets the user's access expiry within an existing
// transaction so the update commits or rolls back together with the
// payment-report status change.
func (r *UserRepo) UpdateActiveUntilTx(ctx context.Context, tx *sql.Tx, userID uint64, until time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET active_until=? WHERE id=?", until, userID)
	return err
}

// EnsureAdmin creates the seeded admin account when no user with the given
// email exists yet.  It is called once at startup.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) error {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = r.Create(ctx, "admin", email, password, model.RoleAdmin, nil, cost)
	return err
}
