package model

import "time"

// Payment report statuses.  A report starts as pending and is moved
// exactly once to confirmed or rejected by an admin.  Both non-pending
// states are terminal; no operation ever resets a report to pending.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// PaymentReport records a tenant's claim of having paid rent, pending
// admin verification.  The Periods field holds a comma-separated list of
// month labels as submitted by the tenant (e.g. "Januari, Februari");
// the number of labels determines how many calendar months the tenant's
// access is extended by on confirmation.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – tenant who submitted the report.
//  PaymentMethod – payment channel label (bank or e-wallet name).
//  Amount        – reported amount in whole rupiah.  The value is
//                  computed client-side and stored as submitted.
//  Periods       – comma-separated payment period labels.
//  PaidAt        – timestamp the payment was reported.
//  ProofURL      – path of the stored proof-of-payment image.
//  Status        – pending, confirmed or rejected.
//  Comment       – admin comment, set only on rejection.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type PaymentReport struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	Amount        int64     `json:"amount"`
	Periods       string    `json:"periods"`
	PaidAt        time.Time `json:"paid_at"`
	ProofURL      string    `json:"proof_url"`
	Status        string    `json:"status"`
	Comment       *string   `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserSummary carries the subset of user fields attached to reports and
// history entries when they are listed for admins.
type UserSummary struct {
	ID         uint64  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	RoomNumber *string `json:"room_number"`
}
