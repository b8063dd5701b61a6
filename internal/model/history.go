package model

import "time"

// History categories.  The category column replaces substring matching on
// the free-text activity string: the writer records what kind of event
// happened and readers filter on the tag instead of sniffing prose.
const (
	HistoryPaymentSubmitted = "payment_submitted"
	HistoryPaymentConfirmed = "payment_confirmed"
	HistoryPaymentRejected  = "payment_rejected"
	HistoryAccessExtended   = "access_extended"
	HistoryAccessExpiring   = "access_expiring"
	HistorySensorAnomaly    = "sensor_anomaly"
)

// HistoryEntry is an immutable audit-log record of a notable domain
// event.  Entries are append-only: they are never updated or deleted.  A
// failed history write is logged and discarded so it can never fail the
// operation that triggered it.
//
// Fields:
//  ID        – primary key identifier.
//  Activity  – human-readable description of the event.
//  Category  – enumerated event kind (see constants above).
//  UserID    – user the event concerns, if any.
//  ReportID  – payment report the event concerns, if any.
//  CreatedAt – creation timestamp.
type HistoryEntry struct {
	ID        uint64    `json:"id"`
	Activity  string    `json:"activity"`
	Category  string    `json:"category"`
	UserID    *uint64   `json:"user_id"`
	ReportID  *uint64   `json:"report_id"`
	CreatedAt time.Time `json:"created_at"`
}
