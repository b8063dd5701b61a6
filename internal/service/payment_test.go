package service_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/repository"
	"github.com/iliyamo/kost-management/internal/service"
)

// ---------- Fakes ----------

type fakeReportStore struct {
	reports map[uint64]*model.PaymentReport
	users   map[uint64]*model.User

	createErr error
	nextID    uint64
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{
		reports: make(map[uint64]*model.PaymentReport),
		users:   make(map[uint64]*model.User),
	}
}

func (f *fakeReportStore) Create(_ context.Context, rep *model.PaymentReport) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	rep.ID = f.nextID
	cp := *rep
	f.reports[rep.ID] = &cp
	return nil
}

// Transition mirrors the repository semantics: missing report yields
// sql.ErrNoRows, a non-pending report yields repository.ErrConflict, and
// a confirmed decision applies the extend callback against the stored user.
func (f *fakeReportStore) Transition(_ context.Context, reportID uint64, target string, comment *string,
	extend func(report model.PaymentReport, user *model.User) *time.Time) (repository.TransitionResult, error) {

	var out repository.TransitionResult
	rep, ok := f.reports[reportID]
	if !ok {
		return out, sql.ErrNoRows
	}
	if rep.Status != model.StatusPending {
		return out, repository.ErrConflict
	}
	rep.Status = target
	rep.Comment = comment
	out.Report = *rep

	if target == model.StatusConfirmed {
		if user, ok := f.users[rep.UserID]; ok {
			out.User = user
			if next := extend(*rep, user); next != nil {
				user.ActiveUntil = next
				out.NewExpiry = next
			}
		}
	}
	return out, nil
}

type appended struct {
	activity string
	category string
	userID   *uint64
	reportID *uint64
}

type fakeHistory struct {
	entries   []appended
	appendErr error
}

func (f *fakeHistory) Append(_ context.Context, activity, category string, userID, reportID *uint64) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, appended{activity, category, userID, reportID})
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func seedPending(store *fakeReportStore, userID uint64, periods string) uint64 {
	store.nextID++
	id := store.nextID
	store.reports[id] = &model.PaymentReport{
		ID: id, UserID: userID, PaymentMethod: "BCA", Amount: 650000,
		Periods: periods, Status: model.StatusPending,
	}
	return id
}

// ---------- Pure expiry arithmetic ----------

func TestNextExpiry(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -2, 0)
	future := now.AddDate(0, 0, 10)

	cases := []struct {
		name    string
		current *time.Time
		months  int
		want    time.Time
	}{
		{"nil current starts from now", nil, 2, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"expired current starts from now", &past, 1, time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC)},
		{"active current stacks", &future, 1, future.AddDate(0, 1, 0)},
		{"year rollover", nil, 12, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.NextExpiry(tc.current, now, tc.months)
			if !got.Equal(tc.want) {
				t.Fatalf("NextExpiry = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParsePeriods(t *testing.T) {
	got := service.ParsePeriods(" Januari , Februari ,, Maret ")
	if len(got) != 3 || got[0] != "Januari" || got[1] != "Februari" || got[2] != "Maret" {
		t.Fatalf("ParsePeriods = %q", got)
	}
	if n := len(service.ParsePeriods("")); n != 0 {
		t.Fatalf("ParsePeriods(\"\") yielded %d labels", n)
	}
}

func TestFormatExpiry(t *testing.T) {
	d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := service.FormatExpiry(d); got != "15/3/2025" {
		t.Fatalf("FormatExpiry = %q, want 15/3/2025", got)
	}
}

// ---------- Submission ----------

func TestSubmitCreatesPendingReport(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{}
	svc := service.NewPaymentService(store, hist)
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	rep, err := svc.Submit(context.Background(), service.SubmitInput{
		UserID: 7, PaymentMethod: "OVO", Amount: 1300000,
		Periods: "Januari,Februari", ProofURL: "uploads/x.jpg",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rep.Status != model.StatusPending {
		t.Fatalf("status = %q, want pending", rep.Status)
	}
	if !rep.PaidAt.Equal(now) {
		t.Fatalf("paid_at = %v, want %v", rep.PaidAt, now)
	}
	if len(hist.entries) != 1 || hist.entries[0].category != model.HistoryPaymentSubmitted {
		t.Fatalf("history = %+v, want one payment_submitted entry", hist.entries)
	}
	if hist.entries[0].userID == nil || *hist.entries[0].userID != 7 ||
		hist.entries[0].reportID == nil || *hist.entries[0].reportID != rep.ID {
		t.Fatalf("history links = %+v", hist.entries[0])
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	svc := service.NewPaymentService(newFakeReportStore(), &fakeHistory{})
	cases := []service.SubmitInput{
		{PaymentMethod: "BCA", Amount: 650000, Periods: "Januari", ProofURL: "p"},
		{UserID: 1, Amount: 650000, Periods: "Januari", ProofURL: "p"},
		{UserID: 1, PaymentMethod: "BCA", Periods: "Januari", ProofURL: "p"},
		{UserID: 1, PaymentMethod: "BCA", Amount: 650000, ProofURL: "p"},
		{UserID: 1, PaymentMethod: "BCA", Amount: 650000, Periods: " , "},
		{UserID: 1, PaymentMethod: "BCA", Amount: 650000, Periods: "Januari"},
	}
	for i, in := range cases {
		if _, err := svc.Submit(context.Background(), in); !errors.Is(err, service.ErrInvalidInput) {
			t.Fatalf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

// ---------- Confirmation ----------

// The canonical scenario: no prior expiry, two period labels, confirmed
// on 2025-01-15 → access runs until 2025-03-15 and two history rows
// reference the report, one naming the new date.
func TestConfirmExtendsExpiryFromNow(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{}
	store.users[7] = &model.User{ID: 7, Username: "budi"}
	id := seedPending(store, 7, "Januari,Februari")

	svc := service.NewPaymentService(store, hist)
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	msg, err := svc.Decide(context.Background(), id, model.StatusConfirmed, "")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if msg == "" {
		t.Fatal("expected outcome message")
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if store.users[7].ActiveUntil == nil || !store.users[7].ActiveUntil.Equal(want) {
		t.Fatalf("active_until = %v, want %v", store.users[7].ActiveUntil, want)
	}
	if store.reports[id].Status != model.StatusConfirmed {
		t.Fatalf("report status = %q", store.reports[id].Status)
	}
	if len(hist.entries) != 2 {
		t.Fatalf("history rows = %d, want 2", len(hist.entries))
	}
	for _, e := range hist.entries {
		if e.reportID == nil || *e.reportID != id {
			t.Fatalf("history entry not linked to report: %+v", e)
		}
	}
	if hist.entries[0].category != model.HistoryAccessExtended ||
		!strings.Contains(hist.entries[0].activity, "15/3/2025") {
		t.Fatalf("first entry = %+v, want access_extended naming 15/3/2025", hist.entries[0])
	}
	if hist.entries[1].category != model.HistoryPaymentConfirmed {
		t.Fatalf("second entry = %+v, want payment_confirmed", hist.entries[1])
	}
}

func TestConfirmStacksOnActiveExpiry(t *testing.T) {
	store := newFakeReportStore()
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	store.users[3] = &model.User{ID: 3, ActiveUntil: &future}
	id := seedPending(store, 3, "Maret")

	svc := service.NewPaymentService(store, &fakeHistory{})
	svc.Now = fixedClock(now)

	if _, err := svc.Decide(context.Background(), id, model.StatusConfirmed, ""); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	want := future.AddDate(0, 1, 0)
	if got := store.users[3].ActiveUntil; got == nil || !got.Equal(want) {
		t.Fatalf("active_until = %v, want %v (stacked on future expiry)", got, want)
	}
}

func TestConfirmWithMissingUserStillDecides(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{}
	id := seedPending(store, 99, "Januari") // user 99 does not exist

	svc := service.NewPaymentService(store, hist)
	svc.Now = fixedClock(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	if _, err := svc.Decide(context.Background(), id, model.StatusConfirmed, ""); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if store.reports[id].Status != model.StatusConfirmed {
		t.Fatalf("report status = %q", store.reports[id].Status)
	}
	if len(hist.entries) != 1 || hist.entries[0].category != model.HistoryPaymentConfirmed {
		t.Fatalf("history = %+v, want single payment_confirmed entry", hist.entries)
	}
}

// ---------- Rejection ----------

func TestRejectNeverTouchesExpiry(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{}
	prior := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store.users[4] = &model.User{ID: 4, ActiveUntil: &prior}
	id := seedPending(store, 4, "Januari,Februari,Maret")

	svc := service.NewPaymentService(store, hist)
	svc.Now = fixedClock(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	if _, err := svc.Decide(context.Background(), id, model.StatusRejected, "blurry photo"); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !store.users[4].ActiveUntil.Equal(prior) {
		t.Fatalf("active_until changed on rejection: %v", store.users[4].ActiveUntil)
	}
	if store.reports[id].Status != model.StatusRejected {
		t.Fatalf("report status = %q", store.reports[id].Status)
	}
	if len(hist.entries) != 1 || hist.entries[0].category != model.HistoryPaymentRejected {
		t.Fatalf("history = %+v", hist.entries)
	}
	if !strings.Contains(hist.entries[0].activity, "blurry photo") {
		t.Fatalf("rejection comment missing from activity: %q", hist.entries[0].activity)
	}
}

// ---------- Guards ----------

func TestDecideInvalidStatus(t *testing.T) {
	svc := service.NewPaymentService(newFakeReportStore(), &fakeHistory{})
	if _, err := svc.Decide(context.Background(), 1, "pending", ""); !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.Decide(context.Background(), 1, "approved", ""); !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestDecideNotFound(t *testing.T) {
	svc := service.NewPaymentService(newFakeReportStore(), &fakeHistory{})
	if _, err := svc.Decide(context.Background(), 42, model.StatusConfirmed, ""); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

// A second decision on a decided report conflicts and re-applies nothing,
// so a double confirm cannot extend the expiry twice.
func TestDecideTwiceConflicts(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{}
	store.users[5] = &model.User{ID: 5}
	id := seedPending(store, 5, "Januari")

	svc := service.NewPaymentService(store, hist)
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	if _, err := svc.Decide(context.Background(), id, model.StatusConfirmed, ""); err != nil {
		t.Fatalf("first Decide: %v", err)
	}
	first := *store.users[5].ActiveUntil
	rows := len(hist.entries)

	if _, err := svc.Decide(context.Background(), id, model.StatusConfirmed, ""); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second Decide err = %v, want ErrConflict", err)
	}
	if !store.users[5].ActiveUntil.Equal(first) {
		t.Fatalf("expiry extended twice: %v", store.users[5].ActiveUntil)
	}
	if len(hist.entries) != rows {
		t.Fatalf("conflicting decision wrote history: %d -> %d rows", rows, len(hist.entries))
	}
	if store.reports[id].Status != model.StatusConfirmed {
		t.Fatalf("terminal status changed: %q", store.reports[id].Status)
	}
}

func TestHistoryFailureNeverFailsDecision(t *testing.T) {
	store := newFakeReportStore()
	hist := &fakeHistory{appendErr: errors.New("history table down")}
	store.users[6] = &model.User{ID: 6}
	id := seedPending(store, 6, "April")

	svc := service.NewPaymentService(store, hist)
	svc.Now = fixedClock(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.Decide(context.Background(), id, model.StatusConfirmed, ""); err != nil {
		t.Fatalf("Decide failed because of history write: %v", err)
	}
	if store.reports[id].Status != model.StatusConfirmed {
		t.Fatalf("report status = %q", store.reports[id].Status)
	}
}
