package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/handler"
	"github.com/iliyamo/kost-management/internal/service"
)

type fakeRevenue struct {
	month string
	out   *service.MonthlyRevenue
	err   error
}

func (f *fakeRevenue) Monthly(_ context.Context, month string) (*service.MonthlyRevenue, error) {
	f.month = month
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func revenueCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMonthlyRequiresMonthParam(t *testing.T) {
	f := &fakeRevenue{err: service.ErrInvalidMonth}
	h := handler.NewRevenueHandler(f)

	c, rec := revenueCtx("/v1/revenue")
	if err := h.Monthly(c); err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMonthlyReturnsAggregate(t *testing.T) {
	f := &fakeRevenue{out: &service.MonthlyRevenue{Month: "2025-06", Total: 1300000, TransactionCount: 2}}
	h := handler.NewRevenueHandler(f)

	c, rec := revenueCtx("/v1/revenue?month=2025-06")
	if err := h.Monthly(c); err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.month != "2025-06" {
		t.Fatalf("month passed = %q", f.month)
	}

	var out service.MonthlyRevenue
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 1300000 || out.TransactionCount != 2 {
		t.Fatalf("out = %+v", out)
	}
}
