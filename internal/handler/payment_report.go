package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/model"
	"github.com/iliyamo/kost-management/internal/repository"
	"github.com/iliyamo/kost-management/internal/service"
	"github.com/iliyamo/kost-management/internal/utils"
)

// paymentDecider is the slice of the payment service the handler needs;
// tests substitute a fake.
type paymentDecider interface {
	Submit(ctx context.Context, in service.SubmitInput) (*model.PaymentReport, error)
	Decide(ctx context.Context, reportID uint64, target, comment string) (string, error)
}

// reportReader reads reports straight from the repository for listing.
type reportReader interface {
	ListAll(ctx context.Context) ([]repository.ReportWithUser, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReportWithUser, error)
	GetByID(ctx context.Context, id uint64) (*repository.ReportWithUser, error)
}

// PaymentReportHandler serves submission, listing and the admin decision
// on payment reports.
type PaymentReportHandler struct {
	Payments  paymentDecider
	Reports   reportReader
	UploadDir string
}

func NewPaymentReportHandler(p paymentDecider, r reportReader, uploadDir string) *PaymentReportHandler {
	return &PaymentReportHandler{Payments: p, Reports: r, UploadDir: uploadDir}
}

// Submit accepts a multipart payment claim from a tenant: payment_method,
// amount, periods and a proof image under the "proof" field.  The stored
// proof is served from /uploads.
func (h *PaymentReportHandler) Submit(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("amount")), 10, 64)
	if err != nil || amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid amount required"})
	}
	method := strings.TrimSpace(c.FormValue("payment_method"))
	periods := strings.TrimSpace(c.FormValue("periods"))

	fh, err := c.FormFile("proof")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "proof image required"})
	}
	stored, err := utils.SaveUpload(h.UploadDir, fh)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store proof failed"})
	}
	proofURL := "/uploads/" + filepath.Base(stored)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Payments.Submit(ctx, service.SubmitInput{
		UserID:        uid,
		PaymentMethod: method,
		Amount:        amount,
		Periods:       periods,
		ProofURL:      proofURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method, amount, periods and proof are required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Payment report submitted", "report": rep})
}

// List returns every report, newest first (admin dashboard).
func (h *PaymentReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reports.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// Mine returns the authenticated tenant's own reports.
func (h *PaymentReportHandler) Mine(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reports.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetByID returns a single report with its owner details.
func (h *PaymentReportHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, item)
}

type decideReq struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// Decide moves a pending report to confirmed or rejected.  A report that
// already reached a terminal status comes back as 409 so two admins
// cannot both apply an extension.
func (h *PaymentReportHandler) Decide(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Payments.Decide(ctx, id, strings.ToLower(strings.TrimSpace(req.Status)), strings.TrimSpace(req.Comment))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be confirmed or rejected"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "report already decided"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decide failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
