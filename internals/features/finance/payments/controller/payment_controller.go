// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "sekolahpay_backend/internals/features/finance/payments/dto"
	model "sekolahpay_backend/internals/features/finance/payments/model"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
	"sekolahpay_backend/internals/features/finance/payments/service"
	helper "sekolahpay_backend/internals/helpers"
)

type PaymentController struct {
	Ledger    *service.LedgerService
	Store     repo.Store
	Validator *validator.Validate
}

func NewPaymentController(ledger *service.LedgerService, store repo.Store) *PaymentController {
	return &PaymentController{
		Ledger:    ledger,
		Store:     store,
		Validator: validator.New(),
	}
}

// ========== Create ==========
// POST /api/internal/payments
func (ctl *PaymentController) Create(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, validationMap(err))
	}
	if req.Kind == model.PaymentKindEnrollment && req.Registration == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "registration wajib diisi untuk payment enrollment")
	}
	if req.Kind == model.PaymentKindTuition && req.TuitionBillID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "tuition_bill_id wajib diisi untuk payment tuition")
	}

	res, err := ctl.Ledger.CreatePayment(c.Context(), req.ToInput())
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadGateway, err.Error())
	}

	return helper.JsonCreated(c, "Payment berhasil dibuat", dto.FromModelPayment(res.Payment, res.Invoice))
}

// ========== Get ==========
// GET /api/internal/payments/:id
func (ctl *PaymentController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "payment_id invalid")
	}

	p, err := ctl.Ledger.GetPayment(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Payment tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	ref, err := ctl.Store.ActiveInvoiceRef(c.Context(), p.PaymentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "ok", dto.FromModelPayment(p, ref))
}

// ========== Reissue ==========
// POST /api/internal/payments/:id/reissue
func (ctl *PaymentController) Reissue(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "payment_id invalid")
	}

	ref, err := ctl.Ledger.Reissue(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "Payment tidak ditemukan")
		case errors.Is(err, service.ErrInvalidState):
			return helper.JsonError(c, fiber.StatusConflict, err.Error())
		default:
			return helper.JsonError(c, fiber.StatusBadGateway, err.Error())
		}
	}

	return helper.JsonCreated(c, "Invoice baru diterbitkan", dto.FromModelInvoiceRef(ref))
}

// ========== Sweep manual ==========
// POST /api/internal/payments/sweep (di luar jadwal scheduler)
func (ctl *PaymentController) RunSweep(c *fiber.Ctx) error {
	res, err := ctl.Ledger.SweepExpiredPayments(c.Context(), time.Now())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	errMsgs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		errMsgs = append(errMsgs, e.Error())
	}
	return helper.JsonOK(c, "Sweep selesai", fiber.Map{
		"expired_count": res.ExpiredCount,
		"errors":        errMsgs,
	})
}

func validationMap(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			f := strings.ToLower(fe.Field())
			out[f] = append(out[f], fe.Tag())
		}
		return out
	}
	out["_"] = []string{err.Error()}
	return out
}
