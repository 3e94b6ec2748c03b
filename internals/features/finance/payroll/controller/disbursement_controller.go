// file: internals/features/finance/payroll/controller/disbursement_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	paysvc "sekolahpay_backend/internals/features/finance/payments/service"
	dto "sekolahpay_backend/internals/features/finance/payroll/dto"
	repo "sekolahpay_backend/internals/features/finance/payroll/repository"
	"sekolahpay_backend/internals/features/finance/payroll/service"
	helper "sekolahpay_backend/internals/helpers"
)

type DisbursementController struct {
	Service *service.DisbursementService
	Store   repo.Store
}

func NewDisbursementController(svc *service.DisbursementService, store repo.Store) *DisbursementController {
	return &DisbursementController{Service: svc, Store: store}
}

// ========== Batch ==========
// POST /api/internal/payroll/disbursements
func (ctl *DisbursementController) CreateBatch(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	res, err := ctl.Service.CreateBatch(c.Context(), limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	failed := res.Failed
	if failed == nil {
		failed = []service.BatchItemError{}
	}
	return helper.JsonOK(c, "Batch disbursement selesai", dto.BatchResponse{
		CreatedCount: res.CreatedCount,
		Failed:       failed,
	})
}

// ========== List ==========
// GET /api/internal/payroll/disbursements
func (ctl *DisbursementController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	rows, total, err := ctl.Store.ListDisbursements(c.Context(), (page-1)*perPage, perPage)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	items := make([]dto.DisbursementResponse, 0, len(rows))
	for i := range rows {
		items = append(items, dto.FromModelDisbursement(&rows[i]))
	}
	return helper.JsonList(c, "ok", items, helper.BuildPaginationFromPage(total, page, perPage))
}

// ========== Callback ==========
// POST /api/payroll/disbursement-callback
func (ctl *DisbursementController) HandleCallback(c *fiber.Ctx) error {
	token := c.Get("X-Callback-Token")

	res, err := ctl.Service.ProcessCallback(c.Context(), token, c.Body())
	if err != nil {
		if errors.Is(err, paysvc.ErrUnauthorized) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid callback token")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "callback diterima", fiber.Map{
		"outcome":         res.Outcome,
		"disbursement_id": res.DisbursementID,
		"status":          res.NewStatus,
		"note":            res.Message,
	})
}
