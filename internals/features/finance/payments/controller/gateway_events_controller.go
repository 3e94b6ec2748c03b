// file: internals/features/finance/payments/controller/gateway_events_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	dto "sekolahpay_backend/internals/features/finance/payments/dto"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
	helper "sekolahpay_backend/internals/helpers"
)

type GatewayEventController struct {
	Store repo.Store
}

func NewGatewayEventController(store repo.Store) *GatewayEventController {
	return &GatewayEventController{Store: store}
}

// ========== List ==========
// GET /api/internal/payments/gateway-events?page=&per_page=
// Audit trail callback, terbaru dulu. Buat rekonsiliasi manual
// (unmatched / dead_letter).
func (ctl *GatewayEventController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	events, total, err := ctl.Store.ListGatewayEvents(c.Context(), (page-1)*perPage, perPage)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	items := make([]dto.GatewayEventResponse, 0, len(events))
	for i := range events {
		items = append(items, dto.FromModelGatewayEvent(&events[i]))
	}

	return helper.JsonList(c, "ok", items, helper.BuildPaginationFromPage(total, page, perPage))
}
