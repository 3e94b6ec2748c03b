// file: internals/features/finance/payments/controller/webhook_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sekolahpay_backend/internals/features/finance/payments/service"
	helper "sekolahpay_backend/internals/helpers"
)

type WebhookController struct {
	Webhook *service.WebhookService
}

func NewWebhookController(webhook *service.WebhookService) *WebhookController {
	return &WebhookController{Webhook: webhook}
}

// ========== Callback invoice ==========
// POST /api/payments/callback
// Gateway mengirim ulang notifikasi kalau non-2xx, jadi semua outcome
// taksonomi (noop/unmatched/invalid_transition/downstream_failure) tetap
// di-ack 200; hanya error infrastruktur yang dibalas 5xx.
func (ctl *WebhookController) HandleInvoiceCallback(c *fiber.Ctx) error {
	token := c.Get("X-Callback-Token")

	res, err := ctl.Webhook.ProcessNotification(c.Context(), token, c.Body())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid callback token")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "callback diterima", fiber.Map{
		"outcome":    res.Outcome,
		"payment_id": res.PaymentID,
		"status":     res.NewStatus,
		"note":       res.Message,
	})
}
