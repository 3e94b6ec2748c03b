// file: internals/features/finance/payments/route/payment_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	paymentController "sekolahpay_backend/internals/features/finance/payments/controller"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
	"sekolahpay_backend/internals/features/finance/payments/service"
)

// PublicPaymentRoutes = endpoint yang dipanggil gateway (tanpa JWT,
// auth pakai X-Callback-Token di controller).
func PublicPaymentRoutes(r fiber.Router, webhook *service.WebhookService) {
	whCtl := paymentController.NewWebhookController(webhook)

	payments := r.Group("/payments")
	{
		payments.Post("/callback", whCtl.HandleInvoiceCallback)
	}
}

// InternalPaymentRoutes = endpoint operasional (di belakang JWT internal).
func InternalPaymentRoutes(r fiber.Router, ledger *service.LedgerService, store repo.Store) {
	payCtl := paymentController.NewPaymentController(ledger, store)
	evCtl := paymentController.NewGatewayEventController(store)

	payments := r.Group("/payments")
	{
		payments.Post("/", payCtl.Create)
		payments.Post("/sweep", payCtl.RunSweep)
		payments.Get("/gateway-events", evCtl.List)
		payments.Get("/:id", payCtl.GetByID)
		payments.Post("/:id/reissue", payCtl.Reissue)
	}
}
