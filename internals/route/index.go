// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahpay_backend/internals/configs"
	gw "sekolahpay_backend/internals/features/finance/payments/gateway"
	paymodel "sekolahpay_backend/internals/features/finance/payments/model"
	payrepo "sekolahpay_backend/internals/features/finance/payments/repository"
	payroute "sekolahpay_backend/internals/features/finance/payments/route"
	payscheduler "sekolahpay_backend/internals/features/finance/payments/scheduler"
	paysvc "sekolahpay_backend/internals/features/finance/payments/service"
	payrollrepo "sekolahpay_backend/internals/features/finance/payroll/repository"
	payrollroute "sekolahpay_backend/internals/features/finance/payroll/route"
	payrollsvc "sekolahpay_backend/internals/features/finance/payroll/service"
	authMiddleware "sekolahpay_backend/internals/middlewares/auth"
)

var startTime time.Time

func buildGatewayAdapter() (gw.Adapter, paymodel.PaymentGatewayProvider) {
	if configs.GatewayProvider == "midtrans" {
		log.Println("[INFO] Gateway adapter: midtrans")
		return gw.NewMidtransAdapter(configs.MidtransServerKey, configs.MidtransUseProd), paymodel.GatewayProviderMidtrans
	}
	log.Println("[INFO] Gateway adapter: xendit")
	return gw.NewXenditAdapter(configs.XenditAPIKey, configs.XenditBaseURL), paymodel.GatewayProviderXendit
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	adapter, provider := buildGatewayAdapter()

	payStore := payrepo.NewGormStore(db)
	payrollStore := payrollrepo.NewGormStore(db)

	ledger := paysvc.NewLedgerService(payStore, adapter, provider, configs.InvoiceDuration)
	registration := paysvc.NewRegistrationService(payStore, configs.TuitionPeriodsAhead)
	webhook := paysvc.NewWebhookService(payStore, registration, configs.GatewayCallbackToken, provider, configs.DownstreamRetryMax)
	disbursement := payrollsvc.NewDisbursementService(payrollStore, adapter, provider, payStore, configs.GatewayCallbackToken)

	// ===================== PUBLIC (callback gateway) =====================
	log.Println("[INFO] Setting up PUBLIC callback routes...")
	public := app.Group("/api")
	payroute.PublicPaymentRoutes(public, webhook)
	payrollroute.PublicPayrollRoutes(public, disbursement, payrollStore)

	// ===================== INTERNAL (JWT) =====================
	log.Println("[INFO] Setting up INTERNAL routes (JWT)...")
	internal := app.Group("/api/internal", authMiddleware.InternalAuthMiddleware())
	payroute.InternalPaymentRoutes(internal, ledger, payStore)
	payrollroute.InternalPayrollRoutes(internal, disbursement, payrollStore)

	// ===================== HEALTH =====================
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "ok",
			"data": fiber.Map{
				"uptime":   time.Since(startTime).String(),
				"provider": string(provider),
			},
		})
	})

	// ===================== SCHEDULERS =====================
	log.Println("[INFO] Starting payment schedulers...")
	payscheduler.StartExpirySweeper(ledger)
	payscheduler.StartDownstreamRetryWorker(webhook)
}
