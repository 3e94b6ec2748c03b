// file: internals/features/finance/payroll/route/payroll_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	payrollController "sekolahpay_backend/internals/features/finance/payroll/controller"
	repo "sekolahpay_backend/internals/features/finance/payroll/repository"
	"sekolahpay_backend/internals/features/finance/payroll/service"
)

// PublicPayrollRoutes = callback payout dari gateway (auth via X-Callback-Token).
func PublicPayrollRoutes(r fiber.Router, svc *service.DisbursementService, store repo.Store) {
	ctl := payrollController.NewDisbursementController(svc, store)

	payroll := r.Group("/payroll")
	{
		payroll.Post("/disbursement-callback", ctl.HandleCallback)
	}
}

// InternalPayrollRoutes = operasional payout (di belakang JWT internal).
func InternalPayrollRoutes(r fiber.Router, svc *service.DisbursementService, store repo.Store) {
	ctl := payrollController.NewDisbursementController(svc, store)

	payroll := r.Group("/payroll")
	{
		payroll.Post("/disbursements", ctl.CreateBatch)
		payroll.Get("/disbursements", ctl.List)
	}
}
