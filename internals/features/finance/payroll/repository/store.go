// file: internals/features/finance/payroll/repository/store.go
package repository

import (
	"context"

	"github.com/google/uuid"

	model "sekolahpay_backend/internals/features/finance/payroll/model"
)

// Store mengabstraksi persistence payroll/disbursement supaya service
// bisa dites dengan fake in-memory. Konvensi sama dengan store payments:
// row tidak ketemu → (nil, nil), bukan error.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	GetPayroll(ctx context.Context, id uuid.UUID) (*model.Payroll, error)
	SavePayroll(ctx context.Context, p *model.Payroll) error
	// ListDisbursablePayrolls = payroll approved yang belum punya
	// disbursement hidup (pending/processing/completed). Row failed
	// tidak dihitung supaya bisa dicoba ulang.
	ListDisbursablePayrolls(ctx context.Context, limit int) ([]model.Payroll, error)

	CreateDisbursement(ctx context.Context, d *model.Disbursement) error
	SaveDisbursement(ctx context.Context, d *model.Disbursement) error
	GetDisbursement(ctx context.Context, id uuid.UUID) (*model.Disbursement, error)
	GetDisbursementForUpdate(ctx context.Context, id uuid.UUID) (*model.Disbursement, error)
	FindDisbursementByGatewayID(ctx context.Context, gatewayID string) (*model.Disbursement, error)
	FindDisbursementByExternalID(ctx context.Context, externalID string) (*model.Disbursement, error)
	ListDisbursements(ctx context.Context, offset, limit int) ([]model.Disbursement, int64, error)
}
