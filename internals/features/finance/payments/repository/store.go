// file: internals/features/finance/payments/repository/store.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	model "sekolahpay_backend/internals/features/finance/payments/model"
	studentmodel "sekolahpay_backend/internals/features/school/students/model"
)

// Store adalah kontrak persistence untuk payment core. Service layer hanya
// bicara lewat interface ini supaya logika ledger/webhook bisa diuji tanpa
// Postgres hidup.
//
// Konvensi: lookup yang tidak menemukan row mengembalikan (nil, nil),
// bukan error.
type Store interface {
	// WithTx menjalankan fn dalam satu transaksi database; Store yang
	// diberikan ke fn terikat ke transaksi tsb.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Payments (ledger)
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// GetPaymentForUpdate mengambil row dengan SELECT ... FOR UPDATE;
	// serialisasi per payment id antara webhook, sweeper, dan reissue.
	GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	SavePayment(ctx context.Context, p *model.Payment) error
	// ListPendingExpiredBefore: payment pending yang ref aktifnya sudah
	// lewat cutoff (dipakai sweeper).
	ListPendingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Payment, error)

	// Invoice refs
	CreateInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error
	SaveInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error
	ActiveInvoiceRef(ctx context.Context, paymentID uuid.UUID) (*model.PaymentGatewayInvoice, error)
	FindInvoiceRefByGatewayID(ctx context.Context, gatewayInvoiceID string) (*model.PaymentGatewayInvoice, error)

	// Callback log (append-only) + retry queue
	AppendGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error
	SaveGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error
	ListRetryableEvents(ctx context.Context, maxTry, limit int) ([]model.PaymentGatewayEvent, error)
	ListGatewayEvents(ctx context.Context, offset, limit int) ([]model.PaymentGatewayEvent, int64, error)

	// Pending registrations
	CreatePendingRegistration(ctx context.Context, reg *model.PendingRegistration) error
	GetPendingRegistration(ctx context.Context, paymentID uuid.UUID) (*model.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, paymentID uuid.UUID) error

	// Entitas permanen hasil promosi + target SPP
	CreateStudent(ctx context.Context, st *studentmodel.SchoolStudent) error
	CreateEnrollment(ctx context.Context, en *studentmodel.StudentClassEnrollment) error
	FindEnrollmentByPaymentID(ctx context.Context, paymentID uuid.UUID) (*studentmodel.StudentClassEnrollment, error)
	CreateTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error
	GetTuitionBill(ctx context.Context, id uuid.UUID) (*studentmodel.TuitionBill, error)
	SaveTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error
}
