// file: internals/features/finance/payments/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "sekolahpay_backend/internals/features/finance/payments/model"
	studentmodel "sekolahpay_backend/internals/features/school/students/model"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (g *GormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

/* ================= Payments ================= */

func (g *GormStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	return g.db.WithContext(ctx).Create(p).Error
}

func (g *GormStore) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := g.db.WithContext(ctx).
		First(&p, "payment_id = ? AND payment_deleted_at IS NULL", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *GormStore) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "payment_id = ? AND payment_deleted_at IS NULL", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *GormStore) SavePayment(ctx context.Context, p *model.Payment) error {
	p.PaymentUpdatedAt = time.Now()
	return g.db.WithContext(ctx).Save(p).Error
}

func (g *GormStore) ListPendingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Payment, error) {
	var out []model.Payment
	q := g.db.WithContext(ctx).
		Table("payments").
		Joins(`JOIN payment_gateway_invoices i
		           ON i.payment_gateway_invoice_payment_id = payments.payment_id
		          AND i.payment_gateway_invoice_superseded = FALSE`).
		Where("payments.payment_status = ? AND payments.payment_deleted_at IS NULL", model.PaymentStatusPending).
		Where("i.payment_gateway_invoice_expires_at < ?", cutoff).
		Order("payments.payment_created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

/* ================= Invoice refs ================= */

func (g *GormStore) CreateInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error {
	return g.db.WithContext(ctx).Create(ref).Error
}

func (g *GormStore) SaveInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error {
	ref.PaymentGatewayInvoiceUpdatedAt = time.Now()
	return g.db.WithContext(ctx).Save(ref).Error
}

func (g *GormStore) ActiveInvoiceRef(ctx context.Context, paymentID uuid.UUID) (*model.PaymentGatewayInvoice, error) {
	var ref model.PaymentGatewayInvoice
	err := g.db.WithContext(ctx).
		Where("payment_gateway_invoice_payment_id = ? AND payment_gateway_invoice_superseded = FALSE", paymentID).
		First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (g *GormStore) FindInvoiceRefByGatewayID(ctx context.Context, gatewayInvoiceID string) (*model.PaymentGatewayInvoice, error) {
	var ref model.PaymentGatewayInvoice
	err := g.db.WithContext(ctx).
		Where("payment_gateway_invoice_gateway_id = ?", gatewayInvoiceID).
		First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

/* ================= Callback log ================= */

func (g *GormStore) AppendGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	return g.db.WithContext(ctx).Create(ev).Error
}

func (g *GormStore) SaveGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	return g.db.WithContext(ctx).Save(ev).Error
}

func (g *GormStore) ListRetryableEvents(ctx context.Context, maxTry, limit int) ([]model.PaymentGatewayEvent, error) {
	var out []model.PaymentGatewayEvent
	q := g.db.WithContext(ctx).
		Where("gateway_event_status = ? AND gateway_event_try_count < ?", model.GatewayEventFailedDownstream, maxTry).
		Order("gateway_event_received_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GormStore) ListGatewayEvents(ctx context.Context, offset, limit int) ([]model.PaymentGatewayEvent, int64, error) {
	var (
		out   []model.PaymentGatewayEvent
		total int64
	)
	if err := g.db.WithContext(ctx).Model(&model.PaymentGatewayEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := g.db.WithContext(ctx).
		Order("gateway_event_received_at DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* ================= Pending registrations ================= */

func (g *GormStore) CreatePendingRegistration(ctx context.Context, reg *model.PendingRegistration) error {
	return g.db.WithContext(ctx).Create(reg).Error
}

func (g *GormStore) GetPendingRegistration(ctx context.Context, paymentID uuid.UUID) (*model.PendingRegistration, error) {
	var reg model.PendingRegistration
	err := g.db.WithContext(ctx).
		Where("pending_registration_payment_id = ?", paymentID).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (g *GormStore) DeletePendingRegistration(ctx context.Context, paymentID uuid.UUID) error {
	return g.db.WithContext(ctx).
		Where("pending_registration_payment_id = ?", paymentID).
		Delete(&model.PendingRegistration{}).Error
}

/* ================= Entitas permanen ================= */

func (g *GormStore) CreateStudent(ctx context.Context, st *studentmodel.SchoolStudent) error {
	return g.db.WithContext(ctx).Create(st).Error
}

func (g *GormStore) CreateEnrollment(ctx context.Context, en *studentmodel.StudentClassEnrollment) error {
	return g.db.WithContext(ctx).Create(en).Error
}

func (g *GormStore) FindEnrollmentByPaymentID(ctx context.Context, paymentID uuid.UUID) (*studentmodel.StudentClassEnrollment, error) {
	var en studentmodel.StudentClassEnrollment
	err := g.db.WithContext(ctx).
		Where("student_class_enrollment_payment_id = ? AND student_class_enrollment_deleted_at IS NULL", paymentID).
		First(&en).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &en, nil
}

func (g *GormStore) CreateTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error {
	return g.db.WithContext(ctx).Create(b).Error
}

func (g *GormStore) GetTuitionBill(ctx context.Context, id uuid.UUID) (*studentmodel.TuitionBill, error) {
	var b studentmodel.TuitionBill
	err := g.db.WithContext(ctx).
		First(&b, "tuition_bill_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (g *GormStore) SaveTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error {
	b.TuitionBillUpdatedAt = time.Now()
	return g.db.WithContext(ctx).Save(b).Error
}
