// file: internals/features/finance/payroll/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "sekolahpay_backend/internals/features/finance/payroll/model"
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

/* ================= Payrolls ================= */

func (g *GormStore) GetPayroll(ctx context.Context, id uuid.UUID) (*model.Payroll, error) {
	var p model.Payroll
	err := g.db.WithContext(ctx).First(&p, "payroll_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *GormStore) SavePayroll(ctx context.Context, p *model.Payroll) error {
	p.PayrollUpdatedAt = time.Now()
	return g.db.WithContext(ctx).Save(p).Error
}

func (g *GormStore) ListDisbursablePayrolls(ctx context.Context, limit int) ([]model.Payroll, error) {
	var out []model.Payroll
	q := g.db.WithContext(ctx).
		Table("payrolls").
		Where("payroll_status = ?", model.PayrollStatusApproved).
		Where(`NOT EXISTS (
			SELECT 1 FROM disbursements d
			 WHERE d.disbursement_payroll_id = payrolls.payroll_id
			   AND d.disbursement_status <> ?)`, model.DisbursementStatusFailed).
		Order("payroll_created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

/* ================= Disbursements ================= */

func (g *GormStore) CreateDisbursement(ctx context.Context, d *model.Disbursement) error {
	return g.db.WithContext(ctx).Create(d).Error
}

func (g *GormStore) SaveDisbursement(ctx context.Context, d *model.Disbursement) error {
	d.DisbursementUpdatedAt = time.Now()
	return g.db.WithContext(ctx).Save(d).Error
}

func (g *GormStore) GetDisbursement(ctx context.Context, id uuid.UUID) (*model.Disbursement, error) {
	var d model.Disbursement
	err := g.db.WithContext(ctx).First(&d, "disbursement_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (g *GormStore) GetDisbursementForUpdate(ctx context.Context, id uuid.UUID) (*model.Disbursement, error) {
	var d model.Disbursement
	err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "disbursement_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (g *GormStore) FindDisbursementByGatewayID(ctx context.Context, gatewayID string) (*model.Disbursement, error) {
	var d model.Disbursement
	err := g.db.WithContext(ctx).
		Where("disbursement_gateway_id = ?", gatewayID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (g *GormStore) FindDisbursementByExternalID(ctx context.Context, externalID string) (*model.Disbursement, error) {
	var d model.Disbursement
	err := g.db.WithContext(ctx).
		Where("disbursement_external_id = ?", externalID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (g *GormStore) ListDisbursements(ctx context.Context, offset, limit int) ([]model.Disbursement, int64, error) {
	var total int64
	if err := g.db.WithContext(ctx).Model(&model.Disbursement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.Disbursement
	err := g.db.WithContext(ctx).
		Order("disbursement_created_at DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
