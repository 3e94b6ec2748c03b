// file: internals/features/finance/payroll/model/payroll_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type PayrollStatus string

const (
	PayrollStatusDraft    PayrollStatus = "draft"
	PayrollStatusApproved PayrollStatus = "approved"
	PayrollStatusPaidOut  PayrollStatus = "paid_out"
)

type DisbursementStatus string

const (
	DisbursementStatusPending    DisbursementStatus = "pending"
	DisbursementStatusProcessing DisbursementStatus = "processing"
	DisbursementStatusCompleted  DisbursementStatus = "completed"
	DisbursementStatusFailed     DisbursementStatus = "failed"
)

/* ================================
   MODEL: payrolls
   Nominal & rekening sudah final saat approved; CRUD penyusunan gaji
   ada di modul lain.
================================ */

type Payroll struct {
	PayrollID uuid.UUID `json:"payroll_id" gorm:"column:payroll_id;type:uuid;default:gen_random_uuid();primaryKey"`

	PayrollTeacherName string `json:"payroll_teacher_name" gorm:"column:payroll_teacher_name;type:text;not null"`
	PayrollPeriod      string `json:"payroll_period"       gorm:"column:payroll_period;type:varchar(7);not null"` // "2026-08"
	PayrollAmountIDR   int    `json:"payroll_amount_idr"   gorm:"column:payroll_amount_idr;type:int;not null;check:payroll_amount_idr>=0"`

	// Rekening tujuan payout
	PayrollBankCode          string `json:"payroll_bank_code"           gorm:"column:payroll_bank_code;type:varchar(16);not null"`
	PayrollAccountNumber     string `json:"payroll_account_number"      gorm:"column:payroll_account_number;type:varchar(32);not null"`
	PayrollAccountHolderName string `json:"payroll_account_holder_name" gorm:"column:payroll_account_holder_name;type:text;not null"`

	PayrollStatus PayrollStatus `json:"payroll_status" gorm:"column:payroll_status;type:payroll_status;not null;default:'draft'"`

	PayrollCreatedAt time.Time `json:"payroll_created_at" gorm:"column:payroll_created_at;type:timestamptz;not null;default:now()"`
	PayrollUpdatedAt time.Time `json:"payroll_updated_at" gorm:"column:payroll_updated_at;type:timestamptz;not null;default:now()"`
}

func (Payroll) TableName() string { return "payrolls" }

/* ================================
   MODEL: disbursements
   1:1 dengan payroll (satu payout aktif per payroll). Row failed tidak
   menghalangi percobaan batch berikutnya.
================================ */

type Disbursement struct {
	DisbursementID uuid.UUID `json:"disbursement_id" gorm:"column:disbursement_id;type:uuid;default:gen_random_uuid();primaryKey"`

	DisbursementPayrollID uuid.UUID `json:"disbursement_payroll_id" gorm:"column:disbursement_payroll_id;type:uuid;not null;index"`

	DisbursementExternalID string  `json:"disbursement_external_id" gorm:"column:disbursement_external_id;type:text;not null;uniqueIndex"`
	DisbursementGatewayID  *string `json:"disbursement_gateway_id"  gorm:"column:disbursement_gateway_id;type:text;uniqueIndex"`

	DisbursementAmountIDR int `json:"disbursement_amount_idr" gorm:"column:disbursement_amount_idr;type:int;not null"`

	// Snapshot rekening saat request dibuat
	DisbursementBankCode          string `json:"disbursement_bank_code"           gorm:"column:disbursement_bank_code;type:varchar(16);not null"`
	DisbursementAccountNumber     string `json:"disbursement_account_number"      gorm:"column:disbursement_account_number;type:varchar(32);not null"`
	DisbursementAccountHolderName string `json:"disbursement_account_holder_name" gorm:"column:disbursement_account_holder_name;type:text;not null"`

	DisbursementStatus DisbursementStatus `json:"disbursement_status" gorm:"column:disbursement_status;type:disbursement_status;not null;default:'pending'"`
	DisbursementError  *string            `json:"disbursement_error"  gorm:"column:disbursement_error;type:text"`

	DisbursementCompletedAt *time.Time `json:"disbursement_completed_at" gorm:"column:disbursement_completed_at;type:timestamptz"`
	DisbursementFailedAt    *time.Time `json:"disbursement_failed_at"    gorm:"column:disbursement_failed_at;type:timestamptz"`

	DisbursementCreatedAt time.Time `json:"disbursement_created_at" gorm:"column:disbursement_created_at;type:timestamptz;not null;default:now()"`
	DisbursementUpdatedAt time.Time `json:"disbursement_updated_at" gorm:"column:disbursement_updated_at;type:timestamptz;not null;default:now()"`
}

func (Disbursement) TableName() string { return "disbursements" }
