// file: internals/features/finance/payments/model/payments_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ================================
   ENUM mirror (harus cocok dgn DB)
================================ */

type PaymentKind string
type PaymentStatus string
type PaymentGatewayProvider string

const (
	PaymentKindEnrollment PaymentKind = "enrollment" // biaya pendaftaran (one-time)
	PaymentKindTuition    PaymentKind = "tuition"    // SPP bulanan
)

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusExpired PaymentStatus = "expired"
	PaymentStatusFailed  PaymentStatus = "failed"
)

const (
	GatewayProviderXendit   PaymentGatewayProvider = "xendit"
	GatewayProviderMidtrans PaymentGatewayProvider = "midtrans"
)

/* ================================
   MODEL: payments (ledger)
================================ */

type Payment struct {
	PaymentID uuid.UUID `json:"payment_id" gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`

	PaymentKind   PaymentKind   `json:"payment_kind"   gorm:"column:payment_kind;type:payment_kind;not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`

	// Nominal
	PaymentAmountIDR int    `json:"payment_amount_idr" gorm:"column:payment_amount_idr;type:int;not null;check:payment_amount_idr>=0"`
	PaymentCurrency  string `json:"payment_currency"   gorm:"column:payment_currency;type:varchar(8);not null;default:IDR"`

	// Target SPP (hanya untuk kind=tuition)
	PaymentTuitionBillID *uuid.UUID `json:"payment_tuition_bill_id" gorm:"column:payment_tuition_bill_id;type:uuid"`

	// Snapshot payer (dipakai saat membuat invoice gateway)
	PaymentPayerEmail  *string `json:"payment_payer_email"  gorm:"column:payment_payer_email;type:text"`
	PaymentDescription *string `json:"payment_description"  gorm:"column:payment_description;type:text"`

	// Timestamps status
	PaymentPaidAt    *time.Time `json:"payment_paid_at"    gorm:"column:payment_paid_at;type:timestamptz"`
	PaymentExpiredAt *time.Time `json:"payment_expired_at" gorm:"column:payment_expired_at;type:timestamptz"`
	PaymentFailedAt  *time.Time `json:"payment_failed_at"  gorm:"column:payment_failed_at;type:timestamptz"`

	// Audit
	PaymentCreatedAt time.Time  `json:"payment_created_at" gorm:"column:payment_created_at;type:timestamptz;not null;default:now()"`
	PaymentUpdatedAt time.Time  `json:"payment_updated_at" gorm:"column:payment_updated_at;type:timestamptz;not null;default:now()"`
	PaymentDeletedAt *time.Time `json:"payment_deleted_at" gorm:"column:payment_deleted_at;type:timestamptz"`
}

func (Payment) TableName() string { return "payments" }

/* ================================
   MODEL: payment_gateway_invoices
   (invoice ref gateway; 1..N per payment, tepat satu yang aktif)
================================ */

type PaymentGatewayInvoice struct {
	PaymentGatewayInvoiceID uuid.UUID `json:"payment_gateway_invoice_id" gorm:"column:payment_gateway_invoice_id;type:uuid;default:gen_random_uuid();primaryKey"`

	PaymentGatewayInvoicePaymentID uuid.UUID `json:"payment_gateway_invoice_payment_id" gorm:"column:payment_gateway_invoice_payment_id;type:uuid;not null;index"`

	// external_id dibuat lokal (order id), gateway id diberikan gateway
	PaymentGatewayInvoiceExternalID string  `json:"payment_gateway_invoice_external_id" gorm:"column:payment_gateway_invoice_external_id;type:text;not null;uniqueIndex"`
	PaymentGatewayInvoiceGatewayID  *string `json:"payment_gateway_invoice_gateway_id"  gorm:"column:payment_gateway_invoice_gateway_id;type:text;uniqueIndex"`

	PaymentGatewayInvoiceProvider      PaymentGatewayProvider `json:"payment_gateway_invoice_provider"       gorm:"column:payment_gateway_invoice_provider;type:payment_gateway_provider;not null"`
	PaymentGatewayInvoiceGatewayStatus *string                `json:"payment_gateway_invoice_gateway_status" gorm:"column:payment_gateway_invoice_gateway_status;type:text"`
	PaymentGatewayInvoicePaymentURL    *string                `json:"payment_gateway_invoice_payment_url"    gorm:"column:payment_gateway_invoice_payment_url;type:text"`
	PaymentGatewayInvoiceExpiresAt     *time.Time             `json:"payment_gateway_invoice_expires_at"     gorm:"column:payment_gateway_invoice_expires_at;type:timestamptz"`

	PaymentGatewayInvoiceSuperseded bool `json:"payment_gateway_invoice_superseded" gorm:"column:payment_gateway_invoice_superseded;not null;default:false"`

	PaymentGatewayInvoiceCreatedAt time.Time `json:"payment_gateway_invoice_created_at" gorm:"column:payment_gateway_invoice_created_at;type:timestamptz;not null;default:now()"`
	PaymentGatewayInvoiceUpdatedAt time.Time `json:"payment_gateway_invoice_updated_at" gorm:"column:payment_gateway_invoice_updated_at;type:timestamptz;not null;default:now()"`
}

func (PaymentGatewayInvoice) TableName() string { return "payment_gateway_invoices" }

/* ================================
   MODEL: pending_registrations
   Data pendaftaran yang di-hold sampai payment confirmed.
   Dulu in-memory map; sekarang row 1:1 dgn payment_id supaya aman
   multi-instance / restart.
================================ */

type PendingRegistration struct {
	PendingRegistrationID uuid.UUID `json:"pending_registration_id" gorm:"column:pending_registration_id;type:uuid;default:gen_random_uuid();primaryKey"`

	PendingRegistrationPaymentID uuid.UUID `json:"pending_registration_payment_id" gorm:"column:pending_registration_payment_id;type:uuid;not null;uniqueIndex"`

	PendingRegistrationStudentName  string     `json:"pending_registration_student_name"  gorm:"column:pending_registration_student_name;type:text;not null"`
	PendingRegistrationStudentEmail string     `json:"pending_registration_student_email" gorm:"column:pending_registration_student_email;type:text;not null"`
	PendingRegistrationStudentPhone *string    `json:"pending_registration_student_phone" gorm:"column:pending_registration_student_phone;type:varchar(32)"`
	PendingRegistrationClassID      uuid.UUID  `json:"pending_registration_class_id"      gorm:"column:pending_registration_class_id;type:uuid;not null"`
	PendingRegistrationMonthlyIDR   int        `json:"pending_registration_monthly_idr"   gorm:"column:pending_registration_monthly_idr;type:int;not null"`

	// Payload mentah form pendaftaran (buat audit / field tambahan)
	PendingRegistrationPayload datatypes.JSON `json:"pending_registration_payload" gorm:"column:pending_registration_payload;type:jsonb"`

	PendingRegistrationCreatedAt time.Time `json:"pending_registration_created_at" gorm:"column:pending_registration_created_at;type:timestamptz;not null;default:now()"`
}

func (PendingRegistration) TableName() string { return "pending_registrations" }
