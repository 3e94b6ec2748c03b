// file: internals/features/finance/payments/gateway/adapter.go
package gateway

import (
	"context"
	"errors"
	"time"
)

/* =========================================================
   Gateway Adapter
   Kontrak tunggal ke payment gateway (invoice + disbursement).
   Wire protocol spesifik provider hidup di implementasi
   masing-masing (xendit.go / midtrans.go).
========================================================= */

// Status vocabulary gateway yang dipahami processor internal.
const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusSettled = "SETTLED"
	InvoiceStatusExpired = "EXPIRED"
	InvoiceStatusFailed  = "FAILED"

	DisbursementStatusPending   = "PENDING"
	DisbursementStatusCompleted = "COMPLETED"
	DisbursementStatusFailed    = "FAILED"
)

// ErrUnsupported dikembalikan provider yang tidak mendukung operasi tsb
// (mis. midtrans tidak punya API payout di sini).
var ErrUnsupported = errors.New("gateway: operation not supported by provider")

type CreateInvoiceInput struct {
	ExternalID  string
	AmountIDR   int
	PayerEmail  string
	Description string
	Methods     []string
	Duration    time.Duration
}

type Invoice struct {
	GatewayInvoiceID string
	Status           string
	PaymentURL       string
	ExpiresAt        time.Time
}

type CreateDisbursementInput struct {
	ExternalID        string
	AmountIDR         int
	BankCode          string
	AccountNumber     string
	AccountHolderName string
	Description       string
}

type Disbursement struct {
	GatewayDisbursementID string
	Status                string
}

// Adapter adalah kontrak yang harus dipenuhi tiap provider.
// Semua call membawa bounded timeout; timeout = "outcome unknown",
// caller TIDAK boleh retry buta (nunggu webhook / reconciliation pass).
type Adapter interface {
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, gatewayInvoiceID string) (*Invoice, error)
	ExpireInvoice(ctx context.Context, gatewayInvoiceID string) (*Invoice, error)

	CreateDisbursement(ctx context.Context, in CreateDisbursementInput) (*Disbursement, error)
	GetDisbursement(ctx context.Context, gatewayDisbursementID string) (*Disbursement, error)
}
