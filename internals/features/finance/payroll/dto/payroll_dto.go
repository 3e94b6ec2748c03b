// file: internals/features/finance/payroll/dto/payroll_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "sekolahpay_backend/internals/features/finance/payroll/model"
	"sekolahpay_backend/internals/features/finance/payroll/service"
)

type DisbursementResponse struct {
	DisbursementID    uuid.UUID                `json:"disbursement_id"`
	PayrollID         uuid.UUID                `json:"payroll_id"`
	ExternalID        string                   `json:"external_id"`
	GatewayID         *string                  `json:"gateway_id"`
	AmountIDR         int                      `json:"amount_idr"`
	BankCode          string                   `json:"bank_code"`
	AccountNumber     string                   `json:"account_number"`
	AccountHolderName string                   `json:"account_holder_name"`
	Status            model.DisbursementStatus `json:"status"`
	Error             *string                  `json:"error,omitempty"`
	CompletedAt       *time.Time               `json:"completed_at,omitempty"`
	FailedAt          *time.Time               `json:"failed_at,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

func FromModelDisbursement(d *model.Disbursement) DisbursementResponse {
	return DisbursementResponse{
		DisbursementID:    d.DisbursementID,
		PayrollID:         d.DisbursementPayrollID,
		ExternalID:        d.DisbursementExternalID,
		GatewayID:         d.DisbursementGatewayID,
		AmountIDR:         d.DisbursementAmountIDR,
		BankCode:          d.DisbursementBankCode,
		AccountNumber:     d.DisbursementAccountNumber,
		AccountHolderName: d.DisbursementAccountHolderName,
		Status:            d.DisbursementStatus,
		Error:             d.DisbursementError,
		CompletedAt:       d.DisbursementCompletedAt,
		FailedAt:          d.DisbursementFailedAt,
		CreatedAt:         d.DisbursementCreatedAt,
	}
}

type BatchResponse struct {
	CreatedCount int                      `json:"created_count"`
	Failed       []service.BatchItemError `json:"failed"`
}
