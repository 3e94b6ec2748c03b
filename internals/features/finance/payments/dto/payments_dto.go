// file: internals/features/finance/payments/dto/payments_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "sekolahpay_backend/internals/features/finance/payments/model"
	"sekolahpay_backend/internals/features/finance/payments/service"
)

/* =========================================================
   Request DTOs
========================================================= */

type RegistrationRequest struct {
	StudentName  string         `json:"student_name" validate:"required,min=2,max=100"`
	StudentEmail string         `json:"student_email" validate:"required,email"`
	StudentPhone *string        `json:"student_phone" validate:"omitempty,min=8,max=20"`
	ClassID      uuid.UUID      `json:"class_id" validate:"required"`
	MonthlyIDR   int            `json:"monthly_idr" validate:"required,gt=0"`
	Payload      map[string]any `json:"payload"`
}

type CreatePaymentRequest struct {
	Kind        model.PaymentKind `json:"kind" validate:"required,oneof=enrollment tuition"`
	AmountIDR   int               `json:"amount_idr" validate:"required,gt=0"`
	PayerEmail  string            `json:"payer_email" validate:"omitempty,email"`
	Description string            `json:"description" validate:"omitempty,max=255"`
	Methods     []string          `json:"methods"`

	TuitionBillID *uuid.UUID           `json:"tuition_bill_id"`
	Registration  *RegistrationRequest `json:"registration"`
}

func (r *CreatePaymentRequest) ToInput() service.CreatePaymentInput {
	in := service.CreatePaymentInput{
		Kind:          r.Kind,
		AmountIDR:     r.AmountIDR,
		PayerEmail:    r.PayerEmail,
		Description:   r.Description,
		Methods:       r.Methods,
		TuitionBillID: r.TuitionBillID,
	}
	if r.Registration != nil {
		in.Registration = &service.RegistrationInput{
			StudentName:  r.Registration.StudentName,
			StudentEmail: r.Registration.StudentEmail,
			StudentPhone: r.Registration.StudentPhone,
			ClassID:      r.Registration.ClassID,
			MonthlyIDR:   r.Registration.MonthlyIDR,
			RawPayload:   r.Registration.Payload,
		}
	}
	return in
}

/* =========================================================
   Response DTOs
========================================================= */

type InvoiceRefResponse struct {
	ExternalID    string     `json:"external_id"`
	GatewayID     *string    `json:"gateway_id"`
	Provider      string     `json:"provider"`
	GatewayStatus *string    `json:"gateway_status"`
	PaymentURL    *string    `json:"payment_url"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Superseded    bool       `json:"superseded"`
}

type PaymentResponse struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	Kind          model.PaymentKind   `json:"kind"`
	Status        model.PaymentStatus `json:"status"`
	AmountIDR     int                 `json:"amount_idr"`
	Currency      string              `json:"currency"`
	TuitionBillID *uuid.UUID          `json:"tuition_bill_id,omitempty"`
	PayerEmail    *string             `json:"payer_email,omitempty"`
	Description   *string             `json:"description,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	ExpiredAt     *time.Time          `json:"expired_at,omitempty"`
	FailedAt      *time.Time          `json:"failed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`

	Invoice *InvoiceRefResponse `json:"invoice,omitempty"`
}

func FromModelInvoiceRef(ref *model.PaymentGatewayInvoice) *InvoiceRefResponse {
	if ref == nil {
		return nil
	}
	return &InvoiceRefResponse{
		ExternalID:    ref.PaymentGatewayInvoiceExternalID,
		GatewayID:     ref.PaymentGatewayInvoiceGatewayID,
		Provider:      string(ref.PaymentGatewayInvoiceProvider),
		GatewayStatus: ref.PaymentGatewayInvoiceGatewayStatus,
		PaymentURL:    ref.PaymentGatewayInvoicePaymentURL,
		ExpiresAt:     ref.PaymentGatewayInvoiceExpiresAt,
		Superseded:    ref.PaymentGatewayInvoiceSuperseded,
	}
}

func FromModelPayment(p *model.Payment, ref *model.PaymentGatewayInvoice) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		PaymentID:     p.PaymentID,
		Kind:          p.PaymentKind,
		Status:        p.PaymentStatus,
		AmountIDR:     p.PaymentAmountIDR,
		Currency:      p.PaymentCurrency,
		TuitionBillID: p.PaymentTuitionBillID,
		PayerEmail:    p.PaymentPayerEmail,
		Description:   p.PaymentDescription,
		PaidAt:        p.PaymentPaidAt,
		ExpiredAt:     p.PaymentExpiredAt,
		FailedAt:      p.PaymentFailedAt,
		CreatedAt:     p.PaymentCreatedAt,
		Invoice:       FromModelInvoiceRef(ref),
	}
}

type GatewayEventResponse struct {
	EventID      uuid.UUID  `json:"event_id"`
	PaymentID    *uuid.UUID `json:"payment_id"`
	Kind         string     `json:"kind"`
	Provider     string     `json:"provider"`
	ExternalID   *string    `json:"external_id"`
	GatewayID    *string    `json:"gateway_id"`
	NotifyStatus *string    `json:"notify_status"`
	Status       string     `json:"status"`
	Error        *string    `json:"error,omitempty"`
	TryCount     int        `json:"try_count"`
	ReceivedAt   time.Time  `json:"received_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
}

func FromModelGatewayEvent(ev *model.PaymentGatewayEvent) GatewayEventResponse {
	return GatewayEventResponse{
		EventID:      ev.GatewayEventID,
		PaymentID:    ev.GatewayEventPaymentID,
		Kind:         string(ev.GatewayEventKind),
		Provider:     ev.GatewayEventProvider,
		ExternalID:   ev.GatewayEventExternalID,
		GatewayID:    ev.GatewayEventGatewayID,
		NotifyStatus: ev.GatewayEventNotifyStatus,
		Status:       string(ev.GatewayEventStatus),
		Error:        ev.GatewayEventError,
		TryCount:     ev.GatewayEventTryCount,
		ReceivedAt:   ev.GatewayEventReceivedAt,
		ProcessedAt:  ev.GatewayEventProcessedAt,
	}
}
