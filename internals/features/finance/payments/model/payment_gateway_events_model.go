// file: internals/features/finance/payments/model/payment_gateway_events_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
  payment_gateway_events = LOG WEBHOOK / CALLBACK PAYMENT GATEWAY
  - Append-only: satu row per notifikasi yang diterima, tidak pernah di-update
    payload-nya (hanya status processing internal).
  - Jadi tulang punggung idempotensi + audit, dan sekaligus antrian retry
    downstream (status failed_downstream + try_count).
*/

type GatewayEventStatus string

const (
	GatewayEventReceived          GatewayEventStatus = "received"
	GatewayEventProcessed         GatewayEventStatus = "processed"
	GatewayEventNoop              GatewayEventStatus = "noop"
	GatewayEventUnmatched         GatewayEventStatus = "unmatched"
	GatewayEventInvalidTransition GatewayEventStatus = "invalid_transition"
	GatewayEventFailedDownstream  GatewayEventStatus = "failed_downstream"
	GatewayEventDeadLetter        GatewayEventStatus = "dead_letter"
)

type GatewayEventKind string

const (
	GatewayEventKindInvoice      GatewayEventKind = "invoice"
	GatewayEventKindDisbursement GatewayEventKind = "disbursement"
)

type PaymentGatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventPaymentID *uuid.UUID `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id"`

	// Identitas event
	GatewayEventKind       GatewayEventKind `gorm:"column:gateway_event_kind;type:gateway_event_kind;not null;default:'invoice'" json:"gateway_event_kind"`
	GatewayEventProvider   string           `gorm:"column:gateway_event_provider;type:text;not null" json:"gateway_event_provider"`
	GatewayEventExternalID *string          `gorm:"column:gateway_event_external_id;type:text" json:"gateway_event_external_id"`
	GatewayEventGatewayID  *string          `gorm:"column:gateway_event_gateway_id;type:text" json:"gateway_event_gateway_id"`

	// Raw data (buat debug / replay)
	GatewayEventPayload      datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload"`
	GatewayEventNotifyStatus *string        `gorm:"column:gateway_event_notify_status;type:text" json:"gateway_event_notify_status"`

	// Status processing internal
	GatewayEventStatus   GatewayEventStatus `gorm:"column:gateway_event_status;type:gateway_event_status;not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError    *string            `gorm:"column:gateway_event_error;type:text" json:"gateway_event_error"`
	GatewayEventTryCount int                `gorm:"column:gateway_event_try_count;not null;default:0" json:"gateway_event_try_count"`

	// Timestamps
	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;type:timestamptz;not null;default:now()" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at;type:timestamptz" json:"gateway_event_processed_at"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }
