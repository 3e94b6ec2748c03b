// file: internals/features/finance/payments/service/webhook.go
package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	gw "sekolahpay_backend/internals/features/finance/payments/gateway"
	model "sekolahpay_backend/internals/features/finance/payments/model"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
)

/* =========================================================
   Webhook Processor
   Menerima notifikasi invoice dari gateway, log-first, idempotent.
========================================================= */

// GatewayNotification = minimum payload yang kita baca dari body webhook.
// Field lain dari gateway tetap tersimpan utuh di callback log (raw payload).
type GatewayNotification struct {
	ID         string     `json:"id"`          // gateway invoice id
	ExternalID string     `json:"external_id"` // order id kita
	Status     string     `json:"status"`      // vocab gateway: PAID/SETTLED/EXPIRED/...
	PaidAt     *time.Time `json:"paid_at"`
}

type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeNoop              Outcome = "noop"
	OutcomeUnmatched         Outcome = "unmatched"
	OutcomeInvalidTransition Outcome = "invalid_transition"
	OutcomeDownstreamFailure Outcome = "downstream_failure"
)

type ProcessingResult struct {
	Outcome   Outcome
	PaymentID *uuid.UUID
	NewStatus model.PaymentStatus
	Message   string
}

// mapGatewayStatus: tabel tetap vocab gateway → status ledger.
// PENDING dan status asing lainnya tidak memicu transisi.
func mapGatewayStatus(s string) (model.PaymentStatus, bool) {
	switch s {
	case gw.InvoiceStatusPaid, gw.InvoiceStatusSettled:
		return model.PaymentStatusPaid, true
	case gw.InvoiceStatusExpired:
		return model.PaymentStatusExpired, true
	case gw.InvoiceStatusFailed:
		return model.PaymentStatusFailed, true
	}
	return "", false
}

type WebhookService struct {
	store         repo.Store
	registration  *RegistrationService
	callbackToken string
	provider      model.PaymentGatewayProvider
	maxTries      int
}

func NewWebhookService(store repo.Store, registration *RegistrationService, callbackToken string, provider model.PaymentGatewayProvider, maxTries int) *WebhookService {
	if maxTries <= 0 {
		maxTries = 5
	}
	return &WebhookService{
		store:         store,
		registration:  registration,
		callbackToken: callbackToken,
		provider:      provider,
		maxTries:      maxTries,
	}
}

// ProcessNotification menjalankan pipeline webhook:
//  1. auth token (constant-time); gagal → ErrUnauthorized, TANPA tulis log
//  2. resolve ref by gateway invoice id; tak ketemu → log UNMATCHED, ack
//  3. tulis row callback log SEBELUM mutasi apa pun
//  4. dedup: status target sama dengan yang sudah tercatat di ref → NoOp
//  5. transisi ledger dalam satu tx ber-lock per payment
//  6. downstream (promosi registrasi / tanda SPP paid) setelah commit;
//     gagal → failed_downstream, antri retry, tetap di-ack
//
// Error yang dikembalikan non-nil hanya untuk kegagalan infrastruktur
// (DB down, timeout) — gateway akan redeliver, dan idempotensi di atas
// membuat redelivery aman.
func (s *WebhookService) ProcessNotification(ctx context.Context, token string, rawBody []byte) (*ProcessingResult, error) {
	if s.callbackToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.callbackToken)) != 1 {
		return nil, ErrUnauthorized
	}

	var n GatewayNotification
	if err := json.Unmarshal(rawBody, &n); err != nil || n.ID == "" {
		// body tidak bisa dipetakan ke invoice mana pun; catat lalu ack
		ev := s.newEvent(nil, n, rawBody)
		ev.GatewayEventStatus = model.GatewayEventUnmatched
		if err := s.store.AppendGatewayEvent(ctx, ev); err != nil {
			return nil, err
		}
		return &ProcessingResult{Outcome: OutcomeUnmatched, Message: "unparseable notification"}, nil
	}

	ref, err := s.store.FindInvoiceRefByGatewayID(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		ev := s.newEvent(nil, n, rawBody)
		ev.GatewayEventStatus = model.GatewayEventUnmatched
		if err := s.store.AppendGatewayEvent(ctx, ev); err != nil {
			return nil, err
		}
		log.Printf("[WEBHOOK] unmatched notification: gateway_id=%s external_id=%s", n.ID, n.ExternalID)
		return &ProcessingResult{Outcome: OutcomeUnmatched, Message: "invoice reference not found"}, nil
	}

	ev := s.newEvent(&ref.PaymentGatewayInvoicePaymentID, n, rawBody)
	if err := s.store.AppendGatewayEvent(ctx, ev); err != nil {
		return nil, err
	}

	target, mapped := mapGatewayStatus(n.Status)

	// Dedup redelivery: status yang sudah tercatat di ref memetakan ke
	// target yang sama → tidak ada yang perlu dijalankan ulang.
	if rec := ref.PaymentGatewayInvoiceGatewayStatus; rec != nil {
		if *rec == n.Status {
			return s.finishEvent(ctx, ev, model.GatewayEventNoop, OutcomeNoop, ref, "duplicate delivery")
		}
		if recTarget, ok := mapGatewayStatus(*rec); ok && mapped && recTarget == target {
			return s.finishEvent(ctx, ev, model.GatewayEventNoop, OutcomeNoop, ref, "duplicate delivery")
		}
	}

	if !mapped {
		// PENDING dkk: catat status gateway terbaru, ledger tidak bergerak
		st := n.Status
		ref.PaymentGatewayInvoiceGatewayStatus = &st
		if err := s.store.SaveInvoiceRef(ctx, ref); err != nil {
			return nil, err
		}
		return s.finishEvent(ctx, ev, model.GatewayEventNoop, OutcomeNoop, ref, "status not actionable")
	}

	var p *model.Payment
	txErr := s.store.WithTx(ctx, func(tx repo.Store) error {
		pp, err := tx.GetPaymentForUpdate(ctx, ref.PaymentGatewayInvoicePaymentID)
		if err != nil {
			return err
		}
		if pp == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, ref.PaymentGatewayInvoicePaymentID)
		}
		if err := applyTransition(pp, target, time.Now(), n.PaidAt); err != nil {
			return err
		}
		st := n.Status
		ref.PaymentGatewayInvoiceGatewayStatus = &st
		if err := tx.SaveInvoiceRef(ctx, ref); err != nil {
			return err
		}
		if err := tx.SavePayment(ctx, pp); err != nil {
			return err
		}
		p = pp
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInvalidTransition) {
			log.Printf("[WEBHOOK] invalid transition untuk payment %s: %v", ref.PaymentGatewayInvoicePaymentID, txErr)
			return s.finishEvent(ctx, ev, model.GatewayEventInvalidTransition, OutcomeInvalidTransition, ref, txErr.Error())
		}
		return nil, txErr
	}

	if target == model.PaymentStatusPaid {
		if derr := s.runDownstream(ctx, p); derr != nil {
			log.Printf("[WEBHOOK][ERROR] downstream gagal untuk payment %s: %v", p.PaymentID, derr)
			ev.GatewayEventStatus = model.GatewayEventFailedDownstream
			ev.GatewayEventTryCount = 1
			msg := derr.Error()
			ev.GatewayEventError = &msg
			if err := s.store.SaveGatewayEvent(ctx, ev); err != nil {
				return nil, err
			}
			return &ProcessingResult{
				Outcome:   OutcomeDownstreamFailure,
				PaymentID: &p.PaymentID,
				NewStatus: p.PaymentStatus,
				Message:   "ledger updated, completion queued for retry",
			}, nil
		}
	}

	res, err := s.finishEvent(ctx, ev, model.GatewayEventProcessed, OutcomeApplied, ref, "")
	if err != nil {
		return nil, err
	}
	res.NewStatus = p.PaymentStatus
	return res, nil
}

// runDownstream menjalankan efek bisnis setelah ledger paid, per kind.
// Dua-duanya idempotent sehingga aman di-retry sampai sukses.
func (s *WebhookService) runDownstream(ctx context.Context, p *model.Payment) error {
	switch p.PaymentKind {
	case model.PaymentKindEnrollment:
		_, err := s.registration.CompleteRegistration(ctx, p.PaymentID)
		return err
	case model.PaymentKindTuition:
		return s.registration.MarkTuitionPaid(ctx, p)
	}
	return fmt.Errorf("unknown payment kind %q", p.PaymentKind)
}

// RetryFailedDownstream memproses ulang antrian failed_downstream.
// Event yang tembus batas percobaan dipindah ke dead_letter untuk
// ditangani operator.
func (s *WebhookService) RetryFailedDownstream(ctx context.Context, limit int) (int, error) {
	events, err := s.store.ListRetryableEvents(ctx, s.maxTries, limit)
	if err != nil {
		return 0, err
	}

	succeeded := 0
	for i := range events {
		ev := &events[i]
		if ev.GatewayEventPaymentID == nil {
			continue
		}
		p, err := s.store.GetPayment(ctx, *ev.GatewayEventPaymentID)
		if err != nil || p == nil {
			continue
		}

		if derr := s.runDownstream(ctx, p); derr != nil {
			ev.GatewayEventTryCount++
			msg := derr.Error()
			ev.GatewayEventError = &msg
			if ev.GatewayEventTryCount >= s.maxTries {
				ev.GatewayEventStatus = model.GatewayEventDeadLetter
				log.Printf("[WEBHOOK][ERROR] event %s masuk dead letter setelah %d percobaan: %v", ev.GatewayEventID, ev.GatewayEventTryCount, derr)
			}
			if err := s.store.SaveGatewayEvent(ctx, ev); err != nil {
				return succeeded, err
			}
			continue
		}

		now := time.Now()
		ev.GatewayEventStatus = model.GatewayEventProcessed
		ev.GatewayEventProcessedAt = &now
		ev.GatewayEventError = nil
		if err := s.store.SaveGatewayEvent(ctx, ev); err != nil {
			return succeeded, err
		}
		succeeded++
	}
	return succeeded, nil
}

func (s *WebhookService) newEvent(paymentID *uuid.UUID, n GatewayNotification, rawBody []byte) *model.PaymentGatewayEvent {
	ev := &model.PaymentGatewayEvent{
		GatewayEventID:         uuid.New(),
		GatewayEventPaymentID:  paymentID,
		GatewayEventKind:       model.GatewayEventKindInvoice,
		GatewayEventProvider:   string(s.provider),
		GatewayEventPayload:    datatypes.JSON(rawBody),
		GatewayEventStatus:     model.GatewayEventReceived,
		GatewayEventReceivedAt: time.Now(),
	}
	if n.ExternalID != "" {
		ex := n.ExternalID
		ev.GatewayEventExternalID = &ex
	}
	if n.ID != "" {
		gid := n.ID
		ev.GatewayEventGatewayID = &gid
	}
	if n.Status != "" {
		st := n.Status
		ev.GatewayEventNotifyStatus = &st
	}
	return ev
}

func (s *WebhookService) finishEvent(ctx context.Context, ev *model.PaymentGatewayEvent, st model.GatewayEventStatus, outcome Outcome, ref *model.PaymentGatewayInvoice, msg string) (*ProcessingResult, error) {
	now := time.Now()
	ev.GatewayEventStatus = st
	ev.GatewayEventProcessedAt = &now
	if msg != "" {
		m := msg
		ev.GatewayEventError = &m
	}
	if err := s.store.SaveGatewayEvent(ctx, ev); err != nil {
		return nil, err
	}
	res := &ProcessingResult{Outcome: outcome, Message: msg}
	if ref != nil {
		pid := ref.PaymentGatewayInvoicePaymentID
		res.PaymentID = &pid
	}
	return res, nil
}
