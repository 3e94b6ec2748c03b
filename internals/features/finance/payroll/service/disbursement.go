// file: internals/features/finance/payroll/service/disbursement.go
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
	paymodel "sekolahpay_backend/internals/features/finance/payments/model"
	paysvc "sekolahpay_backend/internals/features/finance/payments/service"
	model "sekolahpay_backend/internals/features/finance/payroll/model"
	repo "sekolahpay_backend/internals/features/finance/payroll/repository"
)

/* =========================================================
   Disbursement flow (payout gaji)
   pending → processing → completed | failed
========================================================= */

var allowedDisbursementTransitions = map[model.DisbursementStatus]map[model.DisbursementStatus]bool{
	model.DisbursementStatusPending: {
		model.DisbursementStatusProcessing: true,
		model.DisbursementStatusCompleted:  true,
		model.DisbursementStatusFailed:     true,
	},
	model.DisbursementStatusProcessing: {
		model.DisbursementStatusCompleted: true,
		model.DisbursementStatusFailed:    true,
	},
}

func CanTransition(from, to model.DisbursementStatus) bool {
	return allowedDisbursementTransitions[from][to]
}

func applyDisbursementTransition(d *model.Disbursement, to model.DisbursementStatus, now time.Time) error {
	if !CanTransition(d.DisbursementStatus, to) {
		return fmt.Errorf("%w: %s → %s", paysvc.ErrInvalidTransition, d.DisbursementStatus, to)
	}
	d.DisbursementStatus = to
	switch to {
	case model.DisbursementStatusCompleted:
		d.DisbursementCompletedAt = &now
	case model.DisbursementStatusFailed:
		d.DisbursementFailedAt = &now
	}
	d.DisbursementUpdatedAt = now
	return nil
}

// mapGatewayDisbursementStatus: vocab gateway → status disbursement.
func mapGatewayDisbursementStatus(s string) (model.DisbursementStatus, bool) {
	switch s {
	case gw.DisbursementStatusCompleted:
		return model.DisbursementStatusCompleted, true
	case gw.DisbursementStatusFailed:
		return model.DisbursementStatusFailed, true
	}
	return "", false
}

// EventLog adalah irisan sempit dari store payments: callback log
// disbursement ditulis ke payment_gateway_events yang sama
// (kind=disbursement) supaya audit trail gateway satu pintu.
type EventLog interface {
	AppendGatewayEvent(ctx context.Context, ev *paymodel.PaymentGatewayEvent) error
	SaveGatewayEvent(ctx context.Context, ev *paymodel.PaymentGatewayEvent) error
}

type DisbursementService struct {
	store         repo.Store
	gateway       gw.Adapter
	provider      paymodel.PaymentGatewayProvider
	events        EventLog
	callbackToken string
}

func NewDisbursementService(store repo.Store, adapter gw.Adapter, provider paymodel.PaymentGatewayProvider, events EventLog, callbackToken string) *DisbursementService {
	return &DisbursementService{
		store:         store,
		gateway:       adapter,
		provider:      provider,
		events:        events,
		callbackToken: callbackToken,
	}
}

/* =========================================================
   Batch creation
========================================================= */

type BatchItemError struct {
	PayrollID uuid.UUID `json:"payroll_id"`
	Message   string    `json:"message"`
}

type BatchResult struct {
	CreatedCount int
	Failed       []BatchItemError
}

// CreateBatch membuat satu disbursement gateway per payroll approved
// yang belum punya payout hidup. Tiap payroll independen: kegagalan satu
// item dicatat sebagai row failed (bisa dicoba ulang di batch berikut)
// dan tidak menghentikan sisanya.
func (s *DisbursementService) CreateBatch(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		limit = 100
	}
	payrolls, err := s.store.ListDisbursablePayrolls(ctx, limit)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for i := range payrolls {
		p := &payrolls[i]
		if err := s.disburseOne(ctx, p); err != nil {
			log.Printf("[DISBURSEMENT] payroll %s gagal: %v", p.PayrollID, err)
			res.Failed = append(res.Failed, BatchItemError{PayrollID: p.PayrollID, Message: err.Error()})
			continue
		}
		res.CreatedCount++
	}
	return res, nil
}

// disburseOne: row pending dulu (durable), lalu request ke gateway di
// luar transaksi. Sukses → processing + gateway id; error gateway →
// failed + pesan. Timeout berarti outcome unknown: row dibiarkan
// pending dan diselesaikan oleh callback/rekonsiliasi, bukan retry buta.
func (s *DisbursementService) disburseOne(ctx context.Context, p *model.Payroll) error {
	now := time.Now()
	d := &model.Disbursement{
		DisbursementID:                uuid.New(),
		DisbursementPayrollID:         p.PayrollID,
		DisbursementExternalID:        paysvc.GenOrderID("DSB"),
		DisbursementAmountIDR:         p.PayrollAmountIDR,
		DisbursementBankCode:          p.PayrollBankCode,
		DisbursementAccountNumber:     p.PayrollAccountNumber,
		DisbursementAccountHolderName: p.PayrollAccountHolderName,
		DisbursementStatus:            model.DisbursementStatusPending,
		DisbursementCreatedAt:         now,
		DisbursementUpdatedAt:         now,
	}
	if err := s.store.CreateDisbursement(ctx, d); err != nil {
		return err
	}

	out, gerr := s.gateway.CreateDisbursement(ctx, gw.CreateDisbursementInput{
		ExternalID:        d.DisbursementExternalID,
		AmountIDR:         d.DisbursementAmountIDR,
		BankCode:          d.DisbursementBankCode,
		AccountNumber:     d.DisbursementAccountNumber,
		AccountHolderName: d.DisbursementAccountHolderName,
		Description:       fmt.Sprintf("Gaji %s periode %s", p.PayrollTeacherName, p.PayrollPeriod),
	})
	if gerr != nil {
		if ctx.Err() != nil {
			return gerr // outcome unknown, row tetap pending
		}
		msg := gerr.Error()
		d.DisbursementError = &msg
		_ = applyDisbursementTransition(d, model.DisbursementStatusFailed, time.Now())
		if err := s.store.SaveDisbursement(ctx, d); err != nil {
			return err
		}
		return gerr
	}

	if out.GatewayDisbursementID != "" {
		gid := out.GatewayDisbursementID
		d.DisbursementGatewayID = &gid
	}
	target := model.DisbursementStatusProcessing
	if st, ok := mapGatewayDisbursementStatus(out.Status); ok {
		target = st
	}
	if err := applyDisbursementTransition(d, target, time.Now()); err != nil {
		return err
	}
	return s.store.SaveDisbursement(ctx, d)
}

/* =========================================================
   Callback
========================================================= */

type disbursementNotification struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

type CallbackResult struct {
	Outcome        paysvc.Outcome
	DisbursementID *uuid.UUID
	NewStatus      model.DisbursementStatus
	Message        string
}

// ProcessCallback menjalankan pipeline yang sama dengan webhook invoice:
// token auth constant-time, log-first, dedup status, transisi ber-lock.
// Semua outcome taksonomi di-ack; hanya error infrastruktur yang naik.
func (s *DisbursementService) ProcessCallback(ctx context.Context, token string, rawBody []byte) (*CallbackResult, error) {
	if s.callbackToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.callbackToken)) != 1 {
		return nil, paysvc.ErrUnauthorized
	}

	var n disbursementNotification
	parseErr := json.Unmarshal(rawBody, &n)

	var d *model.Disbursement
	var err error
	if parseErr == nil && n.ID != "" {
		d, err = s.store.FindDisbursementByGatewayID(ctx, n.ID)
		if err != nil {
			return nil, err
		}
	}
	if d == nil && parseErr == nil && n.ExternalID != "" {
		d, err = s.store.FindDisbursementByExternalID(ctx, n.ExternalID)
		if err != nil {
			return nil, err
		}
	}

	ev := s.newEvent(n, rawBody)
	if d == nil {
		ev.GatewayEventStatus = paymodel.GatewayEventUnmatched
		if err := s.events.AppendGatewayEvent(ctx, ev); err != nil {
			return nil, err
		}
		log.Printf("[DISBURSEMENT] unmatched callback: gateway_id=%s external_id=%s", n.ID, n.ExternalID)
		return &CallbackResult{Outcome: paysvc.OutcomeUnmatched, Message: "disbursement not found"}, nil
	}
	if err := s.events.AppendGatewayEvent(ctx, ev); err != nil {
		return nil, err
	}

	target, mapped := mapGatewayDisbursementStatus(n.Status)
	if !mapped {
		return s.finishEvent(ctx, ev, paymodel.GatewayEventNoop, paysvc.OutcomeNoop, d, "status not actionable")
	}
	if d.DisbursementStatus == target {
		return s.finishEvent(ctx, ev, paymodel.GatewayEventNoop, paysvc.OutcomeNoop, d, "duplicate delivery")
	}

	txErr := s.store.WithTx(ctx, func(tx repo.Store) error {
		dd, err := tx.GetDisbursementForUpdate(ctx, d.DisbursementID)
		if err != nil {
			return err
		}
		if dd == nil {
			return fmt.Errorf("%w: %s", paysvc.ErrNotFound, d.DisbursementID)
		}
		if dd.DisbursementStatus == target {
			d = dd
			return nil // disalip delivery lain; no-op
		}
		if err := applyDisbursementTransition(dd, target, time.Now()); err != nil {
			return err
		}
		if err := tx.SaveDisbursement(ctx, dd); err != nil {
			return err
		}
		if target == model.DisbursementStatusCompleted {
			p, err := tx.GetPayroll(ctx, dd.DisbursementPayrollID)
			if err != nil {
				return err
			}
			if p != nil && p.PayrollStatus != model.PayrollStatusPaidOut {
				p.PayrollStatus = model.PayrollStatusPaidOut
				if err := tx.SavePayroll(ctx, p); err != nil {
					return err
				}
			}
		}
		d = dd
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, paysvc.ErrInvalidTransition) {
			log.Printf("[DISBURSEMENT] invalid transition untuk disbursement %s: %v", d.DisbursementID, txErr)
			return s.finishEvent(ctx, ev, paymodel.GatewayEventInvalidTransition, paysvc.OutcomeInvalidTransition, d, txErr.Error())
		}
		return nil, txErr
	}

	return s.finishEvent(ctx, ev, paymodel.GatewayEventProcessed, paysvc.OutcomeApplied, d, "")
}

func (s *DisbursementService) newEvent(n disbursementNotification, rawBody []byte) *paymodel.PaymentGatewayEvent {
	ev := &paymodel.PaymentGatewayEvent{
		GatewayEventID:         uuid.New(),
		GatewayEventKind:       paymodel.GatewayEventKindDisbursement,
		GatewayEventProvider:   string(s.provider),
		GatewayEventPayload:    datatypes.JSON(rawBody),
		GatewayEventStatus:     paymodel.GatewayEventReceived,
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

func (s *DisbursementService) finishEvent(ctx context.Context, ev *paymodel.PaymentGatewayEvent, st paymodel.GatewayEventStatus, outcome paysvc.Outcome, d *model.Disbursement, msg string) (*CallbackResult, error) {
	now := time.Now()
	ev.GatewayEventStatus = st
	ev.GatewayEventProcessedAt = &now
	if msg != "" {
		m := msg
		ev.GatewayEventError = &m
	}
	if err := s.events.SaveGatewayEvent(ctx, ev); err != nil {
		return nil, err
	}
	res := &CallbackResult{Outcome: outcome, Message: msg}
	if d != nil {
		id := d.DisbursementID
		res.DisbursementID = &id
		res.NewStatus = d.DisbursementStatus
	}
	return res, nil
}
