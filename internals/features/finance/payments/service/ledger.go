// file: internals/features/finance/payments/service/ledger.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	gw "sekolahpay_backend/internals/features/finance/payments/gateway"
	model "sekolahpay_backend/internals/features/finance/payments/model"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
)

/* =========================================================
   State machine
   pending → paid | settled (terminal)
   pending → expired | failed → pending (via reissue)
========================================================= */

var allowedTransitions = map[model.PaymentStatus]map[model.PaymentStatus]bool{
	model.PaymentStatusPending: {
		model.PaymentStatusPaid:    true,
		model.PaymentStatusSettled: true,
		model.PaymentStatusExpired: true,
		model.PaymentStatusFailed:  true,
	},
	model.PaymentStatusExpired: {model.PaymentStatusPending: true},
	model.PaymentStatusFailed:  {model.PaymentStatusPending: true},
}

func CanTransition(from, to model.PaymentStatus) bool {
	return allowedTransitions[from][to]
}

// applyTransition memutasi struct payment in-memory; caller bertanggung
// jawab atas lock + save dalam transaksi yang sama.
func applyTransition(p *model.Payment, to model.PaymentStatus, now time.Time, paidAt *time.Time) error {
	if !CanTransition(p.PaymentStatus, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, p.PaymentStatus, to)
	}
	p.PaymentStatus = to
	switch to {
	case model.PaymentStatusPaid, model.PaymentStatusSettled:
		if paidAt != nil {
			p.PaymentPaidAt = paidAt
		} else if p.PaymentPaidAt == nil {
			p.PaymentPaidAt = &now
		}
	case model.PaymentStatusExpired:
		p.PaymentExpiredAt = &now
	case model.PaymentStatusFailed:
		p.PaymentFailedAt = &now
	case model.PaymentStatusPending:
		// reissue: timestamps status lama dibiarkan sebagai jejak
	}
	p.PaymentUpdatedAt = now
	return nil
}

/* =========================================================
   Ledger service
========================================================= */

type LedgerService struct {
	store           repo.Store
	gateway         gw.Adapter
	provider        model.PaymentGatewayProvider
	invoiceDuration time.Duration
}

func NewLedgerService(store repo.Store, adapter gw.Adapter, provider model.PaymentGatewayProvider, invoiceDuration time.Duration) *LedgerService {
	return &LedgerService{
		store:           store,
		gateway:         adapter,
		provider:        provider,
		invoiceDuration: invoiceDuration,
	}
}

type RegistrationInput struct {
	StudentName  string
	StudentEmail string
	StudentPhone *string
	ClassID      uuid.UUID
	MonthlyIDR   int
	RawPayload   map[string]any
}

type CreatePaymentInput struct {
	Kind        model.PaymentKind
	AmountIDR   int
	PayerEmail  string
	Description string
	Methods     []string

	// kind=tuition
	TuitionBillID *uuid.UUID
	// kind=enrollment
	Registration *RegistrationInput
}

type CreatePaymentResult struct {
	Payment *model.Payment
	Invoice *model.PaymentGatewayInvoice
}

// CreatePayment membuat payment pending + invoice gateway + ref aktif.
// Invoice dibuat ke gateway SEBELUM transaksi lokal — jangan pernah
// menahan transaksi DB melintasi network call yang lambat. Kalau tx lokal
// gagal setelah invoice jadi, notifikasinya akan berakhir UNMATCHED dan
// masuk jalur rekonsiliasi manual.
func (s *LedgerService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	if in.AmountIDR <= 0 {
		return nil, fmt.Errorf("invalid amount: %d", in.AmountIDR)
	}
	if in.Kind == model.PaymentKindEnrollment && in.Registration == nil {
		return nil, fmt.Errorf("registration payload is required for enrollment payment")
	}
	if in.Kind == model.PaymentKindTuition && in.TuitionBillID == nil {
		return nil, fmt.Errorf("tuition_bill_id is required for tuition payment")
	}

	externalID := GenOrderID(orderPrefix(in.Kind))

	inv, err := s.gateway.CreateInvoice(ctx, gw.CreateInvoiceInput{
		ExternalID:  externalID,
		AmountIDR:   in.AmountIDR,
		PayerEmail:  in.PayerEmail,
		Description: in.Description,
		Methods:     in.Methods,
		Duration:    s.invoiceDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway create invoice: %w", err)
	}

	now := time.Now()
	p := &model.Payment{
		PaymentKind:          in.Kind,
		PaymentStatus:        model.PaymentStatusPending,
		PaymentAmountIDR:     in.AmountIDR,
		PaymentCurrency:      "IDR",
		PaymentTuitionBillID: in.TuitionBillID,
		PaymentPayerEmail:    strPtrOrNil(in.PayerEmail),
		PaymentDescription:   strPtrOrNil(in.Description),
		PaymentCreatedAt:     now,
		PaymentUpdatedAt:     now,
	}
	ref := &model.PaymentGatewayInvoice{
		PaymentGatewayInvoiceExternalID: externalID,
		PaymentGatewayInvoiceGatewayID:  strPtrOrNil(inv.GatewayInvoiceID),
		PaymentGatewayInvoiceProvider:   s.provider,
		PaymentGatewayInvoicePaymentURL: strPtrOrNil(inv.PaymentURL),
		PaymentGatewayInvoiceCreatedAt:  now,
		PaymentGatewayInvoiceUpdatedAt:  now,
	}
	if !inv.ExpiresAt.IsZero() {
		exp := inv.ExpiresAt
		ref.PaymentGatewayInvoiceExpiresAt = &exp
	}
	if inv.Status != "" {
		st := inv.Status
		ref.PaymentGatewayInvoiceGatewayStatus = &st
	}

	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		if p.PaymentID == uuid.Nil {
			p.PaymentID = uuid.New()
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}
		ref.PaymentGatewayInvoicePaymentID = p.PaymentID
		if err := tx.CreateInvoiceRef(ctx, ref); err != nil {
			return err
		}
		if in.Registration != nil {
			payload, _ := json.Marshal(in.Registration.RawPayload)
			reg := &model.PendingRegistration{
				PendingRegistrationPaymentID:    p.PaymentID,
				PendingRegistrationStudentName:  in.Registration.StudentName,
				PendingRegistrationStudentEmail: in.Registration.StudentEmail,
				PendingRegistrationStudentPhone: in.Registration.StudentPhone,
				PendingRegistrationClassID:      in.Registration.ClassID,
				PendingRegistrationMonthlyIDR:   in.Registration.MonthlyIDR,
				PendingRegistrationPayload:      datatypes.JSON(payload),
				PendingRegistrationCreatedAt:    now,
			}
			if err := tx.CreatePendingRegistration(ctx, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreatePaymentResult{Payment: p, Invoice: ref}, nil
}

// GetPayment mengambil satu payment; nil row → ErrNotFound.
func (s *LedgerService) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Transition menggerakkan ledger satu edge dengan row lock per payment.
// Edge ilegal → ErrInvalidTransition tanpa mengubah state tersimpan.
func (s *LedgerService) Transition(ctx context.Context, id uuid.UUID, to model.PaymentStatus, paidAt *time.Time) (*model.Payment, error) {
	var out *model.Payment
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		p, err := tx.GetPaymentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		if err := applyTransition(p, to, time.Now(), paidAt); err != nil {
			return err
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* =========================================================
   Expiry sweeper
========================================================= */

type SweepResult struct {
	ExpiredCount int
	Errors       []error
}

// SweepExpiredPayments menutup checkout pending yang ref aktifnya sudah
// lewat masa berlaku. Tiap payment independen: satu gagal masuk Errors,
// batch jalan terus.
func (s *LedgerService) SweepExpiredPayments(ctx context.Context, now time.Time) (SweepResult, error) {
	candidates, err := s.store.ListPendingExpiredBefore(ctx, now, 500)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	for _, cand := range candidates {
		gatewayID, err := s.expireOne(ctx, cand.PaymentID, now)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("payment %s: %w", cand.PaymentID, err))
			continue
		}
		if gatewayID == "" {
			continue // sudah tertutup oleh proses lain; no-op
		}
		res.ExpiredCount++

		// Best effort: tutup juga invoice di sisi gateway, di luar tx.
		if _, gerr := s.gateway.ExpireInvoice(ctx, gatewayID); gerr != nil {
			log.Printf("[SWEEPER] gagal expire invoice %s di gateway: %v", gatewayID, gerr)
		}
	}
	return res, nil
}

// expireOne mengembalikan gateway invoice id ketika transisi benar terjadi,
// string kosong ketika payment ternyata sudah bukan pending lagi.
func (s *LedgerService) expireOne(ctx context.Context, id uuid.UUID, now time.Time) (string, error) {
	var gatewayID string
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		p, err := tx.GetPaymentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		if p.PaymentStatus != model.PaymentStatusPending {
			return nil // race dengan webhook/reissue; biarkan
		}
		ref, err := tx.ActiveInvoiceRef(ctx, p.PaymentID)
		if err != nil {
			return err
		}
		// re-check di dalam lock; kandidat bisa basi
		if ref == nil || ref.PaymentGatewayInvoiceExpiresAt == nil || !ref.PaymentGatewayInvoiceExpiresAt.Before(now) {
			return nil
		}
		if err := applyTransition(p, model.PaymentStatusExpired, now, nil); err != nil {
			return err
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		st := gw.InvoiceStatusExpired
		ref.PaymentGatewayInvoiceGatewayStatus = &st
		if err := tx.SaveInvoiceRef(ctx, ref); err != nil {
			return err
		}
		if ref.PaymentGatewayInvoiceGatewayID != nil {
			gatewayID = *ref.PaymentGatewayInvoiceGatewayID
		}
		return nil
	})
	return gatewayID, err
}

/* =========================================================
   Retry / reissue
========================================================= */

// Reissue menerbitkan invoice gateway baru untuk payment yang mati
// (expired/failed): external id baru, ref lama ditandai superseded,
// ledger kembali pending. Identitas payment dipertahankan.
func (s *LedgerService) Reissue(ctx context.Context, id uuid.UUID) (*model.PaymentGatewayInvoice, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.PaymentStatus != model.PaymentStatusExpired && p.PaymentStatus != model.PaymentStatusFailed {
		return nil, fmt.Errorf("%w: status %s", ErrInvalidState, p.PaymentStatus)
	}

	externalID := GenOrderID(orderPrefix(p.PaymentKind))
	inv, err := s.gateway.CreateInvoice(ctx, gw.CreateInvoiceInput{
		ExternalID:  externalID,
		AmountIDR:   p.PaymentAmountIDR,
		PayerEmail:  strOrEmpty(p.PaymentPayerEmail),
		Description: strOrEmpty(p.PaymentDescription),
		Duration:    s.invoiceDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway create invoice: %w", err)
	}

	now := time.Now()
	newRef := &model.PaymentGatewayInvoice{
		PaymentGatewayInvoicePaymentID:  p.PaymentID,
		PaymentGatewayInvoiceExternalID: externalID,
		PaymentGatewayInvoiceGatewayID:  strPtrOrNil(inv.GatewayInvoiceID),
		PaymentGatewayInvoiceProvider:   s.provider,
		PaymentGatewayInvoicePaymentURL: strPtrOrNil(inv.PaymentURL),
		PaymentGatewayInvoiceCreatedAt:  now,
		PaymentGatewayInvoiceUpdatedAt:  now,
	}
	if !inv.ExpiresAt.IsZero() {
		exp := inv.ExpiresAt
		newRef.PaymentGatewayInvoiceExpiresAt = &exp
	}
	if inv.Status != "" {
		st := inv.Status
		newRef.PaymentGatewayInvoiceGatewayStatus = &st
	}

	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		pp, err := tx.GetPaymentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if pp == nil {
			return ErrNotFound
		}
		// re-check di dalam lock; webhook bisa menyalip
		if pp.PaymentStatus != model.PaymentStatusExpired && pp.PaymentStatus != model.PaymentStatusFailed {
			return fmt.Errorf("%w: status %s", ErrInvalidState, pp.PaymentStatus)
		}
		old, err := tx.ActiveInvoiceRef(ctx, pp.PaymentID)
		if err != nil {
			return err
		}
		if old != nil {
			old.PaymentGatewayInvoiceSuperseded = true
			if err := tx.SaveInvoiceRef(ctx, old); err != nil {
				return err
			}
		}
		if err := tx.CreateInvoiceRef(ctx, newRef); err != nil {
			return err
		}
		if err := applyTransition(pp, model.PaymentStatusPending, now, nil); err != nil {
			return err
		}
		return tx.SavePayment(ctx, pp)
	})
	if err != nil {
		return nil, err
	}
	return newRef, nil
}

/* =========================================================
   Utils
========================================================= */

// GenOrderID membuat external id / order id dengan prefix tertentu.
func GenOrderID(prefix string) string {
	now := time.Now().In(time.Local).Format("20060102-150405")
	u := uuid.New().String()
	if len(u) > 8 {
		u = u[:8]
	}
	return prefix + "-" + now + "-" + strings.ToUpper(u)
}

func orderPrefix(kind model.PaymentKind) string {
	if kind == model.PaymentKindTuition {
		return "SPP"
	}
	return "REG"
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
