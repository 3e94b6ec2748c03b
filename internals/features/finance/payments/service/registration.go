// file: internals/features/finance/payments/service/registration.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	model "sekolahpay_backend/internals/features/finance/payments/model"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
	studentmodel "sekolahpay_backend/internals/features/school/students/model"
)

/* =========================================================
   Deferred Registration Completion
   Promosi pending_registration → entitas permanen setelah
   payment pendaftaran confirmed.
========================================================= */

type RegistrationService struct {
	store        repo.Store
	periodsAhead int
}

func NewRegistrationService(store repo.Store, periodsAhead int) *RegistrationService {
	if periodsAhead <= 0 {
		periodsAhead = 1
	}
	return &RegistrationService{store: store, periodsAhead: periodsAhead}
}

// CompleteRegistration mempromosikan pending registration menjadi student +
// enrollment + N tagihan SPP pertama, lalu menghapus pending row — semuanya
// satu transaksi (partial completion tidak punya jalur self-heal).
//
// Idempotent: kalau enrollment untuk payment ini sudah ada, kembalikan saja.
// Ini lapis pertahanan kedua setelah dedup di webhook processor.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, paymentID uuid.UUID) (*studentmodel.StudentClassEnrollment, error) {
	if existing, err := s.store.FindEnrollmentByPaymentID(ctx, paymentID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	reg, err := s.store.GetPendingRegistration(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		// payment sudah paid, entitas permanen belum ada, pending row pun
		// hilang — ini kehilangan data, bukan race biasa.
		log.Printf("[REGISTRATION][FATAL] pending registration hilang untuk payment %s padahal enrollment belum dibuat", paymentID)
		return nil, fmt.Errorf("%w: payment %s", ErrRegistrationDataMissing, paymentID)
	}

	now := time.Now()
	var enrollment *studentmodel.StudentClassEnrollment

	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		student := &studentmodel.SchoolStudent{
			SchoolStudentID:        uuid.New(),
			SchoolStudentName:      reg.PendingRegistrationStudentName,
			SchoolStudentEmail:     reg.PendingRegistrationStudentEmail,
			SchoolStudentPhone:     reg.PendingRegistrationStudentPhone,
			SchoolStudentCode:      generateStudentCode(now),
			SchoolStudentStatus:    "active",
			SchoolStudentCreatedAt: now,
			SchoolStudentUpdatedAt: now,
		}
		if err := tx.CreateStudent(ctx, student); err != nil {
			return err
		}

		en := &studentmodel.StudentClassEnrollment{
			StudentClassEnrollmentID:         uuid.New(),
			StudentClassEnrollmentStudentID:  student.SchoolStudentID,
			StudentClassEnrollmentClassID:    reg.PendingRegistrationClassID,
			StudentClassEnrollmentPaymentID:  paymentID,
			StudentClassEnrollmentStatus:     "active",
			StudentClassEnrollmentEnrolledAt: now,
			StudentClassEnrollmentCreatedAt:  now,
			StudentClassEnrollmentUpdatedAt:  now,
		}
		if err := tx.CreateEnrollment(ctx, en); err != nil {
			return err
		}

		period := firstOfMonth(now)
		for i := 0; i < s.periodsAhead; i++ {
			bill := &studentmodel.TuitionBill{
				TuitionBillID:           uuid.New(),
				TuitionBillEnrollmentID: en.StudentClassEnrollmentID,
				TuitionBillPeriod:       period.AddDate(0, i, 0),
				TuitionBillAmountIDR:    reg.PendingRegistrationMonthlyIDR,
				TuitionBillStatus:       studentmodel.TuitionBillUnpaid,
				TuitionBillCreatedAt:    now,
				TuitionBillUpdatedAt:    now,
			}
			if err := tx.CreateTuitionBill(ctx, bill); err != nil {
				return err
			}
		}

		if err := tx.DeletePendingRegistration(ctx, paymentID); err != nil {
			return err
		}
		enrollment = en
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// MarkTuitionPaid menandai bill SPP target payment ini sebagai paid.
// Idempotent: bill yang sudah paid dibiarkan apa adanya.
func (s *RegistrationService) MarkTuitionPaid(ctx context.Context, p *model.Payment) error {
	if p.PaymentTuitionBillID == nil {
		return fmt.Errorf("tuition payment %s tidak punya target bill", p.PaymentID)
	}
	bill, err := s.store.GetTuitionBill(ctx, *p.PaymentTuitionBillID)
	if err != nil {
		return err
	}
	if bill == nil {
		log.Printf("[REGISTRATION][ERROR] tuition bill %s tidak ditemukan untuk payment %s", *p.PaymentTuitionBillID, p.PaymentID)
		return fmt.Errorf("tuition bill %s not found", *p.PaymentTuitionBillID)
	}
	if bill.TuitionBillStatus == studentmodel.TuitionBillPaid {
		return nil
	}

	now := time.Now()
	paidAt := p.PaymentPaidAt
	if paidAt == nil {
		paidAt = &now
	}
	bill.TuitionBillStatus = studentmodel.TuitionBillPaid
	bill.TuitionBillPaidAt = paidAt
	bill.TuitionBillPaymentID = &p.PaymentID
	return s.store.SaveTuitionBill(ctx, bill)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func generateStudentCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%d%s", now.Year(), suffix)
}
