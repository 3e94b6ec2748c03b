// file: internals/features/finance/payments/service/registration_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "sekolahpay_backend/internals/features/finance/payments/model"
	studentmodel "sekolahpay_backend/internals/features/school/students/model"
)

func seedPendingRegistration(t *testing.T, store *fakeStore, paymentID uuid.UUID, monthly int) {
	t.Helper()
	require.NoError(t, store.CreatePendingRegistration(context.Background(), &model.PendingRegistration{
		PendingRegistrationID:           uuid.New(),
		PendingRegistrationPaymentID:    paymentID,
		PendingRegistrationStudentName:  "Andi",
		PendingRegistrationStudentEmail: "andi@example.com",
		PendingRegistrationClassID:      uuid.New(),
		PendingRegistrationMonthlyIDR:   monthly,
		PendingRegistrationCreatedAt:    time.Now(),
	}))
}

func TestCompleteRegistration(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, 3)
	paymentID := uuid.New()
	seedPendingRegistration(t, store, paymentID, 175_000)

	en, err := svc.CompleteRegistration(context.Background(), paymentID)
	require.NoError(t, err)
	require.NotNil(t, en)
	assert.Equal(t, paymentID, en.StudentClassEnrollmentPaymentID)

	assert.Len(t, store.students, 1)
	st := store.students[en.StudentClassEnrollmentStudentID]
	require.NotNil(t, st)
	assert.Equal(t, "Andi", st.SchoolStudentName)
	assert.NotEmpty(t, st.SchoolStudentCode)

	require.Len(t, store.tuitionBills, 3)
	thisMonth := firstOfMonth(time.Now())
	periods := map[time.Time]bool{}
	for _, b := range store.tuitionBills {
		assert.Equal(t, 175_000, b.TuitionBillAmountIDR)
		assert.Equal(t, studentmodel.TuitionBillUnpaid, b.TuitionBillStatus)
		periods[b.TuitionBillPeriod] = true
	}
	for i := 0; i < 3; i++ {
		assert.True(t, periods[thisMonth.AddDate(0, i, 0)], "periode bulan ke-%d harus ada", i)
	}

	reg, err := store.GetPendingRegistration(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestCompleteRegistrationIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, 3)
	paymentID := uuid.New()
	seedPendingRegistration(t, store, paymentID, 175_000)

	first, err := svc.CompleteRegistration(context.Background(), paymentID)
	require.NoError(t, err)

	second, err := svc.CompleteRegistration(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, first.StudentClassEnrollmentID, second.StudentClassEnrollmentID)
	assert.Len(t, store.students, 1)
	assert.Len(t, store.tuitionBills, 3)
}

func TestCompleteRegistrationMissingData(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, 3)

	_, err := svc.CompleteRegistration(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRegistrationDataMissing)
}

func TestMarkTuitionPaid(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, 3)

	bill := &studentmodel.TuitionBill{
		TuitionBillID:           uuid.New(),
		TuitionBillEnrollmentID: uuid.New(),
		TuitionBillPeriod:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local),
		TuitionBillAmountIDR:    150_000,
		TuitionBillStatus:       studentmodel.TuitionBillUnpaid,
	}
	require.NoError(t, store.CreateTuitionBill(context.Background(), bill))

	paidAt := time.Now().Add(-time.Hour)
	p := &model.Payment{
		PaymentID:            uuid.New(),
		PaymentKind:          model.PaymentKindTuition,
		PaymentStatus:        model.PaymentStatusPaid,
		PaymentTuitionBillID: &bill.TuitionBillID,
		PaymentPaidAt:        &paidAt,
	}

	require.NoError(t, svc.MarkTuitionPaid(context.Background(), p))

	got, err := store.GetTuitionBill(context.Background(), bill.TuitionBillID)
	require.NoError(t, err)
	assert.Equal(t, studentmodel.TuitionBillPaid, got.TuitionBillStatus)
	require.NotNil(t, got.TuitionBillPaidAt)
	assert.True(t, got.TuitionBillPaidAt.Equal(paidAt))

	// idempotent: paid_at tidak berubah saat dipanggil ulang
	later := time.Now()
	p.PaymentPaidAt = &later
	require.NoError(t, svc.MarkTuitionPaid(context.Background(), p))
	got2, err := store.GetTuitionBill(context.Background(), bill.TuitionBillID)
	require.NoError(t, err)
	assert.True(t, got2.TuitionBillPaidAt.Equal(paidAt))
}

func TestMarkTuitionPaidMissingBill(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, 3)

	missing := uuid.New()
	p := &model.Payment{
		PaymentID:            uuid.New(),
		PaymentKind:          model.PaymentKindTuition,
		PaymentTuitionBillID: &missing,
	}
	assert.Error(t, svc.MarkTuitionPaid(context.Background(), p))

	p.PaymentTuitionBillID = nil
	assert.Error(t, svc.MarkTuitionPaid(context.Background(), p))
}
