// file: internals/features/finance/payments/service/ledger_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "sekolahpay_backend/internals/features/finance/payments/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.PaymentStatus
		want     bool
	}{
		{model.PaymentStatusPending, model.PaymentStatusPaid, true},
		{model.PaymentStatusPending, model.PaymentStatusSettled, true},
		{model.PaymentStatusPending, model.PaymentStatusExpired, true},
		{model.PaymentStatusPending, model.PaymentStatusFailed, true},
		{model.PaymentStatusExpired, model.PaymentStatusPending, true},
		{model.PaymentStatusFailed, model.PaymentStatusPending, true},

		{model.PaymentStatusPaid, model.PaymentStatusExpired, false},
		{model.PaymentStatusPaid, model.PaymentStatusPending, false},
		{model.PaymentStatusPaid, model.PaymentStatusPaid, false},
		{model.PaymentStatusSettled, model.PaymentStatusPending, false},
		{model.PaymentStatusExpired, model.PaymentStatusPaid, false},
		{model.PaymentStatusFailed, model.PaymentStatusExpired, false},
		{model.PaymentStatusPending, model.PaymentStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestApplyTransitionSetsTimestamps(t *testing.T) {
	now := time.Now()
	paidAt := now.Add(-5 * time.Minute)

	p := &model.Payment{PaymentStatus: model.PaymentStatusPending}
	require.NoError(t, applyTransition(p, model.PaymentStatusPaid, now, &paidAt))
	assert.Equal(t, model.PaymentStatusPaid, p.PaymentStatus)
	require.NotNil(t, p.PaymentPaidAt)
	assert.True(t, p.PaymentPaidAt.Equal(paidAt), "paid_at dari gateway harus dipakai")

	p = &model.Payment{PaymentStatus: model.PaymentStatusPending}
	require.NoError(t, applyTransition(p, model.PaymentStatusExpired, now, nil))
	require.NotNil(t, p.PaymentExpiredAt)

	// edge ilegal: state tidak berubah
	err := applyTransition(p, model.PaymentStatusPaid, now, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.PaymentStatusExpired, p.PaymentStatus)
}

func TestCreatePaymentEnrollment(t *testing.T) {
	store := newFakeStore()
	gwf := newFakeGateway()
	svc := NewLedgerService(store, gwf, model.GatewayProviderXendit, 24*time.Hour)

	res, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		Kind:       model.PaymentKindEnrollment,
		AmountIDR:  500_000,
		PayerEmail: "wali@example.com",
		Registration: &RegistrationInput{
			StudentName:  "Budi",
			StudentEmail: "budi@example.com",
			ClassID:      uuid.New(),
			MonthlyIDR:   150_000,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Payment)
	assert.Equal(t, model.PaymentStatusPending, res.Payment.PaymentStatus)
	assert.Equal(t, 1, gwf.createInvoiceCalls)

	ref, err := store.ActiveInvoiceRef(context.Background(), res.Payment.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.False(t, ref.PaymentGatewayInvoiceSuperseded)
	require.NotNil(t, ref.PaymentGatewayInvoiceGatewayID)

	reg, err := store.GetPendingRegistration(context.Background(), res.Payment.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, reg, "data registrasi harus di-hold sampai payment confirmed")
	assert.Equal(t, "Budi", reg.PendingRegistrationStudentName)

	// belum ada entitas permanen sebelum paid
	en, err := store.FindEnrollmentByPaymentID(context.Background(), res.Payment.PaymentID)
	require.NoError(t, err)
	assert.Nil(t, en)
}

func TestCreatePaymentValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, newFakeGateway(), model.GatewayProviderXendit, 24*time.Hour)

	_, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		Kind: model.PaymentKindEnrollment, AmountIDR: 0,
	})
	assert.Error(t, err, "amount nol harus ditolak")

	_, err = svc.CreatePayment(context.Background(), CreatePaymentInput{
		Kind: model.PaymentKindEnrollment, AmountIDR: 100_000,
	})
	assert.Error(t, err, "enrollment tanpa data registrasi harus ditolak")

	_, err = svc.CreatePayment(context.Background(), CreatePaymentInput{
		Kind: model.PaymentKindTuition, AmountIDR: 100_000,
	})
	assert.Error(t, err, "tuition tanpa target bill harus ditolak")
}

func TestReissue(t *testing.T) {
	store := newFakeStore()
	gwf := newFakeGateway()
	svc := NewLedgerService(store, gwf, model.GatewayProviderXendit, 24*time.Hour)

	res, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		Kind:          model.PaymentKindTuition,
		AmountIDR:     150_000,
		TuitionBillID: ptrUUID(uuid.New()),
	})
	require.NoError(t, err)
	id := res.Payment.PaymentID
	oldExternal := res.Invoice.PaymentGatewayInvoiceExternalID

	// pending tidak boleh di-reissue
	_, err = svc.Reissue(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Transition(context.Background(), id, model.PaymentStatusExpired, nil)
	require.NoError(t, err)

	newRef, err := svc.Reissue(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, oldExternal, newRef.PaymentGatewayInvoiceExternalID, "reissue harus pakai external id baru")
	assert.False(t, newRef.PaymentGatewayInvoiceSuperseded)

	p, err := svc.GetPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, p.PaymentStatus, "identitas payment dipertahankan, status kembali pending")

	// ref lama superseded, ref aktif = yang baru
	active, err := store.ActiveInvoiceRef(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, newRef.PaymentGatewayInvoiceExternalID, active.PaymentGatewayInvoiceExternalID)
}

func TestReissueNotFound(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), newFakeGateway(), model.GatewayProviderXendit, 24*time.Hour)
	_, err := svc.Reissue(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpiredPayments(t *testing.T) {
	store := newFakeStore()
	gwf := newFakeGateway()
	gwf.expiresAt = time.Now().Add(-time.Hour) // invoice langsung lewat masa berlaku
	svc := NewLedgerService(store, gwf, model.GatewayProviderXendit, 24*time.Hour)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		res, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
			Kind:          model.PaymentKindTuition,
			AmountIDR:     150_000,
			TuitionBillID: ptrUUID(uuid.New()),
		})
		require.NoError(t, err)
		ids = append(ids, res.Payment.PaymentID)
	}

	// satu di antaranya keburu dibayar
	_, err := svc.Transition(context.Background(), ids[0], model.PaymentStatusPaid, nil)
	require.NoError(t, err)

	res, err := svc.SweepExpiredPayments(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExpiredCount)
	assert.Empty(t, res.Errors)
	assert.Len(t, gwf.expireInvoiceCalls, 2, "invoice gateway ikut ditutup best-effort")

	for _, id := range ids[1:] {
		p, err := svc.GetPayment(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusExpired, p.PaymentStatus)
	}
	p0, err := svc.GetPayment(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, p0.PaymentStatus, "payment paid tidak boleh tersapu")

	// sweep kedua konvergen: tidak ada kerja tersisa
	res2, err := svc.SweepExpiredPayments(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res2.ExpiredCount)
}

func TestGenOrderID(t *testing.T) {
	a := GenOrderID("REG")
	b := GenOrderID("REG")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "REG-")
}

func ptrUUID(u uuid.UUID) *uuid.UUID { return &u }
