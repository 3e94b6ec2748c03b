// file: internals/features/finance/payments/service/store_fake_test.go
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	gw "sekolahpay_backend/internals/features/finance/payments/gateway"
	model "sekolahpay_backend/internals/features/finance/payments/model"
	repo "sekolahpay_backend/internals/features/finance/payments/repository"
	studentmodel "sekolahpay_backend/internals/features/school/students/model"
)

/* =========================================================
   fakeStore: repo.Store in-memory untuk unit test service.
   WithTx = eksekusi langsung (semantik commit/rollback parsial
   tidak disimulasikan; yang diuji logika service, bukan GORM).
========================================================= */

type fakeStore struct {
	mu sync.Mutex

	payments     map[uuid.UUID]*model.Payment
	invoiceRefs  []*model.PaymentGatewayInvoice
	events       []*model.PaymentGatewayEvent
	pendingRegs  map[uuid.UUID]*model.PendingRegistration
	students     map[uuid.UUID]*studentmodel.SchoolStudent
	enrollments  map[uuid.UUID]*studentmodel.StudentClassEnrollment // key: payment id
	tuitionBills map[uuid.UUID]*studentmodel.TuitionBill

	// error injection per method name
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments:     map[uuid.UUID]*model.Payment{},
		pendingRegs:  map[uuid.UUID]*model.PendingRegistration{},
		students:     map[uuid.UUID]*studentmodel.SchoolStudent{},
		enrollments:  map[uuid.UUID]*studentmodel.StudentClassEnrollment{},
		tuitionBills: map[uuid.UUID]*studentmodel.TuitionBill{},
		failOn:       map[string]error{},
	}
}

func (f *fakeStore) fail(method string) error { return f.failOn[method] }

func (f *fakeStore) WithTx(ctx context.Context, fn func(repo.Store) error) error {
	if err := f.fail("WithTx"); err != nil {
		return err
	}
	return fn(f)
}

func (f *fakeStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	cp := *p
	f.payments[p.PaymentID] = &cp
	return nil
}

func (f *fakeStore) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return f.GetPayment(ctx, id)
}

func (f *fakeStore) SavePayment(ctx context.Context, p *model.Payment) error {
	if err := f.fail("SavePayment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.PaymentID] = &cp
	return nil
}

func (f *fakeStore) ListPendingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Payment
	for _, p := range f.payments {
		if p.PaymentStatus != model.PaymentStatusPending {
			continue
		}
		for _, ref := range f.invoiceRefs {
			if ref.PaymentGatewayInvoicePaymentID == p.PaymentID &&
				!ref.PaymentGatewayInvoiceSuperseded &&
				ref.PaymentGatewayInvoiceExpiresAt != nil &&
				ref.PaymentGatewayInvoiceExpiresAt.Before(cutoff) {
				out = append(out, *p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PaymentCreatedAt.Before(out[j].PaymentCreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CreateInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ref.PaymentGatewayInvoiceID == uuid.Nil {
		ref.PaymentGatewayInvoiceID = uuid.New()
	}
	cp := *ref
	f.invoiceRefs = append(f.invoiceRefs, &cp)
	return nil
}

func (f *fakeStore) SaveInvoiceRef(ctx context.Context, ref *model.PaymentGatewayInvoice) error {
	if err := f.fail("SaveInvoiceRef"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.invoiceRefs {
		if r.PaymentGatewayInvoiceID == ref.PaymentGatewayInvoiceID {
			cp := *ref
			f.invoiceRefs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("invoice ref %s not found", ref.PaymentGatewayInvoiceID)
}

func (f *fakeStore) ActiveInvoiceRef(ctx context.Context, paymentID uuid.UUID) (*model.PaymentGatewayInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.invoiceRefs {
		if r.PaymentGatewayInvoicePaymentID == paymentID && !r.PaymentGatewayInvoiceSuperseded {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindInvoiceRefByGatewayID(ctx context.Context, gatewayInvoiceID string) (*model.PaymentGatewayInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.invoiceRefs {
		if r.PaymentGatewayInvoiceGatewayID != nil && *r.PaymentGatewayInvoiceGatewayID == gatewayInvoiceID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) AppendGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	if err := f.fail("AppendGatewayEvent"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.GatewayEventID == uuid.Nil {
		ev.GatewayEventID = uuid.New()
	}
	cp := *ev
	f.events = append(f.events, &cp)
	return nil
}

func (f *fakeStore) SaveGatewayEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e.GatewayEventID == ev.GatewayEventID {
			cp := *ev
			f.events[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("event %s not found", ev.GatewayEventID)
}

func (f *fakeStore) ListRetryableEvents(ctx context.Context, maxTry, limit int) ([]model.PaymentGatewayEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PaymentGatewayEvent
	for _, e := range f.events {
		if e.GatewayEventStatus == model.GatewayEventFailedDownstream && e.GatewayEventTryCount < maxTry {
			out = append(out, *e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ListGatewayEvents(ctx context.Context, offset, limit int) ([]model.PaymentGatewayEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := int64(len(f.events))
	var out []model.PaymentGatewayEvent
	for i := offset; i < len(f.events) && (limit <= 0 || len(out) < limit); i++ {
		out = append(out, *f.events[i])
	}
	return out, total, nil
}

func (f *fakeStore) CreatePendingRegistration(ctx context.Context, reg *model.PendingRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *reg
	f.pendingRegs[reg.PendingRegistrationPaymentID] = &cp
	return nil
}

func (f *fakeStore) GetPendingRegistration(ctx context.Context, paymentID uuid.UUID) (*model.PendingRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.pendingRegs[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (f *fakeStore) DeletePendingRegistration(ctx context.Context, paymentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pendingRegs, paymentID)
	return nil
}

func (f *fakeStore) CreateStudent(ctx context.Context, st *studentmodel.SchoolStudent) error {
	if err := f.fail("CreateStudent"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *st
	f.students[st.SchoolStudentID] = &cp
	return nil
}

func (f *fakeStore) CreateEnrollment(ctx context.Context, en *studentmodel.StudentClassEnrollment) error {
	if err := f.fail("CreateEnrollment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.enrollments[en.StudentClassEnrollmentPaymentID]; exists {
		return fmt.Errorf("duplicate enrollment for payment %s", en.StudentClassEnrollmentPaymentID)
	}
	cp := *en
	f.enrollments[en.StudentClassEnrollmentPaymentID] = &cp
	return nil
}

func (f *fakeStore) FindEnrollmentByPaymentID(ctx context.Context, paymentID uuid.UUID) (*studentmodel.StudentClassEnrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	en, ok := f.enrollments[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *en
	return &cp, nil
}

func (f *fakeStore) CreateTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.tuitionBills[b.TuitionBillID] = &cp
	return nil
}

func (f *fakeStore) GetTuitionBill(ctx context.Context, id uuid.UUID) (*studentmodel.TuitionBill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.tuitionBills[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) SaveTuitionBill(ctx context.Context, b *studentmodel.TuitionBill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.tuitionBills[b.TuitionBillID] = &cp
	return nil
}

/* =========================================================
   fakeGateway: gw.Adapter deterministik untuk test.
========================================================= */

type fakeGateway struct {
	mu sync.Mutex

	createInvoiceCalls      int
	expireInvoiceCalls      []string
	createDisbursementCalls int

	createInvoiceErr error
	invoiceStatus    string
	expiresAt        time.Time
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		invoiceStatus: gw.InvoiceStatusPending,
		expiresAt:     time.Now().Add(24 * time.Hour),
	}
}

func (f *fakeGateway) CreateInvoice(ctx context.Context, in gw.CreateInvoiceInput) (*gw.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createInvoiceErr != nil {
		return nil, f.createInvoiceErr
	}
	f.createInvoiceCalls++
	return &gw.Invoice{
		GatewayInvoiceID: "inv-" + in.ExternalID,
		Status:           f.invoiceStatus,
		PaymentURL:       "https://checkout.example/" + in.ExternalID,
		ExpiresAt:        f.expiresAt,
	}, nil
}

func (f *fakeGateway) GetInvoice(ctx context.Context, id string) (*gw.Invoice, error) {
	return &gw.Invoice{GatewayInvoiceID: id, Status: f.invoiceStatus}, nil
}

func (f *fakeGateway) ExpireInvoice(ctx context.Context, id string) (*gw.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireInvoiceCalls = append(f.expireInvoiceCalls, id)
	return &gw.Invoice{GatewayInvoiceID: id, Status: gw.InvoiceStatusExpired}, nil
}

func (f *fakeGateway) CreateDisbursement(ctx context.Context, in gw.CreateDisbursementInput) (*gw.Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createDisbursementCalls++
	return &gw.Disbursement{GatewayDisbursementID: "dsb-" + in.ExternalID, Status: gw.DisbursementStatusPending}, nil
}

func (f *fakeGateway) GetDisbursement(ctx context.Context, id string) (*gw.Disbursement, error) {
	return &gw.Disbursement{GatewayDisbursementID: id, Status: gw.DisbursementStatusPending}, nil
}
