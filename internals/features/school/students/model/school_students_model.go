// file: internals/features/school/students/model/school_students_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   MODEL: school_students
   Entitas permanen hasil promosi pending_registration.
================================ */

type SchoolStudent struct {
	SchoolStudentID uuid.UUID `json:"school_student_id" gorm:"column:school_student_id;type:uuid;default:gen_random_uuid();primaryKey"`

	SchoolStudentName  string  `json:"school_student_name"  gorm:"column:school_student_name;type:text;not null"`
	SchoolStudentEmail string  `json:"school_student_email" gorm:"column:school_student_email;type:text;not null"`
	SchoolStudentPhone *string `json:"school_student_phone" gorm:"column:school_student_phone;type:varchar(32)"`
	SchoolStudentCode  string  `json:"school_student_code"  gorm:"column:school_student_code;type:varchar(32);not null;uniqueIndex"`

	SchoolStudentStatus string `json:"school_student_status" gorm:"column:school_student_status;type:varchar(16);not null;default:'active'"`

	SchoolStudentCreatedAt time.Time  `json:"school_student_created_at" gorm:"column:school_student_created_at;type:timestamptz;not null;default:now()"`
	SchoolStudentUpdatedAt time.Time  `json:"school_student_updated_at" gorm:"column:school_student_updated_at;type:timestamptz;not null;default:now()"`
	SchoolStudentDeletedAt *time.Time `json:"school_student_deleted_at" gorm:"column:school_student_deleted_at;type:timestamptz"`
}

func (SchoolStudent) TableName() string { return "school_students" }

/* ================================
   MODEL: student_class_enrollments
   1 payment pendaftaran → 1 enrollment (unique per payment).
================================ */

type StudentClassEnrollment struct {
	StudentClassEnrollmentID uuid.UUID `json:"student_class_enrollment_id" gorm:"column:student_class_enrollment_id;type:uuid;default:gen_random_uuid();primaryKey"`

	StudentClassEnrollmentStudentID uuid.UUID `json:"student_class_enrollment_student_id" gorm:"column:student_class_enrollment_student_id;type:uuid;not null;index"`
	StudentClassEnrollmentClassID   uuid.UUID `json:"student_class_enrollment_class_id"   gorm:"column:student_class_enrollment_class_id;type:uuid;not null;index"`

	// Payment pendaftaran yang mempromosikan enrollment ini (idempotency key)
	StudentClassEnrollmentPaymentID uuid.UUID `json:"student_class_enrollment_payment_id" gorm:"column:student_class_enrollment_payment_id;type:uuid;not null;uniqueIndex"`

	StudentClassEnrollmentStatus     string    `json:"student_class_enrollment_status"      gorm:"column:student_class_enrollment_status;type:varchar(16);not null;default:'active'"`
	StudentClassEnrollmentEnrolledAt time.Time `json:"student_class_enrollment_enrolled_at" gorm:"column:student_class_enrollment_enrolled_at;type:timestamptz;not null;default:now()"`

	StudentClassEnrollmentCreatedAt time.Time  `json:"student_class_enrollment_created_at" gorm:"column:student_class_enrollment_created_at;type:timestamptz;not null;default:now()"`
	StudentClassEnrollmentUpdatedAt time.Time  `json:"student_class_enrollment_updated_at" gorm:"column:student_class_enrollment_updated_at;type:timestamptz;not null;default:now()"`
	StudentClassEnrollmentDeletedAt *time.Time `json:"student_class_enrollment_deleted_at" gorm:"column:student_class_enrollment_deleted_at;type:timestamptz"`
}

func (StudentClassEnrollment) TableName() string { return "student_class_enrollments" }

/* ================================
   MODEL: tuition_bills (SPP per periode)
   Periode disimpan sebagai DATE betulan (awal bulan), bukan string
   "DD-MM-YYYY" — semua perbandingan tanggal harus lewat time.Time.
================================ */

type TuitionBillStatus string

const (
	TuitionBillUnpaid TuitionBillStatus = "unpaid"
	TuitionBillPaid   TuitionBillStatus = "paid"
)

type TuitionBill struct {
	TuitionBillID uuid.UUID `json:"tuition_bill_id" gorm:"column:tuition_bill_id;type:uuid;default:gen_random_uuid();primaryKey"`

	TuitionBillEnrollmentID uuid.UUID `json:"tuition_bill_enrollment_id" gorm:"column:tuition_bill_enrollment_id;type:uuid;not null;index"`

	// Awal bulan periode SPP (timestamptz, jam 00:00 lokal)
	TuitionBillPeriod    time.Time         `json:"tuition_bill_period"     gorm:"column:tuition_bill_period;type:date;not null"`
	TuitionBillAmountIDR int               `json:"tuition_bill_amount_idr" gorm:"column:tuition_bill_amount_idr;type:int;not null"`
	TuitionBillStatus    TuitionBillStatus `json:"tuition_bill_status"     gorm:"column:tuition_bill_status;type:varchar(16);not null;default:'unpaid'"`

	TuitionBillPaidAt    *time.Time `json:"tuition_bill_paid_at"    gorm:"column:tuition_bill_paid_at;type:timestamptz"`
	TuitionBillPaymentID *uuid.UUID `json:"tuition_bill_payment_id" gorm:"column:tuition_bill_payment_id;type:uuid;index"`

	TuitionBillCreatedAt time.Time `json:"tuition_bill_created_at" gorm:"column:tuition_bill_created_at;type:timestamptz;not null;default:now()"`
	TuitionBillUpdatedAt time.Time `json:"tuition_bill_updated_at" gorm:"column:tuition_bill_updated_at;type:timestamptz;not null;default:now()"`
}

func (TuitionBill) TableName() string { return "tuition_bills" }
