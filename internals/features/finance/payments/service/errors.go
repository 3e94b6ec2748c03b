// file: internals/features/finance/payments/service/errors.go
package service

import "errors"

// Taksonomi error payment core. Webhook path meng-ack hampir semuanya
// (lihat ProcessNotification); entry point lain mem-propagate biasa.
var (
	// ErrNotFound: operasi pada payment id yang tidak ada.
	ErrNotFound = errors.New("payment not found")

	// ErrInvalidTransition: edge status di luar graph ledger; state tidak diubah.
	ErrInvalidTransition = errors.New("invalid payment status transition")

	// ErrInvalidState: reissue dari status selain expired/failed.
	ErrInvalidState = errors.New("payment is not in a reissuable state")

	// ErrUnauthorized: callback token tidak cocok; TIDAK ada row log yang ditulis.
	ErrUnauthorized = errors.New("invalid callback token")

	// ErrRegistrationDataMissing: pending registration hilang padahal entitas
	// permanen juga belum ada — bug kehilangan data, bukan kondisi normal.
	ErrRegistrationDataMissing = errors.New("pending registration data missing")
)
