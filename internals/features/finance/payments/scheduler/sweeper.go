package scheduler

import (
	"context"
	"log"
	"time"

	"sekolahpay_backend/internals/configs"
	"sekolahpay_backend/internals/features/finance/payments/service"
)

// StartExpirySweeper menyapu invoice pending yang sudah lewat expires_at
// dan menggerakkan ledger ke expired. Interval dari PAYMENT_SWEEP_INTERVAL_MINUTES.
func StartExpirySweeper(ledger *service.LedgerService) {
	go func() {
		interval := configs.SweepInterval
		if interval <= 0 {
			interval = 15 * time.Minute
		}

		for {
			log.Println("[SWEEPER] Menjalankan sweep payment kadaluarsa...")

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			res, err := ledger.SweepExpiredPayments(ctx, time.Now())
			cancel()

			if err != nil {
				log.Printf("[SWEEPER ERROR] Sweep gagal: %v", err)
			} else {
				if res.ExpiredCount > 0 {
					log.Printf("[SWEEPER] %d payment ditandai expired", res.ExpiredCount)
				} else {
					log.Println("[SWEEPER] Tidak ada payment yang perlu di-expire")
				}
				for _, e := range res.Errors {
					log.Printf("[SWEEPER ERROR] %v", e)
				}
			}

			time.Sleep(interval)
		}
	}()
}

// StartDownstreamRetryWorker memproses ulang antrian failed_downstream
// (promosi registrasi / tanda SPP paid yang sebelumnya gagal).
func StartDownstreamRetryWorker(webhook *service.WebhookService) {
	go func() {
		interval := configs.SweepInterval
		if interval <= 0 {
			interval = 15 * time.Minute
		}

		for {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			n, err := webhook.RetryFailedDownstream(ctx, 100)
			cancel()

			if err != nil {
				log.Printf("[RETRY ERROR] Retry downstream gagal: %v", err)
			} else if n > 0 {
				log.Printf("[RETRY] %d event downstream berhasil diproses ulang", n)
			}

			time.Sleep(interval)
		}
	}()
}
