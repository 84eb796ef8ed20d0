// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartAuditScheduler runs reconciliation every interval and, when exporter
// is non-nil, ships the previous UTC day's ledger once a day. The returned
// scheduler must be shut down by the caller.
func StartAuditScheduler(ctx context.Context, rec *Reconciler, exporter *LedgerExporter, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			drifts, err := rec.Reconcile(ctx)
			if err != nil {
				log.Printf("[SCHED] reconcile failed: %v", err)
				return
			}
			if len(drifts) == 0 {
				log.Println("[SCHED] ✅ ledger reconciled, no drift")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule reconcile: %w", err)
	}

	if exporter != nil {
		_, err = sched.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 15, 0))),
			gocron.NewTask(func() {
				yesterday := time.Now().UTC().AddDate(0, 0, -1)
				if _, _, err := exporter.Export(ctx, yesterday); err != nil {
					log.Printf("[SCHED] ledger export failed: %v", err)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("schedule export: %w", err)
		}
	}

	sched.Start()
	return sched, nil
}
