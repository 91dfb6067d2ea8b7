package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"kampusku_backend/internals/features/attendance/sessions/service"
)

// StartSessionSweeper: loop auto-transisi status sesi.
// Locker best-effort saja — kebenaran dijaga CAS di level row; lock cuma
// mencegah N replika sama-sama scan tiap tick. locker boleh nil (dev).
func StartSessionSweeper(svc *service.SchedulerService, locker *redislock.Client, interval time.Duration, log *logrus.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			runSweepTick(ctx, svc, locker, interval, log)
			cancel()
		}
	}()
}

func runSweepTick(ctx context.Context, svc *service.SchedulerService, locker *redislock.Client, interval time.Duration, log *logrus.Logger) {
	if locker != nil {
		lock, err := locker.Obtain(ctx, "attendance:session:sweep", interval, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return // replika lain sedang sweep
		}
		if err != nil {
			log.WithError(err).Warn("sweep lock error, lanjut tanpa lock")
		} else {
			defer lock.Release(context.Background())
		}
	}

	report := svc.Sweep(ctx, time.Now())
	if report.Opened+report.Closed+report.Locked+report.Failed > 0 {
		log.WithFields(logrus.Fields{
			"opened": report.Opened,
			"closed": report.Closed,
			"locked": report.Locked,
			"failed": report.Failed,
		}).Info("session sweep done")
	}
}
