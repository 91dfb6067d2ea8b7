package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"kampusku_backend/internals/features/attendance/statistics/queue"
	"kampusku_backend/internals/features/attendance/statistics/service"
)

// StartRecomputeWorker: consumer antrian recompute. Satu job per sesi yang
// close; worker mengipas ke seluruh mahasiswa section-nya.
func StartRecomputeWorker(svc *service.StatisticsService, q queue.Queue, log *logrus.Logger) {
	go func() {
		for {
			ctx := context.Background()
			job, err := q.Dequeue(ctx, 5*time.Second)
			if err != nil {
				log.WithError(err).Error("dequeue recompute gagal")
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue // timeout, antrian kosong
			}

			done, err := svc.RecomputeSection(ctx, job.SectionID, job.PeriodID)
			if err != nil {
				log.WithError(err).WithField("session_id", job.SessionID).
					Error("recompute section gagal")
				continue
			}
			log.WithFields(logrus.Fields{
				"session_id": job.SessionID,
				"section_id": job.SectionID,
				"students":   done,
			}).Info("statistics recomputed")
		}
	}()
}
