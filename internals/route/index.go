// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	periodController "kampusku_backend/internals/features/academics/academic_periods/controller"
	periodRepo "kampusku_backend/internals/features/academics/academic_periods/repository"
	periodRoute "kampusku_backend/internals/features/academics/academic_periods/route"
	periodService "kampusku_backend/internals/features/academics/academic_periods/service"
	calRepo "kampusku_backend/internals/features/academics/calendar/repository"
	enrollRepo "kampusku_backend/internals/features/academics/enrollments/repository"
	slotRepo "kampusku_backend/internals/features/academics/timetable/repository"
	auditService "kampusku_backend/internals/features/attendance/audit/service"
	recordController "kampusku_backend/internals/features/attendance/records/controller"
	recordRepo "kampusku_backend/internals/features/attendance/records/repository"
	recordRoute "kampusku_backend/internals/features/attendance/records/route"
	recordService "kampusku_backend/internals/features/attendance/records/service"
	sessionController "kampusku_backend/internals/features/attendance/sessions/controller"
	sessionRepo "kampusku_backend/internals/features/attendance/sessions/repository"
	sessionRoute "kampusku_backend/internals/features/attendance/sessions/route"
	sessionService "kampusku_backend/internals/features/attendance/sessions/service"
	statsController "kampusku_backend/internals/features/attendance/statistics/controller"
	"kampusku_backend/internals/features/attendance/statistics/queue"
	statsRepo "kampusku_backend/internals/features/attendance/statistics/repository"
	statsRoute "kampusku_backend/internals/features/attendance/statistics/route"
	statsService "kampusku_backend/internals/features/attendance/statistics/service"
	syncController "kampusku_backend/internals/features/attendance/sync/controller"
	syncRepo "kampusku_backend/internals/features/attendance/sync/repository"
	syncRoute "kampusku_backend/internals/features/attendance/sync/route"
	syncService "kampusku_backend/internals/features/attendance/sync/service"
	tokenService "kampusku_backend/internals/features/attendance/tokens/service"

	"kampusku_backend/internals/configs"
)

// AppDeps: komponen yang juga dipakai di luar HTTP (sweeper + worker di main).
type AppDeps struct {
	Scheduler  *sessionService.SchedulerService
	Statistics *statsService.StatisticsService
	Queue      queue.Queue
	Issuer     *tokenService.TokenIssuer
}

// SetupRoutes merakit seluruh graph repo → service → controller dan
// mount semua route di bawah /api. rdb boleh nil (fallback in-memory).
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, logger *logrus.Logger) *AppDeps {
	// ===================== REPOSITORIES =====================
	periods := periodRepo.NewAcademicPeriodRepository(db)
	slots := slotRepo.NewTimetableSlotRepository(db)
	holidays := calRepo.NewHolidayCalendar(db)
	enrollments := enrollRepo.NewEnrollmentRegistry(db)
	sessions := sessionRepo.NewSessionRepository(db)
	records := recordRepo.NewRecordStore(db)
	conflicts := syncRepo.NewSyncConflictRepository(db)
	stats := statsRepo.NewStatisticsRepository(db)
	audit := auditService.NewAuditWriter(db)

	// ===================== QUEUE + TOKEN =====================
	var recomputeQueue queue.Queue
	var denylist tokenService.TokenDenylist
	if rdb != nil {
		recomputeQueue = queue.NewRedisQueue(rdb)
		denylist = tokenService.NewRedisDenylist(rdb)
	} else {
		recomputeQueue = queue.NewMemoryQueue(1024)
		denylist = tokenService.NewMemoryDenylist()
	}
	issuer := tokenService.NewTokenIssuer([]byte(configs.TokenSecret), configs.Attendance.TokenTTL, denylist)

	// ===================== SERVICES =====================
	periodSvc := periodService.NewAcademicPeriodService(periods)
	schedulerSvc := sessionService.NewSchedulerService(
		sessions, periods, holidays, issuer, recomputeQueue, audit,
		configs.Attendance.GracePeriod, configs.Attendance.CorrectionWindow,
		logger,
	)
	gatewaySvc := recordService.NewCaptureGatewayService(
		sessions, records, enrollments,
		configs.Attendance.MinPresenceSeconds, configs.Attendance.CorrectionWindow,
		logger,
	)
	resolverSvc := syncService.NewConflictResolverService(
		sessions, records, conflicts, enrollments,
		configs.Attendance.AllowedOfflineDelta,
		logger,
	)
	statisticsSvc := statsService.NewStatisticsService(
		stats, enrollments, configs.Attendance.EligibilityThreshold, logger,
	)

	// ===================== MOUNT ROUTES =====================
	api := app.Group("/api")

	log.Println("[INFO] Mounting AcademicPeriod routes...")
	periodRoute.AcademicPeriodRoutes(api, periodController.NewAcademicPeriodController(periodSvc))

	log.Println("[INFO] Mounting Session routes...")
	sessionRoute.SessionRoutes(api, sessionController.NewSessionController(schedulerSvc, sessions, slots, issuer))

	log.Println("[INFO] Mounting Record routes...")
	recordRoute.RecordRoutes(api, recordController.NewCaptureController(gatewaySvc, issuer, sessions, records))

	log.Println("[INFO] Mounting Sync routes...")
	syncRoute.SyncRoutes(api, syncController.NewSyncController(resolverSvc, conflicts))

	log.Println("[INFO] Mounting Statistics routes...")
	statsRoute.StatisticsRoutes(api, statsController.NewStatisticsController(statisticsSvc))

	return &AppDeps{
		Scheduler:  schedulerSvc,
		Statistics: statisticsSvc,
		Queue:      recomputeQueue,
		Issuer:     issuer,
	}
}
