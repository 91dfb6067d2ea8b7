package database

import (
	"log"

	periodModel "kampusku_backend/internals/features/academics/academic_periods/model"
	calModel "kampusku_backend/internals/features/academics/calendar/model"
	enrollModel "kampusku_backend/internals/features/academics/enrollments/model"
	slotModel "kampusku_backend/internals/features/academics/timetable/model"
	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	recordModel "kampusku_backend/internals/features/attendance/records/model"
	sessionModel "kampusku_backend/internals/features/attendance/sessions/model"
	statsModel "kampusku_backend/internals/features/attendance/statistics/model"
	syncModel "kampusku_backend/internals/features/attendance/sync/model"
)

// AutoMigrate menjaga skema sinkron saat boot. Urutan penting:
// tabel referensi dulu, baru tabel yang punya FK logis ke sana.
func AutoMigrate() {
	if err := DB.AutoMigrate(
		&periodModel.AcademicPeriodModel{},
		&slotModel.TimetableSlotModel{},
		&calModel.HolidayModel{},
		&enrollModel.EnrollmentModel{},
		&sessionModel.AttendanceSessionModel{},
		&recordModel.AttendanceRecordModel{},
		&syncModel.SyncConflictModel{},
		&statsModel.AttendanceStatModel{},
		&auditModel.AuditLogEntryModel{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate gagal: %v", err)
	}
	log.Println("✅ AutoMigrate selesai.")
}
