package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	TokenSecret string
	Attendance  AttendanceConfig
)

// AttendanceConfig: semua knob runtime untuk core attendance.
// Default mengikuti kebijakan akademik standar; override via ENV.
type AttendanceConfig struct {
	GracePeriod          time.Duration // auto-open boleh jalan mulai start_at - grace
	CorrectionWindow     time.Duration // Closed -> Locked setelah window ini lewat
	TokenTTL             time.Duration // umur token QR
	AllowedOfflineDelta  time.Duration // toleransi client_timestamp event offline
	SweepInterval        time.Duration // interval sweep status sesi
	MinPresenceSeconds   int           // durasi minimum supaya present tidak turun jadi absent
	EligibilityThreshold float64       // persentase minimum layak ujian
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	TokenSecret = GetEnv("ATTENDANCE_TOKEN_SECRET")
	if TokenSecret == "" {
		log.Println("❌ ATTENDANCE_TOKEN_SECRET belum diset!")
	}

	Attendance = AttendanceConfig{
		GracePeriod:          time.Duration(GetEnvInt("GRACE_PERIOD_MINUTES", 5)) * time.Minute,
		CorrectionWindow:     time.Duration(GetEnvInt("CORRECTION_WINDOW_DAYS", 7)) * 24 * time.Hour,
		TokenTTL:             time.Duration(GetEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AllowedOfflineDelta:  time.Duration(GetEnvInt("OFFLINE_DELTA_MINUTES", 120)) * time.Minute,
		SweepInterval:        time.Duration(GetEnvInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		MinPresenceSeconds:   GetEnvInt("MIN_PRESENCE_SECONDS", 600),
		EligibilityThreshold: GetEnvFloat("ELIGIBILITY_THRESHOLD", 75),
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("⚠️ %s bukan angka valid, pakai default %d", key, fallback)
	}
	return fallback
}

func GetEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
		log.Printf("⚠️ %s bukan angka valid, pakai default %v", key, fallback)
	}
	return fallback
}
