package model

import (
	"testing"
	"time"
)

func TestSupersedesSourcePriority(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// manual menang walau lebih tua
	if !Supersedes(SourceManual, at.Add(-time.Hour), "dev-a", SourceQR, at, "dev-b") {
		t.Error("manual harus menang atas qr meskipun timestamp lebih tua")
	}
	// qr TIDAK boleh menimpa manual
	if Supersedes(SourceQR, at.Add(time.Hour), "dev-a", SourceManual, at, "dev-b") {
		t.Error("qr tidak boleh menimpa manual")
	}
	if !Supersedes(SourceBiometric, at, "dev-a", SourceOffline, at, "dev-b") {
		t.Error("biometric harus menang atas offline")
	}
}

func TestSupersedesTimestampThenDevice(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// prioritas sama → timestamp lebih baru menang
	if !Supersedes(SourceQR, at.Add(time.Minute), "dev-b", SourceQR, at, "dev-a") {
		t.Error("timestamp lebih baru harus menang saat prioritas sama")
	}
	if Supersedes(SourceQR, at, "dev-a", SourceQR, at.Add(time.Minute), "dev-b") {
		t.Error("timestamp lebih tua tidak boleh menang")
	}
	// prioritas + timestamp sama → device_id terkecil menang
	if !Supersedes(SourceQR, at, "dev-a", SourceQR, at, "dev-b") {
		t.Error("device_id terkecil harus menang sebagai tie-break terakhir")
	}
	if Supersedes(SourceQR, at, "dev-b", SourceQR, at, "dev-a") {
		t.Error("device_id lebih besar tidak boleh menang")
	}
}

func TestSupersedesAntisymmetric(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	type ev struct {
		source, device string
	}
	pairs := [][2]ev{
		{{SourceManual, "a"}, {SourceQR, "b"}},
		{{SourceQR, "a"}, {SourceQR, "b"}},
		{{SourceBiometric, "x"}, {SourceOffline, "x"}},
	}
	for _, p := range pairs {
		ab := Supersedes(p[0].source, at, p[0].device, p[1].source, at, p[1].device)
		ba := Supersedes(p[1].source, at, p[1].device, p[0].source, at, p[0].device)
		if ab == ba {
			t.Errorf("total order harus antisimetris untuk %v vs %v", p[0], p[1])
		}
	}
}

func TestSupersededBy(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rec := AttendanceRecordModel{
		AttendanceRecordSource:   SourceManual,
		AttendanceRecordMarkedAt: at,
		AttendanceRecordDeviceID: "faculty-tablet",
	}
	if rec.SupersededBy(SourceQR, at.Add(time.Hour), "kiosk-1") {
		t.Error("record manual tidak boleh kalah dari qr")
	}
	if !rec.SupersededBy(SourceManual, at.Add(time.Minute), "faculty-tablet") {
		t.Error("manual lebih baru harus menang atas manual lama")
	}
}
