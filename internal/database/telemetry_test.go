package database

import (
	"context"
	"mower-core/internal/models"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB renders statements without ever dialing the server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=test dbname=test sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return db
}

func TestTelemetryInsertStatement(t *testing.T) {
	db := dryRunDB(t)

	record := models.NewTelemetryRecord("m1", models.Status{State: "MOWING", Heading: 270, LastChargeDuration: 3600})
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Create(record)
	})

	if !strings.Contains(sql, `INSERT INTO "telemetry_records"`) {
		t.Fatalf("Expected insert into telemetry_records, got %q", sql)
	}
	for _, column := range []string{`"mower_id"`, `"heading"`, `"last_fully_charge_time"`, `"last_charge_duration"`} {
		if !strings.Contains(sql, column) {
			t.Errorf("Expected column %s in insert, got %s", column, sql)
		}
	}
	if !strings.Contains(sql, "'m1'") || !strings.Contains(sql, "'MOWING'") || !strings.Contains(sql, "3600") {
		t.Errorf("Expected snapshot values in insert, got %s", sql)
	}
}

func TestTelemetryRecorderPush(t *testing.T) {
	recorder := NewTelemetryRecorder(dryRunDB(t), "m1")

	if err := recorder.Push(models.Status{State: "DOCKED"}); err != nil {
		t.Errorf("Push failed: %v", err)
	}
}

func TestTelemetryRecentQuery(t *testing.T) {
	db := dryRunDB(t)
	recorder := NewTelemetryRecorder(db, "m1")

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []models.TelemetryRecord
		return recorder.recent(tx, 20).Find(&records)
	})

	for _, part := range []string{`FROM "telemetry_records"`, "mower_id = 'm1'", "ORDER BY created_at DESC", "LIMIT 20"} {
		if !strings.Contains(sql, part) {
			t.Errorf("Expected %q in query, got %s", part, sql)
		}
	}

	records, err := recorder.Recent(context.Background(), 20)
	if err != nil || len(records) != 0 {
		t.Errorf("Expected empty dry run result, got %v %v", records, err)
	}
}

func TestNewTelemetryRecord(t *testing.T) {
	s := models.Status{
		State:               "DOCKING",
		BatteryVoltage:      11.7,
		LastFullyChargeTime: 1200,
		LastChargeDuration:  900,
		CutterLoad:          12,
		WifiSignal:          -70,
		Pitch:               3,
		Roll:                -4,
		Heading:             90,
	}
	r := models.NewTelemetryRecord("m2", s)

	if r.MowerID != "m2" || r.State != "DOCKING" || r.BatteryVoltage != 11.7 {
		t.Errorf("Unexpected record %+v", r)
	}
	if r.LastFullyChargeTime != 1200 || r.LastChargeDuration != 900 {
		t.Errorf("Charge bookkeeping not copied: %+v", r)
	}
	if r.Pitch != 3 || r.Roll != -4 || r.Heading != 90 || r.WifiSignal != -70 {
		t.Errorf("Orientation or radio fields not copied: %+v", r)
	}
}
