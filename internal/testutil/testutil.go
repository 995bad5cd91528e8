// Package testutil builds throwaway sqlite databases seeded with a small
// parish catalog for package tests.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/sacrament-scheduler/internal/db"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated in-memory database. The pool holds a single
// connection, so concurrent callers queue on it and every transaction sees
// the same data.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenPostgres returns a migrated database in a throwaway schema of the
// server named by TEST_DATABASE_URL, with a real connection pool so
// transactions interleave. The test is skipped when the variable is unset.
func OpenPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	admin, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	adminSQL, err := admin.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}

	schema := fmt.Sprintf("test_%d_%d", os.Getpid(), dbSeq.Add(1))
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := gorm.Open(postgres.Open(dsn+sep+"search_path="+schema), cfg)
	if err != nil {
		t.Fatalf("open postgres schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(16)

	t.Cleanup(func() {
		_ = sqlDB.Close()
		_ = admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error
		_ = adminSQL.Close()
	})

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Catalog is a church with one service, one schedule and one time window.
type Catalog struct {
	Church       models.Church
	Service      models.SacramentService
	Schedule     models.ServiceSchedule
	ScheduleTime models.ScheduleTime
}

type CatalogOptions struct {
	Capacity int
	Fee      float64
	IsMass   bool
	// Weekday of the weekly recurrence; defaults to Sunday.
	Weekday time.Weekday
}

// SeedCatalog inserts an active public church whose schedule repeats weekly
// from 2026-01-01 with one 09:00-10:00 window.
func SeedCatalog(t *testing.T, db *gorm.DB, opts CatalogOptions) Catalog {
	t.Helper()

	if opts.Capacity == 0 {
		opts.Capacity = 1
	}

	c := Catalog{
		Church: models.Church{
			Name:     "San Agustin Parish",
			Status:   models.ChurchStatusActive,
			IsPublic: true,
			Timezone: "UTC",
		},
	}
	mustCreate(t, db, &c.Church)

	c.Service = models.SacramentService{
		ChurchID: c.Church.ID,
		Name:     "Baptism",
		Fee:      opts.Fee,
		IsMass:   opts.IsMass,
		Active:   true,
	}
	mustCreate(t, db, &c.Service)

	weekday := int(opts.Weekday)
	c.Schedule = models.ServiceSchedule{
		ServiceID:    c.Service.ID,
		SlotCapacity: opts.Capacity,
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurrences: []models.ScheduleRecurrence{
			{Type: models.RecurrenceWeekly, DayOfWeek: &weekday},
		},
	}
	mustCreate(t, db, &c.Schedule)

	c.ScheduleTime = models.ScheduleTime{
		ScheduleID: c.Schedule.ID,
		StartTime:  "09:00",
		EndTime:    "10:00",
	}
	mustCreate(t, db, &c.ScheduleTime)

	return c
}

// ApproveMember gives userID an approved membership at churchID.
func ApproveMember(t *testing.T, db *gorm.DB, userID, churchID uint) {
	t.Helper()
	mustCreate(t, db, &models.Membership{
		UserID:   userID,
		ChurchID: churchID,
		Status:   models.MembershipStatusApproved,
	})
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
