package service

import (
	"testing"
	"time"

	"github.com/daypulse/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEntryTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Entry{}, &db.Habit{}, &db.HabitCompletion{}, &db.Setting{}, &db.BackupBlob{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestEntryServiceCreateAndList(t *testing.T) {
	cleanup := setupEntryTestDB(t)
	defer cleanup()

	svc := NewEntryService(db.DB)

	first, err := svc.Create(EntryInput{
		Date:           time.Date(2026, 8, 27, 18, 45, 0, 0, time.Local),
		PlannedTasks:   4,
		CompletedTasks: 3,
		Mood:           4,
		MinutesFocused: 120,
		TasksNotes:     "完成备份模块",
		Tags:           []string{" 深度工作 ", "", "写作"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if first.UID == "" {
		t.Fatal("expected entry to carry a stable UID")
	}
	if got := first.EntryDate; got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected date normalized to midnight, got %v", got)
	}
	if tags := first.TagList(); len(tags) != 2 || tags[0] != "深度工作" || tags[1] != "写作" {
		t.Fatalf("unexpected tag normalization: %v", tags)
	}

	if _, err := svc.Create(EntryInput{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local), Mood: 3}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	entries, err := svc.List(0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].EntryDate.After(entries[1].EntryDate) {
		t.Fatal("expected newest-first ordering")
	}

	limited, err := svc.List(1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d entries", len(limited))
	}
}

func TestEntryServiceCreateRequiresDate(t *testing.T) {
	cleanup := setupEntryTestDB(t)
	defer cleanup()

	svc := NewEntryService(db.DB)
	if _, err := svc.Create(EntryInput{Mood: 3}); err != ErrEntryDateRequired {
		t.Fatalf("expected ErrEntryDateRequired, got %v", err)
	}
}

func TestEntryServiceDelete(t *testing.T) {
	cleanup := setupEntryTestDB(t)
	defer cleanup()

	svc := NewEntryService(db.DB)
	entry, err := svc.Create(EntryInput{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local), Mood: 3})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(entry.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(entry.ID); err != ErrEntryNotFound {
		t.Fatalf("expected ErrEntryNotFound on second delete, got %v", err)
	}
	if _, err := svc.Get(entry.ID); err != ErrEntryNotFound {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestLenientNumericPolicy(t *testing.T) {
	cases := []struct {
		raw      string
		expected int
	}{
		{"7", 7},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"3.5", 0},
	}

	for _, tc := range cases {
		if got := LenientInt(tc.raw); got != tc.expected {
			t.Fatalf("LenientInt(%q) = %d, expected %d", tc.raw, got, tc.expected)
		}
	}
}

func TestLenientMoodPolicy(t *testing.T) {
	cases := []struct {
		raw      string
		expected int
	}{
		{"3", 3},
		{"1", 1},
		{"5", 5},
		{"0", 1},
		{"9", 5},
		{"-2", 1},
		{"", 3},
		{"great", 3},
	}

	for _, tc := range cases {
		if got := LenientMood(tc.raw); got != tc.expected {
			t.Fatalf("LenientMood(%q) = %d, expected %d", tc.raw, got, tc.expected)
		}
	}
}
