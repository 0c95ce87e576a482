package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daypulse/internal/config"
	"github.com/daypulse/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Entry{}, &db.Habit{}, &db.HabitCompletion{}, &db.Setting{}, &db.BackupBlob{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return SetupRouter(config.AppConfig{
		SessionSecret:      "test-secret",
		BackupFallbackSalt: "test-fallback-salt",
	})
}

func TestPingEndpoint(t *testing.T) {
	router := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("unexpected ping body: %s", w.Body.String())
	}
}

func TestAPIRoutesRequireAuth(t *testing.T) {
	router := setupRouterTest(t)

	for _, path := range []string{
		"/api/entries",
		"/api/habits",
		"/api/analytics",
		"/api/report",
		"/api/settings",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, w.Code)
		}
	}
}

func TestBackupRoutesReachableWithoutLogin(t *testing.T) {
	router := setupRouterTest(t)

	// 未登录取备份：到达处理器并得到 404（无归档），而不是 401
	fetch := httptest.NewRequest(http.MethodGet, "/api/backup", nil)
	fetched := httptest.NewRecorder()
	router.ServeHTTP(fetched, fetch)
	if fetched.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fetched.Code)
	}

	// 未登录创建备份落到公开回退盐身份
	create := httptest.NewRequest(http.MethodPost, "/api/backup", strings.NewReader(`{"passphrase":"secret"}`))
	create.Header.Set("Content-Type", "application/json")
	created := httptest.NewRecorder()
	router.ServeHTTP(created, create)
	if created.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", created.Code, created.Body.String())
	}
	if !strings.Contains(created.Body.String(), `"identity_id":"public"`) {
		t.Fatalf("expected public identity, got %s", created.Body.String())
	}
}
