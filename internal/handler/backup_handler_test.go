package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daypulse/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// setupBackupRouter 挂载会话中间件后注册备份路由，
// currentIdentity 依赖会话，不能用裸的测试上下文调用。
func setupBackupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(sessions.Sessions("daypulse_session", cookie.NewStore([]byte("test-secret"))))
	router.POST("/api/backup", api.CreateBackup)
	router.GET("/api/backup", api.FetchBackup)
	router.POST("/api/backup/restore", api.RestoreBackup)
	return router
}

func postJSON(router *gin.Engine, path string, payload map[string]any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBackupRequiresPassphrase(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupBackupRouter(api)

	w := postJSON(router, "/api/backup", map[string]any{"passphrase": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateAndFetchBackupPublicIdentity(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupBackupRouter(api)

	entry := db.Entry{
		UID:       "uid-1",
		EntryDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local),
		Mood:      4,
	}
	if err := db.DB.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	w := postJSON(router, "/api/backup", map[string]any{"passphrase": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		IdentityID string `json:"identity_id"`
		Payload    string `json:"payload"`
		BackedUpAt string `json:"backed_up_at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.IdentityID != "public" {
		t.Fatalf("expected public identity for anonymous backup, got %q", created.IdentityID)
	}
	if created.Payload == "" {
		t.Fatal("expected encrypted payload in response")
	}
	if created.BackedUpAt == "" {
		t.Fatal("expected backed_up_at timestamp")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/backup", nil)
	fetched := httptest.NewRecorder()
	router.ServeHTTP(fetched, req)

	if fetched.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", fetched.Code)
	}

	var got struct {
		IdentityID string `json:"identity_id"`
		Payload    string `json:"payload"`
	}
	if err := json.Unmarshal(fetched.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Payload != created.Payload {
		t.Fatal("expected archived payload to match the created one")
	}
}

func TestFetchBackupNotFound(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupBackupRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/backup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestRestoreBackupWrongPassphrase(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupBackupRouter(api)

	entry := db.Entry{
		UID:        "uid-1",
		EntryDate:  time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local),
		Mood:       4,
		TasksNotes: "原始数据",
	}
	if err := db.DB.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	if w := postJSON(router, "/api/backup", map[string]any{"passphrase": "right"}); w.Code != http.StatusOK {
		t.Fatalf("backup failed: %d %s", w.Code, w.Body.String())
	}

	w := postJSON(router, "/api/backup/restore", map[string]any{"passphrase": "wrong"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for wrong passphrase, got %d", w.Code)
	}

	// 恢复失败不触碰现有数据
	var count int64
	db.DB.Model(&db.Entry{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected existing entry untouched, got %d rows", count)
	}
}

func TestRestoreBackupRoundTrip(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupBackupRouter(api)

	entry := db.Entry{
		UID:            "uid-1",
		EntryDate:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local),
		Mood:           4,
		CompletedTasks: 3,
	}
	if err := db.DB.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	if w := postJSON(router, "/api/backup", map[string]any{"passphrase": "secret"}); w.Code != http.StatusOK {
		t.Fatalf("backup failed: %d %s", w.Code, w.Body.String())
	}

	// 模拟数据丢失，再从归档恢复
	if err := db.DB.Where("1 = 1").Delete(&db.Entry{}).Error; err != nil {
		t.Fatalf("failed to clear entries: %v", err)
	}

	w := postJSON(router, "/api/backup/restore", map[string]any{"passphrase": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var restored []db.Entry
	if err := db.DB.Find(&restored).Error; err != nil {
		t.Fatalf("failed to load entries: %v", err)
	}
	if len(restored) != 1 {
		t.Fatalf("expected 1 restored entry, got %d", len(restored))
	}
	if restored[0].UID != "uid-1" || restored[0].CompletedTasks != 3 {
		t.Fatalf("restored entry lost fields: %+v", restored[0])
	}
}
