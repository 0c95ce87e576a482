package handler

import (
	"sync"

	"github.com/daypulse/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	entries   *service.EntryService
	habits    *service.HabitService
	snapshots *service.SnapshotService
	backups   *service.BackupService
	settings  *service.SettingService

	fallbackSalt string

	// 备份会话缓存：密钥派生完成后按身份复用，
	// 口令变化或登出时失效（见 invalidateBackupSessions）。
	sessionMu      sync.Mutex
	backupSessions map[string]*service.BackupSession
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, fallbackSalt string) *API {
	return &API{
		db:             gdb,
		entries:        service.NewEntryService(gdb),
		habits:         service.NewHabitService(gdb),
		snapshots:      service.NewSnapshotService(gdb),
		backups:        service.NewBackupService(gdb),
		settings:       service.NewSettingService(gdb),
		fallbackSalt:   fallbackSalt,
		backupSessions: make(map[string]*service.BackupSession),
	}
}

// DB exposes the underlying gorm instance for test setup paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// backupSession 返回身份对应的缓存会话；口令不匹配时重新派生并替换。
func (a *API) backupSession(passphrase, identityID string) (*service.BackupSession, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	cacheKey := identityID
	if cacheKey == "" {
		cacheKey = service.PublicIdentityID
	}

	if cached, ok := a.backupSessions[cacheKey]; ok && cached.Matches(passphrase, identityID, a.fallbackSalt) {
		return cached, nil
	}

	sess, err := service.NewBackupSession(passphrase, identityID, a.fallbackSalt)
	if err != nil {
		return nil, err
	}
	a.backupSessions[cacheKey] = sess
	return sess, nil
}

// invalidateBackupSessions 丢弃全部派生密钥，登出时调用。
func (a *API) invalidateBackupSessions() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	a.backupSessions = make(map[string]*service.BackupSession)
}
