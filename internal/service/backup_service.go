package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/daypulse/internal/db"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// KeyIterations 是 PBKDF2 的固定迭代次数。
	KeyIterations = 200_000
	keyLength     = 32
	nonceSize     = 12

	// PublicIdentityID 是未登录备份使用的归档标识。
	PublicIdentityID = "public"
)

var (
	// ErrDecryptFailed 表示口令错误或密文被篡改，解密绝不输出乱码明文。
	ErrDecryptFailed = errors.New("backup decrypt failed")
	// ErrBackupNotFound 表示指定身份没有归档的备份。
	ErrBackupNotFound = errors.New("backup not found")
	// ErrPassphraseRequired 表示缺少备份口令。
	ErrPassphraseRequired = errors.New("backup passphrase is required")
)

// DeriveKey 用 PBKDF2-SHA256（200k 次迭代）从口令派生 32 字节对称密钥。
// 盐应取登录用户的稳定 UID；未登录时调用方会落到公开的回退盐，
// 这种备份对知道回退盐的人是可离线字典攻击的（见 config.DefaultFallbackSalt）。
func DeriveKey(passphrase, salt string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(salt), KeyIterations, keyLength, sha256.New)
}

// Encrypt 用 AES-256-GCM 加密明文：每次调用生成全新的 12 字节随机 nonce，
// 输出 base64(nonce||ciphertext||tag)。同一密钥下 nonce 复用会破坏机密性，
// 因此 nonce 从不缓存、从不复用。
func Encrypt(key []byte, plaintext string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 还原 Encrypt 的输出；认证失败（错误密钥或被篡改的负载）
// 以 ErrDecryptFailed 报告。
func Decrypt(key []byte, payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: invalid payload encoding", ErrDecryptFailed)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: payload too short", ErrDecryptFailed)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return aead, nil
}

// BackupSession 是一次口令派生后的可复用加密上下文。
// 密钥派生开销大（200k 次迭代），调用方应在口令/身份不变期间缓存会话，
// 并在口令变更或登出时丢弃。
type BackupSession struct {
	IdentityID string
	key        []byte
	saltUsed   string
}

// NewBackupSession 派生密钥并绑定归档身份。
// identityID 为空时回落到 fallbackSalt 与公共归档标识。
func NewBackupSession(passphrase, identityID, fallbackSalt string) (*BackupSession, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	salt := identityID
	identity := identityID
	if identity == "" {
		salt = fallbackSalt
		identity = PublicIdentityID
	}

	return &BackupSession{
		IdentityID: identity,
		key:        DeriveKey(passphrase, salt),
		saltUsed:   salt,
	}, nil
}

// Matches 判断会话是否仍对应同一口令与身份，供调用方决定是否复用缓存。
func (s *BackupSession) Matches(passphrase, identityID, fallbackSalt string) bool {
	if s == nil {
		return false
	}
	salt := identityID
	if identityID == "" {
		salt = fallbackSalt
	}
	if s.saltUsed != salt {
		return false
	}
	candidate := DeriveKey(passphrase, salt)
	return subtle.ConstantTimeCompare(candidate, s.key) == 1
}

// Key 暴露派生密钥供编解码调用。
func (s *BackupSession) Key() []byte {
	return s.key
}

// BackupService 把快照、编解码与归档存取串成完整的备份管线。
type BackupService struct {
	db        *gorm.DB
	snapshots *SnapshotService
	settings  *SettingService
}

// NewBackupService 构造 BackupService。
func NewBackupService(gdb *gorm.DB) *BackupService {
	return &BackupService{
		db:        gdb,
		snapshots: NewSnapshotService(gdb),
		settings:  NewSettingService(gdb),
	}
}

// Export 构建当前快照，加密后按会话身份归档，返回加密负载。
// 上传失败只报告，不重试（单次用户动作至多一次尝试）。
func (s *BackupService) Export(sess *BackupSession, now time.Time) (string, error) {
	snapshot, err := s.snapshots.Build(now)
	if err != nil {
		return "", err
	}

	plaintext, err := MarshalSnapshot(snapshot)
	if err != nil {
		return "", err
	}

	payload, err := Encrypt(sess.Key(), plaintext)
	if err != nil {
		return "", err
	}

	if err := s.Upsert(sess.IdentityID, payload); err != nil {
		return "", err
	}

	if err := s.settings.Set(db.SettingKeyLastBackupAt, now.Format(time.RFC3339)); err != nil {
		return "", err
	}

	return payload, nil
}

// Upsert 以身份标识为键幂等替换归档负载，负载内容对存储层完全不透明。
func (s *BackupService) Upsert(identityID, payload string) error {
	blob := db.BackupBlob{IdentityID: identityID, Payload: payload}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload":    payload,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&blob).Error; err != nil {
		return fmt.Errorf("upsert backup blob: %w", err)
	}
	return nil
}

// Fetch 取回身份标识对应的加密负载。
func (s *BackupService) Fetch(identityID string) (string, error) {
	var blob db.BackupBlob
	if err := s.db.Where("identity_id = ?", identityID).First(&blob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBackupNotFound
		}
		return "", fmt.Errorf("fetch backup blob: %w", err)
	}
	return blob.Payload, nil
}

// Restore 执行全有或全无的恢复：先解密、再解析，任一步失败都不会
// 触碰现有数据；落库在单个事务内完成，整体替换日志与习惯。
func (s *BackupService) Restore(sess *BackupSession, payload string, now time.Time) error {
	plaintext, err := Decrypt(sess.Key(), payload)
	if err != nil {
		return err
	}

	snapshot, err := UnmarshalSnapshot(plaintext)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 物理删除：软删除的残留行会占用 UID 与打卡唯一索引，阻碍整体替换
		if err := tx.Unscoped().Where("1 = 1").Delete(&db.HabitCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&db.Habit{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&db.Entry{}).Error; err != nil {
			return err
		}

		for i := len(snapshot.Entries) - 1; i >= 0; i-- {
			record, err := snapshotToEntry(snapshot.Entries[i])
			if err != nil {
				return err
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}

		for _, habit := range snapshot.Habits {
			record := db.Habit{UID: habit.ID, Name: habit.Name}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			for _, day := range habit.History {
				date, err := time.ParseInLocation(dateLayout, day, time.Local)
				if err != nil {
					return fmt.Errorf("parse habit history date %q: %w", day, err)
				}
				completion := db.HabitCompletion{HabitID: record.ID, DoneDate: date}
				if err := tx.Create(&completion).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	return s.settings.Set(db.SettingKeyLastRestoreAt, now.Format(time.RFC3339))
}

func snapshotToEntry(entry SnapshotEntry) (*db.Entry, error) {
	date, err := time.ParseInLocation(dateLayout, entry.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse entry date %q: %w", entry.Date, err)
	}

	record := db.Entry{
		UID:            entry.ID,
		EntryDate:      date,
		PlannedTasks:   entry.PlannedTasks,
		CompletedTasks: entry.CompletedTasks,
		Mood:           entry.Mood,
		MinutesFocused: entry.MinutesFocused,
		TasksNotes:     entry.TasksNotes,
		Wins:           entry.Wins,
		Challenges:     entry.Challenges,
	}
	record.SetTagList(entry.Tags)
	// 预置 CreatedAt 保留原始创建时间，gorm 不会覆盖非零值
	record.CreatedAt = entry.CreatedAt
	return &record, nil
}
