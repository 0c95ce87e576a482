package service

import (
	"errors"
	"fmt"

	"github.com/daypulse/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingService 提供应用级键值对的读写能力。
type SettingService struct {
	db *gorm.DB
}

// NewSettingService 构造 SettingService。
func NewSettingService(gdb *gorm.DB) *SettingService {
	return &SettingService{db: gdb}
}

// Get 读取键值，键不存在时第二个返回值为 false。
func (s *SettingService) Get(key string) (string, bool, error) {
	var record db.Setting
	if err := s.db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	return record.Value, true, nil
}

// Set 幂等写入键值。
func (s *SettingService) Set(key, value string) error {
	setting := db.Setting{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
