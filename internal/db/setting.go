package db

import "gorm.io/gorm"

// Setting 存储应用级键值对。
type Setting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (Setting) TableName() string {
	return "settings"
}

const (
	// SettingKeyLastBackupAt 记录最近一次成功备份的时间。
	SettingKeyLastBackupAt = "last_backup_at"
	// SettingKeyLastRestoreAt 记录最近一次成功恢复的时间。
	SettingKeyLastRestoreAt = "last_restore_at"
)
