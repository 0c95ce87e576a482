package db

import "gorm.io/gorm"

// BackupBlob 按身份标识归档加密备份负载。
// Payload 为 base64(nonce||ciphertext)，服务端从不解读其内容，
// 同一 IdentityID 始终只保留最新一份（last-writer-wins）。
type BackupBlob struct {
	gorm.Model
	IdentityID string `gorm:"size:64;uniqueIndex;not null"`
	Payload    string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (BackupBlob) TableName() string {
	return "backup_blobs"
}
