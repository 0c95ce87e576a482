package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// tagSeparator 是标签列存储用的分隔符，标签本身允许包含逗号。
const tagSeparator = "\n"

// Entry 定义了单日日志模型
// EntryDate 只保留日期部分；同一天允许出现多条记录，统计时不做合并
// Tags 按原始顺序存储，不去重
// 日志创建后不可编辑，只能删除
type Entry struct {
	gorm.Model
	UID            string    `gorm:"size:36;uniqueIndex;not null"`
	EntryDate      time.Time `gorm:"index"`
	PlannedTasks   int
	CompletedTasks int
	Mood           int
	MinutesFocused int
	TasksNotes     string `gorm:"type:text"`
	Wins           string `gorm:"type:text"`
	Challenges     string `gorm:"type:text"`
	Tags           string `gorm:"type:text"`
}

// TagList 把存储列还原为有序标签序列。
func (e *Entry) TagList() []string {
	if strings.TrimSpace(e.Tags) == "" {
		return nil
	}
	return strings.Split(e.Tags, tagSeparator)
}

// SetTagList 规整并写入标签：逐个去除首尾空白，丢弃空串，保留顺序与重复项。
func (e *Entry) SetTagList(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	e.Tags = strings.Join(cleaned, tagSeparator)
}
