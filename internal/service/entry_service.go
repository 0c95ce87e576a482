package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daypulse/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotFound 在指定日志不存在时返回
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryDateRequired 在缺失日志日期时返回
	ErrEntryDateRequired = errors.New("entry date is required")
)

// EntryService 负责日志的创建、查询与删除
// 日志创建后不可编辑，因此不提供 Update
type EntryService struct {
	db *gorm.DB
}

// EntryInput 定义创建日志时可配置字段，数值字段应已经过宽松解析策略
type EntryInput struct {
	Date           time.Time
	PlannedTasks   int
	CompletedTasks int
	Mood           int
	MinutesFocused int
	TasksNotes     string
	Wins           string
	Challenges     string
	Tags           []string
}

// NewEntryService 构造 EntryService
func NewEntryService(gdb *gorm.DB) *EntryService {
	return &EntryService{db: gdb}
}

// Create 新建日志：日期归整到零点，标签去空白保序，UID 创建即固定。
// 同一天允许多条日志，系统不做合并。
func (s *EntryService) Create(input EntryInput) (*db.Entry, error) {
	if input.Date.IsZero() {
		return nil, ErrEntryDateRequired
	}

	entry := db.Entry{
		UID:            uuid.New().String(),
		EntryDate:      normalizeToDate(input.Date),
		PlannedTasks:   input.PlannedTasks,
		CompletedTasks: input.CompletedTasks,
		Mood:           input.Mood,
		MinutesFocused: input.MinutesFocused,
		TasksNotes:     strings.TrimSpace(input.TasksNotes),
		Wins:           strings.TrimSpace(input.Wins),
		Challenges:     strings.TrimSpace(input.Challenges),
	}
	entry.SetTagList(input.Tags)

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return &entry, nil
}

// Get 根据 ID 获取日志
func (s *EntryService) Get(id uint) (*db.Entry, error) {
	var entry db.Entry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// List 返回日志集合，按日期倒序（最新在前），limit<=0 时不限制条数
func (s *EntryService) List(limit int) ([]db.Entry, error) {
	var entries []db.Entry

	query := s.db.Order("entry_date DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

// Delete 删除日志
func (s *EntryService) Delete(id uint) error {
	result := s.db.Delete(&db.Entry{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// LenientInt 是边界层的宽松数值解析策略：
// 无法解析或为负的输入一律归零，而不是拒绝请求。
func LenientInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// LenientMood 把心情值收敛到 [1,5]：
// 无法解析按中位值 3 处理，越界值截断到边界。
func LenientMood(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 3
	}
	return ClampMood(value)
}

// ClampMood 截断心情值到 [1,5]。
func ClampMood(value int) int {
	if value < 1 {
		return 1
	}
	if value > 5 {
		return 5
	}
	return value
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
