package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daypulse/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired 在习惯名称为空时返回
	ErrHabitNameRequired = errors.New("habit name is required")
)

// HabitService 负责习惯与打卡记录的增删查
type HabitService struct {
	db *gorm.DB
}

// HabitStatus 汇总单个习惯的派生状态
type HabitStatus struct {
	ID            uint   `json:"id"`
	UID           string `json:"uid"`
	Name          string `json:"name"`
	Streak        int    `json:"streak"`
	LastCompleted string `json:"last_completed,omitempty"`
	TotalDays     int    `json:"total_days"`
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// Create 新建习惯
func (s *HabitService) Create(name string) (*db.Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameRequired
	}

	habit := db.Habit{UID: uuid.New().String(), Name: trimmed}
	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// List 返回习惯集合，按创建时间正序
func (s *HabitService) List() ([]db.Habit, error) {
	var habits []db.Habit
	if err := s.db.Order("created_at ASC").Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Delete 删除习惯及其打卡记录
func (s *HabitService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("habit_id = ?", id).Delete(&db.HabitCompletion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.Habit{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrHabitNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrHabitNotFound) {
			return err
		}
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// MarkDone 记录指定日期的完成，利用唯一索引保证幂等
func (s *HabitService) MarkDone(habitID uint, date time.Time) error {
	if _, err := s.Get(habitID); err != nil {
		return err
	}

	completion := db.HabitCompletion{
		HabitID:  habitID,
		DoneDate: normalizeToDate(date),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "done_date"}},
		DoNothing: true,
	}).Create(&completion).Error; err != nil {
		return fmt.Errorf("mark habit done: %w", err)
	}

	return nil
}

// UnmarkDone 撤销指定日期的完成记录。
// 物理删除，软删除的残留行会让同日重新打卡撞上唯一索引
func (s *HabitService) UnmarkDone(habitID uint, date time.Time) error {
	if _, err := s.Get(habitID); err != nil {
		return err
	}

	if err := s.db.Unscoped().Where("habit_id = ? AND done_date = ?", habitID, normalizeToDate(date)).
		Delete(&db.HabitCompletion{}).Error; err != nil {
		return fmt.Errorf("unmark habit done: %w", err)
	}
	return nil
}

// History 返回习惯的完成日期集合（ISO 日期字符串）
func (s *HabitService) History(habitID uint) (map[string]struct{}, error) {
	var completions []db.HabitCompletion
	if err := s.db.Where("habit_id = ?", habitID).
		Order("done_date ASC").
		Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("load habit history: %w", err)
	}

	history := make(map[string]struct{}, len(completions))
	for _, completion := range completions {
		history[completion.DoneDate.Format(dateLayout)] = struct{}{}
	}
	return history, nil
}

// Status 重算习惯的派生状态；Streak 永远来自 History 的推导，不读缓存
func (s *HabitService) Status(habit db.Habit, now time.Time) (HabitStatus, error) {
	history, err := s.History(habit.ID)
	if err != nil {
		return HabitStatus{}, err
	}

	status := HabitStatus{
		ID:        habit.ID,
		UID:       habit.UID,
		Name:      habit.Name,
		Streak:    ComputeStreak(history, now),
		TotalDays: len(history),
	}

	last := ""
	for day := range history {
		if day > last {
			last = day
		}
	}
	status.LastCompleted = last

	return status, nil
}
