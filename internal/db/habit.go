package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// Streak 与 LastCompleted 均为派生值，从完成记录实时重算，不落库
type Habit struct {
	gorm.Model
	UID  string `gorm:"size:36;uniqueIndex;not null"`
	Name string `gorm:"not null"`
}

// HabitCompletion 记录习惯的单日完成
// Habit + DoneDate 采用唯一索引，保证打卡幂等
type HabitCompletion struct {
	gorm.Model
	HabitID  uint      `gorm:"index;index:idx_habit_completion_unique,unique"`
	Habit    Habit     `gorm:"constraint:OnDelete:CASCADE"`
	DoneDate time.Time `gorm:"index:idx_habit_completion_unique,unique"`
}

// TableName 重写确保唯一索引作用到 habit_id + done_date
func (HabitCompletion) TableName() string {
	return "habit_completions"
}
