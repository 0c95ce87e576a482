package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/daypulse/internal/db"
	"gorm.io/gorm"
)

// dateLayout 是快照与统计使用的日历日期格式。
const dateLayout = "2006-01-02"

// SnapshotEntry 是备份与统计共用的日志序列化形式。
type SnapshotEntry struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	PlannedTasks   int       `json:"plannedTasks"`
	CompletedTasks int       `json:"completedTasks"`
	Mood           int       `json:"mood"`
	MinutesFocused int       `json:"minutesFocused"`
	TasksNotes     string    `json:"tasksNotes"`
	Wins           string    `json:"wins"`
	Challenges     string    `json:"challenges"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SnapshotHabit 是习惯的序列化形式，History 为升序的 ISO 日期集合。
// Streak 在构建快照时重算写入，永远与 History 推导值一致。
type SnapshotHabit struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	History       []string `json:"history"`
	Streak        int      `json:"streak"`
	LastCompleted string   `json:"lastCompleted,omitempty"`
}

// Snapshot 是备份与恢复的最小完整单元：日志按最新在前排列，
// 配合习惯集合即可完整复原统计结果。
type Snapshot struct {
	Entries   []SnapshotEntry `json:"entries"`
	Habits    []SnapshotHabit `json:"habits"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SnapshotService 负责从数据库构建快照。
type SnapshotService struct {
	db *gorm.DB
}

// NewSnapshotService 构造 SnapshotService。
func NewSnapshotService(gdb *gorm.DB) *SnapshotService {
	return &SnapshotService{db: gdb}
}

// Build 读取全部日志与习惯，生成当前时刻的快照。
func (s *SnapshotService) Build(now time.Time) (*Snapshot, error) {
	var entries []db.Entry
	if err := s.db.Order("entry_date DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	var habits []db.Habit
	if err := s.db.Order("created_at ASC").Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}

	snapshot := &Snapshot{
		Entries:   make([]SnapshotEntry, 0, len(entries)),
		Habits:    make([]SnapshotHabit, 0, len(habits)),
		UpdatedAt: now,
	}

	for i := range entries {
		snapshot.Entries = append(snapshot.Entries, entryToSnapshot(&entries[i]))
	}

	for i := range habits {
		var completions []db.HabitCompletion
		if err := s.db.Where("habit_id = ?", habits[i].ID).
			Order("done_date ASC").
			Find(&completions).Error; err != nil {
			return nil, fmt.Errorf("load habit completions: %w", err)
		}

		history := make([]string, 0, len(completions))
		historySet := make(map[string]struct{}, len(completions))
		for _, completion := range completions {
			day := completion.DoneDate.Format(dateLayout)
			history = append(history, day)
			historySet[day] = struct{}{}
		}

		habit := SnapshotHabit{
			ID:      habits[i].UID,
			Name:    habits[i].Name,
			History: history,
			Streak:  ComputeStreak(historySet, now),
		}
		if len(history) > 0 {
			habit.LastCompleted = history[len(history)-1]
		}

		snapshot.Habits = append(snapshot.Habits, habit)
	}

	return snapshot, nil
}

// MarshalSnapshot 序列化快照为 JSON 文本，作为备份编解码的明文。
func MarshalSnapshot(snapshot *Snapshot) (string, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(raw), nil
}

// UnmarshalSnapshot 解析备份明文；任何结构错误都在落库前报告。
func UnmarshalSnapshot(raw string) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snapshot, nil
}

func entryToSnapshot(entry *db.Entry) SnapshotEntry {
	return SnapshotEntry{
		ID:             entry.UID,
		Date:           entry.EntryDate.Format(dateLayout),
		PlannedTasks:   entry.PlannedTasks,
		CompletedTasks: entry.CompletedTasks,
		Mood:           entry.Mood,
		MinutesFocused: entry.MinutesFocused,
		TasksNotes:     entry.TasksNotes,
		Wins:           entry.Wins,
		Challenges:     entry.Challenges,
		Tags:           entry.TagList(),
		CreatedAt:      entry.CreatedAt,
	}
}
