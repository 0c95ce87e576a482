package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daypulse/internal/db"
	"github.com/daypulse/internal/service"
	"github.com/gin-gonic/gin"
)

const dateFormat = "2006-01-02"

type entryPayload struct {
	Date           string   `json:"date"`
	PlannedTasks   string   `json:"planned_tasks"`
	CompletedTasks string   `json:"completed_tasks"`
	Mood           string   `json:"mood"`
	MinutesFocused string   `json:"minutes_focused"`
	TasksNotes     string   `json:"tasks_notes"`
	Wins           string   `json:"wins"`
	Challenges     string   `json:"challenges"`
	Tags           []string `json:"tags"`
}

// ListEntries 返回日志列表 JSON，limit 参数可限制条数
func (a *API) ListEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := a.entries.List(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日志列表失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for i := range entries {
		items = append(items, entryToPayload(&entries[i]))
	}

	c.JSON(http.StatusOK, gin.H{"entries": items})
}

// CreateEntry 创建日志
// 数值字段走宽松解析策略：坏输入归零、心情值收敛到 [1,5]，不拒绝请求
func (a *API) CreateEntry(c *gin.Context) {
	var payload entryPayload

	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		if !bindJSON(c, &payload, "请求参数不合法") {
			return
		}
	} else {
		payload.Date = c.PostForm("date")
		payload.PlannedTasks = c.PostForm("planned_tasks")
		payload.CompletedTasks = c.PostForm("completed_tasks")
		payload.Mood = c.PostForm("mood")
		payload.MinutesFocused = c.PostForm("minutes_focused")
		payload.TasksNotes = c.PostForm("tasks_notes")
		payload.Wins = c.PostForm("wins")
		payload.Challenges = c.PostForm("challenges")
		payload.Tags = splitTags(c.PostForm("tags"))
	}

	if strings.TrimSpace(payload.Date) == "" {
		respondError(c, http.StatusBadRequest, "请选择日志日期")
		return
	}

	date, err := time.ParseInLocation(dateFormat, strings.TrimSpace(payload.Date), time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日志日期")
		return
	}

	entry, err := a.entries.Create(service.EntryInput{
		Date:           date,
		PlannedTasks:   service.LenientInt(payload.PlannedTasks),
		CompletedTasks: service.LenientInt(payload.CompletedTasks),
		Mood:           service.LenientMood(payload.Mood),
		MinutesFocused: service.LenientInt(payload.MinutesFocused),
		TasksNotes:     payload.TasksNotes,
		Wins:           payload.Wins,
		Challenges:     payload.Challenges,
		Tags:           payload.Tags,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存日志失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entryToPayload(entry)})
}

// GetEntry 返回单条日志详情，自由文本附带渲染后的 HTML
func (a *API) GetEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日志ID")
		return
	}

	entry, err := a.entries.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			respondError(c, http.StatusNotFound, "日志不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "加载日志失败")
		return
	}

	payload := entryToPayload(entry)
	payload["tasks_notes_html"] = renderMarkdown(entry.TasksNotes)
	payload["wins_html"] = renderMarkdown(entry.Wins)
	payload["challenges_html"] = renderMarkdown(entry.Challenges)

	c.JSON(http.StatusOK, gin.H{"entry": payload})
}

// DeleteEntry 删除日志
func (a *API) DeleteEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日志ID")
		return
	}

	if err := a.entries.Delete(id); err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			respondError(c, http.StatusNotFound, "日志不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除日志失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ExportEntriesCSV 导出全部日志为 CSV 附件
func (a *API) ExportEntriesCSV(c *gin.Context) {
	snapshot, err := a.snapshots.Build(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "构建快照失败")
		return
	}

	csv := service.EntriesToCSV(snapshot.Entries)
	c.Header("Content-Disposition", `attachment; filename="daypulse-entries.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func entryToPayload(entry *db.Entry) gin.H {
	tags := entry.TagList()
	if tags == nil {
		tags = []string{}
	}
	return gin.H{
		"id":              entry.ID,
		"uid":             entry.UID,
		"date":            entry.EntryDate.Format(dateFormat),
		"planned_tasks":   entry.PlannedTasks,
		"completed_tasks": entry.CompletedTasks,
		"mood":            entry.Mood,
		"minutes_focused": entry.MinutesFocused,
		"tasks_notes":     entry.TasksNotes,
		"wins":            entry.Wins,
		"challenges":      entry.Challenges,
		"tags":            tags,
		"created_at":      entry.CreatedAt.Format(time.RFC3339),
	}
}
