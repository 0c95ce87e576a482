package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/daypulse/internal/service"
	"github.com/gin-gonic/gin"
)

type habitPayload struct {
	Name string `json:"name"`
}

type habitDatePayload struct {
	Date string `json:"date"` // 2006-01-02，缺省为今天
}

// ListHabits 返回习惯列表及其派生状态（连续天数实时重算）
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	now := time.Now()
	items := make([]service.HabitStatus, 0, len(habits))
	for _, habit := range habits {
		status, err := a.habits.Status(habit, now)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "计算习惯状态失败")
			return
		}
		items = append(items, status)
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		if !bindJSON(c, &payload, "请求参数不合法") {
			return
		}
	} else {
		payload.Name = c.PostForm("name")
	}

	habit, err := a.habits.Create(payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrHabitNameRequired) {
			respondError(c, http.StatusBadRequest, "习惯名称不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建习惯失败")
		return
	}

	status, err := a.habits.Status(*habit, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算习惯状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": status})
}

// DeleteHabit 删除习惯及其打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id); err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LogHabitCompletion 打卡：同一天重复提交保持幂等
func (a *API) LogHabitCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	date, ok := a.parseHabitDate(c)
	if !ok {
		return
	}

	if err := a.habits.MarkDone(id, date); err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存打卡记录失败")
		return
	}

	habit, err := a.habits.Get(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载习惯失败")
		return
	}
	status, err := a.habits.Status(*habit, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算习惯状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": status})
}

// UnlogHabitCompletion 撤销指定日期的打卡
func (a *API) UnlogHabitCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	date, ok := a.parseHabitDate(c)
	if !ok {
		return
	}

	if err := a.habits.UnmarkDone(id, date); err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (a *API) parseHabitDate(c *gin.Context) (time.Time, bool) {
	var payload habitDatePayload
	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		if !bindJSON(c, &payload, "请求参数不合法") {
			return time.Time{}, false
		}
	} else {
		payload.Date = c.PostForm("date")
	}

	if strings.TrimSpace(payload.Date) == "" {
		return time.Now(), true
	}

	date, err := time.ParseInLocation(dateFormat, strings.TrimSpace(payload.Date), time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡日期")
		return time.Time{}, false
	}
	return date, true
}
