package handler

import (
	"net/http"

	"github.com/daypulse/internal/db"
	"github.com/gin-gonic/gin"
)

// GetSettings 返回应用级状态键值，目前是最近一次备份/恢复时间
func (a *API) GetSettings(c *gin.Context) {
	settings := gin.H{}

	for _, key := range []string{db.SettingKeyLastBackupAt, db.SettingKeyLastRestoreAt} {
		value, ok, err := a.settings.Get(key)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "读取设置失败")
			return
		}
		if ok {
			settings[key] = value
		}
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
