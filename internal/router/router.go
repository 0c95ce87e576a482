package router

import (
	"github.com/daypulse/internal/config"
	"github.com/daypulse/internal/db"
	"github.com/daypulse/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("daypulse_session", store))

	api := handler.NewAPI(db.DB, cfg.BackupFallbackSalt)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/admin/login", api.Login)
	r.GET("/admin/logout", api.Logout)

	// 备份接口不要求登录：负载本身由口令加密，
	// 未登录请求落到公开回退盐身份
	r.POST("/api/backup", api.CreateBackup)
	r.GET("/api/backup", api.FetchBackup)
	r.POST("/api/backup/restore", api.RestoreBackup)

	// 需要认证的 API 路由
	auth := r.Group("/api")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/entries", api.ListEntries)
		auth.POST("/entries", api.CreateEntry)
		auth.GET("/entries/:id", api.GetEntry)
		auth.DELETE("/entries/:id", api.DeleteEntry)
		auth.GET("/entries/export.csv", api.ExportEntriesCSV)

		auth.GET("/habits", api.ListHabits)
		auth.POST("/habits", api.CreateHabit)
		auth.DELETE("/habits/:id", api.DeleteHabit)
		auth.POST("/habits/:id/completions", api.LogHabitCompletion)
		auth.DELETE("/habits/:id/completions", api.UnlogHabitCompletion)

		auth.GET("/analytics", api.GetAnalytics)
		auth.GET("/analytics/trend.png", api.GetTrendChart)

		auth.GET("/report", api.GetReport)
		auth.GET("/report/export.csv", api.ExportReportCSV)

		auth.GET("/settings", api.GetSettings)
	}

	return r
}
