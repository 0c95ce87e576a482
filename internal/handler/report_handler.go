package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/daypulse/internal/service"
	"github.com/gin-gonic/gin"
)

// GetReport 生成窗口化总结，range 参数支持 weekly/monthly，默认 weekly
func (a *API) GetReport(c *gin.Context) {
	rng, err := service.ParseReportRange(c.Query("range"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的报告区间")
		return
	}

	snapshot, err := a.snapshots.Build(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "构建快照失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": service.GenerateReport(snapshot, rng, time.Now())})
}

// ExportReportCSV 导出报告窗口内的日志为 CSV 附件
func (a *API) ExportReportCSV(c *gin.Context) {
	rng, err := service.ParseReportRange(c.Query("range"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的报告区间")
		return
	}

	snapshot, err := a.snapshots.Build(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "构建快照失败")
		return
	}

	report := service.GenerateReport(snapshot, rng, time.Now())
	csv := service.EntriesToCSV(report.Entries)

	filename := fmt.Sprintf("daypulse-report-%s-%s.csv", report.Range, report.End)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
