package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/daypulse/internal/service"
	"github.com/gin-gonic/gin"
)

// GetAnalytics 基于当前快照返回聚合统计 JSON
// successRate/avgMood 在无法计算时输出 null，而不是 0
func (a *API) GetAnalytics(c *gin.Context) {
	snapshot, err := a.snapshots.Build(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "构建快照失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": service.ComputeAnalytics(snapshot)})
}

// GetTrendChart 把趋势序列渲染为 PNG 柱状图
func (a *API) GetTrendChart(c *gin.Context) {
	snapshot, err := a.snapshots.Build(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "构建快照失败")
		return
	}

	analytics := service.ComputeAnalytics(snapshot)
	img, err := service.TrendChartPNG(analytics.Trend)
	if err != nil {
		if errors.Is(err, service.ErrTrendEmpty) {
			respondError(c, http.StatusNotFound, "暂无趋势数据")
			return
		}
		respondError(c, http.StatusInternalServerError, "渲染趋势图失败")
		return
	}

	c.Data(http.StatusOK, "image/png", img)
}
