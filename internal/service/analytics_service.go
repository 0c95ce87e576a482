package service

import (
	"math"
	"time"
)

const (
	// trendScanLimit 限制趋势图向历史回看的最大条数。
	trendScanLimit = 60
	// trendWindow 是趋势图最终保留的条数。
	trendWindow = 30
)

// TrendPoint 表示趋势序列中的单日完成数。
type TrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

// Analytics 汇总全量日志的聚合统计。
// SuccessRate 在 TotalPlanned 为 0 时为 nil：没有计划任务是一种
// 需要单独呈现的状态，不等于 0% 的完成率。AvgMood 同理在无日志时为 nil。
type Analytics struct {
	Days               int            `json:"days"`
	TotalPlanned       int            `json:"totalPlanned"`
	TotalCompleted     int            `json:"totalCompleted"`
	AvgCompletedPerDay float64        `json:"avgCompletedPerDay"`
	SuccessRate        *float64       `json:"successRate"`
	AvgMood            *float64       `json:"avgMood"`
	TotalFocusMinutes  int            `json:"totalFocusMinutes"`
	TagHistogram       map[string]int `json:"tagHistogram"`
	Trend              []TrendPoint   `json:"trend"`
}

// ComputeAnalytics 对快照做纯函数聚合，不产生副作用。
func ComputeAnalytics(snapshot *Snapshot) Analytics {
	analytics := Analytics{
		TagHistogram: make(map[string]int),
		Trend:        []TrendPoint{},
	}
	if snapshot == nil {
		return analytics
	}

	entries := snapshot.Entries
	analytics.Days = len(entries)

	var moodSum int
	for _, entry := range entries {
		analytics.TotalPlanned += entry.PlannedTasks
		analytics.TotalCompleted += entry.CompletedTasks
		analytics.TotalFocusMinutes += entry.MinutesFocused
		moodSum += entry.Mood

		// 单条日志内的重复标签按原始出现次数计入
		for _, tag := range entry.Tags {
			analytics.TagHistogram[tag]++
		}
	}

	if analytics.Days > 0 {
		analytics.AvgCompletedPerDay = round2(float64(analytics.TotalCompleted) / float64(analytics.Days))
		avgMood := round2(float64(moodSum) / float64(analytics.Days))
		analytics.AvgMood = &avgMood
	}

	if analytics.TotalPlanned > 0 {
		rate := round1(float64(analytics.TotalCompleted) / float64(analytics.TotalPlanned) * 100)
		analytics.SuccessRate = &rate
	}

	analytics.Trend = buildTrend(entries)

	return analytics
}

// buildTrend 取最近至多 60 条日志，反转为时间正序后保留末尾 30 条，
// 净效果是"最近 30 条日志、最旧在前"。
func buildTrend(entries []SnapshotEntry) []TrendPoint {
	recent := entries
	if len(recent) > trendScanLimit {
		recent = recent[:trendScanLimit]
	}

	points := make([]TrendPoint, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		points = append(points, TrendPoint{
			Date:      recent[i].Date,
			Completed: recent[i].CompletedTasks,
		})
	}

	if len(points) > trendWindow {
		points = points[len(points)-trendWindow:]
	}

	return points
}

// ComputeStreak 从今天起逐日向前扫描 history，返回连续完成天数。
// 今天缺席即为 0，不提供宽限日。
func ComputeStreak(history map[string]struct{}, today time.Time) int {
	streak := 0
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	for {
		if _, ok := history[day.Format(dateLayout)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
