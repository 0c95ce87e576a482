package service

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ReportRange 表示报告的时间窗口类型。
type ReportRange string

const (
	// ReportRangeWeekly 覆盖今天在内的最近 7 个日历日。
	ReportRangeWeekly ReportRange = "weekly"
	// ReportRangeMonthly 覆盖按日历月回退一个月的区间。
	ReportRangeMonthly ReportRange = "monthly"
)

// reportPlaceholder 在窗口内没有可计算数据时作为文本占位。
const reportPlaceholder = "暂无数据"

// 推荐语按固定顺序评估：完成率三选一，其后追加专注提醒。
const (
	adviceReduceScope       = "完成率低于 50%，建议缩减每日计划任务量，先把完成率稳住。"
	adviceRemoveDistraction = "完成率处于 50%-79%，试着找出最大的干扰源并移除它。"
	adviceRaiseTarget       = "完成率达到 80% 以上，可以适当提高每日目标。"
	adviceFocusBlock        = "窗口内存在专注不足 20 分钟的日子，建议安排固定的专注时间块。"
)

// TagCount 描述窗口内某个标签的出现次数。
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Report 是一次窗口化总结的输出，Entries 保留选中日志供导出使用。
type Report struct {
	Title           string          `json:"title"`
	Range           ReportRange     `json:"range"`
	Start           string          `json:"start"`
	End             string          `json:"end"`
	TotalPlanned    int             `json:"totalPlanned"`
	TotalCompleted  int             `json:"totalCompleted"`
	AvgMood         string          `json:"avgMood"`
	SuccessRate     string          `json:"successRate"`
	TopTags         []TagCount      `json:"topTags"`
	Recommendations []string        `json:"recommendations"`
	Entries         []SnapshotEntry `json:"entries"`
}

// ParseReportRange 校验窗口参数，空值默认 weekly。
func ParseReportRange(raw string) (ReportRange, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ReportRangeWeekly):
		return ReportRangeWeekly, nil
	case string(ReportRangeMonthly):
		return ReportRangeMonthly, nil
	default:
		return "", fmt.Errorf("unsupported report range: %s", raw)
	}
}

// GenerateReport 在 [start, now] 闭区间上汇总快照。
// weekly 取 now-6 天；monthly 按日历月回退（AddDate 的规范化语义）。
func GenerateReport(snapshot *Snapshot, rng ReportRange, now time.Time) Report {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var start time.Time
	var rangeName string
	switch rng {
	case ReportRangeMonthly:
		start = end.AddDate(0, -1, 0)
		rangeName = "每月总结"
	default:
		rng = ReportRangeWeekly
		start = end.AddDate(0, 0, -6)
		rangeName = "每周总结"
	}

	report := Report{
		Title:           fmt.Sprintf("%s · %s", rangeName, end.Format(dateLayout)),
		Range:           rng,
		Start:           start.Format(dateLayout),
		End:             end.Format(dateLayout),
		AvgMood:         reportPlaceholder,
		SuccessRate:     reportPlaceholder,
		TopTags:         []TagCount{},
		Recommendations: []string{},
		Entries:         []SnapshotEntry{},
	}
	if snapshot == nil {
		return report
	}

	var selected []SnapshotEntry
	for _, entry := range snapshot.Entries {
		day, err := time.ParseInLocation(dateLayout, entry.Date, now.Location())
		if err != nil {
			continue
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		selected = append(selected, entry)
	}
	if selected != nil {
		report.Entries = selected
	}

	var moodSum int
	lowFocus := false
	for _, entry := range selected {
		report.TotalPlanned += entry.PlannedTasks
		report.TotalCompleted += entry.CompletedTasks
		moodSum += entry.Mood
		if entry.MinutesFocused < 20 {
			lowFocus = true
		}
	}

	if len(selected) > 0 {
		report.AvgMood = fmt.Sprintf("%.2f", float64(moodSum)/float64(len(selected)))
	}

	if report.TotalPlanned > 0 {
		rate := round1(float64(report.TotalCompleted) / float64(report.TotalPlanned) * 100)
		report.SuccessRate = fmt.Sprintf("%.1f%%", rate)

		switch {
		case rate < 50:
			report.Recommendations = append(report.Recommendations, adviceReduceScope)
		case rate < 80:
			report.Recommendations = append(report.Recommendations, adviceRemoveDistraction)
		default:
			report.Recommendations = append(report.Recommendations, adviceRaiseTarget)
		}
	}

	if lowFocus {
		report.Recommendations = append(report.Recommendations, adviceFocusBlock)
	}

	report.TopTags = topTags(selected, 5)

	return report
}

// topTags 统计窗口内标签出现次数，按次数降序排列，
// 次数相同时保持首次出现的先后顺序，截断到 limit 个。
func topTags(entries []SnapshotEntry, limit int) []TagCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, entry := range entries {
		for _, tag := range entry.Tags {
			if _, seen := counts[tag]; !seen {
				firstSeen[tag] = order
				order++
			}
			counts[tag]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, TagCount{Tag: tag, Count: count})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return firstSeen[result[i].Tag] < firstSeen[result[j].Tag]
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result
}
