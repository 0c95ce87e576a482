package service

import (
	"strconv"
	"strings"
	"time"
)

// csvHeader is the fixed export layout; external tooling depends on the
// exact column names and order.
const csvHeader = "date,plannedTasks,completedTasks,tasksNotes,wins,challenges,mood,minutesFocused,tags,createdAt"

// EntriesToCSV renders entries using the fixed export layout. Text fields
// (notes, wins, challenges, the ", "-joined tag list) are wrapped in double
// quotes with embedded quotes doubled; numeric and date fields stay bare.
// Rows are separated by "\n".
func EntriesToCSV(entries []SnapshotEntry) string {
	var b strings.Builder
	b.WriteString(csvHeader)

	for _, entry := range entries {
		b.WriteString("\n")
		b.WriteString(entry.Date)
		b.WriteString(",")
		b.WriteString(strconv.Itoa(entry.PlannedTasks))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(entry.CompletedTasks))
		b.WriteString(",")
		b.WriteString(quoteCSV(entry.TasksNotes))
		b.WriteString(",")
		b.WriteString(quoteCSV(entry.Wins))
		b.WriteString(",")
		b.WriteString(quoteCSV(entry.Challenges))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(entry.Mood))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(entry.MinutesFocused))
		b.WriteString(",")
		b.WriteString(quoteCSV(strings.Join(entry.Tags, ", ")))
		b.WriteString(",")
		b.WriteString(entry.CreatedAt.Format(time.RFC3339))
	}

	return b.String()
}

func quoteCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
