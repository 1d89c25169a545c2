package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pharmacy-assistant/internal/storage"
)

// DailyStats summarises one day of the interaction log.
type DailyStats struct {
	Date             string         `json:"date"`
	TotalMessages    int            `json:"total_messages"`
	UniqueSessions   int            `json:"unique_sessions"`
	InventoryAnswers int            `json:"inventory_answers"`
	ModelAnswers     int            `json:"model_answers"`
	MedicineQueries  map[string]int `json:"medicine_queries"`
}

// MedicineCount is one entry of the most-asked list.
type MedicineCount struct {
	Medicine string `json:"medicine"`
	Count    int    `json:"count"`
}

// AnalyzeDailyLogs counts the events that fall on targetDate.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		MedicineQueries: make(map[string]int),
	}
	sessions := make(map[string]bool)

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}
		stats.TotalMessages++
		sessions[event.SessionID] = true

		switch event.Source {
		case storage.SourceInventory:
			stats.InventoryAnswers++
			if event.Medicine != "" {
				stats.MedicineQueries[event.Medicine]++
			}
		case storage.SourceModel:
			stats.ModelAnswers++
		}
	}

	stats.UniqueSessions = len(sessions)
	return stats
}

// TopMedicines returns the most asked medicines, ties ordered by name.
func (ds *DailyStats) TopMedicines(n int) []MedicineCount {
	out := make([]MedicineCount, 0, len(ds.MedicineQueries))
	for name, c := range ds.MedicineQueries {
		out = append(out, MedicineCount{Medicine: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Medicine < out[j].Medicine
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// GenerateReportSummary renders the stats as plain text.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assistant usage for %s:\n", ds.Date)
	fmt.Fprintf(&b, "- Messages: %d\n", ds.TotalMessages)
	fmt.Fprintf(&b, "- Sessions: %d\n", ds.UniqueSessions)
	fmt.Fprintf(&b, "- Answered from inventory: %d\n", ds.InventoryAnswers)
	fmt.Fprintf(&b, "- Answered by the model: %d\n", ds.ModelAnswers)

	if top := ds.TopMedicines(5); len(top) > 0 {
		b.WriteString("\nMost asked medicines:\n")
		for _, m := range top {
			fmt.Fprintf(&b, "- %s: %d\n", m.Medicine, m.Count)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
