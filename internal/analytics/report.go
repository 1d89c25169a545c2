package analytics

import (
	"strings"
	"time"

	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/storage"
)

// DailyReport combines the expiration check of the shared inventory with the
// previous day's usage. Either input may be nil.
func DailyReport(inv *inventory.Inventory, events []storage.Event, now time.Time) string {
	var parts []string
	if inv != nil {
		parts = append(parts, "Inventory check for "+now.Format("2006-01-02")+":\n"+inv.ExpiredReport(now))
	}
	if events != nil {
		parts = append(parts, AnalyzeDailyLogs(events, now.AddDate(0, 0, -1)).GenerateReportSummary())
	}
	return strings.Join(parts, "\n\n")
}
