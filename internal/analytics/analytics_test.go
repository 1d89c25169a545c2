package analytics

import (
	"strings"
	"testing"
	"time"

	"pharmacy-assistant/internal/storage"
)

func TestAnalyzeDailyLogs(t *testing.T) {
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	events := []storage.Event{
		{Timestamp: testDate.Add(2 * time.Hour), SessionID: "a", UserMessage: "aspirin?", Source: storage.SourceInventory, Medicine: "Aspirin"},
		{Timestamp: testDate.Add(3 * time.Hour), SessionID: "a", UserMessage: "aspirin dose?", Source: storage.SourceInventory, Medicine: "Aspirin"},
		{Timestamp: testDate.Add(4 * time.Hour), SessionID: "b", UserMessage: "zinc?", Source: storage.SourceInventory, Medicine: "Zinc"},
		{Timestamp: testDate.Add(5 * time.Hour), SessionID: "b", UserMessage: "hello", Source: storage.SourceModel},
		// next day, ignored
		{Timestamp: testDate.AddDate(0, 0, 1), SessionID: "c", UserMessage: "tomorrow", Source: storage.SourceModel},
		// no user message, ignored
		{Timestamp: testDate.Add(6 * time.Hour), SessionID: "a", AssistantResponse: "[system]"},
	}

	stats := AnalyzeDailyLogs(events, testDate.Add(12*time.Hour))

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.TotalMessages != 4 {
		t.Errorf("Expected 4 messages, got %d", stats.TotalMessages)
	}
	if stats.UniqueSessions != 2 {
		t.Errorf("Expected 2 sessions, got %d", stats.UniqueSessions)
	}
	if stats.InventoryAnswers != 3 || stats.ModelAnswers != 1 {
		t.Errorf("Unexpected split: inventory=%d model=%d", stats.InventoryAnswers, stats.ModelAnswers)
	}

	top := stats.TopMedicines(1)
	if len(top) != 1 || top[0].Medicine != "Aspirin" || top[0].Count != 2 {
		t.Errorf("Unexpected top medicines: %+v", top)
	}
}

func TestAnalyzeDailyLogsEmptyData(t *testing.T) {
	stats := AnalyzeDailyLogs(nil, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if stats.TotalMessages != 0 || stats.UniqueSessions != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	summary := stats.GenerateReportSummary()
	if strings.Contains(summary, "Most asked") {
		t.Errorf("empty stats should not list medicines: %q", summary)
	}
}

func TestGenerateReportSummary(t *testing.T) {
	stats := &DailyStats{
		Date:             "2024-01-15",
		TotalMessages:    3,
		UniqueSessions:   1,
		InventoryAnswers: 2,
		ModelAnswers:     1,
		MedicineQueries:  map[string]int{"Zinc": 1, "Aspirin": 1},
	}
	summary := stats.GenerateReportSummary()
	for _, want := range []string{"2024-01-15", "- Messages: 3", "- Answered from inventory: 2", "- Aspirin: 1\n- Zinc: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
