package analytics

import (
	"strings"
	"testing"
	"time"

	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/storage"
)

func TestDailyReport(t *testing.T) {
	now := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	inv := inventory.New(
		inventory.Medicine{Name: "Paracetamol", Batch: "B1", ExpirationDate: "2020-01-01"},
		inventory.Medicine{Name: "Aspirin", Batch: "B2", ExpirationDate: "2030-01-01"},
	)
	events := []storage.Event{
		{Timestamp: now.Add(-12 * time.Hour), SessionID: "s", UserMessage: "hi", Source: storage.SourceModel},
	}

	out := DailyReport(inv, events, now)
	if !strings.Contains(out, "Inventory check for 2024-01-16") || !strings.Contains(out, "Paracetamol") {
		t.Fatalf("missing expiry section: %q", out)
	}
	if strings.Contains(out, "Aspirin") {
		t.Fatalf("unexpired medicine listed: %q", out)
	}
	if !strings.Contains(out, "Assistant usage for 2024-01-15") || !strings.Contains(out, "- Messages: 1") {
		t.Fatalf("missing usage section: %q", out)
	}

	if got := DailyReport(nil, nil, now); got != "" {
		t.Fatalf("expected empty report, got %q", got)
	}
}
