package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/session"
)

const header = "Medicine Name,Batch Number,Expiration Date,Quantity,Dosage,Prescription Required,Price\n"

type fakeSheet struct{ inv *inventory.Inventory }

func (f fakeSheet) LoadInventory(ctx context.Context) (*inventory.Inventory, error) {
	return f.inv, nil
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromCSV(t *testing.T) {
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.csv")
	purPath := filepath.Join(dir, "purchases.csv")
	writeFile(t, invPath, header+"Aspirin,A1,2030-01-01,10,100mg,No,2.5\n")
	writeFile(t, purPath, "Customer Name,Medicine Name\nAlice,Aspirin\n")

	s := &Shared{InventoryPath: invPath, PurchasesPath: purPath}
	if !s.Configured() {
		t.Fatalf("expected configured")
	}
	tables, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tables.Inventory.Len() != 1 || tables.Purchases.Len() != 1 {
		t.Fatalf("unexpected tables: inv=%d purchases=%d", tables.Inventory.Len(), tables.Purchases.Len())
	}
}

func TestLoadPrefersSheet(t *testing.T) {
	sheetInv := inventory.New(inventory.Medicine{Name: "Zinc"}, inventory.Medicine{Name: "Iron"})
	s := &Shared{InventoryPath: "does-not-exist.csv", Sheet: fakeSheet{inv: sheetInv}}
	tables, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tables.Inventory.Len() != 2 || tables.Purchases != nil {
		t.Fatalf("unexpected tables: %+v", tables)
	}
}

func TestLoadReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	writeFile(t, path, "Name\nAspirin\n")
	if _, err := (&Shared{InventoryPath: path}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	if (&Shared{}).Configured() {
		t.Fatalf("empty sources should not be configured")
	}
}

func TestWatchRefreshesSharedSessions(t *testing.T) {
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.csv")
	writeFile(t, invPath, header+"Aspirin,A1,2030-01-01,10,100mg,No,2.5\n")

	store, err := conversation.NewFileStore(filepath.Join(dir, "conv"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	reg := session.NewRegistry(store)
	s := &Shared{InventoryPath: invPath}
	tables, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg.SetShared(tables)

	sess, err := reg.Get(1)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx, reg); err != nil {
		t.Fatalf("watch: %v", err)
	}

	writeFile(t, invPath, header+"Aspirin,A1,2030-01-01,10,100mg,No,2.5\nZinc,Z1,2030-01-01,3,10mg,No,1\n")

	deadline := time.Now().Add(5 * time.Second)
	for sess.Inventory().Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("session inventory not refreshed, len=%d", sess.Inventory().Len())
		}
		time.Sleep(20 * time.Millisecond)
	}
	if reg.Shared().Inventory.Len() != 2 {
		t.Fatalf("shared inventory not replaced")
	}
}

func TestReloadRoutesByPath(t *testing.T) {
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.csv")
	purPath := filepath.Join(dir, "purchases.csv")
	writeFile(t, purPath, "Customer Name,Medicine Name\nAlice,Aspirin\n")

	store, err := conversation.NewFileStore(filepath.Join(dir, "conv"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	reg := session.NewRegistry(store)
	s := &Shared{InventoryPath: invPath, PurchasesPath: purPath}

	// the inventory file is gone, so its reload fails without touching purchases
	err = s.reload(reg, dir+"/./inventory.csv")
	if err == nil || !strings.Contains(err.Error(), "open inventory") {
		t.Fatalf("expected inventory error, got %v", err)
	}
	if reg.Shared().Purchases != nil {
		t.Fatalf("purchases must not be reloaded for an inventory event")
	}

	if err := s.reload(reg, dir+"/sub/../purchases.csv"); err != nil {
		t.Fatalf("reload purchases: %v", err)
	}
	if reg.Shared().Purchases.Len() != 1 {
		t.Fatalf("purchases not reloaded")
	}

	if err := s.reload(reg, filepath.Join(dir, "other.csv")); err == nil {
		t.Fatalf("expected error for an unknown path")
	}
}
