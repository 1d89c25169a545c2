package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
)

func resultText(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return tc.Text
}

func testServer(path string) *InventoryMCPServer {
	inv := inventory.New(
		inventory.Medicine{Name: "Aspirin", Batch: "A1", ExpirationDate: "2020-01-01", Quantity: 10, Dosage: "100mg", Price: 2.5},
		inventory.Medicine{Name: "Ibuprofen", Batch: "I1", ExpirationDate: "2030-01-01", Quantity: 5, Dosage: "200mg", PrescriptionRequired: true, Price: 4},
	)
	hist := purchases.New(
		purchases.Purchase{Customer: "Alice", Medicine: "Aspirin"},
		purchases.Purchase{Customer: "Alice", Medicine: "Aspirin"},
		purchases.Purchase{Customer: "Bob", Medicine: "Zinc"},
	)
	s := NewInventoryMCPServer(inv, hist, path)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestFindMedicine(t *testing.T) {
	s := testServer("")
	res, err := s.FindMedicine(context.Background(), nil, &mcp.CallToolParamsFor[FindMedicineParams]{
		Arguments: FindMedicineParams{Query: "how much ibuprofen is left?"},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := resultText(t, res); !strings.HasPrefix(got, "Here are the details for Ibuprofen:") {
		t.Fatalf("unexpected answer: %q", got)
	}

	res, _ = s.FindMedicine(context.Background(), nil, &mcp.CallToolParamsFor[FindMedicineParams]{
		Arguments: FindMedicineParams{Query: "hello"},
	})
	if res.IsError || !strings.Contains(resultText(t, res), "No medicine") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestListExpired(t *testing.T) {
	s := testServer("")
	res, _ := s.ListExpired(context.Background(), nil, &mcp.CallToolParamsFor[ListExpiredParams]{})
	got := resultText(t, res)
	if !strings.Contains(got, "Aspirin") || strings.Contains(got, "Ibuprofen") {
		t.Fatalf("unexpected report: %q", got)
	}

	res, _ = s.ListExpired(context.Background(), nil, &mcp.CallToolParamsFor[ListExpiredParams]{
		Arguments: ListExpiredParams{Date: "2031-01-01"},
	})
	if got := resultText(t, res); !strings.Contains(got, "Ibuprofen") {
		t.Fatalf("expected ibuprofen expired by 2031: %q", got)
	}

	res, _ = s.ListExpired(context.Background(), nil, &mcp.CallToolParamsFor[ListExpiredParams]{
		Arguments: ListExpiredParams{Date: "01/02/2031"},
	})
	if !res.IsError {
		t.Fatalf("expected error for bad date")
	}
}

func TestAnalyzeCustomer(t *testing.T) {
	s := testServer("")
	res, _ := s.AnalyzeCustomer(context.Background(), nil, &mcp.CallToolParamsFor[AnalyzeCustomerParams]{
		Arguments: AnalyzeCustomerParams{Customer: "Alice"},
	})
	if got := resultText(t, res); !strings.Contains(got, "Aspirin: 2 times") {
		t.Fatalf("unexpected insights: %q", got)
	}
	res, _ = s.AnalyzeCustomer(context.Background(), nil, &mcp.CallToolParamsFor[AnalyzeCustomerParams]{})
	if !res.IsError {
		t.Fatalf("expected error for missing customer")
	}
}

func TestAddMedicineWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	s := testServer(path)
	res, err := s.AddMedicine(context.Background(), nil, &mcp.CallToolParamsFor[AddMedicineParams]{
		Arguments: AddMedicineParams{
			Name: "Zinc", Batch: "Z1", ExpirationDate: "2030-01-01", Quantity: "3",
			Dosage: "10mg", PrescriptionRequired: "no", Price: "1.25",
		},
	})
	if err != nil || res.IsError {
		t.Fatalf("add failed: %v %+v", err, res)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	reloaded, err := inventory.Load(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", reloaded.Len())
	}

	res, _ = s.AddMedicine(context.Background(), nil, &mcp.CallToolParamsFor[AddMedicineParams]{
		Arguments: AddMedicineParams{Name: "Bad", Quantity: "many"},
	})
	if !res.IsError {
		t.Fatalf("expected validation error")
	}
}

func TestAddMedicineKeepsExistingRowText(t *testing.T) {
	const data = "Medicine Name,Batch Number,Expiration Date,Quantity,Dosage,Prescription Required,Price\n" +
		"Insulin,I1,2030-01-01,100.0,10ml,Y,12.50\n" +
		"Zinc,Z1,2030-01-01,3,5mg,No,$3\n"
	path := filepath.Join(t.TempDir(), "inventory.csv")
	inv, err := inventory.Load(strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := NewInventoryMCPServer(inv, purchases.New(), path)
	res, _ := s.AddMedicine(context.Background(), nil, &mcp.CallToolParamsFor[AddMedicineParams]{
		Arguments: AddMedicineParams{
			Name: "Aspirin", Batch: "A1", ExpirationDate: "2031-01-01", Quantity: "7",
			Dosage: "100mg", PrescriptionRequired: "no", Price: "2.50",
		},
	})
	if res.IsError {
		t.Fatalf("add failed: %s", resultText(t, res))
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := data + "Aspirin,A1,2031-01-01,7,100mg,No,2.5\n"
	if string(got) != want {
		t.Fatalf("unexpected file:\n%s", got)
	}
}
