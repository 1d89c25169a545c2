package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func TestToTable(t *testing.T) {
	values := [][]interface{}{
		{"Medicine Name", "Batch Number", "Expiration Date", "Quantity", "Dosage", "Prescription Required", "Price"},
		{"Aspirin", "B1", "2030-01-01", 10, "100mg", "No", 2.5},
		{},
	}
	tbl, err := toTable(values)
	if err != nil {
		t.Fatalf("to table: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][3] != "10" || tbl.Rows[0][6] != "2.5" {
		t.Fatalf("unexpected rows: %+v", tbl.Rows)
	}
	if _, err := toTable(nil); err == nil {
		t.Fatalf("expected error on empty range")
	}
}

func TestLoadInventory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-1/values/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Inventory!A1:G2","majorDimension":"ROWS","values":[` +
			`["Medicine Name","Batch Number","Expiration Date","Quantity","Dosage","Prescription Required","Price"],` +
			`["Paracetamol","B1","2020-01-01","100","500mg","No","5.5"]]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheetsapi.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	inv, err := NewWithService(svc, "sheet-1", "Inventory!A:G").LoadInventory(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if inv.Len() != 1 || inv.Items()[0].Price != 5.5 {
		t.Fatalf("unexpected inventory: %+v", inv.Items())
	}
}
