package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pharmacy-assistant/internal/assistant"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
)

// FindMedicineParams is the find_medicine input.
type FindMedicineParams struct {
	Query string `json:"query" mcp:"question or text that mentions a medicine name"`
}

type ListExpiredParams struct {
	Date string `json:"date,omitempty" mcp:"reference date YYYY-MM-DD (default: today)"`
}

type AnalyzeCustomerParams struct {
	Customer string `json:"customer" mcp:"customer name exactly as in the purchase history"`
}

// AddMedicineParams describes one inventory row.
type AddMedicineParams struct {
	Name                 string `json:"name" mcp:"medicine name"`
	Batch                string `json:"batch" mcp:"batch number"`
	ExpirationDate       string `json:"expiration_date" mcp:"expiration date YYYY-MM-DD"`
	Quantity             string `json:"quantity" mcp:"quantity in stock"`
	Dosage               string `json:"dosage" mcp:"dosage, e.g. 500mg"`
	PrescriptionRequired string `json:"prescription_required" mcp:"yes or no"`
	Price                string `json:"price" mcp:"unit price"`
}

// InventoryMCPServer serves the shared tables as MCP tools.
type InventoryMCPServer struct {
	mu            sync.RWMutex
	inventory     *inventory.Inventory
	purchases     *purchases.History
	inventoryPath string
	now           func() time.Time
}

func NewInventoryMCPServer(inv *inventory.Inventory, hist *purchases.History, inventoryPath string) *InventoryMCPServer {
	return &InventoryMCPServer{
		inventory:     inv,
		purchases:     hist,
		inventoryPath: inventoryPath,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func textResult(text string, isError bool) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// FindMedicine answers a question about one medicine from the inventory.
func (s *InventoryMCPServer) FindMedicine(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[FindMedicineParams]) (*mcp.CallToolResultFor[any], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inventory == nil {
		return textResult("Please upload the medicine inventory file first.", true), nil
	}
	answer, ok := s.inventory.Answer(params.Arguments.Query)
	if !ok {
		return textResult("No medicine from the inventory is mentioned in the query.", false), nil
	}
	return textResult(answer, false), nil
}

func (s *InventoryMCPServer) ListExpired(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListExpiredParams]) (*mcp.CallToolResultFor[any], error) {
	day := s.now()
	if params.Arguments.Date != "" {
		d, err := time.Parse("2006-01-02", params.Arguments.Date)
		if err != nil {
			return textResult(fmt.Sprintf("❌ Invalid date %q, expected YYYY-MM-DD", params.Arguments.Date), true), nil
		}
		day = d
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inventory == nil {
		return textResult("Please upload the medicine inventory file first.", true), nil
	}
	return textResult(s.inventory.ExpiredReport(day), false), nil
}

func (s *InventoryMCPServer) AnalyzeCustomer(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AnalyzeCustomerParams]) (*mcp.CallToolResultFor[any], error) {
	if params.Arguments.Customer == "" {
		return textResult("❌ customer is required", true), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return textResult(purchases.AnalyzeLoaded(s.purchases, params.Arguments.Customer), false), nil
}

// AddMedicine appends a row and writes the inventory file back when one is
// configured.
func (s *InventoryMCPServer) AddMedicine(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AddMedicineParams]) (*mcp.CallToolResultFor[any], error) {
	a := params.Arguments
	m, err := inventory.NewMedicine(a.Name, a.Batch, a.ExpirationDate, a.Quantity, a.Dosage, a.PrescriptionRequired, a.Price)
	if err != nil {
		return textResult(fmt.Sprintf("❌ Could not add medicine: %v\n%s", err, assistant.AddUsage), true), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		s.inventory = inventory.New()
	}
	s.inventory.Add(m)

	if s.inventoryPath != "" {
		if err := s.saveLocked(); err != nil {
			log.Printf("❌ failed to save inventory: %v", err)
			return textResult(fmt.Sprintf("Added %s in memory, but saving failed: %v", m.Name, err), true), nil
		}
	}
	return textResult(fmt.Sprintf("Added %s (batch %s). The inventory now has %d rows.", m.Name, m.Batch, s.inventory.Len()), false), nil
}

// saveLocked replaces the inventory file through a temp file in the same dir.
func (s *InventoryMCPServer) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.inventoryPath), ".inventory-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := s.inventory.WriteCSV(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.inventoryPath)
}

// register adds the inventory tools to server.
func (s *InventoryMCPServer) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_medicine",
		Description: "Finds the medicine mentioned in a question and returns its dosage, stock, expiration date, prescription flag and price",
	}, s.FindMedicine)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_expired",
		Description: "Lists medicines whose expiration date is before the given date",
	}, s.ListExpired)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_customer",
		Description: "Returns the five medicines a customer bought most often",
	}, s.AnalyzeCustomer)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_medicine",
		Description: "Adds a medicine row to the inventory",
	}, s.AddMedicine)
}
