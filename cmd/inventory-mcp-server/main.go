package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pharmacy-assistant/internal/config"
	"pharmacy-assistant/internal/sources"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shared, err := sources.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init sources: %v", err)
	}
	if !shared.Configured() {
		log.Fatal("❌ INVENTORY_CSV_PATH, PURCHASES_CSV_PATH or INVENTORY_SHEET_ID is required")
	}
	tables, err := shared.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load sources: %v", err)
	}

	log.Printf("🚀 Starting Inventory MCP Server")
	log.Printf("📦 Inventory: %d rows, purchases: %d rows", tables.Inventory.Len(), tables.Purchases.Len())

	// the sheet is read-only, new rows stay in memory
	writePath := cfg.InventoryCSVPath
	if shared.Sheet != nil {
		writePath = ""
	}
	inventoryServer := NewInventoryMCPServer(tables.Inventory, tables.Purchases, writePath)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pharmacy-inventory-mcp",
		Version: "1.0.0",
	}, nil)
	inventoryServer.register(server)

	log.Printf("📋 Registered MCP tools: find_medicine, list_expired, analyze_customer, add_medicine")
	log.Printf("🔗 Starting MCP server on stdin/stdout...")

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		log.Fatalf("❌ Inventory MCP Server failed: %v", err)
	}
}
