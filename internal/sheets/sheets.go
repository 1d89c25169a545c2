// Package sheets loads the shared inventory from a Google Sheet using a
// service-account key.
package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/tabular"
)

type Source struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	readRange     string
}

// NewSource authenticates with the service-account JSON key at
// credentialsPath. readRange is A1 notation, e.g. "Inventory!A:G".
func NewSource(ctx context.Context, credentialsPath, spreadsheetID, readRange string) (*Source, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(data, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, readRange), nil
}

// NewWithService wraps an existing Sheets client.
func NewWithService(svc *sheetsapi.Service, spreadsheetID, readRange string) *Source {
	return &Source{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}
}

// LoadInventory reads the range; the first row must be the inventory header.
func (s *Source) LoadInventory(ctx context.Context) (*inventory.Inventory, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.spreadsheetID, err)
	}
	tbl, err := toTable(resp.Values)
	if err != nil {
		return nil, err
	}
	return inventory.FromTable(tbl)
}

func toTable(values [][]interface{}) (*tabular.Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("sheet range is empty")
	}
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, len(v))
		for i, cell := range v {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return tabular.New(rows[0], rows[1:]), nil
}
