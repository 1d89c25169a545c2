// Package sources loads the shared inventory and purchase tables configured at
// start-up and keeps them fresh.
package sources

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pharmacy-assistant/internal/config"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
	"pharmacy-assistant/internal/session"
	"pharmacy-assistant/internal/sheets"
	"pharmacy-assistant/internal/watcher"
)

// InventorySheet is a remote inventory, such as a Google Sheet.
type InventorySheet interface {
	LoadInventory(ctx context.Context) (*inventory.Inventory, error)
}

// Shared reads the shared tables. A configured sheet takes precedence over the
// inventory CSV path.
type Shared struct {
	InventoryPath string
	PurchasesPath string
	Sheet         InventorySheet
}

// FromConfig builds the shared sources from the environment.
func FromConfig(ctx context.Context, cfg *config.Config) (*Shared, error) {
	s := &Shared{InventoryPath: cfg.InventoryCSVPath, PurchasesPath: cfg.PurchasesCSVPath}
	if cfg.HasSheetSource() {
		src, err := sheets.NewSource(ctx, cfg.SheetsCredentials, cfg.InventorySheetID, cfg.InventorySheetRng)
		if err != nil {
			return nil, fmt.Errorf("init sheet source: %w", err)
		}
		s.Sheet = src
	}
	return s, nil
}

// Configured reports whether any shared source is set.
func (s *Shared) Configured() bool {
	return s.Sheet != nil || s.InventoryPath != "" || s.PurchasesPath != ""
}

// Load reads every configured source. Unset sources stay nil.
func (s *Shared) Load(ctx context.Context) (session.Tables, error) {
	var t session.Tables
	var err error
	switch {
	case s.Sheet != nil:
		if t.Inventory, err = s.Sheet.LoadInventory(ctx); err != nil {
			return session.Tables{}, fmt.Errorf("load inventory sheet: %w", err)
		}
	case s.InventoryPath != "":
		if t.Inventory, err = loadInventory(s.InventoryPath); err != nil {
			return session.Tables{}, err
		}
	}
	if s.PurchasesPath != "" {
		if t.Purchases, err = loadPurchases(s.PurchasesPath); err != nil {
			return session.Tables{}, err
		}
	}
	return t, nil
}

// Watch reloads the local CSV sources into the registry whenever they change,
// until ctx is done. Bad files are logged and the previous tables are kept.
func (s *Shared) Watch(ctx context.Context, reg *session.Registry) error {
	var paths []string
	if s.Sheet == nil && s.InventoryPath != "" {
		paths = append(paths, s.InventoryPath)
	}
	if s.PurchasesPath != "" {
		paths = append(paths, s.PurchasesPath)
	}
	if len(paths) == 0 {
		return nil
	}

	w, err := watcher.New()
	if err != nil {
		return fmt.Errorf("init watcher: %w", err)
	}
	changes, err := w.Watch(ctx, paths...)
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch sources: %w", err)
	}

	go func() {
		defer w.Stop()
		for path := range changes {
			if err := s.reload(reg, path); err != nil {
				log.Printf("⚠️ failed to reload %s: %v", path, err)
				continue
			}
			log.Printf("🔄 Reloaded shared source %s", path)
		}
	}()
	return nil
}

// reload re-reads the source that path names. Paths are matched by their
// cleaned absolute form, the same form the watcher reports.
func (s *Shared) reload(reg *session.Registry, path string) error {
	switch {
	case s.Sheet == nil && samePath(path, s.InventoryPath):
		inv, err := loadInventory(s.InventoryPath)
		if err != nil {
			return err
		}
		reg.SetShared(session.Tables{Inventory: inv})
	case samePath(path, s.PurchasesPath):
		h, err := loadPurchases(s.PurchasesPath)
		if err != nil {
			return err
		}
		reg.SetShared(session.Tables{Purchases: h})
	default:
		return fmt.Errorf("%s is not a shared source", path)
	}
	return nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return absA == absB
}

func loadInventory(path string) (*inventory.Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()
	inv, err := inventory.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

func loadPurchases(path string) (*purchases.History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open purchases: %w", err)
	}
	defer f.Close()
	h, err := purchases.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
