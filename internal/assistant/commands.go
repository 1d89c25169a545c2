package assistant

import (
	"fmt"
	"strings"

	"pharmacy-assistant/internal/datacache"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
	"pharmacy-assistant/internal/session"
)

// AddUsage documents the /add argument format.
const AddUsage = "Usage: /add name; batch; expiration (YYYY-MM-DD); quantity; dosage; prescription (yes/no); price"

const HelpText = `Ask me about any medicine in the inventory, or anything else.
Send a CSV file to load the inventory or the customer purchase history.

/expired - list expired medicines
/customer <name> - top purchases of a customer
/add name; batch; expiration; quantity; dosage; prescription; price
/export - download the current inventory as CSV
/new - start a new session
/session - show the current session id`

const noInventoryMessage = "Please upload the medicine inventory file first."

// ParseAdd splits "/add" arguments into a medicine.
func ParseAdd(args string) (inventory.Medicine, error) {
	parts := strings.Split(args, ";")
	if len(parts) != len(inventory.Columns) {
		return inventory.Medicine{}, fmt.Errorf("expected %d fields separated by ';', got %d", len(inventory.Columns), len(parts))
	}
	return inventory.NewMedicine(parts[0], parts[1], parts[2], parts[3], parts[4], parts[5], parts[6])
}

// Expired reports the session's expired medicines.
func (a *Assistant) Expired(s *session.Session) string {
	inv := s.Inventory()
	if inv == nil {
		return noInventoryMessage
	}
	return inv.ExpiredReport(a.now())
}

// CustomerInsights reports a customer's most frequent purchases.
func (a *Assistant) CustomerInsights(s *session.Session, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Usage: /customer <name>"
	}
	return purchases.AnalyzeLoaded(s.Purchases(), name)
}

// AddMedicine parses "/add" arguments and appends the row to the session.
func (a *Assistant) AddMedicine(s *session.Session, args string) string {
	m, err := ParseAdd(args)
	if err != nil {
		return fmt.Sprintf("Could not add medicine: %v\n%s", err, AddUsage)
	}
	n := s.AddMedicine(m)
	return fmt.Sprintf("Added %s (batch %s). The inventory now has %d rows.", m.Name, m.Batch, n)
}

// Load attaches an uploaded table to the session and describes what was loaded.
func (a *Assistant) Load(s *session.Session, up datacache.Upload) string {
	switch up.Kind {
	case datacache.KindInventory:
		s.SetInventory(up.Inventory)
		return fmt.Sprintf("Inventory loaded: %d medicines.\n\n%s", up.Inventory.Len(), up.Inventory.ExpiredReport(a.now()))
	case datacache.KindPurchases:
		s.SetPurchases(up.Purchases)
		return fmt.Sprintf("Customer purchase history loaded: %d purchases.", up.Purchases.Len())
	}
	return "Unsupported file."
}

// Command handles the text commands shared by all transports. It reports
// false for commands it does not know.
func (a *Assistant) Command(s *session.Session, name, args string) (string, bool) {
	switch name {
	case "start", "help":
		return HelpText, true
	case "expired":
		return a.Expired(s), true
	case "customer":
		return a.CustomerInsights(s, args), true
	case "add":
		return a.AddMedicine(s, args), true
	case "session":
		return "Session: " + s.ID, true
	}
	return "", false
}
