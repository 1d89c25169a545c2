// Package datacache keeps parsed uploads in memory so that sending the same
// file twice does not parse it again.
package datacache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
	"pharmacy-assistant/internal/tabular"
)

type Kind string

const (
	KindInventory Kind = "inventory"
	KindPurchases Kind = "purchases"
)

var ErrUnknownTable = errors.New("csv header matches neither inventory nor purchase history")

// Upload is a parsed CSV file. Exactly one of Inventory and Purchases is set.
type Upload struct {
	Kind      Kind
	Inventory *inventory.Inventory
	Purchases *purchases.History
}

func (u Upload) clone() Upload {
	out := Upload{Kind: u.Kind}
	if u.Inventory != nil {
		out.Inventory = u.Inventory.Clone()
	}
	if u.Purchases != nil {
		out.Purchases = u.Purchases.Clone()
	}
	return out
}

type Loader struct {
	cache *cache.Cache
}

// NewLoader creates a loader whose entries expire after ttl.
func NewLoader(ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Loader{cache: cache.New(ttl, 2*ttl)}
}

// Parse detects the table kind from the header and parses the file. Results
// are cached by content hash; callers always get their own copy.
func (l *Loader) Parse(data []byte) (Upload, error) {
	key := contentKey(data)
	if x, found := l.cache.Get(key); found {
		return x.(Upload).clone(), nil
	}

	tbl, err := tabular.Read(bytes.NewReader(data))
	if err != nil {
		return Upload{}, err
	}

	var up Upload
	switch {
	case purchases.LooksLike(tbl):
		h, err := purchases.FromTable(tbl)
		if err != nil {
			return Upload{}, err
		}
		up = Upload{Kind: KindPurchases, Purchases: h}
	case inventory.LooksLike(tbl):
		inv, err := inventory.FromTable(tbl)
		if err != nil {
			return Upload{}, err
		}
		up = Upload{Kind: KindInventory, Inventory: inv}
	default:
		return Upload{}, fmt.Errorf("%w (header: %v)", ErrUnknownTable, tbl.Header)
	}

	l.cache.Set(key, up, cache.DefaultExpiration)
	return up.clone(), nil
}

func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
