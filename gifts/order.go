// Package gifts attributes purchased token gifts to circle members. It is
// a read-side join over an already-fetched order feed and a roster
// snapshot; slightly stale joins (a just-deleted member still shown
// against historical gifts) are an accepted approximation.
package gifts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LineItem is one purchased product in an order. RecipientName is the
// buyer-supplied gift tag; RecipientID is set only when the buyer picked an
// existing circle member at purchase time.
type LineItem struct {
	Title         string `json:"title"`
	Variant       string `json:"variant,omitempty"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	RecipientName string `json:"recipient_name,omitempty"`
	RecipientID   string `json:"recipient_id,omitempty"`
	Engraving     string `json:"engraving,omitempty"`
}

// Order is one completed purchase from the order feed.
type Order struct {
	ID        string     `json:"id"`
	Number    string     `json:"number,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LineItems []LineItem `json:"line_items"`
}

// LoadOrders reads an order feed from a JSON file. The feed is expected to
// be already fetched and complete; no paging happens here.
func LoadOrders(path string) ([]Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read order feed: %w", err)
	}

	var orders []Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("parse order feed %s: %w", path, err)
	}
	return orders, nil
}
