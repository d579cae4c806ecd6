// Package sobriety computes elapsed sober time and milestone reports from a
// clean date. All functions are pure over (cleanDate, now) and safe for
// concurrent use.
package sobriety

import "fmt"

// Milestone is one entry in the static milestone catalog.
type Milestone struct {
	// Days is the threshold of elapsed sober days.
	Days int `json:"days"`
	// Label is the human-readable milestone name.
	Label string `json:"label"`
	// Emoji decorates the milestone in the UI.
	Emoji string `json:"emoji,omitempty"`
	// ShopLink optionally points at the matching token product.
	ShopLink string `json:"shop_link,omitempty"`
}

// Catalog is an ordered list of milestones, ascending by Days.
type Catalog []Milestone

// Validate checks that thresholds are positive and strictly increasing.
func (c Catalog) Validate() error {
	prev := 0
	for i, m := range c {
		if m.Days <= 0 {
			return fmt.Errorf("milestone %d: threshold must be positive, got %d", i, m.Days)
		}
		if m.Days <= prev {
			return fmt.Errorf("milestone %d: threshold %d not greater than previous %d", i, m.Days, prev)
		}
		if m.Label == "" {
			return fmt.Errorf("milestone %d: label is required", i)
		}
		prev = m.Days
	}
	return nil
}

// DefaultCatalog returns the standard recovery token milestone set.
func DefaultCatalog() Catalog {
	return Catalog{
		{Days: 1, Label: "24 Hours", Emoji: "🌅"},
		{Days: 7, Label: "1 Week", Emoji: "🔑"},
		{Days: 30, Label: "30 Days", Emoji: "🥉", ShopLink: "/products/30-day-token"},
		{Days: 60, Label: "60 Days", Emoji: "🥈", ShopLink: "/products/60-day-token"},
		{Days: 90, Label: "90 Days", Emoji: "🥇", ShopLink: "/products/90-day-token"},
		{Days: 180, Label: "6 Months", Emoji: "🌟", ShopLink: "/products/6-month-token"},
		{Days: 365, Label: "1 Year", Emoji: "🏆", ShopLink: "/products/1-year-token"},
		{Days: 730, Label: "2 Years", Emoji: "💎", ShopLink: "/products/2-year-token"},
		{Days: 1825, Label: "5 Years", Emoji: "👑", ShopLink: "/products/5-year-token"},
		{Days: 3650, Label: "10 Years", Emoji: "🎆", ShopLink: "/products/10-year-token"},
	}
}
