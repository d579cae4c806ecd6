package gifts

import (
	"sort"
	"strings"
	"time"

	"github.com/charmas3r/recovery-token-project-sub000/roster"
)

// Gift is one purchased line item attributed to a recipient.
type Gift struct {
	Title     string    `json:"title"`
	Variant   string    `json:"variant,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Engraving string    `json:"engraving,omitempty"`
	OrderID   string    `json:"order_id"`
	OrderDate time.Time `json:"order_date"`
}

// RecipientGroup collects every gift bought for one recipient. MemberID is
// empty when the buyer never selected a roster member; Member is nil when
// the referenced member has since been removed from the circle (or was
// never in it), in which case the UI shows a degraded state instead of
// failing.
type RecipientGroup struct {
	MemberID      string               `json:"member_id,omitempty"`
	Member        *roster.CircleMember `json:"member,omitempty"`
	RecipientName string               `json:"recipient_name"`
	Gifts         []Gift               `json:"gifts"`
}

// GroupByRecipient joins the order feed against a roster snapshot. Gifts
// are keyed by recipient member ID when one was captured at purchase time;
// otherwise purchases fall back to grouping by the literal recipient name,
// so repeat nameless purchases "for Jane" collapse into one best-effort
// group. An ID-keyed group and a name-keyed group are never merged, even
// when the names match. Line items with no recipient tag at all are not
// gifts and are ignored.
//
// Groups come back in first-seen feed order; within a group, gifts are
// ordered by order date, most recent first.
func GroupByRecipient(orders []Order, members []roster.CircleMember) []RecipientGroup {
	byID := make(map[string]*roster.CircleMember, len(members))
	for i := range members {
		byID[members[i].ID] = &members[i]
	}

	groups := make(map[string]*RecipientGroup)
	var order []string

	for _, o := range orders {
		for _, item := range o.LineItems {
			if item.RecipientID == "" && strings.TrimSpace(item.RecipientName) == "" {
				continue
			}

			key := groupKey(item)
			group, ok := groups[key]
			if !ok {
				group = &RecipientGroup{
					MemberID:      item.RecipientID,
					Member:        byID[item.RecipientID],
					RecipientName: strings.TrimSpace(item.RecipientName),
				}
				if group.Member != nil && group.RecipientName == "" {
					group.RecipientName = group.Member.Name
				}
				groups[key] = group
				order = append(order, key)
			}

			group.Gifts = append(group.Gifts, Gift{
				Title:     item.Title,
				Variant:   item.Variant,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Engraving: item.Engraving,
				OrderID:   o.ID,
				OrderDate: o.CreatedAt,
			})
		}
	}

	result := make([]RecipientGroup, 0, len(order))
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group.Gifts, func(i, j int) bool {
			return group.Gifts[i].OrderDate.After(group.Gifts[j].OrderDate)
		})
		result = append(result, *group)
	}
	return result
}

// groupKey derives the grouping key: the stable member ID when present,
// else the normalized recipient name.
func groupKey(item LineItem) string {
	if item.RecipientID != "" {
		return "id:" + item.RecipientID
	}
	return "name:" + normalizeName(item.RecipientName)
}

// normalizeName lowercases and collapses whitespace so "Jane " and "jane"
// land in the same fallback group.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
