package handler

import (
	"github.com/shopspring/decimal"

	"github.com/xsidious/constructionmanagment-sub000/internal/finance"
)

// lineItemRequest is the wire form of a quote or invoice line. Money and
// quantities travel as decimal strings or JSON numbers.
type lineItemRequest struct {
	Type        string          `json:"type" validate:"required,oneof=labor material"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type replaceItemsRequest struct {
	Items []lineItemRequest `json:"items" validate:"required,dive"`
}

type ratesRequest struct {
	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"required"`
	TaxPercent      *decimal.Decimal `json:"tax_percent" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func lineItems(reqs []lineItemRequest) []finance.LineItem {
	items := make([]finance.LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, finance.LineItem{
			Type:        finance.ItemType(r.Type),
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	return items
}
